package v1

import (
	"fmt"
	"net/http"

	"go-portfolio-site/config"
	"go-portfolio-site/internal/delivery/http/response"
	"go-portfolio-site/internal/domain"
	"go-portfolio-site/pkg/clock"

	"github.com/gin-gonic/gin"
)

const (
	notFoundTitle   = "404 - Page not found"
	notFoundMessage = "The page you are looking for does not exist"
	serverErrTitle  = "Server error"
)

// OwnerProfile is the site owner shown on the page and in the acknowledgment.
type OwnerProfile struct {
	Name        string
	Role        string
	GitHubURL   string
	LinkedInURL string
}

func NewOwnerProfile(cfg *config.Config) OwnerProfile {
	return OwnerProfile{
		Name:        cfg.OwnerName,
		Role:        cfg.OwnerRole,
		GitHubURL:   cfg.OwnerGitHubURL,
		LinkedInURL: cfg.OwnerLinkedInURL,
	}
}

type Project struct {
	Name        string
	Description string
	Stack       []string
}

// FormField is one contact form input with its submitted value and error.
type FormField struct {
	Name      string
	Label     string
	InputType string
	Value     string
	Error     string
}

// PageData is everything index.html renders.
type PageData struct {
	Title      string
	Success    string
	Error      string
	StatusPage bool
	Owner      OwnerProfile
	Projects   []Project
	Fields     []FormField
	Year       int
}

var defaultProjects = []Project{
	{Name: "Storefront", Description: "Headless e-commerce platform with inventory sync and a fast checkout.", Stack: []string{"Go", "PostgreSQL", "React"}},
	{Name: "Trail Notes", Description: "Offline-first journaling app that syncs when a connection is back.", Stack: []string{"TypeScript", "IndexedDB"}},
	{Name: "Status Board", Description: "Uptime dashboard aggregating health checks from a fleet of services.", Stack: []string{"Go", "Redis"}},
}

var formFields = []FormField{
	{Name: domain.FieldName, Label: "Name", InputType: "text"},
	{Name: domain.FieldEmail, Label: "Email", InputType: "email"},
	{Name: domain.FieldSubject, Label: "Subject", InputType: "text"},
	{Name: domain.FieldMessage, Label: "Message"},
}

type PageHandler struct {
	owner OwnerProfile
	clock clock.Clocker
}

// NewPageHandler registers the landing page
func NewPageHandler(r gin.IRoutes, owner OwnerProfile, clk clock.Clocker) *PageHandler {
	if clk == nil {
		clk = clock.New()
	}
	handler := &PageHandler{
		owner: owner,
		clock: clk,
	}

	r.GET("/", handler.Index)

	return handler
}

// Index renders the landing page
func (h *PageHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, h.page(domain.ContactSubmission{}, nil))
}

// NotFound answers unmatched routes with the 404 page, or JSON for API clients.
func (h *PageHandler) NotFound(c *gin.Context) {
	if response.WantsJSON(c) {
		response.Error(c, http.StatusNotFound, notFoundMessage, nil)
		return
	}
	data := h.page(domain.ContactSubmission{}, nil)
	data.Title = notFoundTitle
	data.Error = notFoundMessage
	data.StatusPage = true
	h.render(c, http.StatusNotFound, data)
}

// ErrorPage renders the page shell for errors raised outside the contact flow.
func (h *PageHandler) ErrorPage(c *gin.Context, code int, message string) {
	data := h.page(domain.ContactSubmission{}, nil)
	data.Error = message
	data.StatusPage = true
	data.Title = serverErrTitle
	if code == http.StatusNotFound {
		data.Title = notFoundTitle
	}
	h.render(c, code, data)
}

func (h *PageHandler) page(values domain.ContactSubmission, errs map[string]string) PageData {
	fields := make([]FormField, len(formFields))
	for i, f := range formFields {
		f.Value = values.Value(f.Name)
		f.Error = errs[f.Name]
		fields[i] = f
	}

	return PageData{
		Title:    fmt.Sprintf("%s - %s", h.owner.Name, h.owner.Role),
		Owner:    h.owner,
		Projects: defaultProjects,
		Fields:   fields,
		Year:     h.clock.Now().Year(),
	}
}

func (h *PageHandler) render(c *gin.Context, code int, data PageData) {
	c.HTML(code, "index.html", data)
}
