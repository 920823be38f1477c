package v1

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"go-portfolio-site/config"
	"go-portfolio-site/internal/delivery/http/middleware"
	"go-portfolio-site/internal/domain"
	"go-portfolio-site/internal/usecase"
	"go-portfolio-site/pkg/clock"
	"go-portfolio-site/web"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC   domain.ContactUsecase
	HealthUC    usecase.HealthUsecase
	RateLimiter *middleware.RateLimiter
	Clock       clock.Clocker
	Config      *config.Config
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	cfg := deps.Config
	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil, nil)
	}

	tmpl, err := web.Templates(template.FuncMap{"join": strings.Join})
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	// Pages are built first so the error middlewares can render the shell
	var pages *PageHandler
	renderError := func(c *gin.Context, code int, message string) { pages.ErrorPage(c, code, message) }

	// Global Middlewares
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery(renderError))
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.ErrorHandler(renderError))

	r.StaticFS("/static", http.FS(web.Static()))

	// Public pages
	pages = NewPageHandler(r, NewOwnerProfile(cfg), deps.Clock)
	contactLimit := limiter.Middleware(middleware.ContactRateLimitConfig(cfg))
	bodyLimit := middleware.BodyLimit(cfg.ContactMaxBodyBytes)
	NewContactHandler(r, deps.ContactUC, pages, contactLimit, bodyLimit)

	// JSON API
	apiLimit := limiter.Middleware(middleware.APIRateLimitConfig(cfg))
	api := r.Group("/api")
	api.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	api.Use(apiLimit)
	{
		// Group middleware only runs on matched routes, so preflights need one
		api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		NewHealthHandler(api, deps.HealthUC)
		NewContactHandler(api, deps.ContactUC, pages, contactLimit, bodyLimit)

		if cfg.SwaggerEnabled {
			api.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		}
	}

	// Unmatched /api paths still count against the API limit
	r.NoRoute(func(c *gin.Context) {
		if isAPIPath(c.Request.URL.Path) {
			apiLimit(c)
		}
	}, pages.NotFound)

	return r, nil
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
