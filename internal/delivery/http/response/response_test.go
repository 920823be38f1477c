package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
		accept      string
		want        bool
	}{
		{"browser form post", "/contact", "application/x-www-form-urlencoded", "text/html,application/xhtml+xml,*/*;q=0.8", false},
		{"no headers", "/contact", "", "", false},
		{"json body", "/contact", "application/json; charset=utf-8", "", true},
		{"accept json", "/contact", "application/x-www-form-urlencoded", "application/json", true},
		{"api route", "/api/health", "", "text/html", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.contentType != "" {
				c.Request.Header.Set("Content-Type", tt.contentType)
			}
			if tt.accept != "" {
				c.Request.Header.Set("Accept", tt.accept)
			}

			assert.Equal(t, tt.want, WantsJSON(c))
		})
	}
}

func TestErrorIncludesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("RequestID", "req-42")

	Error(c, http.StatusUnprocessableEntity, "Please fix the errors", map[string]string{"name": "Name is required"})

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "req-42", body.RequestID)
	assert.Equal(t, map[string]interface{}{"name": "Name is required"}, body.Error)
}
