package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hillman/internal/auth"
)

// AuthTemplateData holds identity info for templates.
type AuthTemplateData struct {
	LoggedIn  bool
	Username  string
	IsAdmin   bool
	CSRFToken string
	CSRFField string
}

// AuthContextMiddleware injects identity data into the Gin context so every
// page can show the navigation for the current user.
// Templates can access it via .Auth in the template data.
func AuthContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		data := AuthTemplateData{
			CSRFToken: auth.GetCSRFToken(c),
			CSRFField: auth.CSRFFormField,
		}
		if user := auth.CurrentUser(c); user != nil {
			data.LoggedIn = true
			data.Username = user.Username
			data.IsAdmin = user.IsAdmin()
		}

		c.Set("auth_template_data", data)
		c.Next()
	}
}

// GetAuthTemplateData retrieves auth data from context for use in templates.
func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	if data, exists := c.Get("auth_template_data"); exists {
		if authData, ok := data.(AuthTemplateData); ok {
			return authData
		}
	}
	return AuthTemplateData{}
}
