package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	accessTokenCookie  = "sb-access-token"
	refreshTokenCookie = "sb-refresh-token"
)

// requireSession validates the caller's session against the auth backend.
// The token comes from the Authorization header or the session cookie.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if v, err := c.Cookie(accessTokenCookie); err == nil {
				token = v
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := s.Auth.GetUser(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

// authCallback exchanges the OAuth code for a session and sends the browser
// to the dashboard. The redirect happens with or without a code, matching
// the provider's callback contract.
func (s *Server) authCallback(c *gin.Context) {
	if code := c.Query("code"); code != "" {
		session, err := s.Auth.ExchangeCode(c.Request.Context(), code)
		if err != nil {
			s.log().Warn("code exchange failed", "error", err)
		} else {
			maxAge := session.ExpiresIn
			if maxAge <= 0 {
				maxAge = 3600
			}
			c.SetCookie(accessTokenCookie, session.AccessToken, maxAge, "/", "", false, true)
			if session.RefreshToken != "" {
				c.SetCookie(refreshTokenCookie, session.RefreshToken, maxAge, "/", "", false, true)
			}
		}
	}
	c.Redirect(http.StatusFound, s.DashboardURL)
}

func bearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
