package middleware

import (
	"net/http"
	"strings"

	"auction-house/internal/api/respond"
	"auction-house/internal/domain/clients"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a bearer token and puts the caller's principal in
// the request context.
func AuthMiddleware(tokens *clients.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respond.Fail(c, http.StatusUnauthorized, "Authorization header missing")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
			respond.Fail(c, http.StatusUnauthorized, "Bearer token malformed")
			return
		}

		p, err := tokens.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.Set("client_id", p.ClientID)
		c.Request = c.Request.WithContext(clients.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}
