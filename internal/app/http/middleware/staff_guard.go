package middleware

import (
	"net/http"

	"auction-house/internal/api/respond"
	"auction-house/internal/domain/clients"

	"github.com/gin-gonic/gin"
)

// RequireStaff lets only staff accounts through. It must run after
// AuthMiddleware.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := clients.PrincipalFrom(c.Request.Context())
		if !ok {
			respond.Fail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !p.IsStaff {
			respond.Fail(c, http.StatusForbidden, "Staff access required")
			return
		}
		c.Next()
	}
}

// RequireSelfOrStaff lets staff through, and clients whose id is the path
// parameter param.
func RequireSelfOrStaff(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := clients.PrincipalFrom(c.Request.Context())
		if !ok {
			respond.Fail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		id, ok := respond.ID(c, param)
		if !ok {
			return
		}
		if !p.CanActFor(id) {
			respond.Fail(c, http.StatusForbidden, "You can only view your own lots")
			return
		}
		c.Next()
	}
}
