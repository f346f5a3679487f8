package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/identity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/dto"
)

// RequireRoles allows only the given roles past. Must run after JWTAuth.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}
		if !claims.HasRole(names...) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Insufficient permissions"))
			return
		}
		c.Next()
	}
}

// RequireStaff allows admin and staff tokens
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(identity.RoleAdmin, identity.RoleStaff)
}

// RequireAdmin allows admin tokens only
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(identity.RoleAdmin)
}
