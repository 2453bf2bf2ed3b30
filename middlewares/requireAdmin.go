package middlewares

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RequireRole lets the request through when the authenticated user has one
// of roles. It must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	denied := accessMessage(roles)
	return func(ctx *gin.Context) {
		userClaims, exists := ctx.Get("user")
		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found in context"})
			return
		}

		claims, ok := userClaims.(jwt.MapClaims)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found in context"})
			return
		}
		role, ok := claims["role"].(string)
		if !ok || !slices.Contains(roles, role) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": denied})
			return
		}

		ctx.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRole("admin")
}

// accessMessage names the allowed roles, e.g. "Admin or supplier access required".
func accessMessage(roles []string) string {
	if len(roles) == 0 {
		return "Access denied"
	}
	msg := strings.Join(roles, " or ")
	return strings.ToUpper(msg[:1]) + msg[1:] + " access required"
}
