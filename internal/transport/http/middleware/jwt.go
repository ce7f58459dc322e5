package middleware

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"chathdi/internal/pkg/jwtutil"
	"chathdi/internal/transport/http/response"
)

const (
	ContextUserIDKey     = "user_id"
	ContextEmailKey      = "email"
	ContextPrivilegedKey = "privileged"
)

// UserEnsurer records a user row the first time a token subject shows up.
type UserEnsurer interface {
	EnsureExists(id, email string) error
}

// AuthJWT validates bearer tokens from the external auth provider and puts
// the token subject on the request context.
func AuthJWT(secret string, users UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		if users != nil {
			if err := users.EnsureExists(claims.UserID, claims.Email); err != nil {
				log.Printf("ensure user %s failed: %v", claims.UserID, err)
			}
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextEmailKey, claims.Email)
		c.Set(ContextPrivilegedKey, claims.Privileged)
		c.Next()
	}
}
