// api/middleware/auth_middleware.go
package middleware

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/astro-datacenter/rundb/config"
	"github.com/astro-datacenter/rundb/internal/auth"
	"github.com/astro-datacenter/rundb/internal/logger"
	"github.com/astro-datacenter/rundb/internal/storage"
)

var customLog = logger.NewLogger()

// Context keys set by AuthMiddleware
const (
	UserIDKey   = "userId"
	UserNameKey = "userName"
)

// Realm is announced in the WWW-Authenticate header of rejected requests.
const Realm = "Data Center"

// AuthMiddleware accepts HTTP Basic credentials checked against the users
// table, or a Bearer token issued by /auth/login. Requests without valid
// credentials are aborted before any handler runs.
func AuthMiddleware(db *sql.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, fmt.Errorf("%w: authorization header required", auth.ErrUnauthorized))
			return
		}

		scheme, credentials, ok := strings.Cut(authHeader, " ")
		if !ok {
			abortUnauthorized(c, fmt.Errorf("%w: invalid header format", auth.ErrTokenMalformed))
			return
		}

		ctx := c.Request.Context()
		var userName string
		switch strings.ToLower(scheme) {
		case "basic":
			name, password, ok := c.Request.BasicAuth()
			if !ok {
				abortUnauthorized(c, fmt.Errorf("%w: malformed basic credentials", auth.ErrUnauthorized))
				return
			}
			user, err := auth.Authenticate(ctx, db, name, password)
			if err != nil {
				abortUnauthorized(c, err)
				return
			}
			c.Set(UserIDKey, user.ID)
			userName = user.Name

		case "bearer":
			name, err := auth.ValidateJWT(credentials, cfg.JWTSecret)
			if err != nil {
				abortUnauthorized(c, err)
				return
			}
			user, err := storage.FindUserByName(ctx, db, name)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					err = fmt.Errorf("%w: user of token no longer exists", auth.ErrUnauthorized)
				}
				abortUnauthorized(c, err)
				return
			}
			c.Set(UserIDKey, user.ID)
			userName = user.Name

		default:
			abortUnauthorized(c, fmt.Errorf("%w: unsupported scheme '%s'", auth.ErrTokenMalformed, scheme))
			return
		}

		customLog.Debugf("AuthMiddleware: Auth success. User: %s (Scheme: %s)", userName, scheme)
		c.Set(UserNameKey, userName)
		c.Next()
	}
}

// abortUnauthorized attaches err for ErrorHandler and stops the chain.
func abortUnauthorized(c *gin.Context, err error) {
	customLog.Warnf("AuthMiddleware: Authentication failed: %v", err)
	c.Header("WWW-Authenticate", `Basic realm="`+Realm+`"`)
	_ = c.Error(err)
	c.Abort()
}
