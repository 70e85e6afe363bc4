package middleware

import (
	"net/http"
	"strings"

	"meetmap/config"
	"meetmap/internal/auth"
	"meetmap/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID  = "user_id"
	ctxSession = "session"
)

// SessionFromRequest validates the bearer token of a request. It returns nil
// and the reason when there is no usable session.
func SessionFromRequest(c *gin.Context, cfg *config.JWTConfig, revoker auth.Revoker) (*service.Session, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, errMissingHeader
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errBadFormat
	}
	return service.SessionFromToken(c.Request.Context(), cfg, revoker, parts[1])
}

// AuthRequired validates the JWT and stores the Session in the gin context.
func AuthRequired(cfg *config.JWTConfig, revoker auth.Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := SessionFromRequest(c, cfg, revoker)
		switch err {
		case nil:
		case errMissingHeader:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		case errBadFormat:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(ctxUserID, sess.UserID)
		c.Set(ctxSession, sess)
		c.Next()
	}
}

// GetUserID returns the authenticated user ID from context (must be used after AuthRequired).
func GetUserID(c *gin.Context) uint {
	v, _ := c.Get(ctxUserID)
	if v == nil {
		return 0
	}
	return v.(uint)
}

// GetSession returns the Session stored by AuthRequired, or nil.
func GetSession(c *gin.Context) *service.Session {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*service.Session)
	return sess
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errMissingHeader authError = "missing authorization header"
	errBadFormat     authError = "invalid authorization format"
)
