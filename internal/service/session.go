package service

import (
	"context"
	"time"

	"meetmap/config"
	"meetmap/internal/auth"
	"meetmap/internal/domain"
)

// Session is the signed-in caller. It is passed explicitly to services
// instead of being read from ambient state.
type Session struct {
	UserID    uint
	Email     string
	TokenID   string
	SessionID string
	ExpiresAt time.Time
}

// SessionFromToken validates an access token and checks it was not revoked.
func SessionFromToken(ctx context.Context, cfg *config.JWTConfig, revoker auth.Revoker, token string) (*Session, error) {
	claims, err := auth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, err
	}
	if revoker != nil && claims.ID != "" {
		revoked, err := revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, auth.ErrRevokedToken
		}
	}
	sess := &Session{UserID: claims.UserID, Email: claims.Email, TokenID: claims.ID, SessionID: claims.SessionID}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// ResolveRoute is the splash decision: HOME with a session, LOGIN without.
func ResolveRoute(sess *Session) string {
	if sess == nil || sess.UserID == 0 {
		return domain.RouteLogin
	}
	return domain.RouteHome
}
