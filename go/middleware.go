package commerceserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apierrors "github.com/Apurer/go-gin-commerce/internal/shared/errors"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

const (
	// SessionCookieName carries the anonymous session id.
	SessionCookieName = "session_id"
	// SessionHeader lets non-browser clients supply the session id.
	SessionHeader = "X-Session-ID"
)

var errInvalidToken = errors.New("invalid bearer token")

// IdentityConfig configures how callers are recognised.
type IdentityConfig struct {
	// JWTSecret verifies HS256 bearer tokens. Without it every bearer token is rejected.
	JWTSecret []byte
	// SessionMaxAge is the lifetime of an issued session cookie.
	SessionMaxAge time.Duration
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
}

// IdentityMiddleware resolves the caller and stores it on the request context.
// A bearer token wins over a session; an anonymous caller without a session gets one.
func IdentityMiddleware(cfg IdentityConfig, responder *apierrors.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var caller identity.Identity
		if header := c.GetHeader("Authorization"); header != "" {
			userID, err := userFromBearer(header, cfg.JWTSecret)
			if err != nil {
				responder.Respond(c, apierrors.ErrUnauthorized.WithDetail(err.Error()))
				return
			}
			caller = identity.User(userID)
		} else {
			caller = identity.Session(sessionID(c, cfg))
		}
		c.Request = c.Request.WithContext(identity.WithContext(c.Request.Context(), caller))
		c.Next()
	}
}

func userFromBearer(header string, secret []byte) (string, error) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return "", errInvalidToken
	}
	if len(secret) == 0 {
		return "", errInvalidToken
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errInvalidToken
	}
	if sub, err := claims.GetSubject(); err == nil && strings.TrimSpace(sub) != "" {
		return sub, nil
	}
	if userID, ok := claims["user_id"].(string); ok && strings.TrimSpace(userID) != "" {
		return userID, nil
	}
	return "", errInvalidToken
}

func sessionID(c *gin.Context, cfg IdentityConfig) string {
	if id := strings.TrimSpace(c.GetHeader(SessionHeader)); id != "" {
		return id
	}
	if id, err := c.Cookie(SessionCookieName); err == nil && strings.TrimSpace(id) != "" {
		return id
	}
	id := uuid.NewString()
	maxAge := cfg.SessionMaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	c.SetCookie(SessionCookieName, id, int(maxAge.Seconds()), "/", "", cfg.SecureCookie, true)
	return id
}

// RequestTimeout bounds every request's context. A handler that runs past it sees
// context.DeadlineExceeded, which is rendered as an internal error.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func callerOf(c *gin.Context) identity.Identity {
	return identity.FromContext(c.Request.Context())
}
