package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/services"
	"github.com/ainexus/nexus-backend/internal/sessiondata"
)

const (
	sessionCookieName = "nexus_session"
	defaultSessionTTL = 30 * 24 * time.Hour
)

type SessionMiddleware struct {
	log      *logger.Logger
	secret   []byte
	ttl      time.Duration
	identity services.IdentityService
}

func NewSessionMiddleware(log *logger.Logger, secret string, ttl time.Duration, identity services.IdentityService) *SessionMiddleware {
	middlewareLogger := log.With("Middleware", "SessionMiddleware")
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionMiddleware{log: middlewareLogger, secret: []byte(secret), ttl: ttl, identity: identity}
}

// Attach resolves (or mints) the session id from the signed cookie, resolves
// the durable identity when the store is up, and places both on the request
// context. It never rejects a request: a missing or bad cookie just starts a
// fresh session.
func (sm *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sm.sessionFromCookie(c)
		if !ok {
			sessionID = uuid.New()
			sm.setCookie(c, sessionID)
		}

		ctx := c.Request.Context()
		userID, _ := sm.identity.Resolve(ctx)
		ctx = sessiondata.WithSessionData(ctx, &sessiondata.SessionData{
			SessionID: sessionID,
			UserID:    userID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (sm *SessionMiddleware) sessionFromCookie(c *gin.Context) (uuid.UUID, bool) {
	raw, err := c.Cookie(sessionCookieName)
	if err != nil || raw == "" {
		return uuid.Nil, false
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return sm.secret, nil
	})
	if err != nil || !token.Valid {
		sm.log.Debug("session cookie rejected", "error", err)
		return uuid.Nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, false
	}
	sid, ok := claims["sid"].(string)
	if !ok {
		return uuid.Nil, false
	}
	sessionID, err := uuid.Parse(sid)
	if err != nil {
		return uuid.Nil, false
	}
	return sessionID, true
}

func (sm *SessionMiddleware) setCookie(c *gin.Context, sessionID uuid.UUID) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID.String(),
		"iat": now.Unix(),
		"exp": now.Add(sm.ttl).Unix(),
	})
	signed, err := token.SignedString(sm.secret)
	if err != nil {
		sm.log.Error("failed to sign session cookie", "error", err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, signed, int(sm.ttl.Seconds()), "/", "", false, true)
}
