package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/sessiondata"
)

type stubIdentity struct {
	userID uuid.UUID
	ok     bool
}

func (s *stubIdentity) Resolve(context.Context) (uuid.UUID, bool) {
	return s.userID, s.ok
}

func (s *stubIdentity) Invalidate(uuid.UUID) {}

func newTestRouter(t *testing.T, sm *SessionMiddleware, capture **sessiondata.SessionData) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sm.Attach())
	router.GET("/probe", func(c *gin.Context) {
		*capture = sessiondata.GetSessionData(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return router
}

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func TestAttachMintsSessionAndCookie(t *testing.T) {
	userID := uuid.New()
	sm := NewSessionMiddleware(testLog(t), "test-secret", time.Hour, &stubIdentity{userID: userID, ok: true})

	var sd *sessiondata.SessionData
	router := newTestRouter(t, sm, &sd)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

	if sd == nil {
		t.Fatal("session data missing from request context")
	}
	if sd.SessionID == uuid.Nil {
		t.Fatal("expected a minted session id")
	}
	if sd.UserID != userID {
		t.Fatalf("UserID = %s, want %s", sd.UserID, userID)
	}

	cookies := rec.Result().Cookies()
	var found *http.Cookie
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			found = c
		}
	}
	if found == nil {
		t.Fatal("session cookie not set")
	}
	if !found.HttpOnly {
		t.Fatal("session cookie must be http-only")
	}
	if found.MaxAge != 3600 {
		t.Fatalf("cookie MaxAge = %d, want configured ttl 3600", found.MaxAge)
	}
}

func TestAttachReusesValidCookie(t *testing.T) {
	sm := NewSessionMiddleware(testLog(t), "test-secret", 0, &stubIdentity{})

	var first *sessiondata.SessionData
	router := newTestRouter(t, sm, &first)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
	if first == nil {
		t.Fatal("no session data on first request")
	}

	var second *sessiondata.SessionData
	router = newTestRouter(t, sm, &second)
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	router.ServeHTTP(httptest.NewRecorder(), req)

	if second == nil {
		t.Fatal("no session data on second request")
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("session id changed across requests: %s vs %s", first.SessionID, second.SessionID)
	}
}

func TestAttachRejectsForgedCookie(t *testing.T) {
	sm := NewSessionMiddleware(testLog(t), "test-secret", 0, &stubIdentity{})
	forger := NewSessionMiddleware(testLog(t), "other-secret", 0, &stubIdentity{})

	var forged *sessiondata.SessionData
	router := newTestRouter(t, forger, &forged)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

	var sd *sessiondata.SessionData
	router = newTestRouter(t, sm, &sd)
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	router.ServeHTTP(httptest.NewRecorder(), req)

	if sd == nil {
		t.Fatal("no session data")
	}
	if forged != nil && sd.SessionID == forged.SessionID {
		t.Fatal("a cookie signed with another key must not be accepted")
	}
}

func TestAttachWithoutIdentityLeavesUserNil(t *testing.T) {
	sm := NewSessionMiddleware(testLog(t), "test-secret", 0, &stubIdentity{ok: false})

	var sd *sessiondata.SessionData
	router := newTestRouter(t, sm, &sd)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/probe", nil))

	if sd == nil {
		t.Fatal("session data missing")
	}
	if sd.UserID != uuid.Nil {
		t.Fatalf("UserID = %s, want Nil", sd.UserID)
	}
}
