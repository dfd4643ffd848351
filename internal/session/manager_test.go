package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"signup-auth/internal/domain"
)

func setupManagerRouter(t *testing.T, store Store) (*gin.Engine, *Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m, err := NewManager(store, Options{Secret: "session-secret", TTL: time.Hour}, zap.NewNop())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	r := gin.New()
	r.Use(m.Middleware())
	r.POST("/login", func(c *gin.Context) {
		SetCurrentUser(FromContext(c), domain.SessionUser{ID: "u1", Email: "a@x.com"})
		if err := m.Save(c); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/me", func(c *gin.Context) {
		user, err := GetCurrentUser(FromContext(c))
		if err != nil {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.String(http.StatusOK, user.Email)
	})
	r.POST("/logout", func(c *gin.Context) {
		_ = m.Destroy(c)
		c.Status(http.StatusNoContent)
	})
	return r, m
}

func authCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("expected %s cookie", CookieName)
	return nil
}

func TestManagerPersistsAcrossRequests(t *testing.T) {
	r, _ := setupManagerRouter(t, NewMemoryStore())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookie := authCookie(t, rec)
	if !cookie.HttpOnly {
		t.Fatalf("expected http-only cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "a@x.com" {
		t.Fatalf("expected signed in user, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestManagerRejectsTamperedCookie(t *testing.T) {
	r, _ := setupManagerRouter(t, NewMemoryStore())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookie := authCookie(t, rec)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cookieClaims{
		SessionID:        "anything",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	for _, value := range []string{cookie.Value + "x", forged, "garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: value})
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %q, got %d", value, rec.Code)
		}
	}
}

func TestManagerDestroy(t *testing.T) {
	store := NewMemoryStore()
	r, _ := setupManagerRouter(t, store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookie := authCookie(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if cleared := authCookie(t, rec); cleared.MaxAge >= 0 {
		t.Fatalf("expected cookie to be expired, got max-age %d", cleared.MaxAge)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected old cookie to be signed out, got %d", rec.Code)
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(nil, Options{Secret: "s"}, nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
	if _, err := NewManager(NewMemoryStore(), Options{}, nil); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestManagerRenewReplacesSession(t *testing.T) {
	store := NewMemoryStore()
	r, m := setupManagerRouter(t, store)
	r.POST("/renew", func(c *gin.Context) {
		old := FromContext(c).ID()
		s := m.Renew(c)
		if s.ID() == old || FromContext(c) != s {
			c.Status(http.StatusInternalServerError)
			return
		}
		if IsSignedIn(s) {
			c.Status(http.StatusConflict)
			return
		}
		SetCurrentUser(s, domain.SessionUser{ID: "u2", Email: "b@x.com"})
		if err := m.Save(c); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	planted := authCookie(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/renew", nil)
	req.AddCookie(planted)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	renewed := authCookie(t, rec)
	if renewed.Value == planted.Value {
		t.Fatalf("expected a new cookie")
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(planted)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected old session to be gone, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(renewed)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "b@x.com" {
		t.Fatalf("expected renewed user, got %d %q", rec.Code, rec.Body.String())
	}
}
