package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"

	"github.com/sakif/restaurant-directory/internal/apperror"
	"github.com/sakif/restaurant-directory/internal/auth"
	"github.com/sakif/restaurant-directory/internal/handler"
	"github.com/sakif/restaurant-directory/internal/model"
	"github.com/sakif/restaurant-directory/internal/service"
)

// memUserRepo is an in-memory repository.UserRepository with the same
// contract as the real store: unique usernames, ErrNotFound on miss.
type memUserRepo struct {
	byID       map[string]*model.User
	byUsername map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:       make(map[string]*model.User),
		byUsername: make(map[string]*model.User),
	}
}

func (m *memUserRepo) Create(ctx context.Context, u *model.User) error {
	if _, taken := m.byUsername[u.Username]; taken {
		return apperror.Conflict("username", u.Username)
	}
	u.ID = xid.New().String()
	copied := *u
	m.byID[u.ID] = &copied
	m.byUsername[u.Username] = &copied
	return nil
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, ok := m.byUsername[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	copied := *u
	return &copied, nil
}

func (m *memUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

// newAuthRouter wires the auth handler the same way server.go does,
// including the enforcing middleware on /api/me.
func newAuthRouter(t *testing.T) (*chi.Mux, *auth.TokenService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	// bcrypt cost 4 keeps the tests fast; production uses the default
	passwords := auth.NewPasswordService(4)
	authSvc := service.NewAuthService(newMemUserRepo(), tokens, passwords, logger)
	h := handler.NewAuthHandler(authSvc, tokens, logger)

	r := chi.NewRouter()
	r.Post("/signup", h.HandleSignup)
	r.Post("/login", h.HandleLogin)
	r.Get("/logout", h.HandleLogout)
	r.With(auth.RequireAuth(tokens)).Get("/api/me", h.HandleMe)
	return r, tokens
}

func postJSON(router http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatalf("no %q cookie in response", auth.CookieName)
	return nil
}

func TestAuthHandler_Signup(t *testing.T) {
	t.Run("JSON body", func(t *testing.T) {
		router, _ := newAuthRouter(t)

		rr := postJSON(router, "/signup", `{"username": "alice-anderson", "password": "s3cret-pass"}`)
		assert.Equal(t, http.StatusCreated, rr.Code)

		var got map[string]string
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.NotEmpty(t, got["id"])
	})

	t.Run("form body", func(t *testing.T) {
		router, _ := newAuthRouter(t)

		form := url.Values{"username": {"alice-anderson"}, "password": {"s3cret-pass"}}
		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("short username", func(t *testing.T) {
		router, _ := newAuthRouter(t)

		rr := postJSON(router, "/signup", `{"username": "al", "password": "s3cret-pass"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decodeError(t, rr).Error)
	})

	t.Run("duplicate username", func(t *testing.T) {
		router, _ := newAuthRouter(t)

		rr := postJSON(router, "/signup", `{"username": "alice-anderson", "password": "s3cret-pass"}`)
		assert.Equal(t, http.StatusCreated, rr.Code)

		rr = postJSON(router, "/signup", `{"username": "alice-anderson", "password": "different-pass"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "conflict", decodeError(t, rr).Error)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success sets cookie and redirects", func(t *testing.T) {
		router, tokens := newAuthRouter(t)

		rr := postJSON(router, "/signup", `{"username": "alice-anderson", "password": "s3cret-pass"}`)
		assert.Equal(t, http.StatusCreated, rr.Code)
		var created map[string]string
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

		rr = postJSON(router, "/login", `{"username": "alice-anderson", "password": "s3cret-pass"}`)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))

		cookie := sessionCookie(t, rr)
		assert.True(t, cookie.HttpOnly, "session cookie must be HttpOnly")
		assert.Equal(t, int(tokens.TTL().Seconds()), cookie.MaxAge, "cookie must expire with the token")

		// The cookie value is a real token for the signed-up user.
		userID, err := tokens.Validate(cookie.Value)
		assert.NoError(t, err)
		assert.Equal(t, created["id"], userID)
	})

	t.Run("unknown username and wrong password are indistinguishable", func(t *testing.T) {
		router, _ := newAuthRouter(t)

		rr := postJSON(router, "/signup", `{"username": "alice-anderson", "password": "s3cret-pass"}`)
		assert.Equal(t, http.StatusCreated, rr.Code)

		unknownUser := postJSON(router, "/login", `{"username": "nobody-here-xyz", "password": "s3cret-pass"}`)
		wrongPass := postJSON(router, "/login", `{"username": "alice-anderson", "password": "wrong-password"}`)

		// Same status, same body. Anything else lets a caller probe which
		// usernames exist.
		assert.Equal(t, http.StatusBadRequest, unknownUser.Code)
		assert.Equal(t, http.StatusBadRequest, wrongPass.Code)
		assert.Equal(t, unknownUser.Body.String(), wrongPass.Body.String())
		assert.Equal(t, "bad_credentials", decodeError(t, unknownUser).Error)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	router, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)

	cookie := sessionCookie(t, rr)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge, "MaxAge < 0 tells the browser to delete the cookie")
}

func TestAuthHandler_Me(t *testing.T) {
	router, _ := newAuthRouter(t)

	rr := postJSON(router, "/signup", `{"username": "alice-anderson", "password": "s3cret-pass"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = postJSON(router, "/login", `{"username": "alice-anderson", "password": "s3cret-pass"}`)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	cookie := sessionCookie(t, rr)

	t.Run("with session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()

		var got model.User
		assert.NoError(t, json.Unmarshal([]byte(body), &got))
		assert.Equal(t, "alice-anderson", got.Username)
		// PasswordHash is json:"-" — it must never appear in a response.
		assert.NotContains(t, body, "password")
	})

	t.Run("without session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "unauthenticated", decodeError(t, rr).Error)
	})
}
