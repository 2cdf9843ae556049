package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/restaurant-directory/internal/apperror"
	"github.com/sakif/restaurant-directory/internal/auth"
	"github.com/sakif/restaurant-directory/internal/service"
)

// AuthHandler manages signup, login, logout, and the current-user endpoint.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignup → create the account, answer 201 with the new id
//   - HandleLogin  → authenticate, set the JWT cookie, redirect
//   - HandleLogout → clear the JWT cookie, redirect
//   - HandleMe     → return the currently logged-in user's profile
//
// Cookies are an HTTP concern, so they are set HERE — the service layer
// issues tokens but never touches http.ResponseWriter.
type AuthHandler struct {
	authSvc *service.AuthService
	tokens  *auth.TokenService
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(authSvc *service.AuthService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
		tokens:  tokens,
		logger:  logger,
	}
}

// credentials is the request body for signup and login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// readCredentials accepts either a JSON body or a classic HTML form POST.
// The directory started life behind server-rendered forms, and
// x-www-form-urlencoded logins must keep working alongside API clients.
func readCredentials(r *http.Request) (credentials, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var c credentials
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			return credentials{}, err
		}
		return c, nil
	}

	if err := r.ParseForm(); err != nil {
		return credentials{}, err
	}
	return credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}, nil
}

// setSessionCookie stores the JWT in the "jwt" HttpOnly cookie.
//
// Max-Age equals the token TTL in whole seconds, so the cookie and the
// token expire together. HttpOnly keeps it out of reach of page scripts;
// SameSite=Lax keeps it off cross-site POSTs.
// Secure should be true behind HTTPS; left false for local dev.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // Uncomment in production (requires HTTPS)
	})
}

// HandleSignup creates a new account.
//
// HTTP: POST /signup
// BODY: {"username": "...", "password": "..."} (or a form POST)
//
// 201 with the created user's id on success. A taken username answers 400
// with the "conflict" kind and its specific message — the signup form
// renders it verbatim.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil {
		h.logger.Warn("signup: unreadable body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "request body must be JSON or form data"))
		return
	}

	user, err := h.authSvc.Signup(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": user.ID})
}

// HandleLogin authenticates and opens a session.
//
// HTTP: POST /login
//
// On success: Set-Cookie jwt=<token> and a 303 redirect to /.
//
// ONE MESSAGE FOR BOTH FAILURES:
// The service reports "unknown username" and "wrong password" as distinct
// kinds so they can be logged apart — but the response is the same 400 for
// both. Answering them differently turns the login form into a username
// oracle.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil {
		h.logger.Warn("login: unreadable body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "request body must be JSON or form data"))
		return
	}

	result, err := h.authSvc.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrBadCredentials) {
			// The service already logged which kind it was.
			writeError(w, apperror.BadCredentials())
			return
		}
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the JWT cookie, effectively logging the user out.
//
// HTTP: GET /logout
//
// Since sessions are stateless, "logout" just means deleting the
// client-side cookie. The token itself remains cryptographically valid
// until its natural expiry — there is no server-side revocation list.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/me
// Auth: enforcing (RequireAuth sets the userID in context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Should never happen on a RequireAuth-protected route, but be safe.
		writeError(w, apperror.Unauthenticated())
		return
	}

	user, err := h.authSvc.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("HandleMe: user lookup failed", slog.String("userID", userID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
