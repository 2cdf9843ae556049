package auth

import (
	"context"
	"net/http"

	"github.com/sakif/restaurant-directory/internal/model"
)

// CookieName is the cookie the session token travels in.
//
// The cookie is HttpOnly (JavaScript cannot read it — XSS protection),
// SameSite=Lax, and its Max-Age equals the token TTL so the cookie and the
// token expire together. Logout overwrites it with an empty, already-expired
// value.
const CookieName = "jwt"

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "userID", id), ANY package that knows the string "userID"
// can read or shadow your value. Using a package-private type prevents collisions:
// only THIS package can create a key of type contextKey, so only this package
// can read or write identity values in the context.
type contextKey string

const (
	userIDKey contextKey = "userID"
	userKey   contextKey = "user"
)

// UserResolver looks up the full user record for a token subject.
// repository.UserRepository satisfies it; the middleware only needs this one
// method, so it asks for no more.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth is the ENFORCING middleware, applied to routes that mutate
// state or expose sensitive actions.
//
// Decision per request:
//
//	no cookie            → 401, handler never runs
//	cookie fails Validate → 401, handler never runs
//	cookie valid         → userID stored in context, handler runs
//
// It deliberately does NOT load the full user record — the token subject is
// enough for downstream authorization, and skipping the lookup keeps the
// hot path off the database. Handlers that need the record resolve it
// themselves (or rely on CurrentUser, which runs earlier in the chain).
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler. The new handler "wraps" the original:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... do stuff before the handler ...
//	        next.ServeHTTP(w, r)
//	        // ... do stuff after the handler ...
//	    })
//	}
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				// http.Error would stomp the Content-Type to text/plain,
				// so write the JSON denial by hand.
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthenticated","message":"valid authentication required"}` + "\n"))
				return
			}

			// Store userID in context so handlers can read it
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser is the OBSERVING middleware, applied globally — it runs on
// every request and NEVER terminates one.
//
// If a valid token cookie is present, it resolves the full user record and
// attaches it (plus the userID) to the context. In every other case — no
// cookie, malformed token, expired token, or a subject that no longer
// resolves to a user (deleted account) — the request simply proceeds
// anonymously.
//
// Handlers check identity via UserFromContext; ( nil, false ) means the
// request is anonymous.
func CurrentUser(tokens *TokenService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil || userID == "" {
				// Anonymous — always continue
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				// Token is valid but the account is gone (or the store
				// failed) — treat as anonymous rather than rejecting.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request context.
//
// Returns ("", false) if the request is anonymous (no valid token was present).
// Returns (id, true) if the user is authenticated.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// UserFromContext retrieves the full user record attached by CurrentUser.
//
// Returns (nil, false) on anonymous requests, and on routes protected only
// by RequireAuth (which stores just the ID).
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// extractUserID reads the JWT cookie and validates it.
// This is a private helper shared by RequireAuth and CurrentUser.
//
// COOKIE FLOW:
// 1. Set-Cookie: jwt=<token>; HttpOnly; SameSite=Lax (set on login)
// 2. Browser automatically sends Cookie: jwt=<token> on subsequent requests
// 3. We read r.Cookie("jwt") and validate it
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		// http.ErrNoCookie means the cookie isn't present — not an error, just anonymous
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
