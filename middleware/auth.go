package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"go-storefront/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// TokenCookie carries the session token for browser clients.
const TokenCookie = "jwt"

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(token string) (*utils.Claims, error)
}

// SessionChecker reports whether a user's session has expired.
type SessionChecker interface {
	Check(ctx context.Context, userID string) (bool, error)
}

// Auth verifies JWT tokens and attaches user information to the context
type Auth struct {
	tokens  TokenParser
	session SessionChecker
}

func NewAuth(tokens TokenParser, session SessionChecker) *Auth {
	return &Auth{tokens: tokens, session: session}
}

// ClaimsFrom returns the claims attached by Auth.Required.
func ClaimsFrom(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// WithClaims attaches claims to ctx.
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", false
		}
		return parts[1], true
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// Required rejects requests without a valid token or with an expired session
func (a *Auth) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := tokenFromRequest(r)
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		claims, err := a.tokens.Parse(tokenStr)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		expired, err := a.session.Check(r.Context(), claims.UserID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", claims.UserID).Msg("middleware: session check failed")
		}
		if expired {
			utils.RespondWithError(w, http.StatusUnauthorized, "Session expired, please log in again")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// AdminOnly ensures that the user has admin privileges
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok || !claims.IsAdmin {
			utils.RespondWithError(w, http.StatusForbidden, "Not authorized as an admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}
