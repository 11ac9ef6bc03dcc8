package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
	"go-storefront/session"
	"go-storefront/storage"
	"go-storefront/utils"
)

type authFixture struct {
	issuer *utils.TokenIssuer
	guard  *session.Guard
	auth   *Auth
	user   *models.User
	token  string
}

func newAuthFixture(t *testing.T, admin bool) *authFixture {
	t.Helper()
	issuer := utils.NewTokenIssuer("test-secret", time.Hour)
	guard := session.NewGuard(storage.NewMemoryKV())
	user := &models.User{ID: primitive.NewObjectID(), Name: "Alice", IsAdmin: admin}

	token, _, err := issuer.Issue(user)
	require.NoError(t, err)

	return &authFixture{
		issuer: issuer,
		guard:  guard,
		auth:   NewAuth(issuer, guard),
		user:   user,
		token:  token,
	}
}

func claimsEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User", claims.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequiredAcceptsBearerToken(t *testing.T) {
	f := newAuthFixture(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()

	f.auth.Required(claimsEcho(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, f.user.ID.Hex(), rec.Header().Get("X-User"))
}

func TestRequiredAcceptsCookie(t *testing.T) {
	f := newAuthFixture(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: f.token})
	rec := httptest.NewRecorder()

	f.auth.Required(claimsEcho(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequiredRejectsMissingOrBadToken(t *testing.T) {
	f := newAuthFixture(t, false)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "garbage", header: "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			f.auth.Required(claimsEcho(t)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequiredRejectsExpiredSession(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()
	userID := f.user.ID.Hex()
	require.NoError(t, f.guard.Start(ctx, userID, time.Now().Add(-time.Minute)))

	var cleared []string
	f.guard.OnExpired(func(_ context.Context, id string) { cleared = append(cleared, id) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()

	f.auth.Required(claimsEcho(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, []string{userID}, cleared)

	// the expiry was discarded, so the next check passes through
	rec = httptest.NewRecorder()
	f.auth.Required(claimsEcho(t)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequiredAllowsLiveSession(t *testing.T) {
	f := newAuthFixture(t, false)
	require.NoError(t, f.guard.Start(context.Background(), f.user.ID.Hex(), time.Now().Add(time.Hour)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()

	f.auth.Required(claimsEcho(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminOnly(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	for _, tc := range []struct {
		name   string
		claims *utils.Claims
		want   int
	}{
		{name: "admin", claims: &utils.Claims{IsAdmin: true}, want: http.StatusNoContent},
		{name: "customer", claims: &utils.Claims{}, want: http.StatusForbidden},
		{name: "anonymous", want: http.StatusForbidden},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tc.claims))
			}
			rec := httptest.NewRecorder()

			AdminOnly(ok).ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestCheckObjectID(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/products/{id}", CheckObjectID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/not-an-id", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid ObjectId of: not-an-id"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/"+primitive.NewObjectID().Hex(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLoggerKeepsStatus(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
