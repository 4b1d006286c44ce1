package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func protected(a *Authenticator) (http.Handler, *string) {
	var seen string
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = OperatorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen
}

func do(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/tick", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMiddlewareDisabledPassesThrough(t *testing.T) {
	h, seen := protected(New(""))
	rr := do(h, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, *seen)
}

func TestMiddlewareAcceptsDispatcher(t *testing.T) {
	token, err := Issue(secret, "controller-7", []string{"viewer", DispatcherRole}, time.Hour)
	require.NoError(t, err)

	h, seen := protected(New(secret))
	rr := do(h, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "controller-7", *seen)
}

func TestMiddlewareAcceptsTokenWithoutRolesClaim(t *testing.T) {
	token, err := Issue(secret, "controller-7", nil, time.Hour)
	require.NoError(t, err)
	h, _ := protected(New(secret))
	assert.Equal(t, http.StatusNoContent, do(h, token).Code)
}

func TestMiddlewareRejects(t *testing.T) {
	wrongRole, err := Issue(secret, "viewer-1", []string{"viewer"}, time.Hour)
	require.NoError(t, err)
	wrongSecret, err := Issue("other", "controller-7", nil, time.Hour)
	require.NoError(t, err)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "controller-7",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"roles": []string{DispatcherRole},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", wrongSecret, http.StatusUnauthorized},
		{"expired", expired, http.StatusUnauthorized},
		{"no subject", noSubject, http.StatusUnauthorized},
		{"wrong role", wrongRole, http.StatusForbidden},
	}
	h, _ := protected(New(secret))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(h, tc.token)
			assert.Equal(t, tc.status, rr.Code)
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}
}

func TestIssueRequiresSecret(t *testing.T) {
	_, err := Issue("", "x", nil, 0)
	assert.Error(t, err)
}
