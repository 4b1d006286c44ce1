// Package auth guards operator actions with HS256 bearer tokens.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DispatcherRole must appear in the roles claim when the claim is present.
const DispatcherRole = "dispatcher"

var (
	ErrMissingToken = errors.New("authentication required: bearer token")
	ErrForbidden    = errors.New("missing dispatcher role")
)

type ctxKey struct{}

// Authenticator verifies tokens signed with a shared secret. An empty
// secret disables verification.
type Authenticator struct {
	secret []byte
}

func New(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Enabled() bool {
	return a != nil && len(a.secret) > 0
}

// Verify checks the token and returns the operator named by its subject.
func (a *Authenticator) Verify(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("token parse error: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	if raw, present := claims["roles"]; present {
		roles, ok := raw.([]interface{})
		if !ok {
			return "", ErrForbidden
		}
		found := false
		for _, r := range roles {
			if s, ok := r.(string); ok && s == DispatcherRole {
				found = true
				break
			}
		}
		if !found {
			return "", ErrForbidden
		}
	}
	return sub, nil
}

// Middleware rejects requests without a valid token and stores the
// operator on the request context. It passes everything through when
// disabled.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
			return
		}
		operator, err := a.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrForbidden) {
				status = http.StatusForbidden
			}
			writeError(w, status, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), operator)))
	})
}

// Issue signs a token for operator. Used by the CLI and tests.
func Issue(secret, operator string, roles []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("secret required")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": operator,
		"iat": now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	if roles != nil {
		claims["roles"] = roles
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, ctxKey{}, operator)
}

// OperatorFromContext returns the authenticated operator, or "" when the
// request was not authenticated.
func OperatorFromContext(ctx context.Context) string {
	op, _ := ctx.Value(ctxKey{}).(string)
	return op
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
