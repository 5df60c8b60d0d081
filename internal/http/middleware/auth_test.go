package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "reporting-job",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func protectedProbe() (http.Handler, *bool) {
	called := false
	handler := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &called
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	handler, called := protectedProbe()

	req := httptest.NewRequest(http.MethodGet, "/v1/uptime/latest", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !*called {
		t.Fatalf("valid token rejected: %d", rec.Code)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
		{"wrong secret", "Bearer "},
	}
	wrongSecret := signedToken(t, "other-secret")

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, called := protectedProbe()

			req := httptest.NewRequest(http.MethodGet, "/v1/uptime/latest", nil)
			header := tc.header
			if tc.name == "wrong secret" {
				header = "Bearer " + wrongSecret
			}
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if *called {
				t.Fatal("next handler must not run")
			}
		})
	}
}
