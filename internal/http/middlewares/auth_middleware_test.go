package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/auth"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(token string) (*auth.Claims, error) {
	return f.claims, f.err
}

func okHandler(c *gin.Context) {
	id, _ := middlewares.UserIDFromContext(c)
	role, _ := middlewares.RoleFromContext(c)
	c.JSON(http.StatusOK, gin.H{"userId": id, "role": role})
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name           string
		header         string
		verifier       *fakeVerifier
		wantStatusCode int
	}{
		{
			name:           "missing_header",
			header:         "",
			verifier:       &fakeVerifier{},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "not_bearer",
			header:         "Basic abc123",
			verifier:       &fakeVerifier{},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "empty_token",
			header:         "Bearer ",
			verifier:       &fakeVerifier{},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "rejected_token",
			header:         "Bearer bad-token",
			verifier:       &fakeVerifier{err: errors.New("expired")},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "valid_token",
			header: "Bearer good-token",
			verifier: &fakeVerifier{
				claims: &auth.Claims{UserID: "u-1", Email: "a@example.com", Role: "student"},
			},
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(tt.verifier)

			r := gin.New()
			r.GET("/protected", m.RequireAuth(), okHandler)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireAuthStashesIdentity(t *testing.T) {
	m := middlewares.NewAuthMiddleware(&fakeVerifier{
		claims: &auth.Claims{UserID: "u-42", Email: "b@example.com", Role: "proctor"},
	})

	r := gin.New()
	r.GET("/protected", m.RequireAuth(), okHandler)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	for _, want := range []string{"u-42", "proctor"} {
		if !strings.Contains(body, want) {
			t.Fatalf("identity %q not threaded to handler, body=%s", want, body)
		}
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name           string
		role           string
		required       string
		wantStatusCode int
	}{
		{"matching_role", "proctor", "proctor", http.StatusOK},
		{"wrong_role", "student", "proctor", http.StatusForbidden},
		{"missing_identity", "", "proctor", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(&fakeVerifier{})

			r := gin.New()
			r.GET("/admin", func(c *gin.Context) {
				if tt.role != "" {
					middlewares.SetIdentity(c, "u-1", "a@example.com", tt.role)
				}
			}, m.RequireRole(tt.required), okHandler)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
