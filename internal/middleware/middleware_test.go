package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentorx/internal/domain/models"
	"mentorx/internal/httputil"
)

type fakeVerifier struct {
	claims *models.SupabaseClaims
	err    error
	got    string
}

func (f *fakeVerifier) VerifyToken(token string) (*models.SupabaseClaims, error) {
	f.got = token
	return f.claims, f.err
}

func (f *fakeVerifier) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoPrincipal responds 200 with the principal's role, or 204 when absent.
var echoPrincipal = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	p, ok := httputil.GetPrincipal(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Write([]byte(p.UserID + ":" + p.Role))
})

func TestAuth(t *testing.T) {
	mentorClaims := &models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		AppMetadata:      map[string]interface{}{"role": "mentor"},
	}

	tests := []struct {
		name     string
		method   string
		path     string
		header   string
		verifier *fakeVerifier
		wantCode int
		wantBody string
	}{
		{
			name:     "valid token",
			method:   http.MethodGet,
			path:     "/api/layouts",
			header:   "Bearer good",
			verifier: &fakeVerifier{claims: mentorClaims},
			wantCode: http.StatusOK,
			wantBody: "user-1:mentor",
		},
		{
			name:     "lowercase scheme",
			method:   http.MethodGet,
			path:     "/api/layouts",
			header:   "bearer good",
			verifier: &fakeVerifier{claims: mentorClaims},
			wantCode: http.StatusOK,
			wantBody: "user-1:mentor",
		},
		{
			name:     "missing header",
			method:   http.MethodGet,
			path:     "/api/layouts",
			verifier: &fakeVerifier{claims: mentorClaims},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "basic auth",
			method:   http.MethodGet,
			path:     "/api/layouts",
			header:   "Basic Zm9vOmJhcg==",
			verifier: &fakeVerifier{claims: mentorClaims},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "rejected token",
			method:   http.MethodGet,
			path:     "/api/layouts",
			header:   "Bearer bad",
			verifier: &fakeVerifier{err: errors.New("expired")},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "no subject",
			method:   http.MethodGet,
			path:     "/api/layouts",
			header:   "Bearer good",
			verifier: &fakeVerifier{claims: &models.SupabaseClaims{}},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "health is public",
			method:   http.MethodGet,
			path:     "/health",
			verifier: &fakeVerifier{err: errors.New("unused")},
			wantCode: http.StatusNoContent,
		},
		{
			name:     "health lookalike needs a token",
			method:   http.MethodGet,
			path:     "/healthz",
			verifier: &fakeVerifier{err: errors.New("unused")},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "health subpath needs a token",
			method:   http.MethodGet,
			path:     "/health/internal",
			verifier: &fakeVerifier{err: errors.New("unused")},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "landing pages are public",
			method:   http.MethodGet,
			path:     "/pages/course-1",
			verifier: &fakeVerifier{err: errors.New("unused")},
			wantCode: http.StatusNoContent,
		},
		{
			name:     "preflight passes",
			method:   http.MethodOptions,
			path:     "/api/layouts",
			verifier: &fakeVerifier{err: errors.New("unused")},
			wantCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Auth(tt.verifier, discardLogger())(echoPrincipal).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
				assert.Equal(t, "good", tt.verifier.got)
			}
		})
	}
}

func TestAuth_UnknownRoleIsMentee(t *testing.T) {
	v := &fakeVerifier{claims: &models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"},
		AppMetadata:      map[string]interface{}{"role": "superuser"},
	}}
	req := httptest.NewRequest(http.MethodGet, "/api/layouts", nil)
	req.Header.Set("Authorization", "Bearer t")
	rec := httptest.NewRecorder()

	Auth(v, discardLogger())(echoPrincipal).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-2:mentee", rec.Body.String())
}

func TestRecovery(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	rec := httptest.NewRecorder()

	Recovery(discardLogger())(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRequestLog_PassesStatus(t *testing.T) {
	teapot := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()

	RequestLog(discardLogger())(teapot).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
