package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"mentorx/internal/auth"
	"mentorx/internal/domain/models"
	"mentorx/internal/httputil"
)

// Routes served without a token.
var (
	publicPaths    = map[string]bool{"/health": true}
	publicPrefixes = []string{"/pages/"}
)

// Auth verifies the Supabase bearer token and stores the caller's
// principal in the request context. Preflight requests and public
// routes pass through untouched.
func Auth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			userID := claims.GetUserID()
			if userID == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "token has no subject")
				return
			}

			r = httputil.WithPrincipal(r, models.Principal{
				UserID: userID,
				Role:   claims.MarketplaceRole(),
			})
			next.ServeHTTP(w, r)
		})
	}
}

func isPublic(path string) bool {
	if publicPaths[path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
