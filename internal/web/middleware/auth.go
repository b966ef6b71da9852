package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
)

// Authenticator resolves an API token to the identity it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*core.Identity, error)
}

// TokenAuth reads "Authorization: Token <t>" (or "Bearer <t>") and stores the
// identity in the request context. Requests without the header continue
// anonymously; a header carrying a bad token is rejected with 401.
func TokenAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := parseAuthorization(header)
			if !ok {
				writeAuthError(w, r, auth.ErrInvalidToken, http.StatusUnauthorized)
				return
			}

			id, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				status := http.StatusUnauthorized
				if !errors.Is(err, auth.ErrInvalidToken) {
					status = http.StatusInternalServerError
				}
				writeAuthError(w, r, err, status)
				return
			}

			next.ServeHTTP(w, r.WithContext(core.ContextWithIdentity(r.Context(), id)))
		})
	}
}

// ReadOnlyUnlessAuthenticated lets safe methods through for everyone and
// requires an identity for anything else, unless allowAnonymous is set.
func ReadOnlyUnlessAuthenticated(allowAnonymous bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowAnonymous || isSafeMethod(r.Method) || core.IdentityFromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}
			writeAuthError(w, r, auth.ErrAuthenticationRequired, http.StatusUnauthorized)
		})
	}
}

// parseAuthorization accepts the "Token" and "Bearer" schemes, case-insensitively.
func parseAuthorization(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
	default:
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// writeAuthError writes the same JSON error shape as the API handlers.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	slog.Warn("auth: request rejected",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
		"error", err.Error(),
	)

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Token realm="api"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}
