package api

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/garnizeh/joboffers/internal/token"
	"github.com/garnizeh/joboffers/pkg/repository"
)

// package-level logger used by middleware and helpers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the api package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Auth gate failure messages.
const (
	msgHeaderExpected = "Authorization header is expected"
	msgHeaderFormat   = "Authorization header must 'JWT token'"
	msgTokenNotFound  = "Token not found"
	msgInvalidToken   = "Invalid Token"
)

// authScheme is the credential scheme expected in the Authorization header.
const authScheme = "jwt"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic", slog.Any("err", err), slog.String("path", r.URL.Path))
				writeMessage(w, http.StatusInternalServerError, msgInternal)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// tokenFromHeader extracts the credential from an "Authorization: JWT <token>"
// header value. The returned string is the failure message when ok is false.
func tokenFromHeader(header string) (tok string, msg string, ok bool) {
	if header == "" {
		return "", msgHeaderExpected, false
	}

	parts := strings.Fields(header)
	switch {
	case len(parts) == 0, !strings.EqualFold(parts[0], authScheme):
		return "", msgHeaderFormat, false
	case len(parts) == 1:
		return "", msgTokenNotFound, false
	case len(parts) > 2:
		return "", msgHeaderFormat, false
	}

	return parts[1], "", true
}

// JWTAuthMiddleware rejects requests without a valid "JWT <token>"
// Authorization header and attaches the token's user to the request context.
func JWTAuthMiddleware(tokens *token.Service, users repository.UserRepo) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, msg, ok := tokenFromHeader(r.Header.Get("Authorization"))
			if !ok {
				writeMessage(w, http.StatusUnauthorized, msg)
				return
			}

			id, err := resolveIdentity(r, tokens, users, tok)
			if err != nil {
				logger.Debug("token rejected", slog.Any("err", err), slog.String("path", r.URL.Path))
				writeMessage(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
