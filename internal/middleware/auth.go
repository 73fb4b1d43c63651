package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rufit/rufitserver/internal/auth"
	"github.com/rufit/rufitserver/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type userResolver interface {
	UserIDForToken(ctx context.Context, token string) (int, error)
}

type AuthMiddlewareHandler struct {
	users                userResolver
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

func NewAuthMiddlewareHandler(users userResolver) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		users: users,
		allowedPaths: map[string]bool{
			"/healthz":       true,
			"/version":       true,
			"/auth/login":    true,
			"/auth/register": true,
			"/exercises":     true,
		},
		allowedPathsPrefixes: []string{
			"/exercises/",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	for _, prefix := range h.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AuthCheck resolves the bearer token to a user id and stores it in the request context.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.pathIsAlwaysAllowed(r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := auth.BearerToken(r)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			userID, err := h.users.UserIDForToken(ctx, authToken)
			if errors.Is(err, auth.ErrInvalidToken) {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "not-logged")
				return
			}
			if err != nil {
				log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "check-logged-err")
				span.RecordError(err)
				return
			}

			span.SetAttributes(attribute.Int("user.id", userID))
			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(r.Context(), userID)))
		})
	}
}
