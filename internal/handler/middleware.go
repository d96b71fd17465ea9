package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/hkaneko/taskboard/internal/auth"
)

// Actor is the authenticated party attached to a request by the auth
// middleware. Handlers read the actor id from here only, never from the
// request payload.
type Actor struct {
	ID    string
	Email string
}

type contextKey struct{}

var actorKey contextKey

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}

// WithActor returns a context carrying the given actor. Exported for
// handler tests.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// Authenticator validates the Bearer token on each request and injects
// the actor into the request context. Requests without a valid token
// are rejected with 401.
func Authenticator(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respondError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			claims, err := svc.ValidateToken(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := WithActor(r.Context(), Actor{ID: claims.UserID, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
