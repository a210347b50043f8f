package middleware

import (
	"net/http"
	"strings"

	"github.com/josh-kwaku/dermapay-backend/internal/auth"
	"github.com/josh-kwaku/dermapay-backend/internal/handler"
	"github.com/josh-kwaku/dermapay-backend/internal/logging"
)

// Auth resolves the bearer token to an actor. Live and demo tokens share the
// secret; the demo claim decides which implementation serves the request.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			actor, err := auth.ValidateToken(token, secret)
			if err != nil {
				logging.FromContext(r.Context()).Debug("bearer token rejected", "error", err)
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithActor(r.Context(), *actor)
			ctx = logging.With(ctx, "user_id", actor.UserID, "demo", actor.Demo)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
