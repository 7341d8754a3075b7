package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/avelichka/lectern/internal/common"
	"github.com/avelichka/lectern/internal/server/auth"
)

type ctxKey string

const principalKey ctxKey = "principal"

// principalFrom returns the authenticated principal stored by requireAuth.
func principalFrom(ctx context.Context) string {
	p, _ := ctx.Value(principalKey).(string)
	return p
}

// requireAuth verifies the bearer token and stores the caller's principal
// in the request context. Unauthenticated calls get a 401 and never reach
// the handler.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		principal, err := auth.PrincipalFromToken(token, s.jwtSecret)
		if err != nil {
			s.logger.Warn(r.Context(), "rejected token", "error", err)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: common.ErrUnauthorized.Error()})
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
