package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/uangsakti/uangsakti/internal/config"
	"github.com/uangsakti/uangsakti/pkg/user"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Resolve the bearer token into a user and propagate it in the request
	// context for downstream stores. Auth endpoints are served without it.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.HasPrefix(req.URL.Path, "/api/auth/") {
				next.ServeHTTP(w, req)
				return
			}

			ctx := req.Context()
			token := bearerToken(req)
			if token != "" {
				userId, err := user.VerifyToken(token, cfg.Auth.Secret)
				if err != nil {
					log.Debugf("invalid session token: %v", err)
					http.Error(w, "invalid session token", http.StatusUnauthorized)
					return
				}
				u, err := deps.UserService.GetUser(ctx, userId)
				if err != nil {
					if errors.Is(err, user.ErrUserNotFound) {
						log.Debugf("user not found: %s", userId)
						http.Error(w, "user not found", http.StatusForbidden)
						return
					}
					log.Errorf("failed to get user: %v", err)
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
				ctx = user.WithUser(ctx, u)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}

func bearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return after
	}
	return ""
}
