package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/emergencyai/dispatch-api/config"
)

var authenticator auth.Authenticator
var cache store.Cache

// SetupGoGuardian sets up the go-guardian middleware. Bearer tokens are
// verified by signature rather than equality against a shared secret, so
// the cache only short-circuits repeat lookups and revocation stays with
// the revocation list.
func SetupGoGuardian(conf *config.Config) {
	tokenSecret = []byte(conf.AuthSecret)
	tokenTTL = conf.TokenTTL

	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), conf.TokenTTL)
	tokenStrategy := bearer.New(verifySessionToken, cache)
	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// Middleware adds bearer authentication around accessing the routes
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			config.ErrorStatus("No authorization token provided", http.StatusUnauthorized, w, nil)
			return
		}
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			config.ErrorStatus("Invalid or expired token", http.StatusUnauthorized, w, nil)
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		next.ServeHTTP(w, r)
	})
}

var tokenSecret []byte
var tokenTTL = 24 * time.Hour
