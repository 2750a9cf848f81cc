package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"

	"github.com/emergencyai/dispatch-api/models"
)

// SessionClaims are the claims carried by a signed session token
type SessionClaims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IssueSessionToken signs a per-session token for the user and registers it
// with the bearer strategy cache
func IssueSessionToken(r *http.Request, user models.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Role: user.Role,
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokenSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	authUser := auth.NewDefaultUser(user.Email, claims.ID, nil, nil)
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, authUser, r)
	return token, nil
}

// RevokeSessionToken invalidates the bearer token presented on the request
// until its natural expiry
func RevokeSessionToken(r *http.Request) (string, error) {
	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	if len(splitToken) < 2 {
		return "", fmt.Errorf("no bearer token on request")
	}
	reqToken = splitToken[1]

	claims := &SessionClaims{}
	// expired tokens can still be presented for logout, skip claim validation
	_, _, err := jwt.NewParser().ParseUnverified(reqToken, claims)
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	exp := time.Now().Add(tokenTTL)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	revocations.Add(claims.ID, exp)

	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, reqToken, r)
	return claims.ID, nil
}

// verifySessionToken is the bearer authenticate func: signature, expiry and
// revocation checks
func verifySessionToken(_ context.Context, _ *http.Request, tokenString string) (auth.Info, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return tokenSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if revocations.Contains(claims.ID) {
		return nil, fmt.Errorf("session token revoked")
	}
	return auth.NewDefaultUser(claims.Subject, claims.ID, nil, nil), nil
}

// RevocationList tracks revoked token IDs until their expiry passes
type RevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewRevocationList returns an empty revocation list
func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time)}
}

// Add marks a token ID revoked until exp
func (l *RevocationList) Add(id string, exp time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[id] = exp
}

// Contains reports whether the token ID is revoked
func (l *RevocationList) Contains(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[id]
	return ok
}

// Sweep drops entries whose expiry has passed and returns how many were
// removed
func (l *RevocationList) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for id, exp := range l.entries {
		if exp.Before(now) {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

var revocations = NewRevocationList()

// Revocations exposes the process-wide revocation list, the scheduler sweeps
// it periodically
func Revocations() *RevocationList {
	return revocations
}
