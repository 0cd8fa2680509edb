package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/capital-ladder/backend/app/shared/sharedtypes"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	callerProfileKey contextKey = "caller_profile_id"
	callerAccountKey contextKey = "caller_account_id"
)

// AuthMiddleware validates the bearer token and puts the caller's identity on
// the request context. Identity management itself lives outside this service;
// the token just has to carry a stable account id, plus the profile id once
// the account has claimed one.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			if sub, _ := claims["sub"].(string); sub != "" {
				ctx = context.WithValue(ctx, callerAccountKey, sub)
			}
			if pid, _ := claims["profile_id"].(string); pid != "" {
				profileID, err := sharedtypes.ParseProfileID(pid)
				if err != nil {
					http.Error(w, "invalid profile claim", http.StatusUnauthorized)
					return
				}
				ctx = context.WithValue(ctx, callerProfileKey, profileID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerProfile returns the caller's profile id from the request context.
func CallerProfile(ctx context.Context) (sharedtypes.ProfileID, bool) {
	id, ok := ctx.Value(callerProfileKey).(sharedtypes.ProfileID)
	return id, ok
}

// CallerAccount returns the caller's account id from the request context.
func CallerAccount(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerAccountKey).(string)
	return id, ok
}
