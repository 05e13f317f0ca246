package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"ms-reservation/internal/utils"
)

type contextKey string

const (
	actorIDKey contextKey = "actor_id"
	roleKey    contextKey = "role"
)

// Claims is the token payload: subject, role and the standard
// registered claims (jti is what the revocation store keys on).
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Revoker answers whether a token id has been revoked.
type Revoker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Middleware verifies the Bearer token, rejects revoked tokens and
// puts the actor id and role into the request context.
func Middleware(secret string, revoker Revoker) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("unauthorized", "missing Authorization header"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("unauthorized", "invalid Authorization header format"))
				return
			}

			claims := new(Claims)
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("unauthorized", "invalid token"))
				return
			}

			if revoker != nil && claims.ID != "" {
				revoked, err := revoker.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("internal error", "token validation unavailable"))
					return
				}
				if revoked {
					utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("unauthorized", "token revoked"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), actorIDKey, claims.Subject)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCapability gates a route on the actor's role.
func RequireCapability(cap Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasCapability(Role(r.Context()), cap) {
				utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("forbidden", "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorID extracts the authenticated subject in handlers.
func ActorID(ctx context.Context) string {
	if id, ok := ctx.Value(actorIDKey).(string); ok {
		return id
	}
	return ""
}

func Role(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}
