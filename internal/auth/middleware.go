// internal/auth/middleware.go
// Bearer token verification. Tokens are issued by the external identity
// provider, the subject claim is trusted as the acting profile id.

package auth

import (
    "context"
    "net/http"
    "strings"

    "github.com/hyking/hyking-backend/internal/common/utils"
)

type contextKey string

const (
    userIDKey contextKey = "userID"
    emailKey  contextKey = "email"
    roleKey   contextKey = "role"
)

// Middleware provides authentication middleware
type Middleware struct {
    secret string
    issuer string
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(secret, issuer string) *Middleware {
    return &Middleware{
        secret: secret,
        issuer: issuer,
    }
}

// Authenticate is the main middleware function that protects routes
// It verifies the JWT token and adds user information to the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        // 1. Extract token from Authorization header (or ?token= for websockets)
        token := extractToken(r)
        if token == "" {
            utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
            return
        }

        // 2. Validate token
        claims, err := utils.ValidateJWT(token, m.secret, m.issuer)
        if err != nil {
            utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
            return
        }

        // 3. Add user information to request context
        ctx := WithUserID(r.Context(), claims.Subject)
        ctx = context.WithValue(ctx, emailKey, claims.Email)
        ctx = context.WithValue(ctx, roleKey, claims.Role)

        next.ServeHTTP(w, r.WithContext(ctx))
    })
}

// extractToken extracts the JWT token from the Authorization header
// Supports "Bearer <token>" format
func extractToken(r *http.Request) string {
    authHeader := r.Header.Get("Authorization")
    if authHeader == "" {
        // Browsers cannot set headers on websocket upgrades
        if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
            return r.URL.Query().Get("token")
        }
        return ""
    }

    parts := strings.Split(authHeader, " ")
    if len(parts) != 2 || parts[0] != "Bearer" {
        return ""
    }

    return parts[1]
}

// WithUserID stores the acting profile id in ctx
func WithUserID(ctx context.Context, userID string) context.Context {
    return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
    userID, ok := ctx.Value(userIDKey).(string)
    return userID, ok && userID != ""
}

// GetEmailFromContext extracts email from request context
func GetEmailFromContext(ctx context.Context) (string, bool) {
    email, ok := ctx.Value(emailKey).(string)
    return email, ok
}

// GetRoleFromContext extracts the token role from request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
    role, ok := ctx.Value(roleKey).(string)
    return role, ok && role != ""
}

// RequireRole rejects requests whose token role is not one of roles. It must
// run after Authenticate.
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            role, _ := GetRoleFromContext(r.Context())
            for _, allowed := range roles {
                if role == allowed {
                    next.ServeHTTP(w, r)
                    return
                }
            }
            utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
        })
    }
}

// MustUserID returns the authenticated profile id. Handlers behind
// Authenticate always have one; the empty string means the route was wired
// without the middleware.
func MustUserID(r *http.Request) string {
    userID, _ := GetUserIDFromContext(r.Context())
    return userID
}
