// internal/common/utils/jwt.go
// Verification of bearer tokens issued by the identity provider

package utils

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v4"
)

var (
    ErrInvalidToken   = errors.New("invalid token")
    ErrInvalidSubject = errors.New("invalid subject in token")
)

// JWTClaims are the claims we rely on. Subject is the profile id.
type JWTClaims struct {
    Email string `json:"email"`
    Role  string `json:"role"`
    jwt.RegisteredClaims
}

// GenerateJWT signs claims with the shared secret (HS256)
func GenerateJWT(claims *JWTClaims, secret string) (string, error) {
    token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

    tokenString, err := token.SignedString([]byte(secret))
    if err != nil {
        return "", fmt.Errorf("failed to sign token: %w", err)
    }

    return tokenString, nil
}

// ValidateJWT validates a token and returns its claims. When issuer is not
// empty the iss claim must match it.
func ValidateJWT(tokenString, secret, issuer string) (*JWTClaims, error) {
    claims := &JWTClaims{}
    token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
        // Verify signing method
        if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
        }
        return []byte(secret), nil
    })
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
    }

    if !token.Valid {
        return nil, ErrInvalidToken
    }

    if issuer != "" && !claims.VerifyIssuer(issuer, true) {
        return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
    }

    if strings.TrimSpace(claims.Subject) == "" {
        return nil, ErrInvalidSubject
    }

    return claims, nil
}

// NewAccessClaims builds claims for a profile, mainly for tooling and tests
func NewAccessClaims(profileID, email string, ttl time.Duration) *JWTClaims {
    now := time.Now()
    return &JWTClaims{
        Email: email,
        Role:  "authenticated",
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   profileID,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
        },
    }
}
