package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/models"
)

// Claims is the payload inside every access token.
//
// Signup and login create a token with these fields. On every later
// request the middleware reads the token back and turns it into an
// Identity, which is how services know who the caller is without a
// profile lookup.
//
// Why is Role in the token?
//   - Manager-only operations (linking workers) check it on every call.
//   - A role change takes effect when the token expires (JWT_TTL).
//
// Why embed jwt.RegisteredClaims?
//   - It carries the standard exp, iat, iss and sub fields.
//   - Tooling such as the jwt.io debugger recognizes them.
type Claims struct {
	UserID uuid.UUID   `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig carries the signing parameters from config.AuthConfig.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// GenerateToken creates a signed HS256 token for the given identity.
//
// Parameters:
//   - id: who the token represents (profile id, email, role).
//   - cfg: secret, issuer and TTL from config.AuthConfig.
//
// Why HS256 (HMAC-SHA256)?
//   - One shared secret, no key pair to distribute.
//   - Only this service issues and verifies tokens. If another service
//     ever needs to verify without issuing, switch to RS256.
func GenerateToken(id Identity, cfg TokenConfig) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: id.ID,
		Email:  id.Email,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
		},
	}

	// NewWithClaims builds the unsigned token; SignedString signs it.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseToken validates a token string and returns its claims.
//
// It verifies:
//  1. The signature matches secret.
//  2. The token has not expired.
//  3. The signing method is HMAC. Tokens signed with "none" or RSA are
//     rejected before the signature is checked (algorithm confusion).
//  4. The token names a user. A token without user_id would otherwise
//     yield uuid.Nil as the caller.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			// Runs before signature verification.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("token has no user id")
	}

	return claims, nil
}

// Identity returns the caller identity encoded in the claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.UserID, Email: c.Email, Role: c.Role}
}
