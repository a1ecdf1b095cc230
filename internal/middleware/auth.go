package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/auth"
)

// AuthMiddleware validates the bearer token and stores the caller's
// auth.Identity in the request context.
//
// How it fits the chain:
//   - It runs before every handler under the authenticated /v1 group.
//   - On a missing or invalid token it aborts with 401. The handler never
//     runs.
//   - On a valid token it puts the Identity into c.Request's context and
//     calls c.Next().
//
// Why the request context and not c.Set()?
//   - Services take a context.Context, not a *gin.Context. auth.ContextProvider
//     reads the identity from there, so services never see gin.
//   - The heartbeat keeps the identity after the request returns, through
//     context.WithoutCancel.
//
// Why take `secret` as a parameter?
//   - The middleware does not import config; main.go passes
//     cfg.Auth.JWTSecret.
//   - Tests pass any secret.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Step 1: extract the token (header, or query on a websocket upgrade).
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing or malformed authorization header, expected: Bearer <token>",
			})
			return
		}

		// Step 2: verify signature, expiry and signing method.
		claims, err := auth.ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		// Step 3: store who is calling, then continue.
		ctx := auth.WithIdentity(c.Request.Context(), claims.Identity())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// bearerToken extracts the token.
//
// Expected header: "Authorization: Bearer eyJhbGciOi...". Browsers cannot
// set headers on a websocket handshake, so an upgrade request without the
// header may pass ?access_token= instead. Plain requests never read the
// query, so tokens do not end up in ordinary access logs.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if isWebsocketUpgrade(c) {
			if token := c.Query("access_token"); token != "" {
				return token, true
			}
		}
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func isWebsocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

// GetUserID returns the authenticated caller's id, or uuid.Nil.
func GetUserID(c *gin.Context) uuid.UUID {
	id, ok := auth.IdentityFromCtx(c.Request.Context())
	if !ok {
		return uuid.Nil
	}
	return id.ID
}
