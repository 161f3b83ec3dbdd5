package mw

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hostel-order-backend/internal/auth"
)

const claimsKey = "session_claims"

// SessionClaims extracts the authenticated session claims from the gin
// context. Returns nil when the request is unauthenticated.
func SessionClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// RequireAuth validates the bearer token and puts the session claims on
// the context. Revoked tokens (logout) are rejected; a revocation check
// failure only logs, so a Redis outage does not lock everyone out.
func RequireAuth(tokens *auth.JWTManager, revoker *auth.Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" && strings.HasSuffix(c.FullPath(), "/ws") {
			// Browser WebSocket clients can't set headers; accept the token
			// as a query parameter on stream routes only, so session JWTs
			// don't end up in logged request URIs elsewhere.
			header = "Bearer " + c.Query("token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		if revoker != nil {
			revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				slog.Error("token revocation check failed", "error", err)
			} else if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
				return
			}
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}
