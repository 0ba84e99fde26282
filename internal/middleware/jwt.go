package middleware

import (
	"errors"                         // Error matching
	"finance_tracker/internal/utils" // JWT utility functions
	"net/http"                       // HTTP status codes
	"strings"                        // String manipulation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/golang-jwt/jwt/v5" // Sentinel errors for expiry
)

// JWTAuthMiddleware validates JWT tokens and extracts the authenticated user.
// The token is looked up in the Authorization header first, then in the auth
// cookie, so both API clients and the browser frontend can authenticate.
func JWTAuthMiddleware(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Prefer a properly formatted Bearer header
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		} else if cookie, err := c.Cookie(cookieName); err == nil {
			tokenStr = cookie // Fall back to the HTTP-only cookie
		}
		// No token in either location
		if tokenStr == "" {
			// Abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			// Expired tokens get their own message so the client can prompt a re-login
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
				return
			}
			// Bad signature, wrong algorithm or malformed token
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set("userID", claims.UserID) // Store userID in the request-scoped context
		c.Next()                       // Proceed to the next handler
	}
}
