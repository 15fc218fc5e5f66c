package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meetup-service/internal/sign"
)

// AuthUserKey is the context key under which a verified launch-context
// user id is stored.
const AuthUserKey = "authUserID"

// LaunchContext validates the platform-signed launch payload carried in
// the X-Launch-Context header. A request without the header passes
// through unauthenticated; handlers that need identity fall back to
// query-parameter signatures. A header that fails verification is a hard
// rejection, not an anonymous pass-through.
func LaunchContext(signer *sign.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Launch-Context")
		if raw == "" {
			c.Next()
			return
		}

		userID, err := signer.VerifyLaunchContext(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid launch context"})
			return
		}

		c.Set(AuthUserKey, userID)
		c.Next()
	}
}

// AuthUser returns the verified launch-context user id, if any.
func AuthUser(c *gin.Context) (int64, bool) {
	val, ok := c.Get(AuthUserKey)
	if !ok {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok
}
