package middleware

import (
	"crypto/subtle"

	apperrors "github.com/NomadCrew/feedback-collector/errors"
	"github.com/gin-gonic/gin"
)

// UsernameKey holds the authenticated admin username.
const UsernameKey = "username"

// AdminBasicAuth requires HTTP basic credentials matching username and
// password. Both comparisons run in constant time.
func AdminBasicAuth(username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1

		if !ok || !userOK || !passOK || password == "" {
			c.Header("WWW-Authenticate", `Basic realm="feedback-admin"`)
			_ = c.Error(apperrors.AuthenticationFailed("Incorrect password"))
			c.Abort()
			return
		}

		c.Set(UsernameKey, user)
		c.Next()
	}
}
