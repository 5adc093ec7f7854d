package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-catalog-api/pkg/api"
)

// AdminAuth requires a Bearer token from keys. With no keys configured
// every request is let through.
func AdminAuth(keys []string) gin.HandlerFunc {
	valid := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			valid = append(valid, []byte(k))
		}
	}

	return func(c *gin.Context) {
		if len(valid) == 0 {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortProblem(c, api.UnauthorizedError("Missing Authorization header"))
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			abortProblem(c, api.UnauthorizedError("Invalid Authorization header format"))
			return
		}

		for _, k := range valid {
			if subtle.ConstantTimeCompare(k, []byte(token)) == 1 {
				c.Next()
				return
			}
		}
		abortProblem(c, api.UnauthorizedError("Invalid API Key"))
	}
}

func abortProblem(c *gin.Context, p *api.Problem) {
	p.Instance = c.Request.URL.Path
	c.AbortWithStatusJSON(p.Status, p)
}
