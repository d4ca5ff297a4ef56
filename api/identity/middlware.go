package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-search/service/i"
	"github.com/gin-gonic/gin"
)

const (
	// ContextOperatorClaims is the key used to store operator claims in the Gin context.
	ContextOperatorClaims = "operatorClaims"
)

// Authoriz rejects requests without a valid bearer token carrying scope.
func Authoriz(ts i.Tokenizer, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Retrieve the access token from the Authorization header.
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatus(http.StatusUnauthorized) // No token found in the header.
			return
		}

		// Split the "Bearer" prefix from the token.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatus(http.StatusUnauthorized) // Malformed Authorization header.
			return
		}

		claims, err := ts.Decode(parts[1])
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if granted, _ := claims[i.ClaimScope].(string); granted != scope {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		// Attach operator claims to the request context for further use.
		c.Set(ContextOperatorClaims, claims)
		c.Next()
	}
}

// Operator returns the name of the authenticated operator, or "" on public routes.
func Operator(c *gin.Context) string {
	claims, ok := c.Get(ContextOperatorClaims)
	if !ok {
		return ""
	}
	m, ok := claims.(map[string]any)
	if !ok {
		return ""
	}
	name, _ := m[i.ClaimOperator].(string)
	return name
}
