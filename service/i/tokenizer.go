package i

import (
	"time"
)

// Claim keys carried by operator tokens.
const (
	ClaimOperator = "operator"
	ClaimScope    = "scope"
)

// Tokenizer defines methods for generating and decoding tokens.
type Tokenizer interface {
	// Generate creates a token with the given claims and expiration duration.
	Generate(claims map[string]any, expTime time.Duration) (string, error)

	// Decode validates and parses a token, returning its claims.
	// Tokens from another issuer are rejected.
	Decode(token string) (map[string]any, error)
}
