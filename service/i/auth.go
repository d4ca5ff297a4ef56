package i

import "context"

// Authenticator registers operators and exchanges their keys for tokens.
type Authenticator interface {
	Register(ctx context.Context, name, key string) error
	SignIn(ctx context.Context, name, key string) (string, error)
}
