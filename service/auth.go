package service

import (
	"context"
	"errors"
	"time"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/service/i"
	"github.com/google/uuid"
)

// ScopeExperiments is the token scope required by the protected routes.
const ScopeExperiments = "experiments"

var ErrInvalidCredentials = errors.New("invalid operator name or key")

// Auth registers operators and signs them in.
type Auth struct {
	operatorRepo i.OperatorRepo
	tokenizer    i.Tokenizer
	tokenTTL     time.Duration
}

// NewAuthService creates an Auth service issuing tokens valid for tokenTTL.
func NewAuthService(repo i.OperatorRepo, tokenizer i.Tokenizer, tokenTTL time.Duration) (*Auth, error) {
	if repo == nil || tokenizer == nil {
		return nil, ErrMissingDependency
	}
	return &Auth{operatorRepo: repo, tokenizer: tokenizer, tokenTTL: tokenTTL}, nil
}

// Register creates an operator with the given key.
func (a *Auth) Register(ctx context.Context, name, key string) error {
	operator, err := dmn.NewOperator(dmn.OperatorConfig{
		ID:       uuid.New(),
		Name:     name,
		PlainKey: key,
	})
	if err != nil {
		return err
	}

	return a.operatorRepo.Save(ctx, operator)
}

// SignIn checks the operator's key and returns a scoped token.
func (a *Auth) SignIn(ctx context.Context, name, key string) (string, error) {
	operator, err := a.operatorRepo.ByName(ctx, name)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if !operator.VerifyKey(key) {
		return "", ErrInvalidCredentials
	}

	return OperatorToken(a.tokenizer, operator.Name, a.tokenTTL)
}

// OperatorToken mints a token granting the experiments scope to operator.
func OperatorToken(t i.Tokenizer, operator string, ttl time.Duration) (string, error) {
	return t.Generate(map[string]any{
		i.ClaimOperator: operator,
		i.ClaimScope:    ScopeExperiments,
	}, ttl)
}
