// Package domain holds the records the service persists: experiments and the
// operators allowed to submit them.
package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	minKeyStrengthScore = 3
	keyHashCost         = 12

	operatorNamePattern = `^[a-zA-Z0-9_]+$` // Alphanumeric with underscores
	minOperatorNameLen  = 3
	maxOperatorNameLen  = 20
)

var (
	operatorNameRegex = regexp.MustCompile(operatorNamePattern)

	ErrOperatorNameTooShort = errors.New("operator name too short")
	ErrOperatorNameTooLong  = errors.New("operator name too long")
	ErrOperatorNameFormat   = errors.New("invalid operator name format")
	ErrWeakKey              = errors.New("operator key is too weak")
	ErrOperatorNotFound     = errors.New("operator not found")
	ErrOperatorConflict     = errors.New("operator name conflict")
)

// Operator is an account allowed to run experiments through the API.
type Operator struct {
	ID        uuid.UUID `bson:"_id"`
	Name      string    `bson:"name"`
	KeyHash   string    `bson:"keyHash"`
	CreatedAt time.Time `bson:"createdAt"`
}

// OperatorConfig holds parameters for creating an Operator from a plain key.
type OperatorConfig struct {
	ID       uuid.UUID
	Name     string
	PlainKey string
}

// NewOperator validates the name and key strength and hashes the key.
func NewOperator(config OperatorConfig) (*Operator, error) {
	if err := validateOperatorName(config.Name); err != nil {
		return nil, err
	}

	if err := validateKey(config.PlainKey); err != nil {
		return nil, err
	}

	keyHash, err := hashKey(config.PlainKey)
	if err != nil {
		return nil, err
	}

	return &Operator{
		ID:        config.ID,
		Name:      config.Name,
		KeyHash:   keyHash,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// VerifyKey verifies if the given key matches the stored hash.
func (o *Operator) VerifyKey(key string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(o.KeyHash), []byte(key))
	return err == nil
}

func validateOperatorName(name string) error {
	if len(name) < minOperatorNameLen {
		return ErrOperatorNameTooShort
	}
	if len(name) > maxOperatorNameLen {
		return ErrOperatorNameTooLong
	}
	if !operatorNameRegex.MatchString(name) {
		return ErrOperatorNameFormat
	}
	return nil
}

func validateKey(key string) error {
	result := zxcvbn.PasswordStrength(key, nil)
	if result.Score < minKeyStrengthScore {
		return ErrWeakKey
	}
	return nil
}

func hashKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), keyHashCost)
	return string(bytes), err
}
