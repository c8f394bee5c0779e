// Package credential stores the username and room a session starts from.
package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Store keys.
const (
	KeyUsername = "username"
	KeyRoom     = "room"
)

var (
	// ErrMissingCredential means a username or room is not available.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential means a credential was supplied but is unusable.
	ErrInvalidCredential = errors.New("invalid credential")
)

var validate = validator.New()

// Credentials are the values a session needs before it can connect.
// An empty field means the value is absent.
type Credentials struct {
	Username string `validate:"required,max=150"`
	Room     string `validate:"required,max=100"`
}

// Empty reports whether neither value is set.
func (c Credentials) Empty() bool {
	return c.Username == "" && c.Room == ""
}

// Validate checks that both values are present and within limits.
func (c Credentials) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	first := fieldErrs[0]
	if first.Tag() == "required" {
		return fmt.Errorf("%w: %s", ErrMissingCredential, first.Field())
	}
	return fmt.Errorf("%w: %s fails %s=%s", ErrInvalidCredential, first.Field(), first.Tag(), first.Param())
}

// Source supplies and persists credentials across sessions.
type Source interface {
	// Get returns whatever is stored; absent values are empty strings.
	Get(ctx context.Context) (Credentials, error)
	// Set stores the non-empty fields of creds, leaving the others untouched.
	Set(ctx context.Context, creds Credentials) error
	// Clear removes both values.
	Clear(ctx context.Context) error
}

// Resolve reads credentials from src and requires both values.
func Resolve(ctx context.Context, src Source) (Credentials, error) {
	creds, err := src.Get(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}
