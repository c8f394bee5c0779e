package credential

import (
	"context"
	"fmt"
)

// Asker puts a question to the user and returns the trimmed answer. An
// empty answer means the user declined.
type Asker interface {
	Ask(question string) (string, error)
}

// Prompt asks the user for whatever the underlying store lacks and stores
// only the values that were newly typed in.
type Prompt struct {
	store Source
	asker Asker
}

// NewPrompt wraps store, asking for missing values through asker.
func NewPrompt(store Source, asker Asker) *Prompt {
	return &Prompt{store: store, asker: asker}
}

func (p *Prompt) Get(ctx context.Context) (Credentials, error) {
	creds, err := p.store.Get(ctx)
	if err != nil {
		return Credentials{}, err
	}

	var supplied Credentials
	if creds.Username == "" {
		if supplied.Username, err = p.asker.Ask("Enter your username: "); err != nil {
			return Credentials{}, err
		}
		creds.Username = supplied.Username
	}
	if creds.Room == "" {
		if supplied.Room, err = p.asker.Ask("Enter your room: "); err != nil {
			return Credentials{}, err
		}
		creds.Room = supplied.Room
	}

	if !supplied.Empty() {
		if err := p.store.Set(ctx, supplied); err != nil {
			return Credentials{}, fmt.Errorf("store credentials: %w", err)
		}
	}
	return creds, nil
}

func (p *Prompt) Set(ctx context.Context, creds Credentials) error {
	return p.store.Set(ctx, creds)
}

func (p *Prompt) Clear(ctx context.Context) error {
	return p.store.Clear(ctx)
}
