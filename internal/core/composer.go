package core

import (
	"fmt"

	"github.com/vovakirdan/wirechat-client/internal/proto"
)

// Composer turns drafts into outbound frames for one identity.
// It never touches the message log; the server echo is what lands there.
type Composer struct {
	identity Identity
}

// NewComposer builds a composer speaking as identity.
func NewComposer(identity Identity) *Composer {
	return &Composer{identity: identity}
}

// Compose validates draft and encodes it. Whitespace-only drafts are valid.
func (c *Composer) Compose(draft string) ([]byte, error) {
	if draft == "" {
		return nil, ErrEmptyDraft
	}
	data, err := proto.EncodeOutgoing(draft, c.identity.Username)
	if err != nil {
		return nil, fmt.Errorf("encode outgoing: %w", err)
	}
	return data, nil
}
