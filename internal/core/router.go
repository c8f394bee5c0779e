package core

import (
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/proto"
)

// Router classifies inbound frames and applies them to a State.
// Route must be called from one goroutine, in arrival order.
type Router struct {
	state *State
	log   *zerolog.Logger
}

// NewRouter builds a router writing into state.
func NewRouter(state *State, logger *zerolog.Logger) *Router {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Router{state: state, log: logger}
}

// Route applies one raw frame and reports what changed. A malformed frame
// leaves the state untouched and comes back as an UpdateWarning.
func (r *Router) Route(data []byte) Update {
	frame, err := proto.Decode(data)
	if err != nil {
		r.log.Warn().Err(err).Int("size", len(data)).Msg("dropping inbound frame")
		return Update{Kind: UpdateWarning, Err: err}
	}

	switch frame.Kind {
	case proto.FramePresence:
		r.state.ReplaceUsers(frame.Presence.UserList)
		r.log.Debug().Int("users", len(frame.Presence.UserList)).Msg("presence replaced")
		return Update{Kind: UpdatePresence, Users: r.state.Users()}
	default:
		msg := ChatMessage{
			Username:  frame.Chat.Username,
			Message:   frame.Chat.Message,
			Timestamp: frame.Chat.Timestamp,
		}
		r.state.Append(msg)
		r.log.Debug().Str("from", msg.Username).Msg("message appended")
		return Update{Kind: UpdateMessage, Message: msg}
	}
}
