// Package session runs one user's participation in one room, from connect
// to the terminal close.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/core"
	"github.com/vovakirdan/wirechat-client/internal/credential"
	"github.com/vovakirdan/wirechat-client/internal/proto"
	"github.com/vovakirdan/wirechat-client/internal/transport/ws"
)

const defaultUpdateBuffer = 64

// Options control where a session connects.
type Options struct {
	// Server is the host:port of the room server.
	Server string
	// Secure selects wss instead of ws.
	Secure bool
	// UpdateBuffer sizes the updates channel. Updates beyond it wait in
	// the session; none are dropped.
	UpdateBuffer int
}

// Session ties a connection, its router and its state together. A session
// is single-use: once closed it stays closed.
type Session struct {
	id       string
	endpoint string
	state    *core.State
	router   *core.Router
	composer *core.Composer
	conn     *ws.Manager
	creds    credential.Source
	log      *zerolog.Logger

	updates *updateQueue
	done    chan struct{}
	endOnce sync.Once

	mu      sync.Mutex
	started bool
	ended   bool
	err     error
}

// New resolves credentials from src and prepares an idle session. It fails
// with credential.ErrMissingCredential when either value is absent.
func New(ctx context.Context, src credential.Source, opts Options, logger *zerolog.Logger) (*Session, error) {
	creds, err := credential.Resolve(ctx, src)
	if err != nil {
		return nil, err
	}

	endpoint, err := proto.Endpoint(opts.Server, creds.Room, creds.Username, opts.Secure)
	if err != nil {
		return nil, fmt.Errorf("build endpoint: %w", err)
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	id := uuid.NewString()
	l := logger.With().
		Str("session_id", id).
		Str("room", creds.Room).
		Str("user", creds.Username).
		Logger()

	bufSize := opts.UpdateBuffer
	if bufSize <= 0 {
		bufSize = defaultUpdateBuffer
	}

	identity := core.Identity{Username: creds.Username}
	state := core.NewState(identity, creds.Room)

	s := &Session{
		id:       id,
		endpoint: endpoint,
		state:    state,
		router:   core.NewRouter(state, &l),
		composer: core.NewComposer(identity),
		creds:    src,
		log:      &l,
		updates:  newUpdateQueue(bufSize),
		done:     make(chan struct{}),
	}
	s.conn = ws.NewManager(&connHandler{s: s}, &l)
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Start connects to the room. It returns once the connection is open or
// has failed; a failure still ends in the disconnected update. A session
// starts at most once and not after Close.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started || s.ended {
		s.mu.Unlock()
		return fmt.Errorf("start session: %w", core.ErrInvalidState)
	}
	s.started = true
	s.mu.Unlock()

	return s.conn.Connect(ctx, s.endpoint)
}

// Submit sends draft as a chat message. The local log is not touched; the
// message shows up when the server echoes it back. Outside Open nothing is
// sent and core.ErrNotOpen is returned.
func (s *Session) Submit(ctx context.Context, draft string) error {
	data, err := s.composer.Compose(draft)
	if err != nil {
		return err
	}
	if err := s.conn.Send(ctx, data); err != nil {
		s.log.Debug().Err(err).Msg("submit dropped")
		return err
	}
	return nil
}

// Close ends the session and waits until the connection is released. A
// session that was never started ends right away with the same teardown.
func (s *Session) Close() error {
	s.mu.Lock()
	if !s.started && !s.ended {
		s.ended = true
		s.mu.Unlock()
		s.end(nil)
		return nil
	}
	s.mu.Unlock()
	return s.conn.Close()
}

// Done is closed once the session has ended and its disconnected update is
// queued.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err reports the transport error that ended the session, or nil if it was
// closed locally or by a normal closure.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Updates delivers what happens in the session, in order, ending with one
// disconnected update after which the channel is closed. Nothing is dropped,
// so the channel must be drained.
func (s *Session) Updates() <-chan core.Update {
	return s.updates.out
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() core.Snapshot {
	state := s.conn.State()
	s.mu.Lock()
	if s.ended && state == core.StateIdle {
		state = core.StateClosed
	}
	s.mu.Unlock()
	return s.state.Snapshot(state)
}

// end runs the teardown once: record the error, clear credentials, report
// the disconnect and close the updates.
func (s *Session) end(err error) {
	s.endOnce.Do(func() {
		s.mu.Lock()
		s.ended = true
		s.err = err
		s.mu.Unlock()

		if clearErr := s.creds.Clear(context.Background()); clearErr != nil {
			s.log.Error().Err(clearErr).Msg("failed to clear credentials")
		}

		s.updates.push(core.Update{Kind: core.UpdateDisconnected, Err: err})
		s.updates.close()
		close(s.done)
	})
}

// connHandler keeps the transport callbacks off the Session API.
type connHandler struct {
	s *Session
}

func (h *connHandler) HandleOpen() {
	h.s.updates.push(core.Update{Kind: core.UpdateConnected})
}

func (h *connHandler) HandleFrame(data []byte) {
	h.s.updates.push(h.s.router.Route(data))
}

func (h *connHandler) HandleClose(err error) {
	h.s.end(err)
}
