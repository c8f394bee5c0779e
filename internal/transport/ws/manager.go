// Package ws owns the single WebSocket connection of a room session.
package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/core"
)

// readLimit bounds a single inbound frame. Presence frames grow with the room.
const readLimit = 1 << 20

// Handler receives connection events. HandleOpen is called from Connect,
// everything else from the reader goroutine, so frames arrive one at a time
// in order. HandleClose is called exactly once per connection attempt.
// Handlers must not call Manager.Close.
type Handler interface {
	HandleOpen()
	HandleFrame(data []byte)
	// HandleClose reports the end of the connection. err is nil for a local
	// close or a normal closure by the peer.
	HandleClose(err error)
}

// Manager drives one connection through Idle -> Connecting -> Open -> Closed.
type Manager struct {
	handler Handler
	log     *zerolog.Logger

	mu      sync.Mutex
	state   core.ConnectionState
	conn    *websocket.Conn
	ctx     context.Context
	cancel  context.CancelFunc
	closing bool

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewManager builds an idle manager reporting to handler.
func NewManager(handler Handler, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		handler: handler,
		log:     logger,
		state:   core.StateIdle,
		done:    make(chan struct{}),
	}
}

// State returns the current lifecycle stage.
func (m *Manager) State() core.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Done is closed after the connection reached Closed and HandleClose returned.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Connect dials endpoint. It is only valid from Idle. Cancelling ctx tears
// the connection down the same way Close does.
func (m *Manager) Connect(ctx context.Context, endpoint string) error {
	m.mu.Lock()
	if m.state != core.StateIdle {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("connect while %s: %w", state, core.ErrInvalidState)
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.state = core.StateConnecting
	m.ctx = runCtx
	m.cancel = cancel
	m.mu.Unlock()

	m.log.Debug().Str("endpoint", endpoint).Msg("dialing")

	conn, _, err := websocket.Dial(runCtx, endpoint, nil)
	if err != nil {
		err = fmt.Errorf("dial: %w", err)
		m.finish(err)
		return err
	}
	conn.SetReadLimit(readLimit)

	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		_ = conn.CloseNow()
		m.finish(nil)
		return fmt.Errorf("connect: %w", context.Canceled)
	}
	m.conn = conn
	m.state = core.StateOpen
	m.mu.Unlock()

	m.log.Info().Str("endpoint", endpoint).Msg("connected")
	m.handler.HandleOpen()

	go m.readLoop(runCtx, conn)
	return nil
}

// Send writes one text frame. Nothing is queued: outside Open it returns
// core.ErrNotOpen and writes nothing.
func (m *Manager) Send(ctx context.Context, data []byte) error {
	m.mu.Lock()
	if m.state != core.StateOpen || m.closing {
		m.mu.Unlock()
		return core.ErrNotOpen
	}
	conn := m.conn
	m.mu.Unlock()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close shuts the connection down and waits until the transport is released.
// It is a no-op from Idle and after Closed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.state == core.StateIdle {
		m.mu.Unlock()
		return nil
	}
	if m.closing || m.state == core.StateClosed {
		m.mu.Unlock()
		<-m.done
		return nil
	}
	m.closing = true
	conn := m.conn
	cancel := m.cancel
	m.mu.Unlock()

	if conn != nil {
		if err := conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
			m.log.Debug().Err(err).Msg("close handshake")
		}
	}
	cancel()
	<-m.done
	return nil
}

func (m *Manager) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			m.finish(err)
			return
		}
		if typ != websocket.MessageText {
			m.log.Warn().Int("type", int(typ)).Int("size", len(data)).Msg("dropping non-text frame")
			continue
		}
		m.handler.HandleFrame(data)
	}
}

// finish moves to Closed, releases the transport and reports the close once.
func (m *Manager) finish(err error) {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		local := m.closing || errors.Is(m.ctx.Err(), context.Canceled)
		m.state = core.StateClosed
		conn := m.conn
		cancel := m.cancel
		m.mu.Unlock()

		if conn != nil {
			_ = conn.CloseNow()
		}
		if cancel != nil {
			cancel()
		}

		if local {
			err = nil
		}
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			err = nil
		}

		if err != nil {
			m.log.Warn().Err(err).Msg("connection lost")
		} else {
			m.log.Info().Msg("disconnected")
		}

		m.handler.HandleClose(err)
		close(m.done)
	})
}
