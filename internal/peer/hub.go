// Package peer is a room server speaking the chat wire protocol. It stands
// in for the production server during development and in tests.
package peer

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/proto"
)

// AnonymousName is used when a client joins without a username.
const AnonymousName = "Anonymous"

// TimestampLayout formats message timestamps.
const TimestampLayout = "2006-01-02 15:04:05.000000-07:00"

type commandKind int

const (
	commandJoin commandKind = iota
	commandLeave
	commandSend
)

type command struct {
	kind   commandKind
	client *Client
	text   string
}

// Hub owns every room. All room state is touched only by the Run goroutine.
type Hub struct {
	commands   chan command
	done       chan struct{}
	rooms      map[string]*Room
	maxMessage int
	now        func() time.Time
	log        *zerolog.Logger
}

// NewHub creates a hub rejecting messages longer than maxMessage runes
// (no limit when maxMessage <= 0).
func NewHub(maxMessage int, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		commands:   make(chan command, 64),
		done:       make(chan struct{}),
		rooms:      make(map[string]*Room),
		maxMessage: maxMessage,
		now:        time.Now,
		log:        logger,
	}
}

// Run processes commands until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.commands:
			h.handle(cmd)
		}
	}
}

// Join adds c to its room and broadcasts the new membership.
func (h *Hub) Join(c *Client) {
	h.submit(command{kind: commandJoin, client: c})
}

// Leave removes c from its room, broadcasts the new membership and closes
// c.Frames. Leaving twice is harmless.
func (h *Hub) Leave(c *Client) {
	h.submit(command{kind: commandLeave, client: c})
}

// Send broadcasts text from c to its room.
func (h *Hub) Send(c *Client, text string) {
	h.submit(command{kind: commandSend, client: c, text: text})
}

func (h *Hub) submit(cmd command) {
	select {
	case h.commands <- cmd:
	case <-h.done:
	}
}

func (h *Hub) handle(cmd command) {
	c := cmd.client
	switch cmd.kind {
	case commandJoin:
		room, ok := h.rooms[c.Room]
		if !ok {
			room = NewRoom(c.Room)
			h.rooms[c.Room] = room
		}
		if room.AddClient(c) {
			h.log.Info().Str("room", c.Room).Str("user", c.Name).Msg("joined")
			h.broadcastPresence(room)
		}
	case commandLeave:
		room, ok := h.rooms[c.Room]
		if !ok || !room.RemoveClient(c) {
			return
		}
		close(c.Frames)
		h.log.Info().Str("room", c.Room).Str("user", c.Name).Msg("left")
		if room.Empty() {
			delete(h.rooms, c.Room)
			return
		}
		h.broadcastPresence(room)
	case commandSend:
		room, ok := h.rooms[c.Room]
		if !ok {
			return
		}
		if cmd.text == "" || (h.maxMessage > 0 && utf8.RuneCountInString(cmd.text) > h.maxMessage) {
			h.log.Debug().Str("room", c.Room).Str("user", c.Name).Msg("message rejected")
			return
		}
		frame, err := proto.EncodeChat(c.Name, cmd.text, h.now().UTC().Format(TimestampLayout))
		if err != nil {
			h.log.Error().Err(err).Msg("encode chat frame")
			return
		}
		room.Broadcast(frame)
	}
}

func (h *Hub) broadcastPresence(room *Room) {
	frame, err := proto.EncodePresence(room.Usernames())
	if err != nil {
		h.log.Error().Err(err).Msg("encode presence frame")
		return
	}
	room.Broadcast(frame)
}
