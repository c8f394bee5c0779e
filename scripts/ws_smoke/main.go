package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirechat-client/internal/log"
	"github.com/vovakirdan/wirechat-client/internal/proto"
)

func main() {
	logger := log.New("info", os.Stderr)
	if err := run(); err != nil {
		logger.Error().Err(err).Msg("ws_smoke failed")
		os.Exit(1)
	}
}

func run() error {
	server := flag.String("server", "localhost:8000", "room server host:port")
	secure := flag.Bool("secure", false, "use wss")
	user := flag.String("user", "tester", "username to join with")
	room := flag.String("room", "general", "room name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	endpoint, err := proto.Endpoint(*server, *room, *user, *secure)
	if err != nil {
		return err
	}

	conn, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := wsjson.Write(ctx, conn, proto.Outgoing{Message: *text, Username: *user}); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	// Wait for our own message to come back.
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		frame, err := proto.Decode(data)
		if err != nil {
			fmt.Printf("Malformed: %v\n", err)
			continue
		}

		switch frame.Kind {
		case proto.FramePresence:
			fmt.Printf("Presence: %v\n", frame.Presence.UserList)
		case proto.FrameChat:
			msg := frame.Chat
			fmt.Printf("Chat: user=%s text=%q ts=%s\n", msg.Username, msg.Message, msg.Timestamp)
			if msg.Username == *user && msg.Message == *text {
				return nil
			}
		}
	}
}
