package peer

import (
	"context"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-client/internal/proto"
)

func startHub(t *testing.T, maxMessage int) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(maxMessage, nil)
	hub.now = func() time.Time {
		return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	}
	go hub.Run(ctx)
	return hub
}

func mustFrame(t *testing.T, ch <-chan []byte) proto.Frame {
	t.Helper()

	select {
	case data, ok := <-ch:
		if !ok {
			t.Fatalf("frame channel closed")
		}
		frame, err := proto.Decode(data)
		if err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		return frame
	case <-time.After(2 * time.Second):
		t.Fatalf("expected frame not received")
	}
	return proto.Frame{}
}

func expectNoFrame(t *testing.T, ch <-chan []byte) {
	t.Helper()

	select {
	case data := <-ch:
		t.Fatalf("unexpected frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}
