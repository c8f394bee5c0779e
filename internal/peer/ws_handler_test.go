package peer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/wirechat-client/internal/config"
	"github.com/vovakirdan/wirechat-client/internal/proto"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	hub := startHub(t, 255)
	cfg := config.Default().Peer
	ts := httptest.NewServer(NewRouter(hub, cfg, nil))
	t.Cleanup(ts.Close)
	return ts
}

func dialRoom(t *testing.T, ctx context.Context, ts *httptest.Server, room, user string) *websocket.Conn {
	t.Helper()

	host := strings.TrimPrefix(ts.URL, "http://")
	url, err := proto.Endpoint(host, room, user, false)
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", user, err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) proto.Frame {
	t.Helper()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	frame, err := proto.Decode(data)
	if err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return frame
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketPresenceAndMessage(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialRoom(t, ctx, ts, "lobby", "alice")
	if f := readFrame(t, ctx, connA); !reflect.DeepEqual(f.Presence.UserList, []string{"alice"}) {
		t.Fatalf("unexpected first presence: %+v", f)
	}

	connB := dialRoom(t, ctx, ts, "lobby", "bob")
	for _, conn := range []*websocket.Conn{connA, connB} {
		if f := readFrame(t, ctx, conn); !reflect.DeepEqual(f.Presence.UserList, []string{"alice", "bob"}) {
			t.Fatalf("unexpected presence: %+v", f)
		}
	}

	out, _ := proto.EncodeOutgoing("hi there", "someone-else")
	if err := connA.Write(ctx, websocket.MessageText, out); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, conn := range []*websocket.Conn{connA, connB} {
		f := readFrame(t, ctx, conn)
		// The peer stamps the connection's own name, not the claimed one.
		if f.Kind != proto.FrameChat || f.Chat.Username != "alice" || f.Chat.Message != "hi there" || f.Chat.Timestamp == "" {
			t.Fatalf("unexpected chat: %+v", f)
		}
	}

	connA.Close(websocket.StatusNormalClosure, "bye")
	if f := readFrame(t, ctx, connB); !reflect.DeepEqual(f.Presence.UserList, []string{"bob"}) {
		t.Fatalf("unexpected presence after leave: %+v", f)
	}
}

func TestWebSocketEscapedRoomAndAnonymous(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialRoom(t, ctx, ts, "room with/slash", "")
	if f := readFrame(t, ctx, conn); !reflect.DeepEqual(f.Presence.UserList, []string{AnonymousName}) {
		t.Fatalf("unexpected presence: %+v", f)
	}
}

func TestWebSocketRejectsLongRoom(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url, _ := proto.Endpoint(strings.TrimPrefix(ts.URL, "http://"), strings.Repeat("r", 101), "alice", false)
	_, resp, err := websocket.Dial(ctx, url, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 response, got %+v", resp)
	}
}
