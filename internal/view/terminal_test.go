package view

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-client/internal/core"
)

type fakeChat struct {
	mu        sync.Mutex
	submitted []string
	submitErr error
	closes    int

	updates   chan core.Update
	closeOnce sync.Once
}

func newFakeChat() *fakeChat {
	return &fakeChat{updates: make(chan core.Update, 16)}
}

func (f *fakeChat) Submit(_ context.Context, draft string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, draft)
	return nil
}

func (f *fakeChat) Updates() <-chan core.Update { return f.updates }

func (f *fakeChat) Snapshot() core.Snapshot {
	return core.Snapshot{Identity: core.Identity{Username: "alice"}, Room: "lobby", State: core.StateOpen}
}

func (f *fakeChat) Close() error {
	f.mu.Lock()
	f.closes++
	f.mu.Unlock()
	f.closeOnce.Do(func() {
		f.updates <- core.Update{Kind: core.UpdateDisconnected}
		close(f.updates)
	})
	return nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runTerminal(t *testing.T, term *Terminal, chat Chat) {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- term.Run(context.Background(), chat) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("terminal did not finish")
	}
}

func TestTerminalRendersAndSubmits(t *testing.T) {
	chat := newFakeChat()
	chat.updates <- core.Update{Kind: core.UpdateConnected}
	chat.updates <- core.Update{Kind: core.UpdatePresence, Users: []string{"alice", "bob"}}
	chat.updates <- core.Update{Kind: core.UpdateMessage, Message: core.ChatMessage{Username: "bob", Message: "hi", Timestamp: "t1"}}
	chat.updates <- core.Update{Kind: core.UpdateWarning, Err: errors.New("bad frame")}

	var out syncBuffer
	term := NewTerminal(strings.NewReader("hey\n\n  \n"), &out, true)
	runTerminal(t, term, chat)

	text := out.String()
	for _, want := range []string{
		"Chat Room: lobby",
		"* connected to lobby as alice",
		"Active Users (2): alice, bob",
		"[t1] bob: hi",
		"! dropped frame: bad frame",
		"* disconnected",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	chat.mu.Lock()
	defer chat.mu.Unlock()
	// Empty lines are skipped; whitespace is a valid draft.
	if len(chat.submitted) != 2 || chat.submitted[0] != "hey" || chat.submitted[1] != "  " {
		t.Fatalf("unexpected submissions: %q", chat.submitted)
	}
	if chat.closes == 0 {
		t.Fatalf("end of input should close the session")
	}
}

func TestTerminalWarnsWhenNotOpen(t *testing.T) {
	chat := newFakeChat()
	chat.submitErr = core.ErrNotOpen

	var out syncBuffer
	term := NewTerminal(strings.NewReader("hello\n"), &out, true)
	runTerminal(t, term, chat)

	if !strings.Contains(out.String(), "not connected, message not sent") {
		t.Fatalf("expected warning, got:\n%s", out.String())
	}
}

func TestTerminalContextCancelClosesSession(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	chat := newFakeChat()
	term := NewTerminal(pr, io.Discard, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- term.Run(ctx, chat) }()
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("terminal did not stop on cancel")
	}

	chat.mu.Lock()
	defer chat.mu.Unlock()
	if chat.closes != 1 {
		t.Fatalf("expected one close, got %d", chat.closes)
	}
}

func TestTerminalAsk(t *testing.T) {
	var out syncBuffer
	term := NewTerminal(strings.NewReader("  alice \n"), &out, true)

	answer, err := term.Ask("Enter your username: ")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if answer != "alice" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if !strings.Contains(out.String(), "Enter your username: ") {
		t.Fatalf("question not written: %q", out.String())
	}

	// Input exhausted: an empty answer, no error.
	answer, err = term.Ask("Enter your room: ")
	if err != nil || answer != "" {
		t.Fatalf("expected empty answer at EOF, got %q, %v", answer, err)
	}
}
