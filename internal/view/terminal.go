// Package view renders a chat session on a terminal.
package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gookit/color"

	"github.com/vovakirdan/wirechat-client/internal/core"
)

// Chat is the part of a session the terminal drives.
type Chat interface {
	Submit(ctx context.Context, draft string) error
	Updates() <-chan core.Update
	Snapshot() core.Snapshot
	Close() error
}

// Terminal prints session updates and submits typed lines. One terminal
// can drive several sessions in turn; stdin is read by a single goroutine.
type Terminal struct {
	in      io.Reader
	noColor bool

	outMu sync.Mutex
	out   io.Writer

	lines     chan string
	startOnce sync.Once
}

// NewTerminal builds a terminal reading lines from in and writing to out.
func NewTerminal(in io.Reader, out io.Writer, noColor bool) *Terminal {
	return &Terminal{
		in:      in,
		out:     out,
		noColor: noColor,
		lines:   make(chan string),
	}
}

// Ask implements credential.Asker on top of the shared line reader.
func (t *Terminal) Ask(question string) (string, error) {
	t.start()
	t.write(color.Bold, question)

	line, ok := <-t.lines
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(line), nil
}

// Run renders chat until its updates end. End of input closes the session;
// so does ctx.
func (t *Terminal) Run(ctx context.Context, chat Chat) error {
	t.start()

	snap := chat.Snapshot()
	t.printLine(color.Bold, fmt.Sprintf("Chat Room: %s", snap.Room))

	updates := chat.Updates()
	lines := t.lines
	done := ctx.Done()

	for {
		select {
		case <-done:
			done = nil
			lines = nil
			_ = chat.Close()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			t.render(snap, up)
		case line, ok := <-lines:
			if !ok {
				lines = nil
				_ = chat.Close()
				continue
			}
			line = strings.TrimRight(line, "\r")
			if line == "" {
				continue
			}
			if err := chat.Submit(ctx, line); err != nil {
				if errors.Is(err, core.ErrNotOpen) {
					t.printLine(color.Red, "! not connected, message not sent")
					continue
				}
				t.printLine(color.Red, fmt.Sprintf("! send failed: %v", err))
			}
		}
	}
}

func (t *Terminal) render(snap core.Snapshot, up core.Update) {
	switch up.Kind {
	case core.UpdateConnected:
		t.printLine(color.Green, fmt.Sprintf("* connected to %s as %s", snap.Room, snap.Identity.Username))
	case core.UpdatePresence:
		t.printLine(color.Yellow, fmt.Sprintf("Active Users (%d): %s", len(up.Users), strings.Join(up.Users, ", ")))
	case core.UpdateMessage:
		t.writeMessage(up.Message)
	case core.UpdateWarning:
		t.printLine(color.Red, fmt.Sprintf("! dropped frame: %v", up.Err))
	case core.UpdateDisconnected:
		if up.Err != nil {
			t.printLine(color.Red, fmt.Sprintf("* connection lost: %v", up.Err))
			return
		}
		t.printLine(color.Green, "* disconnected")
	}
}

func (t *Terminal) writeMessage(msg core.ChatMessage) {
	t.outMu.Lock()
	defer t.outMu.Unlock()

	fmt.Fprintf(t.out, "%s %s: %s\n",
		t.paint(color.Gray, "["+msg.Timestamp+"]"),
		t.paint(color.Cyan, msg.Username),
		msg.Message,
	)
}

func (t *Terminal) printLine(c color.Color, s string) {
	t.write(c, s+"\n")
}

func (t *Terminal) write(c color.Color, s string) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	fmt.Fprint(t.out, t.paint(c, s))
}

func (t *Terminal) paint(c color.Color, s string) string {
	if t.noColor {
		return s
	}
	return c.Sprint(s)
}

func (t *Terminal) start() {
	t.startOnce.Do(func() {
		go func() {
			defer close(t.lines)
			scanner := bufio.NewScanner(t.in)
			for scanner.Scan() {
				t.lines <- scanner.Text()
			}
		}()
	})
}
