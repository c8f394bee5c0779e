package credential

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSourcesRoundTrip(t *testing.T) {
	sources := map[string]Source{
		"memory": NewMemory(Credentials{}),
		"sqlite": newTestSQLite(t),
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			creds, err := src.Get(ctx)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !creds.Empty() {
				t.Fatalf("expected empty store, got %+v", creds)
			}

			if err := src.Set(ctx, Credentials{Username: "alice"}); err != nil {
				t.Fatalf("set username: %v", err)
			}
			if err := src.Set(ctx, Credentials{Room: "lobby"}); err != nil {
				t.Fatalf("set room: %v", err)
			}
			creds, err = src.Get(ctx)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if creds != (Credentials{Username: "alice", Room: "lobby"}) {
				t.Fatalf("unexpected credentials: %+v", creds)
			}

			// Overwrite one value, keep the other.
			if err := src.Set(ctx, Credentials{Room: "den"}); err != nil {
				t.Fatalf("set room: %v", err)
			}
			creds, _ = src.Get(ctx)
			if creds != (Credentials{Username: "alice", Room: "den"}) {
				t.Fatalf("unexpected credentials after overwrite: %+v", creds)
			}

			if err := src.Clear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			creds, _ = src.Get(ctx)
			if !creds.Empty() {
				t.Fatalf("expected cleared store, got %+v", creds)
			}
		})
	}
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	path := t.TempDir() + "/creds.db"
	ctx := context.Background()

	st, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Set(ctx, Credentials{Username: "alice", Room: "lobby"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	creds, err := st.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if creds != (Credentials{Username: "alice", Room: "lobby"}) {
		t.Fatalf("credentials not persisted: %+v", creds)
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		creds   Credentials
		wantErr error
	}{
		{name: "complete", creds: Credentials{Username: "alice", Room: "lobby"}},
		{name: "no username", creds: Credentials{Room: "lobby"}, wantErr: ErrMissingCredential},
		{name: "no room", creds: Credentials{Username: "alice"}, wantErr: ErrMissingCredential},
		{name: "nothing", wantErr: ErrMissingCredential},
		{
			name:    "room too long",
			creds:   Credentials{Username: "alice", Room: strings.Repeat("r", 101)},
			wantErr: ErrInvalidCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(ctx, NewMemory(tt.creds))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("resolve: %v", err)
				}
				if got != tt.creds {
					t.Fatalf("unexpected credentials: %+v", got)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPromptAsksOnlyForMissingValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(Credentials{Username: "alice"})
	var out bytes.Buffer

	p := NewPrompt(store, newLineAsker(strings.NewReader("lobby\n"), &out))
	creds, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if creds != (Credentials{Username: "alice", Room: "lobby"}) {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
	if strings.Contains(out.String(), "username") {
		t.Fatalf("prompted for stored username: %q", out.String())
	}
	if !strings.Contains(out.String(), "Enter your room") {
		t.Fatalf("did not prompt for room: %q", out.String())
	}

	stored, _ := store.Get(ctx)
	if stored.Room != "lobby" {
		t.Fatalf("typed room not stored: %+v", stored)
	}
}

func TestPromptEndOfInputLeavesValueMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(Credentials{})

	p := NewPrompt(store, newLineAsker(strings.NewReader("  bob  \n"), &bytes.Buffer{}))
	_, err := Resolve(ctx, p)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}

	stored, _ := store.Get(ctx)
	if stored != (Credentials{Username: "bob"}) {
		t.Fatalf("expected only the typed username to be stored, got %+v", stored)
	}
}
