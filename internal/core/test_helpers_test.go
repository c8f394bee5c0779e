package core

import (
	"testing"
)

func newTestRouter(t *testing.T, username, room string) (*Router, *State) {
	t.Helper()

	state := NewState(Identity{Username: username}, room)
	return NewRouter(state, nil), state
}

func mustRoute(t *testing.T, r *Router, raw string, kind UpdateKind) Update {
	t.Helper()

	up := r.Route([]byte(raw))
	if up.Kind != kind {
		t.Fatalf("expected update %v for %s, got %v (err=%v)", kind, raw, up.Kind, up.Err)
	}
	return up
}
