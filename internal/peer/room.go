package peer

// Room groups clients connected to the same room name, in join order.
type Room struct {
	Name    string
	clients []*Client
}

// NewRoom constructs a room with no clients.
func NewRoom(name string) *Room {
	return &Room{Name: name}
}

// AddClient appends a client. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	for _, existing := range r.clients {
		if existing == c {
			return false
		}
	}
	r.clients = append(r.clients, c)
	return true
}

// RemoveClient deletes a client. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	for i, existing := range r.clients {
		if existing == c {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			return true
		}
	}
	return false
}

// Usernames lists each connected name once, in join order.
func (r *Room) Usernames() []string {
	seen := make(map[string]struct{}, len(r.clients))
	names := make([]string, 0, len(r.clients))
	for _, c := range r.clients {
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		names = append(names, c.Name)
	}
	return names
}

// Broadcast queues a frame for every client in the room.
func (r *Room) Broadcast(frame []byte) {
	for _, c := range r.clients {
		select {
		case c.Frames <- frame:
		default:
			// Drop if slow consumer.
		}
	}
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
