package peer

// Client is one WebSocket connection inside a room.
type Client struct {
	ID     string
	Name   string
	Room   string
	Frames chan []byte
}

// NewClient constructs a client with an initialized frame queue.
func NewClient(id, name, room string) *Client {
	if name == "" {
		name = AnonymousName
	}
	return &Client{
		ID:     id,
		Name:   name,
		Room:   room,
		Frames: make(chan []byte, 16),
	}
}
