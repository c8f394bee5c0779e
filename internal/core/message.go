package core

// ChatMessage is one entry of the session's message log.
type ChatMessage struct {
	Username  string
	Message   string
	Timestamp string
}

// Identity is the user a session speaks as.
type Identity struct {
	Username string
}
