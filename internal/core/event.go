package core

// UpdateKind describes what changed in a session.
type UpdateKind int

const (
	// UpdateConnected reports that the connection opened.
	UpdateConnected UpdateKind = iota
	// UpdateDisconnected reports that the connection closed. It is the last update.
	UpdateDisconnected
	// UpdateMessage reports a message appended to the log.
	UpdateMessage
	// UpdatePresence reports a replaced active-user set.
	UpdatePresence
	// UpdateWarning reports a dropped inbound frame.
	UpdateWarning
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateConnected:
		return "connected"
	case UpdateDisconnected:
		return "disconnected"
	case UpdateMessage:
		return "message"
	case UpdatePresence:
		return "presence"
	case UpdateWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Update is sent to observers to describe what happened in a session.
type Update struct {
	Kind    UpdateKind
	Message ChatMessage // For UpdateMessage
	Users   []string    // For UpdatePresence
	Err     error       // Transport error for UpdateDisconnected, parse error for UpdateWarning
}
