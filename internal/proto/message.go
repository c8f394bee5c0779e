package proto

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// TypePresence tags a frame carrying the full room membership.
	TypePresence = "presence"
	// TypeChat tags a frame carrying one chat message.
	TypeChat = "chat"

	fieldType      = "type"
	fieldUserList  = "user_list"
	fieldUsername  = "username"
	fieldMessage   = "message"
	fieldTimestamp = "timestamp"
)

// FrameKind is the shape of a decoded inbound frame.
type FrameKind int

const (
	// FrameChat is a single chat message to append to the log.
	FrameChat FrameKind = iota
	// FramePresence is a full replacement of the active-user set.
	FramePresence
)

func (k FrameKind) String() string {
	switch k {
	case FrameChat:
		return TypeChat
	case FramePresence:
		return TypePresence
	default:
		return "unknown"
	}
}

// Presence is the server -> client membership frame.
type Presence struct {
	Type     string   `json:"type,omitempty"`
	UserList []string `json:"user_list"`
}

// Chat is the server -> client message frame.
type Chat struct {
	Type      string `json:"type,omitempty"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Outgoing is the client -> server message frame.
type Outgoing struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// Frame is an inbound frame after classification. Exactly one of Presence
// or Chat is meaningful, selected by Kind.
type Frame struct {
	Kind     FrameKind
	Presence Presence
	Chat     Chat
}

var errMissingField = errors.New("missing field")

// ParseError reports an inbound frame that could not be decoded.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed frame: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Decode parses one inbound frame. Any frame with a non-null user_list is
// presence, whatever else it carries. Otherwise a "presence" type tag marks
// presence and everything else is chat.
func Decode(data []byte) (Frame, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Frame{}, &ParseError{Raw: string(data), Err: err}
	}

	frame := Frame{Kind: classify(fields)}
	var err error
	switch frame.Kind {
	case FramePresence:
		frame.Presence, err = decodePresence(fields)
	default:
		frame.Chat, err = decodeChat(fields)
	}
	if err != nil {
		return Frame{}, &ParseError{Raw: string(data), Err: err}
	}
	return frame, nil
}

func classify(fields map[string]json.RawMessage) FrameKind {
	if raw, ok := fields[fieldUserList]; ok && !isNull(raw) {
		return FramePresence
	}
	// Unknown or malformed tags fall back to the chat shape.
	if raw, ok := fields[fieldType]; ok {
		var tag string
		if json.Unmarshal(raw, &tag) == nil && tag == TypePresence {
			return FramePresence
		}
	}
	return FrameChat
}

func decodePresence(fields map[string]json.RawMessage) (Presence, error) {
	raw, ok := fields[fieldUserList]
	if !ok || isNull(raw) {
		return Presence{}, fmt.Errorf("%s: %w", fieldUserList, errMissingField)
	}
	var users []string
	if err := json.Unmarshal(raw, &users); err != nil {
		return Presence{}, fmt.Errorf("%s: %w", fieldUserList, err)
	}
	if users == nil {
		users = []string{}
	}
	return Presence{Type: TypePresence, UserList: users}, nil
}

func decodeChat(fields map[string]json.RawMessage) (Chat, error) {
	username, err := stringField(fields, fieldUsername, true)
	if err != nil {
		return Chat{}, err
	}
	message, err := stringField(fields, fieldMessage, true)
	if err != nil {
		return Chat{}, err
	}
	timestamp, err := stringField(fields, fieldTimestamp, false)
	if err != nil {
		return Chat{}, err
	}
	return Chat{Type: TypeChat, Username: username, Message: message, Timestamp: timestamp}, nil
}

func stringField(fields map[string]json.RawMessage, key string, required bool) (string, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		if required {
			return "", fmt.Errorf("%s: %w", key, errMissingField)
		}
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// EncodeOutgoing builds the client -> server message frame.
func EncodeOutgoing(message, username string) ([]byte, error) {
	return json.Marshal(Outgoing{Message: message, Username: username})
}

// EncodePresence builds a tagged presence frame.
func EncodePresence(users []string) ([]byte, error) {
	if users == nil {
		users = []string{}
	}
	return json.Marshal(Presence{Type: TypePresence, UserList: users})
}

// EncodeChat builds a tagged chat frame.
func EncodeChat(username, message, timestamp string) ([]byte, error) {
	return json.Marshal(Chat{Type: TypeChat, Username: username, Message: message, Timestamp: timestamp})
}
