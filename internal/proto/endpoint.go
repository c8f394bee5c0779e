package proto

import (
	"errors"
	"net/url"
)

// ChatPathPrefix is the route every room endpoint lives under.
const ChatPathPrefix = "/ws/chat/"

// UsernameParam is the query parameter carrying the joining user's name.
const UsernameParam = "username"

// Endpoint builds the WebSocket URL for a room. The room is a single
// escaped path segment; the username travels as a query parameter.
func Endpoint(host, room, username string, secure bool) (string, error) {
	if host == "" {
		return "", errors.New("endpoint: empty host")
	}
	if room == "" {
		return "", errors.New("endpoint: empty room")
	}

	scheme := "ws"
	if secure {
		scheme = "wss"
	}

	u := url.URL{
		Scheme:  scheme,
		Host:    host,
		Path:    ChatPathPrefix + room + "/",
		RawPath: ChatPathPrefix + url.PathEscape(room) + "/",
	}
	if username != "" {
		u.RawQuery = url.Values{UsernameParam: {username}}.Encode()
	}
	return u.String(), nil
}
