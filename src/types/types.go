package types

import "strings"

// DefaultRoom is the display name of the private workspace every
// connection starts in. The underlying broadcast group for a private
// workspace is synthesized per connection ("default_<connID>") so no
// two connections ever share one.
const DefaultRoom = "default"

// Drawing events accepted from clients and mirrored to their room.
const (
	EventBeginPath    = "beginPath"
	EventDrawLine     = "drawLine"
	EventDrawShape    = "drawShape"
	EventChangeConfig = "changeConfig"
	EventClearCanvas  = "clearCanvas"
)

// Room lifecycle events accepted from clients.
const (
	EventJoinRoom  = "joinRoom"
	EventLeaveRoom = "leaveRoom"
	EventGetRooms  = "getRooms"
)

// Events emitted by the server.
const (
	EventRoomJoined = "roomJoined"
	EventUserJoined = "userJoined"
	EventUserLeft   = "userLeft"
	EventRoomsList  = "roomsList"
	EventRoomError  = "roomError"
	EventError      = "error"
)

// Message is the wire envelope in both directions.
type Message struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// EventHandler handles one inbound event from a connection.
type EventHandler func(connID string, data map[string]any) error

// GroupInfo describes one broadcast group for room listings and stats.
type GroupInfo struct {
	ID        string `json:"id"`
	UserCount int    `json:"userCount"`
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	Close() error
}

// IsPrivateGroup reports whether a group ID denotes a private workspace.
// Room sanitization strips underscores, so no client-chosen room can
// collide with the "default_<connID>" namespace; the prefix check also
// keeps the reserved "default" name itself out of public listings.
func IsPrivateGroup(id string) bool {
	return strings.HasPrefix(id, DefaultRoom)
}
