package canvas

import (
	"github.com/openboard/relay/src/types"
)

// Transport is the surface the router needs from the connection layer:
// group membership, a direct send, and an excluding broadcast. The hub
// implements it; tests substitute a fake.
type Transport interface {
	JoinGroup(connID, groupID string) bool
	LeaveGroup(connID, groupID string) (remaining int, existed bool)
	GroupCount(groupID string) int
	PublicGroups() []types.GroupInfo
	Send(connID, event string, data map[string]any) bool
	Broadcast(groupID, excludeConnID, event string, data map[string]any)
}

// Session tracks one connection's room binding. The display name is
// what the user sees ("default" in private mode); the actual room is
// the broadcast-group key, synthesized per connection for private
// workspaces so no two connections ever share one.
type Session struct {
	ConnID      string
	ActualRoom  string // broadcast-group key, empty when unbound
	DisplayRoom string
}

// Bound reports whether the session is currently in a room.
func (s *Session) Bound() bool { return s.ActualRoom != "" }

// Private reports whether the session is in its private workspace.
func (s *Session) Private() bool { return s.DisplayRoom == types.DefaultRoom }

// PrivateRoomID synthesizes the broadcast-group key for a connection's
// private workspace. This mapping is the single mechanism that makes
// private mode airtight: no other connection is ever a member of the
// group, so nothing sent there can reach anyone else.
func PrivateRoomID(connID string) string {
	return types.DefaultRoom + "_" + connID
}

// join binds the session to a display room, leaving its current room
// first when the display name differs. The joiner always gets a
// roomJoined confirmation; other members of a collaborative room are
// notified only when the member is new. Private joins notify no one,
// and private rooms always report a user count of 1.
func (r *Router) join(s *Session, displayRoom string) {
	if s.Bound() && s.DisplayRoom != displayRoom {
		r.leave(s)
	}

	actualRoom := displayRoom
	if displayRoom == types.DefaultRoom {
		actualRoom = PrivateRoomID(s.ConnID)
	}

	added := r.transport.JoinGroup(s.ConnID, actualRoom)
	s.ActualRoom = actualRoom
	s.DisplayRoom = displayRoom

	userCount := 1
	if displayRoom != types.DefaultRoom {
		userCount = r.transport.GroupCount(actualRoom)
	}

	r.transport.Send(s.ConnID, types.EventRoomJoined, map[string]any{
		"roomId":    displayRoom,
		"userCount": userCount,
	})

	if displayRoom != types.DefaultRoom && added {
		r.transport.Broadcast(actualRoom, s.ConnID, types.EventUserJoined, map[string]any{
			"userCount": userCount,
		})
	}

	r.logger.Debug().
		Str("conn_id", s.ConnID).
		Str("room", displayRoom).
		Int("user_count", userCount).
		Msg("joined room")
}

// leave removes the session from its current room. Remaining members
// of a collaborative room get a userLeft notice; private departures
// are silent. The session is unbound afterwards.
func (r *Router) leave(s *Session) {
	if !s.Bound() {
		return
	}

	remaining, existed := r.transport.LeaveGroup(s.ConnID, s.ActualRoom)
	if existed && remaining > 0 && !s.Private() {
		r.transport.Broadcast(s.ActualRoom, s.ConnID, types.EventUserLeft, map[string]any{
			"userCount": remaining,
		})
	}

	r.logger.Debug().
		Str("conn_id", s.ConnID).
		Str("room", s.DisplayRoom).
		Msg("left room")

	s.ActualRoom = ""
	s.DisplayRoom = ""
}
