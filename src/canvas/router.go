package canvas

import (
	"fmt"

	"github.com/openboard/relay/src/types"
	"github.com/rs/zerolog"
)

// HandlerRegistry is where the router hangs its event handlers and
// lifecycle callbacks. The hub implements it.
type HandlerRegistry interface {
	RegisterHandler(event string, handler types.EventHandler)
	OnConnection(cb func(connID string))
	OnDisconnection(cb func(connID string))
}

// Router wires inbound events through admission, validation and the
// private-workspace isolation gate before fanning them out to the
// sender's room. It owns all per-connection session and rate-limiter
// state; both maps are touched only from the hub's dispatch goroutine.
type Router struct {
	transport Transport
	validator Validator
	limiter   *RateLimiter
	sessions  map[string]*Session
	logger    zerolog.Logger
}

// NewRouter creates a router on top of the given transport.
func NewRouter(t Transport, v Validator, rl *RateLimiter, logger zerolog.Logger) *Router {
	return &Router{
		transport: t,
		validator: v,
		limiter:   rl,
		sessions:  make(map[string]*Session),
		logger:    logger.With().Str("component", "canvas-router").Logger(),
	}
}

// Register attaches the router's handlers to the registry.
func (r *Router) Register(reg HandlerRegistry) {
	reg.OnConnection(r.HandleConnect)
	reg.OnDisconnection(r.HandleDisconnect)

	reg.RegisterHandler(types.EventBeginPath, r.handleBeginPath)
	reg.RegisterHandler(types.EventDrawLine, r.handleDrawLine)
	reg.RegisterHandler(types.EventDrawShape, r.handleDrawShape)
	reg.RegisterHandler(types.EventChangeConfig, r.handleChangeConfig)
	reg.RegisterHandler(types.EventClearCanvas, r.handleClearCanvas)
	reg.RegisterHandler(types.EventJoinRoom, r.handleJoinRoom)
	reg.RegisterHandler(types.EventLeaveRoom, r.handleLeaveRoom)
	reg.RegisterHandler(types.EventGetRooms, r.handleGetRooms)
}

// HandleConnect creates the connection's session and binds it to its
// private workspace. Every connection starts isolated.
func (r *Router) HandleConnect(connID string) {
	s := &Session{ConnID: connID}
	r.sessions[connID] = s
	r.join(s, types.DefaultRoom)
}

// HandleDisconnect leaves the current room and discards all
// per-connection state. Cleanup runs exactly once; any event still
// queued behind the disconnect finds no session and is dropped.
func (r *Router) HandleDisconnect(connID string) {
	s, ok := r.sessions[connID]
	if !ok {
		return
	}
	r.leave(s)
	delete(r.sessions, connID)
	r.limiter.Forget(connID)
}

// Session returns a connection's session, nil when unknown.
func (r *Router) Session(connID string) *Session {
	return r.sessions[connID]
}

// admitDrawing runs the shared front of every drawing handler: session
// lookup and rate-limit admission. A rejected event costs the sender a
// targeted error notice and nothing else.
func (r *Router) admitDrawing(connID string) (*Session, bool) {
	s, ok := r.sessions[connID]
	if !ok {
		return nil, false
	}
	if !r.limiter.Admit(connID) {
		r.transport.Send(connID, types.EventError, map[string]any{
			"message": "rate limit exceeded, slow down",
		})
		return nil, false
	}
	return s, true
}

// isolated reports whether the event must not leave this connection:
// private-workspace drawing is never observable by anyone else. The
// per-connection group already guarantees that structurally; this gate
// keeps it explicit. Unbound sessions have nowhere to broadcast.
func (r *Router) isolated(s *Session) bool {
	return !s.Bound() || s.Private()
}

func (r *Router) handleBeginPath(connID string, data map[string]any) error {
	s, ok := r.admitDrawing(connID)
	if !ok {
		return nil
	}

	x, okX := numField(data, "x")
	y, okY := numField(data, "y")
	if !okX || !okY || !r.validator.ValidCoordinates(x, y) {
		return nil
	}
	if r.isolated(s) {
		return nil
	}

	out := map[string]any{
		"x":    x,
		"y":    y,
		"tool": DefaultTool,
		"size": DefaultBrushSize,
	}
	if tool, ok := strField(data, "tool"); ok && tool != "" {
		out["tool"] = tool
	}
	if size, ok := numField(data, "size"); ok && ValidSize(size) {
		out["size"] = size
	}
	// An invalid color is omitted rather than defaulted so receivers
	// keep the sender's previously configured color.
	if color, ok := strField(data, "color"); ok && ValidColor(color) {
		out["color"] = color
	}

	r.transport.Broadcast(s.ActualRoom, connID, types.EventBeginPath, out)
	return nil
}

func (r *Router) handleDrawLine(connID string, data map[string]any) error {
	s, ok := r.admitDrawing(connID)
	if !ok {
		return nil
	}

	x, okX := numField(data, "x")
	y, okY := numField(data, "y")
	if !okX || !okY || !r.validator.ValidCoordinates(x, y) {
		return nil
	}
	if r.isolated(s) {
		return nil
	}

	r.transport.Broadcast(s.ActualRoom, connID, types.EventDrawLine, map[string]any{
		"x": x,
		"y": y,
	})
	return nil
}

func (r *Router) handleDrawShape(connID string, data map[string]any) error {
	s, ok := r.admitDrawing(connID)
	if !ok {
		return nil
	}

	shape, okT := strField(data, "type")
	if !okT || !KnownShapeType(shape) {
		return nil
	}
	startX, ok1 := numField(data, "startX")
	startY, ok2 := numField(data, "startY")
	endX, ok3 := numField(data, "endX")
	endY, ok4 := numField(data, "endY")
	if !ok1 || !ok2 || !ok3 || !ok4 ||
		!r.validator.ValidCoordinates(startX, startY) ||
		!r.validator.ValidCoordinates(endX, endY) {
		return nil
	}
	if r.isolated(s) {
		return nil
	}

	r.transport.Broadcast(s.ActualRoom, connID, types.EventDrawShape, map[string]any{
		"type":   shape,
		"startX": startX,
		"startY": startY,
		"endX":   endX,
		"endY":   endY,
		"color":  colorOrDefault(data),
		"size":   sizeOrDefault(data),
	})
	return nil
}

func (r *Router) handleChangeConfig(connID string, data map[string]any) error {
	s, ok := r.admitDrawing(connID)
	if !ok {
		return nil
	}
	if r.isolated(s) {
		return nil
	}

	r.transport.Broadcast(s.ActualRoom, connID, types.EventChangeConfig, map[string]any{
		"color": colorOrDefault(data),
		"size":  sizeOrDefault(data),
	})
	return nil
}

func (r *Router) handleClearCanvas(connID string, data map[string]any) error {
	s, ok := r.admitDrawing(connID)
	if !ok {
		return nil
	}
	if r.isolated(s) {
		return nil
	}

	r.transport.Broadcast(s.ActualRoom, connID, types.EventClearCanvas, nil)
	return nil
}

func (r *Router) handleJoinRoom(connID string, data map[string]any) error {
	s, ok := r.sessions[connID]
	if !ok {
		return nil
	}

	raw, ok := strField(data, "roomId")
	if !ok {
		raw = types.DefaultRoom
	}
	roomID := SanitizeRoomID(raw)
	create, _ := boolField(data, "create")

	// Joining a collaborative room that nobody is in requires the
	// creation flag; otherwise the requester keeps its current room.
	if roomID != types.DefaultRoom && !create && r.transport.GroupCount(roomID) == 0 {
		r.transport.Send(connID, types.EventRoomError, map[string]any{
			"message": fmt.Sprintf("room %q does not exist", roomID),
		})
		return nil
	}

	r.join(s, roomID)
	return nil
}

func (r *Router) handleLeaveRoom(connID string, data map[string]any) error {
	s, ok := r.sessions[connID]
	if !ok {
		return nil
	}
	r.leave(s)
	return nil
}

func (r *Router) handleGetRooms(connID string, data map[string]any) error {
	r.transport.Send(connID, types.EventRoomsList, map[string]any{
		"rooms": r.transport.PublicGroups(),
	})
	return nil
}

func colorOrDefault(data map[string]any) string {
	if color, ok := strField(data, "color"); ok && ValidColor(color) {
		return color
	}
	return DefaultColor
}

func sizeOrDefault(data map[string]any) float64 {
	if size, ok := numField(data, "size"); ok && ValidSize(size) {
		return size
	}
	return DefaultBrushSize
}

// Payload fields arrive as decoded JSON, so numbers are float64 and
// anything else is a shape violation.

func numField(data map[string]any, key string) (float64, bool) {
	f, ok := data[key].(float64)
	return f, ok
}

func strField(data map[string]any, key string) (string, bool) {
	s, ok := data[key].(string)
	return s, ok
}

func boolField(data map[string]any, key string) (bool, bool) {
	b, ok := data[key].(bool)
	return b, ok
}
