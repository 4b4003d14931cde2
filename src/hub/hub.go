package hub

import (
	"sync"

	"github.com/openboard/relay/src/types"
	"github.com/rs/zerolog"
)

// MessageBridge mirrors group broadcasts to other server instances.
// Defined here to avoid circular imports with the bridge package.
type MessageBridge interface {
	Publish(groupID string, msg types.Message) error
	Available() bool
}

// Hub owns all WebSocket client connections and the broadcast-group
// registry. Register, unregister and inbound events are serialized on
// one dispatch goroutine (Run), so event handlers for different
// connections never interleave mid-mutation. The mutex only guards
// reads from HTTP handlers and the client write pumps.
type Hub struct {
	clients map[string]*Client
	groups  map[string]map[string]bool // group ID -> set of client IDs

	register   chan *Client
	unregister chan *Client
	incoming   chan inbound
	remoteCast chan remote // from the bridge, local fan-out only

	handlers  map[string]types.EventHandler
	onConnect []func(string)
	onDisconn []func(string)

	bridge MessageBridge
	mu     sync.RWMutex
	logger zerolog.Logger
	done   chan struct{}
}

type inbound struct {
	connID string
	msg    types.Message
}

type remote struct {
	groupID string
	msg     types.Message
}

// New creates a new Hub instance.
func New(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		groups:     make(map[string]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan inbound, 256),
		remoteCast: make(chan remote, 256),
		handlers:   make(map[string]types.EventHandler),
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// SetBridge attaches a cross-instance message bridge to the hub.
// When set, broadcasts to collaborative groups are also forwarded to
// other instances.
func (h *Hub) SetBridge(b MessageBridge) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bridge = b
}

// BroadcastLocal delivers a message from the bridge to local group
// members only. It does not re-publish, preventing infinite loops.
func (h *Hub) BroadcastLocal(groupID string, msg types.Message) {
	h.remoteCast <- remote{groupID: groupID, msg: msg}
}

// Run starts the hub event loop. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.incoming:
			h.dispatch(in)
		case rm := <-h.remoteCast:
			h.fanOut(rm.groupID, "", rm.msg)
		case <-h.done:
			return
		}
	}
}

// Stop halts the hub event loop.
func (h *Hub) Stop() {
	close(h.done)
}

// Register queues a client for registration.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister queues a client for removal.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	h.logger.Info().Str("conn_id", c.ID).Msg("client connected")

	for _, cb := range h.onConnect {
		cb(c.ID)
	}
}

func (h *Hub) removeClient(c *Client) {
	h.mu.RLock()
	_, ok := h.clients[c.ID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	// Disconnect callbacks run before membership is purged so the room
	// lifecycle layer can broadcast departure notices while the group
	// state is still intact.
	for _, cb := range h.onDisconn {
		cb(c.ID)
	}

	h.mu.Lock()
	delete(h.clients, c.ID)
	for id, members := range h.groups {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.groups, id)
		}
	}
	h.mu.Unlock()

	c.Close()
	h.logger.Info().Str("conn_id", c.ID).Msg("client disconnected")
}

// dispatch routes one inbound event to its registered handler.
// Events from a connection whose cleanup has already run are dropped:
// a read pump may still have queued messages when the unregister wins
// the select race, and nothing must be processed for a dead connection.
func (h *Hub) dispatch(in inbound) {
	h.mu.RLock()
	_, alive := h.clients[in.connID]
	handler, ok := h.handlers[in.msg.Event]
	h.mu.RUnlock()

	if !alive {
		h.logger.Debug().Str("conn_id", in.connID).Str("event", in.msg.Event).Msg("event for disconnected client dropped")
		return
	}
	if !ok {
		h.logger.Debug().Str("event", in.msg.Event).Msg("no handler")
		return
	}
	if err := handler(in.connID, in.msg.Data); err != nil {
		h.logger.Error().Err(err).Str("conn_id", in.connID).Str("event", in.msg.Event).Msg("handler error")
	}
}
