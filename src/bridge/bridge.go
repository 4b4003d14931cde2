package bridge

import "github.com/openboard/relay/src/types"

// Bridge mirrors room broadcasts between relay instances so clients of
// the same collaborative room see each other regardless of which
// instance they landed on.
type Bridge interface {
	// Publish forwards a group broadcast to all other instances.
	Publish(groupID string, msg types.Message) error

	// Start begins listening for broadcasts from other instances.
	Start() error

	// Stop shuts down the bridge connection.
	Stop() error

	// Available reports whether the bridge is connected and operational.
	Available() bool
}

// BroadcastTarget is implemented by the hub to receive broadcasts
// relayed from other instances.
type BroadcastTarget interface {
	BroadcastLocal(groupID string, msg types.Message)
}
