package bridge

import (
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openboard/relay/src/types"
)

func redisPayload(data []byte) *redis.Message {
	return &redis.Message{Payload: string(data)}
}

// mockBroadcastTarget records broadcasts forwarded from the bridge.
type mockBroadcastTarget struct {
	groups   []string
	received []types.Message
}

func (m *mockBroadcastTarget) BroadcastLocal(groupID string, msg types.Message) {
	m.groups = append(m.groups, groupID)
	m.received = append(m.received, msg)
}

func TestRedisEnvelopeSerialization(t *testing.T) {
	msg := types.Message{
		Event: "drawShape",
		Data: map[string]any{
			"type": "circle", "startX": float64(0), "startY": float64(0),
			"endX": float64(10), "endY": float64(10), "color": "#fff",
		},
	}

	env := redisEnvelope{
		InstanceID: "instance-abc",
		GroupID:    "team-42",
		Message:    msg,
	}

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded redisEnvelope
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, env.InstanceID, decoded.InstanceID)
	assert.Equal(t, env.GroupID, decoded.GroupID)
	assert.Equal(t, msg.Event, decoded.Message.Event)
	assert.Equal(t, "circle", decoded.Message.Data["type"])
	assert.Equal(t, "#fff", decoded.Message.Data["color"])
}

func TestHandleRedisMessageSkipsOwnInstance(t *testing.T) {
	target := &mockBroadcastTarget{}
	b := NewRedisBridge(DefaultRedisConfig(), target, zerolog.Nop())

	env := redisEnvelope{
		InstanceID: b.instanceID,
		GroupID:    "r1",
		Message:    types.Message{Event: "drawLine"},
	}
	payload, err := json.Marshal(env)
	require.NoError(t, err)

	b.handleRedisMessage(redisPayload(payload))
	assert.Empty(t, target.received, "own messages must not loop back")
}

func TestHandleRedisMessageForwardsRemoteBroadcasts(t *testing.T) {
	target := &mockBroadcastTarget{}
	b := NewRedisBridge(DefaultRedisConfig(), target, zerolog.Nop())

	env := redisEnvelope{
		InstanceID: "other-node",
		GroupID:    "team-42",
		Message:    types.Message{Event: "drawLine", Data: map[string]any{"x": float64(1)}},
	}
	payload, err := json.Marshal(env)
	require.NoError(t, err)

	b.handleRedisMessage(redisPayload(payload))

	require.Len(t, target.received, 1)
	assert.Equal(t, []string{"team-42"}, target.groups)
	assert.Equal(t, "drawLine", target.received[0].Event)
}

func TestHandleRedisMessageDropsPrivateGroups(t *testing.T) {
	target := &mockBroadcastTarget{}
	b := NewRedisBridge(DefaultRedisConfig(), target, zerolog.Nop())

	env := redisEnvelope{
		InstanceID: "other-node",
		GroupID:    "default_conn-1",
		Message:    types.Message{Event: "drawLine"},
	}
	payload, err := json.Marshal(env)
	require.NoError(t, err)

	b.handleRedisMessage(redisPayload(payload))
	assert.Empty(t, target.received, "private workspace traffic must never relay")
}

func TestHandleRedisMessageIgnoresGarbage(t *testing.T) {
	target := &mockBroadcastTarget{}
	b := NewRedisBridge(DefaultRedisConfig(), target, zerolog.Nop())

	b.handleRedisMessage(redisPayload([]byte("not json")))
	assert.Empty(t, target.received)
}

func TestRedisConfigDefaults(t *testing.T) {
	cfg := DefaultRedisConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, "relay:ws:", cfg.Prefix)
	assert.Equal(t, 0, cfg.DB)
}
