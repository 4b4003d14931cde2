package hub

import (
	"sort"

	"github.com/openboard/relay/src/types"
)

// Group operations form the broadcast-group registry. All are total:
// absent groups behave as empty, and a group is deleted the moment its
// last member leaves, so the registry never holds an empty group.

// JoinGroup adds a client to a group, creating the group if absent.
// It reports whether the member was newly added.
func (h *Hub) JoinGroup(connID, groupID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[groupID]
	if !ok {
		members = make(map[string]bool)
		h.groups[groupID] = members
	}
	if members[connID] {
		return false
	}
	members[connID] = true
	return true
}

// LeaveGroup removes a client from a group, deleting the group when it
// empties. It returns the remaining member count (0 when deleted) and
// whether the group existed.
func (h *Hub) LeaveGroup(connID, groupID string) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[groupID]
	if !ok {
		return 0, false
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.groups, groupID)
		return 0, true
	}
	return len(members), true
}

// LeaveAllGroups removes a client from every group it is a member of.
func (h *Hub) LeaveAllGroups(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, members := range h.groups {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, id)
		}
	}
}

// GroupCount returns a group's member count, 0 when absent.
func (h *Hub) GroupCount(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupID])
}

// PublicGroups lists all collaborative groups with their member
// counts, sorted lexicographically by ID. Private workspace groups are
// never listed.
func (h *Hub) PublicGroups() []types.GroupInfo {
	h.mu.RLock()
	infos := make([]types.GroupInfo, 0, len(h.groups))
	for id, members := range h.groups {
		if types.IsPrivateGroup(id) {
			continue
		}
		infos = append(infos, types.GroupInfo{ID: id, UserCount: len(members)})
	}
	h.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Send delivers an event to a single client. It reports false when the
// client is unknown or its send buffer is full.
func (h *Hub) Send(connID, event string, data map[string]any) bool {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	select {
	case client.Send <- types.Message{Event: event, Data: data}:
		return true
	default:
		h.logger.Warn().Str("conn_id", connID).Msg("send buffer full, dropping")
		return false
	}
}

// Broadcast delivers an event to every member of a group except the
// excluded sender, and mirrors it to other instances through the
// bridge when one is attached. Private workspace groups stay local:
// their single member is always on this instance.
func (h *Hub) Broadcast(groupID, excludeConnID, event string, data map[string]any) {
	msg := types.Message{Event: event, Data: data}
	h.fanOut(groupID, excludeConnID, msg)

	if types.IsPrivateGroup(groupID) {
		return
	}
	h.mu.RLock()
	b := h.bridge
	h.mu.RUnlock()
	if b == nil || !b.Available() {
		return
	}
	if err := b.Publish(groupID, msg); err != nil {
		h.logger.Error().Err(err).Str("group", groupID).Msg("bridge publish failed")
	}
}

func (h *Hub) fanOut(groupID, excludeConnID string, msg types.Message) {
	h.mu.RLock()
	members, ok := h.groups[groupID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	// Copy member IDs to avoid holding the lock during sends.
	ids := make([]string, 0, len(members))
	for id := range members {
		if id == excludeConnID {
			continue
		}
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.mu.RLock()
		client, exists := h.clients[id]
		h.mu.RUnlock()
		if !exists {
			continue
		}
		select {
		case client.Send <- msg:
		default:
			h.logger.Warn().Str("conn_id", id).Msg("send buffer full, dropping")
		}
	}
}
