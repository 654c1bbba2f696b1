package realtime

import (
	"sync"
)

// Table names the two row streams clients can observe.
type Table string

const (
	TableConversations Table = "conversations"
	TableMessages      Table = "chat_messages"
)

// Action mirrors the row-level change kinds of the store.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event is a row-level change notification scoped to one user.
// It carries no row data: consumers re-fetch the full collection.
type Event struct {
	Table  Table
	UserID string
	Action Action
}

type subscription struct {
	events chan Event
}

// Hub is the in-process change feed. Repositories call Notify after
// committed writes; subscribers receive events filtered by table and
// user id. Delivery is best effort per subscriber: when a subscriber
// buffer is full the event is dropped, which is safe because any
// retained event already forces a full re-fetch.
type Hub struct {
	mu   sync.RWMutex
	subs map[Table]map[string]map[*subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[Table]map[string]map[*subscription]struct{}),
	}
}

// Subscribe registers for changes on table rows owned by userID.
// The returned cancel func closes the event channel; calling it more
// than once is safe.
func (h *Hub) Subscribe(table Table, userID string) (<-chan Event, func()) {
	sub := &subscription{events: make(chan Event, 8)}

	h.mu.Lock()
	users := h.subs[table]
	if users == nil {
		users = make(map[string]map[*subscription]struct{})
		h.subs[table] = users
	}
	set := users[userID]
	if set == nil {
		set = make(map[*subscription]struct{})
		users[userID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[table][userID]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(h.subs[table], userID)
				}
			}
			h.mu.Unlock()
			close(sub.events)
		})
	}
	return sub.events, cancel
}

// Notify fans the event out to every subscriber of (table, user).
func (h *Hub) Notify(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ev.Table][ev.UserID] {
		select {
		case sub.events <- ev:
		default:
		}
	}
}
