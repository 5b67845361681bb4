package hub

import (
	"sync"

	"github.com/vaibhavx77/rover-app/internal/geo"
)

// Envelope is one named event as it travels to a client.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Session is one connected client's outbound event channel.
type Session struct {
	ID string
	ch chan Envelope
}

// Events is drained by the transport's write loop. The channel closes when
// the session is unregistered.
func (s *Session) Events() <-chan Envelope {
	return s.ch
}

// Hub tracks connected sessions and their region-room memberships, and fans
// events out to a room, to everyone, or to a single session. Delivery is
// fire-and-forget: a session whose buffer is full misses the event rather
// than blocking the rest.
type Hub struct {
	bufferSize int

	mu       sync.RWMutex
	sessions map[string]*Session
	rooms    map[geo.RegionKey]map[string]*Session
}

func NewHub(bufferSize int) *Hub {
	return &Hub{
		bufferSize: bufferSize,
		sessions:   make(map[string]*Session),
		rooms:      make(map[geo.RegionKey]map[string]*Session),
	}
}

// Register creates a session for the connection ID. Re-registering an ID
// replaces and closes the previous session.
func (h *Hub) Register(id string) *Session {
	s := &Session{
		ID: id,
		ch: make(chan Envelope, h.bufferSize),
	}

	h.mu.Lock()
	if prev, ok := h.sessions[id]; ok {
		h.removeLocked(prev)
	}
	h.sessions[id] = s
	h.mu.Unlock()

	return s
}

// Unregister drops the session from every room and closes its channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	if s, ok := h.sessions[id]; ok {
		h.removeLocked(s)
	}
	h.mu.Unlock()
}

func (h *Hub) removeLocked(s *Session) {
	for region, members := range h.rooms {
		if _, ok := members[s.ID]; ok {
			delete(members, s.ID)
			if len(members) == 0 {
				delete(h.rooms, region)
			}
		}
	}
	delete(h.sessions, s.ID)
	close(s.ch)
}

// Join adds the session to the region's room. A session keeps every room it
// has ever joined until it disconnects; joining a new region does not leave
// the previous one.
func (h *Hub) Join(id string, region geo.RegionKey) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[id]
	if !ok {
		return false
	}

	members, ok := h.rooms[region]
	if !ok {
		members = make(map[string]*Session)
		h.rooms[region] = members
	}
	members[id] = s
	return true
}

// Members returns the session IDs currently joined to the region.
func (h *Hub) Members(region geo.RegionKey) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.rooms[region]))
	for id := range h.rooms[region] {
		ids = append(ids, id)
	}
	return ids
}

// Regions returns every room the session currently belongs to.
func (h *Hub) Regions(id string) []geo.RegionKey {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var regions []geo.RegionKey
	for region, members := range h.rooms {
		if _, ok := members[id]; ok {
			regions = append(regions, region)
		}
	}
	return regions
}

// BroadcastRoom delivers the event to every session in the region's room.
func (h *Hub) BroadcastRoom(region geo.RegionKey, env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.rooms[region] {
		send(s, env)
	}
}

// BroadcastAll delivers the event to every connected session.
func (h *Hub) BroadcastAll(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.sessions {
		send(s, env)
	}
}

// Send delivers the event to a single session.
func (h *Hub) Send(id string, env Envelope) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[id]
	if !ok {
		return false
	}
	send(s, env)
	return true
}

func send(s *Session, env Envelope) {
	select {
	case s.ch <- env:
	default:
		// Skip slow sessions
	}
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close closes every session channel, letting transport write loops exit.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, s := range h.sessions {
		close(s.ch)
		delete(h.sessions, id)
	}
	h.rooms = make(map[geo.RegionKey]map[string]*Session)
}
