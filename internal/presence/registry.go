// Package presence tracks which sessions are connected to which chatroom.
package presence

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Registry maps a room id to the set of session ids joined to it. A session
// belongs to at most one room. Rooms are created on first join and dropped
// when their last session leaves.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]map[string]struct{}
	sessions map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]map[string]struct{}),
		sessions: make(map[string]string),
	}
}

// Join adds session to room and returns the room's new size. A session
// already in another room is moved.
func (r *Registry) Join(room, session string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.sessions[session]; ok && prev != room {
		r.remove(prev, session)
	}

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	members[session] = struct{}{}
	r.sessions[session] = room

	return len(members)
}

// Leave removes session from room and returns the room's new size. Leaving a
// room the session is not in changes nothing.
func (r *Registry) Leave(room, session string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.sessions[session]; ok && cur == room {
		r.remove(room, session)
	}

	return len(r.rooms[room])
}

func (r *Registry) remove(room, session string) {
	delete(r.sessions, session)

	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, session)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

func (r *Registry) SizeOf(room string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.rooms[room])
}

// RoomOf returns the room session is joined to.
func (r *Registry) RoomOf(session string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.sessions[session]
	return room, ok
}

// Members returns a sorted snapshot of the sessions in room.
func (r *Registry) Members(room string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := lo.Keys(r.rooms[room])
	sort.Strings(members)

	return members
}

// Rooms returns the number of rooms with at least one session.
func (r *Registry) Rooms() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.rooms)
}
