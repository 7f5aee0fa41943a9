// Package presence holds the transient per-board record of who is connected.
// Nothing here survives a restart: clients rejoin and repopulate it.
package presence

import (
	"sync"
	"time"
)

type Cursor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Entry is one user's live state on one board.
type Entry struct {
	UserID    uint      `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar"`
	Cursor    Cursor    `json:"cursor"`
	LastSeen  time.Time `json:"lastSeen"`
}

type boardPresence struct {
	entries map[uint]*Entry
	order   []uint
}

// Registry is the in-process session registry. It is a constructed value so
// tests and multiple servers-in-test can each own an independent one. A plain
// mutex suffices: contention is one map update per user event.
type Registry struct {
	mu     sync.Mutex
	boards map[string]*boardPresence
}

func NewRegistry() *Registry {
	return &Registry{boards: make(map[string]*boardPresence)}
}

// Add registers a user on a board. Re-adding an already present user refreshes
// the entry but keeps its insertion position, so a user never appears twice.
func (r *Registry) Add(boardID string, e Entry) {
	e.LastSeen = time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	bp := r.boards[boardID]
	if bp == nil {
		bp = &boardPresence{entries: make(map[uint]*Entry)}
		r.boards[boardID] = bp
	}
	if old, ok := bp.entries[e.UserID]; ok {
		*old = e
		return
	}
	bp.entries[e.UserID] = &e
	bp.order = append(bp.order, e.UserID)
}

// Remove drops a user's entry and reports whether one existed. An emptied
// board map is pruned entirely.
func (r *Registry) Remove(boardID string, userID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	bp := r.boards[boardID]
	if bp == nil {
		return false
	}
	if _, ok := bp.entries[userID]; !ok {
		return false
	}
	delete(bp.entries, userID)
	for i, id := range bp.order {
		if id == userID {
			bp.order = append(bp.order[:i], bp.order[i+1:]...)
			break
		}
	}
	if len(bp.entries) == 0 {
		delete(r.boards, boardID)
	}
	return true
}

// List returns the board's entries in insertion order. The slice and entries
// are copies; callers may hold them across lock boundaries.
func (r *Registry) List(boardID string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	bp := r.boards[boardID]
	if bp == nil {
		return nil
	}
	out := make([]Entry, 0, len(bp.order))
	for _, id := range bp.order {
		if e, ok := bp.entries[id]; ok {
			out = append(out, *e)
		}
	}
	return out
}

// UpdateCursor moves a user's cursor and refreshes last-seen. Reports false if
// the user is not present on the board.
func (r *Registry) UpdateCursor(boardID string, userID uint, cur Cursor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	bp := r.boards[boardID]
	if bp == nil {
		return false
	}
	e, ok := bp.entries[userID]
	if !ok {
		return false
	}
	e.Cursor = cur
	e.LastSeen = time.Now()
	return true
}

// Count returns how many users are present on a board.
func (r *Registry) Count(boardID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	bp := r.boards[boardID]
	if bp == nil {
		return 0
	}
	return len(bp.entries)
}

// Eviction records a stale entry removed by Sweep.
type Eviction struct {
	BoardID string
	Entry   Entry
}

// Sweep removes every entry whose last-seen is older than cutoff and prunes
// boards that end up empty. The evicted entries are returned so the caller
// can broadcast their departure.
func (r *Registry) Sweep(cutoff time.Time) []Eviction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var evicted []Eviction
	for boardID, bp := range r.boards {
		kept := bp.order[:0]
		for _, id := range bp.order {
			e := bp.entries[id]
			if e.LastSeen.Before(cutoff) {
				evicted = append(evicted, Eviction{BoardID: boardID, Entry: *e})
				delete(bp.entries, id)
				continue
			}
			kept = append(kept, id)
		}
		bp.order = kept
		if len(bp.entries) == 0 {
			delete(r.boards, boardID)
		}
	}
	return evicted
}
