package presence

import (
	"sync"
	"testing"
	"time"
)

func entry(id uint, name string) Entry {
	return Entry{UserID: id, Username: name}
}

func TestRegistry_AddAndList(t *testing.T) {
	r := NewRegistry()
	r.Add("b1", entry(1, "alice"))
	r.Add("b1", entry(2, "bob"))

	users := r.List("b1")
	if len(users) != 2 {
		t.Fatalf("List() len = %d, want 2", len(users))
	}
	if users[0].UserID != 1 || users[1].UserID != 2 {
		t.Errorf("List() order = [%d %d], want insertion order [1 2]", users[0].UserID, users[1].UserID)
	}
}

func TestRegistry_AddIdempotent(t *testing.T) {
	// A user joining the same board repeatedly must appear exactly once.
	r := NewRegistry()
	r.Add("b1", entry(1, "alice"))
	r.Add("b1", entry(2, "bob"))
	r.Add("b1", entry(1, "alice"))
	r.Add("b1", entry(1, "alice"))

	users := r.List("b1")
	if len(users) != 2 {
		t.Fatalf("List() len = %d, want 2", len(users))
	}
	// Re-adding keeps the original insertion position.
	if users[0].UserID != 1 {
		t.Errorf("List()[0] = %d, want 1 (position preserved on re-add)", users[0].UserID)
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	r.Add("b1", entry(1, "alice"))

	if !r.Remove("b1", 1) {
		t.Error("Remove() = false for present user, want true")
	}
	if r.Remove("b1", 1) {
		t.Error("Remove() = true for absent user, want false")
	}
	if r.Remove("nope", 1) {
		t.Error("Remove() = true for unknown board, want false")
	}
}

func TestRegistry_EmptyBoardPruned(t *testing.T) {
	r := NewRegistry()
	r.Add("b1", entry(1, "alice"))
	r.Remove("b1", 1)

	r.mu.Lock()
	_, exists := r.boards["b1"]
	r.mu.Unlock()
	if exists {
		t.Error("board entry should be pruned once its last user leaves")
	}
}

func TestRegistry_UpdateCursor(t *testing.T) {
	r := NewRegistry()
	r.Add("b1", entry(1, "alice"))

	if !r.UpdateCursor("b1", 1, Cursor{X: 10, Y: 20}) {
		t.Fatal("UpdateCursor() = false for present user, want true")
	}
	if r.UpdateCursor("b1", 2, Cursor{X: 1, Y: 1}) {
		t.Error("UpdateCursor() = true for absent user, want false")
	}

	users := r.List("b1")
	if users[0].Cursor.X != 10 || users[0].Cursor.Y != 20 {
		t.Errorf("cursor = %+v, want {10 20}", users[0].Cursor)
	}
}

func TestRegistry_Count(t *testing.T) {
	r := NewRegistry()
	if r.Count("b1") != 0 {
		t.Errorf("Count() for unknown board = %d, want 0", r.Count("b1"))
	}
	r.Add("b1", entry(1, "alice"))
	r.Add("b1", entry(2, "bob"))
	if r.Count("b1") != 2 {
		t.Errorf("Count() = %d, want 2", r.Count("b1"))
	}
}

func TestRegistry_Sweep(t *testing.T) {
	r := NewRegistry()
	r.Add("b1", entry(1, "alice"))
	r.Add("b1", entry(2, "bob"))
	r.Add("b2", entry(3, "carol"))

	// Age alice and carol past the cutoff.
	r.mu.Lock()
	r.boards["b1"].entries[1].LastSeen = time.Now().Add(-10 * time.Minute)
	r.boards["b2"].entries[3].LastSeen = time.Now().Add(-10 * time.Minute)
	r.mu.Unlock()

	evicted := r.Sweep(time.Now().Add(-5 * time.Minute))
	if len(evicted) != 2 {
		t.Fatalf("Sweep() evicted %d entries, want 2", len(evicted))
	}

	if users := r.List("b1"); len(users) != 1 || users[0].UserID != 2 {
		t.Errorf("List(b1) after sweep = %+v, want only bob", users)
	}
	// b2 lost its only user and must be gone entirely.
	r.mu.Lock()
	_, exists := r.boards["b2"]
	r.mu.Unlock()
	if exists {
		t.Error("emptied board should be removed by Sweep")
	}
}

func TestRegistry_SweepKeepsFresh(t *testing.T) {
	r := NewRegistry()
	r.Add("b1", entry(1, "alice"))

	if evicted := r.Sweep(time.Now().Add(-5 * time.Minute)); len(evicted) != 0 {
		t.Errorf("Sweep() evicted %d fresh entries, want 0", len(evicted))
	}
	if r.Count("b1") != 1 {
		t.Errorf("Count() after sweep = %d, want 1", r.Count("b1"))
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			r.Add("b1", entry(id, "user"))
			r.UpdateCursor("b1", id, Cursor{X: float64(id)})
			r.List("b1")
		}(uint(i + 1))
	}
	wg.Wait()

	if r.Count("b1") != 20 {
		t.Errorf("Count() after concurrent adds = %d, want 20", r.Count("b1"))
	}
}

func TestCleaner_EvictsAndNotifies(t *testing.T) {
	r := NewRegistry()
	r.Add("b1", entry(1, "alice"))

	var mu sync.Mutex
	var evictions []Eviction
	c := NewCleaner(r, 5*time.Millisecond, time.Nanosecond, func(ev Eviction) {
		mu.Lock()
		evictions = append(evictions, ev)
		mu.Unlock()
	})
	go c.Run()
	defer c.Stop()

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	n := len(evictions)
	var first Eviction
	if n > 0 {
		first = evictions[0]
	}
	mu.Unlock()

	if n == 0 {
		t.Fatal("cleaner did not evict a stale entry")
	}
	if first.BoardID != "b1" || first.Entry.UserID != 1 {
		t.Errorf("eviction = %+v, want board b1 user 1", first)
	}
	if r.Count("b1") != 0 {
		t.Errorf("Count() after eviction = %d, want 0", r.Count("b1"))
	}
}

func TestCleaner_StopIsIdempotent(t *testing.T) {
	c := NewCleaner(NewRegistry(), time.Minute, time.Minute, nil)
	go c.Run()
	c.Stop()
	c.Stop()
}
