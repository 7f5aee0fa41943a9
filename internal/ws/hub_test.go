package ws

import (
	"sync"
	"testing"

	"boardsync/internal/auth"

	"github.com/rs/zerolog"
)

func newHubClient(userID uint, name string, buffer int) *Client {
	return &Client{
		id:       name,
		send:     make(chan []byte, buffer),
		done:     make(chan struct{}),
		identity: auth.Identity{ID: userID, Username: name},
		logger:   zerolog.Nop(),
	}
}

func drainOne(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case frame := <-c.send:
		return frame
	default:
		t.Fatal("expected a frame")
		return nil
	}
}

func TestHub_BroadcastSkipsSender(t *testing.T) {
	h := NewHub()
	a := newHubClient(1, "a", 4)
	b := newHubClient(2, "b", 4)
	h.joinRoom("r1", a)
	h.joinRoom("r1", b)

	h.Broadcast("r1", []byte("x"), a)

	if string(drainOne(t, b)) != "x" {
		t.Error("b should receive the frame")
	}
	select {
	case <-a.send:
		t.Error("sender must not receive its own broadcast")
	default:
	}
}

func TestHub_BroadcastScopedToRoom(t *testing.T) {
	h := NewHub()
	a := newHubClient(1, "a", 4)
	b := newHubClient(2, "b", 4)
	h.joinRoom("r1", a)
	h.joinRoom("r2", b)

	h.Broadcast("r1", []byte("x"), nil)

	drainOne(t, a)
	select {
	case <-b.send:
		t.Error("frame leaked across rooms")
	default:
	}
}

func TestHub_LeaveRoomPrunesEmpty(t *testing.T) {
	h := NewHub()
	a := newHubClient(1, "a", 4)
	h.joinRoom("r1", a)
	h.leaveRoom("r1", a)

	if h.RoomSize("r1") != 0 {
		t.Error("room should be empty after leave")
	}
	h.mu.RLock()
	_, exists := h.rooms["r1"]
	h.mu.RUnlock()
	if exists {
		t.Error("empty room should be pruned")
	}
}

func TestHub_ToUserReachesEveryConnection(t *testing.T) {
	h := NewHub()
	// Same user on two devices.
	first := newHubClient(7, "laptop", 4)
	second := newHubClient(7, "phone", 4)
	other := newHubClient(8, "other", 4)
	h.addUser(first)
	h.addUser(second)
	h.addUser(other)

	h.ToUser(7, []byte("hi"))

	drainOne(t, first)
	drainOne(t, second)
	select {
	case <-other.send:
		t.Error("frame delivered to the wrong user")
	default:
	}

	h.removeUser(first)
	h.ToUser(7, []byte("again"))
	select {
	case <-first.send:
		t.Error("removed connection should not receive frames")
	default:
	}
	drainOne(t, second)
}

func TestHub_EnqueueDropsWhenFull(t *testing.T) {
	c := newHubClient(1, "slow", 1)
	c.enqueue([]byte("one"))
	c.enqueue([]byte("two"))

	if got := string(drainOne(t, c)); got != "one" {
		t.Errorf("kept frame = %q, want the first", got)
	}
	select {
	case frame := <-c.send:
		t.Errorf("overflow frame %q should have been dropped", frame)
	default:
	}
}

func TestHub_EnqueueAfterDone(t *testing.T) {
	c := newHubClient(1, "gone", 4)
	close(c.done)
	c.enqueue([]byte("late"))
	select {
	case <-c.send:
		t.Error("closed client must not accept frames")
	default:
	}
}

func TestHub_ConcurrentBroadcast(t *testing.T) {
	h := NewHub()
	clients := make([]*Client, 8)
	for i := range clients {
		clients[i] = newHubClient(uint(i+1), "c", 256)
		h.joinRoom("r1", clients[i])
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				h.Broadcast("r1", []byte("x"), nil)
			}
		}()
	}
	for _, c := range clients[:4] {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			h.leaveRoom("r1", c)
			h.joinRoom("r1", c)
		}(c)
	}
	wg.Wait()
}
