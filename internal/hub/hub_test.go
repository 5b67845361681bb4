package hub

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/vaibhavx77/rover-app/internal/geo"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := NewHub(10)

	s := h.Register("sess1")
	if h.SessionCount() != 1 {
		t.Errorf("expected 1 session, got %d", h.SessionCount())
	}

	h.Unregister("sess1")
	if h.SessionCount() != 0 {
		t.Errorf("expected 0 sessions, got %d", h.SessionCount())
	}

	// Channel should be closed
	select {
	case _, ok := <-s.Events():
		if ok {
			t.Error("expected channel to be closed")
		}
	default:
		t.Error("channel should be closed and readable")
	}
}

func TestHub_BroadcastRoom_ScopedToRegion(t *testing.T) {
	h := NewHub(10)

	inRoom := h.Register("in")
	outRoom := h.Register("out")

	region := geo.RegionKey("40.71_-74.01")
	other := geo.RegionKey("40.70_-74.00")

	if !h.Join("in", region) {
		t.Fatal("Join failed for registered session")
	}
	if !h.Join("out", other) {
		t.Fatal("Join failed for registered session")
	}

	h.BroadcastRoom(region, Envelope{Event: "new-hazard"})

	select {
	case env := <-inRoom.Events():
		if env.Event != "new-hazard" {
			t.Errorf("expected new-hazard, got %s", env.Event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for room broadcast")
	}

	select {
	case env := <-outRoom.Events():
		t.Errorf("session outside the room received %s", env.Event)
	default:
	}
}

func TestHub_BroadcastAll(t *testing.T) {
	h := NewHub(10)

	a := h.Register("a")
	b := h.Register("b")
	h.Join("a", geo.RegionKey("40.71_-74.01"))
	// b never joins a room but must still see global events.

	h.BroadcastAll(Envelope{Event: "hazard-deleted"})

	for _, s := range []*Session{a, b} {
		select {
		case env := <-s.Events():
			if env.Event != "hazard-deleted" {
				t.Errorf("expected hazard-deleted, got %s", env.Event)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("session %s missed global broadcast", s.ID)
		}
	}
}

func TestHub_Send(t *testing.T) {
	h := NewHub(10)

	s := h.Register("sess1")

	if !h.Send("sess1", Envelope{Event: "error"}) {
		t.Error("Send to a registered session returned false")
	}
	if h.Send("unknown", Envelope{Event: "error"}) {
		t.Error("Send to an unknown session returned true")
	}

	select {
	case env := <-s.Events():
		if env.Event != "error" {
			t.Errorf("expected error event, got %s", env.Event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for session-scoped send")
	}
}

func TestHub_MultiRegionMembership(t *testing.T) {
	h := NewHub(10)

	s := h.Register("sess1")

	first := geo.RegionKey("40.71_-74.01")
	second := geo.RegionKey("34.05_-118.24")
	h.Join("sess1", first)
	h.Join("sess1", second)

	// Joining a second region must not leave the first.
	if got := len(h.Regions("sess1")); got != 2 {
		t.Fatalf("expected membership in 2 regions, got %d", got)
	}

	h.BroadcastRoom(first, Envelope{Event: "new-hazard"})
	h.BroadcastRoom(second, Envelope{Event: "new-hazard"})

	for i := 0; i < 2; i++ {
		select {
		case <-s.Events():
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("missed broadcast %d", i)
		}
	}
}

func TestHub_UnregisterLeavesRooms(t *testing.T) {
	h := NewHub(10)

	h.Register("sess1")
	region := geo.RegionKey("40.71_-74.01")
	h.Join("sess1", region)

	h.Unregister("sess1")

	if members := h.Members(region); len(members) != 0 {
		t.Errorf("expected empty room after unregister, got %v", members)
	}
}

func TestHub_JoinUnknownSession(t *testing.T) {
	h := NewHub(10)

	if h.Join("ghost", geo.RegionKey("40.71_-74.01")) {
		t.Error("Join succeeded for a session that never registered")
	}
}

func TestHub_SlowSessionDropsEvents(t *testing.T) {
	h := NewHub(2)

	s := h.Register("slow")

	for i := 0; i < 5; i++ {
		h.BroadcastAll(Envelope{Event: "new-hazard"})
	}

	// Only the buffered events arrive; the rest are dropped, never blocked on.
	count := 0
	for {
		select {
		case <-s.Events():
			count++
		default:
			goto done
		}
	}
done:
	if count != 2 {
		t.Errorf("expected 2 buffered events, got %d", count)
	}
}

func TestHub_Close(t *testing.T) {
	h := NewHub(10)

	var sessions []*Session
	for _, id := range []string{"a", "b", "c"} {
		sessions = append(sessions, h.Register(id))
	}

	h.Close()

	if h.SessionCount() != 0 {
		t.Errorf("expected 0 sessions after close, got %d", h.SessionCount())
	}
	for _, s := range sessions {
		select {
		case _, ok := <-s.Events():
			if ok {
				t.Errorf("channel for %s should be closed", s.ID)
			}
		default:
			t.Errorf("channel for %s should be closed and readable", s.ID)
		}
	}
}

func TestHub_ConcurrentJoinBroadcast(t *testing.T) {
	h := NewHub(100)
	region := geo.RegionKey("40.71_-74.01")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := "sess" + string(rune('a'+n%26)) + string(rune('a'+n/26))
			s := h.Register(id)
			go func() {
				for range s.Events() {
				}
			}()
			h.Join(id, region)
			time.Sleep(time.Millisecond)
			h.Unregister(id)
		}(i)
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.BroadcastRoom(region, Envelope{Event: "new-hazard"})
			h.BroadcastAll(Envelope{Event: "hazard-updated"})
		}()
	}

	wg.Wait()

	if h.SessionCount() != 0 {
		t.Errorf("expected 0 sessions after cleanup, got %d", h.SessionCount())
	}
}
