package form

import (
	"context"
	"testing"
	"time"
)

func newTestRegistry(ttl time.Duration) *Registry {
	return NewRegistry(Deps{
		Fetcher:   &stubFetcher{bundle: fullBundle()},
		Creator:   &stubCreator{},
		Submitter: &stubSubmitter{},
		Logger:    discardLogger(),
	}, ttl)
}

func TestRegistry_OpenGetClose(t *testing.T) {
	r := newTestRegistry(time.Minute)
	defer r.CloseAll()

	s := r.Open()
	s.Wait()

	if s.ID == "" {
		t.Fatal("session without id")
	}
	if status, _ := s.Store().Status(); status != StatusReady {
		t.Errorf("opened session status = %v, want ready", status)
	}

	got, ok := r.Get(s.ID)
	if !ok || got != s {
		t.Fatal("Get did not return the opened session")
	}

	if !r.Close(s.ID) {
		t.Error("Close reported a missing session")
	}
	if !s.Closed() {
		t.Error("session not closed")
	}
	if _, ok := r.Get(s.ID); ok {
		t.Error("closed session still registered")
	}
	if r.Close(s.ID) {
		t.Error("second Close reported success")
	}
}

func TestRegistry_UniqueIDs(t *testing.T) {
	r := newTestRegistry(time.Minute)
	defer r.CloseAll()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		s := r.Open()
		if seen[s.ID] {
			t.Fatalf("duplicate session id %s", s.ID)
		}
		seen[s.ID] = true
	}
	if r.Len() != 20 {
		t.Errorf("Len = %d, want 20", r.Len())
	}
}

func TestRegistry_Sweep(t *testing.T) {
	r := newTestRegistry(time.Minute)
	defer r.CloseAll()

	old := r.Open()
	fresh := r.Open()

	later := time.Now().Add(2 * time.Minute)
	fresh.mu.Lock()
	fresh.lastSeen = later
	fresh.mu.Unlock()

	if n := r.Sweep(later.Add(30 * time.Second)); n != 1 {
		t.Errorf("Sweep closed %d sessions, want 1", n)
	}
	if !old.Closed() {
		t.Error("idle session not closed")
	}
	if _, ok := r.Get(fresh.ID); !ok {
		t.Error("recently used session was swept")
	}
}

func TestRegistry_SweeperStopsOnCancel(t *testing.T) {
	r := newTestRegistry(time.Minute)
	defer r.CloseAll()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.StartSweeper(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	r := newTestRegistry(time.Minute)
	a, b := r.Open(), r.Open()

	r.CloseAll()

	if r.Len() != 0 || !a.Closed() || !b.Closed() {
		t.Error("CloseAll left sessions open")
	}
}
