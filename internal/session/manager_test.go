package session

import (
    "testing"
    "time"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
)

func TestManagerGetCreatesAndReuses(t *testing.T) {
    mgr := NewManager(time.Hour)

    a := mgr.Get("sid-1")
    if a.Layout() != catalog.LayoutLifestyle {
        t.Errorf("new session layout %q, want the default lifestyle", a.Layout())
    }
    if mgr.Get("sid-1") != a {
        t.Error("same id returned a different machine")
    }
    if mgr.Get("sid-2") == a {
        t.Error("distinct ids share a machine")
    }
    if mgr.Len() != 2 {
        t.Errorf("Len = %d, want 2", mgr.Len())
    }
}

func TestManagerSweepEvictsIdleSessions(t *testing.T) {
    mgr := NewManager(10 * time.Minute)
    mgr.Get("stale")
    mgr.Get("fresh")

    // Only sessions idle past the TTL go.
    if dropped := mgr.Sweep(time.Now()); dropped != 0 {
        t.Errorf("premature eviction: dropped %d", dropped)
    }
    if dropped := mgr.Sweep(time.Now().Add(11 * time.Minute)); dropped != 2 {
        t.Errorf("dropped %d, want 2", dropped)
    }
    if mgr.Len() != 0 {
        t.Errorf("Len = %d after sweep, want 0", mgr.Len())
    }
}
