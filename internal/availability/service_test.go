package availability

import (
    "context"
    "errors"
    "testing"

    "github.com/rs/zerolog"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
    "github.com/bhevents/souq-stall-booking/internal/repository"
)

// fakeStore serves canned status rows or a canned error.
type fakeStore struct {
    rows  []repository.StatusRow
    err   error
    calls int
}

func (f *fakeStore) FetchStatuses(_ context.Context, _ catalog.Layout) ([]repository.StatusRow, error) {
    f.calls++
    return f.rows, f.err
}

func loadCatalog(t *testing.T) *catalog.Catalog {
    t.Helper()
    c, err := catalog.Load()
    if err != nil {
        t.Fatalf("catalog.Load: %v", err)
    }
    return c
}

func TestLoadMergesStoreStatuses(t *testing.T) {
    cat := loadCatalog(t)
    store := &fakeStore{rows: []repository.StatusRow{{ID: "L-101", Status: catalog.StatusBooked}}}
    svc := NewService(cat, store, zerolog.Nop())

    stalls, degraded, err := svc.Load(context.Background(), catalog.LayoutLifestyle)
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    if degraded {
        t.Error("unexpected degraded flag on a healthy fetch")
    }
    var found bool
    for _, s := range stalls {
        switch {
        case s.ID == "L-101":
            found = true
            if s.Status != catalog.StatusBooked {
                t.Errorf("L-101 status %q, want booked", s.Status)
            }
        case s.Status != catalog.StatusAvailable:
            t.Errorf("stall %s: status %q, want available", s.ID, s.Status)
        }
    }
    if !found {
        t.Error("L-101 missing from lifestyle load")
    }
}

func TestLoadDegradesOnStoreFailure(t *testing.T) {
    cat := loadCatalog(t)
    store := &fakeStore{err: errors.New("connection refused")}
    svc := NewService(cat, store, zerolog.Nop())

    stalls, degraded, err := svc.Load(context.Background(), catalog.LayoutLifestyle)
    if err != nil {
        t.Fatalf("store failure must degrade, not fail: %v", err)
    }
    if !degraded {
        t.Error("expected degraded flag when the store is down")
    }
    if len(stalls) == 0 {
        t.Fatal("degraded load still serves the full catalog")
    }
    for _, s := range stalls {
        if s.Status != catalog.StatusAvailable {
            t.Errorf("stall %s: degraded status %q, want available default", s.ID, s.Status)
        }
    }
}

func TestLoadUnknownLayout(t *testing.T) {
    cat := loadCatalog(t)
    store := &fakeStore{}
    svc := NewService(cat, store, zerolog.Nop())

    if _, _, err := svc.Load(context.Background(), catalog.Layout("garden")); err == nil {
        t.Fatal("expected error for unknown layout")
    }
    if store.calls != 0 {
        t.Error("unknown layout must not hit the store")
    }
}
