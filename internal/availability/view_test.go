package availability

import (
    "context"
    "testing"

    "github.com/rs/zerolog"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
    "github.com/bhevents/souq-stall-booking/internal/repository"
)

func newTestView(t *testing.T, store *fakeStore) *View {
    t.Helper()
    svc := NewService(loadCatalog(t), store, zerolog.Nop())
    v, err := NewView(context.Background(), svc, catalog.LayoutLifestyle, zerolog.Nop())
    if err != nil {
        t.Fatalf("NewView: %v", err)
    }
    return v
}

func TestViewApplyPatchesOneEntry(t *testing.T) {
    v := newTestView(t, &fakeStore{})
    before, _ := v.Snapshot()

    if !v.Apply("L-101", catalog.StatusBooked) {
        t.Fatal("Apply reported no change for a real transition")
    }
    after, _ := v.Snapshot()
    if len(after) != len(before) {
        t.Fatalf("patch changed list length: %d -> %d", len(before), len(after))
    }
    for i := range after {
        if after[i].ID != before[i].ID {
            t.Fatalf("patch reordered the list at %d: %q vs %q", i, before[i].ID, after[i].ID)
        }
        if after[i].ID == "L-101" {
            if after[i].Status != catalog.StatusBooked {
                t.Errorf("L-101 status %q, want booked", after[i].Status)
            }
            continue
        }
        if after[i].Status != before[i].Status {
            t.Errorf("patch touched unrelated stall %s", after[i].ID)
        }
    }
}

func TestViewApplyIsIdempotent(t *testing.T) {
    v := newTestView(t, &fakeStore{})
    if !v.Apply("L-101", catalog.StatusBooked) {
        t.Fatal("first Apply should change the entry")
    }
    if v.Apply("L-101", catalog.StatusBooked) {
        t.Error("duplicate Apply reported a change")
    }
    s, ok := v.Get("L-101")
    if !ok || s.Status != catalog.StatusBooked {
        t.Errorf("L-101 after duplicate patch: %+v", s)
    }
}

func TestViewApplyIgnoresBadInput(t *testing.T) {
    v := newTestView(t, &fakeStore{})
    if v.Apply("no-such-stall", catalog.StatusBooked) {
        t.Error("unknown id must be ignored")
    }
    if v.Apply("L-101", catalog.Status("pending")) {
        t.Error("invalid status must be ignored")
    }
    if s, _ := v.Get("L-101"); s.Status != catalog.StatusAvailable {
        t.Errorf("L-101 status %q after ignored patches, want available", s.Status)
    }
}

func TestViewReconcileReplacesList(t *testing.T) {
    store := &fakeStore{}
    v := newTestView(t, store)

    // A patch arrives, then the store starts reporting the opposite. The
    // backstop reload wins.
    v.Apply("L-102", catalog.StatusBooked)
    store.rows = []repository.StatusRow{{ID: "L-101", Status: catalog.StatusBooked}}
    if err := v.Reconcile(context.Background()); err != nil {
        t.Fatalf("Reconcile: %v", err)
    }
    if s, _ := v.Get("L-101"); s.Status != catalog.StatusBooked {
        t.Errorf("L-101 status %q after reconcile, want booked", s.Status)
    }
    if s, _ := v.Get("L-102"); s.Status != catalog.StatusAvailable {
        t.Errorf("L-102 status %q after reconcile, want available", s.Status)
    }
}

func TestViewDegradedFlagClearsOnRecovery(t *testing.T) {
    store := &fakeStore{err: context.DeadlineExceeded}
    v := newTestView(t, store)
    if _, degraded := v.Snapshot(); !degraded {
        t.Fatal("expected degraded view while the store is down")
    }

    store.err = nil
    if err := v.Reconcile(context.Background()); err != nil {
        t.Fatalf("Reconcile: %v", err)
    }
    if _, degraded := v.Snapshot(); degraded {
        t.Error("degraded flag should clear once the store answers")
    }
}
