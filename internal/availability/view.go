package availability

import (
    "context"
    "sync"
    "time"

    "github.com/rs/zerolog"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
)

// Subscriber delivers live status patches for one layout.  The returned
// function tears the subscription down.  Delivery is at-least-once and may
// duplicate; View.Apply is idempotent so duplicates are harmless.
type Subscriber interface {
    Subscribe(ctx context.Context, layout catalog.Layout, onChange func(id string, status catalog.Status)) (func(), error)
}

// View is a long-lived effective stall list for one layout, kept eventually
// consistent with the store.  Patches from the live channel update exactly
// one entry in place, preserving order and the identity of every other
// entry; a periodic reconcile reload bounds the staleness window when the
// push channel drops.
type View struct {
    layout catalog.Layout
    svc    *Service
    log    zerolog.Logger

    mu       sync.RWMutex
    stalls   []EffectiveStall
    index    map[string]int // id -> position in stalls
    degraded bool
}

// NewView loads the initial list for a layout.  Errors only on an unknown
// layout; a store outage yields a degraded view that later reconciles.
func NewView(ctx context.Context, svc *Service, layout catalog.Layout, log zerolog.Logger) (*View, error) {
    v := &View{layout: layout, svc: svc, log: log}
    if err := v.Reconcile(ctx); err != nil {
        return nil, err
    }
    return v, nil
}

// Layout returns the layout this view tracks.
func (v *View) Layout() catalog.Layout {
    return v.layout
}

// Snapshot returns a copy of the current list plus the degraded flag.
func (v *View) Snapshot() ([]EffectiveStall, bool) {
    v.mu.RLock()
    defer v.mu.RUnlock()
    out := make([]EffectiveStall, len(v.stalls))
    copy(out, v.stalls)
    return out, v.degraded
}

// Get returns the current effective stall for one id.
func (v *View) Get(id string) (EffectiveStall, bool) {
    v.mu.RLock()
    defer v.mu.RUnlock()
    i, ok := v.index[id]
    if !ok {
        return EffectiveStall{}, false
    }
    return v.stalls[i], true
}

// Apply patches one stall's status in place.  Unknown ids and invalid
// statuses are ignored; applying the same patch twice leaves the list
// unchanged after the first application.  Reports whether anything changed.
func (v *View) Apply(id string, status catalog.Status) bool {
    if !status.Valid() {
        return false
    }
    v.mu.Lock()
    defer v.mu.Unlock()
    i, ok := v.index[id]
    if !ok || v.stalls[i].Status == status {
        return false
    }
    v.stalls[i].Status = status
    return true
}

// Reconcile replaces the whole list with a fresh load.  Used at startup and
// on the periodic backstop tick.
func (v *View) Reconcile(ctx context.Context) error {
    stalls, degraded, err := v.svc.Load(ctx, v.layout)
    if err != nil {
        return err
    }
    index := make(map[string]int, len(stalls))
    for i, s := range stalls {
        index[s.ID] = i
    }
    v.mu.Lock()
    v.stalls = stalls
    v.index = index
    v.degraded = degraded
    v.mu.Unlock()
    return nil
}

// Run keeps the view fresh until ctx is cancelled: it holds one live
// subscription for the layout and reloads on every tick of the reconcile
// interval.  A failed or dropped subscription is logged and otherwise
// silent; the poll still bounds staleness.
func (v *View) Run(ctx context.Context, sub Subscriber, interval time.Duration) {
    var unsubscribe func()
    if sub != nil {
        var err error
        unsubscribe, err = sub.Subscribe(ctx, v.layout, func(id string, status catalog.Status) {
            v.Apply(id, status)
        })
        if err != nil {
            v.log.Warn().Err(err).Str("layout", string(v.layout)).
                Msg("live subscription unavailable, relying on reconcile poll")
        }
    }
    if unsubscribe != nil {
        defer unsubscribe()
    }

    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := v.Reconcile(ctx); err != nil {
                v.log.Error().Err(err).Str("layout", string(v.layout)).Msg("reconcile failed")
            }
        }
    }
}
