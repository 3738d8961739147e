package session

import (
    "context"
    "sync"
    "time"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
)

// Manager keeps one Machine per visitor session id and drops sessions that
// have gone quiet.  Session ids come from an anonymous cookie; there is no
// authentication on the public booking flow.
type Manager struct {
    mu       sync.Mutex
    sessions map[string]*entry
    ttl      time.Duration
}

type entry struct {
    machine  *Machine
    lastSeen time.Time
}

// NewManager creates a manager whose sessions expire after ttl of
// inactivity.
func NewManager(ttl time.Duration) *Manager {
    return &Manager{
        sessions: make(map[string]*entry),
        ttl:      ttl,
    }
}

// Get returns the machine for a session id, creating an idle one on the
// default layout for first-time visitors, and refreshes its last-seen time.
func (mgr *Manager) Get(id string) *Machine {
    mgr.mu.Lock()
    defer mgr.mu.Unlock()
    e, ok := mgr.sessions[id]
    if !ok {
        e = &entry{machine: NewMachine(catalog.LayoutLifestyle)}
        mgr.sessions[id] = e
    }
    e.lastSeen = time.Now()
    return e.machine
}

// Len reports the number of live sessions.
func (mgr *Manager) Len() int {
    mgr.mu.Lock()
    defer mgr.mu.Unlock()
    return len(mgr.sessions)
}

// Sweep evicts sessions idle past the TTL.  Returns how many were dropped.
func (mgr *Manager) Sweep(now time.Time) int {
    mgr.mu.Lock()
    defer mgr.mu.Unlock()
    dropped := 0
    for id, e := range mgr.sessions {
        if now.Sub(e.lastSeen) > mgr.ttl {
            delete(mgr.sessions, id)
            dropped++
        }
    }
    return dropped
}

// Run sweeps periodically until ctx is cancelled.
func (mgr *Manager) Run(ctx context.Context, interval time.Duration) {
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            mgr.Sweep(time.Now())
        }
    }
}
