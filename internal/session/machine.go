// Package session tracks per-visitor booking state: which stall is
// selected, whether the booking form is open, and which write is in
// flight.  The state never touches the store; it exists to keep the UI
// honest about what a tap or submit is allowed to do.
package session

import (
    "errors"
    "sync"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
)

// Phase is where a session is in the booking flow.
type Phase string

const (
    PhaseIdle       Phase = "idle"
    PhaseSelected   Phase = "selected"
    PhaseFormOpen   Phase = "form_open"
    PhaseSubmitting Phase = "submitting"
)

// TapResult reports what a tap did.
type TapResult string

const (
    // TapSelected: an available stall became the selection.
    TapSelected TapResult = "selected"
    // TapDeselected: tapping the current selection again cleared it.
    TapDeselected TapResult = "deselected"
    // TapRejectedBooked: the stall reads booked, selection unchanged.  This
    // is the guard against the read-after-write race where someone else
    // booked the stall after the list was loaded but before the tap.
    TapRejectedBooked TapResult = "rejected_booked"
)

var (
    // ErrBusy is returned for taps and form operations while a submit is in
    // flight; the UI disables the controls but the server re-checks.
    ErrBusy = errors.New("submission in progress")
    // ErrNoSelection is returned when the form is opened with nothing selected.
    ErrNoSelection = errors.New("no stall selected")
    // ErrFormNotOpen is returned when submit is attempted outside the form.
    ErrFormNotOpen = errors.New("booking form is not open")
    // ErrPendingWrite is returned when a second submit targets a stall whose
    // write has not resolved yet.
    ErrPendingWrite = errors.New("write already pending for this stall")
)

// Machine is the per-session selection state.  All methods are safe for
// concurrent use; HTTP handlers for one session may race on retries.
type Machine struct {
    mu         sync.Mutex
    layout     catalog.Layout
    phase      Phase
    selectedID string
    pending    map[string]bool // stall id -> write in flight
}

// NewMachine starts a session on the given layout, idle.
func NewMachine(layout catalog.Layout) *Machine {
    return &Machine{
        layout:  layout,
        phase:   PhaseIdle,
        pending: make(map[string]bool),
    }
}

// Snapshot returns the current phase, layout and selection.
func (m *Machine) Snapshot() (Phase, catalog.Layout, string) {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.phase, m.layout, m.selectedID
}

// Layout returns the layout the session is viewing.
func (m *Machine) Layout() catalog.Layout {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.layout
}

// Tap handles a tap on a stall with the given effective status.
//
//   - booked stall: no transition, TapRejectedBooked.
//   - currently selected stall: back to idle (toggle-deselect).
//   - available stall: becomes the selection, replacing any previous one.
//
// Taps are refused while the form is open or a submit is in flight.
func (m *Machine) Tap(id string, status catalog.Status) (TapResult, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    switch m.phase {
    case PhaseSubmitting, PhaseFormOpen:
        return "", ErrBusy
    }
    if status == catalog.StatusBooked {
        return TapRejectedBooked, nil
    }
    if m.phase == PhaseSelected && m.selectedID == id {
        m.phase = PhaseIdle
        m.selectedID = ""
        return TapDeselected, nil
    }
    m.phase = PhaseSelected
    m.selectedID = id
    return TapSelected, nil
}

// OpenForm confirms intent to book the selected stall.
func (m *Machine) OpenForm() error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.phase == PhaseSubmitting {
        return ErrBusy
    }
    if m.phase != PhaseSelected || m.selectedID == "" {
        return ErrNoSelection
    }
    m.phase = PhaseFormOpen
    return nil
}

// CloseForm backs out of the form, keeping the selection.
func (m *Machine) CloseForm() error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.phase == PhaseSubmitting {
        return ErrBusy
    }
    if m.phase == PhaseFormOpen {
        m.phase = PhaseSelected
    }
    return nil
}

// Deselect clears the selection entirely.
func (m *Machine) Deselect() error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.phase == PhaseSubmitting {
        return ErrBusy
    }
    m.phase = PhaseIdle
    m.selectedID = ""
    return nil
}

// SwitchLayout moves the session to another layout and forces idle,
// discarding the selection: a selection is scoped to one layout at a time.
// An in-flight write is not cancelled (the pending flag stays until the
// write resolves server-side) but the session stops referencing it.
func (m *Machine) SwitchLayout(layout catalog.Layout) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.layout = layout
    m.phase = PhaseIdle
    m.selectedID = ""
}

// BeginSubmit marks the selected stall's write as in flight.  It fails if
// the form is not open, if the id does not match the selection, or if a
// write for this stall from this session has not resolved yet.
func (m *Machine) BeginSubmit(id string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.phase != PhaseFormOpen || m.selectedID != id {
        return ErrFormNotOpen
    }
    if m.pending[id] {
        return ErrPendingWrite
    }
    m.pending[id] = true
    m.phase = PhaseSubmitting
    return nil
}

// FinishSubmit resolves an in-flight write.  Success returns the session to
// idle (the confirmation toast is the UI's business); failure reverts to
// the open form so the user can retry.  If the session moved on, say a
// layout switch mid-flight, only the pending flag is cleared.
func (m *Machine) FinishSubmit(id string, ok bool) {
    m.mu.Lock()
    defer m.mu.Unlock()
    delete(m.pending, id)
    if m.phase != PhaseSubmitting || m.selectedID != id {
        return
    }
    if ok {
        m.phase = PhaseIdle
        m.selectedID = ""
        return
    }
    m.phase = PhaseFormOpen
}

// PendingWrite reports whether a write for the stall is still in flight.
func (m *Machine) PendingWrite(id string) bool {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.pending[id]
}
