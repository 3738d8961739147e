package service

import (
    "context"
    "errors"
    "strings"
    "testing"

    "github.com/rs/zerolog"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
    "github.com/bhevents/souq-stall-booking/internal/live"
    "github.com/bhevents/souq-stall-booking/internal/queue"
    "github.com/bhevents/souq-stall-booking/internal/repository"
    "github.com/bhevents/souq-stall-booking/internal/session"
)

// fakeBooker records the conditional write and answers with a canned error.
type fakeBooker struct {
    err    error
    booked []string
}

func (f *fakeBooker) BookIfAvailable(_ context.Context, s catalog.Stall) error {
    if f.err != nil {
        return f.err
    }
    f.booked = append(f.booked, s.ID)
    return nil
}

func validForm() BookingForm {
    return BookingForm{
        Name:         "Amina Hassan",
        BusinessName: "Amina Crafts",
        Category:     catalog.CategoryLifestyle,
        Phone:        "+97333123456",
    }
}

func newTestService(t *testing.T, store *fakeBooker) *BookingService {
    t.Helper()
    cat, err := catalog.Load()
    if err != nil {
        t.Fatalf("catalog.Load: %v", err)
    }
    svc := NewBookingService(cat, store, live.NewChannel(nil, zerolog.Nop()), "+973 3312 3456", zerolog.Nop())
    svc.publishEvent = func(context.Context, queue.StallBookedEvent) error { return nil }
    return svc
}

func formOpenSession(t *testing.T, id string) *session.Machine {
    t.Helper()
    sess := session.NewMachine(catalog.LayoutLifestyle)
    if _, err := sess.Tap(id, catalog.StatusAvailable); err != nil {
        t.Fatal(err)
    }
    if err := sess.OpenForm(); err != nil {
        t.Fatal(err)
    }
    return sess
}

func TestSubmitSuccess(t *testing.T) {
    store := &fakeBooker{}
    cat, err := catalog.Load()
    if err != nil {
        t.Fatalf("catalog.Load: %v", err)
    }
    svc := NewBookingService(cat, store, live.NewChannel(nil, zerolog.Nop()), "+973 3312 3456", zerolog.Nop())
    var events []queue.StallBookedEvent
    svc.publishEvent = func(_ context.Context, ev queue.StallBookedEvent) error {
        events = append(events, ev)
        return nil
    }
    sess := formOpenSession(t, "L-101")

    res, err := svc.Submit(context.Background(), sess, "L-101", validForm())
    if err != nil {
        t.Fatalf("Submit: %v", err)
    }
    if res.BookingRef == "" || res.StallID != "L-101" {
        t.Errorf("result %+v", res)
    }
    if len(store.booked) != 1 || store.booked[0] != "L-101" {
        t.Errorf("store writes: %v", store.booked)
    }
    if phase, _, _ := sess.Snapshot(); phase != session.PhaseIdle {
        t.Errorf("session phase %v after success, want idle", phase)
    }
    if len(events) != 1 || events[0].StallLabel != "101" || events[0].BookingRef != res.BookingRef {
        t.Errorf("published events: %+v", events)
    }

    if !strings.HasPrefix(res.WhatsAppURL, "https://wa.me/97333123456?text=") {
        t.Fatalf("WhatsApp URL %q", res.WhatsAppURL)
    }
    for _, frag := range []string{"Amina+Hassan", "Stall+ID%3A+101", "Lifestyle+Zone"} {
        if !strings.Contains(res.WhatsAppURL, frag) {
            t.Errorf("WhatsApp URL missing %q: %s", frag, res.WhatsAppURL)
        }
    }
}

func TestSubmitInvalidFormNeverHitsStore(t *testing.T) {
    store := &fakeBooker{}
    svc := newTestService(t, store)
    sess := formOpenSession(t, "L-101")

    form := validForm()
    form.Phone = "not-a-number"
    _, err := svc.Submit(context.Background(), sess, "L-101", form)
    if !errors.Is(err, ErrInvalidForm) {
        t.Fatalf("err = %v, want ErrInvalidForm", err)
    }
    if len(store.booked) != 0 {
        t.Error("invalid form reached the store")
    }
    if phase, _, _ := sess.Snapshot(); phase != session.PhaseFormOpen {
        t.Errorf("session phase %v, validation must not consume the form", phase)
    }
}

func TestSubmitUnknownStall(t *testing.T) {
    store := &fakeBooker{}
    svc := newTestService(t, store)
    sess := formOpenSession(t, "L-101")

    if _, err := svc.Submit(context.Background(), sess, "no-such-id", validForm()); !errors.Is(err, ErrUnknownStall) {
        t.Fatalf("err = %v, want ErrUnknownStall", err)
    }
    if len(store.booked) != 0 {
        t.Error("unknown stall reached the store")
    }
}

func TestSubmitConflictReopensForm(t *testing.T) {
    store := &fakeBooker{err: repository.ErrStallConflict}
    svc := newTestService(t, store)
    sess := formOpenSession(t, "L-101")

    _, err := svc.Submit(context.Background(), sess, "L-101", validForm())
    if !errors.Is(err, repository.ErrStallConflict) {
        t.Fatalf("err = %v, want ErrStallConflict", err)
    }
    // A lost race reverts to the open form so the visitor can pick again.
    if phase, _, sel := sess.Snapshot(); phase != session.PhaseFormOpen || sel != "L-101" {
        t.Errorf("after conflict: phase=%v sel=%q", phase, sel)
    }
    if sess.PendingWrite("L-101") {
        t.Error("pending flag survived the failed write")
    }
}

func TestSubmitRequiresOpenForm(t *testing.T) {
    store := &fakeBooker{}
    svc := newTestService(t, store)
    sess := session.NewMachine(catalog.LayoutLifestyle)

    if _, err := svc.Submit(context.Background(), sess, "L-101", validForm()); !errors.Is(err, session.ErrFormNotOpen) {
        t.Fatalf("err = %v, want ErrFormNotOpen", err)
    }
    if len(store.booked) != 0 {
        t.Error("submit without a form reached the store")
    }
}

func TestSubmitSurvivesBrokerOutage(t *testing.T) {
    store := &fakeBooker{}
    cat, err := catalog.Load()
    if err != nil {
        t.Fatalf("catalog.Load: %v", err)
    }
    svc := NewBookingService(cat, store, live.NewChannel(nil, zerolog.Nop()), "+97333123456", zerolog.Nop())
    svc.publishEvent = func(context.Context, queue.StallBookedEvent) error {
        return errors.New("broker down")
    }
    sess := formOpenSession(t, "L-101")

    if _, err := svc.Submit(context.Background(), sess, "L-101", validForm()); err != nil {
        t.Fatalf("a broker outage must not fail the booking: %v", err)
    }
}

func TestValidateForm(t *testing.T) {
    svc := newTestService(t, &fakeBooker{})

    if err := svc.ValidateForm(validForm()); err != nil {
        t.Errorf("valid form rejected: %v", err)
    }

    cases := []struct {
        name   string
        mutate func(*BookingForm)
    }{
        {"missing name", func(f *BookingForm) { f.Name = "" }},
        {"short name", func(f *BookingForm) { f.Name = "A" }},
        {"missing business", func(f *BookingForm) { f.BusinessName = "" }},
        {"bad category", func(f *BookingForm) { f.Category = "automotive" }},
        {"bad phone", func(f *BookingForm) { f.Phone = "abc" }},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            form := validForm()
            tc.mutate(&form)
            if err := svc.ValidateForm(form); !errors.Is(err, ErrInvalidForm) {
                t.Errorf("err = %v, want ErrInvalidForm", err)
            }
        })
    }
}
