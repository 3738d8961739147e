package handler

import (
    "errors"
    "net/http"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/bhevents/souq-stall-booking/internal/availability"
    "github.com/bhevents/souq-stall-booking/internal/catalog"
    "github.com/bhevents/souq-stall-booking/internal/repository"
    "github.com/bhevents/souq-stall-booking/internal/service"
    "github.com/bhevents/souq-stall-booking/internal/session"
)

// sidCookieName identifies the anonymous visitor session.  It carries no
// identity, only a random id keying the selection state machine.
const sidCookieName = "souq_sid"

// BookingHandler drives the selection state machine over HTTP and performs
// the booking submission.  One machine exists per visitor session; the
// handler resolves it from the session cookie on every call.
type BookingHandler struct {
    sessions *session.Manager
    booking  *service.BookingService
    views    map[catalog.Layout]*availability.View
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(sessions *session.Manager, booking *service.BookingService, views map[catalog.Layout]*availability.View) *BookingHandler {
    return &BookingHandler{sessions: sessions, booking: booking, views: views}
}

// machine resolves the state machine for the request's session, minting the
// session cookie for first-time visitors.
func (h *BookingHandler) machine(c echo.Context) *session.Machine {
    var sid string
    if cookie, err := c.Cookie(sidCookieName); err == nil && cookie.Value != "" {
        sid = cookie.Value
    } else {
        sid = uuid.NewString()
        c.SetCookie(&http.Cookie{
            Name:     sidCookieName,
            Value:    sid,
            Path:     "/",
            HttpOnly: true,
            SameSite: http.SameSiteLaxMode,
        })
    }
    return h.sessions.Get(sid)
}

// GetSession handles GET /v1/session: the current phase, layout and
// selection, so a reloading page can restore its UI.
func (h *BookingHandler) GetSession(c echo.Context) error {
    phase, layout, selected := h.machine(c).Snapshot()
    return c.JSON(http.StatusOK, echo.Map{
        "phase":             phase,
        "layout":            layout,
        "selected_stall_id": selected,
    })
}

// SwitchLayout handles POST /v1/session/layout.  Changing the active layout
// always forces the session back to idle and discards any selection.
func (h *BookingHandler) SwitchLayout(c echo.Context) error {
    var body struct {
        Layout catalog.Layout `json:"layout"`
    }
    if err := c.Bind(&body); err != nil || !body.Layout.Valid() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown layout"})
    }
    m := h.machine(c)
    m.SwitchLayout(body.Layout)
    return c.JSON(http.StatusOK, echo.Map{"phase": session.PhaseIdle, "layout": body.Layout})
}

// Tap handles POST /v1/session/tap.  The stall's effective status is read
// from the live view at tap time, which is what catches the race where a
// stall was booked by someone else after the visitor's list was loaded.
func (h *BookingHandler) Tap(c echo.Context) error {
    var body struct {
        StallID string `json:"stall_id"`
    }
    if err := c.Bind(&body); err != nil || body.StallID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "stall_id is required"})
    }
    m := h.machine(c)

    view, ok := h.views[m.Layout()]
    if !ok {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "layout view unavailable"})
    }
    eff, ok := view.Get(body.StallID)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "stall is not in the active layout"})
    }

    result, err := m.Tap(eff.ID, eff.Status)
    if err != nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    }
    phase, _, selected := m.Snapshot()
    return c.JSON(http.StatusOK, echo.Map{
        "result":            result,
        "phase":             phase,
        "selected_stall_id": selected,
    })
}

// OpenForm handles POST /v1/session/form/open.
func (h *BookingHandler) OpenForm(c echo.Context) error {
    m := h.machine(c)
    if err := m.OpenForm(); err != nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    }
    phase, _, selected := m.Snapshot()
    return c.JSON(http.StatusOK, echo.Map{"phase": phase, "selected_stall_id": selected})
}

// CancelForm handles POST /v1/session/form/cancel; the selection survives.
func (h *BookingHandler) CancelForm(c echo.Context) error {
    m := h.machine(c)
    if err := m.CloseForm(); err != nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    }
    phase, _, selected := m.Snapshot()
    return c.JSON(http.StatusOK, echo.Map{"phase": phase, "selected_stall_id": selected})
}

// Deselect handles POST /v1/session/deselect: back to idle, keeping the
// layout.
func (h *BookingHandler) Deselect(c echo.Context) error {
    m := h.machine(c)
    if err := m.Deselect(); err != nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    }
    phase, _, selected := m.Snapshot()
    return c.JSON(http.StatusOK, echo.Map{"phase": phase, "selected_stall_id": selected})
}

// Submit handles POST /v1/bookings: the one remote mutation of the public
// flow.  Status mapping:
//
//	400 – malformed body, validation failure, unknown stall
//	409 – state machine refusal or the stall was booked by someone else
//	500 – store failure (the session reverts to the open form)
func (h *BookingHandler) Submit(c echo.Context) error {
    var body struct {
        StallID string `json:"stall_id"`
        service.BookingForm
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.StallID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "stall_id is required"})
    }
    m := h.machine(c)

    result, err := h.booking.Submit(c.Request().Context(), m, body.StallID, body.BookingForm)
    switch {
    case err == nil:
        return c.JSON(http.StatusCreated, result)
    case errors.Is(err, service.ErrInvalidForm), errors.Is(err, service.ErrUnknownStall):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrStallConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "stall was just booked by someone else"})
    case errors.Is(err, session.ErrFormNotOpen), errors.Is(err, session.ErrPendingWrite), errors.Is(err, session.ErrBusy):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed, please try again"})
    }
}
