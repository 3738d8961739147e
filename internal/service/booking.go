// Package service orchestrates the booking submission: form validation, the
// conditional status write, the live broadcast and the event trail.
package service

import (
    "context"
    "errors"
    "fmt"
    "net/url"
    "strings"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/google/uuid"
    "github.com/rs/zerolog"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
    "github.com/bhevents/souq-stall-booking/internal/live"
    "github.com/bhevents/souq-stall-booking/internal/queue"
    "github.com/bhevents/souq-stall-booking/internal/session"
)

// BookingForm is what the visitor fills in before the WhatsApp handoff.
// Validation failures never reach the store.
type BookingForm struct {
    Name         string           `json:"name" validate:"required,min=2,max=100"`
    BusinessName string           `json:"business_name" validate:"required,min=2,max=120"`
    Category     catalog.Category `json:"category" validate:"required,oneof=lifestyle food real-estate"`
    Phone        string           `json:"phone" validate:"required,e164|len=10"`
}

// BookingResult is returned to the client on success: a reference for the
// operator log and the WhatsApp URL the browser should open.
type BookingResult struct {
    BookingRef  string `json:"booking_ref"`
    StallID     string `json:"stall_id"`
    WhatsAppURL string `json:"whatsapp_url"`
}

// ErrUnknownStall is returned when a submission names an id the catalog
// does not carry.
var ErrUnknownStall = errors.New("unknown stall")

// ErrInvalidForm wraps validator findings so handlers can answer 400.
var ErrInvalidForm = errors.New("invalid booking form")

// Booker is the one store write the submission path performs.
type Booker interface {
    BookIfAvailable(ctx context.Context, s catalog.Stall) error
}

// categoryLabels maps categories to the human wording used in the WhatsApp
// message.
var categoryLabels = map[catalog.Category]string{
    catalog.CategoryLifestyle:  "Lifestyle",
    catalog.CategoryFood:       "Food",
    catalog.CategoryRealEstate: "Real Estate",
}

// BookingService performs the submission flow.  The store write is the only
// remote mutation; the Redis patch and the RabbitMQ event are best-effort
// side effects that never fail a booking.
type BookingService struct {
    catalog  *catalog.Catalog
    store    Booker
    channel  *live.Channel
    validate *validator.Validate
    waNumber string
    log      zerolog.Logger

    // publishEvent defaults to the RabbitMQ publisher; swapped in tests.
    publishEvent func(ctx context.Context, ev queue.StallBookedEvent) error
}

// NewBookingService wires the submission dependencies.  waNumber is the
// destination WhatsApp number, digits and an optional leading plus.
func NewBookingService(cat *catalog.Catalog, store Booker, channel *live.Channel, waNumber string, log zerolog.Logger) *BookingService {
    return &BookingService{
        catalog:      cat,
        store:        store,
        channel:      channel,
        validate:     validator.New(),
        waNumber:     waNumber,
        log:          log,
        publishEvent: queue.PublishStallBooked,
    }
}

// ValidateForm runs struct validation and reports the offending fields.
func (b *BookingService) ValidateForm(form BookingForm) error {
    if err := b.validate.Struct(form); err != nil {
        var fields []string
        var verrs validator.ValidationErrors
        if errors.As(err, &verrs) {
            for _, fe := range verrs {
                fields = append(fields, fe.Field())
            }
            return fmt.Errorf("%w: %s", ErrInvalidForm, strings.Join(fields, ", "))
        }
        return fmt.Errorf("%w: %v", ErrInvalidForm, err)
    }
    return nil
}

// Submit books one stall for a session.  The state machine must already be
// in the form-open phase for this stall; the write is conditional on the
// stall still reading available, so a lost race surfaces as
// repository.ErrStallConflict rather than a silent overwrite.
func (b *BookingService) Submit(ctx context.Context, sess *session.Machine, stallID string, form BookingForm) (BookingResult, error) {
    if err := b.ValidateForm(form); err != nil {
        return BookingResult{}, err
    }
    stall, ok := b.catalog.FindByID(stallID)
    if !ok {
        return BookingResult{}, fmt.Errorf("%w: %q", ErrUnknownStall, stallID)
    }
    if err := sess.BeginSubmit(stallID); err != nil {
        return BookingResult{}, err
    }

    err := b.store.BookIfAvailable(ctx, stall)
    sess.FinishSubmit(stallID, err == nil)
    if err != nil {
        return BookingResult{}, err
    }

    ref := uuid.NewString()
    b.channel.Publish(ctx, stall.Layout, stall.ID, catalog.StatusBooked)
    // Fire-and-forget: the booking stands even if the broker is down.
    if perr := b.publishEvent(ctx, queue.StallBookedEvent{
        BookingRef:   ref,
        StallID:      stall.ID,
        StallLabel:   stall.Label,
        Layout:       string(stall.Layout),
        Category:     string(form.Category),
        Name:         form.Name,
        BusinessName: form.BusinessName,
        Phone:        form.Phone,
        BookedAt:     time.Now().UTC().Format(time.RFC3339),
    }); perr != nil {
        b.log.Warn().Err(perr).Str("stall", stall.ID).Msg("booked event not published")
    }

    return BookingResult{
        BookingRef:  ref,
        StallID:     stall.ID,
        WhatsAppURL: b.whatsAppURL(stall, form),
    }, nil
}

// whatsAppURL builds the wa.me handoff link carrying the booking details.
func (b *BookingService) whatsAppURL(stall catalog.Stall, form BookingForm) string {
    layoutName := "Lifestyle Zone"
    if stall.Layout == catalog.LayoutRealEstateFood {
        layoutName = "Real Estate & Food Zone"
    }
    msg := fmt.Sprintf("Name: %s\nName of your business/brand: %s\nCategory: %s\nPhone number: %s\n\nStall ID: %s\nLayout: %s",
        strings.TrimSpace(form.Name),
        strings.TrimSpace(form.BusinessName),
        categoryLabels[form.Category],
        strings.TrimSpace(form.Phone),
        stall.Label,
        layoutName,
    )
    digits := strings.Map(func(r rune) rune {
        if r >= '0' && r <= '9' {
            return r
        }
        return -1
    }, b.waNumber)
    return "https://wa.me/" + digits + "?text=" + url.QueryEscape(msg)
}
