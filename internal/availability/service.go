package availability

import (
    "context"

    "github.com/rs/zerolog"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
    "github.com/bhevents/souq-stall-booking/internal/repository"
)

// StatusFetcher is the slice of the repository the merge layer needs.
type StatusFetcher interface {
    FetchStatuses(ctx context.Context, layout catalog.Layout) ([]repository.StatusRow, error)
}

// Service produces effective stall lists for a layout.  A store outage does
// not take the booking page down: Load falls back to the catalog defaults
// and flags the result as degraded so callers can warn the user that
// availability may be stale.
type Service struct {
    catalog *catalog.Catalog
    store   StatusFetcher
    log     zerolog.Logger
}

// NewService wires the merge layer to a catalog and a status store.
func NewService(cat *catalog.Catalog, store StatusFetcher, log zerolog.Logger) *Service {
    return &Service{catalog: cat, store: store, log: log}
}

// Load returns the effective stalls of one layout.  The second return value
// is true when the store could not be reached and the list carries catalog
// defaults instead of live statuses.  An error is returned only for an
// unknown layout; store failures degrade, they do not fail.
func (s *Service) Load(ctx context.Context, layout catalog.Layout) ([]EffectiveStall, bool, error) {
    stalls, err := s.catalog.ListByLayout(layout)
    if err != nil {
        return nil, false, err
    }
    rows, err := s.store.FetchStatuses(ctx, layout)
    if err != nil {
        s.log.Warn().Err(err).Str("layout", string(layout)).
            Msg("status fetch failed, serving catalog defaults")
        return Merge(stalls, nil), true, nil
    }
    return Merge(stalls, rows), false, nil
}

// Catalog exposes the geometry registry backing this service.
func (s *Service) Catalog() *catalog.Catalog {
    return s.catalog
}
