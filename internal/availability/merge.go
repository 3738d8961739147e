// Package availability combines the static stall geometry with the live
// status rows in the store.  The merged EffectiveStall list is the only
// structure the booking UI renders and the only structure the selection
// state machine operates on.
package availability

import (
    "github.com/bhevents/souq-stall-booking/internal/catalog"
    "github.com/bhevents/souq-stall-booking/internal/repository"
)

// EffectiveStall is one geometry record overlaid with its current status.
type EffectiveStall struct {
    catalog.Stall
    Status catalog.Status `json:"status"`
}

// Merge left-joins the geometry list onto the fetched status rows.  Every
// stall appears exactly once, in the order given; a stall without a row
// defaults to available.  Calling Merge twice with the same inputs yields
// an identical list.
func Merge(stalls []catalog.Stall, rows []repository.StatusRow) []EffectiveStall {
    statuses := make(map[string]catalog.Status, len(rows))
    for _, r := range rows {
        statuses[r.ID] = r.Status
    }
    out := make([]EffectiveStall, len(stalls))
    for i, s := range stalls {
        st, ok := statuses[s.ID]
        if !ok || !st.Valid() {
            st = catalog.StatusAvailable
        }
        out[i] = EffectiveStall{Stall: s, Status: st}
    }
    return out
}
