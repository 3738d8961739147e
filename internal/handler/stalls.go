package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/bhevents/souq-stall-booking/internal/availability"
    "github.com/bhevents/souq-stall-booking/internal/catalog"
)

// StallsHandler serves the public read surface: layout metadata and
// effective stall lists.  Reads come from the long-lived per-layout views,
// which the live channel and the reconcile poll keep fresh; no request
// hits the store directly.
type StallsHandler struct {
    cat   *catalog.Catalog
    views map[catalog.Layout]*availability.View
}

// NewStallsHandler constructs a StallsHandler over one view per layout.
func NewStallsHandler(cat *catalog.Catalog, views map[catalog.Layout]*availability.View) *StallsHandler {
    return &StallsHandler{cat: cat, views: views}
}

// GetLayouts handles GET /v1/layouts: the floor plan metadata plus stall
// counts, for the layout selector.
func (h *StallsHandler) GetLayouts(c echo.Context) error {
    counts := h.cat.Counts()
    type layoutOut struct {
        catalog.LayoutInfo
        StallCount int `json:"stall_count"`
    }
    layouts := h.cat.Layouts()
    out := make([]layoutOut, 0, len(layouts))
    for _, l := range layouts {
        out = append(out, layoutOut{LayoutInfo: l, StallCount: counts[l.ID]})
    }
    return c.JSON(http.StatusOK, echo.Map{"layouts": out})
}

// GetStalls handles GET /v1/stalls?layout=.  Without a layout filter it
// concatenates both layouts in catalog order.  The degraded flag tells the
// client availability may be stale (store unreachable, catalog defaults
// served).
func (h *StallsHandler) GetStalls(c echo.Context) error {
    layoutParam := c.QueryParam("layout")
    var selected []catalog.Layout
    if layoutParam == "" {
        for _, l := range h.cat.Layouts() {
            selected = append(selected, l.ID)
        }
    } else {
        layout := catalog.Layout(layoutParam)
        if !layout.Valid() {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown layout"})
        }
        selected = []catalog.Layout{layout}
    }

    var stalls []availability.EffectiveStall
    degraded := false
    for _, layout := range selected {
        view, ok := h.views[layout]
        if !ok {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "layout view unavailable"})
        }
        list, d := view.Snapshot()
        stalls = append(stalls, list...)
        degraded = degraded || d
    }
    return c.JSON(http.StatusOK, echo.Map{"stalls": stalls, "degraded": degraded})
}

// GetStall handles GET /v1/stalls/:id across all layouts.
func (h *StallsHandler) GetStall(c echo.Context) error {
    id := c.Param("id")
    stall, ok := h.cat.FindByID(id)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "stall not found"})
    }
    view, ok := h.views[stall.Layout]
    if !ok {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "layout view unavailable"})
    }
    eff, ok := view.Get(id)
    if !ok {
        // View not yet loaded for this id; fall back to the catalog default.
        eff = availability.EffectiveStall{Stall: stall, Status: catalog.StatusAvailable}
    }
    return c.JSON(http.StatusOK, echo.Map{"stall": eff})
}
