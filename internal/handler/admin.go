package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
    "github.com/bhevents/souq-stall-booking/internal/live"
    "github.com/bhevents/souq-stall-booking/internal/repository"
)

// AdminHandler backs the dashboard: full row listing, manual status
// toggles, and the bulk reseed.  All routes sit behind AdminAuth.
type AdminHandler struct {
    cat     *catalog.Catalog
    repo    *repository.StallRepo
    channel *live.Channel
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(cat *catalog.Catalog, repo *repository.StallRepo, channel *live.Channel) *AdminHandler {
    return &AdminHandler{cat: cat, repo: repo, channel: channel}
}

// ListStalls handles GET /v1/admin/stalls?layout=.  Unlike the public
// list this returns raw store rows, including timestamps, ordered by id.
func (h *AdminHandler) ListStalls(c echo.Context) error {
    var layout catalog.Layout
    if p := c.QueryParam("layout"); p != "" {
        layout = catalog.Layout(p)
        if !layout.Valid() {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown layout"})
        }
    }
    records, err := h.repo.ListRecords(c.Request().Context(), layout)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
    }
    return c.JSON(http.StatusOK, echo.Map{"stalls": records})
}

// UpdateStatus handles PATCH /v1/admin/stalls/:id.  This is the plain
// status-toggle path: a partial update by id, falling back to a full-record
// upsert when the row has never been written.  The write is unconditional;
// the dashboard is the one place allowed to overwrite a booking.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
    id := c.Param("id")
    var body struct {
        Status catalog.Status `json:"status"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if !body.Status.Valid() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": `status must be "available" or "booked"`})
    }
    stall, ok := h.cat.FindByID(id)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "stall not found"})
    }

    ctx := c.Request().Context()
    err := h.repo.UpdateStatus(ctx, id, body.Status)
    if errors.Is(err, repository.ErrStallNotFound) {
        err = h.repo.UpsertStatus(ctx, stall, body.Status)
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
    }

    h.channel.Publish(ctx, stall.Layout, stall.ID, body.Status)
    return c.JSON(http.StatusOK, echo.Map{"id": stall.ID, "status": body.Status})
}

// Seed handles POST /v1/admin/seed: delete every row, reinsert the whole
// catalog as available, in batches of 50.  Not atomic across batches; on a
// mid-run failure the response carries how many rows the completed batches
// inserted so the operator can see the partial state.
func (h *AdminHandler) Seed(c echo.Context) error {
    count, err := h.repo.ResetAll(c.Request().Context(), h.cat.ListAll())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{
            "error":    err.Error(),
            "inserted": count,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"inserted": count})
}
