package handler

import (
    "context"
    "errors"
    "fmt"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lunchly/internal/middleware"
    "github.com/iliyamo/lunchly/internal/model"
    "github.com/iliyamo/lunchly/internal/queue"
    "github.com/iliyamo/lunchly/internal/repository"
    "github.com/iliyamo/lunchly/internal/service"
)

// CacheInvalidator evicts cached GET responses for the given paths.
type CacheInvalidator interface {
    Invalidate(ctx context.Context, paths ...string) error
}

// ReservationHandler exposes reservations over HTTP.  Reads go straight to
// the repository; writes validate through the model setters, persist with
// Save, evict the cached read paths and publish a reservation.saved event.
type ReservationHandler struct {
    Repo      *repository.ReservationRepo
    Publisher service.Publisher
    Cache     CacheInvalidator
    Location  *time.Location // zone for start times given without an offset
    now       func() time.Time
}

// NewReservationHandler constructs a ReservationHandler.  repo must be
// non-nil; a nil publisher drops events and a nil cache skips eviction.
func NewReservationHandler(repo *repository.ReservationRepo, pub service.Publisher, cache CacheInvalidator, loc *time.Location) *ReservationHandler {
    if repo == nil {
        panic("nil repository passed to NewReservationHandler")
    }
    if pub == nil {
        pub = service.NopPublisher{}
    }
    if loc == nil {
        loc = time.UTC
    }
    return &ReservationHandler{Repo: repo, Publisher: pub, Cache: cache, Location: loc, now: time.Now}
}

// reservationResponse is the JSON shape of a reservation.
type reservationResponse struct {
    ID               uint64 `json:"id"`
    CustomerID       uint64 `json:"customer_id"`
    NumGuests        int    `json:"num_guests"`
    StartAt          string `json:"start_at"`
    FormattedStartAt string `json:"formatted_start_at"`
    Notes            string `json:"notes"`
}

// toResponse renders start times in loc, so a row reads the same whether it
// came back from an insert or from a scan in the driver's zone.
func toResponse(r *model.Reservation, loc *time.Location) reservationResponse {
    id, _ := r.ID()
    return reservationResponse{
        ID:               id,
        CustomerID:       r.CustomerID(),
        NumGuests:        r.NumGuests(),
        StartAt:          r.StartAt().In(loc).Format(time.RFC3339),
        FormattedStartAt: r.FormattedStartAtIn(loc),
        Notes:            r.Notes(),
    }
}

// reservationRequest is the body of create and update calls.  Absent fields
// are left untouched on update.
type reservationRequest struct {
    CustomerID *uint64 `json:"customer_id"`
    NumGuests  *int    `json:"num_guests"`
    StartAt    *string `json:"start_at"`
    Notes      *string `json:"notes"`
}

// parseID accepts only canonical positive ids ("10", not "010" or "+10"),
// so every cached path has exactly one spelling that writes can evict.
func parseID(c echo.Context) (uint64, bool) {
    raw := c.Param("id")
    id, err := strconv.ParseUint(raw, 10, 64)
    return id, err == nil && id != 0 && strconv.FormatUint(id, 10) == raw
}

// writeError maps the reservation error taxonomy onto HTTP statuses.
func writeError(c echo.Context, err error, fallback string) error {
    var nf *repository.NotFoundError
    switch {
    case errors.As(err, &nf):
        return c.JSON(nf.Status, echo.Map{"error": nf.Error()})
    case errors.Is(err, model.ErrValidation):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    log.Printf("reservations: %s: %v", fallback, err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}

// ListByCustomer handles GET /v1/customers/:id/reservations.  It returns
// the customer's reservations ordered by start time, or an empty list.
func (h *ReservationHandler) ListByCustomer(c echo.Context) error {
    customerID, ok := parseID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
    }
    list, err := h.Repo.ListByCustomer(c.Request().Context(), customerID)
    if err != nil {
        return writeError(c, err, "failed to load reservations")
    }
    items := make([]reservationResponse, 0, len(list))
    for _, r := range list {
        items = append(items, toResponse(r, h.Location))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    r, err := h.Repo.GetByID(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err, "failed to fetch reservation")
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toResponse(r, h.Location)})
}

// Create handles POST /v1/customers/:id/reservations.  The customer comes
// from the path; a customer_id in the body must match it.
func (h *ReservationHandler) Create(c echo.Context) error {
    customerID, ok := parseID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
    }
    var body reservationRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.CustomerID != nil && *body.CustomerID != customerID {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": model.ErrCustomerImmutable.Error()})
    }
    if body.NumGuests == nil || body.StartAt == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "num_guests and start_at are required"})
    }
    startAt, err := model.ParseStartAt(*body.StartAt, h.Location)
    if err != nil {
        return writeError(c, err, "invalid start_at")
    }
    f := model.Fields{CustomerID: customerID, NumGuests: *body.NumGuests, StartAt: startAt}
    if body.Notes != nil {
        f.Notes = *body.Notes
    }
    r, err := model.NewReservation(f)
    if err != nil {
        return writeError(c, err, "invalid reservation")
    }
    if err := h.Repo.Save(c.Request().Context(), r); err != nil {
        return writeError(c, err, "failed to create reservation")
    }
    h.afterSave(c, queue.KindCreated, r)
    return c.JSON(http.StatusCreated, echo.Map{"item": toResponse(r, h.Location)})
}

// Update handles PUT /v1/reservations/:id.  Only the fields present in the
// body are changed; customer_id may be repeated but never changed.
func (h *ReservationHandler) Update(c echo.Context) error {
    id, ok := parseID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    var body reservationRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    ctx := c.Request().Context()
    r, err := h.Repo.GetByID(ctx, id)
    if err != nil {
        return writeError(c, err, "failed to fetch reservation")
    }
    if err := h.apply(r, body); err != nil {
        return writeError(c, err, "invalid reservation")
    }
    if err := h.Repo.Save(ctx, r); err != nil {
        return writeError(c, err, "failed to update reservation")
    }
    h.afterSave(c, queue.KindUpdated, r)
    return c.JSON(http.StatusOK, echo.Map{"item": toResponse(r, h.Location)})
}

func (h *ReservationHandler) apply(r *model.Reservation, body reservationRequest) error {
    if body.CustomerID != nil {
        if err := r.SetCustomerID(*body.CustomerID); err != nil {
            return err
        }
    }
    if body.NumGuests != nil {
        if err := r.SetNumGuests(*body.NumGuests); err != nil {
            return err
        }
    }
    if body.StartAt != nil {
        t, err := model.ParseStartAt(*body.StartAt, h.Location)
        if err != nil {
            return err
        }
        if err := r.SetStartAt(t); err != nil {
            return err
        }
    }
    if body.Notes != nil {
        r.SetNotes(*body.Notes)
    }
    return nil
}

// afterSave evicts stale cache entries and publishes the event.  Failures
// are logged only; the row is already committed.
func (h *ReservationHandler) afterSave(c echo.Context, kind string, r *model.Reservation) {
    ctx := c.Request().Context()
    id, _ := r.ID()
    if h.Cache != nil {
        paths := []string{
            fmt.Sprintf("/v1/reservations/%d", id),
            fmt.Sprintf("/v1/customers/%d/reservations", r.CustomerID()),
        }
        if err := h.Cache.Invalidate(ctx, paths...); err != nil {
            log.Printf("reservations: cache invalidation for %d failed: %v", id, err)
        }
    }
    ev := queue.NewReservationSavedEvent(kind, r, middleware.StaffID(c), h.now(), h.Location)
    if err := h.Publisher.PublishReservationSaved(ctx, ev); err != nil {
        log.Printf("reservations: publish %s event for %d failed: %v", kind, id, err)
    }
}
