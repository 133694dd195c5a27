package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/service"
)

// EventHandler serves event creation and lookups.
type EventHandler struct {
    Events *service.EventService
}

func NewEventHandler(events *service.EventService) *EventHandler {
    return &EventHandler{Events: events}
}

type createEventRequest struct {
    Title      string `json:"title"`
    Date       string `json:"date"` // RFC 3339
    Location   string `json:"location"`
    Type       string `json:"type"`
    StageShape string `json:"stage_shape"`
}

// Create handles POST /events.
func (h *EventHandler) Create(c echo.Context) error {
    var req createEventRequest
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    var date time.Time
    if s := strings.TrimSpace(req.Date); s != "" {
        d, err := time.Parse(time.RFC3339, s)
        if err != nil {
            return badRequest(c, "date must be RFC 3339")
        }
        date = d
    }
    ev, err := h.Events.Create(c.Request().Context(), caller(c), service.CreateEventInput{
        Title:      req.Title,
        Date:       date,
        Location:   req.Location,
        Type:       req.Type,
        StageShape: req.StageShape,
    })
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, ev)
}

// Get handles GET /events/:id.
func (h *EventHandler) Get(c echo.Context) error {
    ev, err := h.Events.Get(c.Request().Context(), c.Param("id"))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, ev)
}

// ListPublic handles GET /events.
func (h *EventHandler) ListPublic(c echo.Context) error {
    evs, err := h.Events.ListPublic(c.Request().Context())
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, evs)
}

// ListMine handles GET /org/events.
func (h *EventHandler) ListMine(c echo.Context) error {
    evs, err := h.Events.ListMine(c.Request().Context(), caller(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, evs)
}
