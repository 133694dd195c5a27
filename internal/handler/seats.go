package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/middleware"
    "github.com/iliyamo/event-seat-reservation/internal/model"
    "github.com/iliyamo/event-seat-reservation/internal/service"
)

// SeatHandler serves the seat map, the lock/confirm/release flow and
// seat provisioning.
type SeatHandler struct {
    Locks       *service.LockManager
    Provisioner *service.Provisioner
}

func NewSeatHandler(locks *service.LockManager, prov *service.Provisioner) *SeatHandler {
    return &SeatHandler{Locks: locks, Provisioner: prov}
}

type provisionRequest struct {
    Rows        int     `json:"rows"`
    SeatsPerRow int     `json:"seatsPerRow"`
    Price       float64 `json:"price"`
    Shape       string  `json:"shape"`
}

type stageShapeRequest struct {
    StageShape string `json:"stage_shape"`
}

type confirmResponse struct {
    Seat        *model.Seat        `json:"seat"`
    Reservation *model.Reservation `json:"reservation"`
}

func caller(c echo.Context) service.Caller {
    return service.Caller{UserID: middleware.UserID(c), Role: middleware.Role(c)}
}

// List handles GET /events/:id/seats.
func (h *SeatHandler) List(c echo.Context) error {
    seats, err := h.Locks.ListSeats(c.Request().Context(), c.Param("id"))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, seats)
}

// Lock handles POST /seats/:id/lock.
func (h *SeatHandler) Lock(c echo.Context) error {
    seat, err := h.Locks.Acquire(c.Request().Context(), c.Param("id"), middleware.UserID(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, seat)
}

// Confirm handles POST /seats/:id/confirm.
func (h *SeatHandler) Confirm(c echo.Context) error {
    seat, res, err := h.Locks.Confirm(c.Request().Context(), c.Param("id"), middleware.UserID(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, confirmResponse{Seat: seat, Reservation: res})
}

// Release handles POST /seats/:id/release.
func (h *SeatHandler) Release(c echo.Context) error {
    seat, err := h.Locks.Release(c.Request().Context(), c.Param("id"), middleware.UserID(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, seat)
}

// Provision handles POST /events/:id/seats.  The whole seat map of the
// event is replaced.
func (h *SeatHandler) Provision(c echo.Context) error {
    var req provisionRequest
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    n, err := h.Provisioner.Provision(c.Request().Context(), caller(c), c.Param("id"), service.ProvisionInput{
        Rows:        req.Rows,
        SeatsPerRow: req.SeatsPerRow,
        Price:       req.Price,
        Shape:       req.Shape,
    })
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"message": "seats provisioned", "count": n})
}

// UpdateStageShape handles PATCH /events/:id/stage-shape.
func (h *SeatHandler) UpdateStageShape(c echo.Context) error {
    var req stageShapeRequest
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    shape, err := h.Provisioner.UpdateStageShape(c.Request().Context(), caller(c), c.Param("id"), req.StageShape)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "stage shape updated", "stage_shape": shape})
}
