package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/middleware"
    "github.com/iliyamo/event-seat-reservation/internal/service"
)

type ReservationHandler struct {
    Ledger *service.Ledger
}

func NewReservationHandler(ledger *service.Ledger) *ReservationHandler {
    return &ReservationHandler{Ledger: ledger}
}

// ListMine handles GET /me/reservations.
func (h *ReservationHandler) ListMine(c echo.Context) error {
    items, err := h.Ledger.ListByUser(c.Request().Context(), middleware.UserID(c))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"count": len(items), "items": items})
}
