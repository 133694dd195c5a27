package handler // handler holds the echo handlers of the seat reservation API

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/obs"
    "github.com/iliyamo/event-seat-reservation/internal/repository"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
    Error string `json:"error"`
    Code  string `json:"code"`
}

// statusOf maps a domain error to its HTTP status and machine readable
// code.  ErrLockExpired is checked before ErrConflict because it wraps it.
func statusOf(err error) (int, string) {
    switch {
    case errors.Is(err, repository.ErrInvalidInput):
        return http.StatusBadRequest, "invalid_input"
    case errors.Is(err, repository.ErrForbidden):
        return http.StatusForbidden, "forbidden"
    case errors.Is(err, repository.ErrSeatNotHeld):
        return http.StatusNotFound, "not_held"
    case errors.Is(err, repository.ErrSeatNotFound), errors.Is(err, repository.ErrEventNotFound):
        return http.StatusNotFound, "not_found"
    case errors.Is(err, repository.ErrLockExpired):
        return http.StatusConflict, "lock_expired"
    case errors.Is(err, repository.ErrConflict):
        return http.StatusConflict, "conflict"
    default:
        return http.StatusInternalServerError, "internal"
    }
}

// respondError writes err as {"error","code"}.  Internal errors are logged
// and their text is not leaked to the client.
func respondError(c echo.Context, err error) error {
    status, code := statusOf(err)
    msg := err.Error()
    if status == http.StatusInternalServerError {
        obs.Logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
        msg = "internal error"
    }
    return c.JSON(status, errorBody{Error: msg, Code: code})
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, errorBody{Error: msg, Code: "invalid_input"})
}
