package middleware

import (
    "context"
    "log/slog"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
)

// AccessLog writes one structured record per request to logger.
func AccessLog(logger *slog.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            level := slog.LevelInfo
            if v.Status >= 500 || v.Error != nil && v.Status == 0 {
                level = slog.LevelError
            }
            attrs := []slog.Attr{
                slog.String("method", v.Method),
                slog.String("uri", v.URI),
                slog.Int("status", v.Status),
                slog.Float64("latency_ms", float64(v.Latency.Microseconds())/1000.0),
                slog.String("remote_ip", v.RemoteIP),
                slog.String("request_id", requestID(c, v)),
            }
            if uid := UserID(c); uid != "" {
                attrs = append(attrs, slog.String("user_id", uid))
            }
            if v.Error != nil {
                attrs = append(attrs, slog.String("err", v.Error.Error()))
            }
            logger.LogAttrs(context.Background(), level, "http_request", attrs...)
            return nil
        },
    })
}

func requestID(c echo.Context, v echomw.RequestLoggerValues) string {
    if v.RequestID != "" {
        return v.RequestID
    }
    s, _ := c.Get("request_id").(string)
    return s
}
