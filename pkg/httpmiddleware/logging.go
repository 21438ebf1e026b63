package httpmiddleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// LogRequests logs every request with the context logger.
func LogRequests(find RouteFinder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lg := zctx.From(r.Context())

			route := zap.Skip()
			if pattern, ok := find(r); ok {
				route = zap.String("route", pattern)
			}

			m := httpsnoop.CaptureMetrics(next, w, r)

			lvl := zap.DebugLevel
			if m.Code >= http.StatusInternalServerError {
				lvl = zap.WarnLevel
			}
			lg.Log(lvl, "Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				route,
				zap.Int("status", m.Code),
				zap.Duration("duration", m.Duration),
				zap.Int64("bytes", m.Written),
			)
		})
	}
}
