// Package httpmiddleware contains net/http middlewares shared by the API server.
package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Middleware is a net/http middleware.
type Middleware = func(http.Handler) http.Handler

// Wrap wraps h with middlewares. The first middleware is the outermost one.
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// InjectLogger injects lg into the request context as the base logger.
func InjectLogger(lg *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := zctx.Base(r.Context(), lg)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError writes the API error body for failures raised before a request
// reaches a handler.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.Obj(func(e *jx.Encoder) {
		e.Field("timestamp", func(e *jx.Encoder) { e.Str(time.Now().UTC().Format(time.RFC3339)) })
		e.Field("status", func(e *jx.Encoder) { e.Int(status) })
		e.Field("error", func(e *jx.Encoder) { e.Str(http.StatusText(status)) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		e.Field("path", func(e *jx.Encoder) { e.Str(r.URL.Path) })
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
