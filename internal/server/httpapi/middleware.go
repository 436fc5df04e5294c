package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/boardingpass/internal/server/metrics"
)

// requestLogger logs each request and records it by route pattern, so
// path parameters do not blow up metric cardinality.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := chi.RouteContext(r.Context()).RoutePattern()
		elapsed := time.Since(start)

		metrics.HTTPRequestServed(route, status, elapsed)
		s.logger.Debug(r.Context(), "request served",
			"method", r.Method, "route", route, "status", status,
			"bytes", ww.BytesWritten(), "elapsed_ms", elapsed.Milliseconds(), "remote", r.RemoteAddr)
	})
}
