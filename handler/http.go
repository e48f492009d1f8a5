package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"clova-webhook/clova"
)

// maxBodyBytes bounds the request envelope read by ServeHTTP.
const maxBodyBytes = 1 << 20

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	corrID := correlationID(r.Header.Get)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("read request body", "correlation_id", corrID, "err", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeResult(w, errorResult(http.StatusRequestEntityTooLarge, string(clova.ErrorMalformedPayload), "body_too_large", corrID))
			return
		}
		writeResult(w, errorResult(http.StatusBadRequest, string(clova.ErrorMalformedPayload), "unreadable_body", corrID))
		return
	}
	writeResult(w, h.serve(r.Context(), body, corrID))
}

// NewRouter mounts h at route (POST) plus /healthz and, when metrics is not
// nil, /metrics.
func NewRouter(route string, h *Handler, metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	r.Method(http.MethodPost, route, h)
	return r
}

func writeResult(w http.ResponseWriter, res clova.Result) {
	for k, v := range res.Header {
		w.Header().Set(k, v)
	}
	w.WriteHeader(res.StatusCode)
	if len(res.Body) > 0 {
		_, _ = w.Write(res.Body)
	}
}
