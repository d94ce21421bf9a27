package server

import (
	"net/http"

	"github.com/nitya2202/ocr-string-validation-tool/internal/common"
)

// statusRecorder captures the response status for request metrics. A zero
// status means the handler never called WriteHeader, which net/http treats
// as 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// withCORS answers preflight requests and stamps the configured origin on
// everything else. The API only reads state and triggers runs, so the
// advertised methods stop at GET and POST.
func (s *Server) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.corsOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// instrumented records the request counter and latency histogram around
// the wrapped handler.
func (s *Server) instrumented(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		timer := common.StartStopwatch()
		next(rec, r)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, http.StatusText(rec.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(timer.Elapsed().Seconds())
	}
}
