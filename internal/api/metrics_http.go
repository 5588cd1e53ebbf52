package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snapetech/multiview/internal/apperror"
	"github.com/snapetech/multiview/internal/health"
)

// registerMetrics wires the ambient /metrics endpoint onto mux.
func registerMetrics(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}

// handleHealthz is the liveness check: it verifies the configured ffmpeg
// binary is resolvable, independent of broadcast state.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := health.CheckFFmpeg(s.cfg.FFmpegPath); err != nil {
		writeError(w, apperror.New(apperror.Internal, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, statusOKResponse{Status: "ok"})
}
