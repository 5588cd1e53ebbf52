package api

import (
	"net/http"
	"time"

	"github.com/snapetech/multiview/internal/apperror"
	"github.com/snapetech/multiview/internal/broadcast"
	"github.com/snapetech/multiview/internal/metrics"
)

type encoderInfo struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	Codec      string `json:"codec"`
	Preference string `json:"preference"`
}

type statusResponse struct {
	Mode             string      `json:"mode"`
	ConnectedClients int         `json:"connected_clients"`
	TimeUntilIdle    *float64    `json:"time_until_idle"`
	Encoder          encoderInfo `json:"encoder"`
	StreamURL        string      `json:"stream_url"`
	CurrentLayout    *string     `json:"current_layout,omitempty"`
}

// handleStatus reports the broadcast state machine's current snapshot,
// per §6's documented shape. TimeUntilIdle is only meaningful while live
// with no attached viewers; it's nil otherwise.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	encType := "software"
	if s.profile.SupportsHWFilter {
		encType = "hardware"
	}

	resp := statusResponse{
		Mode:             string(s.Mode()),
		ConnectedClients: s.ViewerCount(),
		Encoder: encoderInfo{
			Type:       encType,
			Name:       s.profile.Name,
			Codec:      s.profile.Codec,
			Preference: s.cfg.EncoderPreference,
		},
		StreamURL: "http://" + r.Host + "/stream",
	}
	if s.Mode() == broadcast.ModeLive && s.ViewerCount() == 0 {
		remaining := s.cfg.IdleTimeout - time.Since(s.LastActivity())
		if remaining < 0 {
			remaining = 0
		}
		seconds := remaining.Seconds()
		resp.TimeUntilIdle = &seconds
	}
	if cfg := s.currentLayoutSnapshot(); cfg != nil {
		kind := string(cfg.Kind)
		resp.CurrentLayout = &kind
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleControlStop forces an explicit transition to idle, retaining
// last_good_layout for a subsequent cold start.
func (s *Server) handleControlStop(w http.ResponseWriter, r *http.Request) {
	s.Stop()
	writeJSON(w, http.StatusOK, statusOKResponse{Status: "stopped"})
}

// handleStream attaches a viewer to the live broadcast. If the broadcast is
// idle and a last-good layout exists, it triggers a cold start. Per §4.7,
// no response header is written until the child's first chunk is observed
// or coldStartDeadline elapses — on timeout the viewer gets a
// startup-timeout error rather than a connection that just goes quiet.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Mode() == broadcast.ModeIdle {
		cfg := s.lastGoodLayoutSnapshot()
		if cfg == nil {
			writeError(w, apperror.New(apperror.NotFound, "no content available"))
			return
		}
		if _, err := s.startChild(*cfg); err != nil {
			writeError(w, err)
			return
		}
	}

	s.bumpActivity()
	viewer := s.fan.Attach()
	metrics.ConnectedViewers.Set(float64(s.fan.Count()))
	defer func() {
		s.fan.Detach(viewer)
		metrics.ConnectedViewers.Set(float64(s.fan.Count()))
	}()

	select {
	case <-s.readySnapshot():
	case <-time.After(coldStartDeadline):
		writeError(w, apperror.New(apperror.StartupTimeout, "no chunk received before startup deadline"))
		return
	case <-r.Context().Done():
		return
	}

	w.Header().Set("Content-Type", "video/mp2t")
	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)

	for {
		select {
		case chunk, ok := <-viewer.Chunks():
			if !ok {
				return
			}
			if _, err := w.Write(chunk); err != nil {
				return
			}
			if canFlush {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}
