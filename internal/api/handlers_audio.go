package api

import (
	"encoding/json"
	"net/http"

	"github.com/snapetech/multiview/internal/apperror"
	"github.com/snapetech/multiview/internal/filtergraph"
)

type volumeSetRequest struct {
	SlotID string  `json:"slot_id"`
	Volume float64 `json:"volume"`
}

type volumeSetResponse struct {
	Status string  `json:"status"`
	SlotID string  `json:"slot_id"`
	Volume float64 `json:"volume"`
}

// handleVolumeSet adjusts a single slot's volume on the current layout and
// replays it through the optimistic-restart path. Out-of-range values are
// clamped, not rejected (invariant 3).
func (s *Server) handleVolumeSet(w http.ResponseWriter, r *http.Request) {
	var body volumeSetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.New(apperror.BadLayout, "invalid JSON body"))
		return
	}
	cfg := s.currentLayoutSnapshot()
	if cfg == nil {
		writeError(w, apperror.New(apperror.NotFound, "no current layout"))
		return
	}
	if cfg.PerSlotVolume == nil {
		cfg.PerSlotVolume = map[string]float64{}
	}
	clamped := filtergraph.ClampVolume(body.Volume)
	cfg.PerSlotVolume[body.SlotID] = clamped
	s.bumpActivity()
	if _, err := s.startChild(*cfg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, volumeSetResponse{Status: "ok", SlotID: body.SlotID, Volume: clamped})
}

type volumesResponse struct {
	Volumes map[string]float64 `json:"volumes"`
	Layout  string             `json:"layout"`
	Streams map[string]string  `json:"streams"`
}

// handleVolumes reports the per-slot volume map of the current layout,
// alongside the layout kind and slot->channel assignment (§6).
func (s *Server) handleVolumes(w http.ResponseWriter, r *http.Request) {
	cfg := s.currentLayoutSnapshot()
	if cfg == nil {
		writeError(w, apperror.New(apperror.NotFound, "no current layout"))
		return
	}
	writeJSON(w, http.StatusOK, volumesResponse{
		Volumes: cfg.PerSlotVolume,
		Layout:  string(cfg.Kind),
		Streams: cfg.SlotToChannel,
	})
}
