package api

import (
	"encoding/json"
	"net/http"

	"github.com/snapetech/multiview/internal/apperror"
	"github.com/snapetech/multiview/internal/filtergraph"
)

type customSlotRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Border bool   `json:"border"`
}

type layoutSetRequest struct {
	Layout      string              `json:"layout"`
	Streams     map[string]string   `json:"streams"`
	AudioSource string              `json:"audio_source"`
	CustomSlots []customSlotRequest `json:"custom_slots,omitempty"`
}

func toCustomSlots(in []customSlotRequest) []filtergraph.CustomSlot {
	if len(in) == 0 {
		return nil
	}
	out := make([]filtergraph.CustomSlot, len(in))
	for i, s := range in {
		out[i] = filtergraph.CustomSlot{
			ID: s.ID, Name: s.Name, X: s.X, Y: s.Y, Width: s.Width, Height: s.Height, Border: s.Border,
		}
	}
	return out
}

type statusOKResponse struct {
	Status string `json:"status"`
}

// handleLayoutSet applies a new layout: idle -> starting -> live, or an
// optimistic replace if already live.
func (s *Server) handleLayoutSet(w http.ResponseWriter, r *http.Request) {
	var body layoutSetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.New(apperror.BadLayout, "invalid JSON body"))
		return
	}
	cfg := filtergraph.Config{
		Kind:          filtergraph.Kind(body.Layout),
		SlotToChannel: body.Streams,
		AudioSlot:     body.AudioSource,
		CustomSlots:   toCustomSlots(body.CustomSlots),
		PerSlotVolume: map[string]float64{body.AudioSource: 1},
	}
	s.bumpActivity()
	if _, err := s.startChild(cfg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOKResponse{Status: "ok"})
}

// handleLayoutCurrent returns the last-applied configuration, or 404 if
// nothing has ever been applied.
func (s *Server) handleLayoutCurrent(w http.ResponseWriter, r *http.Request) {
	cfg := s.currentLayoutSnapshot()
	if cfg == nil {
		writeError(w, apperror.New(apperror.NotFound, "no layout has been applied"))
		return
	}
	writeJSON(w, http.StatusOK, layoutConfigResponse(*cfg))
}

type layoutConfigResponseBody struct {
	Layout        string                     `json:"layout"`
	Streams       map[string]string          `json:"streams"`
	AudioSource   string                     `json:"audio_source"`
	PerSlotVolume map[string]float64         `json:"per_slot_volume,omitempty"`
	CustomSlots   []filtergraph.CustomSlot   `json:"custom_slots,omitempty"`
}

func layoutConfigResponse(cfg filtergraph.Config) layoutConfigResponseBody {
	return layoutConfigResponseBody{
		Layout:        string(cfg.Kind),
		Streams:       cfg.SlotToChannel,
		AudioSource:   cfg.AudioSlot,
		PerSlotVolume: cfg.PerSlotVolume,
		CustomSlots:   cfg.CustomSlots,
	}
}

type swapAudioRequest struct {
	AudioSource string `json:"audio_source"`
}

// handleSwapAudio is equivalent to a layout-set that only changes
// audio_source: the rest of the current layout is preserved, and the new
// audio slot is given full volume unless it already carries one.
func (s *Server) handleSwapAudio(w http.ResponseWriter, r *http.Request) {
	var body swapAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.New(apperror.BadLayout, "invalid JSON body"))
		return
	}
	cfg := s.currentLayoutSnapshot()
	if cfg == nil {
		writeError(w, apperror.New(apperror.NotFound, "no current layout"))
		return
	}
	cfg.AudioSlot = body.AudioSource
	if cfg.PerSlotVolume == nil {
		cfg.PerSlotVolume = map[string]float64{}
	}
	if cfg.PerSlotVolume[body.AudioSource] <= 0 {
		cfg.PerSlotVolume[body.AudioSource] = 1
	}
	s.bumpActivity()
	if _, err := s.startChild(*cfg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOKResponse{Status: "ok"})
}
