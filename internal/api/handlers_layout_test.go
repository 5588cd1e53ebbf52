package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/snapetech/multiview/internal/filtergraph"
)

func TestHandleLayoutCurrent_notFoundBeforeAnyLayout(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/layout/current", nil)
	w := httptest.NewRecorder()
	s.handleLayoutCurrent(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected not-found before any layout is applied, got %d", w.Code)
	}
}

func TestHandleSwapAudio_notFoundBeforeAnyLayout(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/layout/swap-audio", httpBody(`{"audio_source":"main"}`))
	w := httptest.NewRecorder()
	s.handleSwapAudio(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected not-found before any layout is applied, got %d", w.Code)
	}
}

func TestHandleLayoutSet_invalidJSON(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/layout/set", httpBody("not json"))
	w := httptest.NewRecorder()
	s.handleLayoutSet(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected bad-layout for invalid JSON, got %d", w.Code)
	}
}

func TestToCustomSlots(t *testing.T) {
	in := []customSlotRequest{{ID: "a", Name: "a", X: 1, Y: 2, Width: 3, Height: 4, Border: true}}
	out := toCustomSlots(in)
	if len(out) != 1 {
		t.Fatalf("expected one slot, got %d", len(out))
	}
	want := filtergraph.CustomSlot{ID: "a", Name: "a", X: 1, Y: 2, Width: 3, Height: 4, Border: true}
	if out[0] != want {
		t.Errorf("got %+v, want %+v", out[0], want)
	}
}

func TestToCustomSlots_nilForEmpty(t *testing.T) {
	if out := toCustomSlots(nil); out != nil {
		t.Errorf("expected nil for empty input, got %+v", out)
	}
}
