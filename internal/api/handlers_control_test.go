package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleStatus_freshServerIsIdle(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/control/status", nil)
	w := httptest.NewRecorder()
	s.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code: %d", w.Code)
	}
	var out statusResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Mode != "idle" {
		t.Errorf("mode: %s", out.Mode)
	}
	if out.CurrentLayout != nil {
		t.Errorf("expected no current layout, got %v", *out.CurrentLayout)
	}
}

func TestHandleControlStop_idempotentWhenAlreadyIdle(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/control/stop", nil)
	w := httptest.NewRecorder()
	s.handleControlStop(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code: %d", w.Code)
	}
	if s.Mode() != "idle" {
		t.Errorf("mode after stop: %s", s.Mode())
	}
}

func TestHandleStream_notFoundWithoutEverApplyingALayout(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	w := httptest.NewRecorder()
	s.handleStream(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected not-found with no last-good layout, got %d", w.Code)
	}
}

func TestHandleStatus_reportsEncoderProfileAndStreamURL(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/control/status", nil)
	req.Host = "example.invalid:8080"
	w := httptest.NewRecorder()
	s.handleStatus(w, req)

	var out statusResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Encoder.Name != s.profile.Name || out.Encoder.Codec != s.profile.Codec {
		t.Errorf("encoder block doesn't match active profile: %+v", out.Encoder)
	}
	if out.Encoder.Preference != s.cfg.EncoderPreference {
		t.Errorf("encoder.preference = %q, want %q", out.Encoder.Preference, s.cfg.EncoderPreference)
	}
	if out.StreamURL != "http://example.invalid:8080/stream" {
		t.Errorf("stream_url = %q", out.StreamURL)
	}
	if out.TimeUntilIdle != nil {
		t.Errorf("expected time_until_idle nil while idle, got %v", *out.TimeUntilIdle)
	}
	if out.ConnectedClients != 0 {
		t.Errorf("connected_clients = %d, want 0", out.ConnectedClients)
	}
}
