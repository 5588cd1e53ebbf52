package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/snapetech/multiview/internal/catalog"
	"github.com/snapetech/multiview/internal/config"
)

func newTestServer() *Server {
	cfg := &config.Config{FFmpegPath: "ffmpeg", MaxConnections: 10}
	return NewServer(cfg, catalog.New(), testProfile())
}

func TestHandleChannels_empty(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/channels", nil)
	w := httptest.NewRecorder()
	s.handleChannels(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code: %d", w.Code)
	}
	var out channelsResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 0 || len(out.Channels) != 0 {
		t.Errorf("expected empty catalog, got %+v", out)
	}
}

func TestHandleChannels_listsLoadedChannels(t *testing.T) {
	s := newTestServer()
	s.cat.Replace([]catalog.Channel{{ID: "1", DisplayName: "One", StreamURL: "http://up/1"}})

	req := httptest.NewRequest(http.MethodGet, "/api/channels", nil)
	w := httptest.NewRecorder()
	s.handleChannels(w, req)

	var out channelsResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Channels[0].ID != "1" {
		t.Fatalf("expected one channel, got %+v", out)
	}
}

func TestHandleRefresh_fetchFailureLeavesCatalogIntact(t *testing.T) {
	s := newTestServer()
	s.cat.Replace([]catalog.Channel{{ID: "1", DisplayName: "One", StreamURL: "http://up/1"}})
	s.cfg.M3USource = "http://127.0.0.1:1/does-not-exist.m3u"

	req := httptest.NewRequest(http.MethodPost, "/api/channels/refresh", nil)
	w := httptest.NewRecorder()
	s.handleRefresh(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected source-unavailable status, got %d: %s", w.Code, w.Body.String())
	}
	if s.cat.Count() != 1 {
		t.Fatalf("expected prior catalog to survive a failed refresh, got count %d", s.cat.Count())
	}
}

func TestHandleRefresh_rateLimited(t *testing.T) {
	s := newTestServer()
	s.cfg.M3USource = "http://127.0.0.1:1/does-not-exist.m3u"
	for i := 0; i < 3; i++ {
		s.refreshLimiter.Allow()
	}

	req := httptest.NewRequest(http.MethodPost, "/api/channels/refresh", nil)
	w := httptest.NewRecorder()
	s.handleRefresh(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected busy status once burst is exhausted, got %d", w.Code)
	}
}

func TestHandleProxyImage_rejectsNonHTTPScheme(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/proxy-image?url=file:///etc/passwd", nil)
	w := httptest.NewRecorder()
	s.handleProxyImage(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected bad-layout status for non-http scheme, got %d", w.Code)
	}
}

func TestHandleProxyImage_proxiesUpstreamBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake-image-bytes"))
	}))
	defer upstream.Close()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/proxy-image?url="+upstream.URL, nil)
	w := httptest.NewRecorder()
	s.handleProxyImage(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code: %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("content-type: %s", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != "fake-image-bytes" {
		t.Errorf("body: %s", w.Body.String())
	}
}
