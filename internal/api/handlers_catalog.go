package api

import (
	"io"
	"net/http"

	"github.com/snapetech/multiview/internal/apperror"
	"github.com/snapetech/multiview/internal/catalog"
	"github.com/snapetech/multiview/internal/httpclient"
	"github.com/snapetech/multiview/internal/safeurl"
)

type channelsResponse struct {
	Channels []catalog.Channel `json:"channels"`
	Count    int               `json:"count"`
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	channels := s.cat.List()
	writeJSON(w, http.StatusOK, channelsResponse{Channels: channels, Count: len(channels)})
}

// handleRefresh reloads the catalog from cfg.M3USource. A fetch failure
// leaves the prior catalog intact and surfaces source-unavailable.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.refreshLimiter.Allow() {
		writeError(w, apperror.New(apperror.Busy, "refresh rate limit exceeded"))
		return
	}
	if err := s.cat.Load(s.cfg.M3USource, s.client); err != nil {
		writeError(w, apperror.New(apperror.SourceUnavailable, err.Error()))
		return
	}
	channels := s.cat.List()
	writeJSON(w, http.StatusOK, channelsResponse{Channels: channels, Count: len(channels)})
}

// handleProxyImage is a pass-through fetch helper for channel logos that
// may not be reachable directly from the browser (mixed content, missing
// CORS). Only http/https targets are allowed (SSRF guard).
func (s *Server) handleProxyImage(w http.ResponseWriter, r *http.Request) {
	if !s.proxyLimiter.Allow() {
		writeError(w, apperror.New(apperror.Busy, "proxy-image rate limit exceeded"))
		return
	}
	target := r.URL.Query().Get("url")
	if !safeurl.IsHTTPOrHTTPS(target) {
		writeError(w, apperror.New(apperror.BadLayout, "url must be http or https"))
		return
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		writeError(w, apperror.New(apperror.BadLayout, err.Error()))
		return
	}
	resp, err := httpclient.DoWithRetry(r.Context(), s.client, req, httpclient.DefaultRetryPolicy)
	if err != nil {
		writeError(w, apperror.New(apperror.SourceUnavailable, err.Error()))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		writeError(w, apperror.New(apperror.SourceUnavailable, resp.Status))
		return
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, resp.Body)
}
