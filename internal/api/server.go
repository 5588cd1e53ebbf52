// Package api implements the state machine and HTTP surface (C7): it
// coordinates the catalog, encoder profile, filter-graph compiler, and
// broadcast supervisor/fan-out under the three-lock ordering documented in
// §5 (catalog -> supervisor -> viewers), and exposes the HTTP API in §6.
package api

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/time/rate"

	"github.com/snapetech/multiview/internal/broadcast"
	"github.com/snapetech/multiview/internal/catalog"
	"github.com/snapetech/multiview/internal/config"
	"github.com/snapetech/multiview/internal/encoder"
	"github.com/snapetech/multiview/internal/filtergraph"
	"github.com/snapetech/multiview/internal/httpclient"
)

// coldStartDeadline bounds how long a viewer attaching to an idle broadcast
// waits for the first chunk before receiving a startup-failed response.
const coldStartDeadline = 30 * time.Second

// restartGraceWindow is how long a just-restarted child must survive before
// it is considered healthy again (spec §4.8).
const restartGraceWindow = 5 * time.Second

// Server holds the full runtime: catalog, encoder profile, supervisor,
// fan-out, and the layout/activity state that the three-lock ordering's
// "supervisor lock" conceptually covers. mu here plays that role for the
// fields broadcast.Supervisor itself doesn't own (current/last-good layout,
// last-activity timestamp); broadcast.Supervisor's own mutex still guards
// mode and the child handle. Acquire catalog -> mu -> fan in that order.
type Server struct {
	cfg     *config.Config
	cat     *catalog.Catalog
	profile encoder.Profile
	client  *http.Client

	sup *broadcast.Supervisor
	fan *broadcast.FanOut

	mu              sync.Mutex
	currentLayout   *filtergraph.Config
	lastGoodLayout  *filtergraph.Config
	lastActivity    time.Time
	bytesSinceStart atomic.Int64
	epoch           atomic.Int64
	ready           chan struct{}

	refreshLimiter *rate.Limiter
	proxyLimiter   *rate.Limiter
}

// NewServer wires a Server from its dependencies.
func NewServer(cfg *config.Config, cat *catalog.Catalog, profile encoder.Profile) *Server {
	return &Server{
		cfg:            cfg,
		cat:            cat,
		profile:        profile,
		client:         httpclient.Default(),
		sup:            broadcast.NewSupervisor(),
		fan:            broadcast.NewFanOut(),
		lastActivity:   time.Now(),
		refreshLimiter: rate.NewLimiter(rate.Limit(1), 3),
		proxyLimiter:   rate.NewLimiter(rate.Limit(1), 3),
	}
}

// Mux returns the configured ServeMux: the documented API surface plus the
// ambient /healthz endpoint, and /metrics unless cfg.MetricsAddr names a
// separate listener for it (see Run).
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/channels", s.handleChannels)
	mux.HandleFunc("POST /api/channels/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/proxy-image", s.handleProxyImage)
	mux.HandleFunc("POST /api/layout/set", s.handleLayoutSet)
	mux.HandleFunc("GET /api/layout/current", s.handleLayoutCurrent)
	mux.HandleFunc("POST /api/layout/swap-audio", s.handleSwapAudio)
	mux.HandleFunc("POST /api/audio/volume", s.handleVolumeSet)
	mux.HandleFunc("GET /api/audio/volumes", s.handleVolumes)
	mux.HandleFunc("GET /control/status", s.handleStatus)
	mux.HandleFunc("GET /control/stop", s.handleControlStop)
	mux.HandleFunc("GET /stream", s.handleStream)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.cfg.MetricsAddr == "" {
		registerMetrics(mux)
	}
	return mux
}

// Run listens on cfg.Port until ctx is canceled, enforcing cfg.MaxConnections
// via netutil.LimitListener as an infrastructure safety net distinct from the
// logical unbounded viewer set. When cfg.MetricsAddr is set, /metrics is
// served on a second, separate listener instead of the main one, so scraping
// it never competes with cfg.MaxConnections' budget for /stream viewers.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	ln = netutil.LimitListener(ln, s.cfg.MaxConnections)

	srv := &http.Server{Handler: logRequests(compressJSON(s.Mux()))}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("api: listening on %s", addr)
		serverErr <- srv.Serve(ln)
	}()

	var metricsSrv *http.Server
	metricsErr := make(chan error, 1)
	if s.cfg.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		registerMetrics(metricsMux)
		metricsSrv = &http.Server{Addr: s.cfg.MetricsAddr, Handler: metricsMux}
		go func() {
			log.Printf("api: metrics listening on %s", s.cfg.MetricsAddr)
			metricsErr <- metricsSrv.ListenAndServe()
		}()
	}

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("api: shutdown: %v", err)
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				log.Printf("api: metrics shutdown: %v", err)
			}
		}
	}

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case err := <-metricsErr:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Print("api: shutting down")
		shutdown()
		<-serverErr
		if metricsSrv != nil {
			<-metricsErr
		}
		return nil
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lw, r)
		log.Printf("api: %s %s %d %s", r.Method, r.URL.Path, lw.status, time.Since(start))
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *loggingResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
