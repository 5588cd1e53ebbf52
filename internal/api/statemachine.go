package api

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/snapetech/multiview/internal/apperror"
	"github.com/snapetech/multiview/internal/broadcast"
	"github.com/snapetech/multiview/internal/filtergraph"
	"github.com/snapetech/multiview/internal/metrics"
)

// resolveChannel looks up a channel id's stream URL in the catalog, for use
// as filtergraph.Inputs' resolve callback.
func (s *Server) resolveChannel(id string) (string, bool) {
	ch, ok := s.cat.Resolve(id)
	if !ok {
		return "", false
	}
	return ch.StreamURL, true
}

// startChild compiles cfg, starts a new child via the supervisor (optimistic
// restart: the old child, if any, is signaled to stop only after the new one
// has been started), and re-points the fan-out reader at its stdout. On success it
// records cfg as both current and last-good layout and resets the byte
// counter. Validation and compile failures never touch supervisor or layout
// state (invariant 8, optimistic replace atomicity).
//
// Every call bumps s.epoch. watchChildExit compares its captured epoch
// against the live one before reacting to an exit, so a watcher tracking a
// child that a later layout-apply or recycle has already superseded quietly
// stops instead of racing a second restart in behind the new one.
func (s *Server) startChild(cfg filtergraph.Config) (*broadcast.ChildHandle, error) {
	handle, err := s.launch(cfg)
	if err != nil {
		return nil, err
	}
	epoch := s.epoch.Load()
	go s.watchChildExit(handle, epoch)
	return handle, nil
}

// launch does the actual compile+start+rewire, shared by startChild and the
// in-loop restart path in watchChildExit (which manages its own watcher
// continuation rather than spawning a second one).
func (s *Server) launch(cfg filtergraph.Config) (*broadcast.ChildHandle, error) {
	inputs, err := filtergraph.Inputs(cfg, s.resolveChannel)
	if err != nil {
		return nil, err
	}
	args, err := filtergraph.Compile(cfg, inputs, s.profile)
	if err != nil {
		return nil, err
	}
	handle, err := s.sup.Start(s.cfg.FFmpegPath, args)
	if err != nil {
		return nil, apperror.New(apperror.EncoderFailed, err.Error())
	}

	layout := cfg
	ready := make(chan struct{})
	s.mu.Lock()
	s.currentLayout = &layout
	s.lastGoodLayout = &layout
	s.ready = ready
	s.mu.Unlock()

	s.bytesSinceStart.Store(0)
	s.epoch.Add(1)
	metrics.SubprocessRestarts.Inc()
	metrics.Mode.Set(metrics.ModeValue(string(s.sup.Mode())))

	cr := &countingReader{r: handle.Stdout, counter: &s.bytesSinceStart, ready: ready}
	go s.fan.Run(cr)
	go s.awaitLive(handle.ID, ready)
	return handle, nil
}

// awaitLive marks the supervisor live once the child's first byte has been
// observed on ready (closed by countingReader), completing the
// idle->starting->live transition in §4.7. If the child never produces a
// byte, ready still closes once its stdout reaches EOF or error, so this
// goroutine cannot leak past the child's own lifetime.
func (s *Server) awaitLive(id uint64, ready <-chan struct{}) {
	<-ready
	s.sup.MarkLive(id)
	metrics.Mode.Set(metrics.ModeValue(string(s.sup.Mode())))
}

// watchChildExit implements §4.8's failure semantics: on an unexpected exit
// while live, attempt one automatic restart with the same layout; if that
// restart also exits within restartGraceWindow, transition to idle and
// disconnect connected viewers.
func (s *Server) watchChildExit(handle *broadcast.ChildHandle, epoch int64) {
	for {
		err := <-handle.Done
		if s.epoch.Load() != epoch {
			return // superseded by a newer start/replace/recycle
		}
		if s.sup.Mode() != broadcast.ModeLive {
			return // expected stop
		}
		log.Printf("api: child exited unexpectedly: %v", err)

		cfg := s.currentLayoutSnapshot()
		if cfg == nil {
			s.failLive()
			return
		}

		restarted, restartErr := s.launch(*cfg)
		if restartErr != nil {
			log.Printf("api: automatic restart failed: %v", restartErr)
			s.failLive()
			return
		}
		epoch = s.epoch.Load()

		select {
		case err2 := <-restarted.Done:
			if s.epoch.Load() != epoch {
				return
			}
			log.Printf("api: restarted child also exited within grace window: %v", err2)
			s.failLive()
			return
		case <-time.After(restartGraceWindow):
			handle = restarted
		}
	}
}

// failLive transitions to idle after exhausting automatic restarts, retaining
// last_good_layout, and disconnects every connected viewer cleanly.
func (s *Server) failLive() {
	s.sup.Stop()
	s.epoch.Add(1)
	s.fan.CloseAll()
	metrics.Mode.Set(metrics.ModeValue(string(s.sup.Mode())))
}

func (s *Server) currentLayoutSnapshot() *filtergraph.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentLayout == nil {
		return nil
	}
	cfg := *s.currentLayout
	return &cfg
}

func (s *Server) lastGoodLayoutSnapshot() *filtergraph.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastGoodLayout == nil {
		return nil
	}
	cfg := *s.lastGoodLayout
	return &cfg
}

// readySnapshot returns the channel that closes once the current child's
// first byte has arrived. If no child has ever been launched, it returns an
// already-closed channel so a caller never blocks on a broadcast that was
// never started.
func (s *Server) readySnapshot() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	return s.ready
}

func (s *Server) bumpActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// The following methods satisfy internal/watchdog.State.

// Mode returns the current broadcast mode.
func (s *Server) Mode() broadcast.Mode { return s.sup.Mode() }

// ViewerCount returns the number of attached /stream viewers.
func (s *Server) ViewerCount() int { return s.fan.Count() }

// LastActivity returns the timestamp of the most recent viewer attach or
// layout apply.
func (s *Server) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// BytesSinceStart returns the cumulative bytes read from the current
// child's stdout.
func (s *Server) BytesSinceStart() int64 { return s.bytesSinceStart.Load() }

// Stop forces a transition to idle (explicit /control/stop or watchdog idle
// timeout), retaining last_good_layout.
func (s *Server) Stop() {
	s.sup.Stop()
	s.epoch.Add(1)
	s.fan.CloseAll()
	metrics.Mode.Set(metrics.ModeValue(string(s.sup.Mode())))
}

// Recycle restarts the current layout (watchdog size-bound trigger). It does
// nothing unless the broadcast is live.
func (s *Server) Recycle() {
	if s.Mode() != broadcast.ModeLive {
		return
	}
	cfg := s.currentLayoutSnapshot()
	if cfg == nil {
		return
	}
	if _, err := s.startChild(*cfg); err != nil {
		log.Printf("api: recycle failed: %v", err)
	}
}

// countingReader wraps a stdout pipe, counting bytes read (and publishing
// them to the relayed-bytes metric) before handing them to the fan-out. It
// also closes ready on the first byte observed (or, failing that, once the
// child's output ends), which is what lets a cold-started child actually
// become "live" rather than merely "started".
type countingReader struct {
	r       io.Reader
	counter interface {
		Add(int64) int64
	}
	ready     chan struct{}
	readyOnce sync.Once
}

func (c *countingReader) signalReady() {
	if c.ready == nil {
		return
	}
	c.readyOnce.Do(func() { close(c.ready) })
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.counter.Add(int64(n))
		metrics.BytesRelayed.Add(float64(n))
		c.signalReady()
	}
	if err != nil {
		c.signalReady()
	}
	return n, err
}
