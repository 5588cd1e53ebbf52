package api

import (
	"strings"
	"sync/atomic"
	"testing"
)

func TestCountingReader_accumulatesBytes(t *testing.T) {
	var counter atomic.Int64
	cr := &countingReader{r: strings.NewReader("hello world"), counter: &counter}

	buf := make([]byte, 5)
	n, err := cr.Read(buf)
	if err != nil || n != 5 {
		t.Fatalf("read: n=%d err=%v", n, err)
	}
	if counter.Load() != 5 {
		t.Errorf("counter after first read: %d", counter.Load())
	}

	n2, _ := cr.Read(buf)
	if counter.Load() != int64(5+n2) {
		t.Errorf("counter after second read: %d", counter.Load())
	}
}

func TestServer_currentLayoutSnapshot_nilBeforeAnyLaunch(t *testing.T) {
	s := newTestServer()
	if s.currentLayoutSnapshot() != nil {
		t.Error("expected nil layout snapshot before any launch")
	}
	if s.lastGoodLayoutSnapshot() != nil {
		t.Error("expected nil last-good snapshot before any launch")
	}
}

func TestServer_bumpActivity_neverMovesBackwards(t *testing.T) {
	s := newTestServer()
	before := s.LastActivity()
	s.bumpActivity()
	if s.LastActivity().Before(before) {
		t.Error("expected last activity to never move backwards")
	}
}

func TestCountingReader_signalsReadyOnFirstByte(t *testing.T) {
	var counter atomic.Int64
	ready := make(chan struct{})
	cr := &countingReader{r: strings.NewReader("x"), counter: &counter, ready: ready}

	buf := make([]byte, 1)
	if _, err := cr.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	select {
	case <-ready:
	default:
		t.Fatal("expected ready to close on first non-empty read")
	}
}

func TestCountingReader_signalsReadyOnEOFEvenWithoutBytes(t *testing.T) {
	var counter atomic.Int64
	ready := make(chan struct{})
	cr := &countingReader{r: strings.NewReader(""), counter: &counter, ready: ready}

	buf := make([]byte, 1)
	if _, err := cr.Read(buf); err == nil {
		t.Fatal("expected EOF from an empty reader")
	}
	select {
	case <-ready:
	default:
		t.Fatal("expected ready to close even when the child never produced a byte")
	}
}

func TestServer_readySnapshot_closedBeforeAnyLaunch(t *testing.T) {
	s := newTestServer()
	select {
	case <-s.readySnapshot():
	default:
		t.Fatal("expected readySnapshot to be already closed before any launch")
	}
}
