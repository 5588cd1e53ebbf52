package watchdog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/snapetech/multiview/internal/broadcast"
)

type fakeState struct {
	mu           sync.Mutex
	mode         broadcast.Mode
	viewers      int
	lastActivity time.Time
	bytesSoFar   int64
	stopCalls    int
	recycleCalls int
}

func (f *fakeState) Mode() broadcast.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}
func (f *fakeState) ViewerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewers
}
func (f *fakeState) LastActivity() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastActivity
}
func (f *fakeState) BytesSinceStart() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bytesSoFar
}
func (f *fakeState) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	f.mode = broadcast.ModeIdle
}
func (f *fakeState) Recycle() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recycleCalls++
}

func TestCheck_idleTimeoutTriggersStop(t *testing.T) {
	f := &fakeState{mode: broadcast.ModeLive, viewers: 0, lastActivity: time.Now().Add(-2 * time.Minute)}
	check(Config{IdleTimeout: time.Minute, SizeBound: 0}, f)
	if f.stopCalls != 1 {
		t.Fatalf("expected Stop called once, got %d", f.stopCalls)
	}
}

func TestCheck_activeViewersSuppressIdleStop(t *testing.T) {
	f := &fakeState{mode: broadcast.ModeLive, viewers: 1, lastActivity: time.Now().Add(-2 * time.Minute)}
	check(Config{IdleTimeout: time.Minute, SizeBound: 0}, f)
	if f.stopCalls != 0 {
		t.Fatalf("expected no Stop with active viewers, got %d", f.stopCalls)
	}
}

func TestCheck_recentActivitySuppressesIdleStop(t *testing.T) {
	f := &fakeState{mode: broadcast.ModeLive, viewers: 0, lastActivity: time.Now()}
	check(Config{IdleTimeout: time.Minute, SizeBound: 0}, f)
	if f.stopCalls != 0 {
		t.Fatalf("expected no Stop with recent activity, got %d", f.stopCalls)
	}
}

func TestCheck_sizeBoundTriggersRecycle(t *testing.T) {
	f := &fakeState{mode: broadcast.ModeLive, viewers: 1, lastActivity: time.Now(), bytesSoFar: 600 * 1024 * 1024}
	check(Config{IdleTimeout: time.Minute, SizeBound: 500 * 1024 * 1024}, f)
	if f.recycleCalls != 1 {
		t.Fatalf("expected Recycle called once, got %d", f.recycleCalls)
	}
}

func TestCheck_idleModeIgnored(t *testing.T) {
	f := &fakeState{mode: broadcast.ModeIdle, viewers: 0, lastActivity: time.Now().Add(-time.Hour), bytesSoFar: 1 << 40}
	check(Config{IdleTimeout: time.Minute, SizeBound: 1}, f)
	if f.stopCalls != 0 || f.recycleCalls != 0 {
		t.Fatalf("expected no action while not live, got stop=%d recycle=%d", f.stopCalls, f.recycleCalls)
	}
}

func TestRun_stopsOnContextCancel(t *testing.T) {
	f := &fakeState{mode: broadcast.ModeLive, viewers: 1, lastActivity: time.Now()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, Config{PollInterval: 10 * time.Millisecond, IdleTimeout: time.Hour}, f)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}

func TestRun_pollsAndTriggersStop(t *testing.T) {
	f := &fakeState{mode: broadcast.ModeLive, viewers: 0, lastActivity: time.Now().Add(-time.Hour)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Run(ctx, Config{PollInterval: 10 * time.Millisecond, IdleTimeout: time.Millisecond}, f)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if f.ViewerCount() == 0 && f.Mode() == broadcast.ModeIdle {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("watchdog never transitioned to idle")
}
