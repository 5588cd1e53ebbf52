package broadcast

import (
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
)

const (
	readChunkSize   = 64 * 1024
	viewerQueueSize = 100
)

// Viewer is one connected consumer of the broadcast. Owned by FanOut;
// lifetime ends on disconnect or backlog overrun.
type Viewer struct {
	ID    string
	queue chan []byte
}

// Chunks returns the viewer's receive-only channel of byte chunks, in the
// exact order the fan-out reader saw them.
func (v *Viewer) Chunks() <-chan []byte {
	return v.queue
}

// FanOut reads a single producer byte stream in fixed chunks and replicates
// each chunk to every registered viewer, evicting any viewer whose queue is
// full rather than blocking on it. viewers is guarded by mu — the viewers
// lock in the three-lock ordering (catalog -> supervisor -> viewers).
type FanOut struct {
	mu      sync.RWMutex
	viewers map[string]*Viewer
}

// NewFanOut returns an empty fan-out.
func NewFanOut() *FanOut {
	return &FanOut{viewers: make(map[string]*Viewer)}
}

// Attach registers a new viewer and returns its handle. Registration
// happens under the viewers lock; it does not touch the supervisor or
// catalog locks.
func (f *FanOut) Attach() *Viewer {
	v := &Viewer{ID: uuid.NewString(), queue: make(chan []byte, viewerQueueSize)}
	f.mu.Lock()
	f.viewers[v.ID] = v
	f.mu.Unlock()
	return v
}

// Detach removes a viewer (disconnect or eviction). Idempotent.
func (f *FanOut) Detach(v *Viewer) {
	f.mu.Lock()
	delete(f.viewers, v.ID)
	f.mu.Unlock()
}

// Count returns the number of currently attached viewers.
func (f *FanOut) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.viewers)
}

// Run reads from stdout in fixed chunks and distributes each to every
// attached viewer until stdout returns end-of-stream or an error. It never
// blocks on a slow viewer: a viewer whose queue is full when a chunk
// arrives is evicted immediately, silently, and is not notified beyond
// having its channel closed.
func (f *FanOut) Run(stdout io.Reader) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			f.distribute(chunk)
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("broadcast: fan-out reader error: %v", err)
			}
			return
		}
	}
}

// distribute snapshots the viewer set under a read lock, then for each
// viewer tries a non-blocking send; viewers whose queue is full are
// collected and evicted after the chunk has been offered to everyone else.
func (f *FanOut) distribute(chunk []byte) {
	f.mu.RLock()
	snapshot := make([]*Viewer, 0, len(f.viewers))
	for _, v := range f.viewers {
		snapshot = append(snapshot, v)
	}
	f.mu.RUnlock()

	var overrun []*Viewer
	for _, v := range snapshot {
		select {
		case v.queue <- chunk:
		default:
			overrun = append(overrun, v)
		}
	}
	for _, v := range overrun {
		log.Printf("broadcast: evicting viewer %s (backlog exceeded %d chunks)", v.ID, viewerQueueSize)
		f.Detach(v)
		close(v.queue)
	}
}

// CloseAll detaches and closes every viewer's queue, used when the
// supervisor transitions to idle and connected viewers must be
// disconnected cleanly.
func (f *FanOut) CloseAll() {
	f.mu.Lock()
	viewers := f.viewers
	f.viewers = make(map[string]*Viewer)
	f.mu.Unlock()
	for _, v := range viewers {
		close(v.queue)
	}
}
