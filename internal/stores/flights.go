package stores

import (
	"context"
	"fmt"
	"sync"
)

// Phase is the lifecycle state of an action scope.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequesting
	PhaseReconciling
	PhaseFailed
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequesting:
		return "requesting"
	case PhaseReconciling:
		return "reconciling"
	case PhaseFailed:
		return "failed"
	case PhaseCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

type flight struct {
	phase Phase
	prev  <-chan struct{} // done of the flight queued before this one; nil when none
	done  chan struct{}
}

// flights serializes actions per scope key in reservation order. Each
// reserved flight waits for the one reserved before it on the same key.
type flights struct {
	mu      sync.Mutex
	tail    map[string]*flight // last reserved flight per key
	running map[string]*flight // flight currently past its wait per key
}

// reserve queues a flight for key. It does not block; the caller's order
// of reserve calls is the order flights run in.
func (f *flights) reserve(key string) *flight {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tail == nil {
		f.tail = make(map[string]*flight)
		f.running = make(map[string]*flight)
	}
	fl := &flight{phase: PhaseIdle, done: make(chan struct{})}
	if prev, ok := f.tail[key]; ok {
		fl.prev = prev.done
	}
	f.tail[key] = fl
	return fl
}

// start waits until every flight reserved earlier on key has been released,
// then marks fl as requesting. The returned func releases fl. When ctx ends
// first, fl is still released in order once its predecessor finishes.
func (f *flights) start(ctx context.Context, key string, fl *flight) (func(), error) {
	if fl.prev != nil {
		select {
		case <-fl.prev:
		case <-ctx.Done():
			go func() {
				<-fl.prev
				f.release(key, fl)
			}()
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	fl.phase = PhaseRequesting
	f.running[key] = fl
	f.mu.Unlock()
	return func() { f.release(key, fl) }, nil
}

func (f *flights) release(key string, fl *flight) {
	f.mu.Lock()
	if f.running[key] == fl {
		delete(f.running, key)
	}
	if f.tail[key] == fl {
		delete(f.tail, key)
	}
	f.mu.Unlock()
	close(fl.done)
}

func (f *flights) set(fl *flight, p Phase) {
	f.mu.Lock()
	fl.phase = p
	f.mu.Unlock()
}

func (f *flights) phase(key string) Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fl, ok := f.running[key]; ok {
		return fl.phase
	}
	return PhaseIdle
}

