package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher forwards credential audit events to a sink from a single worker
// goroutine, so a slow sink delays the trail, never the login or reset that
// produced it. Drops are counted per event type: losing login_failure events
// and losing password_reset_request events mean different things to whoever
// reads the trail.
//
// A nil Dispatcher is valid and inert, which is how disabled auditing is
// modeled.
type Dispatcher struct {
	cfg   Config
	sink  Sink
	queue chan Event
	stop  chan struct{}
	wg    sync.WaitGroup

	closed atomic.Bool
	once   sync.Once

	dropTotal atomic.Uint64
	dropMu    sync.Mutex
	dropByEvt map[string]uint64
}

func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:       cfg,
		sink:      sink,
		queue:     make(chan Event, cfg.BufferSize),
		stop:      make(chan struct{}),
		dropByEvt: make(map[string]uint64),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

// drain flushes whatever was queued before Close, so the last events of a
// shutting-down process still reach the sink.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- event:
		case <-d.stop:
		default:
			d.recordDrop(event.EventType)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

func (d *Dispatcher) recordDrop(eventType string) {
	d.dropTotal.Add(1)
	d.dropMu.Lock()
	d.dropByEvt[eventType]++
	d.dropMu.Unlock()
}

func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.stop)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropTotal.Load()
}

// DroppedByEvent returns a snapshot of discard counts keyed by event type.
func (d *Dispatcher) DroppedByEvent() map[string]uint64 {
	if d == nil {
		return nil
	}
	d.dropMu.Lock()
	defer d.dropMu.Unlock()

	out := make(map[string]uint64, len(d.dropByEvt))
	for eventType, n := range d.dropByEvt {
		out[eventType] = n
	}
	return out
}
