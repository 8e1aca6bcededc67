package serene

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Event is a one-way analytics notification. Serene never waits on the
// result of delivering one.
type Event struct {
	Category string
	Action   string
	Label    string
	Value    float64
}

// Event categories and actions emitted by Scene.
const (
	CategoryEngagement = "Engagement"
	ActionScrollDepth  = "scroll_depth"
	CategoryReveal     = "Reveal"
	ActionRevealed     = "revealed"
)

// Tracker receives analytics events. Track must not block the caller.
type Tracker interface {
	Track(e Event)
}

// TrackerFunc adapts a plain function to Tracker.
type TrackerFunc func(e Event)

// Track calls f(e).
func (f TrackerFunc) Track(e Event) { f(e) }

// NopTracker discards every event.
type NopTracker struct{}

// Track implements Tracker.
func (NopTracker) Track(Event) {}

// LogTracker writes events to a zap logger at info level.
type LogTracker struct {
	Logger *zap.Logger
}

// Track implements Tracker.
func (t LogTracker) Track(e Event) {
	if t.Logger == nil {
		return
	}
	t.Logger.Info("track",
		zap.String("category", e.Category),
		zap.String("action", e.Action),
		zap.String("label", e.Label),
		zap.Float64("value", e.Value))
}

// AsyncTracker forwards events to another Tracker on a single worker
// goroutine. When the queue is full, events are dropped rather than
// blocking the frame.
type AsyncTracker struct {
	next    Tracker
	queue   chan Event
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// NewAsyncTracker starts a worker delivering to next. size is the queue
// capacity; values below 1 use 64.
func NewAsyncTracker(next Tracker, size int) *AsyncTracker {
	if size < 1 {
		size = 64
	}
	t := &AsyncTracker{
		next:  next,
		queue: make(chan Event, size),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go t.run()
	return t
}

// Track enqueues e without blocking.
func (t *AsyncTracker) Track(e Event) {
	select {
	case <-t.quit:
		t.dropped.Add(1)
		return
	default:
	}
	select {
	case t.queue <- e:
	default:
		t.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded.
func (t *AsyncTracker) Dropped() int64 {
	return t.dropped.Load()
}

// Close stops accepting events, delivers what is already queued and waits
// for the worker to exit. Safe to call more than once.
func (t *AsyncTracker) Close() {
	t.once.Do(func() { close(t.quit) })
	<-t.done
}

func (t *AsyncTracker) run() {
	defer close(t.done)
	for {
		select {
		case e := <-t.queue:
			t.next.Track(e)
		case <-t.quit:
			for {
				select {
				case e := <-t.queue:
					t.next.Track(e)
				default:
					return
				}
			}
		}
	}
}

// depthBuckets are the scroll-depth percentages reported once each.
var depthBuckets = [...]int{25, 50, 75, 100}

// depthTracker reports scroll depth milestones.
type depthTracker struct {
	reported [len(depthBuckets)]bool
}

// observe emits an event for every newly reached bucket.
func (d *depthTracker) observe(fraction float64, t Tracker) {
	pct := fraction * 100
	for i, b := range depthBuckets {
		if d.reported[i] || pct+1e-9 < float64(b) {
			continue
		}
		d.reported[i] = true
		t.Track(Event{
			Category: CategoryEngagement,
			Action:   ActionScrollDepth,
			Label:    depthLabel(b),
			Value:    float64(b),
		})
	}
}

func depthLabel(b int) string {
	switch b {
	case 25:
		return "25%"
	case 50:
		return "50%"
	case 75:
		return "75%"
	default:
		return "100%"
	}
}
