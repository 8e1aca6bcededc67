package serene

import (
	"container/heap"
	"time"
)

// Timers is the delayed-callback capability used by reveals. Callbacks run on
// the goroutine that advances the clock.
type Timers interface {
	// Now returns the elapsed time since the clock started.
	Now() time.Duration
	// AfterFunc arranges for fn to run once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending callback returned by Timers.AfterFunc.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped the
	// timer; false means it had already fired or been stopped.
	Stop() bool
}

// Scheduler is a virtual clock with one-shot timers. It never reads wall
// time: the owning Scene (or a test) moves it forward with Advance.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	queue timerQueue
}

// NewScheduler creates a scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Pending returns the number of timers waiting to fire.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// AfterFunc schedules fn to run when the clock reaches Now()+d. Negative
// durations are treated as zero.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &scheduledTimer{
		owner: s,
		when:  s.now + d,
		seq:   s.seq,
		fn:    fn,
		index: -1,
	}
	heap.Push(&s.queue, t)
	return t
}

// Advance moves the clock forward by dt and runs every timer that comes due,
// in deadline order. Timers scheduled by callbacks that fall due within the
// same window also run before Advance returns.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	target := s.now + dt
	for len(s.queue) > 0 && s.queue[0].when <= target {
		t := heap.Pop(&s.queue).(*scheduledTimer)
		if t.when > s.now {
			s.now = t.when
		}
		t.fired = true
		t.fn()
	}
	s.now = target
}

// scheduledTimer is one pending callback in a Scheduler.
type scheduledTimer struct {
	owner *Scheduler
	when  time.Duration
	seq   uint64
	fn    func()
	index int
	fired bool
}

// Stop removes the timer from its scheduler.
func (t *scheduledTimer) Stop() bool {
	if t.fired || t.index < 0 {
		return false
	}
	heap.Remove(&t.owner.queue, t.index)
	return true
}

// timerQueue is a min-heap ordered by deadline, then insertion order.
type timerQueue []*scheduledTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].when != q[j].when {
		return q[i].when < q[j].when
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*scheduledTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
