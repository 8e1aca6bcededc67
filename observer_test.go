package serene

import (
	"testing"
	"time"
)

// fakeQuery serves fixed geometry.
type fakeQuery struct {
	viewport Rect
	bounds   map[*Node]Rect
}

func (q *fakeQuery) NodeBounds(n *Node) (Rect, bool) {
	r, ok := q.bounds[n]
	return r, ok
}

func (q *fakeQuery) ViewportBounds() Rect { return q.viewport }

func newFakeQuery() *fakeQuery {
	return &fakeQuery{viewport: Rect{0, 0, 800, 600}, bounds: map[*Node]Rect{}}
}

func TestObserverInitialEntry(t *testing.T) {
	q := newFakeQuery()
	o := NewObserver(DefaultObserverConfig, q, nil)
	n := NewContainer("n")
	q.bounds[n] = Rect{0, 2000, 100, 100}

	var got []IntersectionEntry
	o.Observe(n, func(e IntersectionEntry) { got = append(got, e) })
	o.Evaluate()

	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1 initial entry", len(got))
	}
	if got[0].IsIntersecting {
		t.Error("offscreen node should not be intersecting")
	}
	o.Evaluate()
	if len(got) != 1 {
		t.Errorf("entries = %d, want no repeat without a crossing", len(got))
	}
}

func TestObserverThresholdCrossing(t *testing.T) {
	q := newFakeQuery()
	o := NewObserver(ObserverConfig{Threshold: 0.1}, q, nil)
	n := NewContainer("n")
	q.bounds[n] = Rect{0, 700, 100, 100}

	var got []IntersectionEntry
	o.Observe(n, func(e IntersectionEntry) { got = append(got, e) })
	o.Evaluate()

	// 5% visible: below threshold, no crossing.
	q.bounds[n] = Rect{0, 595, 100, 100}
	o.Evaluate()
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}

	// 20% visible.
	q.bounds[n] = Rect{0, 580, 100, 100}
	o.Evaluate()
	if len(got) != 2 || !got[1].IsIntersecting {
		t.Fatalf("want intersecting crossing, got %+v", got)
	}
	assertNear(t, "ratio", got[1].Ratio, 0.2)

	// Leaves again.
	q.bounds[n] = Rect{0, 900, 100, 100}
	o.Evaluate()
	if len(got) != 3 || got[2].IsIntersecting {
		t.Errorf("want non-intersecting crossing, got %+v", got)
	}
}

func TestObserverRootMarginExtendsBottom(t *testing.T) {
	q := newFakeQuery()
	n := NewContainer("n")
	// Starts 20px below the fold: only visible through a 50px bottom margin.
	q.bounds[n] = Rect{0, 620, 100, 100}

	tests := []struct {
		name   string
		margin Insets
		want   bool
	}{
		{"no margin", Insets{}, false},
		{"bottom 50", Insets{Bottom: 50}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewObserver(ObserverConfig{Threshold: 0.1, RootMargin: tt.margin}, q, nil)
			var got IntersectionEntry
			o.Observe(n, func(e IntersectionEntry) { got = e })
			o.Evaluate()
			if got.IsIntersecting != tt.want {
				t.Errorf("IsIntersecting = %v, want %v (ratio %v)", got.IsIntersecting, tt.want, got.Ratio)
			}
		})
	}
}

func TestObserverUnmeasurableNode(t *testing.T) {
	q := newFakeQuery()
	o := NewObserver(DefaultObserverConfig, q, nil)
	n := NewContainer("detached")

	var got *IntersectionEntry
	o.Observe(n, func(e IntersectionEntry) { got = &e })
	o.Evaluate()

	if got == nil {
		t.Fatal("expected an initial entry")
	}
	if got.IsIntersecting || got.Ratio != 0 {
		t.Errorf("unmeasurable node = %+v, want not intersecting", got)
	}
}

func TestObserverUnobserveInsideCallback(t *testing.T) {
	q := newFakeQuery()
	o := NewObserver(DefaultObserverConfig, q, nil)
	a := NewContainer("a")
	b := NewContainer("b")
	q.bounds[a] = Rect{0, 0, 10, 10}
	q.bounds[b] = Rect{0, 0, 10, 10}

	calls := 0
	var stopB func()
	o.Observe(a, func(IntersectionEntry) {
		calls++
		stopB()
	})
	stopB = o.Observe(b, func(IntersectionEntry) { calls++ })

	o.Evaluate()
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (b unobserved before dispatch)", calls)
	}
	if o.Len() != 1 {
		t.Errorf("Len = %d, want 1", o.Len())
	}
}

func TestObserverUnobserveIdempotent(t *testing.T) {
	o := NewObserver(DefaultObserverConfig, newFakeQuery(), nil)
	stop := o.Observe(NewContainer("n"), func(IntersectionEntry) {})
	stop()
	stop()
	o.Evaluate()
	if o.Len() != 0 {
		t.Errorf("Len = %d, want 0", o.Len())
	}
}

func TestObserverEntryTime(t *testing.T) {
	q := newFakeQuery()
	clock := NewScheduler()
	clock.Advance(1500 * time.Millisecond)
	o := NewObserver(DefaultObserverConfig, q, clock)
	n := NewContainer("n")
	q.bounds[n] = Rect{0, 0, 10, 10}

	var got IntersectionEntry
	o.Observe(n, func(e IntersectionEntry) { got = e })
	o.Evaluate()
	if got.Time != 1500*time.Millisecond {
		t.Errorf("Time = %v, want 1.5s", got.Time)
	}
}
