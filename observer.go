package serene

import "time"

// IntersectionEntry describes one observed node's overlap with the
// (margin-adjusted) viewport at the time of evaluation.
type IntersectionEntry struct {
	Node *Node
	// Bounds is the node's screen-space box. Zero when the node could not be
	// measured.
	Bounds Rect
	// RootBounds is the viewport expanded by the observer's root margin.
	RootBounds Rect
	// Ratio is the visible fraction of the node's area, in [0, 1].
	Ratio float64
	// IsIntersecting reports whether Ratio has reached the threshold.
	IsIntersecting bool
	// Time is the clock reading at evaluation.
	Time time.Duration
}

// VisibilityObserver reports when nodes enter or leave the viewport.
type VisibilityObserver interface {
	// Observe starts watching n. fn receives an entry on the first
	// evaluation and on every threshold crossing after that. The returned
	// function stops observation; it is safe to call more than once.
	Observe(n *Node, fn func(IntersectionEntry)) (unobserve func())
}

// ObserverConfig tunes when an observed node counts as intersecting.
type ObserverConfig struct {
	// Threshold is the minimum visible fraction of the node's area.
	Threshold float64 `yaml:"threshold"`
	// RootMargin grows (positive) or shrinks (negative) the viewport edges
	// before intersecting. A positive Bottom fires slightly before the node
	// scrolls into view.
	RootMargin Insets `yaml:"root_margin"`
}

// DefaultObserverConfig triggers at 10% visibility, 50px before the node
// reaches the bottom edge.
var DefaultObserverConfig = ObserverConfig{
	Threshold:  0.1,
	RootMargin: Insets{Bottom: 50},
}

type observation struct {
	node         *Node
	fn           func(IntersectionEntry)
	seen         bool
	intersecting bool
	active       bool
}

// Observer evaluates observed nodes against a ViewportQuery once per scene
// update. Callbacks are collected during evaluation and dispatched
// afterwards, so they may observe or unobserve freely.
type Observer struct {
	cfg     ObserverConfig
	query   ViewportQuery
	clock   interface{ Now() time.Duration }
	targets []*observation
	pending []pendingEntry
}

type pendingEntry struct {
	obs   *observation
	entry IntersectionEntry
}

// NewObserver creates an Observer measuring through query. clock may be nil.
func NewObserver(cfg ObserverConfig, query ViewportQuery, clock interface{ Now() time.Duration }) *Observer {
	return &Observer{cfg: cfg, query: query, clock: clock}
}

// Config returns a pointer to the observer's config for live tuning.
func (o *Observer) Config() *ObserverConfig {
	return &o.cfg
}

// Len returns the number of active observations.
func (o *Observer) Len() int {
	n := 0
	for _, t := range o.targets {
		if t.active {
			n++
		}
	}
	return n
}

// Observe implements VisibilityObserver.
func (o *Observer) Observe(n *Node, fn func(IntersectionEntry)) func() {
	obs := &observation{node: n, fn: fn, active: true}
	o.targets = append(o.targets, obs)
	return func() {
		obs.active = false
	}
}

// Evaluate measures every active observation and dispatches entries for
// first sightings and threshold crossings.
func (o *Observer) Evaluate() {
	if len(o.targets) == 0 {
		return
	}
	var now time.Duration
	if o.clock != nil {
		now = o.clock.Now()
	}
	root := o.query.ViewportBounds().Expand(o.cfg.RootMargin)

	o.pending = o.pending[:0]
	for _, obs := range o.targets {
		if !obs.active {
			continue
		}
		entry := o.measure(obs.node, root)
		entry.Time = now
		if obs.seen && entry.IsIntersecting == obs.intersecting {
			continue
		}
		obs.seen = true
		obs.intersecting = entry.IsIntersecting
		o.pending = append(o.pending, pendingEntry{obs: obs, entry: entry})
	}

	for i := range o.pending {
		p := &o.pending[i]
		if p.obs.active {
			p.obs.fn(p.entry)
		}
		p.obs = nil
	}
	o.compact()
}

// measure computes the intersection entry for n against root. Nodes that
// cannot be measured report as not intersecting.
func (o *Observer) measure(n *Node, root Rect) IntersectionEntry {
	entry := IntersectionEntry{Node: n, RootBounds: root}
	bounds, ok := o.query.NodeBounds(n)
	if !ok {
		return entry
	}
	entry.Bounds = bounds

	if area := bounds.Area(); area > 0 {
		entry.Ratio = bounds.Intersection(root).Area() / area
	} else if root.Intersects(bounds) {
		entry.Ratio = 1
	}
	entry.IsIntersecting = entry.Ratio > 0 && entry.Ratio >= o.cfg.Threshold
	return entry
}

// compact drops inactive observations.
func (o *Observer) compact() {
	kept := o.targets[:0]
	for _, t := range o.targets {
		if t.active {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(o.targets); i++ {
		o.targets[i] = nil
	}
	o.targets = kept
}
