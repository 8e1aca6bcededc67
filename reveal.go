package serene

import (
	"errors"
	"time"

	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// RevealState is the lifecycle position of a Reveal.
type RevealState uint8

const (
	RevealHidden            RevealState = iota // not yet triggered
	RevealScheduledOnMount                     // visible at mount, waiting for Delay
	RevealScheduledOnScroll                    // scrolled into view, waiting for the scroll delay
	RevealRevealed                             // terminal
)

func (s RevealState) String() string {
	switch s {
	case RevealHidden:
		return "hidden"
	case RevealScheduledOnMount:
		return "scheduled-on-mount"
	case RevealScheduledOnScroll:
		return "scheduled-on-scroll"
	case RevealRevealed:
		return "revealed"
	default:
		return "unknown"
	}
}

// canAdvance reports whether from -> to is a legal transition.
func canAdvance(from, to RevealState) bool {
	switch from {
	case RevealHidden:
		return to == RevealScheduledOnMount || to == RevealScheduledOnScroll
	case RevealScheduledOnMount, RevealScheduledOnScroll:
		return to == RevealRevealed
	}
	return false
}

// RevealMode selects which trigger paths a Reveal may take.
type RevealMode uint8

const (
	// RevealAuto checks geometry after the settle delay and falls back to
	// observing when the node is not fully visible.
	RevealAuto RevealMode = iota
	// RevealOnMount skips the geometry check and always schedules on mount.
	RevealOnMount
	// RevealOnScroll skips the geometry check and always waits for the observer.
	RevealOnScroll
)

// Reveal transition defaults.
const (
	DefaultRevealOffset             = 30.0
	DefaultRevealDuration   float32 = 1.8
	DefaultSettleDelay              = 50 * time.Millisecond
)

// RevealConfig configures one Reveal.
type RevealConfig struct {
	// Delay is applied before the transition once triggered. For the
	// on-mount path it is measured from Mount.
	Delay time.Duration
	// ScrollDelay replaces Delay on the scroll path when HasScrollDelay is set.
	ScrollDelay    time.Duration
	HasScrollDelay bool
	Mode           RevealMode

	// Offset is the vertical distance the content settles from. Zero uses
	// DefaultRevealOffset.
	Offset float64
	// Duration of the visual transition in seconds. Zero uses
	// DefaultRevealDuration.
	Duration float32
	// Ease defaults to ease.OutQuint.
	Ease ease.TweenFunc

	// OnStateChange, if set, observes every state transition.
	OnStateChange func(from, to RevealState)
}

// WithScrollDelay returns a copy of c that uses d on the scroll path.
func (c RevealConfig) WithScrollDelay(d time.Duration) RevealConfig {
	c.ScrollDelay = d
	c.HasScrollDelay = true
	return c
}

// scrollDelay returns the delay applied after an intersection trigger.
func (c RevealConfig) scrollDelay() time.Duration {
	if c.HasScrollDelay {
		return c.ScrollDelay
	}
	return c.Delay
}

// RevealEnv supplies the collaborators a Reveal runs against.
type RevealEnv struct {
	Timers   Timers
	Query    ViewportQuery
	Observer VisibilityObserver
	// SettleDelay postpones the initial geometry check.
	SettleDelay time.Duration
	Logger      *zap.Logger
	// OnReveal is called once when the unit reaches RevealRevealed.
	OnReveal func(r *Reveal)
}

// Errors returned by Reveal.Mount.
var (
	ErrRevealMounted    = errors.New("serene: reveal already mounted")
	ErrRevealIncomplete = errors.New("serene: reveal env needs Timers, Query and Observer")
)

// Reveal shows a wrapped subtree exactly once, either shortly after mount
// when it starts fully inside the viewport, or after it scrolls into view.
//
// The outer node is what gets measured and observed; the inner node carries
// the animated alpha and vertical offset so the measurement is not skewed by
// the offset.
type Reveal struct {
	outer   *Node
	inner   *Node
	content *Node
	cfg     RevealConfig
	state   RevealState

	env       RevealEnv
	log       *zap.Logger
	mounted   bool
	mountedAt time.Duration

	settle     Timer
	pending    Timer
	unobserve  func()
	transition *TweenGroup
}

// NewReveal wraps content. The returned Reveal's Node should be placed in
// the tree in place of content; content's position and ZIndex move to it.
func NewReveal(content *Node, cfg RevealConfig) *Reveal {
	if cfg.Offset == 0 {
		cfg.Offset = DefaultRevealOffset
	}
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultRevealDuration
	}
	if cfg.Ease == nil {
		cfg.Ease = ease.OutQuint
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.ScrollDelay < 0 {
		cfg.ScrollDelay = 0
	}

	outer := NewContainer("reveal:" + content.Name)
	outer.X, outer.Y = content.X, content.Y
	outer.ZIndex = content.ZIndex
	content.X, content.Y = 0, 0
	content.ZIndex = 0
	content.transformDirty = true
	inner := NewContainer("reveal-motion")
	inner.Alpha = 0
	inner.Y = cfg.Offset
	outer.AddChild(inner)
	inner.AddChild(content)

	r := &Reveal{
		outer:   outer,
		inner:   inner,
		content: content,
		cfg:     cfg,
		log:     zap.NewNop(),
	}
	r.syncBox()
	return r
}

// Node returns the outer wrapper node.
func (r *Reveal) Node() *Node { return r.outer }

// Content returns the wrapped content node.
func (r *Reveal) Content() *Node { return r.content }

// State returns the current lifecycle state.
func (r *Reveal) State() RevealState { return r.state }

// Mounted reports whether the reveal is between Mount and Unmount.
func (r *Reveal) Mounted() bool { return r.mounted }

// Animating reports whether the visual transition is still running.
func (r *Reveal) Animating() bool { return r.transition != nil }

// Alpha returns the current transition opacity.
func (r *Reveal) Alpha() float64 { return r.inner.Alpha }

// Offset returns the current vertical offset from rest.
func (r *Reveal) Offset() float64 { return r.inner.Y }

// Mount starts the trigger logic. Geometry is checked after the settle delay
// in RevealAuto mode. Remounting a unit that was unmounted while scheduled
// re-arms its pending delay in full.
func (r *Reveal) Mount(env RevealEnv) error {
	if r.mounted {
		return ErrRevealMounted
	}
	if env.Timers == nil || env.Query == nil || env.Observer == nil {
		return ErrRevealIncomplete
	}
	r.env = env
	if env.Logger != nil {
		r.log = env.Logger
	}
	r.mounted = true
	r.mountedAt = env.Timers.Now()

	switch r.state {
	case RevealScheduledOnMount:
		r.pending = env.Timers.AfterFunc(r.cfg.Delay, r.reveal)
		return nil
	case RevealScheduledOnScroll:
		r.pending = env.Timers.AfterFunc(r.cfg.scrollDelay(), r.reveal)
		return nil
	case RevealRevealed:
		return nil
	}
	switch r.cfg.Mode {
	case RevealOnMount:
		r.scheduleOnMount()
	case RevealOnScroll:
		r.observe()
	default:
		r.settle = env.Timers.AfterFunc(env.SettleDelay, r.checkInitial)
	}
	return nil
}

// Unmount cancels any pending timer and detaches the observer. No state
// transition happens after Unmount returns.
func (r *Reveal) Unmount() {
	if !r.mounted {
		return
	}
	r.mounted = false
	if r.settle != nil {
		r.settle.Stop()
		r.settle = nil
	}
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	r.stopObserving()
	r.log.Debug("reveal unmounted",
		zap.String("node", r.content.Name),
		zap.Stringer("state", r.state))
}

// Update steps the visual transition by dt seconds. Disposing the wrapper or
// the content unmounts the reveal.
func (r *Reveal) Update(dt float32) {
	if r.mounted && (r.outer.IsDisposed() || r.content.IsDisposed()) {
		r.Unmount()
	}
	if r.transition == nil {
		return
	}
	r.transition.Update(dt)
	if r.transition.Done {
		r.transition = nil
	}
}

// syncBox sizes the wrapper to the content at rest, so geometry queries on
// the wrapper ignore the transition offset.
func (r *Reveal) syncBox() {
	b, ok := localBounds(r.content, identityTransform)
	if !ok {
		return
	}
	w, h := max(b.Right(), 0), max(b.Bottom(), 0)
	if w != r.outer.Width || h != r.outer.Height {
		r.outer.SetSize(w, h)
	}
}

// alive guards every deferred callback.
func (r *Reveal) alive() bool {
	return r.mounted && !r.outer.IsDisposed() && !r.content.IsDisposed()
}

// checkInitial runs once after the settle delay.
func (r *Reveal) checkInitial() {
	r.settle = nil
	if !r.alive() || r.state != RevealHidden {
		return
	}
	r.syncBox()
	bounds, ok := r.env.Query.NodeBounds(r.outer)
	if ok && r.env.Query.ViewportBounds().ContainsRect(bounds) {
		r.scheduleOnMount()
		return
	}
	r.observe()
}

// scheduleOnMount arms the reveal timer so it fires Delay after mount.
func (r *Reveal) scheduleOnMount() {
	if !r.advance(RevealScheduledOnMount) {
		return
	}
	remaining := r.cfg.Delay - (r.env.Timers.Now() - r.mountedAt)
	r.pending = r.env.Timers.AfterFunc(remaining, r.reveal)
}

func (r *Reveal) observe() {
	r.unobserve = r.env.Observer.Observe(r.outer, r.onIntersect)
}

func (r *Reveal) stopObserving() {
	if r.unobserve != nil {
		r.unobserve()
		r.unobserve = nil
	}
}

func (r *Reveal) onIntersect(e IntersectionEntry) {
	if !r.alive() || r.state != RevealHidden || !e.IsIntersecting {
		return
	}
	r.stopObserving()
	if !r.advance(RevealScheduledOnScroll) {
		return
	}
	r.pending = r.env.Timers.AfterFunc(r.cfg.scrollDelay(), r.reveal)
}

func (r *Reveal) reveal() {
	r.pending = nil
	if !r.alive() {
		return
	}
	if !r.advance(RevealRevealed) {
		return
	}
	r.transition = TweenReveal(r.inner, 0, r.cfg.Duration, r.cfg.Ease)
	if r.env.OnReveal != nil {
		r.env.OnReveal(r)
	}
}

// advance performs a legal state transition and reports whether it happened.
func (r *Reveal) advance(to RevealState) bool {
	from := r.state
	if !canAdvance(from, to) {
		return false
	}
	r.state = to
	r.log.Debug("reveal state",
		zap.String("node", r.content.Name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Duration("at", r.env.Timers.Now()))
	if r.cfg.OnStateChange != nil {
		r.cfg.OnStateChange(from, to)
	}
	return true
}
