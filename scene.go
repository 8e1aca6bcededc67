package serene

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

const defaultCommandCap = 256

// Scene is the top-level object that owns the node tree, the viewport, the
// virtual clock and the visibility observer, and drives every reveal and
// petal field once per tick.
type Scene struct {
	root  *Node
	debug bool
	log   *zap.Logger

	viewport  *Viewport
	scheduler *Scheduler
	observer  *Observer

	reveals []*Reveal
	tweens  []*TweenGroup

	tracker     Tracker
	depth       depthTracker
	settleDelay time.Duration

	// ClearColor fills the screen before drawing when its alpha is non-zero.
	ClearColor Color

	updateFunc func() error
	testRunner *TestRunner

	// Render state
	commands   []RenderCommand
	cullBounds Rect
}

// NewScene creates a scene with a pre-created root container and a viewport
// of the given screen size.
func NewScene(width, height float64) *Scene {
	s := &Scene{
		root:        NewContainer("root"),
		log:         zap.NewNop(),
		viewport:    newViewport(width, height),
		scheduler:   NewScheduler(),
		tracker:     NopTracker{},
		settleDelay: DefaultSettleDelay,
		commands:    make([]RenderCommand, 0, defaultCommandCap),
	}
	s.observer = NewObserver(DefaultObserverConfig, s, s.scheduler)
	return s
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node { return s.root }

// Viewport returns the scene's viewport.
func (s *Scene) Viewport() *Viewport { return s.viewport }

// Scheduler returns the scene's virtual clock.
func (s *Scene) Scheduler() *Scheduler { return s.scheduler }

// Observer returns the scene's visibility observer.
func (s *Scene) Observer() *Observer { return s.observer }

// Now returns the scene clock.
func (s *Scene) Now() time.Duration { return s.scheduler.Now() }

// Logger returns the scene logger.
func (s *Scene) Logger() *zap.Logger { return s.log }

// SetLogger replaces the scene logger. nil restores the no-op logger.
func (s *Scene) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	s.log = l
}

// SetTracker sets the analytics sink. nil restores NopTracker.
func (s *Scene) SetTracker(t Tracker) {
	if t == nil {
		t = NopTracker{}
	}
	s.tracker = t
}

// SetSettleDelay changes the wait before a reveal's initial geometry check.
// Affects reveals mounted afterwards.
func (s *Scene) SetSettleDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.settleDelay = d
}

// SetUpdateFunc registers a callback run at the start of every update.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame timing stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
	if enabled {
		debugLogger = s.log
	}
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// AddTween registers a tween group to be stepped by the scene until done.
func (s *Scene) AddTween(g *TweenGroup) {
	if g != nil && !g.Done {
		s.tweens = append(s.tweens, g)
	}
}

// Reveal wraps content in a Reveal, attaches it to parent and mounts it
// against the scene. The content's position moves to the wrapper node.
func (s *Scene) Reveal(parent, content *Node, cfg RevealConfig) *Reveal {
	r := NewReveal(content, cfg)
	parent.AddChild(r.Node())
	if err := r.Mount(s.revealEnv()); err != nil {
		// Only reachable when the env is incomplete, which revealEnv rules out.
		panic("serene: " + err.Error())
	}
	s.reveals = append(s.reveals, r)
	return r
}

// MountReveal mounts an externally created Reveal against the scene. Its
// node must already be attached for the geometry check to succeed.
func (s *Scene) MountReveal(r *Reveal) error {
	if err := r.Mount(s.revealEnv()); err != nil {
		return err
	}
	for _, existing := range s.reveals {
		if existing == r {
			return nil
		}
	}
	s.reveals = append(s.reveals, r)
	return nil
}

// RemoveReveal unmounts r and detaches its node from the tree.
func (s *Scene) RemoveReveal(r *Reveal) {
	r.Unmount()
	r.Node().RemoveFromParent()
	for i, existing := range s.reveals {
		if existing == r {
			s.reveals = append(s.reveals[:i], s.reveals[i+1:]...)
			return
		}
	}
}

// Reveals returns the reveals managed by the scene. The returned slice MUST
// NOT be mutated.
func (s *Scene) Reveals() []*Reveal {
	return s.reveals
}

func (s *Scene) revealEnv() RevealEnv {
	return RevealEnv{
		Timers:      s.scheduler,
		Query:       s,
		Observer:    s.observer,
		SettleDelay: s.settleDelay,
		Logger:      s.log,
		OnReveal:    s.onReveal,
	}
}

func (s *Scene) onReveal(r *Reveal) {
	s.tracker.Track(Event{
		Category: CategoryReveal,
		Action:   ActionRevealed,
		Label:    r.Content().Name,
		Value:    s.scheduler.Now().Seconds(),
	})
}

// NodeBounds implements ViewportQuery. A node with its own box reports that
// box; a bare container reports the union of its subtree.
func (s *Scene) NodeBounds(n *Node) (Rect, bool) {
	if n == nil || n.IsDisposed() || !n.Attached(s.root) {
		return Rect{}, false
	}
	if w, h := nodeDimensions(n); w != 0 || h != 0 {
		return n.WorldBounds(), true
	}
	return subtreeWorldBounds(n)
}

// ViewportBounds implements ViewportQuery.
func (s *Scene) ViewportBounds() Rect {
	return s.viewport.Bounds()
}

// subtreeWorldBounds unions the world boxes of n's descendants.
func subtreeWorldBounds(n *Node) (Rect, bool) {
	var out Rect
	found := false
	for _, c := range n.children {
		var r Rect
		ok := false
		if w, h := nodeDimensions(c); w != 0 || h != 0 {
			r, ok = c.WorldBounds(), true
			if sub, sok := subtreeWorldBounds(c); sok {
				r = r.Union(sub)
			}
		} else {
			r, ok = subtreeWorldBounds(c)
		}
		if !ok {
			continue
		}
		if !found {
			out, found = r, true
		} else {
			out = out.Union(r)
		}
	}
	return out, found
}

// Update advances the scene by one tick at the current TPS.
func (s *Scene) Update() error {
	return s.UpdateDelta(time.Second / time.Duration(ebiten.TPS()))
}

// UpdateDelta advances the scene by dt. Order within a tick:
// scripted steps, user callback, scroll animation, node callbacks, world
// transforms, due timers, observer dispatch, transitions, petals, and
// finally scroll-depth tracking.
func (s *Scene) UpdateDelta(dt time.Duration) error {
	if dt < 0 {
		dt = 0
	}
	secs := dt.Seconds()

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	if s.updateFunc != nil {
		if err := s.updateFunc(); err != nil {
			return err
		}
	}

	s.viewport.update(float32(secs))
	updateNodes(s.root, secs)
	for _, r := range s.reveals {
		r.syncBox()
	}
	updateWorldTransform(s.root, identityTransform, 1.0, false)

	s.scheduler.Advance(dt)
	s.observer.Evaluate()

	s.stepReveals(float32(secs))
	s.stepTweens(float32(secs))
	updatePetalFields(s.root, secs)

	s.depth.observe(s.viewport.ScrollFraction(), s.tracker)
	return nil
}

// stepReveals steps transitions and forgets unmounted reveals that have
// nothing left to animate.
func (s *Scene) stepReveals(dt float32) {
	kept := s.reveals[:0]
	for _, r := range s.reveals {
		r.Update(dt)
		if r.Mounted() || r.Animating() {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(s.reveals); i++ {
		s.reveals[i] = nil
	}
	s.reveals = kept
}

func (s *Scene) stepTweens(dt float32) {
	kept := s.tweens[:0]
	for _, g := range s.tweens {
		g.Update(dt)
		if !g.Done {
			kept = append(kept, g)
		}
	}
	for i := len(kept); i < len(s.tweens); i++ {
		s.tweens[i] = nil
	}
	s.tweens = kept
}

// Draw traverses the scene tree, emits render commands and submits them to
// screen.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}
	s.commands = s.commands[:0]
	s.cullBounds = s.viewport.Bounds()

	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	treeOrder := 0
	s.traverse(s.root, identityTransform, 1.0, false, &treeOrder)

	if s.debug {
		stats.traverseTime = time.Since(t0)
		stats.commandCount = len(s.commands)
		t0 = time.Now()
	}

	s.submit(screen)

	if s.debug {
		stats.submitTime = time.Since(t0)
		stats.drawCallCount = countDrawCalls(s.commands)
		s.debugLog(stats)
	}
}
