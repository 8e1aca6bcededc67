package serene

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenAlpha,
// TweenReveal) and call Update(dt) each frame. The group auto-applies values
// and marks the node dirty. If the target node is disposed, the group stops
// immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	Done   bool
}

// Update advances all tweens by dt seconds, writes values to the target fields,
// and marks the node dirty. If the target node has been disposed, Done is set
// to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.target != nil {
		g.target.MarkDirty()
	}
}

// TweenPosition creates a TweenGroup that animates node.X and node.Y to the
// given target coordinates over the specified duration using the easing function.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node}
	g.tweens[0] = gween.New(float32(node.X), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Y), float32(toY), duration, fn)
	g.fields[0] = &node.X
	g.fields[1] = &node.Y
	return g
}

// TweenAlpha creates a TweenGroup that animates node.Alpha to the target value
// over the specified duration using the easing function.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(float32(node.Alpha), float32(to), duration, fn)
	g.fields[0] = &node.Alpha
	return g
}

// TweenReveal creates a TweenGroup that fades node.Alpha to 1 and settles
// node.Y to restY over the specified duration.
func TweenReveal(node *Node, restY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node}
	g.tweens[0] = gween.New(float32(node.Alpha), 1, duration, fn)
	g.tweens[1] = gween.New(float32(node.Y), float32(restY), duration, fn)
	g.fields[0] = &node.Alpha
	g.fields[1] = &node.Y
	return g
}

// --- Periodic functions of elapsed time ---

// Oscillate returns the value at time t of a loop that eases from -amplitude
// to +amplitude over half a period and back over the other half. t before
// zero is treated as zero.
func Oscillate(t, amplitude, period float64, fn ease.TweenFunc) float64 {
	if period <= 0 || amplitude == 0 {
		return -amplitude
	}
	half := period / 2
	phase := wrap(t, period)
	if phase < half {
		return float64(fn(float32(phase), float32(-amplitude), float32(2*amplitude), float32(half)))
	}
	return float64(fn(float32(phase-half), float32(amplitude), float32(-2*amplitude), float32(half)))
}

// Spin returns the angle in degrees at time t of a linear full rotation
// repeating every period seconds.
func Spin(t, period float64) float64 {
	if period <= 0 {
		return 0
	}
	return float64(ease.Linear(float32(wrap(t, period)), 0, 360, float32(period)))
}

// wrap returns t modulo period in [0, period).
func wrap(t, period float64) float64 {
	if t <= 0 {
		return 0
	}
	return math.Mod(t, period)
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
