package serene

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ViewportQuery reports element geometry and the visible area. Both are in
// screen space.
type ViewportQuery interface {
	// NodeBounds returns the node's screen-space box. ok is false when the
	// node is disposed or not attached to the scene.
	NodeBounds(n *Node) (r Rect, ok bool)
	// ViewportBounds returns the visible screen area.
	ViewportBounds() Rect
}

// scrollAnim holds an active scroll-to tween.
type scrollAnim struct {
	tween *gween.Tween
}

// Viewport is the window onto a vertically scrolling page. The page content
// is offset by -ScrollY; everything else stays fixed to the screen.
type Viewport struct {
	// Width and Height are the screen size in pixels.
	Width, Height float64
	// ScrollY is the page's vertical scroll offset in pixels.
	ScrollY float64
	// PageHeight bounds scrolling to [0, PageHeight-Height]. Zero disables
	// clamping.
	PageHeight float64

	scrollTween *scrollAnim
	maxScrollY  float64
}

// newViewport creates a Viewport of the given screen size.
func newViewport(w, h float64) *Viewport {
	return &Viewport{Width: w, Height: h}
}

// Bounds returns the visible screen rectangle.
func (v *Viewport) Bounds() Rect {
	return Rect{Width: v.Width, Height: v.Height}
}

// SetSize updates the screen size and re-clamps the scroll offset.
func (v *Viewport) SetSize(w, h float64) {
	v.Width, v.Height = w, h
	v.clamp()
}

// ScrollBy moves the page by dy pixels immediately and cancels any running
// scroll animation.
func (v *Viewport) ScrollBy(dy float64) {
	v.scrollTween = nil
	v.ScrollY += dy
	v.clamp()
}

// SetScroll jumps to the given offset.
func (v *Viewport) SetScroll(y float64) {
	v.scrollTween = nil
	v.ScrollY = y
	v.clamp()
}

// ScrollTo animates the page offset to y over duration seconds.
func (v *Viewport) ScrollTo(y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.InOutCubic
	}
	v.scrollTween = &scrollAnim{
		tween: gween.New(float32(v.ScrollY), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (v *Viewport) Scrolling() bool {
	return v.scrollTween != nil
}

// ScrollFraction returns how far down the page the bottom of the viewport
// has reached, in [0, 1]. Pages shorter than the viewport report 1.
func (v *Viewport) ScrollFraction() float64 {
	if v.PageHeight <= 0 || v.PageHeight <= v.Height {
		return 1
	}
	return clamp01((v.ScrollY + v.Height) / v.PageHeight)
}

// MaxScrollY returns the deepest scroll offset reached so far.
func (v *Viewport) MaxScrollY() float64 {
	return v.maxScrollY
}

// update advances the scroll animation. Called from Scene.Update.
func (v *Viewport) update(dt float32) {
	if v.scrollTween != nil {
		val, done := v.scrollTween.tween.Update(dt)
		v.ScrollY = float64(val)
		if done {
			v.scrollTween = nil
		}
	}
	v.clamp()
}

// clamp restricts ScrollY to the page.
func (v *Viewport) clamp() {
	if v.PageHeight > 0 {
		maxY := v.PageHeight - v.Height
		if maxY < 0 {
			maxY = 0
		}
		v.ScrollY = max(0, min(v.ScrollY, maxY))
	} else if v.ScrollY < 0 {
		v.ScrollY = 0
	}
	if v.ScrollY > v.maxScrollY {
		v.maxScrollY = v.ScrollY
	}
}
