package serene

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Layer stacking order inside a Layout.
const (
	ZBackground  = 0
	ZBackPetals  = 1
	ZContent     = 2
	ZFrontPetals = 3
)

// DefaultBackgroundAlpha is the opacity of the background texture.
const DefaultBackgroundAlpha = 0.15

// LayoutConfig configures NewLayout.
type LayoutConfig struct {
	// Background is drawn to cover the viewport. nil draws a solid
	// BackgroundColor rectangle instead.
	Background      *ebiten.Image
	BackgroundColor Color
	// BackgroundAlpha defaults to DefaultBackgroundAlpha when zero.
	BackgroundAlpha float64

	// Petals defaults to DefaultPetalConfig when its counts are zero.
	Petals      PetalConfig
	PetalImages []*ebiten.Image
	// Seed fixes both petal populations. Zero draws a random seed.
	Seed uint64
}

// Layout composes the page: a faint background texture, the back petal
// field, the scrolling content layer and the front petal field. Only the
// content layer follows the viewport scroll.
type Layout struct {
	scene *Scene
	root  *Node

	background *Node
	back       *Node
	content    *Node
	front      *Node

	bgImage  *ebiten.Image
	lastW    float64
	lastH    float64
	lastPage float64
}

// NewLayout builds the layers under the scene root.
func NewLayout(scene *Scene, cfg LayoutConfig) *Layout {
	if cfg.BackgroundAlpha == 0 {
		cfg.BackgroundAlpha = DefaultBackgroundAlpha
	}
	if cfg.Petals.FrontCount == 0 && cfg.Petals.BackCount == 0 {
		cfg.Petals = DefaultPetalConfig()
	}

	l := &Layout{scene: scene, root: NewContainer("layout"), bgImage: cfg.Background}

	if cfg.Background != nil {
		l.background = NewSprite("background", cfg.Background)
	} else {
		c := cfg.BackgroundColor
		if c == (Color{}) {
			c = ColorWhite
		}
		l.background = NewRect("background", 1, 1, c)
	}
	l.background.Alpha = cfg.BackgroundAlpha
	l.background.ZIndex = ZBackground

	backSeed, frontSeed := cfg.Seed, cfg.Seed
	if cfg.Seed != 0 {
		frontSeed = cfg.Seed + 1
	}
	l.back = NewPetalField("petals:back", LayerBack, cfg.Petals, backSeed)
	l.back.ZIndex = ZBackPetals
	l.back.Field.SetImages(cfg.PetalImages)

	l.content = NewContainer("content")
	l.content.ZIndex = ZContent

	l.front = NewPetalField("petals:front", LayerFront, cfg.Petals, frontSeed)
	l.front.ZIndex = ZFrontPetals
	l.front.Field.SetImages(cfg.PetalImages)

	l.root.AddChild(l.background)
	l.root.AddChild(l.back)
	l.root.AddChild(l.content)
	l.root.AddChild(l.front)
	l.root.OnUpdate = l.sync
	scene.Root().AddChild(l.root)

	vp := scene.Viewport()
	l.resize(vp.Width, vp.Height)
	return l
}

// Node returns the layout's root container.
func (l *Layout) Node() *Node { return l.root }

// Content returns the scrolling content layer.
func (l *Layout) Content() *Node { return l.content }

// Background returns the background node.
func (l *Layout) Background() *Node { return l.background }

// BackField returns the petal field drawn below the content.
func (l *Layout) BackField() *PetalField { return l.back.Field }

// FrontField returns the petal field drawn above the content.
func (l *Layout) FrontField() *PetalField { return l.front.Field }

// Layers returns the four layer nodes in stacking order.
func (l *Layout) Layers() []*Node {
	return []*Node{l.background, l.back, l.content, l.front}
}

// Add attaches n to the content layer without a reveal.
func (l *Layout) Add(n *Node) {
	l.content.AddChild(n)
}

// Reveal attaches n to the content layer wrapped in a mounted Reveal.
func (l *Layout) Reveal(n *Node, cfg RevealConfig) *Reveal {
	return l.scene.Reveal(l.content, n, cfg)
}

// SetPageHeight sets the scrollable page height. Zero derives it from the
// content layer's extent on every update.
func (l *Layout) SetPageHeight(h float64) {
	l.content.Height = h
	l.scene.Viewport().PageHeight = h
}

// Regenerate draws fresh populations for both petal fields.
func (l *Layout) Regenerate() {
	l.back.Field.Regenerate()
	l.front.Field.Regenerate()
}

// Dispose removes the layout and everything in it from the scene.
func (l *Layout) Dispose() {
	l.root.Dispose()
}

// sync runs once per tick before world transforms are refreshed.
func (l *Layout) sync(float64) {
	vp := l.scene.Viewport()
	if vp.Width != l.lastW || vp.Height != l.lastH {
		l.resize(vp.Width, vp.Height)
	}
	page := l.content.Height
	if page == 0 {
		if b, ok := localBounds(l.content, identityTransform); ok {
			page = b.Bottom() - l.content.Y
		}
	}
	if page != l.lastPage {
		vp.PageHeight = page
		l.lastPage = page
	}
	if y := -vp.ScrollY; l.content.Y != y {
		l.content.SetPosition(0, y)
	}
}

// resize fits the background and petal fields to the viewport.
func (l *Layout) resize(w, h float64) {
	l.lastW, l.lastH = w, h
	if l.bgImage != nil {
		b := l.bgImage.Bounds()
		iw, ih := float64(b.Dx()), float64(b.Dy())
		if iw > 0 && ih > 0 {
			k := max(w/iw, h/ih)
			l.background.SetScale(k, k)
		}
	} else {
		l.background.SetScale(w, h)
	}
	l.back.SetSize(w, h)
	l.front.SetSize(w, h)
}
