package serene

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// wheelStep is the scroll distance in pixels per wheel notch.
const wheelStep = 60.0

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	// Resizable lets the window change size; the viewport follows.
	Resizable bool
}

// Run opens a window and drives scene until the window closes or an update
// returns an error. The mouse wheel and arrow keys scroll the viewport; Home
// and End animate to the top and bottom of the page.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("serene: invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	scene.viewport.SetSize(float64(cfg.Width), float64(cfg.Height))
	if cfg.ShowFPS {
		scene.Root().AddChild(NewFPSWidget())
	}
	if err := ebiten.RunGame(&gameShell{scene: scene}); err != nil {
		return fmt.Errorf("serene: run: %w", err)
	}
	return nil
}

// gameShell adapts a Scene to ebiten.Game.
type gameShell struct {
	scene *Scene
}

func (g *gameShell) Update() error {
	vp := g.scene.viewport
	if _, dy := ebiten.Wheel(); dy != 0 {
		vp.ScrollBy(-dy * wheelStep)
	}
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown):
		vp.ScrollBy(wheelStep / 6)
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp):
		vp.ScrollBy(-wheelStep / 6)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		vp.ScrollTo(0, 0.6, nil)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		vp.ScrollTo(max(vp.PageHeight-vp.Height, 0), 0.6, nil)
	}
	return g.scene.Update()
}

func (g *gameShell) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *gameShell) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := float64(outsideWidth), float64(outsideHeight)
	if w != g.scene.viewport.Width || h != g.scene.viewport.Height {
		g.scene.viewport.SetSize(w, h)
	}
	return outsideWidth, outsideHeight
}
