package serene

import (
	"testing"
	"time"
)

func TestLayoutLayers(t *testing.T) {
	s := NewScene(800, 600)
	l := NewLayout(s, LayoutConfig{Seed: 3})

	if l.Node().Parent != s.Root() {
		t.Fatal("layout root should be attached to the scene root")
	}
	layers := l.Layers()
	wantNames := []string{"background", "petals:back", "content", "petals:front"}
	for i, n := range layers {
		if n.Name != wantNames[i] {
			t.Errorf("layer %d = %q, want %q", i, n.Name, wantNames[i])
		}
		if n.ZIndex != i {
			t.Errorf("layer %q ZIndex = %d, want %d", n.Name, n.ZIndex, i)
		}
	}
	if l.BackField().Layer() != LayerBack || l.FrontField().Layer() != LayerFront {
		t.Error("fields have the wrong layer identity")
	}
	if l.BackField().Count() != 17 || l.FrontField().Count() != 10 {
		t.Errorf("counts = %d/%d, want 17/10", l.BackField().Count(), l.FrontField().Count())
	}
	assertNear(t, "background alpha", l.Background().Alpha, DefaultBackgroundAlpha)
}

func TestLayoutDrawOrder(t *testing.T) {
	s := NewScene(800, 600)
	l := NewLayout(s, LayoutConfig{Seed: 3})
	l.Add(NewRect("card", 100, 100, ColorWhite))
	s.UpdateDelta(frame)

	traverseScene(s)
	var order []string
	for _, c := range s.commands {
		order = append(order, c.Node.Name)
	}
	want := []string{"background", "petals:back", "card", "petals:front"}
	if len(order) != len(want) {
		t.Fatalf("commands = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestLayoutSizesToViewport(t *testing.T) {
	s := NewScene(800, 600)
	l := NewLayout(s, LayoutConfig{Seed: 3})

	bg := l.Background()
	assertNear(t, "bg ScaleX", bg.ScaleX, 800)
	assertNear(t, "bg ScaleY", bg.ScaleY, 600)
	for _, n := range []*Node{l.Layers()[1], l.Layers()[3]} {
		if n.Width != 800 || n.Height != 600 {
			t.Errorf("%s box = %vx%v, want 800x600", n.Name, n.Width, n.Height)
		}
	}

	s.Viewport().SetSize(390, 844)
	s.UpdateDelta(frame)
	assertNear(t, "bg ScaleX after resize", bg.ScaleX, 390)
	assertNear(t, "bg ScaleY after resize", bg.ScaleY, 844)
	if front := l.Layers()[3]; front.Width != 390 || front.Height != 844 {
		t.Errorf("front box = %vx%v, want 390x844", front.Width, front.Height)
	}
}

func TestLayoutContentFollowsScroll(t *testing.T) {
	s := NewScene(800, 600)
	l := NewLayout(s, LayoutConfig{Seed: 3})
	card := NewRect("card", 200, 100, ColorWhite)
	card.SetPosition(0, 1500)
	l.Add(card)

	s.UpdateDelta(frame)
	if s.Viewport().PageHeight != 1600 {
		t.Fatalf("PageHeight = %v, want 1600 derived from content", s.Viewport().PageHeight)
	}

	s.Viewport().SetScroll(500)
	s.UpdateDelta(frame)
	assertNear(t, "content Y", l.Content().Y, -500)

	b, ok := s.NodeBounds(card)
	if !ok {
		t.Fatal("card should be measurable")
	}
	assertNear(t, "card screen Y", b.Y, 1000)

	// Page height stays stable while scrolled.
	if s.Viewport().PageHeight != 1600 {
		t.Errorf("PageHeight = %v after scroll, want 1600", s.Viewport().PageHeight)
	}

	back := l.Layers()[1]
	if back.Y != 0 {
		t.Errorf("back field Y = %v, petal fields should stay screen-fixed", back.Y)
	}
}

func TestLayoutSetPageHeight(t *testing.T) {
	s := NewScene(800, 600)
	l := NewLayout(s, LayoutConfig{Seed: 3})
	l.Add(NewRect("short", 100, 100, ColorWhite))
	l.SetPageHeight(4000)

	s.UpdateDelta(frame)
	if s.Viewport().PageHeight != 4000 {
		t.Errorf("PageHeight = %v, want 4000", s.Viewport().PageHeight)
	}
	s.Viewport().SetScroll(10000)
	if s.Viewport().ScrollY != 3400 {
		t.Errorf("ScrollY = %v, want clamped to 3400", s.Viewport().ScrollY)
	}
}

func TestLayoutReveal(t *testing.T) {
	s := NewScene(800, 600)
	l := NewLayout(s, LayoutConfig{Seed: 3})
	card := NewRect("card", 200, 100, ColorWhite)
	card.SetPosition(20, 40)

	r := l.Reveal(card, RevealConfig{})
	if r.Node().Parent != l.Content() {
		t.Error("reveal wrapper should be a child of the content layer")
	}
	if len(s.Reveals()) != 1 {
		t.Errorf("Reveals = %d, want 1", len(s.Reveals()))
	}
	stepScene(t, s, 100*time.Millisecond, 10*time.Millisecond)
	if r.State() != RevealRevealed {
		t.Errorf("state = %v, want revealed (visible at mount, no delay)", r.State())
	}
}

func TestLayoutPetalsAnimate(t *testing.T) {
	s := NewScene(800, 600)
	l := NewLayout(s, LayoutConfig{Seed: 3})
	stepScene(t, s, time.Second, 10*time.Millisecond)
	assertNear(t, "back elapsed", l.BackField().Elapsed(), 1)
	assertNear(t, "front elapsed", l.FrontField().Elapsed(), 1)
}

func TestLayoutSeed(t *testing.T) {
	a := NewLayout(NewScene(800, 600), LayoutConfig{Seed: 99})
	b := NewLayout(NewScene(800, 600), LayoutConfig{Seed: 99})
	pa, pb := a.BackField().Petals(), b.BackField().Petals()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("back petal %d differs for the same seed", i)
		}
	}
	if a.FrontField().Petals()[0] == a.BackField().Petals()[0] {
		t.Error("front and back fields should draw from different seeds")
	}
}

func TestLayoutRegenerateAndDispose(t *testing.T) {
	s := NewScene(800, 600)
	l := NewLayout(s, LayoutConfig{Seed: 3})
	l.Regenerate()
	if l.BackField().Generation() != 2 || l.FrontField().Generation() != 2 {
		t.Error("Regenerate should replace both populations")
	}
	l.Dispose()
	if s.Root().NumChildren() != 0 {
		t.Errorf("root children = %d, want 0 after Dispose", s.Root().NumChildren())
	}
}

func TestLayoutCustomPetals(t *testing.T) {
	cfg := DefaultPetalConfig()
	cfg.BackCount, cfg.FrontCount = 6, 2
	l := NewLayout(NewScene(800, 600), LayoutConfig{Petals: cfg, Seed: 1, BackgroundAlpha: 0.3})
	if l.BackField().Count() != 6 || l.FrontField().Count() != 2 {
		t.Errorf("counts = %d/%d, want 6/2", l.BackField().Count(), l.FrontField().Count())
	}
	assertNear(t, "background alpha", l.Background().Alpha, 0.3)
}
