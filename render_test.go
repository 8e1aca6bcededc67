package serene

import (
	"math"
	"testing"
)

// traverseScene runs traverse without Draw (no screen image needed).
func traverseScene(s *Scene) {
	s.commands = s.commands[:0]
	s.cullBounds = s.viewport.Bounds()
	treeOrder := 0
	s.traverse(s.root, identityTransform, 1.0, false, &treeOrder)
}

// --- Command emission ---

func TestSingleSpriteEmitsOneCommand(t *testing.T) {
	s := NewScene(800, 600)
	s.Root().AddChild(NewRect("r", 32, 32, ColorWhite))

	traverseScene(s)

	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(s.commands))
	}
	if s.commands[0].Type != CommandSprite {
		t.Errorf("Type = %d, want CommandSprite", s.commands[0].Type)
	}
}

func TestContainerEmitsNothing(t *testing.T) {
	s := NewScene(800, 600)
	s.Root().AddChild(NewContainer("c"))

	traverseScene(s)

	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0", len(s.commands))
	}
}

func TestInvisibleSubtreeSkipped(t *testing.T) {
	s := NewScene(800, 600)
	parent := NewContainer("parent")
	parent.Visible = false
	parent.AddChild(NewRect("child", 32, 32, ColorWhite))
	s.Root().AddChild(parent)

	traverseScene(s)

	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0 for invisible subtree", len(s.commands))
	}
}

func TestNonRenderableNodeSkipped(t *testing.T) {
	s := NewScene(800, 600)
	parent := NewRect("parent", 32, 32, ColorWhite)
	parent.Renderable = false
	parent.AddChild(NewRect("child", 16, 16, ColorWhite))
	s.Root().AddChild(parent)

	traverseScene(s)

	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1 (child only)", len(s.commands))
	}
	if s.commands[0].Node.Name != "child" {
		t.Errorf("command node = %q, want child", s.commands[0].Node.Name)
	}
}

func TestZeroAlphaSkipped(t *testing.T) {
	s := NewScene(800, 600)
	hidden := NewContainer("hidden")
	hidden.Alpha = 0
	hidden.AddChild(NewRect("child", 16, 16, ColorWhite))
	s.Root().AddChild(hidden)

	traverseScene(s)

	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0 under zero alpha", len(s.commands))
	}
}

func TestZIndexOrdersSiblings(t *testing.T) {
	s := NewScene(800, 600)
	top := NewRect("top", 10, 10, ColorWhite)
	top.ZIndex = 3
	bottom := NewRect("bottom", 10, 10, ColorWhite)
	bottom.ZIndex = 0
	mid := NewRect("mid", 10, 10, ColorWhite)
	mid.ZIndex = 1
	s.Root().AddChild(top)
	s.Root().AddChild(bottom)
	s.Root().AddChild(mid)

	traverseScene(s)

	want := []string{"bottom", "mid", "top"}
	if len(s.commands) != len(want) {
		t.Fatalf("commands = %d, want %d", len(s.commands), len(want))
	}
	for i, name := range want {
		if s.commands[i].Node.Name != name {
			t.Errorf("commands[%d] = %q, want %q", i, s.commands[i].Node.Name, name)
		}
	}
}

func TestAlphaMultipliesIntoColor(t *testing.T) {
	s := NewScene(800, 600)
	parent := NewContainer("parent")
	parent.Alpha = 0.5
	child := NewRect("child", 10, 10, Color{R: 1, G: 1, B: 1, A: 0.5})
	parent.AddChild(child)
	s.Root().AddChild(parent)

	traverseScene(s)

	if got := s.commands[0].Color.A; math.Abs(float64(got)-0.25) > 1e-6 {
		t.Errorf("command alpha = %v, want 0.25", got)
	}
}

// --- Culling ---

func TestOffscreenSpriteCulled(t *testing.T) {
	s := NewScene(800, 600)
	off := NewRect("off", 10, 10, ColorWhite)
	off.Y = 2000
	s.Root().AddChild(off)

	traverseScene(s)

	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0 for offscreen sprite", len(s.commands))
	}
}

func TestPetalFieldNeverCulled(t *testing.T) {
	s := NewScene(800, 600)
	field := NewPetalField("petals", LayerFront, DefaultPetalConfig(), 3)
	field.SetSize(800, 600)
	field.Y = -5000
	s.Root().AddChild(field)

	traverseScene(s)

	if len(s.commands) != 1 || s.commands[0].Type != CommandPetals {
		t.Fatalf("want a single petal command, got %d commands", len(s.commands))
	}
	if s.commands[0].boxW != 800 || s.commands[0].boxH != 600 {
		t.Errorf("box = %vx%v, want 800x600", s.commands[0].boxW, s.commands[0].boxH)
	}
}

func TestEmptyPetalFieldEmitsNothing(t *testing.T) {
	s := NewScene(800, 600)
	cfg := DefaultPetalConfig()
	cfg.FrontCount = 0
	s.Root().AddChild(NewPetalField("petals", LayerFront, cfg, 3))

	traverseScene(s)

	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0 for empty field", len(s.commands))
	}
}

// --- GeoM conversion ---

func TestCommandGeoMMatchesTransform(t *testing.T) {
	cmd := RenderCommand{Transform: [6]float64{2, 0.5, -0.5, 3, 10, 20}}
	m := commandGeoM(&cmd)
	x, y := m.Apply(1, 1)
	wx, wy := transformPoint(cmd.Transform, 1, 1)
	if math.Abs(x-wx) > 1e-9 || math.Abs(y-wy) > 1e-9 {
		t.Errorf("GeoM.Apply = (%v, %v), want (%v, %v)", x, y, wx, wy)
	}
}

// --- Benchmarks ---

func BenchmarkTraverse1k(b *testing.B) {
	s := NewScene(1280, 720)
	for i := 0; i < 1000; i++ {
		r := NewRect("r", 10, 10, ColorWhite)
		r.X = float64(i % 1280)
		r.Y = float64(i % 720)
		s.Root().AddChild(r)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		traverseScene(s)
	}
}
