// Package serene renders a single-page marketing site on [Ebitengine]: a
// scrolling content layer whose blocks fade and slide into place as they
// become visible, framed by two layers of procedurally falling petals.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	scene := serene.NewScene(1280, 720)
//	page := serene.NewLayout(scene, serene.LayoutConfig{PetalImages: petals})
//	page.Reveal(serene.NewRect("hero", 600, 200, serene.ColorWhite), serene.RevealConfig{})
//	serene.Run(scene, serene.RunConfig{Title: "Landing", Width: 1280, Height: 720})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly.
//
// # Reveals
//
// A [Reveal] wraps a content node and shows it exactly once. After a short
// settle delay the wrapper's box is compared with the viewport: a block that
// is already fully on screen is revealed [RevealConfig].Delay after mount;
// anything else is handed to the scene's [Observer] and revealed once at
// least 10% of it enters the viewport (grown by 50px at the bottom), after
// the scroll delay. The transition fades alpha from 0 to 1 and slides the
// block up 30px over 1.8s with an out-quint curve (via [gween]).
//
//	r := scene.Reveal(parent, card, serene.RevealConfig{Delay: 200 * time.Millisecond}.
//		WithScrollDelay(100 * time.Millisecond))
//
// All timing runs on the scene's virtual clock ([Scheduler]), advanced by
// [Scene.UpdateDelta], so reveal behavior is deterministic under test.
//
// # Petals
//
// [NewPetalField] creates a node holding a fixed population of [Petal]
// values generated once per mount or layer change. Every frame each
// petal's [PetalPose] is a pure function of elapsed time: a linear fall
// with a fade envelope plus independent sway, rocking and spin. The back
// layer carries more petals than the front one.
//
// # Layout
//
// [NewLayout] stacks a faint background, the back petal field, the content
// layer and the front petal field. Only the content layer scrolls.
//
// # Configuration and logging
//
// [LoadConfig] reads YAML (gopkg.in/yaml.v3) on top of embedded defaults.
// Logging goes through [go.uber.org/zap]; the scene logs nothing unless a
// logger is set with [Scene.SetLogger].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package serene
