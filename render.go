package serene

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandSprite CommandType = iota // DrawImage
	CommandPetals                    // one DrawImage per visible petal
)

// color32 is a compact RGBA color using float32, for render commands only.
type color32 struct {
	R, G, B, A float32
}

// RenderCommand is a single draw instruction emitted during scene traversal.
type RenderCommand struct {
	Type      CommandType
	Node      *Node
	Transform [6]float64
	Color     color32
	BlendMode BlendMode
	treeOrder int

	image *ebiten.Image
	field *PetalField
	boxW  float64
	boxH  float64
}

// traverse walks the node tree depth-first, updating transforms and emitting
// render commands for visible, renderable nodes. Children are visited in
// ZIndex order, so sibling stacking follows ZIndex.
func (s *Scene) traverse(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool, treeOrder *int) {
	if !n.Visible {
		return
	}

	recompute := n.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalTransform(n)
		n.worldTransform = multiplyAffine(parentTransform, local)
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	// Culling only suppresses this node's command; children are always
	// traversed since their world positions may differ from the parent's box.
	culled := n.Renderable && shouldCull(n, s.cullBounds)

	if n.Renderable && !culled && n.worldAlpha > 0 {
		switch n.Type {
		case NodeTypeSprite:
			*treeOrder++
			s.commands = append(s.commands, RenderCommand{
				Type:      CommandSprite,
				Node:      n,
				Transform: n.worldTransform,
				Color:     color32{float32(n.Color.R), float32(n.Color.G), float32(n.Color.B), float32(n.Color.A * n.worldAlpha)},
				BlendMode: n.BlendMode,
				treeOrder: *treeOrder,
				image:     n.Image,
			})
		case NodeTypePetalField:
			if n.Field != nil && n.Field.Count() > 0 {
				*treeOrder++
				s.commands = append(s.commands, RenderCommand{
					Type:      CommandPetals,
					Node:      n,
					Transform: n.worldTransform,
					Color:     color32{float32(n.Color.R), float32(n.Color.G), float32(n.Color.B), float32(n.Color.A * n.worldAlpha)},
					BlendMode: n.BlendMode,
					treeOrder: *treeOrder,
					field:     n.Field,
					boxW:      n.Width,
					boxH:      n.Height,
				})
			}
			// NodeTypeContainer doesn't emit commands
		}
	}

	if len(n.children) == 0 {
		return
	}
	children := n.children
	if !n.childrenSorted {
		rebuildSortedChildren(n)
	}
	if n.sortedChildren != nil {
		children = n.sortedChildren
	}
	for _, child := range children {
		s.traverse(child, n.worldTransform, n.worldAlpha, recompute, treeOrder)
	}
}

// rebuildSortedChildren rebuilds the ZIndex-sorted traversal order for a node.
// Uses insertion sort: zero allocations, stable, and optimal for the typical
// case of few children that are nearly sorted (O(n) when already sorted).
func rebuildSortedChildren(n *Node) {
	nc := len(n.children)
	if cap(n.sortedChildren) < nc {
		n.sortedChildren = make([]*Node, nc)
	}
	n.sortedChildren = n.sortedChildren[:nc]
	copy(n.sortedChildren, n.children)
	for i := 1; i < nc; i++ {
		key := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && n.sortedChildren[j].ZIndex > key.ZIndex {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = key
	}
	n.childrenSorted = true
}

// shouldCull returns true if the node lies entirely outside cullBounds.
// Containers and petal fields are never culled; petals drift outside
// their field's box.
func shouldCull(n *Node, cullBounds Rect) bool {
	if n.Type != NodeTypeSprite || cullBounds.Area() == 0 {
		return false
	}
	w, h := nodeDimensions(n)
	if w == 0 && h == 0 {
		return false
	}
	return !worldAABB(n.worldTransform, w, h).Intersects(cullBounds)
}

// --- Submission ---

// submit draws every command in order onto target.
func (s *Scene) submit(target *ebiten.Image) {
	var op ebiten.DrawImageOptions
	for i := range s.commands {
		cmd := &s.commands[i]
		switch cmd.Type {
		case CommandSprite:
			submitSprite(target, cmd, &op)
		case CommandPetals:
			submitPetals(target, cmd, &op)
		}
	}
}

// submitSprite draws a single sprite command using DrawImage.
func submitSprite(target *ebiten.Image, cmd *RenderCommand, op *ebiten.DrawImageOptions) {
	img := cmd.image
	if img == nil {
		img = WhitePixel()
	}
	op.GeoM.Reset()
	op.GeoM.Concat(commandGeoM(cmd))
	op.ColorScale.Reset()
	a := cmd.Color.A
	op.ColorScale.Scale(cmd.Color.R*a, cmd.Color.G*a, cmd.Color.B*a, a)
	op.Blend = cmd.BlendMode.EbitenBlend()
	target.DrawImage(img, op)
}

// submitPetals draws each visible petal of a field. Rocking about the X and
// Y axes is projected as foreshortening of the sprite's height and width.
func submitPetals(target *ebiten.Image, cmd *RenderCommand, op *ebiten.DrawImageOptions) {
	f := cmd.field
	base := commandGeoM(cmd)
	spriteW := f.config.SpriteWidth
	if spriteW <= 0 {
		spriteW = 30
	}
	for i := range f.petals {
		pose := &f.poses[i]
		if pose.Alpha <= 0 {
			continue
		}
		img := f.imageFor(&f.petals[i])
		if img == nil {
			img = WhitePixel()
		}
		b := img.Bounds()
		w, h := float64(b.Dx()), float64(b.Dy())
		if w == 0 || h == 0 {
			continue
		}
		k := spriteW / w * pose.Scale

		op.GeoM.Reset()
		op.GeoM.Translate(-w/2, -h/2)
		op.GeoM.Scale(k*math.Cos(pose.RockY*math.Pi/180), k*math.Cos(pose.RockX*math.Pi/180))
		op.GeoM.Rotate(pose.Spin * math.Pi / 180)
		op.GeoM.Translate(pose.X/100*cmd.boxW+pose.Sway, pose.Y/100*cmd.boxH)
		op.GeoM.Concat(base)

		ca := float32(pose.Alpha) * cmd.Color.A
		op.ColorScale.Reset()
		op.ColorScale.Scale(cmd.Color.R*ca, cmd.Color.G*ca, cmd.Color.B*ca, ca)
		op.Blend = cmd.BlendMode.EbitenBlend()

		target.DrawImage(img, op)
	}
}

// commandGeoM converts a command's affine transform into an ebiten.GeoM.
func commandGeoM(cmd *RenderCommand) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, cmd.Transform[0])
	m.SetElement(1, 0, cmd.Transform[1])
	m.SetElement(0, 1, cmd.Transform[2])
	m.SetElement(1, 1, cmd.Transform[3])
	m.SetElement(0, 2, cmd.Transform[4])
	m.SetElement(1, 2, cmd.Transform[5])
	return m
}
