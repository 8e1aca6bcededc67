package serene

import (
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
)

// PetalField owns one layer's petal population and its elapsed time. The
// population is fixed in size: Regenerate and SetLayer replace it wholesale.
type PetalField struct {
	config     PetalConfig
	layer      Layer
	rng        *rand.Rand
	petals     []Petal
	poses      []PetalPose
	images     []*ebiten.Image
	elapsed    float64
	active     bool
	generation int
}

// newPetalField creates a field and generates its first population.
func newPetalField(layer Layer, cfg PetalConfig, seed uint64) *PetalField {
	if seed == 0 {
		seed = rand.Uint64()
	}
	f := &PetalField{
		config: cfg,
		layer:  layer,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		active: true,
	}
	f.Regenerate()
	return f
}

// Regenerate draws a fresh population for the current layer and restarts
// the clock.
func (f *PetalField) Regenerate() {
	f.petals = GeneratePetals(f.layer, f.config, f.rng)
	if cap(f.poses) < len(f.petals) {
		f.poses = make([]PetalPose, len(f.petals))
	}
	f.poses = f.poses[:len(f.petals)]
	f.elapsed = 0
	f.generation++
	f.refresh()
}

// SetLayer switches layer identity. A change regenerates the population.
func (f *PetalField) SetLayer(l Layer) {
	if l == f.layer {
		return
	}
	f.layer = l
	f.Regenerate()
}

// Layer returns the field's layer identity.
func (f *PetalField) Layer() Layer {
	return f.layer
}

// Start resumes animation.
func (f *PetalField) Start() {
	f.active = true
}

// Stop freezes animation at the current instant.
func (f *PetalField) Stop() {
	f.active = false
}

// IsActive reports whether the field is animating.
func (f *PetalField) IsActive() bool {
	return f.active
}

// Count returns the population size.
func (f *PetalField) Count() int {
	return len(f.petals)
}

// Petals returns the population. The returned slice MUST NOT be mutated.
func (f *PetalField) Petals() []Petal {
	return f.petals
}

// Poses returns the poses computed on the last update, index-aligned with
// Petals. The returned slice MUST NOT be mutated.
func (f *PetalField) Poses() []PetalPose {
	return f.poses
}

// Elapsed returns seconds since the population was generated.
func (f *PetalField) Elapsed() float64 {
	return f.elapsed
}

// Generation counts how many populations this field has produced.
func (f *PetalField) Generation() int {
	return f.generation
}

// SetImages sets the petal artwork. Petal.Variant indexes into imgs,
// wrapping when there are fewer images than variants.
func (f *PetalField) SetImages(imgs []*ebiten.Image) {
	f.images = imgs
}

// Config returns a copy of the generation config.
func (f *PetalField) Config() PetalConfig {
	return f.config
}

// update advances the field by dt seconds.
func (f *PetalField) update(dt float64) {
	if !f.active {
		return
	}
	f.elapsed += dt
	f.refresh()
}

// refresh recomputes every pose at the current elapsed time.
func (f *PetalField) refresh() {
	for i := range f.petals {
		f.poses[i] = f.petals[i].Pose(f.elapsed)
	}
}

// imageFor returns the artwork for a petal, or nil to use WhitePixel.
func (f *PetalField) imageFor(p *Petal) *ebiten.Image {
	if len(f.images) == 0 {
		return nil
	}
	return f.images[p.Variant%len(f.images)]
}

// NewPetalField creates a petal field node. The node's Width and Height
// define the box that petal percentages map onto. A zero seed draws one at
// random.
func NewPetalField(name string, layer Layer, cfg PetalConfig, seed uint64) *Node {
	n := &Node{
		Name:  name,
		Type:  NodeTypePetalField,
		Field: newPetalField(layer, cfg, seed),
	}
	nodeDefaults(n)
	return n
}

// updatePetalFields walks the tree and advances every petal field.
func updatePetalFields(n *Node, dt float64) {
	if n.Type == NodeTypePetalField && n.Field != nil {
		n.Field.update(dt)
	}
	for _, child := range n.children {
		updatePetalFields(child, dt)
	}
}
