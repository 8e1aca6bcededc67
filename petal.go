package serene

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/tanema/gween/ease"
)

// Layer identifies which side of the page content a petal field renders on.
type Layer uint8

const (
	LayerBack  Layer = iota // below content; denser, reads as farther away
	LayerFront              // above content
)

func (l Layer) String() string {
	switch l {
	case LayerBack:
		return "back"
	case LayerFront:
		return "front"
	default:
		return fmt.Sprintf("layer(%d)", uint8(l))
	}
}

// PetalConfig holds the sampling ranges for petal generation. Positions are
// percentages of the field box; durations are seconds; angles are degrees.
type PetalConfig struct {
	FrontCount int `yaml:"front_count"`
	BackCount  int `yaml:"back_count"`

	// OffscreenChance is the probability a petal starts left of the field
	// (OffscreenStartX) rather than inside the branch band (BandStartX).
	OffscreenChance float64 `yaml:"offscreen_chance"`
	OffscreenStartX Range   `yaml:"offscreen_start_x"`
	BandStartX      Range   `yaml:"band_start_x"`
	StartY          Range   `yaml:"start_y"`

	// Angle is the fall angle from vertical; it maps linearly onto Drift.
	Angle Range `yaml:"angle"`
	Drift Range `yaml:"drift"`
	EndY  Range `yaml:"end_y"`

	FallDuration Range `yaml:"fall_duration"`
	// DelayWindow spreads first-cycle start times over [0, DelayWindow).
	DelayWindow float64 `yaml:"delay_window"`

	Scale         Range `yaml:"scale"`
	SwayAmplitude Range `yaml:"sway_amplitude"`
	SwayDuration  Range `yaml:"sway_duration"`
	RockX         Range `yaml:"rock_x"`
	RockXDuration Range `yaml:"rock_x_duration"`
	RockY         Range `yaml:"rock_y"`
	RockYDuration Range `yaml:"rock_y_duration"`
	// SpinFactor multiplies the fall duration to give the spin period.
	SpinFactor float64 `yaml:"spin_factor"`

	// FadeIn is the fraction of the cycle over which opacity ramps to 1.
	FadeIn       float64 `yaml:"fade_in"`
	FadeOutStart Range   `yaml:"fade_out_start"`

	// Variants is the number of petal images to pick from.
	Variants int `yaml:"variants"`
	// SpriteWidth is the rendered width of a petal at scale 1, in pixels.
	SpriteWidth float64 `yaml:"sprite_width"`
}

// DefaultPetalConfig returns the tuning used by the landing page.
func DefaultPetalConfig() PetalConfig {
	return PetalConfig{
		FrontCount:      10,
		BackCount:       17,
		OffscreenChance: 0.3,
		OffscreenStartX: Range{-15, 0},
		BandStartX:      Range{0, 40},
		StartY:          Range{30.5, 50},
		Angle:           Range{15, 45},
		Drift:           Range{25, 100},
		EndY:            Range{120, 130},
		FallDuration:    Range{30, 50},
		DelayWindow:     30,
		Scale:           Range{0.5, 1},
		SwayAmplitude:   Range{20, 50},
		SwayDuration:    Range{4, 8},
		RockX:           Range{25, 50},
		RockXDuration:   Range{6, 12},
		RockY:           Range{30, 60},
		RockYDuration:   Range{5, 10},
		SpinFactor:      1.5,
		FadeIn:          0.1,
		FadeOutStart:    Range{0.6, 0.85},
		Variants:        5,
		SpriteWidth:     30,
	}
}

// Count returns the population size for a layer.
func (c PetalConfig) Count(l Layer) int {
	if l == LayerFront {
		return c.FrontCount
	}
	return c.BackCount
}

// Validate reports the first inconsistent setting.
func (c PetalConfig) Validate() error {
	if c.FrontCount < 0 || c.BackCount < 0 {
		return fmt.Errorf("petal counts must be non-negative (front %d, back %d)", c.FrontCount, c.BackCount)
	}
	if c.FrontCount >= c.BackCount {
		return fmt.Errorf("front count %d must be below back count %d", c.FrontCount, c.BackCount)
	}
	if c.OffscreenChance < 0 || c.OffscreenChance > 1 {
		return fmt.Errorf("offscreen chance %v outside [0, 1]", c.OffscreenChance)
	}
	ranges := []struct {
		name string
		r    Range
	}{
		{"offscreen_start_x", c.OffscreenStartX},
		{"band_start_x", c.BandStartX},
		{"start_y", c.StartY},
		{"angle", c.Angle},
		{"drift", c.Drift},
		{"end_y", c.EndY},
		{"fall_duration", c.FallDuration},
		{"scale", c.Scale},
		{"sway_amplitude", c.SwayAmplitude},
		{"sway_duration", c.SwayDuration},
		{"rock_x", c.RockX},
		{"rock_x_duration", c.RockXDuration},
		{"rock_y", c.RockY},
		{"rock_y_duration", c.RockYDuration},
		{"fade_out_start", c.FadeOutStart},
	}
	for _, rr := range ranges {
		if rr.r.Min > rr.r.Max {
			return fmt.Errorf("%s: min %v above max %v", rr.name, rr.r.Min, rr.r.Max)
		}
	}
	if c.FallDuration.Min <= 0 {
		return fmt.Errorf("fall_duration must be positive, got %v", c.FallDuration.Min)
	}
	if c.DelayWindow < c.FallDuration.Min {
		return fmt.Errorf("delay window %v shorter than the shortest fall %v", c.DelayWindow, c.FallDuration.Min)
	}
	if c.EndY.Min <= c.StartY.Max {
		return fmt.Errorf("end_y min %v must lie below start_y max %v", c.EndY.Min, c.StartY.Max)
	}
	if c.FadeOutStart.Min < 0 || c.FadeOutStart.Max >= 1 {
		return fmt.Errorf("fade_out_start %v must lie within [0, 1)", c.FadeOutStart)
	}
	if c.FadeIn < 0 || c.FadeIn >= c.FadeOutStart.Min {
		return fmt.Errorf("fade_in %v must lie within [0, fade_out_start.min)", c.FadeIn)
	}
	if c.Variants < 1 {
		return fmt.Errorf("variants must be at least 1, got %d", c.Variants)
	}
	return nil
}

// DriftForAngle maps a fall angle onto horizontal drift. The map is linear
// from Angle.Min->Drift.Min to Angle.Max->Drift.Max and clamps outside it.
func (c PetalConfig) DriftForAngle(angle float64) float64 {
	span := c.Angle.Max - c.Angle.Min
	if span <= 0 {
		return c.Drift.Min
	}
	t := clamp01((angle - c.Angle.Min) / span)
	return lerp(c.Drift.Min, c.Drift.Max, t)
}

// Petal holds one petal's motion parameters. Values are drawn once by
// GeneratePetals and never change.
type Petal struct {
	Index int

	StartX, StartY float64
	EndX, EndY     float64
	Offscreen      bool
	Angle          float64
	Drift          float64

	FallDuration float64
	FallDelay    float64

	SwayAmplitude float64
	SwayDuration  float64
	RockX         float64
	RockXDuration float64
	RockY         float64
	RockYDuration float64
	SpinDuration  float64

	Scale        float64
	Variant      int
	FadeIn       float64
	FadeOutStart float64
}

// GeneratePetals draws a full population for layer from rng.
func GeneratePetals(layer Layer, cfg PetalConfig, rng *rand.Rand) []Petal {
	n := cfg.Count(layer)
	petals := make([]Petal, n)
	for i := range petals {
		petals[i] = samplePetal(i, cfg, rng)
	}
	return petals
}

func samplePetal(i int, cfg PetalConfig, rng *rand.Rand) Petal {
	p := Petal{Index: i}

	p.Offscreen = rng.Float64() < cfg.OffscreenChance
	if p.Offscreen {
		p.StartX = cfg.OffscreenStartX.Sample(rng)
	} else {
		p.StartX = cfg.BandStartX.Sample(rng)
	}
	p.StartY = cfg.StartY.Sample(rng)

	p.Angle = cfg.Angle.Sample(rng)
	p.Drift = cfg.DriftForAngle(p.Angle)
	p.EndX = p.StartX + p.Drift
	p.EndY = cfg.EndY.Sample(rng)

	p.FallDelay = rng.Float64() * cfg.DelayWindow
	p.FallDuration = cfg.FallDuration.Sample(rng)
	p.Scale = cfg.Scale.Sample(rng)
	if cfg.Variants > 0 {
		p.Variant = rng.IntN(cfg.Variants)
	}

	p.SwayDuration = cfg.SwayDuration.Sample(rng)
	p.SwayAmplitude = cfg.SwayAmplitude.Sample(rng)
	p.RockXDuration = cfg.RockXDuration.Sample(rng)
	p.RockYDuration = cfg.RockYDuration.Sample(rng)
	p.RockY = cfg.RockY.Sample(rng)
	p.RockX = cfg.RockX.Sample(rng)
	p.SpinDuration = p.FallDuration * cfg.SpinFactor

	p.FadeIn = cfg.FadeIn
	p.FadeOutStart = cfg.FadeOutStart.Sample(rng)
	return p
}

// PetalPose is a petal's visual state at one instant.
type PetalPose struct {
	// X and Y are percentages of the field box.
	X, Y  float64
	Alpha float64
	// Sway is a horizontal pixel offset applied on top of X.
	Sway float64
	// RockX, RockY and Spin are rotations in degrees.
	RockX, RockY, Spin float64
	Scale              float64
	// Cycle counts completed falls; -1 before the first one starts.
	Cycle int
}

// Pose evaluates the petal at t seconds after its field was generated. The
// fall path and opacity repeat every FallDuration once FallDelay has passed;
// sway, rocking and spin loop from t=0.
func (p Petal) Pose(t float64) PetalPose {
	pose := PetalPose{
		X:     p.StartX,
		Y:     p.StartY,
		Scale: p.Scale,
		Cycle: -1,
		Sway:  Oscillate(t, p.SwayAmplitude, p.SwayDuration, ease.InOutSine),
		RockX: Oscillate(t, p.RockX, p.RockXDuration, ease.InOutSine),
		RockY: Oscillate(t, p.RockY, p.RockYDuration, ease.InOutSine),
		Spin:  Spin(t, p.SpinDuration),
	}

	cycleT := t - p.FallDelay
	if cycleT < 0 || p.FallDuration <= 0 {
		return pose
	}
	pose.Cycle = int(math.Floor(cycleT / p.FallDuration))
	u := math.Mod(cycleT, p.FallDuration) / p.FallDuration

	pose.X = lerp(p.StartX, p.EndX, u)
	pose.Y = lerp(p.StartY, p.EndY, u)
	pose.Alpha = fadeEnvelope(u, p.FadeIn, p.FadeOutStart)
	return pose
}

// fadeEnvelope is the opacity at cycle progress u: 0 -> 1 over [0, in],
// held at 1, then 1 -> 0 over [out, 1].
func fadeEnvelope(u, in, out float64) float64 {
	switch {
	case u <= 0:
		return 0
	case u < in:
		return u / in
	case u <= out:
		return 1
	case u >= 1:
		return 0
	default:
		return 1 - (u-out)/(1-out)
	}
}
