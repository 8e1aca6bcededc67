package serene

import (
	"encoding/json"
	"fmt"
	"time"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action   string  `json:"action"`
	Y        float64 `json:"y,omitempty"`
	DY       float64 `json:"dy,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Duration float32 `json:"duration,omitempty"`
	Frames   int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences scroll and resize actions across frames for
// automated scene testing. Attach to a Scene via SetTestRunner.
//
// Supported actions:
//
//	{"action": "scroll", "y": 800}                   jump to an offset
//	{"action": "scroll", "y": 800, "duration": 1.2}  animate to an offset
//	{"action": "scrollBy", "dy": 120}
//	{"action": "resize", "width": 390, "height": 844}
//	{"action": "wait", "frames": 30}
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Scene via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "scroll", "scrollBy", "wait":
		case "resize":
			if st.Width <= 0 || st.Height <= 0 {
				return nil, fmt.Errorf("parse test script: step %d: resize needs width and height", i)
			}
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the scene. The runner's step method
// is called at the start of every Scene update.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// RunToCompletion steps scene at a fixed dt until the script is done, then
// returns the number of frames taken. maxFrames bounds the loop.
func (r *TestRunner) RunToCompletion(s *Scene, dt time.Duration, maxFrames int) (int, error) {
	s.SetTestRunner(r)
	for frame := 1; frame <= maxFrames; frame++ {
		if err := s.UpdateDelta(dt); err != nil {
			return frame, err
		}
		if r.done {
			return frame, nil
		}
	}
	return maxFrames, fmt.Errorf("test script not done after %d frames", maxFrames)
}

// step advances the test runner by one frame. Called from Scene.UpdateDelta.
func (r *TestRunner) step(s *Scene) {
	if r.done {
		return
	}
	// Let a running scroll animation finish before advancing.
	if s.viewport.Scrolling() {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "scroll":
		if st.Duration > 0 {
			s.viewport.ScrollTo(st.Y, st.Duration, nil)
		} else {
			s.viewport.SetScroll(st.Y)
		}
	case "scrollBy":
		s.viewport.ScrollBy(st.DY)
	case "resize":
		s.viewport.SetSize(st.Width, st.Height)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 && !s.viewport.Scrolling() {
		r.done = true
	}
}
