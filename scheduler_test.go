package serene

import (
	"testing"
	"time"
)

func TestSchedulerFiresAtDeadline(t *testing.T) {
	s := NewScheduler()
	var firedAt time.Duration = -1
	s.AfterFunc(200*time.Millisecond, func() { firedAt = s.Now() })

	s.Advance(199 * time.Millisecond)
	if firedAt != -1 {
		t.Fatalf("fired early at %v", firedAt)
	}
	s.Advance(50 * time.Millisecond)
	if firedAt != 200*time.Millisecond {
		t.Errorf("fired at %v, want 200ms", firedAt)
	}
	if s.Now() != 249*time.Millisecond {
		t.Errorf("Now = %v, want 249ms", s.Now())
	}
}

func TestSchedulerDeadlineOrderAndFIFO(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	s.AfterFunc(10*time.Millisecond, func() { order = append(order, "a1") })
	s.AfterFunc(10*time.Millisecond, func() { order = append(order, "a2") })
	s.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })

	s.Advance(time.Second)

	want := []string{"a1", "a2", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestSchedulerStop(t *testing.T) {
	s := NewScheduler()
	fired := false
	timer := s.AfterFunc(10*time.Millisecond, func() { fired = true })

	if !timer.Stop() {
		t.Error("Stop on pending timer should return true")
	}
	if timer.Stop() {
		t.Error("second Stop should return false")
	}
	s.Advance(time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}

func TestSchedulerStopAfterFire(t *testing.T) {
	s := NewScheduler()
	timer := s.AfterFunc(0, func() {})
	s.Advance(0)
	if timer.Stop() {
		t.Error("Stop after firing should return false")
	}
}

func TestSchedulerNestedScheduling(t *testing.T) {
	s := NewScheduler()
	var at []time.Duration
	s.AfterFunc(50*time.Millisecond, func() {
		at = append(at, s.Now())
		s.AfterFunc(100*time.Millisecond, func() { at = append(at, s.Now()) })
	})

	s.Advance(time.Second)

	if len(at) != 2 || at[0] != 50*time.Millisecond || at[1] != 150*time.Millisecond {
		t.Errorf("fire times = %v, want [50ms 150ms]", at)
	}
}

func TestSchedulerNestedBeyondWindow(t *testing.T) {
	s := NewScheduler()
	fired := 0
	s.AfterFunc(10*time.Millisecond, func() {
		fired++
		s.AfterFunc(100*time.Millisecond, func() { fired++ })
	})
	s.Advance(50 * time.Millisecond)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
	s.Advance(60 * time.Millisecond)
	if fired != 2 {
		t.Errorf("fired = %d, want 2", fired)
	}
}

func TestSchedulerStopFromCallback(t *testing.T) {
	s := NewScheduler()
	fired := false
	var later Timer
	s.AfterFunc(10*time.Millisecond, func() { later.Stop() })
	later = s.AfterFunc(20*time.Millisecond, func() { fired = true })

	s.Advance(time.Second)
	if fired {
		t.Error("timer stopped by an earlier callback still fired")
	}
}

func TestSchedulerNegativeDelay(t *testing.T) {
	s := NewScheduler()
	s.Advance(time.Second)
	fired := false
	s.AfterFunc(-time.Hour, func() { fired = true })
	s.Advance(0)
	if !fired {
		t.Error("negative delay should fire on the next Advance")
	}
}
