package gcodestate

import (
	"math"
	"strings"
	"testing"

	"motionhost/motion"
)

type fakeMover struct {
	pos   motion.Coord
	calls []float64
}

func newFakeMover(axisCount int) *fakeMover {
	return &fakeMover{pos: motion.NewCoord(axisCount)}
}

func (m *fakeMover) Move(pos motion.Coord, speed float64) error {
	m.pos = pos
	m.calls = append(m.calls, speed)
	return nil
}

func (m *fakeMover) GetPosition() motion.Coord { return m.pos }

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestG1AbsoluteMove(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)

	if err := s.G1(map[byte]float64{'X': 10, 'Y': 20, 'Z': 5}); err != nil {
		t.Fatalf("G1: %v", err)
	}
	status := s.GetStatus()
	if !almostEqual(status.Position.Values[0], 10) || !almostEqual(status.Position.Values[1], 20) || !almostEqual(status.Position.Values[2], 5) {
		t.Fatalf("unexpected position after absolute G1: %+v", status.Position.Values)
	}
}

func TestG1RelativeMove(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)

	if err := s.G1(map[byte]float64{'X': 10}); err != nil {
		t.Fatalf("G1: %v", err)
	}
	s.SetAbsoluteCoord(false)
	if err := s.G1(map[byte]float64{'X': 5}); err != nil {
		t.Fatalf("G1: %v", err)
	}
	status := s.GetStatus()
	if !almostEqual(status.Position.Values[0], 15) {
		t.Fatalf("expected relative move to add to position, got %v", status.Position.Values[0])
	}
}

func TestG1InvalidSpeed(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)
	if err := s.G1(map[byte]float64{'F': 0}); err == nil {
		t.Fatal("expected error for non-positive feedrate")
	}
}

func TestG92SetsOffset(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)
	if err := s.G1(map[byte]float64{'X': 10, 'Y': 10, 'Z': 10}); err != nil {
		t.Fatalf("G1: %v", err)
	}
	s.G92(map[byte]float64{'X': 0})

	status := s.GetStatus()
	if !almostEqual(status.GCodePosition.Values[0], 0) {
		t.Fatalf("expected gcode X position reset to 0 after G92 X0, got %v", status.GCodePosition.Values[0])
	}
	if !almostEqual(status.GCodePosition.Values[1], 10) {
		t.Fatalf("expected gcode Y position unaffected by G92 X0, got %v", status.GCodePosition.Values[1])
	}
}

func TestSpeedFactorOverride(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)
	before := s.GetStatus().SpeedFactor
	if !almostEqual(before, 1.0) {
		t.Fatalf("expected default speed factor 1.0, got %v", before)
	}
	s.SpeedFactorOverride(50)
	after := s.GetStatus().SpeedFactor
	if !almostEqual(after, 0.5) {
		t.Fatalf("expected speed factor 0.5 after M220 S50, got %v", after)
	}
}

func TestSaveAndRestoreState(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)
	if err := s.G1(map[byte]float64{'X': 10, 'E': 5}); err != nil {
		t.Fatalf("G1: %v", err)
	}
	s.SaveState("test")

	if err := s.G1(map[byte]float64{'X': 50}); err != nil {
		t.Fatalf("G1: %v", err)
	}

	if err := s.RestoreState("test", true, 0); err != nil {
		t.Fatalf("RestoreState: %v", err)
	}
	status := s.GetStatus()
	if !almostEqual(status.Position.Values[0], 10) {
		t.Fatalf("expected restored X position 10, got %v", status.Position.Values[0])
	}
}

func TestRestoreUnknownState(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)
	if err := s.RestoreState("missing", false, 0); err == nil {
		t.Fatal("expected error restoring unknown state")
	}
}

func TestM114Report(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)
	if err := s.G1(map[byte]float64{'X': 1, 'Y': 2, 'Z': 3}); err != nil {
		t.Fatalf("G1: %v", err)
	}
	report := s.M114Report()
	if report == "" {
		t.Fatal("expected non-empty M114 report")
	}
}

func TestSetGCodeOffsetWithoutMove(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)
	if err := s.G1(map[byte]float64{'X': 10}); err != nil {
		t.Fatalf("G1: %v", err)
	}
	callsBefore := len(mover.calls)

	if err := s.SetGCodeOffset(map[string]float64{"Z": 0.2}, false, 0); err != nil {
		t.Fatalf("SetGCodeOffset: %v", err)
	}
	if len(mover.calls) != callsBefore {
		t.Fatalf("expected no move when move=false, got %d new calls", len(mover.calls)-callsBefore)
	}

	status := s.GetStatus()
	if !almostEqual(status.HomingOrigin.Values[2], 0.2) {
		t.Fatalf("expected Z homing origin 0.2 after SET_GCODE_OFFSET, got %v", status.HomingOrigin.Values[2])
	}
	// gcode-space X must be unaffected by a Z-only offset.
	if !almostEqual(status.GCodePosition.Values[0], 10) {
		t.Fatalf("expected gcode X unaffected by Z offset, got %v", status.GCodePosition.Values[0])
	}
}

func TestSetGCodeOffsetWithMove(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)
	callsBefore := len(mover.calls)

	if err := s.SetGCodeOffset(map[string]float64{"X": 1}, true, 30); err != nil {
		t.Fatalf("SetGCodeOffset: %v", err)
	}
	if len(mover.calls) != callsBefore+1 {
		t.Fatalf("expected exactly one move when move=true, got %d new calls", len(mover.calls)-callsBefore)
	}
	if mover.calls[len(mover.calls)-1] != 30 {
		t.Fatalf("expected MOVE_SPEED=30 to be used, got %v", mover.calls[len(mover.calls)-1])
	}

	pos := s.mover.GetPosition()
	if !almostEqual(pos.Values[0], 1) {
		t.Fatalf("expected toolhead moved by the new X offset, got %+v", pos.Values)
	}
}

func TestSetGCodeOffsetAdjust(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)
	if err := s.SetGCodeOffset(map[string]float64{"X": 1}, false, 0); err != nil {
		t.Fatalf("SetGCodeOffset: %v", err)
	}
	if err := s.SetGCodeOffset(map[string]float64{"X_ADJUST": 0.5}, false, 0); err != nil {
		t.Fatalf("SetGCodeOffset: %v", err)
	}
	status := s.GetStatus()
	if !almostEqual(status.HomingOrigin.Values[0], 1.5) {
		t.Fatalf("expected X_ADJUST to add onto the existing offset, got %v", status.HomingOrigin.Values[0])
	}
}

func TestGetPositionReport(t *testing.T) {
	mover := newFakeMover(3)
	s := New("XYZ", mover)
	if err := s.G1(map[byte]float64{'X': 1, 'Y': 2, 'Z': 3}); err != nil {
		t.Fatalf("G1: %v", err)
	}

	report := s.GetPositionReport("mcu-line", "stepper-line", "kin-line", mover.GetPosition())
	for _, want := range []string{"mcu: mcu-line", "stepper: stepper-line", "kinematic: kin-line", "toolhead:", "gcode:", "gcode base:", "gcode homing:"} {
		if !strings.Contains(report, want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, report)
		}
	}
}
