package arc

import (
	"math"
	"testing"

	"motionhost/motion"
	"motionhost/motion/gcodestate"
)

type fakeMover struct {
	pos motion.Coord
}

func newFakeMover() *fakeMover { return &fakeMover{pos: motion.NewCoord(3)} }

func (m *fakeMover) Move(pos motion.Coord, speed float64) error {
	m.pos = pos
	return nil
}

func (m *fakeMover) GetPosition() motion.Coord { return m.pos }

func TestPlanArcQuarterCircleXY(t *testing.T) {
	current := [3]float64{10, 0, 0}
	target := [3]float64{0, 10, 0}
	offset := [2]float64{-10, 0} // center at (0,0)

	coords := PlanArc(current, target, offset, false, 0, 1, 2, 1.0)
	if len(coords) == 0 {
		t.Fatal("expected at least one segment")
	}
	last := coords[len(coords)-1]
	if math.Abs(last[0]-target[0]) > 1e-9 || math.Abs(last[1]-target[1]) > 1e-9 {
		t.Fatalf("last segment should equal target, got %v", last)
	}
	// Every intermediate waypoint should sit on the radius-10 circle.
	for _, c := range coords {
		r := math.Hypot(c[0], c[1])
		if math.Abs(r-10) > 1e-6 {
			t.Fatalf("waypoint %v not on radius-10 circle (r=%v)", c, r)
		}
	}
}

func TestPlanArcFullCircleEdgeCase(t *testing.T) {
	current := [3]float64{10, 0, 0}
	target := [3]float64{10, 0, 0}
	offset := [2]float64{-10, 0}

	coords := PlanArc(current, target, offset, false, 0, 1, 2, 1.0)
	if len(coords) < 2 {
		t.Fatalf("expected a full circle to be split into multiple segments, got %d", len(coords))
	}
}

func TestG2RejectsRelativeMode(t *testing.T) {
	mover := newFakeMover()
	state := gcodestate.New("XYZ", mover)
	state.SetAbsoluteCoord(false)
	p := New(state, 1.0)

	if err := p.G2(map[byte]float64{'X': 10, 'I': 5}); err == nil {
		t.Fatal("expected error for G2 in relative coordinate mode")
	}
}

func TestG2RejectsRParam(t *testing.T) {
	mover := newFakeMover()
	state := gcodestate.New("XYZ", mover)
	p := New(state, 1.0)

	if err := p.G2(map[byte]float64{'X': 10, 'R': 5}); err == nil {
		t.Fatal("expected error for R-form arc")
	}
}

func TestG2RequiresOffset(t *testing.T) {
	mover := newFakeMover()
	state := gcodestate.New("XYZ", mover)
	p := New(state, 1.0)

	if err := p.G2(map[byte]float64{'X': 10, 'Y': 10}); err == nil {
		t.Fatal("expected error when no I/J/K offset is given")
	}
}

func TestG2ExecutesSegmentsAgainstState(t *testing.T) {
	mover := newFakeMover()
	state := gcodestate.New("XYZ", mover)
	p := New(state, 1.0)

	if err := state.G1(map[byte]float64{'X': 10, 'Y': 0}); err != nil {
		t.Fatalf("G1: %v", err)
	}
	if err := p.G2(map[byte]float64{'X': 0, 'Y': 10, 'I': -10, 'J': 0}); err != nil {
		t.Fatalf("G2: %v", err)
	}
	final := state.GetStatus().GCodePosition.Values
	if math.Abs(final[0]) > 1e-6 || math.Abs(final[1]-10) > 1e-6 {
		t.Fatalf("expected arc to end at (0,10), got (%v,%v)", final[0], final[1])
	}
}
