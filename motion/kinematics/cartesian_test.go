package kinematics

import (
	"testing"

	"motionhost/motion"
)

type fakeStepper struct {
	name string
	pos  [3]float64
}

func (s *fakeStepper) Name() string                { return s.name }
func (s *fakeStepper) SetPosition(x, y, z float64)  { s.pos = [3]float64{x, y, z} }
func (s *fakeStepper) GenerateSteps(flushTime float64) {}

func newTestCartesian3() (*Cartesian3, [3]*fakeStepper) {
	sx, sy, sz := &fakeStepper{name: "x"}, &fakeStepper{name: "y"}, &fakeStepper{name: "z"}
	rails := [3]*Rail{
		{Name: "x", Min: 0, Max: 200, Steppers: []Stepper{sx}},
		{Name: "y", Min: 0, Max: 200, Steppers: []Stepper{sy}},
		{Name: "z", Min: 0, Max: 250, Steppers: []Stepper{sz}},
	}
	return NewCartesian3(rails, 300, 3000, 0, 0), [3]*fakeStepper{sx, sy, sz}
}

func TestAxisIDsCartesian3(t *testing.T) {
	k, _ := newTestCartesian3()
	if got := k.AxisIDs(); got != [3]int{0, 1, 2} {
		t.Errorf("AxisIDs() = %v, want [0 1 2]", got)
	}
}

func TestCartesian3UnhomedByDefault(t *testing.T) {
	k, _ := newTestCartesian3()
	status := k.GetStatus()
	if status.HomedAxes != "" {
		t.Errorf("expected no axes homed initially, got %q", status.HomedAxes)
	}
}

func TestCartesian3SetPositionMarksHomed(t *testing.T) {
	k, steppers := newTestCartesian3()
	pos := motion.Coord{Values: []float64{100, 100, 10, 0}}
	k.SetPosition(pos, map[int]bool{0: true, 1: true, 2: true})

	status := k.GetStatus()
	if status.HomedAxes != "xyz" {
		t.Errorf("expected all axes homed, got %q", status.HomedAxes)
	}
	if steppers[0].pos != [3]float64{100, 100, 10} {
		t.Errorf("stepper x position not forwarded: %+v", steppers[0].pos)
	}
}

func TestCartesian3CheckMoveOutOfRangeRequiresHoming(t *testing.T) {
	k, _ := newTestCartesian3()
	start := motion.Coord{Values: []float64{0, 0, 0, 0}}
	end := motion.Coord{Values: []float64{300, 0, 0, 0}}
	m := motion.NewMove(start, end, 100, 300, 3000, 3000, 0.05)

	if err := k.CheckMove(m); err == nil {
		t.Fatal("expected error for out-of-range move on unhomed axis")
	}
}

func TestCartesian3CheckMoveWithinHomedRange(t *testing.T) {
	k, _ := newTestCartesian3()
	pos := motion.Coord{Values: []float64{0, 0, 0, 0}}
	k.SetPosition(pos, map[int]bool{0: true, 1: true, 2: true})

	start := motion.Coord{Values: []float64{0, 0, 0, 0}}
	end := motion.Coord{Values: []float64{100, 50, 0, 0}}
	m := motion.NewMove(start, end, 100, 300, 3000, 3000, 0.05)

	if err := k.CheckMove(m); err != nil {
		t.Fatalf("unexpected error for in-range move: %v", err)
	}
}

func TestCartesian3NoteZNotHomed(t *testing.T) {
	k, _ := newTestCartesian3()
	pos := motion.Coord{Values: []float64{0, 0, 0, 0}}
	k.SetPosition(pos, map[int]bool{0: true, 1: true, 2: true})
	k.NoteZNotHomed()
	status := k.GetStatus()
	if status.HomedAxes != "xy" {
		t.Errorf("expected z unhomed after NoteZNotHomed, got %q", status.HomedAxes)
	}
}
