package kinematics

import "testing"

func TestCartesianABCAxisIDsTwoAxisGroup(t *testing.T) {
	rails := [3]*Rail{
		{Name: "a", Min: 0, Max: 360, Steppers: []Stepper{&fakeStepper{name: "a"}}},
		{Name: "b", Min: 0, Max: 360, Steppers: []Stepper{&fakeStepper{name: "b"}}},
		nil,
	}
	k := NewCartesianABC(3, "AB", rails)

	got := k.AxisIDs()
	want := [3]int{3, 4, -1}
	if got != want {
		t.Errorf("AxisIDs() = %v, want %v", got, want)
	}
}

func TestCartesianABCAxisIDsThreeAxisGroup(t *testing.T) {
	rails := [3]*Rail{
		{Name: "a", Min: 0, Max: 360, Steppers: []Stepper{&fakeStepper{name: "a"}}},
		{Name: "b", Min: 0, Max: 360, Steppers: []Stepper{&fakeStepper{name: "b"}}},
		{Name: "c", Min: 0, Max: 360, Steppers: []Stepper{&fakeStepper{name: "c"}}},
	}
	k := NewCartesianABC(3, "ABC", rails)

	got := k.AxisIDs()
	want := [3]int{3, 4, 5}
	if got != want {
		t.Errorf("AxisIDs() = %v, want %v", got, want)
	}
}

func TestCartesianABCGetSteppersOnlyBoundAxes(t *testing.T) {
	rails := [3]*Rail{
		{Name: "a", Min: 0, Max: 360, Steppers: []Stepper{&fakeStepper{name: "a"}}},
		{Name: "b", Min: 0, Max: 360, Steppers: []Stepper{&fakeStepper{name: "b"}}},
		nil,
	}
	k := NewCartesianABC(3, "AB", rails)

	steppers := k.GetSteppers()
	if len(steppers) != 2 {
		t.Fatalf("expected 2 steppers for a 2-axis group, got %d", len(steppers))
	}
}
