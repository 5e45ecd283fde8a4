// Package kinematics maps a kinematic group's Cartesian-axis Moves
// onto rails (and, through them, MCU steppers), enforcing travel
// limits and homing state and feeding a 3-slot trapq.
//
// Grounded on original_source/klippy/kinematics/cartesian.py and
// cartesian_abc.py, generalized per Design Notes §9 ("Polymorphic
// kinematics... model as a tagged variant... avoid open inheritance
// hierarchies") into a single Kinematics interface implemented by
// Cartesian3 and CartesianABC rather than a subclass relationship —
// cartesian_abc.py's CartKinematicsABC(CartKinematics) becomes a
// sibling type here, not a derived one.
package kinematics

import (
	"fmt"

	"motionhost/motion"
	"motionhost/motion/trapq"
)

// Stepper is the narrow capability the core requires of the external
// iterative step-time solver per the collaborator interfaces listed
// in the spec's external-interfaces section: the core only ever needs
// to hand it a position reset and a flush deadline. No MCU/GPIO
// implementation lives in this repository — see motion/stepsolver.
type Stepper interface {
	Name() string
	SetPosition(x, y, z float64)
	GenerateSteps(flushTime float64)
}

// HomingInfo is the rail's homing configuration: trigger position,
// direction of travel, and the speeds used while approaching it.
type HomingInfo struct {
	PositionEndstop  float64
	PositiveDir      bool
	Speed            float64
	SecondHomingSpeed float64
	RetractDist      float64
	RetractSpeed     float64
}

// Limit is a (min, max) travel range. The sentinel Limit{1, -1} (Min >
// Max) means "axis not yet homed", exactly as in the original source.
type Limit struct {
	Min, Max float64
}

// Unhomed is the sentinel limit marking an axis that has never been
// homed.
var Unhomed = Limit{Min: 1.0, Max: -1.0}

// Homed reports whether l represents a homed (valid) range.
func (l Limit) Homed() bool { return l.Min <= l.Max }

// Rail is a named physical axis binding one or more steppers, grouped
// because they share an endstop and travel range (e.g. dual Z).
type Rail struct {
	Name     string
	Min, Max float64
	Steppers []Stepper
	Homing   HomingInfo
}

// Range returns the rail's (min, max) travel.
func (r *Rail) Range() (float64, float64) { return r.Min, r.Max }

// SetPosition forwards a position reset to every stepper on the rail.
func (r *Rail) SetPosition(pos [3]float64) {
	for _, s := range r.Steppers {
		s.SetPosition(pos[0], pos[1], pos[2])
	}
}

// GetSteppers returns the rail's bound steppers.
func (r *Rail) GetSteppers() []Stepper { return r.Steppers }

// Status is the read-only snapshot returned by GetStatus, matching
// the dict the original source's get_status returns.
type Status struct {
	HomedAxes   string
	AxisMinimum motion.Coord
	AxisMaximum motion.Coord
}

// HomingState is implemented by the toolhead. A kinematics group's
// Home method calls back into it to actually drive the machine (in
// Drip mode) toward the endstop; the kinematics layer itself never
// touches the print-time clock.
type HomingState interface {
	GetAxes() []int
	HomeRails(rails []*Rail, forcePos, targetPos []float64) error
}

// Kinematics is the capability set every kinematic group implements:
// set_position, check_move, home, get_steppers, get_status, per
// Design Notes §9.
type Kinematics interface {
	AxisNames() string
	CheckMove(m *motion.Move) error
	SetPosition(newpos motion.Coord, homingAxes map[int]bool)
	Home(hs HomingState) error
	GetSteppers() []Stepper
	GetStatus() Status
	Trapq() *trapq.Queue
	NoteZNotHomed()

	// AxisIDs returns the Move-coordinate slot indices this group's
	// three trapq position components are drawn from; -1 marks a slot
	// this group doesn't bind (an ABC group with fewer than three
	// axes). Lets the toolhead translate a Move's StartPos/AxesR into
	// each group's own trapq.Append call without every kinematics
	// implementation re-deriving the same 3-tuple, matching how
	// "kin.axis" is used directly in toolhead_stepper.py's
	// _process_moves and set_position.
	AxisIDs() [3]int
}

func moveErrorAxis(m *motion.Move, axisNames string, i int) error {
	return m.MoveError(fmt.Sprintf("Must home axis %c first", axisNames[i]))
}

// checkEndstops implements the shared "raise if an axis this group
// owns is displaced and its endpoint falls outside the rail's limits"
// logic used identically by cartesian.py's _check_endstops and
// cartesian_abc.py's _check_endstops.
func checkEndstops(m *motion.Move, axisIdx []int, limits []Limit, axisNames string) error {
	endPos := m.EndPos.Values
	for i, axis := range axisIdx {
		if m.AxesD[axis] != 0 && (endPos[axis] < limits[i].Min || endPos[axis] > limits[i].Max) {
			if !limits[i].Homed() {
				return moveErrorAxis(m, axisNames, i)
			}
			return m.MoveError("")
		}
	}
	return nil
}

// homeAxis computes the force-from and target positions for a single
// rail and dispatches them to the toolhead's homing driver, matching
// _home_axis in both cartesian.py and cartesian_abc.py: the force
// position overshoots the endstop by 1.5x the remaining travel so the
// drip move is guaranteed to trip it.
func homeAxis(hs HomingState, totalAxisCount, axis int, rail *Rail) error {
	homepos := make([]float64, totalAxisCount+1)
	forcepos := make([]float64, totalAxisCount+1)
	homepos[axis] = rail.Homing.PositionEndstop
	forcepos[axis] = rail.Homing.PositionEndstop
	if rail.Homing.PositiveDir {
		forcepos[axis] -= 1.5 * (rail.Homing.PositionEndstop - rail.Min)
	} else {
		forcepos[axis] += 1.5 * (rail.Max - rail.Homing.PositionEndstop)
	}
	return hs.HomeRails([]*Rail{rail}, forcepos, homepos)
}
