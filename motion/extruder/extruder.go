// Package extruder implements the extruder's own kinematics: it owns
// a single-rail trapq, imposes the extrude ratio and junction limits
// that bound how fast filament may flow relative to XY travel, and
// moves in lock-step with the toolhead's main kinematic groups.
//
// The original's extruder.py isn't part of the retrieved reference
// set; this package is grounded on its call-site contract as used
// throughout original_source/klippy/extras/toolhead_stepper.py —
// extruder.calc_junction(prev_move, move), extruder.check_move(move,
// e_axis), extruder.move(print_time, move), extruder.update_move_time
// (flush_time), extruder.set_position(newpos_e, homing_axes,
// print_time) — reconstructed in the teacher's Go idiom from those
// call shapes and Klipper's well-documented extrude-ratio/
// instant-corner-velocity design.
package extruder

import (
	"math"

	"motionhost/motion"
	"motionhost/motion/trapq"
)

// Extruder is one filament-drive kinematic: an axis index into a
// Move's AxesD/AxesR/EndPos slots, a rate ceiling, and its own trapq.
type Extruder struct {
	Name string
	Axis int // index of this extruder's slot in a Coord/Move (last slot)

	MaxExtrudeRatio    float64 // max |axes_r[axis]| relative to XY travel before rejecting a move
	InstantCornerV     float64 // mm/s; bounds direction-reversal junction speed
	MaxEVelocity       float64
	MaxEAccel          float64

	stepper Stepper
	trapq   *trapq.Queue

	commandedPos float64
}

// Stepper is the narrow extruder-stepper capability the core needs;
// no MCU/GPIO implementation lives in this repository.
type Stepper interface {
	SetPosition(e float64)
	GenerateSteps(flushTime float64)
}

// New returns an Extruder bound to axis (normally the last Move
// slot), with its own empty trapq.
func New(name string, axis int, maxExtrudeRatio, instantCornerV, maxEVelocity, maxEAccel float64) *Extruder {
	return &Extruder{
		Name:            name,
		Axis:            axis,
		MaxExtrudeRatio: maxExtrudeRatio,
		InstantCornerV:  instantCornerV,
		MaxEVelocity:    maxEVelocity,
		MaxEAccel:       maxEAccel,
		trapq:           trapq.New(),
	}
}

// SetStepper attaches the stepper that will actually carry out moves
// appended to this extruder's trapq.
func (e *Extruder) SetStepper(s Stepper) { e.stepper = s }

func (e *Extruder) Trapq() *trapq.Queue { return e.trapq }

// CalcJunction returns the extruder's own upper bound on the squared
// junction velocity between prev and m: when the extrude ratio
// reverses direction across the corner, the junction speed is capped
// so filament flow doesn't instantaneously jump; a same-direction
// (or first) move imposes no extra limit beyond the move's own
// max_cruise_v2.
func (e *Extruder) CalcJunction(prev, m *motion.Move) float64 {
	if prev == nil {
		return m.MaxCruiseV2
	}
	diffR := m.AxesR[e.Axis] - prev.AxesR[e.Axis]
	if diffR == 0 || e.InstantCornerV <= 0 {
		return m.MaxCruiseV2
	}
	v := e.InstantCornerV / math.Abs(diffR)
	return v * v
}

// CheckMove rejects a move whose extrude-to-travel ratio exceeds
// MaxExtrudeRatio, unless the move is extrude-only (no XY/kinematic
// displacement at all, in which case the ratio check doesn't apply).
func (e *Extruder) CheckMove(m *motion.Move) error {
	if e.MaxExtrudeRatio <= 0 {
		return nil
	}
	axisR := math.Abs(m.AxesR[e.Axis])
	if axisR <= e.MaxExtrudeRatio {
		return nil
	}
	if !m.IsKinematicMove {
		return nil
	}
	return motion.RangeErrorf("extrude ratio %.3f exceeds max %.3f", axisR, e.MaxExtrudeRatio)
}

// Move appends the extruder's own trapezoidal segment for m, scaling
// the move's start/cruise velocities and acceleration by this
// extruder's axis ratio so the filament's linear position tracks
// move.start_pos[axis] .. move.end_pos[axis] in lock-step with the
// kinematic groups' segments appended at the same print_time.
func (e *Extruder) Move(printTime float64, m *motion.Move) {
	axisR := m.AxesR[e.Axis]
	if axisR == 0 {
		return
	}
	accel := m.Accel * axisR
	startV := m.StartV * axisR
	cruiseV := m.CruiseV * axisR
	eStart := m.StartPos.Values[e.Axis]
	e.trapq.Append(printTime, m.AccelT, m.CruiseT, m.DecelT,
		[3]float64{eStart, 0, 0}, [3]float64{1, 0, 0}, startV, cruiseV, accel)
	e.commandedPos = m.EndPos.Values[e.Axis]
}

// UpdateMoveTime finalizes trapq segments up to flushTime, matching
// PrinterExtruder.update_move_time's role inside
// toolhead._update_move_time / the drip-mode cancellation path.
func (e *Extruder) UpdateMoveTime(flushTime float64) {
	e.trapq.FinalizeMoves(flushTime)
	if e.stepper != nil {
		e.stepper.GenerateSteps(flushTime)
	}
}

// SetPosition pins the extruder's trapq and stepper to e at printTime,
// discarding any queued segments. Matches extruder.set_position.
func (e *Extruder) SetPosition(ePos float64, printTime float64) {
	e.trapq.SetPosition(printTime, ePos, 0, 0)
	if e.stepper != nil {
		e.stepper.SetPosition(ePos)
	}
	e.commandedPos = ePos
}

// CommandedPosition returns the last position passed to Move or
// SetPosition.
func (e *Extruder) CommandedPosition() float64 { return e.commandedPos }

// DummyExtruder is the no-op extruder used before any real extruder is
// configured, matching kinematics.extruder.DummyExtruder: every
// operation is a no-op and CalcJunction imposes no limit.
type DummyExtruder struct{}

func (DummyExtruder) CalcJunction(prev, m *motion.Move) float64 { return m.MaxCruiseV2 }
func (DummyExtruder) CheckMove(m *motion.Move) error            { return nil }
func (DummyExtruder) Move(printTime float64, m *motion.Move)    {}
func (DummyExtruder) UpdateMoveTime(flushTime float64)          {}
func (DummyExtruder) SetPosition(ePos float64, printTime float64) {}
func (DummyExtruder) CommandedPosition() float64                { return 0 }

// Interface is implemented by both Extruder and DummyExtruder, and is
// what the toolhead actually holds a reference to (so an unconfigured
// printer can still accept G-code that never touches E).
type Interface interface {
	CalcJunction(prev, m *motion.Move) float64
	CheckMove(m *motion.Move) error
	Move(printTime float64, m *motion.Move)
	UpdateMoveTime(flushTime float64)
	SetPosition(ePos float64, printTime float64)
	CommandedPosition() float64
}

var (
	_ Interface = (*Extruder)(nil)
	_ Interface = DummyExtruder{}
)
