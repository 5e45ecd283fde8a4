package motion

import "math"

// Move is an immutable record of a single requested motion, created
// when the toolhead accepts a move and thereafter only ever extended
// with planning fields — never mutated in its start/end pos. Grounded
// on the `Move` class in the original source's toolhead_stepper.py
// (__init__, calc_junction, set_junction, limit_speed).
type Move struct {
	StartPos Coord
	EndPos   Coord

	// AxesD is the signed per-slot displacement (end - start),
	// including the extruder slot.
	AxesD []float64
	// AxesR is the unit direction of the kinematic-axis displacement;
	// zero for a pure-extrude move.
	AxesR []float64
	// MoveD is the Euclidean length over the kinematic axes only.
	MoveD float64
	// IsKinematicMove is false when only the extruder moves.
	IsKinematicMove bool
	// MinMoveT is the move's minimum possible duration (move_d /
	// velocity, velocity taken from the move's current cruise-speed
	// ceiling); used by the look-ahead queue to decide when enough
	// buffered time has accumulated to flush.
	MinMoveT float64

	// Planning fields, assigned by the look-ahead queue before
	// SetJunction is called.
	Accel             float64
	JunctionDeviation float64
	MaxCruiseV2       float64
	MaxStartV2        float64
	MaxSmoothedV2     float64
	DeltaV2           float64
	SmoothDeltaV2     float64

	// Fields assigned by SetJunction, once the move's entry/exit
	// velocities are final and it is ready to be handed to the
	// toolhead's print-time clock.
	StartV  float64
	CruiseV float64
	EndV    float64
	AccelT  float64
	CruiseT float64
	DecelT  float64

	// TimingCallbacks fire once the move's end print-time has been
	// scheduled (see toolhead._process_moves' timing_callbacks list).
	TimingCallbacks []func(printTime float64)
}

// unlimitedAccel stands in for the extruder's own, effectively
// unbounded acceleration ceiling on an extrude-only move, matching
// the original source's Move.__init__ (self.accel = 99999999.9 when
// move_d < 1e-9 — the extruder's own limits govern instead).
const unlimitedAccel = 99999999.9

// NewMove builds a Move from a start/end Coord pair, computing AxesD,
// AxesR, MoveD and IsKinematicMove. speed is the raw requested
// velocity (before the toolhead's max_velocity clamp is applied for a
// kinematic move); accel, maxAccelToDecel and junctionDeviation are
// the toolhead's current defaults at the time the move was queued —
// callers may still lower Accel afterwards via LimitSpeed, which never
// raises it.
func NewMove(start, end Coord, speed, maxVelocity, accel, maxAccelToDecel, junctionDeviation float64) *Move {
	axesD := end.Sub(start)
	axisCount := start.AxisCount()

	var sumSq float64
	for i := 0; i < axisCount; i++ {
		sumSq += axesD[i] * axesD[i]
	}
	moveD := math.Sqrt(sumSq)

	velocity := speed
	if maxVelocity < velocity {
		velocity = maxVelocity
	}
	isKinematic := true

	if moveD < 1e-9 {
		// Extrude-only move: the kinematic axes don't move, so
		// end_pos collapses onto start_pos for them; move_d becomes
		// the extruder's own displacement, acceleration is
		// effectively unbounded (the extruder enforces its own
		// limits), and the raw (unclamped) speed is used.
		endValues := end.Values
		for i := 0; i < axisCount; i++ {
			endValues[i] = start.Values[i]
			axesD[i] = 0
		}
		end = Coord{Values: endValues}
		moveD = math.Abs(axesD[axisCount])
		accel = unlimitedAccel
		velocity = speed
		isKinematic = false
	}

	axesR := make([]float64, len(axesD))
	if moveD > 0 {
		inv := 1.0 / moveD
		for i := range axesD {
			axesR[i] = axesD[i] * inv
		}
	}

	m := &Move{
		StartPos:          start,
		EndPos:            end,
		AxesD:             axesD,
		AxesR:             axesR,
		MoveD:             moveD,
		IsKinematicMove:   isKinematic,
		Accel:             accel,
		JunctionDeviation: junctionDeviation,
	}
	m.MaxStartV2 = 0
	m.MaxCruiseV2 = velocity * velocity
	m.DeltaV2 = 2.0 * moveD * accel
	m.MaxSmoothedV2 = 0
	m.SmoothDeltaV2 = 2.0 * moveD * maxAccelToDecel
	if velocity > 0 {
		m.MinMoveT = moveD / velocity
	}
	return m
}

// CalcJunction computes this move's max_start_v2 and max_smoothed_v2
// against the immediately preceding queued move, matching
// Move.calc_junction. extruderV2 is the extruder's own junction limit
// (extruder.calc_junction(prev, m) — see package extruder). Both
// moves must be kinematic; non-kinematic moves never constrain or are
// constrained by a neighbor's junction.
func (m *Move) CalcJunction(prev *Move, extruderV2 float64) {
	if prev == nil || !m.IsKinematicMove || !prev.IsKinematicMove {
		return
	}
	axisCount := m.StartPos.AxisCount()

	var dot float64
	for i := 0; i < axisCount; i++ {
		dot += m.AxesR[i] * prev.AxesR[i]
	}
	cosTheta := -dot
	if cosTheta > 0.999999 {
		// Direction reversed: max_start_v2 stays at its zeroed
		// default, forcing the machine through (near) zero velocity
		// at this corner.
		return
	}
	if cosTheta < -0.999999 {
		cosTheta = -0.999999
	}
	sinHalf := math.Sqrt(0.5 * (1.0 - cosTheta))
	rJD := sinHalf / (1.0 - sinHalf)

	// The approximated circle must contact both moves no further than
	// their midpoint.
	tanHalf := sinHalf / math.Sqrt(0.5*(1.0+cosTheta))
	moveCentripetalV2 := 0.5 * m.MoveD * tanHalf * m.Accel
	prevCentripetalV2 := 0.5 * prev.MoveD * tanHalf * prev.Accel

	m.MaxStartV2 = math.Min(rJD*m.JunctionDeviation*m.Accel,
		math.Min(rJD*prev.JunctionDeviation*prev.Accel,
			math.Min(moveCentripetalV2,
				math.Min(prevCentripetalV2,
					math.Min(extruderV2,
						math.Min(m.MaxCruiseV2,
							math.Min(prev.MaxCruiseV2,
								prev.MaxStartV2+prev.DeltaV2)))))))
	m.MaxSmoothedV2 = math.Min(m.MaxStartV2, prev.MaxSmoothedV2+prev.SmoothDeltaV2)
}

// LimitSpeed lowers (never raises) the move's cruise-velocity and
// acceleration ceilings. Matches Move.limit_speed.
func (m *Move) LimitSpeed(speed, accel float64) {
	speed2 := speed * speed
	if speed2 < m.MaxCruiseV2 {
		m.MaxCruiseV2 = speed2
		if speed > 0 {
			m.MinMoveT = m.MoveD / speed
		}
	}
	if accel < m.Accel {
		m.Accel = accel
		m.DeltaV2 = 2.0 * m.MoveD * accel
	}
	m.SmoothDeltaV2 = math.Min(m.SmoothDeltaV2, m.DeltaV2)
}

// SetJunction assigns the final start/cruise/end velocities and their
// accel/cruise/decel durations given the already-resolved startV2,
// cruiseV2 and endV2 (squared velocities chosen by the look-ahead
// queue's backward/forward passes). Matches Move.set_junction.
func (m *Move) SetJunction(startV2, cruiseV2, endV2 float64) {
	// Determine accel, cruise and decel distances.
	accelD := (cruiseV2 - startV2) / (2.0 * m.Accel)
	decelD := (cruiseV2 - endV2) / (2.0 * m.Accel)
	cruiseD := m.MoveD - accelD - decelD

	// Determine velocities.
	startV := math.Sqrt(startV2)
	cruiseV := math.Sqrt(cruiseV2)
	endV := math.Sqrt(endV2)

	m.StartV = startV
	m.CruiseV = cruiseV
	m.EndV = endV

	if accelD < 0 {
		accelD = 0
	}
	if decelD < 0 {
		decelD = 0
	}
	if cruiseD < 0 {
		cruiseD = 0
	}

	if m.Accel > 0 {
		m.AccelT = accelD / ((startV + cruiseV) * 0.5)
		m.DecelT = decelD / ((endV + cruiseV) * 0.5)
	}
	if cruiseV > 0 {
		m.CruiseT = cruiseD / cruiseV
	}
}

// MoveError returns an ErrRange wrapping msg, or a generic
// out-of-range error if msg is empty. Matches Move.move_error.
func (m *Move) MoveError(msg string) error {
	if msg == "" {
		msg = "Move out of range"
	}
	return RangeErrorf("%s: move=%v", msg, m.EndPos.Values)
}
