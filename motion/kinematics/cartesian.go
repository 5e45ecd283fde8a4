package kinematics

import (
	"math"

	"motionhost/motion"
	"motionhost/motion/trapq"
)

// Cartesian3 binds the first three kinematic-axis slots (X, Y, Z) of
// a Move directly to three rails, one stepper group each. Grounded on
// original_source/klippy/kinematics/cartesian.py's CartKinematics,
// minus MCU_stepper/itersolve wiring (replaced by the narrow Stepper
// interface) and minus dual-carriage support, which the expanded spec
// doesn't name and so is left out rather than half-built.
type Cartesian3 struct {
	axisNames string
	rails     [3]*Rail
	limits    [3]Limit
	axesMin   motion.Coord
	axesMax   motion.Coord

	maxZVelocity float64
	maxZAccel    float64

	trapq *trapq.Queue
}

// NewCartesian3 builds a Cartesian3 group from three rails in X, Y, Z
// order, with the toolhead's own max velocity/accel as the Z-speed
// ceiling defaults (config may lower them — see motion/config).
func NewCartesian3(rails [3]*Rail, maxVelocity, maxAccel, maxZVelocity, maxZAccel float64) *Cartesian3 {
	k := &Cartesian3{
		axisNames: "XYZ",
		rails:     rails,
		limits:    [3]Limit{Unhomed, Unhomed, Unhomed},
		trapq:     trapq.New(),
	}
	if maxZVelocity <= 0 || maxZVelocity > maxVelocity {
		maxZVelocity = maxVelocity
	}
	if maxZAccel <= 0 || maxZAccel > maxAccel {
		maxZAccel = maxAccel
	}
	k.maxZVelocity = maxZVelocity
	k.maxZAccel = maxZAccel

	mins := make([]float64, 4)
	maxs := make([]float64, 4)
	for i, r := range rails {
		mins[i], maxs[i] = r.Range()
	}
	k.axesMin = motion.Coord{Values: mins}
	k.axesMax = motion.Coord{Values: maxs}
	return k
}

func (k *Cartesian3) AxisNames() string   { return k.axisNames }
func (k *Cartesian3) Trapq() *trapq.Queue { return k.trapq }
func (k *Cartesian3) AxisIDs() [3]int     { return [3]int{0, 1, 2} }

func (k *Cartesian3) GetSteppers() []Stepper {
	var out []Stepper
	for _, r := range k.rails {
		out = append(out, r.GetSteppers()...)
	}
	return out
}

// NoteZNotHomed marks Z unhomed again; used by a safe-Z-home sequence
// that re-probes before trusting the axis.
func (k *Cartesian3) NoteZNotHomed() {
	k.limits[2] = Unhomed
}

func (k *Cartesian3) checkEndstops(m *motion.Move) error {
	return checkEndstops(m, []int{0, 1, 2}, k.limits[:], k.axisNames)
}

// CheckMove matches cartesian.py's check_move: an XY bounds check that
// only escalates to the endstop-error path when actually out of
// range, plus a Z-speed derate proportional to how much of the move
// is along Z.
func (k *Cartesian3) CheckMove(m *motion.Move) error {
	xpos, ypos := m.EndPos.Values[0], m.EndPos.Values[1]
	if xpos < k.limits[0].Min || xpos > k.limits[0].Max ||
		ypos < k.limits[1].Min || ypos > k.limits[1].Max {
		if err := k.checkEndstops(m); err != nil {
			return err
		}
	}
	if m.AxesD[2] == 0 {
		return nil
	}
	if err := k.checkEndstops(m); err != nil {
		return err
	}
	zRatio := m.MoveD / math.Abs(m.AxesD[2])
	m.LimitSpeed(k.maxZVelocity*zRatio, k.maxZAccel*zRatio)
	return nil
}

// SetPosition matches cartesian.py's set_position: forward the new
// position to every rail, and mark any axis passed in homingAxes as
// homed by adopting the rail's full range as its limit.
func (k *Cartesian3) SetPosition(newpos motion.Coord, homingAxes map[int]bool) {
	pos := [3]float64{newpos.Values[0], newpos.Values[1], newpos.Values[2]}
	for i, r := range k.rails {
		r.SetPosition(pos)
		if homingAxes[i] {
			min, max := r.Range()
			k.limits[i] = Limit{min, max}
		}
	}
}

// Home drives each requested axis through the toolhead's homing
// driver in turn, matching cartesian.py's home (axes are homed
// independently and in order; no dual-carriage branch here).
func (k *Cartesian3) Home(hs HomingState) error {
	for _, axis := range hs.GetAxes() {
		if axis < 0 || axis > 2 {
			continue
		}
		if err := homeAxis(hs, 3, axis, k.rails[axis]); err != nil {
			return err
		}
	}
	return nil
}

func (k *Cartesian3) GetStatus() Status {
	homed := ""
	for i, axis := range "xyz" {
		if k.limits[i].Homed() {
			homed += string(axis)
		}
	}
	return Status{HomedAxes: homed, AxisMinimum: k.axesMin, AxisMaximum: k.axesMax}
}
