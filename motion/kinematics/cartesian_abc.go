package kinematics

import (
	"motionhost/motion"
	"motionhost/motion/trapq"
)

// CartesianABC binds a second, independent 3-axis group — commonly
// A/B/C — starting at a configurable offset into the Move's axis
// slots, sharing the toolhead's print-time clock but owning its own
// trapq and rails. Grounded on
// original_source/klippy/kinematics/cartesian_abc.py's
// CartKinematicsABC; that source subclasses CartKinematics, but per
// Design Notes §9 ("avoid open inheritance hierarchies") this is a
// sibling implementation of the same Kinematics interface instead,
// sharing only the free checkEndstops/homeAxis helpers.
//
// Unlike Cartesian3, there is no Z-speed derating here: the original
// leaves that logic in the XYZ group and has the ABC group mirror its
// bounds checks only (see its check_move's commented-out Z branch).
type CartesianABC struct {
	axisNames string
	axisBase  int // index of the first bound Move slot (3 for "ABC" in a 7-slot XYZABCE Coord)
	rails     [3]*Rail
	limits    [3]Limit
	axesMin   motion.Coord
	axesMax   motion.Coord

	trapq *trapq.Queue
}

// NewCartesianABC builds a second kinematic group bound to Move slots
// [axisBase, axisBase+len(axisNames)). axisNames is typically "AB" or
// "ABC"; rails beyond len(axisNames) are ignored (len(rails) is always
// 3 so the trapq's fixed 3-slot shape is satisfied even for a 2-axis
// group, matching the source's "limits... length 3" convention).
func NewCartesianABC(axisBase int, axisNames string, rails [3]*Rail) *CartesianABC {
	k := &CartesianABC{
		axisNames: axisNames,
		axisBase:  axisBase,
		rails:     rails,
		limits:    [3]Limit{Unhomed, Unhomed, Unhomed},
		trapq:     trapq.New(),
	}
	mins := make([]float64, axisBase+4)
	maxs := make([]float64, axisBase+4)
	for i := 0; i < len(axisNames); i++ {
		mn, mx := rails[i].Range()
		mins[axisBase+i] = mn
		maxs[axisBase+i] = mx
	}
	k.axesMin = motion.Coord{Values: mins}
	k.axesMax = motion.Coord{Values: maxs}
	return k
}

func (k *CartesianABC) AxisNames() string   { return k.axisNames }
func (k *CartesianABC) Trapq() *trapq.Queue { return k.trapq }

func (k *CartesianABC) AxisIDs() [3]int {
	var ids [3]int
	for i := range ids {
		if i < len(k.axisNames) {
			ids[i] = k.axisBase + i
		} else {
			ids[i] = -1
		}
	}
	return ids
}

func (k *CartesianABC) GetSteppers() []Stepper {
	var out []Stepper
	for i := 0; i < len(k.axisNames); i++ {
		out = append(out, k.rails[i].GetSteppers()...)
	}
	return out
}

// NoteZNotHomed is a no-op here: the ABC group has no Z-like axis of
// its own, matching the source's note_z_not_homed override which logs
// and ignores the call.
func (k *CartesianABC) NoteZNotHomed() {}

func (k *CartesianABC) axisIndices() []int {
	idx := make([]int, len(k.axisNames))
	for i := range idx {
		idx[i] = k.axisBase + i
	}
	return idx
}

func (k *CartesianABC) checkEndstops(m *motion.Move) error {
	return checkEndstops(m, k.axisIndices(), k.limits[:len(k.axisNames)], k.axisNames)
}

// CheckMove matches CartKinematicsABC.check_move: a bounds check
// against each bound axis, escalating to the endstop-error path. The
// Z-speed derate is deliberately not duplicated here (the source
// comments it out, leaving that solely to the XYZ group).
func (k *CartesianABC) CheckMove(m *motion.Move) error {
	idx := k.axisIndices()
	for i, axis := range idx {
		pos := m.EndPos.Values[axis]
		if pos < k.limits[i].Min || pos > k.limits[i].Max {
			return k.checkEndstops(m)
		}
	}
	return nil
}

// SetPosition matches CartKinematicsABC.set_position.
func (k *CartesianABC) SetPosition(newpos motion.Coord, homingAxes map[int]bool) {
	idx := k.axisIndices()
	pos := [3]float64{}
	for i, axis := range idx {
		if i < 3 {
			pos[i] = newpos.Values[axis]
		}
	}
	for i, axis := range idx {
		k.rails[i].SetPosition(pos)
		if homingAxes[axis] {
			min, max := k.rails[i].Range()
			k.limits[i] = Limit{min, max}
		}
	}
}

// Home mirrors CartKinematicsABC.home: each configured axis letter is
// homed independently via the shared homeAxis helper.
func (k *CartesianABC) Home(hs HomingState) error {
	idx := k.axisIndices()
	for _, axis := range hs.GetAxes() {
		for i, a := range idx {
			if a == axis {
				if err := homeAxis(hs, k.axisBase+len(k.axisNames), axis, k.rails[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (k *CartesianABC) GetStatus() Status {
	homed := ""
	for i := 0; i < len(k.axisNames); i++ {
		if k.limits[i].Homed() {
			homed += string(k.axisNames[i])
		}
	}
	return Status{HomedAxes: homed, AxisMinimum: k.axesMin, AxisMaximum: k.axesMax}
}
