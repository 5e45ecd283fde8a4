// Package arc implements G2/G3 center-format arc decomposition (A):
// it turns an I/J/K-offset arc request into a sequence of short G1
// moves, one per segment, splitting on whichever of the XY/XZ/YZ
// planes G17/G18/G19 last selected and treating the third axis as a
// helical (linear) travel.
//
// Grounded on original_source/klippy/extras/gcode_arcs.py's
// ArcSupport, itself a port of Marlin's plan_arc(); PlanArc is kept a
// literal translation (including its open full-circle edge case, left
// unresolved per the spec's explicit instruction not to guess at it)
// rather than a "cleaned up" reimplementation.
package arc

import (
	"math"

	"motionhost/motion"
	"motionhost/motion/gcodestate"
)

// Plane selects which two axes the arc's I/J/K offset is measured in;
// the third kinematic axis (if it also moves) is helical travel.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
)

// Planner decomposes G2/G3 commands into G1 moves against a
// gcodestate.State, matching ArcSupport. resolution is the target
// segment length in mm (the original's mm_per_arc_segment).
type Planner struct {
	state      *gcodestate.State
	resolution float64
	plane      Plane
}

// New returns a Planner with the given segment resolution (mm); the
// original source defaults this to 1.0 when unconfigured.
func New(state *gcodestate.State, resolution float64) *Planner {
	if resolution <= 0 {
		resolution = 1.0
	}
	return &Planner{state: state, resolution: resolution}
}

// SetPlane implements G17/G18/G19.
func (p *Planner) SetPlane(plane Plane) { p.plane = plane }

// G2 executes a clockwise arc, matching cmd_G2.
func (p *Planner) G2(params map[byte]float64) error { return p.arc(params, true) }

// G3 executes a counter-clockwise arc, matching cmd_G3.
func (p *Planner) G3(params map[byte]float64) error { return p.arc(params, false) }

func (p *Planner) arc(params map[byte]float64, clockwise bool) error {
	status := p.state.GetStatus()
	if !status.AbsoluteCoordinates {
		return motion.ParseErrorf("G2/G3 does not support relative move mode")
	}
	currentPos := status.GCodePosition.Values

	target := [3]float64{currentPos[0], currentPos[1], currentPos[2]}
	if v, ok := params['X']; ok {
		target[0] = v
	}
	if v, ok := params['Y']; ok {
		target[1] = v
	}
	if v, ok := params['Z']; ok {
		target[2] = v
	}
	if _, ok := params['R']; ok {
		return motion.ParseErrorf("G2/G3 does not support R moves")
	}

	var offset [2]float64
	var alphaAxis, betaAxis, helicalAxis int
	switch p.plane {
	case PlaneXZ:
		offset = [2]float64{params['I'], params['K']}
		alphaAxis, betaAxis, helicalAxis = 0, 2, 1
	case PlaneYZ:
		offset = [2]float64{params['J'], params['K']}
		alphaAxis, betaAxis, helicalAxis = 1, 2, 0
	default:
		offset = [2]float64{params['I'], params['J']}
		alphaAxis, betaAxis, helicalAxis = 0, 1, 2
	}
	if offset[0] == 0 && offset[1] == 0 {
		return motion.ParseErrorf("G2/G3 requires IJ, IK or JK parameters")
	}

	asE, hasE := params['E']
	asF, hasF := params['F']

	coords := PlanArc([3]float64{currentPos[0], currentPos[1], currentPos[2]}, target, offset, clockwise, alphaAxis, betaAxis, helicalAxis, p.resolution)

	eBase := 0.0
	ePerMove := 0.0
	if hasE {
		if status.AbsoluteExtrude {
			eBase = currentPos[3]
		}
		ePerMove = (asE - eBase) / float64(len(coords))
	}

	for _, c := range coords {
		g1 := map[byte]float64{'X': c[0], 'Y': c[1], 'Z': c[2]}
		if ePerMove != 0 {
			g1['E'] = eBase + ePerMove
			if status.AbsoluteExtrude {
				eBase += ePerMove
			}
		}
		if hasF {
			g1['F'] = asF
		}
		if err := p.state.G1(g1); err != nil {
			return err
		}
	}
	return nil
}

// PlanArc decomposes an arc from currentPos to targetPos (each an
// X/Y/Z gcode-space position) around the given I/J-style offset into a slice of
// X/Y/Z waypoints, one per segment plus the final target. A literal
// port of Marlin's plan_arc via gcode_arcs.py's planArc, including its
// documented "sometimes produces full circles" edge case when the
// angular travel comes out to exactly zero.
func PlanArc(currentPos, targetPos [3]float64, offset [2]float64, clockwise bool, alphaAxis, betaAxis, helicalAxis int, mmPerArcSegment float64) [][3]float64 {
	rP := -offset[0]
	rQ := -offset[1]

	centerP := currentPos[alphaAxis] - rP
	centerQ := currentPos[betaAxis] - rQ
	rtAlpha := targetPos[alphaAxis] - centerP
	rtBeta := targetPos[betaAxis] - centerQ
	angularTravel := math.Atan2(rP*rtBeta-rQ*rtAlpha, rP*rtAlpha+rQ*rtBeta)
	if angularTravel < 0 {
		angularTravel += 2 * math.Pi
	}
	if clockwise {
		angularTravel -= 2 * math.Pi
	}

	if angularTravel == 0 &&
		currentPos[alphaAxis] == targetPos[alphaAxis] &&
		currentPos[betaAxis] == targetPos[betaAxis] {
		// Target coincides with current position and the computed
		// rotation is zero: treat it as a full circle rather than a
		// zero-length move.
		angularTravel = 2 * math.Pi
	}

	linearTravel := targetPos[helicalAxis] - currentPos[helicalAxis]
	radius := math.Hypot(rP, rQ)
	flatMM := radius * angularTravel
	var mmOfTravel float64
	if linearTravel != 0 {
		mmOfTravel = math.Hypot(flatMM, linearTravel)
	} else {
		mmOfTravel = math.Abs(flatMM)
	}
	segments := math.Max(1, math.Floor(mmOfTravel/mmPerArcSegment))

	thetaPerSegment := angularTravel / segments
	linearPerSegment := linearTravel / segments

	var coords [][3]float64
	for i := 1; i < int(segments); i++ {
		distHelical := float64(i) * linearPerSegment
		cosTi := math.Cos(float64(i) * thetaPerSegment)
		sinTi := math.Sin(float64(i) * thetaPerSegment)
		rP := -offset[0]*cosTi + offset[1]*sinTi
		rQ := -offset[0]*sinTi - offset[1]*cosTi

		var c [3]float64
		c[alphaAxis] = centerP + rP
		c[betaAxis] = centerQ + rQ
		c[helicalAxis] = currentPos[helicalAxis] + distHelical
		coords = append(coords, c)
	}
	coords = append(coords, targetPos)
	return coords
}
