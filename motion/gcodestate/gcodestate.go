// Package gcodestate implements the G-code motion state machine (G):
// absolute/relative coordinate mode, base and homing offsets, speed
// and extrude-factor overrides, and the G1/G92/M220/M221/
// SET_GCODE_OFFSET/SAVE_GCODE_STATE/RESTORE_GCODE_STATE/GET_POSITION
// family of commands, all translating G-code coordinates into the
// Move requests the toolhead actually executes.
//
// Grounded on original_source/klippy/extras/gcode_move.py's GCodeMove
// class, generalized from a fixed XYZ(E) axis layout to any axis-name
// string the toolhead was built with.
package gcodestate

import (
	"fmt"

	"motionhost/motion"
)

// Mover is the subset of the toolhead a State needs: committing a
// move and reading back the last commanded position. A MoveTransform
// (bed mesh, skew correction, etc.) can substitute for the toolhead
// here exactly as set_move_transform lets one intercept move/
// get_position in the original source.
type Mover interface {
	Move(pos motion.Coord, speed float64) error
	GetPosition() motion.Coord
}

// MoveTransform lets a layer above the toolhead (bed mesh compensation,
// skew correction) intercept every commanded move, matching
// set_move_transform's transform.move/transform.get_position pair.
type MoveTransform interface {
	Move(pos motion.Coord, speed float64) error
	GetPosition() motion.Coord
}

// SavedState is a named snapshot of the mutable parts of State,
// matching the dict cmd_SAVE_GCODE_STATE stores.
type SavedState struct {
	AbsoluteCoord   bool
	AbsoluteExtrude bool
	BasePosition    []float64
	LastPosition    []float64
	HomingPosition  []float64
	Speed           float64
	SpeedFactor     float64
	ExtrudeFactor   float64
}

// State is the G-code motion state machine: it holds the interpreted
// coordinate system (absolute/relative, active offsets, unit and
// speed scaling) and turns incoming G-code parameters into the
// absolute Coord the toolhead moves to.
type State struct {
	axisNames string
	axisCount int
	mover     Mover

	absoluteCoord   bool
	absoluteExtrude bool

	basePosition   []float64
	lastPosition   []float64
	homingPosition []float64

	speed         float64
	speedFactor   float64
	extrudeFactor float64

	savedStates map[string]SavedState
}

// New returns a State for a toolhead with axisCount kinematic axes
// (plus the implicit extruder slot), matching GCodeMove.__init__'s
// defaults (absolute coordinates, 25 mm/s default speed, the 1/60
// mm/min-to-mm/s feedrate factor).
func New(axisNames string, mover Mover) *State {
	n := len(axisNames) + 1
	return &State{
		axisNames:       axisNames,
		axisCount:       len(axisNames),
		mover:           mover,
		absoluteCoord:   true,
		absoluteExtrude: true,
		basePosition:    make([]float64, n),
		lastPosition:    make([]float64, n),
		homingPosition:  make([]float64, n),
		speed:           25.0,
		speedFactor:     1.0 / 60.0,
		extrudeFactor:   1.0,
		savedStates:     make(map[string]SavedState),
	}
}

// ResetLastPosition re-reads the mover's actual commanded position
// into last_position, matching reset_last_position — called after any
// SetPosition/ManualMove/command-error on the toolhead so the G-code
// state doesn't drift from what was actually committed.
func (s *State) ResetLastPosition() {
	pos := s.mover.GetPosition()
	copy(s.lastPosition, pos.Values)
}

// gcodePosition returns last_position with base_position subtracted
// and the extrude factor divided back out, matching
// _get_gcode_position.
func (s *State) gcodePosition() []float64 {
	p := make([]float64, len(s.lastPosition))
	for i := range p {
		p[i] = s.lastPosition[i] - s.basePosition[i]
	}
	p[s.axisCount] /= s.extrudeFactor
	return p
}

// Status is the read-only snapshot matching GCodeMove.get_status.
type Status struct {
	SpeedFactor        float64
	Speed              float64
	ExtrudeFactor      float64
	AbsoluteCoordinates bool
	AbsoluteExtrude    bool
	HomingOrigin       motion.Coord
	Position           motion.Coord
	GCodePosition      motion.Coord
}

func (s *State) GetStatus() Status {
	return Status{
		SpeedFactor:         s.speedFactor * 60.0,
		Speed:               s.speed / s.speedFactor,
		ExtrudeFactor:       s.extrudeFactor,
		AbsoluteCoordinates: s.absoluteCoord,
		AbsoluteExtrude:     s.absoluteExtrude,
		HomingOrigin:        motion.Coord{Values: append([]float64{}, s.homingPosition...)},
		Position:            motion.Coord{Values: append([]float64{}, s.lastPosition...)},
		GCodePosition:       motion.Coord{Values: s.gcodePosition()},
	}
}

// G1 applies a move command's axis/E/F parameters (keyed by their
// single-letter G-code name) to last_position and commits the move
// via the mover, matching cmd_G1.
func (s *State) G1(params map[byte]float64) error {
	for i := 0; i < s.axisCount; i++ {
		v, ok := params[s.axisNames[i]]
		if !ok {
			continue
		}
		if !s.absoluteCoord {
			s.lastPosition[i] += v
		} else {
			s.lastPosition[i] = v + s.basePosition[i]
		}
	}
	if v, ok := params['E']; ok {
		v *= s.extrudeFactor
		if !s.absoluteCoord || !s.absoluteExtrude {
			s.lastPosition[s.axisCount] += v
		} else {
			s.lastPosition[s.axisCount] = v + s.basePosition[s.axisCount]
		}
	}
	if f, ok := params['F']; ok {
		if f <= 0 {
			return motion.ParseErrorf("invalid speed in G1 command")
		}
		s.speed = f * s.speedFactor
	}
	return s.mover.Move(motion.Coord{Values: append([]float64{}, s.lastPosition...)}, s.speed)
}

// G92 sets the offset between gcode and machine coordinates so the
// current last_position reads as the given values, matching cmd_G92.
// A bare G92 with no parameters copies last_position into
// base_position, so every axis (E included) reads as zero.
func (s *State) G92(params map[byte]float64) {
	any := false
	for i := 0; i < s.axisCount; i++ {
		if v, ok := params[s.axisNames[i]]; ok {
			s.basePosition[i] = s.lastPosition[i] - v
			any = true
		}
	}
	if v, ok := params['E']; ok {
		s.basePosition[s.axisCount] = s.lastPosition[s.axisCount] - v*s.extrudeFactor
		any = true
	}
	if !any {
		copy(s.basePosition, s.lastPosition)
	}
}

// SetAbsoluteCoord implements G90/G91.
func (s *State) SetAbsoluteCoord(absolute bool) { s.absoluteCoord = absolute }

// SetAbsoluteExtrude implements M82/M83.
func (s *State) SetAbsoluteExtrude(absolute bool) { s.absoluteExtrude = absolute }

// SpeedFactorOverride implements M220: S is a percentage of the
// mm/min-to-mm/s feedrate scale.
func (s *State) SpeedFactorOverride(percent float64) {
	value := (percent / 100.0) / 60.0
	s.speed = (s.speed / s.speedFactor) * value
	s.speedFactor = value
}

// ExtrudeFactorOverride implements M221: S is a percentage extrusion
// multiplier, applied so the current E position reads unchanged under
// the new factor.
func (s *State) ExtrudeFactorOverride(percent float64) {
	newFactor := percent / 100.0
	lastE := s.lastPosition[s.axisCount]
	eValue := (lastE - s.basePosition[s.axisCount]) / s.extrudeFactor
	s.basePosition[s.axisCount] = lastE - eValue*newFactor
	s.extrudeFactor = newFactor
}

// SetGCodeOffset implements SET_GCODE_OFFSET: params may set an axis's
// absolute homing-origin offset directly, or (via the axis+"_ADJUST"
// key) nudge it relative to its current value; move, if true, also
// drives the toolhead through the resulting position delta.
func (s *State) SetGCodeOffset(params map[string]float64, move bool, moveSpeed float64) error {
	letters := s.axisNames + "E"
	delta := make([]float64, len(letters))
	for i := 0; i < len(letters); i++ {
		letter := string(letters[i])
		offset, ok := params[letter]
		if !ok {
			adjust, ok2 := params[letter+"_ADJUST"]
			if !ok2 {
				continue
			}
			offset = adjust + s.homingPosition[i]
		}
		d := offset - s.homingPosition[i]
		delta[i] = d
		s.basePosition[i] += d
		s.homingPosition[i] = offset
	}
	if move {
		speed := moveSpeed
		if speed <= 0 {
			speed = s.speed
		}
		for i, d := range delta {
			s.lastPosition[i] += d
		}
		return s.mover.Move(motion.Coord{Values: append([]float64{}, s.lastPosition...)}, speed)
	}
	return nil
}

// SaveState implements SAVE_GCODE_STATE.
func (s *State) SaveState(name string) {
	s.savedStates[name] = SavedState{
		AbsoluteCoord:   s.absoluteCoord,
		AbsoluteExtrude: s.absoluteExtrude,
		BasePosition:    append([]float64{}, s.basePosition...),
		LastPosition:    append([]float64{}, s.lastPosition...),
		HomingPosition:  append([]float64{}, s.homingPosition...),
		Speed:           s.speed,
		SpeedFactor:     s.speedFactor,
		ExtrudeFactor:   s.extrudeFactor,
	}
}

// RestoreState implements RESTORE_GCODE_STATE: the relative E position
// is preserved across the restore (matching the original's e_diff
// adjustment) so resuming mid-print doesn't jump the extruder.
func (s *State) RestoreState(name string, move bool, moveSpeed float64) error {
	saved, ok := s.savedStates[name]
	if !ok {
		return motion.ParseErrorf("unknown g-code state: %s", name)
	}
	s.absoluteCoord = saved.AbsoluteCoord
	s.absoluteExtrude = saved.AbsoluteExtrude
	s.basePosition = append([]float64{}, saved.BasePosition...)
	s.homingPosition = append([]float64{}, saved.HomingPosition...)
	s.speed = saved.Speed
	s.speedFactor = saved.SpeedFactor
	s.extrudeFactor = saved.ExtrudeFactor

	eDiff := s.lastPosition[s.axisCount] - saved.LastPosition[s.axisCount]
	s.basePosition[s.axisCount] += eDiff

	if move {
		speed := moveSpeed
		if speed <= 0 {
			speed = s.speed
		}
		copy(s.lastPosition[:s.axisCount], saved.LastPosition[:s.axisCount])
		return s.mover.Move(motion.Coord{Values: append([]float64{}, s.lastPosition...)}, speed)
	}
	return nil
}

// GetPositionReport formats the multi-line mcu/stepper/kinematic/
// toolhead/gcode/base/homing breakdown GET_POSITION responds with,
// matching cmd_GET_POSITION's layout (mcu/stepper readback is supplied
// by the caller, since that lives in the MCU/stepper collaborator
// this package doesn't depend on).
func (s *State) GetPositionReport(mcuLine, stepperLine, kinematicLine string, toolheadPos motion.Coord) string {
	letters := s.axisNames + "E"
	gcodePos := s.gcodePosition()
	return fmt.Sprintf("mcu: %s\nstepper: %s\nkinematic: %s\ntoolhead: %s\ngcode: %s\ngcode base: %s\ngcode homing: %s",
		mcuLine, stepperLine, kinematicLine,
		formatCoord(letters, toolheadPos.Values),
		formatCoord(letters, gcodePos),
		formatCoord(letters, s.basePosition),
		formatCoord(s.axisNames, s.homingPosition[:s.axisCount]))
}

func formatCoord(letters string, values []float64) string {
	out := ""
	for i := 0; i < len(letters) && i < len(values); i++ {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%c:%.6f", letters[i], values[i])
	}
	return out
}

// M114Report formats M114's single-line position readout.
func (s *State) M114Report() string {
	p := s.gcodePosition()
	letters := s.axisNames + "E"
	out := ""
	for i := 0; i < len(letters); i++ {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%c:%.3f", letters[i], p[i])
	}
	return out
}
