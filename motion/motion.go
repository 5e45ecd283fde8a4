// Package motion holds the shared data model of the motion-planning
// core: coordinates, the Move record produced by the toolhead and
// consumed by the look-ahead queue and kinematics, and the error
// categories every layer reports through.
//
// Common suffixes, kept from the Klipper naming convention the whole
// stack is grounded on: _d is distance (mm), _v is velocity (mm/s),
// _v2 is velocity squared (mm^2/s^2), _t is time (s), _r is a ratio.
package motion

import (
	"errors"
	"fmt"
	"math"
)

// Axis identifies a single coordinate slot. The kinematic axes (X, Y,
// Z, and optionally A, B, C) occupy the first AxisCount slots of a
// Coord; the extruder always occupies the last slot.
type Axis int

// Coord is a fixed-arity tuple of axis values: the kinematic axes
// followed by the extruder slot. Unlike the Python source's use of
// `None` for "axis not specified", a Coord here always holds
// AxisCount()+1 valid floats — the gcode state machine fills unset
// slots with the previous commanded position before a Coord ever
// reaches the toolhead.
type Coord struct {
	Values []float64
}

// NewCoord returns a zeroed Coord sized for axisCount kinematic axes
// plus one extruder slot.
func NewCoord(axisCount int) Coord {
	return Coord{Values: make([]float64, axisCount+1)}
}

// Clone returns an independent copy.
func (c Coord) Clone() Coord {
	v := make([]float64, len(c.Values))
	copy(v, c.Values)
	return Coord{Values: v}
}

// E returns the extruder slot (the last element).
func (c Coord) E() float64 { return c.Values[len(c.Values)-1] }

// AxisCount returns the number of kinematic axes (excludes extruder).
func (c Coord) AxisCount() int { return len(c.Values) - 1 }

// Sub returns c - o element-wise; both must have equal length.
func (c Coord) Sub(o Coord) []float64 {
	d := make([]float64, len(c.Values))
	for i := range c.Values {
		d[i] = c.Values[i] - o.Values[i]
	}
	return d
}

// Error categories, per the spec's error-handling design (§7): parse,
// range and fatal. Callers wrap these with fmt.Errorf("...: %w", ...)
// to add context; dispatchers type-switch on errors.Is against these
// sentinels to decide how to report the failure upstream.
var (
	// ErrParse covers invalid numeric parameters, unsupported options
	// (G2/G3 R, G20 units) and non-positive speeds. State is never
	// mutated when this is returned.
	ErrParse = errors.New("gcode parse error")

	// ErrRange covers a move endpoint outside homed limits, or a move
	// on an axis that has never been homed. The offending Move is
	// rejected before it reaches the look-ahead queue.
	ErrRange = errors.New("move out of range")

	// ErrFatal covers kinematics load failure, MCU disconnect, or an
	// unhandled exception inside the flush timer. Triggers shutdown.
	ErrFatal = errors.New("fatal motion core error")
)

// ParseErrorf wraps msg as an ErrParse.
func ParseErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrParse}, args...)...)
}

// RangeErrorf wraps msg as an ErrRange.
func RangeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrRange}, args...)...)
}

// FatalErrorf wraps msg as an ErrFatal.
func FatalErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrFatal}, args...)...)
}

// Never is the sentinel "infinite future" time used throughout the
// reactor, trapq and toolhead, replacing the Python source's use of a
// module-level NEVER constant plus an exception to unwind drip mode.
const Never = math.MaxFloat64

// Timing constants shared by the toolhead and look-ahead queue,
// carried over unchanged from Klipper's toolhead.py.
const (
	MoveBatchTime      = 0.500 // chunk size for _update_move_time
	LookaheadFlushTime = 0.250 // junction-flush threshold reset value
	MinKinTime         = 0.100 // minimum time reserved for kinematic moves
	SDSCheckTime        = 0.001 // kin_flush_delay: step-generator scan window
	DripSegmentTime    = 0.050 // slice size while drip-feeding homing moves
	DripTime           = 0.100 // extra flush margin kept during drip mode
)

// Hypot3 is the Euclidean length of a 3-vector; used for axis-r
// normalization and Z-speed limiting.
func Hypot3(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
