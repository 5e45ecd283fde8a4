// Package trapq implements the trapezoidal motion queue: an ordered,
// append-only list of timed position/velocity segments consumed by an
// external iterative step-time solver (out of scope per the core
// spec — see motion/stepsolver). It mirrors the opaque trapq handle
// klippy/chelper/trapq.c exposes to the host, generalized from a
// fixed XYZ triple to any 3-slot axis group (a kinematic group binds
// fewer than three real axes by carrying zero displacement in the
// unused slots, per §3 of the spec).
package trapq

import "sync"

// Segment is one trapezoidal velocity profile, time-ordered and
// immutable once appended. Fields match trapq_append's parameter list
// 1:1 so a future itersolve-equivalent can consume them without
// translation.
type Segment struct {
	T0                     float64
	AccelT, CruiseT, DecelT float64
	StartPos               [3]float64
	AxesR                  [3]float64
	StartV, CruiseV, Accel float64
}

// EndTime returns t0 + accel_t + cruise_t + decel_t.
func (s Segment) EndTime() float64 {
	return s.T0 + s.AccelT + s.CruiseT + s.DecelT
}

// Queue holds segments in non-decreasing t0 order, appended by the
// owning kinematic group and finalized (popped) in time order by the
// toolhead's flush loop. It is not safe for concurrent use from
// outside the single reactor thread, but guards against the
// background MCU-clock-sync thread calling FinalizeMoves and Append
// from different goroutines with a mutex, matching the concurrency
// model in spec §5 ("background MCU-clock sampling... interacts only
// through two functions... expected to be safe to call from the
// reactor thread").
type Queue struct {
	mu       sync.Mutex
	segments []Segment
	position [3]float64
}

// New returns an empty trapq with its logical position at the origin.
func New() *Queue {
	return &Queue{}
}

// Append adds a new segment. Matches trapq_append(tq, t0, accel_t,
// cruise_t, decel_t, sx, sy, sz, rx, ry, rz, start_v, cruise_v, accel).
func (q *Queue) Append(t0, accelT, cruiseT, decelT float64, startPos, axesR [3]float64, startV, cruiseV, accel float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.segments = append(q.segments, Segment{
		T0: t0, AccelT: accelT, CruiseT: cruiseT, DecelT: decelT,
		StartPos: startPos, AxesR: axesR,
		StartV: startV, CruiseV: cruiseV, Accel: accel,
	})
}

// FinalizeMoves expires (removes) segments whose EndTime is at or
// before upto, in time order. Passing motion.Never flushes everything
// — used both by the ordinary flush path and by drip-mode cancellation
// (spec §5, "Cancellation").
func (q *Queue) FinalizeMoves(upto float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := 0
	for i < len(q.segments) && q.segments[i].EndTime() <= upto {
		i++
	}
	q.segments = q.segments[i:]
}

// SetPosition pins the queue's logical position at time t, discarding
// any segments (used by toolhead.SetPosition / homing). Matches
// trapq_set_position(tq, t, x, y, z).
func (q *Queue) SetPosition(t float64, x, y, z float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.segments = q.segments[:0]
	q.position = [3]float64{x, y, z}
}

// Position returns the last position pinned via SetPosition. Real
// Klipper derives the live position from the iterative solver instead;
// since that solver is an external collaborator here, callers that
// need the *commanded* end position should track it themselves (the
// toolhead's commanded_pos does exactly this).
func (q *Queue) Position() [3]float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.position
}

// Segments returns a snapshot of the currently queued segments, oldest
// first.
func (q *Queue) Segments() []Segment {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Segment, len(q.segments))
	copy(out, q.segments)
	return out
}

// Len reports the number of unflushed segments.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.segments)
}
