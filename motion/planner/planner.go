// Package planner implements the move look-ahead queue (Q): it holds
// unflushed Moves, assigns junction speeds between consecutive moves,
// and runs a backward/forward sweep to settle each Move's start_v,
// cruise_v and end_v before handing a flushed prefix to the toolhead.
//
// Grounded on original_source/klippy/extras/toolhead_stepper.py's
// Move.calc_junction/set_junction (see motion/move.go, which hosts the
// per-Move math this package orchestrates) and on the MoveQueue
// structure the same file imports from toolhead.py. The full
// MoveQueue.flush implementation isn't in the retrieved source, so the
// backward/forward sweep here is a direct implementation of the
// formulas spec.md §4.3 and §8 name explicitly (reachable start_v2,
// max_start_v2, trapezoid generation), rather than a line-for-line
// port — see DESIGN.md for the flush-threshold bookkeeping decision.
package planner

import (
	"math"

	"motionhost/motion"
	"motionhost/motion/extruder"
)

// Queue holds Moves from the moment they're accepted by the toolhead
// until they're flushed (handed off for trapq insertion) or rejected.
// Not safe for concurrent use; owned exclusively by the toolhead's
// reactor-thread call path, per the concurrency model (§5: "no
// suspension occurs inside add_move, move, or the junction/trapezoid
// math").
type Queue struct {
	moves    []*motion.Move
	extruder extruder.Interface

	// junctionFlush counts down as moves are added; reaching zero
	// triggers a lazy flush, matching the source's per-add
	// `self.junction_flush -= move.min_move_t`.
	junctionFlush float64
}

// New returns an empty Queue. ext supplies the extruder's own
// junction-velocity limit during CalcJunction.
func New(ext extruder.Interface) *Queue {
	return &Queue{
		extruder:      ext,
		junctionFlush: motion.LookaheadFlushTime,
	}
}

// Len reports the number of unflushed Moves.
func (q *Queue) Len() int { return len(q.moves) }

// Last returns the most recently queued Move, or nil if empty.
func (q *Queue) Last() *motion.Move {
	if len(q.moves) == 0 {
		return nil
	}
	return q.moves[len(q.moves)-1]
}

// Reset discards all buffered moves without flushing them, matching
// MoveQueue.reset — used on shutdown and drip-mode cancellation.
func (q *Queue) Reset() {
	q.moves = nil
	q.junctionFlush = motion.LookaheadFlushTime
}

// AddMove appends m, computing its junction against the current last
// move first. Returns true if the queue's junction-flush threshold was
// crossed and a lazy Flush should now be run by the caller (the
// toolhead decides whether "now" is convenient — add_move never
// suspends, per §5).
func (q *Queue) AddMove(m *motion.Move) bool {
	prev := q.Last()
	if prev != nil {
		extV2 := math.MaxFloat64
		if q.extruder != nil {
			extV2 = q.extruder.CalcJunction(prev, m)
		}
		m.CalcJunction(prev, extV2)
	}
	q.moves = append(q.moves, m)
	q.junctionFlush -= m.MinMoveT
	return q.junctionFlush <= 0
}

// Flush runs the backward/forward look-ahead sweep and calls
// SetJunction on every Move it settles, returning the settled moves in
// FIFO order and removing them from the queue.
//
// When lazy is true, the move most recently appended is left
// unresolved (its true end velocity may still improve once a
// following move's junction is known), so the sweep only settles
// moves strictly before it; when lazy is false (a forced flush — end
// of input, a non-kinematic-move boundary, an explicit
// flush_step_generation, or shutdown) every buffered move is settled,
// assuming the queue comes to a complete stop at its end.
func (q *Queue) Flush(lazy bool) []*motion.Move {
	n := len(q.moves)
	if n == 0 {
		return nil
	}
	settleCount := n
	if lazy {
		settleCount = n - 1
	}
	if settleCount <= 0 {
		return nil
	}

	// Backward pass: for each move (from the flush boundary back to
	// the start of the buffer), the fastest it can start is bounded
	// both by its own max_start_v2 and by what's reachable while still
	// being able to decelerate down to the next move's settled start
	// velocity within this move's own delta_v2 budget.
	startV2 := make([]float64, settleCount)
	var nextEndV2 float64
	if !lazy {
		nextEndV2 = 0 // queue end: come to a complete stop
	} else {
		// The boundary move (not yet settled) still bounds how fast
		// the last settled move may end, via its own max_start_v2.
		nextEndV2 = q.moves[settleCount].MaxStartV2
	}
	for i := settleCount - 1; i >= 0; i-- {
		m := q.moves[i]
		reachable := nextEndV2 + m.DeltaV2
		sv2 := math.Min(m.MaxStartV2, reachable)
		startV2[i] = sv2
		nextEndV2 = sv2
	}

	// Forward pass: cruise as high as max_cruise_v2 allows, subject to
	// being reachable both by accelerating up from this move's start
	// and by being decelerable back down to the next move's start
	// (which becomes this move's end velocity). Doing both within one
	// move caps cruise_v2 at (start_v2 + end_v2 + delta_v2) / 2.
	flushed := make([]*motion.Move, settleCount)
	for i := 0; i < settleCount; i++ {
		m := q.moves[i]
		sv2 := startV2[i]
		var ev2 float64
		if i+1 < settleCount {
			ev2 = startV2[i+1]
		} else if i+1 < n {
			ev2 = q.moves[i+1].MaxStartV2
		} else {
			ev2 = 0
		}
		cv2 := math.Min(m.MaxCruiseV2, (sv2+ev2+m.DeltaV2)*0.5)
		if cv2 < sv2 {
			cv2 = sv2
		}
		if cv2 < ev2 {
			cv2 = ev2
		}
		m.SetJunction(sv2, cv2, ev2)
		flushed[i] = m
	}

	q.moves = q.moves[settleCount:]
	q.junctionFlush = motion.LookaheadFlushTime
	return flushed
}
