// Package stepsolver declares the narrow interface the motion core
// expects from an external iterative step-time solver: something that
// turns a finalized trapq segment into the per-stepper step times an
// MCU transport can schedule. No solver is implemented here — the
// actual math (itersolve_gen_steps_range/stepcompress_append in
// Klipper's C helper library) is the out-of-scope collaborator the
// spec names explicitly; this package only gives toolhead.ToolHead a
// type to register against.
//
// Grounded on original_source/klippy/extras/toolhead_stepper.py's
// register_step_generator/note_step_generation_scan_time call sites
// and its MCU_Stepper.generate_steps commentary describing the
// itersolve_generate_steps -> itersolve_gen_steps_range ->
// stepcompress_append pipeline.
package stepsolver

import "motionhost/motion/trapq"

// Generator turns newly finalized trapq segments (up to flushTime)
// into scheduled steps for one stepper. Implementations live outside
// this core; a no-op Generator is valid for testing the toolhead's
// flush bookkeeping without a real solver attached.
type Generator interface {
	// GenerateSteps is called once per flush with the stepper's
	// owning trapq and the deadline up to which segments are now
	// final, matching generate_steps(flush_time).
	GenerateSteps(q *trapq.Queue, flushTime float64) error

	// SetPosition pins the solver's internal step count to match a
	// newly set kinematic position, matching itersolve_set_position.
	SetPosition(pos [3]float64)

	// ScanTime reports how far behind the flush deadline this
	// generator needs finalized segments to remain available (its
	// note_step_generation_scan_time delay), so the toolhead can fold
	// it into kinFlushDelay via NoteStepGenerationScanTime.
	ScanTime() float64
}
