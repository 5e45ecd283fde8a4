// Package toolhead implements the print-time clock: the component
// that owns "now" in machine time, decides when buffered moves are
// safe to commit to the kinematic groups' trapqs, and drives the
// drip-feed loop homing depends on.
//
// Grounded directly on the ExtraToolHead class in
// original_source/klippy/extras/toolhead_stepper.py — its
// constructor defaults, _update_move_time/_calc_print_time/
// _process_moves/flush_step_generation/_flush_lookahead/_check_stall/
// _flush_handler, move/manual_move/dwell/wait_moves,
// _update_drip_move_time/drip_move, stats/check_busy/get_status, and
// _calc_junction_deviation/cmd_SET_VELOCITY_LIMIT/cmd_M204 — adapted
// from a single fixed XYZ(+ABC) toolhead into any ordered set of
// kinematics.Kinematics groups sharing one clock, one look-ahead
// queue and one extruder.
//
// Two things the source leans on are treated as external
// collaborators here, same as the iterative step-time solver: the
// MCU clock-sync oracle (estimated_print_time / flush_moves), and the
// homing sequencer (homing.py is not part of the retrieved source and
// is out of this core's scope — Home only forwards to each
// kinematics group's own Home, which already knows how to compute
// force/target positions; actually driving a drip move toward an
// endstop is the homing sequencer's job, supplied by the caller as a
// kinematics.HomingState).
package toolhead

import (
	"errors"
	"fmt"
	"math"

	"motionhost/motion"
	"motionhost/motion/extruder"
	"motionhost/motion/kinematics"
	"motionhost/motion/planner"
	"motionhost/motion/reactor"
	"motionhost/motion/trapq"
)

// MCU is the clock-sync and transport oracle the toolhead needs: a
// way to translate its own eventtime into the MCU's print-time
// estimate, and a way to tell the transport layer it may flush
// already-generated steps. hostlink.Link implements it over a
// serial MCU connection.
type MCU interface {
	EstimatedPrintTime(eventtime float64) float64
	FlushMoves(mcuFlushTime float64)
	CheckActive(printTime, eventtime float64)
}

// Group binds one named kinematics.Kinematics (its axis letters, e.g.
// "XYZ" or "AB") into this toolhead's shared clock and queue.
type Group struct {
	Name string
	Kin  kinematics.Kinematics
}

// errDripModeEnd unwinds drip_move's loop once the caller's
// completion (typically "endstop triggered") fires, matching
// DripModeEndSignal's role as a control-flow exception in the
// original source.
var errDripModeEnd = errors.New("drip mode ended")

// ToolHead is the print-time clock and move dispatcher. Not safe for
// concurrent use — owned exclusively by the single reactor thread per
// the concurrency model (spec §5); the MCU's background clock-sync
// goroutine only ever calls back through the MCU interface above.
type ToolHead struct {
	axisNames string
	axisCount int
	groups    []Group
	extruder  extruder.Interface
	queue     *planner.Queue
	reactor   *reactor.Reactor
	mcu       MCU

	canPause  bool
	checkMoves bool

	maxVelocity          float64
	maxAccel             float64
	requestedAccelToDecel float64
	maxAccelToDecel      float64
	squareCornerVelocity float64
	junctionDeviation    float64

	bufferTimeLow   float64
	bufferTimeHigh  float64
	bufferTimeStart float64
	moveFlushTime   float64

	printTime          float64
	specialQueuingState string // "", "Flushed", "Priming", "Drip"
	needCheckStall     float64
	flushTimer         *reactor.Timer
	idleFlushPrintTime float64
	printStall         int
	dripCompletion     *reactor.Completion

	kinFlushDelay   float64
	kinFlushTimes   []float64
	forceFlushTime  float64
	lastKinMoveTime float64

	stepGenerators []func(flushTime float64)
	commandedPos   motion.Coord
}

// New builds a ToolHead over groups (in dispatch order) sharing ext
// as the single extruder kinematic. axisNames is the full letter set
// across all groups (e.g. "XYZAB"), used only to size commandedPos;
// maxVelocity/maxAccel/squareCornerVelocity seed the toolhead's
// defaults exactly as ExtraToolHead.__init__'s config reads do.
func New(axisNames string, groups []Group, ext extruder.Interface, r *reactor.Reactor, mcu MCU, maxVelocity, maxAccel, squareCornerVelocity float64) *ToolHead {
	th := &ToolHead{
		axisNames:            axisNames,
		axisCount:            len(axisNames),
		groups:               groups,
		extruder:             ext,
		reactor:              r,
		mcu:                  mcu,
		canPause:             true,
		maxVelocity:          maxVelocity,
		maxAccel:             maxAccel,
		requestedAccelToDecel: maxAccel * 0.5,
		squareCornerVelocity: squareCornerVelocity,
		bufferTimeLow:        1.0,
		bufferTimeHigh:       2.0,
		bufferTimeStart:      0.25,
		moveFlushTime:        0.05,
		specialQueuingState:  "Flushed",
		needCheckStall:       -1.0,
		kinFlushDelay:        motion.SDSCheckTime,
		commandedPos:         motion.NewCoord(len(axisNames)),
	}
	th.calcJunctionDeviation()
	th.queue = planner.New(ext)
	th.flushTimer = r.RegisterTimer(th.flushHandler, motion.Never)
	return th
}

// calcJunctionDeviation matches _calc_junction_deviation: derives the
// corner-speed limit from square_corner_velocity and recomputes the
// reduced accel-to-decel ceiling from whichever of the requested value
// or max_accel is smaller.
func (th *ToolHead) calcJunctionDeviation() {
	scv2 := th.squareCornerVelocity * th.squareCornerVelocity
	th.junctionDeviation = scv2 * (math.Sqrt2 - 1.0) / th.maxAccel
	th.maxAccelToDecel = math.Min(th.requestedAccelToDecel, th.maxAccel)
}

// RegisterStepGenerator adds fn to the set invoked every
// updateMoveTime batch, matching register_step_generator.
func (th *ToolHead) RegisterStepGenerator(fn func(flushTime float64)) {
	th.stepGenerators = append(th.stepGenerators, fn)
}

// NoteStepGenerationScanTime widens (or narrows) the kinematic flush
// delay window a stepper needs scanned ahead of the print-time clock,
// matching note_step_generation_scan_time.
func (th *ToolHead) NoteStepGenerationScanTime(delay, oldDelay float64) {
	th.flushStepGeneration()
	if oldDelay != 0 {
		for i, d := range th.kinFlushTimes {
			if d == oldDelay {
				th.kinFlushTimes = append(th.kinFlushTimes[:i], th.kinFlushTimes[i+1:]...)
				break
			}
		}
	}
	if delay != 0 {
		th.kinFlushTimes = append(th.kinFlushTimes, delay)
	}
	newDelay := motion.SDSCheckTime
	for _, d := range th.kinFlushTimes {
		if d > newDelay {
			newDelay = d
		}
	}
	th.kinFlushDelay = newDelay
}

// updateMoveTime advances print_time toward nextPrintTime in
// MoveBatchTime-sized steps, generating steps and finalizing trapq
// segments as it goes. Matches _update_move_time.
func (th *ToolHead) updateMoveTime(nextPrintTime float64) {
	fft := th.forceFlushTime
	for {
		th.printTime = math.Min(th.printTime+motion.MoveBatchTime, nextPrintTime)
		sgFlushTime := math.Max(fft, th.printTime-th.kinFlushDelay)
		for _, sg := range th.stepGenerators {
			sg(sgFlushTime)
		}
		freeTime := math.Max(fft, sgFlushTime-th.kinFlushDelay)
		for _, g := range th.groups {
			g.Kin.Trapq().FinalizeMoves(freeTime)
		}
		th.extruder.UpdateMoveTime(freeTime)
		mcuFlushTime := math.Max(fft, sgFlushTime-th.moveFlushTime)
		if th.mcu != nil {
			th.mcu.FlushMoves(mcuFlushTime)
		}
		if th.printTime >= nextPrintTime {
			break
		}
	}
}

// calcPrintTime resyncs print_time to the MCU's estimated print time
// plus the buffer margins the toolhead needs to stay ahead of the
// stepper generators. Matches _calc_print_time (the
// "toolhead:sync_print_time" event is left for the caller to emit via
// whatever diagnostics sink it's wired to).
func (th *ToolHead) calcPrintTime() {
	curtime := th.reactor.Monotonic()
	estPrintTime := th.mcu.EstimatedPrintTime(curtime)
	kinTime := math.Max(estPrintTime+motion.MinKinTime, th.forceFlushTime)
	kinTime += th.kinFlushDelay
	minPrintTime := math.Max(estPrintTime+th.bufferTimeStart, kinTime)
	if minPrintTime > th.printTime {
		th.printTime = minPrintTime
	}
}

// processMoves commits a flushed batch of Moves to every group's
// trapq and the extruder's, at consecutive print times, matching
// _process_moves (the extruder-only-move guard mirrors
// move.axes_d[axis_count] != 0). Returns errDripModeEnd if the
// toolhead's drip completion fires mid-batch.
func (th *ToolHead) processMoves(moves []*motion.Move) error {
	if th.specialQueuingState != "" {
		if th.specialQueuingState != "Drip" {
			th.specialQueuingState = ""
			th.needCheckStall = -1.0
			th.reactor.UpdateTimer(th.flushTimer, th.reactor.Monotonic())
		}
		th.calcPrintTime()
	}

	nextMoveTime := th.printTime
	for _, m := range moves {
		if m.IsKinematicMove {
			for _, g := range th.groups {
				ids := g.Kin.AxisIDs()
				var sp, ar [3]float64
				for i, idx := range ids {
					if idx >= 0 {
						sp[i] = m.StartPos.Values[idx]
						ar[i] = m.AxesR[idx]
					}
				}
				g.Kin.Trapq().Append(nextMoveTime, m.AccelT, m.CruiseT, m.DecelT,
					sp, ar, m.StartV, m.CruiseV, m.Accel)
			}
		}
		if m.AxesD[th.axisCount] != 0 {
			th.extruder.Move(nextMoveTime, m)
		}
		nextMoveTime += m.AccelT + m.CruiseT + m.DecelT
		for _, cb := range m.TimingCallbacks {
			cb(nextMoveTime)
		}
	}

	if th.specialQueuingState != "" {
		if err := th.updateDripMoveTime(nextMoveTime); err != nil {
			return err
		}
	}
	th.updateMoveTime(nextMoveTime)
	th.lastKinMoveTime = math.Max(th.lastKinMoveTime, nextMoveTime)
	return nil
}

// flushStepGeneration matches flush_step_generation: commit every
// buffered move, drop back to the "Flushed" special queuing state,
// and widen the force-flush time to cover the last kinematic move.
func (th *ToolHead) flushStepGeneration() error {
	if err := th.processMoves(th.queue.Flush(false)); err != nil {
		return err
	}
	th.specialQueuingState = "Flushed"
	th.needCheckStall = -1.0
	th.reactor.UpdateTimer(th.flushTimer, motion.Never)
	th.idleFlushPrintTime = 0

	lastf := th.printTime - th.kinFlushDelay
	flushTime := math.Max(lastf, th.lastKinMoveTime+th.kinFlushDelay)
	if flushTime > th.printTime {
		th.updateMoveTime(flushTime)
	}
	th.forceFlushTime = math.Max(th.forceFlushTime, flushTime)
	th.updateMoveTime(math.Max(th.printTime, th.forceFlushTime))
	return nil
}

// flushLookahead matches _flush_lookahead.
func (th *ToolHead) flushLookahead() error {
	if th.specialQueuingState != "" {
		return th.flushStepGeneration()
	}
	return th.processMoves(th.queue.Flush(false))
}

// GetLastMoveTime returns the print time by which every currently
// queued move will have been committed, flushing the look-ahead queue
// first. Matches get_last_move_time.
func (th *ToolHead) GetLastMoveTime() (float64, error) {
	if err := th.flushLookahead(); err != nil {
		return 0, err
	}
	if th.specialQueuingState != "" {
		th.calcPrintTime()
	}
	return th.printTime, nil
}

// checkStall matches _check_stall: pauses the reactor while too much
// unflushed print time has accumulated, counting a stall if the
// machine went idle waiting for more G-code.
func (th *ToolHead) checkStall() {
	eventtime := th.reactor.Monotonic()
	if th.specialQueuingState != "" {
		if th.idleFlushPrintTime != 0 {
			est := th.mcu.EstimatedPrintTime(eventtime)
			if est < th.idleFlushPrintTime {
				th.printStall++
			}
			th.idleFlushPrintTime = 0
		}
		th.specialQueuingState = "Priming"
		th.needCheckStall = -1.0
		th.reactor.UpdateTimer(th.flushTimer, eventtime+0.100)
	}
	for {
		est := th.mcu.EstimatedPrintTime(eventtime)
		bufferTime := th.printTime - est
		stallTime := bufferTime - th.bufferTimeHigh
		if stallTime <= 0 {
			break
		}
		if !th.canPause {
			th.needCheckStall = motion.Never
			return
		}
		wait := stallTime
		if wait > 1.0 {
			wait = 1.0
		}
		th.reactor.Pause(eventtime + wait)
		eventtime = th.reactor.Monotonic()
	}
	if th.specialQueuingState == "" {
		est := th.mcu.EstimatedPrintTime(eventtime)
		th.needCheckStall = est + th.bufferTimeHigh + 0.100
	}
}

// flushHandler is the flushTimer's callback: when the buffered print
// time runs low it flushes the look-ahead queue, otherwise it
// reschedules itself. Matches _flush_handler, except that an error
// returned by flushStepGeneration is discarded here: the timer
// callback has no error return and does not trigger a shutdown.
func (th *ToolHead) flushHandler(eventtime float64) float64 {
	printTime := th.printTime
	bufferTime := printTime - th.mcu.EstimatedPrintTime(eventtime)
	if bufferTime > th.bufferTimeLow {
		return eventtime + bufferTime - th.bufferTimeLow
	}
	th.flushStepGeneration()
	if printTime != th.printTime {
		th.idleFlushPrintTime = th.printTime
	}
	return motion.Never
}

// GetPosition returns the last commanded Coord.
func (th *ToolHead) GetPosition() motion.Coord { return th.commandedPos.Clone() }

// SetPosition pins every group's trapq and the extruder to newpos,
// discarding any in-flight moves, and marks homingAxes (keyed by
// absolute Move-slot index) as newly homed. Matches set_position.
func (th *ToolHead) SetPosition(newpos motion.Coord, homingAxes map[int]bool) error {
	if err := th.flushStepGeneration(); err != nil {
		return err
	}
	for _, g := range th.groups {
		ids := g.Kin.AxisIDs()
		var p [3]float64
		for i, idx := range ids {
			if idx >= 0 {
				p[i] = newpos.Values[idx]
			}
		}
		g.Kin.Trapq().SetPosition(th.printTime, p[0], p[1], p[2])
	}
	th.extruder.SetPosition(newpos.Values[th.axisCount], th.printTime)
	for _, g := range th.groups {
		g.Kin.SetPosition(newpos, homingAxes)
	}
	th.commandedPos = newpos.Clone()
	return nil
}

// Move queues a move to newpos at speed, matching ToolHead.move: it
// rejects a zero-length move silently, runs every relevant group's
// CheckMove plus the extruder's, then hands the Move to the look-ahead
// queue — flushing immediately if the queue's junction-flush threshold
// was crossed, same as MoveQueue.add_move's own lazy flush.
func (th *ToolHead) Move(newpos motion.Coord, speed float64) error {
	m := motion.NewMove(th.commandedPos, newpos, speed, th.maxVelocity, th.maxAccel, th.maxAccelToDecel, th.junctionDeviation)
	if m.MoveD == 0 {
		return nil
	}
	if m.IsKinematicMove && th.checkMoves {
		for _, g := range th.groups {
			if err := g.Kin.CheckMove(m); err != nil {
				return err
			}
		}
	}
	if m.AxesD[th.axisCount] != 0 {
		if err := th.extruder.CheckMove(m); err != nil {
			return err
		}
	}
	th.commandedPos = newpos.Clone()

	if th.queue.AddMove(m) {
		if err := th.processMoves(th.queue.Flush(true)); err != nil {
			return err
		}
	}
	if th.printTime > th.needCheckStall {
		th.checkStall()
	}
	return nil
}

// ManualMove moves to curpos with each nil entry in coord left at its
// last commanded value, matching manual_move's None-means-unchanged
// convention.
func (th *ToolHead) ManualMove(coord []*float64, speed float64) error {
	cur := th.commandedPos.Clone()
	for i, v := range coord {
		if v != nil && i < len(cur.Values) {
			cur.Values[i] = *v
		}
	}
	return th.Move(cur, speed)
}

// Dwell advances the print-time clock by delay without moving,
// matching dwell.
func (th *ToolHead) Dwell(delay float64) error {
	last, err := th.GetLastMoveTime()
	if err != nil {
		return err
	}
	if delay < 0 {
		delay = 0
	}
	th.updateMoveTime(last + delay)
	th.checkStall()
	return nil
}

// WaitMoves blocks (via repeated reactor.Pause) until every queued
// move has been committed and the MCU has caught up to print_time, or
// until the toolhead can no longer pause. Matches wait_moves.
func (th *ToolHead) WaitMoves() error {
	if err := th.flushLookahead(); err != nil {
		return err
	}
	eventtime := th.reactor.Monotonic()
	for th.specialQueuingState == "" || th.printTime >= th.mcu.EstimatedPrintTime(eventtime) {
		if !th.canPause {
			break
		}
		th.reactor.Pause(eventtime + 0.100)
		eventtime = th.reactor.Monotonic()
	}
	return nil
}

// SetExtruder switches the active extruder kinematic, seeding its
// commanded E position. Matches set_extruder.
func (th *ToolHead) SetExtruder(ext extruder.Interface, extrudePos float64) {
	th.extruder = ext
	th.commandedPos.Values[th.axisCount] = extrudePos
}

// GetExtruder returns the active extruder kinematic.
func (th *ToolHead) GetExtruder() extruder.Interface { return th.extruder }

// updateDripMoveTime feeds print_time toward nextPrintTime in small
// DripSegmentTime slices, pausing between them so a homing move can be
// interrupted the instant its endstop trips. Matches
// _update_drip_move_time; the original's raised DripModeEndSignal
// becomes the returned errDripModeEnd.
func (th *ToolHead) updateDripMoveTime(nextPrintTime float64) error {
	flushDelay := motion.DripTime + th.moveFlushTime + th.kinFlushDelay
	for th.printTime < nextPrintTime {
		if th.dripCompletion != nil && th.dripCompletion.Test() {
			return errDripModeEnd
		}
		curtime := th.reactor.Monotonic()
		est := th.mcu.EstimatedPrintTime(curtime)
		waitTime := th.printTime - est - flushDelay
		if waitTime > 0 && th.canPause {
			if th.dripCompletion != nil {
				th.dripCompletion.Wait(th.reactor, curtime+waitTime)
			}
			continue
		}
		npt := math.Min(th.printTime+motion.DripSegmentTime, nextPrintTime)
		th.updateMoveTime(npt)
	}
	return nil
}

// DripMove feeds a single move to newpos in small time slices so a
// homing sequencer's endstop-trigger completion can cut it short
// mid-flight, matching drip_move. completion is typically the
// multi-endstop wait object the homing collaborator builds; nil means
// the move can never be cut short early.
func (th *ToolHead) DripMove(newpos motion.Coord, speed float64, completion *reactor.Completion) error {
	if err := th.Dwell(th.kinFlushDelay); err != nil {
		return err
	}
	if err := th.processMoves(th.queue.Flush(false)); err != nil {
		return err
	}
	th.specialQueuingState = "Drip"
	th.needCheckStall = motion.Never
	th.reactor.UpdateTimer(th.flushTimer, motion.Never)
	th.idleFlushPrintTime = 0
	th.dripCompletion = completion

	if err := th.Move(newpos, speed); err != nil {
		th.flushStepGeneration()
		return err
	}

	err := th.processMoves(th.queue.Flush(false))
	if errors.Is(err, errDripModeEnd) {
		th.queue.Reset()
		for _, g := range th.groups {
			g.Kin.Trapq().FinalizeMoves(motion.Never)
		}
		th.extruder.UpdateMoveTime(motion.Never)
	} else if err != nil {
		return err
	}
	return th.flushStepGeneration()
}

// Stats reports whether the toolhead is actively printing and a
// one-line diagnostic summary, matching stats.
func (th *ToolHead) Stats(eventtime float64) (bool, string) {
	if th.mcu != nil {
		th.mcu.CheckActive(th.printTime, eventtime)
	}
	bufferTime := th.printTime - th.mcu.EstimatedPrintTime(eventtime)
	isActive := bufferTime > -60.0 || th.specialQueuingState == ""
	if th.specialQueuingState == "Drip" {
		bufferTime = 0
	}
	if bufferTime < 0 {
		bufferTime = 0
	}
	return isActive, fmt.Sprintf("print_time=%.3f buffer_time=%.3f print_stall=%d", th.printTime, bufferTime, th.printStall)
}

// CheckBusy matches check_busy: print_time, the MCU's estimate of it,
// and whether the look-ahead queue is empty.
func (th *ToolHead) CheckBusy(eventtime float64) (printTime, estPrintTime float64, lookaheadEmpty bool) {
	return th.printTime, th.mcu.EstimatedPrintTime(eventtime), th.queue.Len() == 0
}

// Status is the read-only snapshot returned by GetStatus, matching
// the dict get_status returns merged with the active kinematics
// group's own status.
type Status struct {
	kinematics.Status
	PrintTime            float64
	Stalls               int
	EstimatedPrintTime   float64
	Position             motion.Coord
	MaxVelocity          float64
	MaxAccel             float64
	MaxAccelToDecel      float64
	SquareCornerVelocity float64
}

// GetStatus reports groupName's kinematics status merged with the
// toolhead's own fields; an empty groupName defaults to the first
// registered group, matching get_status's kin_name=None default.
func (th *ToolHead) GetStatus(eventtime float64, groupName string) (Status, error) {
	g, err := th.group(groupName)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Status:               g.Kin.GetStatus(),
		PrintTime:            th.printTime,
		Stalls:               th.printStall,
		EstimatedPrintTime:   th.mcu.EstimatedPrintTime(eventtime),
		Position:             th.commandedPos.Clone(),
		MaxVelocity:          th.maxVelocity,
		MaxAccel:             th.maxAccel,
		MaxAccelToDecel:      th.requestedAccelToDecel,
		SquareCornerVelocity: th.squareCornerVelocity,
	}, nil
}

func (th *ToolHead) group(name string) (Group, error) {
	if name == "" {
		if len(th.groups) == 0 {
			return Group{}, motion.FatalErrorf("toolhead: no kinematics groups configured")
		}
		return th.groups[0], nil
	}
	for _, g := range th.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return Group{}, motion.FatalErrorf("toolhead: unknown kinematics group %q", name)
}

// GetKinematics returns groupName's kinematics object, matching
// get_kinematics.
func (th *ToolHead) GetKinematics(groupName string) (kinematics.Kinematics, error) {
	g, err := th.group(groupName)
	if err != nil {
		return nil, err
	}
	return g.Kin, nil
}

// GetTrapq returns groupName's trapq, matching get_trapq.
func (th *ToolHead) GetTrapq(groupName string) (*trapq.Queue, error) {
	g, err := th.group(groupName)
	if err != nil {
		return nil, err
	}
	return g.Kin.Trapq(), nil
}

// RegisterLookaheadCallback arranges for cb to fire once the print
// time of the queue's current last move is finally known (immediately,
// if the queue is empty). Matches register_lookahead_callback.
func (th *ToolHead) RegisterLookaheadCallback(cb func(printTime float64)) error {
	last := th.queue.Last()
	if last == nil {
		t, err := th.GetLastMoveTime()
		if err != nil {
			return err
		}
		cb(t)
		return nil
	}
	last.TimingCallbacks = append(last.TimingCallbacks, cb)
	return nil
}

// NoteKinematicActivity raises last_kin_move_time if kinTime is later,
// matching note_kinematic_activity.
func (th *ToolHead) NoteKinematicActivity(kinTime float64) {
	th.lastKinMoveTime = math.Max(th.lastKinMoveTime, kinTime)
}

// GetMaxVelocity returns the current velocity/accel ceilings, matching
// get_max_velocity.
func (th *ToolHead) GetMaxVelocity() (maxVelocity, maxAccel float64) {
	return th.maxVelocity, th.maxAccel
}

// SetVelocityLimit updates whichever of the four SET_VELOCITY_LIMIT
// parameters are non-nil and recomputes junction_deviation, returning
// the summary line the command echoes back. Matches
// cmd_SET_VELOCITY_LIMIT.
func (th *ToolHead) SetVelocityLimit(maxVelocity, maxAccel, squareCornerVelocity, requestedAccelToDecel *float64) string {
	if maxVelocity != nil {
		th.maxVelocity = *maxVelocity
	}
	if maxAccel != nil {
		th.maxAccel = *maxAccel
	}
	if squareCornerVelocity != nil {
		th.squareCornerVelocity = *squareCornerVelocity
	}
	if requestedAccelToDecel != nil {
		th.requestedAccelToDecel = *requestedAccelToDecel
	}
	th.calcJunctionDeviation()
	return fmt.Sprintf("max_velocity: %.6f\nmax_accel: %.6f\nmax_accel_to_decel: %.6f\nsquare_corner_velocity: %.6f",
		th.maxVelocity, th.maxAccel, th.requestedAccelToDecel, th.squareCornerVelocity)
}

// SetAccelFromM204 applies M204's accel value (S, or min(P, T)) and
// recomputes junction_deviation. Matches cmd_M204.
func (th *ToolHead) SetAccelFromM204(accel float64) {
	th.maxAccel = accel
	th.calcJunctionDeviation()
}

// Home forwards to every group's own Home, each of which already
// filters hs.GetAxes() down to the axes it owns. Matches the
// source's per-axis home() dispatch across "XYZ"/"ABC" groups, minus
// the homing sequencer itself (hs is supplied by the caller).
func (th *ToolHead) Home(hs kinematics.HomingState) error {
	for _, g := range th.groups {
		if err := g.Kin.Home(hs); err != nil {
			return err
		}
	}
	return nil
}

// NoteZNotHomed re-marks every group's Z-like axis unhomed, matching
// note_z_not_homed (a no-op for groups, like ABC, that have none).
func (th *ToolHead) NoteZNotHomed() {
	for _, g := range th.groups {
		g.Kin.NoteZNotHomed()
	}
}

// HandleShutdown matches _handle_shutdown: further pausing is
// refused and any buffered moves are discarded.
func (th *ToolHead) HandleShutdown() {
	th.canPause = false
	th.queue.Reset()
}

// SetCheckMoves toggles whether Move runs each group's CheckMove.
// The original source hardcodes this to False with a TODO to
// re-enable it once homing and force-position support land; exposed
// here as a setting so a caller that has wired up real homing can
// turn bounds checking back on.
func (th *ToolHead) SetCheckMoves(enabled bool) { th.checkMoves = enabled }
