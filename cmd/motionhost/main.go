// Command motionhost is the motion-planning core's command-line
// front end: it reads G-code lines from stdin, runs them through the
// gcode parser, gcodestate state machine, and arc interpolator, and
// drives a toolhead built from the configured kinematics groups.
//
// Adapted from host/cmd/gopper-host/main.go's flag/REPL shape, wired
// to the new motion core instead of raw MCU dictionary probing;
// hostlink/mcu connection is optional (-device) since the motion core
// itself runs entirely against the in-process toolhead/trapq without
// one.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"strings"

	"motionhost/hostcli"
	"motionhost/hostlink"
	"motionhost/motion/arc"
	"motionhost/motion/config"
	"motionhost/motion/diag"
	"motionhost/motion/extruder"
	"motionhost/motion/gcode"
	"motionhost/motion/gcodestate"
	"motionhost/motion/kinematics"
	"motionhost/motion/reactor"
	"motionhost/motion/toolhead"
	"motionhost/statusapi"
)

var (
	device     = flag.String("device", "", "Serial device path to an MCU (optional; empty runs without one)")
	baud       = flag.Int("baud", 250000, "Baud rate (ignored for USB CDC)")
	statusAddr = flag.String("status-addr", "", "If set, serve a read-only status websocket on this address (e.g. :7125)")
)

// nullStepper satisfies kinematics.Stepper with no-op step generation;
// the real iterative step-time solver is the spec's out-of-scope
// external collaborator (see motion/stepsolver), so this core has no
// concrete stepper implementation of its own to offer a CLI front end.
type nullStepper struct{ name string }

func (s nullStepper) Name() string                    { return s.name }
func (s nullStepper) SetPosition(x, y, z float64)     {}
func (s nullStepper) GenerateSteps(flushTime float64) {}

func buildRail(cfg config.AxisConfig, name string) *kinematics.Rail {
	return &kinematics.Rail{
		Name:     name,
		Min:      cfg.MinPosition,
		Max:      cfg.MaxPosition,
		Steppers: []kinematics.Stepper{nullStepper{name: name}},
	}
}

func main() {
	flag.Parse()

	hostcli.Banner("motionhost - G-code motion planning core")

	mcfg := config.DefaultCartesianConfig()

	rails := [3]*kinematics.Rail{
		buildRail(mcfg.Axes["x"], "x"),
		buildRail(mcfg.Axes["y"], "y"),
		buildRail(mcfg.Axes["z"], "z"),
	}
	cart := kinematics.NewCartesian3(rails, mcfg.DefaultVelocity, mcfg.DefaultAccel, 0, 0)

	eAxis := mcfg.Axes["e"]
	ext := extruder.New("extruder", 3, 1.5, 1.0, eAxis.MaxVelocity, eAxis.MaxAccel)

	r := reactor.New()
	sink := diag.NewSink()
	sink.SetWriter(func(s string) { hostcli.Info("%s", s) })
	sink.SetEnabled(true)

	var mcu toolhead.MCU
	var link *hostlink.Link
	if *device != "" {
		var err error
		link, err = hostlink.Connect(*device, *baud)
		if err != nil {
			hostcli.Error("mcu connect failed: %v", err)
			os.Exit(1)
		}
		defer link.Close()
		mcu = link
		hostcli.OK("connected to MCU on %s", *device)
	} else {
		mcu = noopMCU{}
	}

	th := toolhead.New("XYZ", []toolhead.Group{{Name: "xyz", Kin: cart}}, ext, r, mcu,
		mcfg.DefaultVelocity, mcfg.DefaultAccel, mcfg.SquareCornerVelocity)

	state := gcodestate.New("XYZ", th)
	arcPlanner := arc.New(state, mcfg.ArcResolution)

	if *statusAddr != "" {
		hub := statusapi.NewHub()
		http.Handle("/status", hub)
		go func() {
			hostcli.Info("status feed listening on %s/status", *statusAddr)
			if err := http.ListenAndServe(*statusAddr, nil); err != nil {
				hostcli.Error("status server: %v", err)
			}
		}()
	}

	parser := gcode.NewParser()
	scanner := bufio.NewScanner(os.Stdin)
	hostcli.Info("enter G-code lines (Ctrl-D to exit):")

	for {
		hostcli.Prompt("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, err := parser.ParseLine(line)
		if err != nil {
			hostcli.Error("parse error: %v", err)
			continue
		}
		if cmd == nil {
			continue
		}
		if cmd.Type == 0 {
			if cmd.Keyword == "" {
				continue // blank or comment-only line
			}
			sink.Logf("recv %s", cmd.Keyword)
			if err := dispatchKeyword(state, th, cmd); err != nil {
				hostcli.Error("%v", err)
			}
			continue
		}
		sink.Logf("recv %c%d", cmd.Type, cmd.Number)
		if err := dispatch(state, arcPlanner, th, sink, cmd); err != nil {
			hostcli.Error("%v", err)
		}
	}
}

func dispatch(state *gcodestate.State, ap *arc.Planner, th *toolhead.ToolHead, sink *diag.Sink, cmd *gcode.Command) error {
	switch cmd.Type {
	case 'G':
		switch cmd.Number {
		case 0, 1:
			sink.Record(diag.EvtMoveQueued, 0, float64(cmd.Number), 0)
			return state.G1(cmd.Parameters)
		case 2:
			return ap.G2(cmd.Parameters)
		case 3:
			return ap.G3(cmd.Parameters)
		case 4:
			if s, ok := cmd.Parameters['P']; ok {
				return th.Dwell(s / 1000.0)
			}
			return th.Dwell(cmd.Parameters['S'])
		case 17:
			ap.SetPlane(arc.PlaneXY)
		case 18:
			ap.SetPlane(arc.PlaneXZ)
		case 19:
			ap.SetPlane(arc.PlaneYZ)
		case 21:
			// Millimeter units: already the only unit this core speaks.
		case 90:
			state.SetAbsoluteCoord(true)
		case 91:
			state.SetAbsoluteCoord(false)
		case 92:
			state.G92(cmd.Parameters)
		default:
			return fmt.Errorf("unsupported command: G%d", cmd.Number)
		}
	case 'M':
		switch cmd.Number {
		case 82:
			state.SetAbsoluteExtrude(true)
		case 83:
			state.SetAbsoluteExtrude(false)
		case 114:
			hostcli.OK("%s", state.M114Report())
		case 220:
			state.SpeedFactorOverride(cmd.Parameters['S'])
		case 221:
			state.ExtrudeFactorOverride(cmd.Parameters['S'])
		case 204:
			th.SetAccelFromM204(m204Accel(cmd.Parameters))
		case 400:
			sink.Record(diag.EvtLookaheadFlushed, 0, 0, 0)
			return th.WaitMoves()
		default:
			return fmt.Errorf("unsupported command: M%d", cmd.Number)
		}
	default:
		return fmt.Errorf("unsupported command letter: %c", cmd.Type)
	}
	return nil
}

// m204Accel picks M204's acceleration value: S sets it directly,
// otherwise the smaller of P (print moves) and T (travel moves) is
// used when both are given, or whichever one of them is given.
func m204Accel(params map[byte]float64) float64 {
	if s, ok := params['S']; ok {
		return s
	}
	p, pok := params['P']
	tVal, tok := params['T']
	switch {
	case pok && tok:
		return math.Min(p, tVal)
	case pok:
		return p
	case tok:
		return tVal
	default:
		return 0
	}
}

// dispatchKeyword handles the bare-keyword command family (SAVE_GCODE_STATE,
// RESTORE_GCODE_STATE, SET_GCODE_OFFSET, SET_VELOCITY_LIMIT, GET_POSITION)
// that gcode.Parser tokenizes separately from numbered G/M/T commands.
func dispatchKeyword(state *gcodestate.State, th *toolhead.ToolHead, cmd *gcode.Command) error {
	switch cmd.Keyword {
	case "SAVE_GCODE_STATE":
		state.SaveState(stateName(cmd))
		return nil
	case "RESTORE_GCODE_STATE":
		moveSpeed, err := cmd.KeyFloat("MOVE_SPEED", 0)
		if err != nil {
			return fmt.Errorf("RESTORE_GCODE_STATE: %w", err)
		}
		return state.RestoreState(stateName(cmd), cmd.KeyBool("MOVE", false), moveSpeed)
	case "SET_GCODE_OFFSET":
		params := make(map[string]float64)
		for _, key := range []string{"X", "Y", "Z", "E", "X_ADJUST", "Y_ADJUST", "Z_ADJUST", "E_ADJUST"} {
			raw, ok := cmd.KeyParams[key]
			if !ok {
				continue
			}
			v, err := cmd.KeyFloat(key, 0)
			if err != nil {
				return fmt.Errorf("SET_GCODE_OFFSET: invalid %s=%s", key, raw)
			}
			params[key] = v
		}
		moveSpeed, err := cmd.KeyFloat("MOVE_SPEED", 0)
		if err != nil {
			return fmt.Errorf("SET_GCODE_OFFSET: %w", err)
		}
		return state.SetGCodeOffset(params, cmd.KeyBool("MOVE", false), moveSpeed)
	case "SET_VELOCITY_LIMIT":
		velocity, err := velocityLimitArg(cmd, "VELOCITY")
		if err != nil {
			return err
		}
		accel, err := velocityLimitArg(cmd, "ACCEL")
		if err != nil {
			return err
		}
		scv, err := velocityLimitArg(cmd, "SQUARE_CORNER_VELOCITY")
		if err != nil {
			return err
		}
		accelToDecel, err := velocityLimitArg(cmd, "ACCEL_TO_DECEL")
		if err != nil {
			return err
		}
		hostcli.OK("%s", th.SetVelocityLimit(velocity, accel, scv, accelToDecel))
		return nil
	case "GET_POSITION":
		pos := th.GetPosition()
		hostcli.OK("%s", state.GetPositionReport("unknown", "unknown", "unknown", pos))
		return nil
	default:
		return fmt.Errorf("unsupported command: %s", cmd.Keyword)
	}
}

func stateName(cmd *gcode.Command) string {
	if name, ok := cmd.KeyParams["NAME"]; ok && name != "" {
		return name
	}
	return "default"
}

// velocityLimitArg returns a pointer to the named SET_VELOCITY_LIMIT
// parameter if present, or nil when the caller left it unspecified —
// SetVelocityLimit treats a nil pointer as "leave unchanged".
func velocityLimitArg(cmd *gcode.Command, key string) (*float64, error) {
	raw, ok := cmd.KeyParams[key]
	if !ok {
		return nil, nil
	}
	v, err := cmd.KeyFloat(key, 0)
	if err != nil {
		return nil, fmt.Errorf("SET_VELOCITY_LIMIT: invalid %s=%s", key, raw)
	}
	return &v, nil
}

// noopMCU stands in for the out-of-scope MCU clock-sync/transport
// collaborator when no serial device is configured, so the toolhead
// can still run its own print-time bookkeeping against the reactor's
// monotonic clock alone.
type noopMCU struct{}

func (noopMCU) EstimatedPrintTime(eventtime float64) float64 { return eventtime }
func (noopMCU) FlushMoves(mcuFlushTime float64)               {}
func (noopMCU) CheckActive(printTime, eventtime float64)      {}
