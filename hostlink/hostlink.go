// Package hostlink adapts the Klipper-protocol MCU connection
// (host/mcu, host/serial, protocol) into the toolhead.MCU interface
// the motion core expects from its clock-sync/transport collaborator.
//
// The real MCU clock-sync oracle (converting MCU clock ticks measured
// over get_clock round-trips into a drift-corrected estimated print
// time) is named directly in the spec as an external, out-of-scope
// collaborator — original_source has no clocksync.py in the retrieved
// slice to ground a faithful port against. Link's EstimatedPrintTime
// is therefore a host-monotonic-clock stand-in (it returns the
// reactor's eventtime unchanged) rather than a real
// MCU-tick regression; get_clock is still issued on Resync so a real
// oracle can be dropped in behind the same interface later without
// the toolhead caller changing.
package hostlink

import (
	"fmt"
	"time"

	"motionhost/host/mcu"
	"motionhost/host/serial"
	"motionhost/protocol"
)

// Link connects the toolhead's MCU interface to a live serial
// connection to a Klipper-protocol microcontroller.
type Link struct {
	conn      *mcu.MCU
	startedAt time.Time
	lastClock uint64
}

// Connect opens the serial device with a single connection attempt
// (no retry or backoff) and retrieves the command/response
// dictionary before returning.
func Connect(device string, baud int) (*Link, error) {
	conn := mcu.NewMCU()
	cfg := serial.DefaultConfig(device)
	if baud > 0 {
		cfg.Baud = baud
	}
	if err := conn.ConnectWithConfig(cfg); err != nil {
		return nil, fmt.Errorf("hostlink: connect: %w", err)
	}
	if err := conn.RetrieveDictionary(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("hostlink: retrieve dictionary: %w", err)
	}
	return &Link{conn: conn, startedAt: time.Now()}, nil
}

// Close closes the underlying MCU connection.
func (l *Link) Close() error { return l.conn.Close() }

// EstimatedPrintTime returns eventtime translated into the MCU's
// print-time clock. See the package doc comment: this is a host-clock
// stand-in for the excluded real clock-sync oracle.
func (l *Link) EstimatedPrintTime(eventtime float64) float64 {
	return eventtime
}

// FlushMoves asks the MCU to flush any buffered step commands up to
// mcuFlushTime. With no step-generator wired (stepsolver.Generator is
// the out-of-scope collaborator that would produce MCU step commands
// in the first place), this currently only issues a get_uptime liveness
// probe so a dead link is noticed promptly.
func (l *Link) FlushMoves(mcuFlushTime float64) {
	_ = l.conn.SendCommand("get_uptime", nil)
}

// CheckActive pings the MCU for its clock so callers relying on
// EstimatedPrintTime have a fresh reference point; errors are
// swallowed here (matching the source's "log but don't raise" pattern
// for routine liveness checks) since a caller wanting to react to a
// dead link should use Resync directly.
func (l *Link) CheckActive(printTime, eventtime float64) {
	_, _ = l.Resync()
}

// Resync issues a get_clock round-trip and records the returned MCU
// clock value, returning it for a future real clock-sync
// implementation to consume.
func (l *Link) Resync() (uint64, error) {
	payload, err := l.conn.SendCommandSync("get_clock", nil, time.Second)
	if err != nil {
		return 0, err
	}
	clock, err := protocol.DecodeVLQUint(&payload)
	if err != nil {
		return 0, fmt.Errorf("hostlink: decode get_clock response: %w", err)
	}
	l.lastClock = uint64(clock)
	return l.lastClock, nil
}

// Dictionary exposes the retrieved command/response dictionary, e.g.
// for a diagnostic console to print.
func (l *Link) Dictionary() *mcu.Dictionary { return l.conn.GetDictionary() }
