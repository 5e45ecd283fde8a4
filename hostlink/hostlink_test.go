package hostlink

import "testing"

// Only EstimatedPrintTime, which does not touch the connection, is
// exercised here; Connect itself needs a live serial device and is not
// covered by these package tests.

func TestEstimatedPrintTimeIsHostClockStandIn(t *testing.T) {
	l := &Link{}
	if got := l.EstimatedPrintTime(12.5); got != 12.5 {
		t.Errorf("EstimatedPrintTime(12.5) = %v, want 12.5 (identity stand-in)", got)
	}
}

