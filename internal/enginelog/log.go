// Package enginelog provides the simulation's plain-text logging sink.
package enginelog

import (
	"fmt"
	"io"
)

// writer is the destination for log output. Defaults to nothing; callers
// that want output must SetWriter.
var writer io.Writer

// tickInterval gates LogTick: log every tickInterval-th tick. 0 disables
// tick logging entirely; the default of 1 logs every tick, matching the
// behavior before SetTickInterval existed.
var tickInterval int64 = 1

// SetWriter sets the log output destination.
func SetWriter(w io.Writer) {
	writer = w
}

// SetTickInterval configures LogTick to only emit every n ticks; n<=0
// disables tick logging entirely (the CLI's "--log N, 0=disabled" flag).
func SetTickInterval(n int64) {
	tickInterval = n
}

// Logf writes a formatted log line. A nil writer discards the message,
// matching headless/test runs that never call SetWriter.
func Logf(format string, args ...interface{}) {
	if writer == nil {
		return
	}
	fmt.Fprintf(writer, format+"\n", args...)
}

// LogTick logs a summary of one completed tick, every tickInterval ticks.
func LogTick(tick int64, colonies, ants int) {
	if tickInterval <= 0 || tick%tickInterval != 0 {
		return
	}
	Logf("=== Tick %d === colonies=%d ants=%d", tick, colonies, ants)
}

// LogWorkerEvent logs a player-host lifecycle event (launch, timeout,
// crash, reload, protocol error) for one colony.
func LogWorkerEvent(colonyID int, event string, detail string) {
	if detail == "" {
		Logf("[worker] colony=%d %s", colonyID, event)
		return
	}
	Logf("[worker] colony=%d %s: %s", colonyID, event, detail)
}

// LogVictory logs the winning colony at the end of a match.
func LogVictory(colonyID int, tick int64) {
	Logf("=== VICTORY: colony %d at tick %d ===", colonyID, tick)
}
