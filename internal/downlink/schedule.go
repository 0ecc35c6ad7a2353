// Package downlink is the rate-scheduled telemetry sender. One Sender runs
// on its own goroutine, wakes at the base rate, assembles the messages due
// on that iteration in a fixed order and flushes them to the transport.
package downlink

// ShouldRun reports whether a stream running at streamRate Hz fires on the
// given iteration of a loop running at baseRate Hz. A zero rate, or a rate
// above the base rate, never fires. Rates that do not divide the base rate
// evenly fire at the rounded-down divisor.
func ShouldRun(streamRate, baseRate int, iteration uint64) bool {
	if streamRate <= 0 || baseRate <= 0 || streamRate > baseRate {
		return false
	}
	return iteration%uint64(baseRate/streamRate) == 0
}
