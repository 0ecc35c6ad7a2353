// Package monitoring tracks the timing health of the fixed-rate telemetry
// loops and reports it through a replaceable logger.
package monitoring

import "log"

// Logf reports loop timing problems. It writes through the standard logger
// with a "[timing] " prefix until replaced with SetLogger.
var Logf = defaultLogf

func defaultLogf(format string, v ...interface{}) {
	log.Printf("[timing] "+format, v...)
}

// SetLogger routes timing reports to f. Passing nil mutes them.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
