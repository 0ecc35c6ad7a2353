package monitoring

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the number of recent iterations summarised by LoopStats.
const DefaultWindow = 1000

// LoopSnapshot is a point-in-time summary of loop timing.
type LoopSnapshot struct {
	Iterations uint64        `json:"iterations"`
	Overruns   uint64        `json:"overruns"`
	Period     time.Duration `json:"period_ns"`
	MeanWork   time.Duration `json:"mean_work_ns"`
	StdDevWork time.Duration `json:"stddev_work_ns"`
	WorstWork  time.Duration `json:"worst_work_ns"`
}

// LoopStats records the work time of each iteration of a paced loop. An
// iteration whose work exceeds the period is counted as an overrun; overruns
// are reported through Logf at most once per report interval.
type LoopStats struct {
	mu     sync.Mutex
	name   string
	period time.Duration

	window []float64 // work time in seconds, ring buffer
	next   int
	filled bool

	iterations uint64
	overruns   uint64
	worst      time.Duration

	reportEvery    time.Duration
	lastReport     time.Time
	pendingOverrun uint64
	now            func() time.Time
}

// NewLoopStats creates stats for a loop named name running with period.
func NewLoopStats(name string, period time.Duration, window int) *LoopStats {
	if window <= 0 {
		window = DefaultWindow
	}
	return &LoopStats{
		name:        name,
		period:      period,
		window:      make([]float64, window),
		reportEvery: time.Second,
		now:         time.Now,
	}
}

// Record adds one iteration's work time.
func (s *LoopStats) Record(work time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.iterations++
	s.window[s.next] = work.Seconds()
	s.next++
	if s.next == len(s.window) {
		s.next = 0
		s.filled = true
	}
	if work > s.worst {
		s.worst = work
	}
	if s.period <= 0 || work <= s.period {
		return
	}

	s.overruns++
	s.pendingOverrun++
	now := s.now()
	if now.Sub(s.lastReport) < s.reportEvery {
		return
	}
	Logf("%s: %d iteration overrun(s), latest %v over a %v period (total %d of %d)",
		s.name, s.pendingOverrun, work, s.period, s.overruns, s.iterations)
	s.pendingOverrun = 0
	s.lastReport = now
}

// Snapshot summarises the recorded iterations.
func (s *LoopStats) Snapshot() LoopSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := LoopSnapshot{
		Iterations: s.iterations,
		Overruns:   s.overruns,
		Period:     s.period,
		WorstWork:  s.worst,
	}
	samples := s.window[:s.next]
	if s.filled {
		samples = s.window
	}
	switch len(samples) {
	case 0:
	case 1:
		snap.MeanWork = seconds(samples[0])
	default:
		mean, std := stat.MeanStdDev(samples, nil)
		snap.MeanWork = seconds(mean)
		snap.StdDevWork = seconds(std)
	}
	return snap
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
