package downlink

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/banshee-data/qgclink/internal/autopilot"
	"github.com/banshee-data/qgclink/internal/diag"
	"github.com/banshee-data/qgclink/internal/mavlink"
	"github.com/banshee-data/qgclink/internal/monitoring"
	"github.com/banshee-data/qgclink/internal/notify"
	"github.com/banshee-data/qgclink/internal/timeutil"
	"github.com/banshee-data/qgclink/internal/transport"
)

// DefaultBaseRate is the loop frequency in Hz.
const DefaultBaseRate = 200

// ErrAlreadyRunning is returned by Run when the Sender is already running.
var ErrAlreadyRunning = errors.New("downlink: sender already running")

// Config wires a Sender to its collaborators. Transport, Rates and Requests
// are required. A nil producer disables the parts of the streams it feeds.
type Config struct {
	SystemID    uint8
	ComponentID uint8 // component of the heartbeat, status and RC streams
	BaseRate    int   // Hz, DefaultBaseRate if zero

	Rates    RateSource
	Requests Requests
	Modes    ModeSignals

	Controller  Controller
	Servos      ServoSwitch
	Airframe    Airframe
	RC          RCScaler
	Calibration CalibrationProvider
	// Parameters are dumped in slice order.
	Parameters []ParameterSource
	Drivers    DriverSource

	Transport transport.Transport
	Sink      *diag.Sink

	Pacer   Pacer                 // timeutil.RateLimiter at BaseRate if nil
	Console *ConsolePipe          // DefaultConsoleCapacity if nil
	Stats   *monitoring.LoopStats // created if nil
	Now     func() time.Time      // time.Now if nil
}

// Counters are cumulative Sender totals.
type Counters struct {
	Iterations   uint64 `json:"iterations"`
	PacketsSent  uint64 `json:"packets_sent"`
	SendFailures uint64 `json:"send_failures"`
}

// Sender is the downlink dispatch loop. It must not be copied.
type Sender struct {
	cfg     Config
	modes   *ModeCache
	console *ConsolePipe
	stats   *monitoring.LoopStats
	sink    *diag.Sink
	pacer   Pacer
	now     func() time.Time
	start   time.Time

	// owned by the loop goroutine
	enc       mavlink.Encoder
	queue     [][]byte
	iteration uint64

	running    atomic.Bool
	iterations atomic.Uint64
	sent       atomic.Uint64
	failed     atomic.Uint64
}

// New validates cfg and builds a Sender.
func New(cfg Config) (*Sender, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("downlink: transport is required")
	}
	if cfg.Rates == nil || cfg.Requests == nil {
		return nil, fmt.Errorf("downlink: rates and requests are required")
	}
	if cfg.BaseRate == 0 {
		cfg.BaseRate = DefaultBaseRate
	}
	if cfg.BaseRate < 0 {
		return nil, fmt.Errorf("downlink: base rate must be positive, got %d", cfg.BaseRate)
	}

	s := &Sender{
		cfg:     cfg,
		modes:   NewModeCache(),
		console: cfg.Console,
		stats:   cfg.Stats,
		sink:    cfg.Sink,
		pacer:   cfg.Pacer,
		now:     cfg.Now,
	}
	if s.console == nil {
		s.console = NewConsolePipe(DefaultConsoleCapacity)
	}
	if s.sink == nil {
		s.sink = diag.Discard()
	}
	if s.pacer == nil {
		s.pacer = timeutil.NewRateLimiter(cfg.BaseRate, nil)
	}
	if s.stats == nil {
		s.stats = monitoring.NewLoopStats("downlink", time.Second/time.Duration(cfg.BaseRate), monitoring.DefaultWindow)
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.start = s.now()
	return s, nil
}

// Modes returns the mode cache.
func (s *Sender) Modes() *ModeCache { return s.modes }

// Console returns the console mailbox. Any goroutine may push to it.
func (s *Sender) Console() *ConsolePipe { return s.console }

// Stats returns the loop timing statistics.
func (s *Sender) Stats() *monitoring.LoopStats { return s.stats }

// Counters returns the cumulative totals.
func (s *Sender) Counters() Counters {
	return Counters{
		Iterations:   s.iterations.Load(),
		PacketsSent:  s.sent.Load(),
		SendFailures: s.failed.Load(),
	}
}

// Run subscribes to the mode and diagnostic signals, then iterates at the
// base rate until ctx is done. Subscriptions are released before Run
// returns. Cancellation is a clean stop and returns nil.
func (s *Sender) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	var subs notify.Group
	defer subs.DisconnectAll()
	s.subscribe(&subs)

	s.sink.Opsf("downlink: started at %d Hz, system %d", s.cfg.BaseRate, s.cfg.SystemID)
	defer s.sink.Opsf("downlink: stopped after %d iterations", s.iterations.Load())

	for {
		if err := s.pacer.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.Iterate()
		s.stats.Record(s.pacer.FinishedCriticalSection())
	}
}

func (s *Sender) subscribe(subs *notify.Group) {
	m := s.cfg.Modes
	if m.ServoSource != nil {
		subs.Add(m.ServoSource.Connect(s.modes.SetServoSource))
	}
	if m.PilotMode != nil {
		subs.Add(m.PilotMode.Connect(s.modes.SetPilotMode))
	}
	if m.FilterState != nil {
		subs.Add(m.FilterState.Connect(s.modes.SetFilterState))
	}
	if m.ControlMode != nil {
		subs.Add(m.ControlMode.Connect(s.modes.SetControlMode))
	}
	if m.AttitudeSource != nil {
		subs.Add(m.AttitudeSource.Connect(s.modes.SetAttitudeSource))
	}
	subs.Add(s.sink.Warnings.Connect(func(text string) {
		s.console.Push(ConsoleMessage{Severity: SeverityNormal, Text: text})
	}))
	subs.Add(s.sink.Criticals.Connect(func(text string) {
		s.console.Push(ConsoleMessage{Severity: SeverityCritical, Text: text})
	}))
}

// Iterate runs one assembly and flush cycle. Run calls it once per period;
// it must only be called from one goroutine at a time.
func (s *Sender) Iterate() {
	n := s.iteration
	base := s.cfg.BaseRate
	sys, comp := s.cfg.SystemID, s.cfg.ComponentID

	if ShouldRun(s.cfg.Rates.HeartbeatRate(), base, n) {
		s.enqueue(comp, encodeHeartbeat())
		s.enqueue(comp, encodeStatus(s.statusInputs()))
	}

	if s.cfg.Requests.TakeParamListRequest() {
		s.enqueueParamList()
	}

	if ShouldRun(s.cfg.Rates.RCChannelRate(), base, n) {
		t := s.timeBootMs()
		if s.cfg.Servos != nil {
			s.enqueue(comp, encodeRCRaw(s.cfg.Servos.RawChannels(), t))
		}
		if s.cfg.RC != nil {
			s.enqueue(comp, encodeRCScaled(s.cfg.RC.ScaledChannels(), t))
		}
	}

	if ShouldRun(s.cfg.Rates.ControlOutputRate(), base, n) && s.cfg.Controller != nil {
		s.enqueue(autopilot.ComponentController, encodeControlEffort(s.cfg.Controller.ControlEffort()))
	}

	if ids := s.cfg.Requests.DrainParamRequests(); len(ids) > 0 {
		s.enqueueParamReplies(ids)
	}

	if s.cfg.Requests.TakeRCCalibrationRequest() {
		if s.cfg.Calibration != nil {
			s.enqueue(autopilot.ComponentRadioCalibration, encodeCalibration(s.cfg.Calibration.RadioCalibration()))
		} else {
			s.sink.Debugf("downlink: radio calibration requested but no provider is configured")
		}
	}

	if s.cfg.Drivers != nil {
		for _, d := range s.cfg.Drivers.Drivers() {
			for _, m := range d.MavlinkMessages(sys, base, n) {
				s.enqueue(m.ComponentID, m.Body)
			}
		}
	}

	if msg, ok := s.console.Pop(); ok {
		s.enqueue(autopilot.ComponentConsole, encodeConsole(msg))
	}

	s.flush()
	s.iteration++
	s.iterations.Add(1)
}

func (s *Sender) enqueue(compID uint8, m mavlink.Message) {
	s.queue = append(s.queue, s.enc.Pack(s.cfg.SystemID, compID, m))
}

// statusInputs resolves the status fields. Pilot and control mode fall back
// to a direct query while no notification has arrived; the queried value
// is not cached.
func (s *Sender) statusInputs() statusInputs {
	in := statusInputs{Modes: s.modes.Snapshot(), Trajectory: autopilot.TrajectoryUnknown}
	if c := s.cfg.Controller; c != nil {
		if in.Modes.ControlMode == autopilot.ControlModeUnset {
			in.Modes.ControlMode = c.ControlMode()
		}
		in.Trajectory = c.TrajectoryType()
	}
	if sw := s.cfg.Servos; sw != nil {
		if in.Modes.PilotMode == autopilot.PilotModeUnset {
			in.Modes.PilotMode = sw.PilotMode()
		}
		in.EngineRPM = sw.EngineRPM()
		in.MainRotorRPM = sw.MainRotorRPM()
	}
	if a := s.cfg.Airframe; a != nil {
		in.MainCollective = a.MainCollective()
	}
	return in
}

func (s *Sender) enqueueParamList() {
	s.sink.Debugf("downlink: sending parameter list")
	lists := make([][]autopilot.Parameter, 0, len(s.cfg.Parameters))
	for _, src := range s.cfg.Parameters {
		lists = append(lists, src.Parameters())
	}
	for _, p := range encodeParamList(lists) {
		s.enqueue(p.ComponentID, p.Msg)
	}
}

func (s *Sender) enqueueParamReplies(ids []autopilot.ParamID) {
	idx := newParamIndex(s.cfg.Parameters)
	for _, id := range ids {
		p, ok := idx.find(id)
		if !ok {
			s.sink.Debugf("downlink: requested parameter %d/%s not found", id.ComponentID, id.Name)
			continue
		}
		r := encodeParamReply(p)
		s.enqueue(r.ComponentID, r.Msg)
	}
}

// paramIndex resolves the requests of one drain. Sources that implement
// ParameterLookup are asked directly; the rest are listed at most once.
type paramIndex struct {
	sources  []ParameterSource
	listed   [][]autopilot.Parameter
	isListed []bool
}

func newParamIndex(sources []ParameterSource) *paramIndex {
	return &paramIndex{
		sources:  sources,
		listed:   make([][]autopilot.Parameter, len(sources)),
		isListed: make([]bool, len(sources)),
	}
}

func (x *paramIndex) find(id autopilot.ParamID) (autopilot.Parameter, bool) {
	for i, src := range x.sources {
		if l, ok := src.(ParameterLookup); ok {
			if p, ok := l.LookupParameter(id); ok {
				return p, true
			}
			continue
		}
		if !x.isListed[i] {
			x.listed[i] = src.Parameters()
			x.isListed[i] = true
		}
		for _, p := range x.listed[i] {
			if p.ID() == id {
				return p, true
			}
		}
	}
	return autopilot.Parameter{}, false
}

// flush sends every queued frame in order. A failed send drops that frame
// only; the rest are still attempted. Failures are summarised in one
// warning per iteration.
func (s *Sender) flush() {
	var (
		failures int
		firstErr error
		firstHdr [3]uint8
	)
	total := len(s.queue)
	for i, frame := range s.queue {
		sysID, compID, msgID, _ := mavlink.Header(frame)
		s.sink.Tracef("sending message system: %d component: %d message: %d", sysID, compID, msgID)
		if err := s.cfg.Transport.Send(frame); err != nil {
			if failures == 0 {
				firstErr = err
				firstHdr = [3]uint8{sysID, compID, msgID}
			}
			failures++
		} else {
			s.sent.Add(1)
		}
		s.queue[i] = nil
	}
	s.queue = s.queue[:0]

	if failures > 0 {
		s.failed.Add(uint64(failures))
		s.sink.Warningf("downlink: %d of %d sends failed, first system %d component %d message %d: %v",
			failures, total, firstHdr[0], firstHdr[1], firstHdr[2], firstErr)
	}
}

func (s *Sender) timeBootMs() uint32 {
	return uint32(s.now().Sub(s.start).Milliseconds())
}
