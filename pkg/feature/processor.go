package feature

import (
	"sync"
	"time"

	"github.com/sagehealth/go-sage/pkg/sageerr"
)

// Processor is the per-feature state machine. It validates, debounces, and
// classifies one incoming update at a time and emits the resulting state
// transition.
//
// All mutation is serialized behind one mutex: updates arrive asynchronously
// from the store subscription while the processing timeout can fire from its
// own timer goroutine, and both touch lastProcessed and the current state.
// Retries are not this layer's concern; the fetcher and coordinator decide
// whether to resubscribe.
type Processor struct {
	measurement Measurement

	mu            sync.Mutex
	state         State
	lastProcessed *float64
	timer         *time.Timer
	pending       func(*sageerr.Error)
	onState       func(Type, State)
}

// NewProcessor creates a processor for one feature type.
func NewProcessor(m Measurement) *Processor {
	return &Processor{
		measurement: m,
		state:       Idle(),
	}
}

// Measurement returns the feature configuration this processor enforces.
func (p *Processor) Measurement() Measurement {
	return p.measurement
}

// OnState sets the callback invoked after every state transition.
// The callback runs outside the processor lock.
func (p *Processor) OnState(fn func(Type, State)) {
	p.mu.Lock()
	p.onState = fn
	p.mu.Unlock()
}

// State returns the current state.
func (p *Processor) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Begin transitions to Loading and arms the processing timeout. The
// completion callback fires exactly once, on the first accepted update,
// terminal error, or timeout. Calling Begin while already loading keeps the
// armed timer and replaces the pending completion.
func (p *Processor) Begin(completion func(*sageerr.Error)) {
	p.mu.Lock()
	p.pending = completion
	if p.state.Phase == PhaseLoading {
		p.mu.Unlock()
		return
	}
	p.state = Loading()
	p.armTimeoutLocked()
	notify := p.snapshotLocked()
	p.mu.Unlock()
	notify()
}

// Process runs one raw update through validation, debounce, and
// classification. Out-of-range values produce a terminal ValueOutOfRange;
// values below the feature's minimum confidence fail clinical validation.
// A value within the debounce threshold of the previous one is an internal
// no-op: the prior Success state stays as-is, the timeout is not re-armed,
// and any pending completion is fulfilled successfully.
func (p *Processor) Process(value, confidence float64, meta *Metadata) *sageerr.Error {
	p.mu.Lock()

	if !p.measurement.InRange(value) {
		err := sageerr.OutOfRange(string(p.measurement.Type), value, p.measurement.MinValue, p.measurement.MaxValue)
		done := p.failLocked(err)
		p.mu.Unlock()
		done()
		return err
	}

	if confidence < p.measurement.MinimumConfidence*100 {
		err := sageerr.ClinicalValidationFailed(
			"confidence below feature minimum for " + string(p.measurement.Type))
		done := p.failLocked(err)
		p.mu.Unlock()
		done()
		return err
	}

	if p.lastProcessed != nil && abs(value-*p.lastProcessed) < p.measurement.DebounceThreshold {
		// Duplicate: idempotent no-op, but a waiting caller is done waiting.
		// The timer is disarmed, never re-armed, and the state is untouched.
		p.disarmTimeoutLocked()
		complete := p.completeLocked(nil)
		p.mu.Unlock()
		complete()
		return nil
	}

	obs := Observation{
		Value:      value,
		Confidence: confidence,
		Metadata:   meta,
		Timestamp:  time.Now(),
	}
	v := value
	p.lastProcessed = &v
	p.state = Success(obs)
	p.disarmTimeoutLocked()
	complete := p.completeLocked(nil)
	notify := p.snapshotLocked()
	p.mu.Unlock()
	complete()
	notify()
	return nil
}

// Fail records a terminal error mapped at the boundary (transport failures
// and the like) and fulfils any pending completion with it.
func (p *Processor) Fail(err *sageerr.Error) {
	p.mu.Lock()
	done := p.failLocked(err)
	p.mu.Unlock()
	done()
}

// Reset disarms the timeout, clears the debounce memory, and returns to
// Idle. Used when observation stops or restarts. Any pending completion is
// dropped without firing.
func (p *Processor) Reset() {
	p.mu.Lock()
	p.disarmTimeoutLocked()
	p.lastProcessed = nil
	p.pending = nil
	p.state = Idle()
	notify := p.snapshotLocked()
	p.mu.Unlock()
	notify()
}

// armTimeoutLocked starts the processing timer. Caller holds the lock.
func (p *Processor) armTimeoutLocked() {
	p.disarmTimeoutLocked()
	if p.measurement.ProcessingTimeout <= 0 {
		return
	}
	p.timer = time.AfterFunc(p.measurement.ProcessingTimeout, p.onTimeout)
}

// disarmTimeoutLocked stops the processing timer. Caller holds the lock.
func (p *Processor) disarmTimeoutLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// onTimeout fires when no update arrived in time. The phase is re-checked
// under the lock: a successful update may have landed in the same tick.
func (p *Processor) onTimeout() {
	p.mu.Lock()
	if p.state.Phase != PhaseLoading {
		p.mu.Unlock()
		return
	}
	err := sageerr.Timeout(string(p.measurement.Type), p.measurement.ProcessingTimeout)
	done := p.failLocked(err)
	p.mu.Unlock()
	done()
}

// failLocked sets the error state and returns the deferred callbacks.
// Caller holds the lock and must invoke the returned func after unlocking.
func (p *Processor) failLocked(err *sageerr.Error) func() {
	p.state = Failed(err)
	p.disarmTimeoutLocked()
	complete := p.completeLocked(err)
	notify := p.snapshotLocked()
	return func() {
		complete()
		notify()
	}
}

// completeLocked consumes the pending completion, if any.
func (p *Processor) completeLocked(err *sageerr.Error) func() {
	pending := p.pending
	p.pending = nil
	if pending == nil {
		return func() {}
	}
	return func() { pending(err) }
}

// snapshotLocked captures the state callback for invocation after unlock.
func (p *Processor) snapshotLocked() func() {
	fn := p.onState
	if fn == nil {
		return func() {}
	}
	state := p.state
	t := p.measurement.Type
	return func() { fn(t, state) }
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
