package observation

import (
	"context"
	"sync"

	"github.com/sagehealth/go-sage/internal/log"
	"github.com/sagehealth/go-sage/pkg/feature"
	"github.com/sagehealth/go-sage/pkg/insight"
	"github.com/sagehealth/go-sage/pkg/sageerr"
)

// Coordinator owns one processor+fetcher pair per observed feature.
// Features are isolated from each other: cross-feature operations fan out
// concurrently and never share mutable state, so the only lock here guards
// the lifecycle table itself.
type Coordinator struct {
	store    insight.Store
	registry *feature.Registry

	mu       sync.Mutex
	features map[feature.Type]*observed
	onState  func(feature.Type, feature.State)
}

// observed is the coordinator's record of one feature under observation.
type observed struct {
	status    Status
	processor *feature.Processor
	fetcher   *insight.Fetcher
}

// NewCoordinator creates a coordinator over the given store and feature
// table.
func NewCoordinator(store insight.Store, registry *feature.Registry) *Coordinator {
	return &Coordinator{
		store:    store,
		registry: registry,
		features: make(map[feature.Type]*observed),
	}
}

// OnFeatureState sets the callback receiving every per-feature state
// transition, for display binding. Set before starting observations.
func (c *Coordinator) OnFeatureState(fn func(feature.Type, feature.State)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// Start begins observing a single feature for the given source. Accepted
// only from Idle or Error; anything else is a DuplicateFeature rejection.
func (c *Coordinator) Start(ctx context.Context, t feature.Type, source string) *sageerr.Error {
	m, ok := c.registry.Lookup(t)
	if !ok {
		return sageerr.InvalidData("unknown feature type " + string(t))
	}

	c.mu.Lock()
	if existing, ok := c.features[t]; ok && !existing.status.State.restartable() {
		c.mu.Unlock()
		return sageerr.DuplicateFeature(string(t))
	}

	processor := feature.NewProcessor(m)
	onState := c.onState
	if onState != nil {
		processor.OnState(onState)
	}
	obs := &observed{
		status:    Status{State: StateConnecting},
		processor: processor,
		fetcher:   insight.NewFetcher(c.store, processor, source),
	}
	c.features[t] = obs
	c.mu.Unlock()

	if err := obs.fetcher.StartListening(ctx, nil); err != nil {
		c.setStatus(t, Status{State: StateError, Err: err})
		return err
	}

	c.setStatus(t, Status{State: StateObserving})
	log.Debug("feature observation started", "feature", t, "source", source)
	return nil
}

// StartMultiple launches every requested feature concurrently and waits for
// each to either start or fail. It returns the first error encountered;
// features that started successfully are not rolled back and remain
// independently controllable.
func (c *Coordinator) StartMultiple(ctx context.Context, types []feature.Type, source string) *sageerr.Error {
	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr *sageerr.Error
	)

	for _, t := range types {
		wg.Add(1)
		go func(t feature.Type) {
			defer wg.Done()
			if err := c.Start(ctx, t, source); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		}(t)
	}
	wg.Wait()
	return firstErr
}

// Pause releases a live subscription but keeps the feature registered so it
// can be resumed.
func (c *Coordinator) Pause(t feature.Type) *sageerr.Error {
	c.mu.Lock()
	obs, ok := c.features[t]
	if !ok || obs.status.State != StateObserving {
		state := StateIdle
		if ok {
			state = obs.status.State
		}
		c.mu.Unlock()
		return sageerr.InvalidData("cannot pause " + string(t) + " in state " + state.String())
	}
	fetcher := obs.fetcher
	c.mu.Unlock()

	fetcher.StopListening()
	c.setStatus(t, Status{State: StatePaused})
	return nil
}

// Resume reopens the subscription for a paused feature.
func (c *Coordinator) Resume(ctx context.Context, t feature.Type) *sageerr.Error {
	c.mu.Lock()
	obs, ok := c.features[t]
	if !ok || obs.status.State != StatePaused {
		c.mu.Unlock()
		return sageerr.InvalidData("cannot resume " + string(t) + ": not paused")
	}
	fetcher := obs.fetcher
	obs.status = Status{State: StateConnecting}
	c.mu.Unlock()

	if err := fetcher.StartListening(ctx, nil); err != nil {
		c.setStatus(t, Status{State: StateError, Err: err})
		return err
	}
	c.setStatus(t, Status{State: StateObserving})
	return nil
}

// Stop ends one feature's observation and removes it from the table.
// Safe to call for features that were never started.
func (c *Coordinator) Stop(t feature.Type) {
	c.mu.Lock()
	obs, ok := c.features[t]
	delete(c.features, t)
	c.mu.Unlock()

	if ok {
		obs.fetcher.StopListening()
	}
}

// StopAll releases every active subscription and resets the coordinator
// fully. Safe from any teardown path, including before anything started.
func (c *Coordinator) StopAll() {
	c.mu.Lock()
	stopped := make([]*observed, 0, len(c.features))
	for _, obs := range c.features {
		stopped = append(stopped, obs)
	}
	c.features = make(map[feature.Type]*observed)
	c.mu.Unlock()

	for _, obs := range stopped {
		obs.fetcher.StopListening()
	}
	log.Debug("all feature observations stopped", "count", len(stopped))
}

// IsObserving reports aggregate status: true iff at least one feature is
// registered and every registered feature is connecting or observing.
func (c *Coordinator) IsObserving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.features) == 0 {
		return false
	}
	for _, obs := range c.features {
		if !obs.status.State.active() {
			return false
		}
	}
	return true
}

// Status returns one feature's lifecycle status.
func (c *Coordinator) Status(t feature.Type) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if obs, ok := c.features[t]; ok {
		return obs.status
	}
	return Status{State: StateIdle}
}

// FeatureState returns one feature's processor state, for display binding.
func (c *Coordinator) FeatureState(t feature.Type) feature.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if obs, ok := c.features[t]; ok {
		return obs.processor.State()
	}
	return feature.Idle()
}

// Snapshot returns the current lifecycle status of every registered
// feature.
func (c *Coordinator) Snapshot() map[feature.Type]Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := make(map[feature.Type]Status, len(c.features))
	for t, obs := range c.features {
		snap[t] = obs.status
	}
	return snap
}

// setStatus updates a feature's lifecycle status if it is still registered.
func (c *Coordinator) setStatus(t feature.Type, status Status) {
	c.mu.Lock()
	if obs, ok := c.features[t]; ok {
		obs.status = status
	}
	c.mu.Unlock()
}
