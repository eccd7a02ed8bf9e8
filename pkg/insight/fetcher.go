package insight

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sagehealth/go-sage/internal/log"
	"github.com/sagehealth/go-sage/pkg/feature"
	"github.com/sagehealth/go-sage/pkg/sageerr"
)

// Fetcher bridges one store subscription to one feature processor. Exactly
// one subscription may be active per fetcher; a second StartListening while
// one is running is rejected with DuplicateFeature.
type Fetcher struct {
	store     Store
	processor *feature.Processor
	ownerID   string

	mu   sync.Mutex
	id   string
	sub  Subscription
	done chan struct{}
}

// NewFetcher creates a fetcher for one (owner, feature) pair.
func NewFetcher(store Store, processor *feature.Processor, ownerID string) *Fetcher {
	return &Fetcher{
		store:     store,
		processor: processor,
		ownerID:   ownerID,
	}
}

// StartListening opens the subscription for this fetcher's feature type,
// filtered to the owner, newest first, limited to the latest insight, and
// begins forwarding emissions to the processor. The completion callback, if
// non-nil, fires once on the first accepted update, terminal error, or
// processing timeout.
func (f *Fetcher) StartListening(ctx context.Context, completion func(*sageerr.Error)) *sageerr.Error {
	f.mu.Lock()
	if f.sub != nil {
		f.mu.Unlock()
		return sageerr.DuplicateFeature(string(f.processor.Measurement().Type))
	}

	f.processor.Begin(completion)

	sub, err := f.store.Subscribe(ctx, Query{
		OwnerID:     f.ownerID,
		FeatureType: f.processor.Measurement().Type,
		Limit:       1,
	})
	if err != nil {
		mapped := mapStoreError(err)
		f.mu.Unlock()
		f.processor.Fail(mapped)
		return mapped
	}

	f.id = uuid.NewString()
	f.sub = sub
	f.done = make(chan struct{})
	go f.forward(sub, f.done)

	log.Debug("insight subscription opened",
		"subscription_id", f.id,
		"feature", f.processor.Measurement().Type,
		"owner", f.ownerID)
	f.mu.Unlock()
	return nil
}

// StopListening releases the subscription handle and resets the processor.
// Idempotent: safe to call multiple times, before a start, or after an
// error; it never returns an error to the caller.
func (f *Fetcher) StopListening() {
	f.mu.Lock()
	sub := f.sub
	done := f.done
	f.sub = nil
	f.done = nil
	f.mu.Unlock()

	if sub == nil {
		return
	}
	if err := sub.Close(); err != nil {
		log.Warn("insight subscription close failed", "subscription_id", f.id, "error", err)
	}
	<-done
	f.processor.Reset()
}

// Active reports whether a subscription is currently open.
func (f *Fetcher) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sub != nil
}

// forward consumes one subscription until its channel closes.
//
// Contract for empty snapshots: no documents means the insight is not
// written yet, never an error. The processor stays in Loading and its
// timeout decides how long we wait.
func (f *Fetcher) forward(sub Subscription, done chan struct{}) {
	defer close(done)

	featureType := f.processor.Measurement().Type
	for ev := range sub.Events() {
		switch {
		case ev.Err != nil:
			f.processor.Fail(mapStoreError(ev.Err))
		case len(ev.Documents) == 0:
			log.Debug("no insight yet", "feature", featureType, "owner", f.ownerID)
		default:
			doc := ev.Documents[0]
			if err := f.processor.Process(doc.Value, doc.Confidence, doc.Metadata); err != nil {
				log.Warn("insight rejected",
					"feature", featureType,
					"recording", doc.RecordingID,
					"error", err.TechnicalDetail)
			}
		}
	}
}
