// Package insight bridges the external document store's change feed to the
// per-feature processors. The store itself is an external collaborator; this
// package defines the minimal subscription contract the pipeline needs and
// maps every transport failure into the domain taxonomy at this boundary.
package insight

import (
	"context"
	"errors"
	"time"

	"github.com/sagehealth/go-sage/pkg/feature"
	"github.com/sagehealth/go-sage/pkg/sageerr"
)

// Document is one analysis insight as stored by the analysis engine.
type Document struct {
	RecordingID string            `json:"recording_id"`
	FeatureType feature.Type      `json:"feature_type"`
	Value       float64           `json:"value"`
	Confidence  float64           `json:"confidence"`
	Metadata    *feature.Metadata `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Event is one change-feed emission: a snapshot of matching documents or a
// transport error. An empty snapshot means no insight exists yet, which is
// not an error — processing may still be in flight.
type Event struct {
	Documents []Document
	Err       error
}

// Query selects the latest insights for one (owner, feature) pair.
// Results are ordered by creation time descending.
type Query struct {
	OwnerID     string
	FeatureType feature.Type
	Limit       int
}

// Subscription is a live change-feed handle. Close is idempotent and safe
// to call concurrently with delivery; after Close the Events channel is
// closed once in-flight emissions drain.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Store is the document/change-feed contract consumed by fetchers.
type Store interface {
	Subscribe(ctx context.Context, q Query) (Subscription, error)
}

// mapStoreError coerces a transport error into the taxonomy. Taxonomy
// errors pass through; everything else is a network failure as far as the
// pipeline is concerned.
func mapStoreError(err error) *sageerr.Error {
	var mapped *sageerr.Error
	if errors.As(err, &mapped) {
		return mapped
	}
	return sageerr.NetworkUnavailable(err)
}
