package insight

import (
	"context"
	"sync"

	"github.com/sagehealth/go-sage/pkg/feature"
)

// MockStore is an in-memory Store for tests. Configure per-feature
// subscribe failures up front, then drive emissions through the
// subscription returned by Sub.
type MockStore struct {
	mu sync.Mutex

	// SubscribeErr fails Subscribe for the given feature type.
	SubscribeErr map[feature.Type]error

	subs    map[feature.Type]*MockSubscription
	queries []Query
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		SubscribeErr: make(map[feature.Type]error),
		subs:         make(map[feature.Type]*MockSubscription),
	}
}

// Subscribe implements Store.
func (m *MockStore) Subscribe(_ context.Context, q Query) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = append(m.queries, q)
	if err := m.SubscribeErr[q.FeatureType]; err != nil {
		return nil, err
	}

	sub := newMockSubscription()
	m.subs[q.FeatureType] = sub
	return sub, nil
}

// Sub returns the most recent subscription opened for a feature type.
func (m *MockStore) Sub(t feature.Type) *MockSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subs[t]
}

// Queries returns every query Subscribe received, in order.
func (m *MockStore) Queries() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Query(nil), m.queries...)
}

// MockSubscription is a channel-backed Subscription driven by tests.
type MockSubscription struct {
	events chan Event

	mu         sync.Mutex
	closed     bool
	closeCount int
}

func newMockSubscription() *MockSubscription {
	return &MockSubscription{events: make(chan Event, 16)}
}

// Events implements Subscription.
func (s *MockSubscription) Events() <-chan Event {
	return s.events
}

// Close implements Subscription. Idempotent.
func (s *MockSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCount++
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	return nil
}

// Emit delivers one event to the consumer. Emitting after Close is a no-op.
func (s *MockSubscription) Emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.events <- ev
}

// CloseCount returns how many times Close was called.
func (s *MockSubscription) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCount
}

// Closed reports whether the subscription has been closed.
func (s *MockSubscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Ensure the mock satisfies the contract.
var _ Store = (*MockStore)(nil)
var _ Subscription = (*MockSubscription)(nil)
