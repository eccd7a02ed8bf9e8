package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sagehealth/go-sage/internal/log"
	"github.com/sagehealth/go-sage/pkg/sageerr"
)

const (
	// wsHandshakeTimeout bounds the initial dial.
	wsHandshakeTimeout = 10 * time.Second

	// wsWriteWait bounds a single frame write.
	wsWriteWait = 10 * time.Second

	// wsEventBuffer is the per-subscription delivery buffer. Delivery is
	// ordered; a full buffer blocks the read loop rather than reordering.
	wsEventBuffer = 16
)

// WSStore implements Store over a websocket change-feed endpoint. Each
// Subscribe opens its own connection, sends one subscribe frame, and streams
// snapshot frames until closed.
type WSStore struct {
	url    string
	dialer *websocket.Dialer
}

// NewWSStore creates a store client for the given websocket URL
// (ws:// or wss://).
func NewWSStore(url string) *WSStore {
	return &WSStore{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: wsHandshakeTimeout,
		},
	}
}

// subscribeFrame is the request sent after connecting.
type subscribeFrame struct {
	ID          string `json:"id"`
	Collection  string `json:"collection"`
	OwnerID     string `json:"owner_id"`
	InsightType string `json:"insight_type"`
	OrderBy     string `json:"order_by"`
	Descending  bool   `json:"descending"`
	Limit       int    `json:"limit"`
}

// snapshotFrame is one server emission.
type snapshotFrame struct {
	Documents []Document `json:"documents"`
	Error     string     `json:"error,omitempty"`
}

// Subscribe implements Store.
func (s *WSStore) Subscribe(ctx context.Context, q Query) (Subscription, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, sageerr.NetworkUnavailable(fmt.Errorf("dial %s: %w", s.url, err))
	}

	frame := subscribeFrame{
		ID:          uuid.NewString(),
		Collection:  "recordings",
		OwnerID:     q.OwnerID,
		InsightType: string(q.FeatureType),
		OrderBy:     "created_at",
		Descending:  true,
		Limit:       q.Limit,
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(frame); err != nil {
		conn.Close()
		return nil, sageerr.NetworkUnavailable(fmt.Errorf("subscribe %s: %w", q.FeatureType, err))
	}

	sub := &wsSubscription{
		id:     frame.ID,
		conn:   conn,
		events: make(chan Event, wsEventBuffer),
		closed: make(chan struct{}),
	}
	go sub.readLoop()
	return sub, nil
}

// wsSubscription is one live websocket subscription.
type wsSubscription struct {
	id     string
	conn   *websocket.Conn
	events chan Event
	once   sync.Once
	closed chan struct{}
}

// Events implements Subscription.
func (s *wsSubscription) Events() <-chan Event {
	return s.events
}

// Close implements Subscription. Idempotent; unblocks the read loop by
// closing the connection.
func (s *wsSubscription) Close() error {
	s.once.Do(func() {
		close(s.closed)
		s.conn.Close()
	})
	return nil
}

// readLoop decodes server frames in arrival order until the connection
// drops or Close is called.
func (s *wsSubscription) readLoop() {
	defer close(s.events)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
				// Deliberate teardown, not a failure.
			default:
				s.deliver(Event{Err: sageerr.NetworkUnavailable(err)})
			}
			return
		}

		var frame snapshotFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Warn("change feed frame malformed", "subscription_id", s.id, "error", err)
			s.deliver(Event{Err: sageerr.InvalidData("malformed change-feed frame")})
			continue
		}
		if frame.Error != "" {
			s.deliver(Event{Err: sageerr.NetworkUnavailable(fmt.Errorf("store: %s", frame.Error))})
			continue
		}
		s.deliver(Event{Documents: frame.Documents})
	}
}

// deliver blocks until the consumer takes the event or the subscription is
// closed, preserving emission order.
func (s *wsSubscription) deliver(ev Event) {
	select {
	case s.events <- ev:
	case <-s.closed:
	}
}
