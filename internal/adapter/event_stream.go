package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pricedesk/internal/domain"
	"pricedesk/internal/infra"
	"pricedesk/pkg/log"
)

// Change states pushed by the trading bot
const (
	ChangeAdded   = 1
	ChangeUpdated = 2
	ChangeRemoved = 3
)

// listingEvent is one message of the backend event stream
type listingEvent struct {
	Event    string          `json:"event"`
	State    int             `json:"state"`
	Item     remoteListing   `json:"item"`
	Listings []remoteListing `json:"listings"`
}

// EventStream subscribes to the pricing API's websocket feed, logs listing
// changes and forwards listing snapshots to a sink. It reconnects with
// exponential backoff until stopped.
type EventStream struct {
	url    string
	apiKey string
	sink   func([]domain.Listing)

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ReadTimeout time.Duration
}

// NewEventStream creates a stream; sink receives every listing snapshot
func NewEventStream(url, apiKey string, sink func([]domain.Listing)) *EventStream {
	return &EventStream{
		url:         url,
		apiKey:      apiKey,
		sink:        sink,
		ReadTimeout: 90 * time.Second,
	}
}

// Start runs the connection loop in the background
func (s *EventStream) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.runLoop(ctx)
}

// Stop terminates the stream and waits for the loop to exit
func (s *EventStream) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.close()
	s.wg.Wait()
}

func (s *EventStream) runLoop(ctx context.Context) {
	defer s.wg.Done()
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.connect(ctx); err != nil {
			delay := infra.CalculateBackoff(retry)
			log.Warn("event stream connection failed",
				zap.Error(err),
				zap.Int("retry", retry),
				zap.Duration("backoff", delay),
			)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		s.process(ctx)
	}
}

func (s *EventStream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	header := make(http.Header)
	header.Set("X-API-Key", s.apiKey)

	conn, _, err := dialer.DialContext(ctx, s.url, header)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", s.url, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	log.Info("event stream connected", zap.String("url", s.url))
	return nil
}

func (s *EventStream) process(ctx context.Context) {
	for {
		s.mu.Lock()
		c := s.conn
		s.mu.Unlock()
		if c == nil {
			return
		}

		_ = c.SetReadDeadline(time.Now().Add(s.ReadTimeout))
		_, msg, err := c.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("event stream read failed", zap.Error(err))
			}
			s.close()
			return
		}

		s.handleMessage(msg)
	}
}

func (s *EventStream) handleMessage(msg []byte) {
	var event listingEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		log.Warn("event stream sent malformed message", zap.Error(err))
		return
	}

	switch event.Event {
	case "change":
		switch event.State {
		case ChangeAdded:
			log.Info(fmt.Sprintf("%q has been added to the pricelist", event.Item.Name))
		case ChangeUpdated:
			log.Info(fmt.Sprintf("%q has changed", event.Item.Name))
		case ChangeRemoved:
			log.Info(fmt.Sprintf("%q is no longer in the pricelist", event.Item.Name))
		default:
			log.Debug("unknown change state", zap.Int("state", event.State), zap.String("name", event.Item.Name))
		}
	case "listings":
		listings := make([]domain.Listing, len(event.Listings))
		for i, l := range event.Listings {
			listings[i] = l.toDomain()
		}
		s.sink(listings)
	default:
		log.Debug("ignoring event", zap.String("event", event.Event))
	}
}

func (s *EventStream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
