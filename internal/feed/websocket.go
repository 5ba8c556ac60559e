package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/models"
)

// WebSocketFeed subscribes to a streaming quote endpoint. Every Subscribe
// call dials its own connection so that one symbol's transport failure never
// disturbs another's.
type WebSocketFeed struct {
	url            string
	handshakeDelay time.Duration

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

// WebSocketFeedConfig holds dial parameters for the feed.
type WebSocketFeedConfig struct {
	URL string
	// HandshakeDelay is the pause between connecting and subscribing, for
	// endpoints that reject immediate writes.
	HandshakeDelay time.Duration
}

// NewWebSocketFeed creates a feed that dials cfg.URL per subscription.
func NewWebSocketFeed(cfg WebSocketFeedConfig) *WebSocketFeed {
	return &WebSocketFeed{
		url:            cfg.URL,
		handshakeDelay: cfg.HandshakeDelay,
		conns:          make(map[*websocket.Conn]struct{}),
	}
}

// subscribeRequest is the frame sent to start a subscription.
type subscribeRequest struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

// tickFrame is the wire shape of one quote update.
type tickFrame struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // unix seconds
}

// Subscribe dials the endpoint, requests the given symbols, and streams ticks
// until ctx is cancelled or the connection drops. The returned channel is
// closed on exit.
func (f *WebSocketFeed) Subscribe(ctx context.Context, symbols []string) (<-chan models.PriceTick, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, errors.ErrFeedClosed
	}
	f.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing feed %s", f.url)
	}

	if f.handshakeDelay > 0 {
		select {
		case <-time.After(f.handshakeDelay):
		case <-ctx.Done():
			conn.Close()
			return nil, ctx.Err()
		}
	}

	if err := conn.WriteJSON(subscribeRequest{Action: "subscribe", Symbols: symbols}); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "sending subscribe request")
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		conn.Close()
		return nil, errors.ErrFeedClosed
	}
	f.conns[conn] = struct{}{}
	f.mu.Unlock()

	ticks := make(chan models.PriceTick)
	go f.readLoop(ctx, conn, ticks)
	return ticks, nil
}

func (f *WebSocketFeed) readLoop(ctx context.Context, conn *websocket.Conn, ticks chan<- models.PriceTick) {
	defer func() {
		f.mu.Lock()
		delete(f.conns, conn)
		f.mu.Unlock()
		conn.Close()
		close(ticks)
	}()

	// Unblock ReadMessage when the subscriber goes away.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame tickFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			// Skip frames we do not understand, e.g. heartbeats.
			continue
		}
		if frame.Symbol == "" || frame.Price <= 0 {
			continue
		}

		tick := models.PriceTick{
			Symbol:    frame.Symbol,
			Price:     frame.Price,
			Timestamp: time.Unix(frame.Timestamp, 0),
		}
		if frame.Timestamp == 0 {
			tick.Timestamp = time.Now()
		}

		select {
		case ticks <- tick:
		case <-ctx.Done():
			return
		}
	}
}

// Close drops every open subscription connection.
func (f *WebSocketFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	for conn := range f.conns {
		conn.Close()
	}
	f.conns = nil
	return nil
}
