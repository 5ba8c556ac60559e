package feed

import (
	"context"
	"sync"

	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/models"
)

// FakeFeed replays scripted ticks per symbol. Used by tests and the dry-run
// command.
type FakeFeed struct {
	mu     sync.Mutex
	script map[string][]models.PriceTick
	closed bool
}

// NewFakeFeed creates an empty scripted feed.
func NewFakeFeed() *FakeFeed {
	return &FakeFeed{script: make(map[string][]models.PriceTick)}
}

// Push appends ticks to a symbol's script.
func (f *FakeFeed) Push(symbol string, ticks ...models.PriceTick) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script[symbol] = append(f.script[symbol], ticks...)
}

// Subscribe replays the scripted ticks for the requested symbols in order,
// then closes the channel.
func (f *FakeFeed) Subscribe(ctx context.Context, symbols []string) (<-chan models.PriceTick, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, errors.ErrFeedClosed
	}
	var replay []models.PriceTick
	for _, sym := range symbols {
		replay = append(replay, f.script[sym]...)
	}
	f.mu.Unlock()

	ticks := make(chan models.PriceTick)
	go func() {
		defer close(ticks)
		for _, t := range replay {
			select {
			case ticks <- t:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ticks, nil
}

// Close marks the feed closed; further Subscribe calls fail.
func (f *FakeFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
