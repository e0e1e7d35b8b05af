// Package tradelog implements the append-only trade history of spec
// §4.3: append in insertion order per ticker, list the most recent N
// newest-first.
package tradelog

import (
	"sync"
	"time"

	"github.com/segmentio/ksuid"
)

// Trade is one executed match. BuyerID/SellerID back settlement and
// ownership checks; the external projection (spec §3) drops them.
type Trade struct {
	ID        string
	Ticker    string
	BuyerID   string
	SellerID  string
	Amount    int64
	Price     int64
	Timestamp time.Time
}

// Recorder durably records a trade; failures are logged by the
// caller.
type Recorder interface {
	SaveTrade(t Trade)
}

type noopRecorder struct{}

func (noopRecorder) SaveTrade(Trade) {}

// Publisher fans a newly appended trade out to interested internal
// subscribers (audit log, metrics) — SPEC_FULL §2 component 9.
type Publisher interface {
	PublishTrade(t Trade)
}

type noopPublisher struct{}

func (noopPublisher) PublishTrade(Trade) {}

// Log is the per-process trade history, one unbounded slice per ticker.
type Log struct {
	mu        sync.RWMutex
	byTicker  map[string][]Trade // insertion order, oldest first
	recorder  Recorder
	publisher Publisher
}

func New(recorder Recorder, publisher Publisher) *Log {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &Log{byTicker: make(map[string][]Trade), recorder: recorder, publisher: publisher}
}

// Append records a trade for ticker. ts is injected by the caller
// (the engine's clock) so tests are deterministic.
func (l *Log) Append(ticker, buyerID, sellerID string, amount, price int64, ts time.Time) Trade {
	t := Trade{
		ID:        ksuid.New().String(),
		Ticker:    ticker,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Amount:    amount,
		Price:     price,
		Timestamp: ts,
	}
	l.mu.Lock()
	l.byTicker[ticker] = append(l.byTicker[ticker], t)
	l.mu.Unlock()

	l.recorder.SaveTrade(t)
	l.publisher.PublishTrade(t)
	return t
}

// List returns the limit most recent trades for ticker, newest first.
func (l *Log) List(ticker string, limit int) []Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	all := l.byTicker[ticker]
	n := len(all)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Trade, limit)
	for i := 0; i < limit; i++ {
		out[i] = all[n-1-i]
	}
	return out
}
