// Package engine implements the Matching Engine of spec §4.5: the
// coordinator that validates, reserves, matches, settles and
// finalizes a submission, and handles cancellation. It realizes the
// per-instrument single-writer contract of spec §5 as one goroutine
// per ticker consuming from a mailbox channel (the teacher's actor
// pattern in internal/core/matching, generalized here to the
// ledger/book/order-store/trade-log components instead of the
// teacher's own matching types). Each command body runs on an ants
// worker pool, which bounds how many commands execute at once across
// instruments; the number of per-instrument goroutines still grows
// with the number of instruments seen.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/exchange-core/internal/book"
	"github.com/abdoElHodaky/exchange-core/internal/catalog"
	"github.com/abdoElHodaky/exchange-core/internal/errs"
	"github.com/abdoElHodaky/exchange-core/internal/ledger"
	"github.com/abdoElHodaky/exchange-core/internal/metrics"
	"github.com/abdoElHodaky/exchange-core/internal/orderstore"
	"github.com/abdoElHodaky/exchange-core/internal/snapshot"
	"github.com/abdoElHodaky/exchange-core/internal/tradelog"
)

// Kind and Direction mirror orderstore's, kept distinct so callers of
// this package never need to import orderstore directly.
type Kind = orderstore.Kind
type Direction = orderstore.Direction

const (
	KindLimit  = orderstore.KindLimit
	KindMarket = orderstore.KindMarket
	Buy        = orderstore.Buy
	Sell       = orderstore.Sell
)

// SubmitRequest is the tagged sum of spec §4.5: Price is ignored for
// market orders.
type SubmitRequest struct {
	UserID    string
	Ticker    string
	Kind      Kind
	Direction Direction
	Qty       int64
	Price     int64
}

// SubmitResult is returned from a successful submit.
type SubmitResult struct {
	OrderID string
}

// Clock is injected so tests can control trade/order timestamps.
type Clock func() time.Time

// Engine owns one instrument goroutine per ticker and dispatches
// submit/cancel commands to it through a mailbox.
type Engine struct {
	ledger      *ledger.Ledger
	orders      *orderstore.Store
	trades      *tradelog.Log
	catalog     *catalog.Catalog
	logger      *zap.Logger
	pool        *ants.Pool
	clock       Clock
	mailboxSize int

	mu          sync.Mutex
	instruments map[string]*instrument
}

// New wires the engine against its collaborators. poolSize bounds the
// number of in-flight per-instrument goroutine bodies executing at
// once (SPEC_FULL §5); it does not bound the number of instruments
// that may have a live goroutine waiting on an empty mailbox.
// mailboxSize bounds how many pending commands may queue per
// instrument before Submit/Cancel block.
func New(led *ledger.Ledger, orders *orderstore.Store, trades *tradelog.Log, cat *catalog.Catalog, logger *zap.Logger, poolSize, mailboxSize int, clock Clock) (*Engine, error) {
	if clock == nil {
		clock = time.Now
	}
	if mailboxSize <= 0 {
		mailboxSize = 64
	}
	pool, err := ants.NewPool(poolSize, ants.WithPreAlloc(false))
	if err != nil {
		return nil, err
	}
	return &Engine{
		ledger:      led,
		orders:      orders,
		trades:      trades,
		catalog:     cat,
		logger:      logger,
		pool:        pool,
		clock:       clock,
		mailboxSize: mailboxSize,
		instruments: make(map[string]*instrument),
	}, nil
}

// Close releases the worker pool. Instrument goroutines exit once
// their mailbox is drained and closed.
func (e *Engine) Close() {
	e.mu.Lock()
	for _, inst := range e.instruments {
		close(inst.mailbox)
	}
	e.mu.Unlock()
	e.pool.Release()
}

// command is one submit or cancel request routed to an instrument's
// mailbox, with a reply channel the caller blocks on.
type command struct {
	submit *SubmitRequest
	cancel *cancelRequest
	reply  chan result
}

type cancelRequest struct {
	userID  string
	orderID string
}

type result struct {
	submit SubmitResult
	err    error
}

// instrument is the single-writer actor for one ticker: a book plus a
// mailbox. Only the actor goroutine ever mutates book; mu additionally
// lets read-only depth queries from the HTTP layer observe it safely
// without going through the mailbox.
type instrument struct {
	ticker  string
	mu      sync.RWMutex
	book    *book.Book
	mailbox chan command
}

// Depth returns the current aggregated depth for ticker, best price
// first, without routing through the mailbox: a snapshot read is
// sufficient for the public orderbook projection (spec §6), which
// carries no ordering guarantee across concurrent mutations.
func (e *Engine) Depth(ticker string, limit int) (bids, asks []book.PriceLevel) {
	e.mu.Lock()
	inst, ok := e.instruments[ticker]
	e.mu.Unlock()
	if !ok {
		return nil, nil
	}
	inst.mu.RLock()
	defer inst.mu.RUnlock()
	return inst.book.Depth(book.Bid, limit), inst.book.Depth(book.Ask, limit)
}

// Tickers lists every instrument that currently has a live actor,
// i.e. has seen at least one submit since process start.
func (e *Engine) Tickers() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.instruments))
	for t := range e.instruments {
		out = append(out, t)
	}
	return out
}

// WriteSnapshot serializes ticker's current book through w, holding the
// instrument's read lock for the duration so the snapshot reflects a
// single consistent view (spec's crash-recovery hint, never consulted
// by the matching path itself).
func (e *Engine) WriteSnapshot(w *snapshot.Writer, ticker string) error {
	e.mu.Lock()
	inst, ok := e.instruments[ticker]
	e.mu.Unlock()
	if !ok {
		return nil
	}
	inst.mu.RLock()
	defer inst.mu.RUnlock()
	return w.Write(ticker, inst.book)
}

func (e *Engine) instrumentFor(ticker string) *instrument {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.instruments[ticker]
	if ok {
		return inst
	}
	inst = &instrument{ticker: ticker, book: book.New(), mailbox: make(chan command, e.mailboxSize)}
	e.instruments[ticker] = inst
	go e.run(inst)
	return inst
}

// run is the actor loop: one goroutine, one ticker, every command
// processed strictly in mailbox arrival order. Submitting the body of
// each command through the ants pool bounds concurrent CPU work across
// instruments without weakening the per-ticker serialization, since
// the mailbox only ever has one command in flight at a time here.
func (e *Engine) run(inst *instrument) {
	for cmd := range inst.mailbox {
		cmd := cmd
		done := make(chan struct{})
		err := e.pool.Submit(func() {
			defer close(done)
			start := time.Now()
			var op string
			if cmd.submit != nil {
				op = "submit"
				res, err := e.handleSubmit(inst, *cmd.submit)
				cmd.reply <- result{submit: res, err: err}
			} else {
				op = "cancel"
				err := e.handleCancel(inst, cmd.cancel.userID, cmd.cancel.orderID)
				cmd.reply <- result{err: err}
			}
			metrics.MatchLatency.WithLabelValues(inst.ticker, op).Observe(time.Since(start).Seconds())
		})
		if err != nil {
			// Pool saturated or closed: run inline so the caller never
			// deadlocks waiting on a reply that will never arrive.
			if cmd.submit != nil {
				res, serr := e.handleSubmit(inst, *cmd.submit)
				cmd.reply <- result{submit: res, err: serr}
			} else {
				cerr := e.handleCancel(inst, cmd.cancel.userID, cmd.cancel.orderID)
				cmd.reply <- result{err: cerr}
			}
			close(done)
		}
		<-done
	}
}

// Submit implements spec §4.5 submit(user, body). It blocks until the
// instrument's actor has processed the command, giving callers a
// synchronous interface over the async mailbox.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if req.Qty <= 0 {
		metrics.OrdersRejected.WithLabelValues(string(errs.Validation)).Inc()
		return SubmitResult{}, errs.New(errs.Validation, "qty must be positive")
	}
	if req.Kind == KindLimit && req.Price <= 0 {
		metrics.OrdersRejected.WithLabelValues(string(errs.Validation)).Inc()
		return SubmitResult{}, errs.New(errs.Validation, "price must be positive for limit orders")
	}
	if !e.catalog.Exists(req.Ticker) {
		metrics.OrdersRejected.WithLabelValues(string(errs.InstrumentUnknown)).Inc()
		return SubmitResult{}, errs.New(errs.InstrumentUnknown, "instrument unknown")
	}

	inst := e.instrumentFor(req.Ticker)
	reply := make(chan result, 1)
	select {
	case inst.mailbox <- command{submit: &req, reply: reply}:
	case <-ctx.Done():
		return SubmitResult{}, errs.Wrap(errs.Internal, "submit cancelled", ctx.Err())
	}
	select {
	case res := <-reply:
		return res.submit, res.err
	case <-ctx.Done():
		return SubmitResult{}, errs.Wrap(errs.Internal, "submit cancelled", ctx.Err())
	}
}

// Cancel implements spec §4.5 cancel(user, order_id).
func (e *Engine) Cancel(ctx context.Context, userID, orderID string) error {
	o, ok := e.orders.Get(orderID)
	if !ok {
		return errs.New(errs.NotFound, "order not found")
	}
	inst := e.instrumentFor(o.Ticker)
	reply := make(chan result, 1)
	select {
	case inst.mailbox <- command{cancel: &cancelRequest{userID: userID, orderID: orderID}, reply: reply}:
	case <-ctx.Done():
		return errs.Wrap(errs.Internal, "cancel cancelled", ctx.Err())
	}
	select {
	case res := <-reply:
		return res.err
	case <-ctx.Done():
		return errs.Wrap(errs.Internal, "cancel cancelled", ctx.Err())
	}
}
