package engine

import (
	"github.com/google/uuid"

	"github.com/abdoElHodaky/exchange-core/internal/book"
	"github.com/abdoElHodaky/exchange-core/internal/errs"
	"github.com/abdoElHodaky/exchange-core/internal/ledger"
	"github.com/abdoElHodaky/exchange-core/internal/metrics"
	"github.com/abdoElHodaky/exchange-core/internal/orderstore"
)

// handleSubmit runs entirely inside inst's single-writer section
// (spec §5): validate reservation, create the order record, walk the
// opposite side, settle trades, finalize. Only ledger and store I/O
// may suspend here; nothing talks to the client.
func (e *Engine) handleSubmit(inst *instrument, req SubmitRequest) (SubmitResult, error) {
	if req.Direction != Buy && req.Direction != Sell {
		metrics.OrdersRejected.WithLabelValues(string(errs.Validation)).Inc()
		return SubmitResult{}, errs.New(errs.Validation, "direction must be BUY or SELL")
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	reserveAsset, reserveAmount, err := e.reservationFor(inst, req)
	if err != nil {
		metrics.OrdersRejected.WithLabelValues(rejectionCode(err)).Inc()
		return SubmitResult{}, err
	}
	if err := e.ledger.Reserve(req.UserID, reserveAsset, reserveAmount); err != nil {
		metrics.OrdersRejected.WithLabelValues(rejectionCode(err)).Inc()
		return SubmitResult{}, err
	}

	orderID := uuid.NewString()
	ts := e.clock()
	e.orders.Insert(orderstore.Order{
		ID:        orderID,
		UserID:    req.UserID,
		Ticker:    req.Ticker,
		Kind:      req.Kind,
		Direction: req.Direction,
		Qty:       req.Qty,
		Price:     req.Price,
		Timestamp: ts,
	})
	metrics.OrdersSubmitted.WithLabelValues(req.Ticker, string(req.Direction), string(req.Kind)).Inc()

	oppSide, ownSide := book.Ask, book.Bid
	if req.Direction == Sell {
		oppSide, ownSide = book.Bid, book.Ask
	}

	var buyLimitPrice int64
	if req.Direction == Buy && req.Kind == KindLimit {
		buyLimitPrice = req.Price
	}

	remaining := req.Qty
	var filled int64

	for remaining > 0 {
		price, ok := inst.book.Best(oppSide)
		if !ok {
			break
		}
		if req.Kind == KindLimit {
			if req.Direction == Buy && price > req.Price {
				break
			}
			if req.Direction == Sell && price < req.Price {
				break
			}
		}
		_, entry, ok := inst.book.PeekFront(oppSide)
		if !ok {
			break
		}

		x := remaining
		if entry.RemainingQty < x {
			x = entry.RemainingQty
		}

		buyerID, sellerID := req.UserID, entry.UserID
		if req.Direction == Sell {
			buyerID, sellerID = entry.UserID, req.UserID
		}

		e.trades.Append(req.Ticker, buyerID, sellerID, x, price, e.clock())
		metrics.TradesExecuted.WithLabelValues(req.Ticker).Inc()

		rubCost := x * price
		if err := e.ledger.Settle(buyerID, ledger.RUB, ledger.FromReserved, sellerID, ledger.RUB, rubCost); err != nil {
			return SubmitResult{}, errs.Wrap(errs.Internal, "rub settlement failed", err)
		}
		if err := e.ledger.Settle(sellerID, req.Ticker, ledger.FromReserved, buyerID, req.Ticker, x); err != nil {
			return SubmitResult{}, errs.Wrap(errs.Internal, "asset settlement failed", err)
		}

		if req.Direction == Buy && req.Kind == KindLimit {
			if excess := x * (buyLimitPrice - price); excess > 0 {
				if err := e.ledger.Release(req.UserID, ledger.RUB, excess); err != nil {
					return SubmitResult{}, errs.Wrap(errs.Internal, "price-improvement release failed", err)
				}
			}
		}

		if cp, ok := e.orders.Get(entry.OrderID); ok {
			newFilled := cp.Filled + x
			status := orderstore.StatusPartiallyExecuted
			if newFilled >= cp.Qty {
				status = orderstore.StatusExecuted
			}
			if err := e.orders.UpdateStatusAndFilled(entry.OrderID, status, newFilled); err != nil {
				return SubmitResult{}, errs.Wrap(errs.Internal, "counterparty order update failed", err)
			}
		}

		inst.book.ConsumeFront(oppSide, x)
		remaining -= x
		filled += x
	}

	switch {
	case req.Kind == KindMarket:
		if remaining != 0 {
			return SubmitResult{}, errs.New(errs.Internal, "market order left unfilled after pre-walked reservation")
		}
		if err := e.orders.UpdateStatusAndFilled(orderID, orderstore.StatusExecuted, req.Qty); err != nil {
			return SubmitResult{}, errs.Wrap(errs.Internal, "finalize failed", err)
		}
	case remaining == 0:
		if err := e.orders.UpdateStatusAndFilled(orderID, orderstore.StatusExecuted, filled); err != nil {
			return SubmitResult{}, errs.Wrap(errs.Internal, "finalize failed", err)
		}
	default:
		restFunds := remaining
		if req.Direction == Buy {
			restFunds = remaining * req.Price
		}
		inst.book.Push(ownSide, req.Price, &book.Entry{
			OrderID:       orderID,
			UserID:        req.UserID,
			RemainingQty:  remaining,
			ReservedFunds: restFunds,
		})
		status := orderstore.StatusNew
		if filled > 0 {
			status = orderstore.StatusPartiallyExecuted
		}
		if err := e.orders.UpdateStatusAndFilled(orderID, status, filled); err != nil {
			return SubmitResult{}, errs.Wrap(errs.Internal, "finalize failed", err)
		}
	}

	e.updateDepthGauge(inst)
	return SubmitResult{OrderID: orderID}, nil
}

// reservationFor computes the asset/amount to reserve per spec
// §4.5.1, rejecting thin-book market orders before any state changes.
func (e *Engine) reservationFor(inst *instrument, req SubmitRequest) (asset string, amount int64, err error) {
	switch {
	case req.Direction == Buy && req.Kind == KindLimit:
		return ledger.RUB, req.Qty * req.Price, nil
	case req.Direction == Sell:
		if req.Kind == KindMarket {
			if inst.book.AggregateQty(book.Bid) < req.Qty {
				return "", 0, errs.New(errs.LiquidityInsufficient, "insufficient bid liquidity to fill market order")
			}
		}
		return req.Ticker, req.Qty, nil
	default: // Buy market
		cost, werr := preWalkBuyMarketCost(inst.book, req.Qty)
		if werr != nil {
			return "", 0, werr
		}
		return ledger.RUB, cost, nil
	}
}

// preWalkBuyMarketCost computes the exact RUB cost to fully fill a
// BUY market order of qty against the resting ask side, without
// mutating the book. Returns LiquidityInsufficient if the book cannot
// fully clear it (spec §4.5.1).
func preWalkBuyMarketCost(b *book.Book, qty int64) (int64, error) {
	remaining := qty
	var cost int64
	for _, lv := range b.Depth(book.Ask, 0) {
		if remaining <= 0 {
			break
		}
		x := remaining
		if lv.Qty < x {
			x = lv.Qty
		}
		cost += x * lv.Price
		remaining -= x
	}
	if remaining > 0 {
		return 0, errs.New(errs.LiquidityInsufficient, "insufficient ask liquidity to fill market order")
	}
	return cost, nil
}

// handleCancel implements spec §4.5 cancel(user, order_id), run inside
// inst's single-writer section.
func (e *Engine) handleCancel(inst *instrument, userID, orderID string) error {
	o, ok := e.orders.Get(orderID)
	if !ok {
		return errs.New(errs.NotFound, "order not found")
	}
	if o.UserID != userID {
		return errs.New(errs.Forbidden, "not the order owner")
	}
	if o.Status != orderstore.StatusNew && o.Status != orderstore.StatusPartiallyExecuted {
		return errs.New(errs.NotCancellable, "order is not cancellable")
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	entry, _, ok := inst.book.Remove(orderID)
	if !ok {
		return errs.New(errs.NotCancellable, "order is not resting")
	}

	asset := o.Ticker
	if o.Direction == Buy {
		asset = ledger.RUB
	}
	if err := e.ledger.Release(userID, asset, entry.ReservedFunds); err != nil {
		return errs.Wrap(errs.Internal, "cancel refund failed", err)
	}
	if err := e.orders.UpdateStatusAndFilled(orderID, orderstore.StatusCancelled, o.Filled); err != nil {
		return errs.Wrap(errs.Internal, "cancel status update failed", err)
	}

	metrics.OrdersCancelled.WithLabelValues(o.Ticker).Inc()
	e.updateDepthGauge(inst)
	return nil
}

// rejectionCode extracts the error taxonomy code to label a rejection
// metric with, defaulting to Internal for an error that never went
// through errs.New/errs.Wrap.
func rejectionCode(err error) string {
	if e, ok := errs.As(err); ok {
		return string(e.Code)
	}
	return string(errs.Internal)
}

func (e *Engine) updateDepthGauge(inst *instrument) {
	metrics.BookDepth.WithLabelValues(inst.ticker, "bid").Set(float64(len(inst.book.Depth(book.Bid, 0))))
	metrics.BookDepth.WithLabelValues(inst.ticker, "ask").Set(float64(len(inst.book.Depth(book.Ask, 0))))
}
