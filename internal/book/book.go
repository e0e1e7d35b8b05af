// Package book implements the per-instrument order book of spec §4.4:
// two price-ordered sides, each level a FIFO queue of resting
// entries, with an order_id index for O(log N) cancellation lookup.
package book

import (
	"container/list"
	"sort"
)

// Side is which side of the book an entry rests on.
type Side int

const (
	Bid Side = iota
	Ask
)

// Entry is a resting limit order.
type Entry struct {
	OrderID       string
	UserID        string
	RemainingQty  int64
	ReservedFunds int64
}

type level struct {
	price   int64
	entries *list.List // of *Entry, FIFO: front = earliest
}

func (lv *level) totalQty() int64 {
	var total int64
	for e := lv.entries.Front(); e != nil; e = e.Next() {
		total += e.Value.(*Entry).RemainingQty
	}
	return total
}

// locator is where a resting order lives, for O(log N) removal.
type locator struct {
	side Side
	price int64
	elem  *list.Element
}

// Book is one instrument's order book.
type Book struct {
	bids []*level // descending by price
	asks []*level // ascending by price
	idx  map[string]locator
}

// New creates an empty order book.
func New() *Book {
	return &Book{idx: make(map[string]locator)}
}

func (b *Book) levels(side Side) *[]*level {
	if side == Bid {
		return &b.bids
	}
	return &b.asks
}

// findLevelIndex returns the index of the level at price, and whether it
// exists, preserving the side's sort order (bids descending, asks
// ascending).
func (b *Book) findLevelIndex(side Side, price int64) (int, bool) {
	levels := *b.levels(side)
	if side == Bid {
		i := sort.Search(len(levels), func(i int) bool { return levels[i].price <= price })
		if i < len(levels) && levels[i].price == price {
			return i, true
		}
		return i, false
	}
	i := sort.Search(len(levels), func(i int) bool { return levels[i].price >= price })
	if i < len(levels) && levels[i].price == price {
		return i, true
	}
	return i, false
}

// Best returns the best price on side, if any resting level exists.
func (b *Book) Best(side Side) (price int64, ok bool) {
	levels := *b.levels(side)
	if len(levels) == 0 {
		return 0, false
	}
	return levels[0].price, true
}

// Push appends entry to the FIFO at price on side, creating the level
// if absent, and indexes the order for removal.
func (b *Book) Push(side Side, price int64, entry *Entry) {
	levelsPtr := b.levels(side)
	i, found := b.findLevelIndex(side, price)
	var lv *level
	if found {
		lv = (*levelsPtr)[i]
	} else {
		lv = &level{price: price, entries: list.New()}
		levels := *levelsPtr
		levels = append(levels, nil)
		copy(levels[i+1:], levels[i:])
		levels[i] = lv
		*levelsPtr = levels
	}
	elem := lv.entries.PushBack(entry)
	b.idx[entry.OrderID] = locator{side: side, price: price, elem: elem}
}

// PeekFront returns the earliest entry at the best price on side.
func (b *Book) PeekFront(side Side) (price int64, entry *Entry, ok bool) {
	levels := *b.levels(side)
	if len(levels) == 0 {
		return 0, nil, false
	}
	lv := levels[0]
	front := lv.entries.Front()
	if front == nil {
		return 0, nil, false
	}
	return lv.price, front.Value.(*Entry), true
}

// ConsumeFront reduces the front entry's remaining qty by delta,
// shrinking its reserved funds by the same proportion so a later
// cancellation refunds exactly the unfilled portion, removing the
// entry if it reaches zero and the level if it empties.
func (b *Book) ConsumeFront(side Side, delta int64) {
	levelsPtr := b.levels(side)
	levels := *levelsPtr
	if len(levels) == 0 {
		return
	}
	lv := levels[0]
	front := lv.entries.Front()
	if front == nil {
		return
	}
	e := front.Value.(*Entry)
	if e.RemainingQty > 0 {
		unitReserved := e.ReservedFunds / e.RemainingQty
		e.ReservedFunds -= delta * unitReserved
	}
	e.RemainingQty -= delta
	if e.RemainingQty <= 0 {
		lv.entries.Remove(front)
		delete(b.idx, e.OrderID)
	}
	if lv.entries.Len() == 0 {
		*levelsPtr = levels[1:]
	}
}

// Remove deletes the resting entry for orderID, wherever it sits,
// using the index to avoid scanning. Returns the entry and its price.
func (b *Book) Remove(orderID string) (*Entry, int64, bool) {
	loc, ok := b.idx[orderID]
	if !ok {
		return nil, 0, false
	}
	delete(b.idx, orderID)

	levelsPtr := b.levels(loc.side)
	levels := *levelsPtr
	i, found := b.findLevelIndex(loc.side, loc.price)
	if !found {
		return nil, 0, false
	}
	lv := levels[i]
	e := loc.elem.Value.(*Entry)
	lv.entries.Remove(loc.elem)
	if lv.entries.Len() == 0 {
		levels = append(levels[:i], levels[i+1:]...)
		*levelsPtr = levels
	}
	return e, loc.price, true
}

// PriceLevel is an aggregated depth row, used by the public orderbook
// projection (SPEC_FULL §4.5 depth operation).
type PriceLevel struct {
	Price int64
	Qty   int64
}

// Depth returns up to limit aggregated price levels on side, best
// price first.
func (b *Book) Depth(side Side, limit int) []PriceLevel {
	levels := *b.levels(side)
	n := len(levels)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]PriceLevel, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, PriceLevel{Price: levels[i].price, Qty: levels[i].totalQty()})
	}
	return out
}

// AggregateQty sums remaining qty across every level on side, used to
// pre-walk liquidity checks for market SELL orders (spec §4.5.1).
func (b *Book) AggregateQty(side Side) int64 {
	var total int64
	for _, lv := range *b.levels(side) {
		total += lv.totalQty()
	}
	return total
}
