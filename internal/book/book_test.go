package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_PriceTimePriority(t *testing.T) {
	b := New()
	b.Push(Ask, 100, &Entry{OrderID: "a1", UserID: "u1", RemainingQty: 5, ReservedFunds: 5})
	b.Push(Ask, 100, &Entry{OrderID: "a2", UserID: "u2", RemainingQty: 3, ReservedFunds: 3})
	b.Push(Ask, 90, &Entry{OrderID: "a3", UserID: "u3", RemainingQty: 2, ReservedFunds: 2})

	price, ok := b.Best(Ask)
	require.True(t, ok)
	assert.Equal(t, int64(90), price, "lowest ask must be best")

	p, e, ok := b.PeekFront(Ask)
	require.True(t, ok)
	assert.Equal(t, int64(90), p)
	assert.Equal(t, "a3", e.OrderID)

	b.ConsumeFront(Ask, 2)
	p, e, ok = b.PeekFront(Ask)
	require.True(t, ok)
	assert.Equal(t, int64(100), p, "level at 90 emptied, next best is 100")
	assert.Equal(t, "a1", e.OrderID, "FIFO: a1 inserted before a2 at same price")
}

func TestBook_ConsumeFrontPartial(t *testing.T) {
	b := New()
	b.Push(Bid, 50, &Entry{OrderID: "b1", RemainingQty: 10, ReservedFunds: 500})
	b.ConsumeFront(Bid, 4)
	_, e, ok := b.PeekFront(Bid)
	require.True(t, ok)
	assert.Equal(t, int64(6), e.RemainingQty)
	assert.Equal(t, int64(300), e.ReservedFunds, "reserved funds must shrink proportionally with remaining qty")

	b.ConsumeFront(Bid, 6)
	_, ok = b.Best(Bid)
	assert.False(t, ok, "book empties after full consumption")
}

func TestBook_Remove(t *testing.T) {
	b := New()
	b.Push(Bid, 100, &Entry{OrderID: "o1", RemainingQty: 5, ReservedFunds: 500})
	b.Push(Bid, 100, &Entry{OrderID: "o2", RemainingQty: 5, ReservedFunds: 500})
	b.Push(Bid, 90, &Entry{OrderID: "o3", RemainingQty: 5, ReservedFunds: 450})

	e, price, ok := b.Remove("o2")
	require.True(t, ok)
	assert.Equal(t, int64(100), price)
	assert.Equal(t, int64(5), e.RemainingQty)

	_, _, found := b.Remove("o2")
	assert.False(t, found, "double removal must fail")

	p, _, _ := b.PeekFront(Bid)
	assert.Equal(t, int64(100), p, "o1 still resting at 100")
}

func TestBook_NoCrossedAtRest(t *testing.T) {
	b := New()
	b.Push(Bid, 99, &Entry{OrderID: "bid1", RemainingQty: 1})
	b.Push(Ask, 100, &Entry{OrderID: "ask1", RemainingQty: 1})

	bestBid, _ := b.Best(Bid)
	bestAsk, _ := b.Best(Ask)
	assert.Less(t, bestBid, bestAsk)
}

func TestBook_Depth(t *testing.T) {
	b := New()
	b.Push(Bid, 100, &Entry{OrderID: "1", RemainingQty: 3})
	b.Push(Bid, 100, &Entry{OrderID: "2", RemainingQty: 2})
	b.Push(Bid, 95, &Entry{OrderID: "3", RemainingQty: 7})

	depth := b.Depth(Bid, 10)
	require.Len(t, depth, 2)
	assert.Equal(t, int64(100), depth[0].Price)
	assert.Equal(t, int64(5), depth[0].Qty)
	assert.Equal(t, int64(95), depth[1].Price)
}

func TestBook_AggregateQty(t *testing.T) {
	b := New()
	b.Push(Ask, 10, &Entry{OrderID: "1", RemainingQty: 2})
	b.Push(Ask, 20, &Entry{OrderID: "2", RemainingQty: 3})
	assert.Equal(t, int64(5), b.AggregateQty(Ask))
}
