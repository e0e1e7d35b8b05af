package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/exchange-core/internal/catalog"
	"github.com/abdoElHodaky/exchange-core/internal/ledger"
	"github.com/abdoElHodaky/exchange-core/internal/orderstore"
	"github.com/abdoElHodaky/exchange-core/internal/tradelog"
)

const memcoin = "MEMCOIN"

func newTestEngine(t *testing.T) (*Engine, *ledger.Ledger, *orderstore.Store) {
	t.Helper()
	led := ledger.New(nil)
	orders := orderstore.New(nil)
	trades := tradelog.New(nil, nil)
	cat := catalog.New(nil)
	require.NoError(t, cat.Create(memcoin, "Mem Coin"))

	var tick time.Time
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Millisecond)
		return tick
	}

	e, err := New(led, orders, trades, cat, zap.NewNop(), 4, 64, clock)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, led, orders
}

func TestEngine_S1_HappyMatch(t *testing.T) {
	e, led, orders := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, led.Deposit("u1", ledger.RUB, 10_000))
	require.NoError(t, led.Deposit("u2", memcoin, 10))

	sellRes, err := e.Submit(ctx, SubmitRequest{UserID: "u2", Ticker: memcoin, Kind: KindLimit, Direction: Sell, Qty: 5, Price: 100})
	require.NoError(t, err)

	buyRes, err := e.Submit(ctx, SubmitRequest{UserID: "u1", Ticker: memcoin, Kind: KindLimit, Direction: Buy, Qty: 5, Price: 100})
	require.NoError(t, err)

	sellOrder, _ := orders.Get(sellRes.OrderID)
	buyOrder, _ := orders.Get(buyRes.OrderID)
	assert.Equal(t, orderstore.StatusExecuted, sellOrder.Status)
	assert.Equal(t, orderstore.StatusExecuted, buyOrder.Status)

	u1RUB, u1RUBRes := led.Get("u1", ledger.RUB)
	u1Mem, _ := led.Get("u1", memcoin)
	u2RUB, _ := led.Get("u2", ledger.RUB)
	u2Mem, u2MemRes := led.Get("u2", memcoin)

	assert.Equal(t, int64(9_500), u1RUB)
	assert.Zero(t, u1RUBRes)
	assert.Equal(t, int64(5), u1Mem)
	assert.Equal(t, int64(500), u2RUB)
	assert.Equal(t, int64(5), u2Mem)
	assert.Zero(t, u2MemRes)
}

func TestEngine_S2_PartialFillRestCancel(t *testing.T) {
	e, led, orders := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, led.Deposit("u2", memcoin, 10))
	require.NoError(t, led.Deposit("u1", ledger.RUB, 1_000))

	sellRes, err := e.Submit(ctx, SubmitRequest{UserID: "u2", Ticker: memcoin, Kind: KindLimit, Direction: Sell, Qty: 10, Price: 50})
	require.NoError(t, err)

	buyRes, err := e.Submit(ctx, SubmitRequest{UserID: "u1", Ticker: memcoin, Kind: KindLimit, Direction: Buy, Qty: 4, Price: 50})
	require.NoError(t, err)

	buyOrder, _ := orders.Get(buyRes.OrderID)
	sellOrder, _ := orders.Get(sellRes.OrderID)
	assert.Equal(t, orderstore.StatusExecuted, buyOrder.Status)
	assert.Equal(t, orderstore.StatusPartiallyExecuted, sellOrder.Status)
	assert.Equal(t, int64(4), sellOrder.Filled)

	require.NoError(t, e.Cancel(ctx, "u2", sellRes.OrderID))

	sellOrder, _ = orders.Get(sellRes.OrderID)
	assert.Equal(t, orderstore.StatusCancelled, sellOrder.Status)
	assert.Equal(t, int64(4), sellOrder.Filled)

	avail, reserved := led.Get("u2", memcoin)
	assert.Equal(t, int64(6), avail)
	assert.Zero(t, reserved)
}

func TestEngine_S3_PriceImprovementForTaker(t *testing.T) {
	e, led, orders := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, led.Deposit("seller1", memcoin, 3))
	require.NoError(t, led.Deposit("seller2", memcoin, 3))
	require.NoError(t, led.Deposit("u1", ledger.RUB, 550))

	_, err := e.Submit(ctx, SubmitRequest{UserID: "seller1", Ticker: memcoin, Kind: KindLimit, Direction: Sell, Qty: 3, Price: 90})
	require.NoError(t, err)
	_, err = e.Submit(ctx, SubmitRequest{UserID: "seller2", Ticker: memcoin, Kind: KindLimit, Direction: Sell, Qty: 3, Price: 110})
	require.NoError(t, err)

	buyRes, err := e.Submit(ctx, SubmitRequest{UserID: "u1", Ticker: memcoin, Kind: KindLimit, Direction: Buy, Qty: 5, Price: 110})
	require.NoError(t, err)

	buyOrder, _ := orders.Get(buyRes.OrderID)
	assert.Equal(t, orderstore.StatusExecuted, buyOrder.Status)

	u1RUB, u1Reserved := led.Get("u1", ledger.RUB)
	assert.Equal(t, int64(60), u1RUB) // 550 - 490
	assert.Zero(t, u1Reserved)
}

func TestEngine_S4_MarketRejectOnThinBook(t *testing.T) {
	e, led, orders := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, led.Deposit("seller", memcoin, 2))
	require.NoError(t, led.Deposit("u1", ledger.RUB, 10_000))

	_, err := e.Submit(ctx, SubmitRequest{UserID: "seller", Ticker: memcoin, Kind: KindLimit, Direction: Sell, Qty: 2, Price: 100})
	require.NoError(t, err)

	before, beforeRes := led.Get("u1", ledger.RUB)

	_, err = e.Submit(ctx, SubmitRequest{UserID: "u1", Ticker: memcoin, Kind: KindMarket, Direction: Buy, Qty: 3})
	require.Error(t, err)

	after, afterRes := led.Get("u1", ledger.RUB)
	assert.Equal(t, before, after)
	assert.Equal(t, beforeRes, afterRes)
	assert.Empty(t, orders.ListByUser("u1"))
}

func TestEngine_S5_CancelRefundsOnlyUnfilled(t *testing.T) {
	e, led, orders := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, led.Deposit("u1", ledger.RUB, 1_000))
	require.NoError(t, led.Deposit("seller", memcoin, 4))

	buyRes, err := e.Submit(ctx, SubmitRequest{UserID: "u1", Ticker: memcoin, Kind: KindLimit, Direction: Buy, Qty: 10, Price: 100})
	require.NoError(t, err)

	_, err = e.Submit(ctx, SubmitRequest{UserID: "seller", Ticker: memcoin, Kind: KindLimit, Direction: Sell, Qty: 4, Price: 100})
	require.NoError(t, err)

	buyOrder, _ := orders.Get(buyRes.OrderID)
	assert.Equal(t, int64(4), buyOrder.Filled)
	assert.Equal(t, orderstore.StatusPartiallyExecuted, buyOrder.Status)

	require.NoError(t, e.Cancel(ctx, "u1", buyRes.OrderID))

	buyOrder, _ = orders.Get(buyRes.OrderID)
	assert.Equal(t, orderstore.StatusCancelled, buyOrder.Status)
	assert.Equal(t, int64(4), buyOrder.Filled)

	avail, reserved := led.Get("u1", ledger.RUB)
	assert.Equal(t, int64(600), avail)
	assert.Zero(t, reserved)
}

func TestEngine_S6_ConcurrentSubmitsSerialize(t *testing.T) {
	e, led, orders := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, led.Deposit("seller", memcoin, 1))
	require.NoError(t, led.Deposit("buyerA", ledger.RUB, 1_000))
	require.NoError(t, led.Deposit("buyerB", ledger.RUB, 1_000))

	_, err := e.Submit(ctx, SubmitRequest{UserID: "seller", Ticker: memcoin, Kind: KindLimit, Direction: Sell, Qty: 1, Price: 100})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]SubmitResult, 2)
	errsOut := make([]error, 2)
	buyers := []string{"buyerA", "buyerB"}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.Submit(ctx, SubmitRequest{UserID: buyers[i], Ticker: memcoin, Kind: KindLimit, Direction: Buy, Qty: 1, Price: 100})
			results[i] = res
			errsOut[i] = err
		}(i)
	}
	wg.Wait()

	executed, resting := 0, 0
	for i := 0; i < 2; i++ {
		require.NoError(t, errsOut[i])
		o, ok := orders.Get(results[i].OrderID)
		require.True(t, ok)
		switch o.Status {
		case orderstore.StatusExecuted:
			executed++
		case orderstore.StatusNew:
			resting++
		}
	}
	assert.Equal(t, 1, executed)
	assert.Equal(t, 1, resting)
}

func TestEngine_SellMarket_Liquidity(t *testing.T) {
	e, led, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, led.Deposit("buyer", ledger.RUB, 1_000))
	require.NoError(t, led.Deposit("u1", memcoin, 5))

	_, err := e.Submit(ctx, SubmitRequest{UserID: "buyer", Ticker: memcoin, Kind: KindLimit, Direction: Buy, Qty: 2, Price: 100})
	require.NoError(t, err)

	_, err = e.Submit(ctx, SubmitRequest{UserID: "u1", Ticker: memcoin, Kind: KindMarket, Direction: Sell, Qty: 3})
	require.Error(t, err)

	avail, reserved := led.Get("u1", memcoin)
	assert.Equal(t, int64(5), avail)
	assert.Zero(t, reserved)
}

func TestEngine_CancelForbiddenForNonOwner(t *testing.T) {
	e, led, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, led.Deposit("u1", ledger.RUB, 1_000))
	res, err := e.Submit(ctx, SubmitRequest{UserID: "u1", Ticker: memcoin, Kind: KindLimit, Direction: Buy, Qty: 1, Price: 100})
	require.NoError(t, err)

	err = e.Cancel(ctx, "intruder", res.OrderID)
	require.Error(t, err)
}

func TestEngine_RejectUnknownInstrument(t *testing.T) {
	e, led, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, led.Deposit("u1", ledger.RUB, 1_000))
	_, err := e.Submit(ctx, SubmitRequest{UserID: "u1", Ticker: "NOPE", Kind: KindLimit, Direction: Buy, Qty: 1, Price: 100})
	require.Error(t, err)
}
