package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_DepositWithdraw(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Deposit("u1", "RUB", 100))
	avail, reserved := l.Get("u1", "RUB")
	assert.Equal(t, int64(100), avail)
	assert.Zero(t, reserved)

	require.NoError(t, l.Withdraw("u1", "RUB", 40))
	avail, _ = l.Get("u1", "RUB")
	assert.Equal(t, int64(60), avail)

	err := l.Withdraw("u1", "RUB", 1000)
	require.Error(t, err)
}

func TestLedger_ReserveRelease(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Deposit("u1", "RUB", 100))
	require.NoError(t, l.Reserve("u1", "RUB", 60))

	avail, reserved := l.Get("u1", "RUB")
	assert.Equal(t, int64(40), avail)
	assert.Equal(t, int64(60), reserved)

	err := l.Reserve("u1", "RUB", 1000)
	require.Error(t, err)

	require.NoError(t, l.Release("u1", "RUB", 20))
	avail, reserved = l.Get("u1", "RUB")
	assert.Equal(t, int64(60), avail)
	assert.Equal(t, int64(40), reserved)
}

func TestLedger_Settle(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Deposit("buyer", RUB, 1000))
	require.NoError(t, l.Reserve("buyer", RUB, 500))

	require.NoError(t, l.Settle("buyer", RUB, FromReserved, "seller", RUB, 500))

	buyerAvail, buyerReserved := l.Get("buyer", RUB)
	assert.Equal(t, int64(500), buyerAvail)
	assert.Zero(t, buyerReserved)

	sellerAvail, _ := l.Get("seller", RUB)
	assert.Equal(t, int64(500), sellerAvail)
}

func TestLedger_SettleInsufficientReserved(t *testing.T) {
	l := New(nil)
	err := l.Settle("buyer", RUB, FromReserved, "seller", RUB, 1)
	require.Error(t, err)
}

func TestLedger_ConcurrentReserveNeverGoesNegative(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.Deposit("u1", "RUB", 100))

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			done <- l.Reserve("u1", "RUB", 20)
		}()
	}
	var failures int
	for i := 0; i < 10; i++ {
		if <-done != nil {
			failures++
		}
	}
	assert.Equal(t, 5, failures)

	avail, reserved := l.Get("u1", "RUB")
	assert.Zero(t, avail)
	assert.Equal(t, int64(100), reserved)
}
