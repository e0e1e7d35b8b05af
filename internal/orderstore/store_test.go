package orderstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_InsertAndGet(t *testing.T) {
	s := New(nil)
	s.Insert(Order{ID: "o1", UserID: "u1", Ticker: "MEMCOIN", Kind: KindLimit, Direction: Buy, Qty: 5, Price: 100, Timestamp: time.Now()})

	o, ok := s.Get("o1")
	require.True(t, ok)
	assert.Equal(t, StatusNew, o.Status)
	assert.Zero(t, o.Filled)
}

func TestStore_UpdateMonotonicity(t *testing.T) {
	s := New(nil)
	s.Insert(Order{ID: "o1", UserID: "u1", Ticker: "MEMCOIN", Kind: KindLimit, Direction: Buy, Qty: 5, Price: 100, Timestamp: time.Now()})

	require.NoError(t, s.UpdateStatusAndFilled("o1", StatusExecuted, 5))

	err := s.UpdateStatusAndFilled("o1", StatusPartiallyExecuted, 5)
	require.Error(t, err)

	err = s.UpdateStatusAndFilled("o1", StatusExecuted, 3)
	require.Error(t, err)
}

func TestStore_UpdateUnknownOrder(t *testing.T) {
	s := New(nil)
	err := s.UpdateStatusAndFilled("nope", StatusExecuted, 1)
	require.Error(t, err)
}

func TestStore_ListByUserNewestFirstExcludesOthers(t *testing.T) {
	s := New(nil)
	base := time.Now()
	s.Insert(Order{ID: "o1", UserID: "u1", Timestamp: base})
	s.Insert(Order{ID: "o2", UserID: "u1", Timestamp: base.Add(time.Second)})
	s.Insert(Order{ID: "o3", UserID: "u2", Timestamp: base.Add(2 * time.Second)})

	out := s.ListByUser("u1")
	require.Len(t, out, 2)
	assert.Equal(t, "o2", out[0].ID)
	assert.Equal(t, "o1", out[1].ID)
}
