package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_CreateAndList(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Create("MEMCOIN", "Mem Coin"))
	assert.True(t, c.Exists("MEMCOIN"))
	assert.Len(t, c.List(), 1)
}

func TestCatalog_RejectsRUB(t *testing.T) {
	c := New(nil)
	err := c.Create(Quote, "Ruble")
	require.Error(t, err)
}

func TestCatalog_RejectsBadFormat(t *testing.T) {
	c := New(nil)
	err := c.Create("lowercase", "bad")
	require.Error(t, err)
}

func TestCatalog_RejectsDuplicate(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Create("MEMCOIN", "Mem Coin"))
	err := c.Create("MEMCOIN", "Mem Coin Again")
	require.Error(t, err)
}

func TestCatalog_Delete(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Create("MEMCOIN", "Mem Coin"))
	require.NoError(t, c.Delete("MEMCOIN"))
	assert.False(t, c.Exists("MEMCOIN"))

	err := c.Delete("MEMCOIN")
	require.Error(t, err)
}
