package cpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheMemoizes(t *testing.T) {
	cache := NewCache()

	first, err := cache.Get("cpe:2.3:o:redhat:enterprise_linux:7.1:*:*:*:*:*:*:*")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Size())

	second, err := cache.Get("cpe:2.3:o:redhat:enterprise_linux:7.1:*:*:*:*:*:*:*")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Size())
	assert.Equal(t, first, second)

	_, err = cache.Get("cpe:2.3:o:ibm:zos:*:*:*:*:*:*:*:*")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Size())
}

func TestCacheReturnsCopies(t *testing.T) {
	cache := NewCache()

	c, err := cache.Get("cpe:2.3:o:redhat:enterprise_linux:7.1:*:*:*:*:*:*:*")
	require.NoError(t, err)

	// decorating the returned value must not pollute the cache
	c.Title = "Red Hat Enterprise Linux 7.1"
	c.Start = &RangeBound{Kind: RangeIncluding, Version: "7.0"}

	again, err := cache.Get("cpe:2.3:o:redhat:enterprise_linux:7.1:*:*:*:*:*:*:*")
	require.NoError(t, err)
	assert.Empty(t, again.Title)
	assert.Nil(t, again.Start)
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	cache := NewCache()

	_, err := cache.Get("garbage")
	require.Error(t, err)
	assert.Equal(t, 0, cache.Size())
}

func TestCacheReset(t *testing.T) {
	cache := NewCache()

	_, err := cache.Get("cpe:2.3:o:redhat:enterprise_linux:7.1:*:*:*:*:*:*:*")
	require.NoError(t, err)
	require.Equal(t, 1, cache.Size())

	cache.Reset()
	assert.Equal(t, 0, cache.Size())
}
