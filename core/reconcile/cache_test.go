package reconcile

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessorialCacheLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	cache := NewAccessorialCache(func(agreement string) (*AccessorialTable, error) {
		calls.Add(1)
		return &AccessorialTable{Entries: []AccessorialEntry{{Name: "Waiting time"}}}, nil
	})

	first := cache.Get("10500000")
	require.NotNil(t, first)
	second := cache.Get("10500000")
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAccessorialCacheCachesFailures(t *testing.T) {
	var calls atomic.Int32
	cache := NewAccessorialCache(func(agreement string) (*AccessorialTable, error) {
		calls.Add(1)
		return nil, errors.New("workbook missing")
	})

	assert.Nil(t, cache.Get("10500000"))
	assert.Nil(t, cache.Get("10500000"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestAccessorialCacheClear(t *testing.T) {
	var calls atomic.Int32
	cache := NewAccessorialCache(func(agreement string) (*AccessorialTable, error) {
		calls.Add(1)
		return &AccessorialTable{}, nil
	})

	cache.Get("10500000")
	cache.Clear()
	cache.Get("10500000")
	assert.Equal(t, int32(2), calls.Load())
}

func TestAccessorialCachePut(t *testing.T) {
	cache := NewAccessorialCache(nil)

	tbl := &AccessorialTable{}
	cache.Put("10500000", tbl)
	assert.Same(t, tbl, cache.Get("10500000"))
	assert.Nil(t, cache.Get("other"))
}

func TestAccessorialCacheConcurrentAccess(t *testing.T) {
	cache := NewAccessorialCache(func(agreement string) (*AccessorialTable, error) {
		return &AccessorialTable{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Get("10500000")
		}()
	}
	wg.Wait()

	assert.NotNil(t, cache.Get("10500000"))
}
