package pool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSubmit(t *testing.T) {
	p, err := New("test", &Config{Capacity: 4, ExpiryDuration: time.Second})
	require.NoError(t, err)
	defer p.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		err := p.Submit(func() {
			defer wg.Done()
			mu.Lock()
			count++
			mu.Unlock()
		})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.Equal(t, 20, count)
	stats := p.Stats()
	assert.Equal(t, int64(20), stats.Submitted)
	assert.Equal(t, int64(20), stats.Completed)
}

func TestPoolSubmitAfterRelease(t *testing.T) {
	p, err := New("test", nil)
	require.NoError(t, err)

	p.Release()
	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
}

func TestPoolNonblockingOverload(t *testing.T) {
	p, err := New("test", &Config{Capacity: 1, ExpiryDuration: time.Second, Nonblocking: true})
	require.NoError(t, err)
	defer p.Release()

	block := make(chan struct{})
	require.NoError(t, p.Submit(func() { <-block }))

	// Pool has a single busy worker; a nonblocking submit must be rejected.
	var overloaded bool
	for i := 0; i < 10; i++ {
		if err := p.Submit(func() {}); err == ErrPoolOverload {
			overloaded = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	close(block)
	assert.True(t, overloaded)
}
