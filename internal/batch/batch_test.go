package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_IsolatesFailureAndKeepsOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	boom := errors.New("boom")

	res := Dispatch(context.Background(), items, 2, func(_ context.Context, n int) (int, error) {
		if n == 3 {
			return 0, boom
		}
		return n * 10, nil
	})

	require.Len(t, res, 5)
	ok, failed := 0, 0
	for i, r := range res {
		if r.OK() {
			ok++
			assert.Equal(t, items[i]*10, r.Value)
		} else {
			failed++
			assert.ErrorIs(t, r.Err, boom)
			assert.Equal(t, 2, i)
		}
	}
	assert.Equal(t, 4, ok)
	assert.Equal(t, 1, failed)
}

func TestDispatch_RecoversPanic(t *testing.T) {
	res := Dispatch(context.Background(), []string{"a", "b", "c"}, 3, func(_ context.Context, s string) (string, error) {
		if s == "b" {
			panic("kaboom")
		}
		return s + s, nil
	})

	require.Len(t, res, 3)
	assert.Equal(t, "aa", res[0].Value)
	assert.Error(t, res[1].Err)
	assert.Contains(t, res[1].Err.Error(), "kaboom")
	assert.Equal(t, "cc", res[2].Value)
}

func TestDispatch_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	items := make([]int, 10)

	Dispatch(context.Background(), items, 3, func(_ context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestDispatch_ChunksRunSequentially(t *testing.T) {
	var mu sync.Mutex
	var finished []int
	items := []int{0, 1, 2, 3}

	Dispatch(context.Background(), items, 2, func(_ context.Context, n int) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		if n >= 2 {
			// first chunk must be fully settled
			assert.ElementsMatch(t, []int{0, 1}, finished[:2])
		}
		finished = append(finished, n)
		return n, nil
	})

	assert.Len(t, finished, 4)
}

func TestDispatch_InvalidSizeFloorsToOne(t *testing.T) {
	var calls int32
	res := Dispatch(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, n int) (int, error) {
		atomic.AddInt32(&calls, 1)
		return n, nil
	})
	assert.Len(t, res, 3)
	assert.Equal(t, int32(3), calls)
}

func TestDispatch_Empty(t *testing.T) {
	res := Dispatch(context.Background(), nil, 5, func(_ context.Context, n int) (int, error) {
		t.Fatal("action must not run")
		return 0, nil
	})
	assert.Empty(t, res)
}
