package async_test

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/drover/pkg/utils/async"
)

func TestMap_PreservesOrder(t *testing.T) {
	ctx := context.Background()

	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	results, err := async.Map(ctx, items, func(ctx context.Context, n int) (string, error) {
		// Reverse the completion order to prove results are positional
		time.Sleep(time.Duration(len(items)-n) * time.Millisecond)
		return strconv.Itoa(n * 10), nil
	})

	gt.NoError(t, err)
	gt.Number(t, len(results)).Equal(len(items))
	for i := range items {
		gt.Value(t, results[i]).Equal(strconv.Itoa(i * 10))
	}
}

func TestMap_RunsConcurrently(t *testing.T) {
	ctx := context.Background()

	var running int32
	var peak int32
	items := []int{1, 2, 3, 4}

	_, err := async.Map(ctx, items, func(ctx context.Context, n int) (int, error) {
		cur := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return n, nil
	})

	gt.NoError(t, err)
	gt.Number(t, atomic.LoadInt32(&peak)).Greater(int32(1))
}

func TestMap_ReturnsFirstErrorByPosition(t *testing.T) {
	ctx := context.Background()

	boom := errors.New("boom")
	items := []int{0, 1, 2}
	_, err := async.Map(ctx, items, func(ctx context.Context, n int) (int, error) {
		if n >= 1 {
			return 0, boom
		}
		return n, nil
	})

	gt.Error(t, err)
	gt.True(t, errors.Is(err, boom))
}

func TestMap_RecoversPanic(t *testing.T) {
	ctx := context.Background()

	items := []int{0, 1}
	results, err := async.Map(ctx, items, func(ctx context.Context, n int) (int, error) {
		if n == 1 {
			panic("unexpected")
		}
		return n + 100, nil
	})

	gt.Error(t, err)
	// The non-panicking item still produced its result
	gt.Value(t, results[0]).Equal(100)
}

func TestMap_EmptyInput(t *testing.T) {
	ctx := context.Background()

	results, err := async.Map(ctx, []int{}, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})

	gt.NoError(t, err)
	gt.Number(t, len(results)).Equal(0)
}
