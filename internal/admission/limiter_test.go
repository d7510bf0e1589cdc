package admission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Acquire(t *testing.T) {
	t.Run("上限内の取得は待たない", func(t *testing.T) {
		l := NewLimiter(2, 10, time.Second, nil)

		release1, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)
		release2, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)

		release1()
		release2()
	})

	t.Run("解放後にスロットを再取得できる", func(t *testing.T) {
		l := NewLimiter(1, 10, time.Second, nil)

		release, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)
		release()

		release, err = l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)
		release()
	})

	t.Run("別イベントのスロットは独立している", func(t *testing.T) {
		l := NewLimiter(1, 0, 50*time.Millisecond, nil)

		release1, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)
		defer release1()

		// event-1が満杯でもevent-2は取得できる
		release2, err := l.Acquire(context.Background(), "event-2")
		require.NoError(t, err)
		release2()
	})
}

func TestLimiter_QueueFull(t *testing.T) {
	t.Run("キュー満杯時は即座に拒否される", func(t *testing.T) {
		l := NewLimiter(1, 0, time.Second, nil)

		release, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)
		defer release()

		// maxWaiting=0 なので待機せず即時拒否
		start := time.Now()
		_, err = l.Acquire(context.Background(), "event-1")
		assert.ErrorIs(t, err, ErrEventBusy)
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})
}

func TestLimiter_Timeout(t *testing.T) {
	t.Run("待機時間超過でErrEventBusyを返す", func(t *testing.T) {
		l := NewLimiter(1, 5, 50*time.Millisecond, nil)

		release, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)
		defer release()

		_, err = l.Acquire(context.Background(), "event-1")
		assert.ErrorIs(t, err, ErrEventBusy)
	})

	t.Run("待機中に解放されれば取得できる", func(t *testing.T) {
		l := NewLimiter(1, 5, time.Second, nil)

		release, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)

		go func() {
			time.Sleep(30 * time.Millisecond)
			release()
		}()

		release2, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)
		release2()
	})
}

func TestLimiter_ContextCancel(t *testing.T) {
	t.Run("呼び出し元のキャンセルはそのまま伝播する", func(t *testing.T) {
		l := NewLimiter(1, 5, time.Second, nil)

		release, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)
		defer release()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		_, err = l.Acquire(ctx, "event-1")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLimiter_ConcurrentAcquire(t *testing.T) {
	t.Run("多数の同時取得でも上限を超えない", func(t *testing.T) {
		const maxConcurrent = 4
		l := NewLimiter(maxConcurrent, 100, time.Second, nil)

		var (
			mu      sync.Mutex
			current int
			peak    int
		)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := l.Acquire(context.Background(), "event-hot")
				if err != nil {
					return
				}
				defer release()

				mu.Lock()
				current++
				if current > peak {
					peak = current
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				current--
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.LessOrEqual(t, peak, maxConcurrent)
	})
}

func TestLimiter_Waiting(t *testing.T) {
	l := NewLimiter(1, 5, time.Second, nil)

	assert.Equal(t, int64(0), l.Waiting("event-1"))
}

func TestLimiter_WaitingBound(t *testing.T) {
	t.Run("同時流入でも待機数はmaxWaitingを超えない", func(t *testing.T) {
		const maxWaiting = 2
		l := NewLimiter(1, maxWaiting, 100*time.Millisecond, nil)

		release, err := l.Acquire(context.Background(), "event-hot")
		require.NoError(t, err)
		defer release()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// スロットは塞いだままなので全員がErrEventBusyになる
				if _, err := l.Acquire(context.Background(), "event-hot"); err == nil {
					t.Error("取得できないはずのスロットを取得した")
				}
			}()
		}

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		for {
			select {
			case <-done:
				return
			default:
				assert.LessOrEqual(t, l.Waiting("event-hot"), int64(maxWaiting))
				time.Sleep(time.Millisecond)
			}
		}
	})
}

func TestLimiter_Eviction(t *testing.T) {
	t.Run("使われなくなったイベントのエントリは破棄される", func(t *testing.T) {
		l := NewLimiter(2, 5, time.Second, nil)

		release1, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)
		release2, err := l.Acquire(context.Background(), "event-2")
		require.NoError(t, err)
		assert.Equal(t, 2, l.TrackedEvents())

		release1()
		assert.Equal(t, 1, l.TrackedEvents())
		release2()
		assert.Equal(t, 0, l.TrackedEvents())

		// 破棄後も同じイベントで再取得できる
		release3, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)
		release3()
		assert.Equal(t, 0, l.TrackedEvents())
	})

	t.Run("拒否された取得はエントリを残さない", func(t *testing.T) {
		l := NewLimiter(1, 0, time.Second, nil)

		release, err := l.Acquire(context.Background(), "event-1")
		require.NoError(t, err)

		_, err = l.Acquire(context.Background(), "event-1")
		assert.ErrorIs(t, err, ErrEventBusy)
		assert.Equal(t, 1, l.TrackedEvents())

		release()
		assert.Equal(t, 0, l.TrackedEvents())
	})
}
