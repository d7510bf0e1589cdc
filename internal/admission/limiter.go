package admission

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nivi1412/ticketing-platform/internal/pkg/metrics"
)

// ErrEventBusy はイベントへの予約が集中し、受付を見送ったことを表す
// 呼び出し側は時間をおいて再試行できる
var ErrEventBusy = errors.New("アクセスが集中しています。しばらくしてから再試行してください")

// Limiter はイベント単位の入場制御を行う
// 人気イベントへの予約試行数を一定数に抑え、売り切れ間際のイベントに対して
// 成功見込みのないロック探索が集中するのを防ぐ。ストアには依存しない
type Limiter struct {
	maxConcurrent  int64
	maxWaiting     int64
	acquireTimeout time.Duration
	metrics        *metrics.Metrics

	mu     sync.Mutex
	events map[string]*eventLimiter
}

type eventLimiter struct {
	sem     *semaphore.Weighted
	waiting atomic.Int64

	// refsはl.muで保護される。0になったエントリはマップから除去され、
	// イベントIDが増え続けてもマップは現在アクティブな分しか保持しない
	refs int
}

// NewLimiter は新しいLimiterを作成する
// mはnilでもよい（メトリクスなしで動作する）
func NewLimiter(maxConcurrent, maxWaiting int, acquireTimeout time.Duration, m *metrics.Metrics) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if maxWaiting < 0 {
		maxWaiting = 0
	}
	return &Limiter{
		maxConcurrent:  int64(maxConcurrent),
		maxWaiting:     int64(maxWaiting),
		acquireTimeout: acquireTimeout,
		metrics:        m,
		events:         make(map[string]*eventLimiter),
	}
}

// Acquire はイベントの予約試行スロットを確保する
// 空きスロットがなければ上限付きキューで待機し、キューが満杯または
// 待機時間を超過した場合はErrEventBusyで即座に拒否する
// 成功時は必ず返されたrelease関数を呼ぶこと
func (l *Limiter) Acquire(ctx context.Context, eventID string) (release func(), err error) {
	el := l.acquireRef(eventID)

	// 空きがあれば待たずに確保
	if el.sem.TryAcquire(1) {
		return func() {
			el.sem.Release(1)
			l.releaseRef(eventID)
		}, nil
	}

	// CASで待機枠を確保する。確認と加算を分けると同時流入でmaxWaitingを
	// 超えて並べてしまうため、加算が成功した場合のみキューに入る
	for {
		w := el.waiting.Load()
		if w >= l.maxWaiting {
			l.rejected("queue_full")
			l.releaseRef(eventID)
			return nil, ErrEventBusy
		}
		if el.waiting.CompareAndSwap(w, w+1) {
			break
		}
	}
	if l.metrics != nil {
		l.metrics.AdmissionWaiting.Inc()
	}
	defer func() {
		el.waiting.Add(-1)
		if l.metrics != nil {
			l.metrics.AdmissionWaiting.Dec()
		}
	}()

	waitCtx, cancel := context.WithTimeout(ctx, l.acquireTimeout)
	defer cancel()

	if err := el.sem.Acquire(waitCtx, 1); err != nil {
		l.releaseRef(eventID)
		// 呼び出し元のキャンセルはそのまま伝える
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.rejected("timeout")
		return nil, ErrEventBusy
	}
	return func() {
		el.sem.Release(1)
		l.releaseRef(eventID)
	}, nil
}

// Waiting はイベントの現在の待機数を返す
func (l *Limiter) Waiting(eventID string) int64 {
	l.mu.Lock()
	el, ok := l.events[eventID]
	l.mu.Unlock()
	if !ok {
		return 0
	}
	return el.waiting.Load()
}

// TrackedEvents は現在エントリを保持しているイベント数を返す
func (l *Limiter) TrackedEvents() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func (l *Limiter) acquireRef(eventID string) *eventLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	el, ok := l.events[eventID]
	if !ok {
		el = &eventLimiter{sem: semaphore.NewWeighted(l.maxConcurrent)}
		l.events[eventID] = el
	}
	el.refs++
	return el
}

func (l *Limiter) releaseRef(eventID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	el, ok := l.events[eventID]
	if !ok {
		return
	}
	el.refs--
	if el.refs <= 0 {
		delete(l.events, eventID)
	}
}

func (l *Limiter) rejected(reason string) {
	if l.metrics != nil {
		l.metrics.AdmissionRejectedTotal.WithLabelValues(reason).Inc()
	}
}
