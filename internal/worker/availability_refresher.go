package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nivi1412/ticketing-platform/internal/pkg/logger"
)

// AvailabilityRefresher は空席数キャッシュを再計算するインターフェース
type AvailabilityRefresher interface {
	RefreshAvailability(ctx context.Context, limit int) (int, error)
}

// 1回の再計算で対象にするイベント数の上限
const refreshEventLimit = 100

// AvailabilityCacheRefresher は空席数キャッシュを定期更新するワーカー
// キャッシュはあくまで参考値なので、更新失敗は予約処理に影響しない
type AvailabilityCacheRefresher struct {
	eventService AvailabilityRefresher
	interval     time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// NewAvailabilityCacheRefresher は新しいリフレッシャーを作成
func NewAvailabilityCacheRefresher(es AvailabilityRefresher, interval time.Duration) *AvailabilityCacheRefresher {
	return &AvailabilityCacheRefresher{
		eventService: es,
		interval:     interval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start はリフレッシャーを開始
func (r *AvailabilityCacheRefresher) Start(ctx context.Context) {
	logger.Info("空席数キャッシュリフレッシャー開始",
		zap.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("空席数キャッシュリフレッシャー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("空席数キャッシュリフレッシャー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はリフレッシャーを停止
func (r *AvailabilityCacheRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// refresh は空席数を再計算してキャッシュへ書き込む
func (r *AvailabilityCacheRefresher) refresh(ctx context.Context) {
	log := logger.Get()
	log.Debug("空席数キャッシュの更新開始")

	count, err := r.eventService.RefreshAvailability(ctx, refreshEventLimit)
	if err != nil {
		log.Error("空席数キャッシュの更新失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Debug("空席数キャッシュを更新", zap.Int("events", count))
	}
}
