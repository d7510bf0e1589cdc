package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nivi1412/ticketing-platform/internal/domain/event"
	"github.com/nivi1412/ticketing-platform/internal/domain/seat"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
	redisinfra "github.com/nivi1412/ticketing-platform/internal/infrastructure/redis"
	"github.com/nivi1412/ticketing-platform/internal/pkg/logger"
)

type EventService struct {
	txManager transaction.Manager
	eventRepo event.Repository
	seatRepo  seat.Repository
	cache     *redisinfra.AvailabilityCache
	cacheTTL  time.Duration
}

func NewEventService(txManager transaction.Manager, eventRepo event.Repository, seatRepo seat.Repository, cache *redisinfra.AvailabilityCache, cacheTTL time.Duration) *EventService {
	return &EventService{txManager: txManager, eventRepo: eventRepo, seatRepo: seatRepo, cache: cache, cacheTTL: cacheTTL}
}

type CreateEventInput struct {
	TotalTickets int
}

// CreateEvent はイベントを作成し、全座席の行を一括で用意する
// イベント行と座席行は同一トランザクションでコミットされ、
// 座席作成が失敗した場合は座席ゼロのイベントが残らない
// 座席行はここで一度だけ作成され、以後は予約フラグのみが変化する
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	e := event.NewEvent(uuid.NewString(), input.TotalTickets)
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.eventRepo.Create(ctx, tx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗しました: %w", err)
	}

	seats := make([]*seat.Seat, e.TotalTickets)
	for i := range seats {
		seats[i] = seat.NewSeat(e.ID, i+1)
	}
	if err := s.seatRepo.CreateBulk(ctx, tx, seats); err != nil {
		return nil, fmt.Errorf("座席作成に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, asStoreUnavailable(err)
	}
	return e, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.eventRepo.List(ctx, limit, offset)
}

// GetAvailability はイベントの空席数を返す
// キャッシュの値は参考情報で、予約の可否判定には使わない
func (s *EventService) GetAvailability(ctx context.Context, eventID string) (int, error) {
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, eventID)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("空席数キャッシュの取得に失敗", zap.String("event_id", eventID), zap.Error(err))
		}
	}

	count, err := s.seatRepo.CountAvailable(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("空席数取得に失敗しました: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetAvailableCount(ctx, eventID, count, s.cacheTTL); err != nil {
			logger.Warn("空席数キャッシュの保存に失敗", zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return count, nil
}

// RefreshAvailability はイベントの空席数をDBから再計算してキャッシュに反映する
// バックグラウンドワーカーから定期的に呼ばれる
func (s *EventService) RefreshAvailability(ctx context.Context, limit int) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	events, err := s.eventRepo.List(ctx, limit, 0)
	if err != nil {
		return 0, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}
	refreshed := 0
	for _, e := range events {
		count, err := s.seatRepo.CountAvailable(ctx, e.ID)
		if err != nil {
			logger.Warn("空席数の再計算に失敗", zap.String("event_id", e.ID), zap.Error(err))
			continue
		}
		if err := s.cache.SetAvailableCount(ctx, e.ID, count, s.cacheTTL); err != nil {
			logger.Warn("空席数キャッシュの保存に失敗", zap.String("event_id", e.ID), zap.Error(err))
			continue
		}
		refreshed++
	}
	return refreshed, nil
}
