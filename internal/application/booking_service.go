package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nivi1412/ticketing-platform/internal/admission"
	"github.com/nivi1412/ticketing-platform/internal/domain/booking"
	"github.com/nivi1412/ticketing-platform/internal/domain/event"
	"github.com/nivi1412/ticketing-platform/internal/domain/seat"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
	redisinfra "github.com/nivi1412/ticketing-platform/internal/infrastructure/redis"
	"github.com/nivi1412/ticketing-platform/internal/pkg/logger"
	"github.com/nivi1412/ticketing-platform/internal/pkg/metrics"
)

// BookingService は予約・キャンセルを1トランザクションの原子的な単位として調停する
// 座席の獲得はスキップロック読み取りに依存し、同一座席を狙う競合は
// 最初に行ロックを取れたトランザクションが勝つ。敗者は待たずに別の空席へ流れる
type BookingService struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	seatRepo    seat.Repository
	eventRepo   event.Repository
	limiter     *admission.Limiter
	cache       *redisinfra.AvailabilityCache
	metrics     *metrics.Metrics
}

func NewBookingService(
	txManager transaction.Manager,
	br booking.Repository,
	sr seat.Repository,
	er event.Repository,
	limiter *admission.Limiter,
	cache *redisinfra.AvailabilityCache,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		txManager:   txManager,
		bookingRepo: br,
		seatRepo:    sr,
		eventRepo:   er,
		limiter:     limiter,
		cache:       cache,
		metrics:     m,
	}
}

type ReserveInput struct {
	EventID   string
	UserID    string
	SeatCount int
}

// Reserve は指定した席数の座席を確保して予約を作成する
// 要求した席数をすべてロックできた場合のみコミットし、足りない場合は
// 取得済みのロックをロールバックで即座に解放してErrNotEnoughSeatsを返す
func (s *BookingService) Reserve(ctx context.Context, input ReserveInput) (*booking.Booking, error) {
	// 席数上限はロック取得を試みる前に弾く
	if err := booking.ValidateSeatCount(input.SeatCount); err != nil {
		s.countBooking("over_limit")
		return nil, err
	}
	if input.UserID == "" {
		return nil, booking.ErrUserIDRequired
	}

	if _, err := s.eventRepo.GetByID(ctx, input.EventID); err != nil {
		return nil, err
	}

	// イベント単位の入場制御。枠が取れない場合はここで早期拒否される
	if s.limiter != nil {
		release, err := s.limiter.Acquire(ctx, input.EventID)
		if err != nil {
			s.countBooking("rejected")
			return nil, err
		}
		defer release()
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.countBooking("error")
		return nil, err
	}
	// コミット前にどの経路で抜けてもロックを残さない
	defer tx.Rollback()

	seatIDs, err := s.seatRepo.LockAvailable(ctx, tx, input.EventID, input.SeatCount)
	if err != nil {
		s.countBooking("error")
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SeatsLockedPerAttempt.Observe(float64(len(seatIDs)))
	}
	if len(seatIDs) < input.SeatCount {
		// 部分確保では予約しない。ロールバックで取得済みロックを解放する
		s.countBooking("sold_out")
		return nil, seat.ErrNotEnoughSeats
	}

	b := booking.NewBooking(uuid.NewString(), input.EventID, input.UserID, seatIDs)
	if err := b.Validate(); err != nil {
		s.countBooking("error")
		return nil, err
	}

	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		s.countBooking("error")
		return nil, err
	}
	if err := s.seatRepo.MarkBooked(ctx, tx, input.EventID, seatIDs, b.ID); err != nil {
		s.countBooking("error")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("予約コミットに失敗", zap.String("event_id", input.EventID), zap.Error(err))
		s.countBooking("error")
		return nil, asStoreUnavailable(err)
	}

	s.invalidateCache(ctx, input.EventID)
	s.countBooking("committed")
	logger.Info("予約を作成",
		zap.String("booking_id", b.ID),
		zap.String("event_id", b.EventID),
		zap.Int("seats", b.SeatCount()),
	)
	return b, nil
}

// Cancel は予約を取り消して座席を解放する
// 予約行の排他ロックで同一予約への操作を直列化し、座席解放と予約削除を
// 同一トランザクションでコミットする。対象が存在しなければErrBookingNotFound
func (s *BookingService) Cancel(ctx context.Context, bookingID string) (*booking.Booking, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.countCancellation("error")
		return nil, err
	}
	defer tx.Rollback()

	b, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			s.countCancellation("not_found")
		} else {
			s.countCancellation("error")
		}
		return nil, err
	}

	if err := s.seatRepo.Release(ctx, tx, b.EventID, b.SeatIDs); err != nil {
		s.countCancellation("error")
		return nil, err
	}
	if err := s.bookingRepo.Delete(ctx, tx, bookingID); err != nil {
		s.countCancellation("error")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("キャンセルコミットに失敗", zap.String("booking_id", bookingID), zap.Error(err))
		s.countCancellation("error")
		return nil, asStoreUnavailable(err)
	}

	s.invalidateCache(ctx, b.EventID)
	s.countCancellation("released")
	logger.Info("予約をキャンセル",
		zap.String("booking_id", b.ID),
		zap.String("event_id", b.EventID),
		zap.Int("seats", b.SeatCount()),
	)
	return b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *BookingService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.GetByUserID(ctx, userID, limit, offset)
}

// asStoreUnavailable はコミット失敗をErrStoreUnavailableに対応付ける
// トランザクション層で変換済みの場合はそのまま返す
func asStoreUnavailable(err error) error {
	if errors.Is(err, transaction.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", transaction.ErrStoreUnavailable, err)
}

// invalidateCache は空席数キャッシュを無効化する。失敗しても予約処理は成功扱い
func (s *BookingService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("空席数キャッシュの無効化に失敗", zap.String("event_id", eventID), zap.Error(err))
	}
}

func (s *BookingService) countBooking(status string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func (s *BookingService) countCancellation(status string) {
	if s.metrics != nil {
		s.metrics.CancellationsTotal.WithLabelValues(status).Inc()
	}
}
