package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nivi1412/ticketing-platform/internal/domain/booking"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

type bookingRow struct {
	BookingID string    `db:"booking_id"`
	EventID   string    `db:"event_id"`
	UserID    string    `db:"user_id"`
	SeatID1   int       `db:"seat_id1"`
	SeatID2   *int      `db:"seat_id2"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	seatIDs := []int{r.SeatID1}
	if r.SeatID2 != nil {
		seatIDs = append(seatIDs, *r.SeatID2)
	}
	return &booking.Booking{
		ID:        r.BookingID,
		EventID:   r.EventID,
		UserID:    r.UserID,
		SeatIDs:   seatIDs,
		CreatedAt: r.CreatedAt,
	}
}

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション型です")
	}

	var seatID2 *int
	if len(b.SeatIDs) > 1 {
		seatID2 = &b.SeatIDs[1]
	}
	query := `INSERT INTO bookings (booking_id, event_id, user_id, seat_id1, seat_id2, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := sqlxTx.ExecContext(ctx, query, b.ID, b.EventID, b.UserID, b.SeatIDs[0], seatID2, b.CreatedAt); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	query := `SELECT booking_id, event_id, user_id, seat_id1, seat_id2, created_at FROM bookings WHERE booking_id = $1`
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDForUpdate は予約行を排他ロックした上で取得する
// 同一予約への同時キャンセルはここでストアの行ロックにより直列化される
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*booking.Booking, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("無効なトランザクション型です")
	}

	query := `SELECT booking_id, event_id, user_id, seat_id1, seat_id2, created_at FROM bookings WHERE booking_id = $1 FOR UPDATE`
	var row bookingRow
	if err := sqlxTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	query := `SELECT booking_id, event_id, user_id, seat_id1, seat_id2, created_at FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *BookingRepository) Delete(ctx context.Context, tx transaction.Tx, id string) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション型です")
	}

	result, err := sqlxTx.ExecContext(ctx, `DELETE FROM bookings WHERE booking_id = $1`, id)
	if err != nil {
		return fmt.Errorf("予約削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

var _ booking.Repository = (*BookingRepository)(nil)
