package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nivi1412/ticketing-platform/internal/domain/seat"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

type seatRow struct {
	SeatID    int     `db:"seat_id"`
	EventID   string  `db:"event_id"`
	IsBooked  bool    `db:"is_booked"`
	BookingID *string `db:"booking_id"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		SeatID:    r.SeatID,
		EventID:   r.EventID,
		IsBooked:  r.IsBooked,
		BookingID: r.BookingID,
	}
}

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

func (r *SeatRepository) CreateBulk(ctx context.Context, tx transaction.Tx, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション型です")
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	// 全バッチが同一トランザクション内なので、途中で失敗しても座席行は残らない
	const batchSize = 1000
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := r.createBulkBatch(ctx, sqlxTx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// createBulkBatch はバッチ単位でマルチバリューINSERTを実行
func (r *SeatRepository) createBulkBatch(ctx context.Context, sqlxTx *sqlx.Tx, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	query := `INSERT INTO seats (seat_id, event_id, is_booked) VALUES `
	args := make([]interface{}, 0, len(seats)*3)
	placeholders := make([]string, 0, len(seats))

	for i, s := range seats {
		base := i * 3
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, s.SeatID, s.EventID, s.IsBooked)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := sqlxTx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return nil
}

// LockAvailable は空席の行ロックをノンブロッキングで取得する
// 他トランザクションがロック中の行はFOR UPDATE SKIP LOCKEDで待たずにスキップし、
// ロックできた座席番号を昇順で返す。count件に満たなくてもエラーにしない
func (r *SeatRepository) LockAvailable(ctx context.Context, tx transaction.Tx, eventID string, count int) ([]int, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("無効なトランザクション型です")
	}

	query := `SELECT seat_id FROM seats
		WHERE event_id = $1 AND is_booked = FALSE
		ORDER BY seat_id
		LIMIT $2
		FOR UPDATE SKIP LOCKED`

	var seatIDs []int
	if err := sqlxTx.SelectContext(ctx, &seatIDs, query, eventID, count); err != nil {
		return nil, fmt.Errorf("座席ロック取得に失敗: %w", err)
	}
	return seatIDs, nil
}

// MarkBooked はロック済みの座席を予約済みにし、所有予約を紐付ける
// is_bookedとbooking_idは同一UPDATEで更新し、中間状態を観測させない
func (r *SeatRepository) MarkBooked(ctx context.Context, tx transaction.Tx, eventID string, seatIDs []int, bookingID string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション型です")
	}

	query := `UPDATE seats SET is_booked = TRUE, booking_id = $1
		WHERE event_id = $2 AND seat_id = ANY($3) AND is_booked = FALSE`
	result, err := sqlxTx.ExecContext(ctx, query, bookingID, eventID, pq.Array(seatIDs))
	if err != nil {
		return fmt.Errorf("座席予約に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if int(rows) != len(seatIDs) {
		return seat.ErrSeatAlreadyBooked
	}
	return nil
}

// Release は座席を解放し、所有予約への参照を外す
func (r *SeatRepository) Release(ctx context.Context, tx transaction.Tx, eventID string, seatIDs []int) error {
	if len(seatIDs) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション型です")
	}

	query := `UPDATE seats SET is_booked = FALSE, booking_id = NULL
		WHERE event_id = $1 AND seat_id = ANY($2)`
	if _, err := sqlxTx.ExecContext(ctx, query, eventID, pq.Array(seatIDs)); err != nil {
		return fmt.Errorf("座席解放に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) GetByEventID(ctx context.Context, eventID string) ([]*seat.Seat, error) {
	query := `SELECT seat_id, event_id, is_booked, booking_id FROM seats WHERE event_id = $1 ORDER BY seat_id`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) CountAvailable(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM seats WHERE event_id = $1 AND is_booked = FALSE`, eventID)
	return count, err
}

var _ seat.Repository = (*SeatRepository)(nil)
