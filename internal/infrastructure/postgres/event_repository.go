package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nivi1412/ticketing-platform/internal/domain/event"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

type eventRow struct {
	EventID      string    `db:"event_id"`
	TotalTickets int       `db:"total_tickets"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *eventRow) toEntity() *event.Event {
	return &event.Event{
		ID:           r.EventID,
		TotalTickets: r.TotalTickets,
		CreatedAt:    r.CreatedAt,
	}
}

type EventRepository struct{ db *sqlx.DB }

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション型です")
	}
	query := `INSERT INTO events (event_id, total_tickets, created_at) VALUES ($1, $2, $3)`
	if _, err := sqlxTx.ExecContext(ctx, query, e.ID, e.TotalTickets, e.CreatedAt); err != nil {
		return fmt.Errorf("イベント作成に失敗: %w", err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT event_id, total_tickets, created_at FROM events WHERE event_id = $1`
	var row eventRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	query := `SELECT event_id, total_tickets, created_at FROM events ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗: %w", err)
	}
	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

var _ event.Repository = (*EventRepository)(nil)
