package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nivi1412/ticketing-platform/internal/domain/event"
	"github.com/nivi1412/ticketing-platform/internal/domain/seat"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("イベント作成時に全座席が一括で用意される", func(t *testing.T) {
		txm := new(MockTxManager)
		er := new(MockEventRepository)
		sr := new(MockSeatRepository)
		tx := new(MockTx)

		txm.On("Begin", mock.Anything).Return(tx, nil)
		er.On("Create", mock.Anything, tx, mock.AnythingOfType("*event.Event")).Return(nil)
		sr.On("CreateBulk", mock.Anything, tx, mock.MatchedBy(func(seats []*seat.Seat) bool {
			if len(seats) != 5 {
				return false
			}
			// 座席番号は1始まりの連番
			for i, s := range seats {
				if s.SeatID != i+1 || s.IsBooked {
					return false
				}
			}
			return true
		})).Return(nil)
		tx.On("Commit").Return(nil)
		tx.On("Rollback").Return(nil)

		svc := NewEventService(txm, er, sr, nil, 0)
		e, err := svc.CreateEvent(ctx, CreateEventInput{TotalTickets: 5})

		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, 5, e.TotalTickets)
		tx.AssertCalled(t, "Commit")
		sr.AssertExpectations(t)
	})

	t.Run("席数未指定時はデフォルトの総席数になる", func(t *testing.T) {
		txm := new(MockTxManager)
		er := new(MockEventRepository)
		sr := new(MockSeatRepository)
		tx := new(MockTx)

		txm.On("Begin", mock.Anything).Return(tx, nil)
		er.On("Create", mock.Anything, tx, mock.AnythingOfType("*event.Event")).Return(nil)
		sr.On("CreateBulk", mock.Anything, tx, mock.MatchedBy(func(seats []*seat.Seat) bool {
			return len(seats) == event.DefaultTotalTickets
		})).Return(nil)
		tx.On("Commit").Return(nil)
		tx.On("Rollback").Return(nil)

		svc := NewEventService(txm, er, sr, nil, 0)
		e, err := svc.CreateEvent(ctx, CreateEventInput{})

		require.NoError(t, err)
		assert.Equal(t, event.DefaultTotalTickets, e.TotalTickets)
	})

	t.Run("イベント作成に失敗したら座席は作らずコミットしない", func(t *testing.T) {
		txm := new(MockTxManager)
		er := new(MockEventRepository)
		sr := new(MockSeatRepository)
		tx := new(MockTx)

		txm.On("Begin", mock.Anything).Return(tx, nil)
		er.On("Create", mock.Anything, tx, mock.AnythingOfType("*event.Event")).Return(errors.New("db error"))
		tx.On("Rollback").Return(nil)

		svc := NewEventService(txm, er, sr, nil, 0)
		_, err := svc.CreateEvent(ctx, CreateEventInput{TotalTickets: 5})

		require.Error(t, err)
		sr.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
		tx.AssertNotCalled(t, "Commit")
		tx.AssertCalled(t, "Rollback")
	})

	t.Run("座席作成に失敗したらロールバックしイベント行も残らない", func(t *testing.T) {
		txm := new(MockTxManager)
		er := new(MockEventRepository)
		sr := new(MockSeatRepository)
		tx := new(MockTx)

		txm.On("Begin", mock.Anything).Return(tx, nil)
		er.On("Create", mock.Anything, tx, mock.AnythingOfType("*event.Event")).Return(nil)
		sr.On("CreateBulk", mock.Anything, tx, mock.Anything).Return(errors.New("db error"))
		tx.On("Rollback").Return(nil)

		svc := NewEventService(txm, er, sr, nil, 0)
		_, err := svc.CreateEvent(ctx, CreateEventInput{TotalTickets: 5})

		require.Error(t, err)
		tx.AssertNotCalled(t, "Commit")
		tx.AssertCalled(t, "Rollback")
	})

	t.Run("コミット失敗はStoreUnavailableとして返す", func(t *testing.T) {
		txm := new(MockTxManager)
		er := new(MockEventRepository)
		sr := new(MockSeatRepository)
		tx := new(MockTx)

		txm.On("Begin", mock.Anything).Return(tx, nil)
		er.On("Create", mock.Anything, tx, mock.AnythingOfType("*event.Event")).Return(nil)
		sr.On("CreateBulk", mock.Anything, tx, mock.Anything).Return(nil)
		tx.On("Commit").Return(errors.New("connection reset"))
		tx.On("Rollback").Return(nil)

		svc := NewEventService(txm, er, sr, nil, 0)
		_, err := svc.CreateEvent(ctx, CreateEventInput{TotalTickets: 5})

		require.Error(t, err)
		assert.ErrorIs(t, err, transaction.ErrStoreUnavailable)
	})
}

func TestEventService_ListEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("limitの範囲が正規化される", func(t *testing.T) {
		er := new(MockEventRepository)
		er.On("List", mock.Anything, 100, 0).Return([]*event.Event{}, nil)

		svc := NewEventService(new(MockTxManager), er, new(MockSeatRepository), nil, 0)
		_, err := svc.ListEvents(ctx, 500, -3)

		require.NoError(t, err)
		er.AssertExpectations(t)
	})
}

func TestEventService_GetAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("キャッシュ未使用時はDBから空席数を数える", func(t *testing.T) {
		sr := new(MockSeatRepository)
		sr.On("CountAvailable", mock.Anything, "event-1").Return(42, nil)

		svc := NewEventService(new(MockTxManager), new(MockEventRepository), sr, nil, 0)
		count, err := svc.GetAvailability(ctx, "event-1")

		require.NoError(t, err)
		assert.Equal(t, 42, count)
	})
}
