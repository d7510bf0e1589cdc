package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nivi1412/ticketing-platform/internal/domain/booking"
	"github.com/nivi1412/ticketing-platform/internal/domain/event"
)

func TestHealthHandler_Check(t *testing.T) {
	// Setup
	e := NewTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler(nil)

	// Act
	err := h.Check(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"timestamp"`)
}

// pingerFunc はPingerのテスト用実装
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantBody   string
	}{
		{
			name:       "DB疎通OKなら200を返す",
			db:         pingerFunc(func(ctx context.Context) error { return nil }),
			wantStatus: http.StatusOK,
			wantBody:   `"status":"ok"`,
		},
		{
			name:       "DB疎通NGなら503を返す",
			db:         pingerFunc(func(ctx context.Context) error { return assert.AnError }),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"status":"unavailable"`,
		},
		{
			name:       "DB未設定なら200を返す",
			db:         nil,
			wantStatus: http.StatusOK,
			wantBody:   `"status":"ok"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewTestEcho()
			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := NewHealthHandler(tt.db)

			err := h.Ready(c)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestNewHealthHandler(t *testing.T) {
	h := NewHealthHandler(nil)
	assert.NotNil(t, h)
}

func TestToEventResponse(t *testing.T) {
	now := time.Now()
	e := &event.Event{
		ID:           "event-123",
		TotalTickets: 100,
		CreatedAt:    now,
	}
	available := 42

	resp := toEventResponse(e, &available)

	assert.Equal(t, e.ID, resp.EventID)
	assert.Equal(t, e.TotalTickets, resp.TotalTickets)
	assert.Equal(t, &available, resp.AvailableSeats)
	assert.Equal(t, now, resp.CreatedAt)
}

func TestToBookingResponse(t *testing.T) {
	now := time.Now()
	b := &booking.Booking{
		ID:        "booking-123",
		EventID:   "event-456",
		UserID:    "user-789",
		SeatIDs:   []int{1, 2},
		CreatedAt: now,
	}

	resp := toBookingResponse(b)

	assert.Equal(t, b.ID, resp.BookingID)
	assert.Equal(t, b.EventID, resp.EventID)
	assert.Equal(t, b.UserID, resp.UserID)
	assert.Equal(t, b.SeatIDs, resp.SeatIDs)
	assert.Equal(t, b.CreatedAt, resp.CreatedAt)
}
