package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBooking(t *testing.T) {
	b := NewBooking("booking-123", "event-456", "user-789", []int{1, 2})

	assert.Equal(t, "booking-123", b.ID)
	assert.Equal(t, "event-456", b.EventID)
	assert.Equal(t, "user-789", b.UserID)
	assert.Equal(t, []int{1, 2}, b.SeatIDs)
	assert.Equal(t, 2, b.SeatCount())
	assert.False(t, b.CreatedAt.IsZero())
}

func TestBooking_Validate(t *testing.T) {
	tests := []struct {
		name    string
		booking *Booking
		wantErr error
	}{
		{"1席の予約", NewBooking("b-1", "event-1", "user-1", []int{1}), nil},
		{"2席の予約", NewBooking("b-1", "event-1", "user-1", []int{1, 2}), nil},
		{"イベントID未設定", NewBooking("b-1", "", "user-1", []int{1}), ErrEventIDRequired},
		{"ユーザーID未設定", NewBooking("b-1", "event-1", "", []int{1}), ErrUserIDRequired},
		{"座席なし", NewBooking("b-1", "event-1", "user-1", nil), ErrSeatCountRequired},
		{"3席は上限超過", NewBooking("b-1", "event-1", "user-1", []int{1, 2, 3}), ErrSeatLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.booking.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSeatCount(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		wantErr error
	}{
		{"1席", 1, nil},
		{"2席", 2, nil},
		{"0席", 0, ErrSeatCountRequired},
		{"負の席数", -1, ErrSeatCountRequired},
		{"3席は上限超過", 3, ErrSeatLimitExceeded},
		{"大きすぎる席数", 100, ErrSeatLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeatCount(tt.count)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
