package booking

import "time"

// MaxSeatsPerBooking は1予約あたりの座席数上限
const MaxSeatsPerBooking = 2

// Booking は予約エンティティを表す
// 予約は成功したときのみ作成され、キャンセルで座席を解放して削除される
type Booking struct {
	ID        string
	EventID   string
	UserID    string
	SeatIDs   []int
	CreatedAt time.Time
}

// NewBooking は新しい予約を作成する
func NewBooking(id, eventID, userID string, seatIDs []int) *Booking {
	return &Booking{
		ID:        id,
		EventID:   eventID,
		UserID:    userID,
		SeatIDs:   seatIDs,
		CreatedAt: time.Now(),
	}
}

// SeatCount は予約している座席数を返す
func (b *Booking) SeatCount() int {
	return len(b.SeatIDs)
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.EventID == "" {
		return ErrEventIDRequired
	}
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if len(b.SeatIDs) == 0 {
		return ErrSeatCountRequired
	}
	if len(b.SeatIDs) > MaxSeatsPerBooking {
		return ErrSeatLimitExceeded
	}
	return nil
}

// ValidateSeatCount は予約リクエストの座席数を検証する
// 上限超過はロック取得を試みる前に拒否する
func ValidateSeatCount(count int) error {
	if count <= 0 {
		return ErrSeatCountRequired
	}
	if count > MaxSeatsPerBooking {
		return ErrSeatLimitExceeded
	}
	return nil
}
