package seat

// Seat は座席エンティティを表す
// (SeatID, EventID) の組で一意。予約済みの場合はBookingIDに所有予約を持つ
type Seat struct {
	SeatID    int
	EventID   string
	IsBooked  bool
	BookingID *string
}

// NewSeat は空席状態の新しい座席を作成する
func NewSeat(eventID string, seatID int) *Seat {
	return &Seat{
		SeatID:  seatID,
		EventID: eventID,
	}
}

// IsAvailable は座席が予約可能かを返す
func (s *Seat) IsAvailable() bool {
	return !s.IsBooked
}

// Book は座席を予約済み状態にする
// IsBookedフラグと所有予約への参照は常に同時に更新する
func (s *Seat) Book(bookingID string) error {
	if s.IsBooked {
		return ErrSeatAlreadyBooked
	}
	s.IsBooked = true
	s.BookingID = &bookingID
	return nil
}

// Release は座席を解放して空席に戻す
func (s *Seat) Release() {
	s.IsBooked = false
	s.BookingID = nil
}
