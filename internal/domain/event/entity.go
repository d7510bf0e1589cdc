package event

import "time"

// DefaultTotalTickets はキャパシティ未指定時の座席数
const DefaultTotalTickets = 100

// Event はイベントエンティティを表す
// キャパシティ（総座席数）は作成後に変更できない
type Event struct {
	ID           string
	TotalTickets int
	CreatedAt    time.Time
}

// NewEvent は新しいイベントを作成する
// totalTicketsが0以下の場合はデフォルトのキャパシティを使用する
func NewEvent(id string, totalTickets int) *Event {
	if totalTickets <= 0 {
		totalTickets = DefaultTotalTickets
	}
	return &Event{
		ID:           id,
		TotalTickets: totalTickets,
		CreatedAt:    time.Now(),
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.ID == "" {
		return ErrEventIDRequired
	}
	if e.TotalTickets <= 0 {
		return ErrInvalidTotalTickets
	}
	return nil
}
