package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound      = errors.New("座席が見つかりません")
	ErrSeatAlreadyBooked = errors.New("座席は既に予約されています")
	ErrNotEnoughSeats    = errors.New("空席が不足しています")
)
