package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound   = errors.New("予約が見つかりません")
	ErrSeatLimitExceeded = errors.New("1回の予約で確保できる座席は2席までです")
	ErrSeatCountRequired = errors.New("座席数は1以上である必要があります")
	ErrEventIDRequired   = errors.New("イベントIDは必須です")
	ErrUserIDRequired    = errors.New("ユーザーIDは必須です")
)
