package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound       = errors.New("イベントが見つかりません")
	ErrEventIDRequired     = errors.New("イベントIDは必須です")
	ErrInvalidTotalTickets = errors.New("総座席数は1以上である必要があります")
)
