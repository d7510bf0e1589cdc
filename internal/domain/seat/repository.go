package seat

import (
	"context"

	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

// Repository は座席台帳のインターフェース
// 座席の獲得・解放はすべてトランザクション内の排他行ロックを通して行う
type Repository interface {
	// CreateBulk は複数の座席を一括作成する（イベント作成時のみ）
	// イベント行のINSERTと同一トランザクションで実行すること
	CreateBulk(ctx context.Context, tx transaction.Tx, seats []*Seat) error

	// LockAvailable は空席を最大count件、行ロックを取得した上で返す
	// 他トランザクションがロック中の行は待たずにスキップする（FOR UPDATE SKIP LOCKED）
	// ロックできた座席がcount件に満たない場合もエラーにせず、取得できた分を返す
	LockAvailable(ctx context.Context, tx transaction.Tx, eventID string, count int) ([]int, error)

	// MarkBooked はロック済みの座席を予約済みにし、所有予約を紐付ける
	// 対象行が既に予約済みだった場合はErrSeatAlreadyBookedを返す
	MarkBooked(ctx context.Context, tx transaction.Tx, eventID string, seatIDs []int, bookingID string) error

	// Release は座席を解放し、所有予約への参照を外す
	Release(ctx context.Context, tx transaction.Tx, eventID string, seatIDs []int) error

	// GetByEventID はイベントの座席一覧を取得する
	GetByEventID(ctx context.Context, eventID string) ([]*Seat, error)

	// CountAvailable はイベントの空席数を取得する
	CountAvailable(ctx context.Context, eventID string) (int, error)
}
