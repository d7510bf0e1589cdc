package transaction

import (
	"context"
	"errors"
)

// ErrStoreUnavailable はトランザクションの開始・コミットができない状態を表す
// 呼び出し側はリトライ可能。部分的な座席変更が残らないことは保証される
var ErrStoreUnavailable = errors.New("データストアを利用できません")

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	Rollback() error
}

// Manager はトランザクションを管理するインターフェース
type Manager interface {
	// Begin は新しいトランザクションを開始する
	Begin(ctx context.Context) (Tx, error)
}
