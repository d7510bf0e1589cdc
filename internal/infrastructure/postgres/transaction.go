package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

// TxWrapper は sqlx.Tx を transaction.Tx インターフェースでラップする
// スキップロック読み取りで取得した行ロックはRollback/Commitで解放される
type TxWrapper struct {
	*sqlx.Tx
}

// Commit はトランザクションをコミットする
// コネクション断などで確定できなかった場合はErrStoreUnavailableとして報告する
func (t *TxWrapper) Commit() error {
	if err := t.Tx.Commit(); err != nil {
		if err == sql.ErrTxDone {
			return err
		}
		return fmt.Errorf("%w: %v", transaction.ErrStoreUnavailable, err)
	}
	return nil
}

// Rollback はトランザクションをロールバックする
// defer経由でCommit後に呼ばれるケースがあるため、完了済みエラーは握りつぶす
func (t *TxWrapper) Rollback() error {
	if err := t.Tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}

// TxManager は sqlx.DB を使用したトランザクションマネージャー
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager は新しい TxManager を作成する
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin は新しいトランザクションを開始する
// 座席確保はREAD COMMITTEDで十分。行ロックの奪い合いはSKIP LOCKEDが解決する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transaction.ErrStoreUnavailable, err)
	}
	return &TxWrapper{Tx: tx}, nil
}

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
// リポジトリ実装で使用する
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapper, ok := tx.(*TxWrapper); ok {
		return wrapper.Tx
	}
	return nil
}

var _ transaction.Manager = (*TxManager)(nil)
