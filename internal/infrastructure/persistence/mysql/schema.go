package mysql

import (
	"context"
	"fmt"
)

// schemaStatements 起動時に作成するテーブル
// amount は端末に送る文字列をそのまま保持するため VARCHAR で持つ
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS payment_methods (
		id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		terminal VARCHAR(32) NOT NULL DEFAULT 'afs',
		afs_tid VARCHAR(64) NULL,
		afs_mid VARCHAR(64) NULL,
		afs_username VARCHAR(255) NULL,
		afs_full_name VARCHAR(255) NULL,
		afs_secure_key VARCHAR(255) NULL,
		afs_test_mode TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS terminal_payments (
		payment_id VARCHAR(64) NOT NULL,
		payment_method_id VARCHAR(64) NOT NULL,
		order_reference VARCHAR(255) NULL,
		amount VARCHAR(32) NOT NULL,
		currency CHAR(3) NOT NULL DEFAULT 'OMR',
		afs_transaction_id VARCHAR(64) NULL,
		status VARCHAR(16) NOT NULL,
		last_response JSON NULL,
		operator_id VARCHAR(64) NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		PRIMARY KEY (payment_id),
		KEY idx_terminal_payments_afs_transaction_id (afs_transaction_id),
		KEY idx_terminal_payments_payment_method_id (payment_method_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema 必要なテーブルが無ければ作成する
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
