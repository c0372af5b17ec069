package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS dna_analyses (
  id           VARCHAR(36)  NOT NULL PRIMARY KEY,
  owner_id     VARCHAR(64)  NOT NULL,
  kind         VARCHAR(16)  NOT NULL,
  status       VARCHAR(16)  NOT NULL,
  sample_count INT          NOT NULL DEFAULT 0,
  species      VARCHAR(128) NOT NULL DEFAULT '-',
  result_text  MEDIUMTEXT   NOT NULL,
  error_text   TEXT         NOT NULL,
  report_url   TEXT         NOT NULL,
  created_at   DATETIME(3)  NOT NULL,
  INDEX idx_dna_analyses_owner (owner_id, created_at)
) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS session_entries (
  namespace  VARCHAR(64)  NOT NULL,
  entry_key  VARCHAR(64)  NOT NULL,
  value      MEDIUMBLOB   NOT NULL,
  updated_at DATETIME(3)  NOT NULL,
  PRIMARY KEY (namespace, entry_key)
) CHARACTER SET utf8mb4`,
}

// EnsureSchema creates the tables used by the repositories if missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
