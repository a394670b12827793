package db

import (
	"context"
	"database/sql"
)

type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB

	// Health verifies the underlying connection is usable.
	Health(ctx context.Context) error
}
