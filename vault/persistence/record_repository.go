package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/imagevault/shared/db"
	"github.com/dfryer1193/imagevault/vault/domain"
)

var _ domain.VaultRepository = (*SQLiteVaultRepository)(nil)

// timestampLayout is the text format records carry in the database.
const timestampLayout = "2006-01-02 15:04:05"

// SQLiteVaultRepository implements domain.VaultRepository using SQL database (SQLite)
type SQLiteVaultRepository struct {
	db *sql.DB
}

// NewVaultRepository creates a new SQLiteVaultRepository from a standard sql.DB
func NewVaultRepository(sqlDB *sql.DB) *SQLiteVaultRepository {
	return &SQLiteVaultRepository{
		db: sqlDB,
	}
}

const upsertRecordQuery = `
	INSERT INTO vault_records (content_hash, original_image, compressed_image, lookup_token, name, timestamp, compressed_size)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(content_hash) DO UPDATE SET
		original_image = excluded.original_image,
		compressed_image = excluded.compressed_image,
		lookup_token = excluded.lookup_token,
		name = excluded.name,
		timestamp = excluded.timestamp,
		compressed_size = excluded.compressed_size
`

const selectIDByHashQuery = `
	SELECT id FROM vault_records WHERE content_hash = ?
`

// Put inserts a record or replaces the existing record with the same content
// hash. The row id is preserved across a replace and returned. Any storage
// fault is reported as domain.ErrStoreWrite rather than propagated raw.
func (r *SQLiteVaultRepository) Put(ctx context.Context, rec *domain.VaultRecord) (int64, error) {
	if rec == nil {
		return 0, fmt.Errorf("%w: record cannot be nil", domain.ErrStoreWrite)
	}

	if rec.ContentHash == "" {
		return 0, fmt.Errorf("%w: content hash cannot be empty", domain.ErrStoreWrite)
	}

	if rec.LookupToken == "" {
		return 0, fmt.Errorf("%w: lookup token cannot be empty", domain.ErrStoreWrite)
	}

	timestamp := rec.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	var id int64

	// Upsert and id read happen in one transaction so a concurrent replace
	// for the same hash cannot interleave between them.
	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		_, err := executor.ExecContext(txCtx, upsertRecordQuery,
			rec.ContentHash,
			rec.OriginalImage,
			rec.CompressedImage,
			rec.LookupToken,
			rec.Name,
			timestamp.UTC().Format(timestampLayout),
			rec.CompressedSize,
		)

		if err != nil {
			return fmt.Errorf("failed to upsert vault record: %w", err)
		}

		if err := executor.QueryRowContext(txCtx, selectIDByHashQuery, rec.ContentHash).Scan(&id); err != nil {
			return fmt.Errorf("failed to read vault record id: %w", err)
		}

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}

	rec.ID = id
	return id, nil
}

const getByTokenQuery = `
	SELECT id, content_hash, original_image, compressed_image, lookup_token, name, timestamp, compressed_size
	FROM vault_records
	WHERE lookup_token = ?
`

// GetByToken retrieves a record by exact lookup token match. A miss returns
// domain.ErrAuthenticationDenied; the caller never learns whether the token
// was malformed or simply never issued.
func (r *SQLiteVaultRepository) GetByToken(ctx context.Context, token string) (*domain.VaultRecord, error) {
	if token == "" {
		return nil, domain.ErrAuthenticationDenied
	}

	var row recordRow
	err := r.db.QueryRowContext(ctx, getByTokenQuery, token).Scan(
		&row.ID,
		&row.ContentHash,
		&row.OriginalImage,
		&row.CompressedImage,
		&row.LookupToken,
		&row.Name,
		&row.Timestamp,
		&row.CompressedSize,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAuthenticationDenied
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreRead, err)
	}

	return row.toDomain(), nil
}

// recordRow is a private struct used to scan database rows
type recordRow struct {
	ID              int64  `db:"id"`
	ContentHash     string `db:"content_hash"`
	OriginalImage   []byte `db:"original_image"`
	CompressedImage []byte `db:"compressed_image"`
	LookupToken     string `db:"lookup_token"`
	Name            string `db:"name"`
	Timestamp       string `db:"timestamp"`
	CompressedSize  int    `db:"compressed_size"`
}

// toDomain converts a recordRow to a domain.VaultRecord, parsing the text timestamp
func (rr *recordRow) toDomain() *domain.VaultRecord {
	rec := &domain.VaultRecord{
		ID:              rr.ID,
		ContentHash:     rr.ContentHash,
		OriginalImage:   rr.OriginalImage,
		CompressedImage: rr.CompressedImage,
		LookupToken:     rr.LookupToken,
		Name:            rr.Name,
		CompressedSize:  rr.CompressedSize,
	}

	if ts, err := time.Parse(timestampLayout, rr.Timestamp); err == nil {
		rec.Timestamp = ts.UTC()
	}

	return rec
}
