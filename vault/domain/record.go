package domain

import (
	"context"
	"time"
)

// VaultRecord is the persisted unit for one distinct image content.
// ContentHash is the de-duplication key: re-ingesting identical content
// replaces the prior record rather than appending a new one. CompressedSize
// is the target edge length (pixels) used at ingest time, kept so retrieval
// can reproduce the same compression tier deterministically.
type VaultRecord struct {
	ID              int64
	ContentHash     string
	OriginalImage   []byte
	CompressedImage []byte
	LookupToken     string
	Name            string
	Timestamp       time.Time
	CompressedSize  int
}

type VaultRepository interface {
	// Put inserts a record or, when a record with the same ContentHash
	// already exists, replaces it in place. Returns the row id.
	Put(ctx context.Context, rec *VaultRecord) (int64, error)

	// GetByToken retrieves a record by exact lookup token match. A miss
	// returns ErrAuthenticationDenied; storage faults return ErrStoreRead.
	GetByToken(ctx context.Context, token string) (*VaultRecord, error)
}
