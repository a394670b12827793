package application

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/dfryer1193/imagevault/vault/domain"
	"github.com/rs/zerolog/log"
)

// Transform is an optional learned image transform. When one is plugged in it
// replaces the plain resize step on the rendition path; the vault ships
// without one and falls back to resizing.
type Transform interface {
	Infer(img image.Image) (image.Image, error)
}

// VaultService orchestrates key derivation, adaptive compression, and
// persistence. The store handle is owned explicitly and injected at
// construction; the service itself holds no other state.
type VaultService struct {
	repo      domain.VaultRepository
	transform Transform
}

// NewVaultService creates a vault service. transform may be nil, in which
// case renditions are produced by plain resizing.
func NewVaultService(repo domain.VaultRepository, transform Transform) *VaultService {
	return &VaultService{
		repo:      repo,
		transform: transform,
	}
}

// Stats describes the size relationship between the stored lossless original
// and the compressed rendition.
type Stats struct {
	OriginalBytes   int
	CompressedBytes int
	Ratio           float64
}

func newStats(originalBytes, compressedBytes int) Stats {
	stats := Stats{
		OriginalBytes:   originalBytes,
		CompressedBytes: compressedBytes,
	}

	if compressedBytes > 0 {
		stats.Ratio = float64(originalBytes) / float64(compressedBytes)
	}

	return stats
}

// Preview is the result of the side-effect-free half of an ingest: keys are
// derived and the rendition is compressed, but nothing is persisted until the
// caller confirms via Persist.
type Preview struct {
	ContentHash string
	LookupToken string
	Name        string
	TargetEdge  int
	Format      Format
	Original    []byte
	Compressed  []byte
	Stats       Stats
}

// Preview validates and decodes the uploaded bytes, derives the content hash
// and lookup token, and compresses a rendition at targetEdge. It is pure:
// no store interaction happens and repeated calls with the same input yield
// identical keys. Boundary violations (bad bytes, out-of-range edge) are
// rejected before any hashing work.
func (s *VaultService) Preview(ctx context.Context, raw []byte, name string, targetEdge int) (*Preview, error) {
	if err := ValidateTargetEdge(targetEdge); err != nil {
		return nil, err
	}

	img, err := domain.ImageFromBytes(raw)
	if err != nil {
		return nil, err
	}

	contentHash, lookupToken := DeriveKey(img)

	rendition, err := s.rendition(img, targetEdge)
	if err != nil {
		return nil, err
	}

	compressed, format, err := Compress(rendition, targetEdge)
	if err != nil {
		return nil, err
	}

	original, err := img.EncodePNG()
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("content_hash", contentHash).
		Int("target_edge", targetEdge).
		Str("format", string(format)).
		Msg("Computed vault preview")

	return &Preview{
		ContentHash: contentHash,
		LookupToken: lookupToken,
		Name:        name,
		TargetEdge:  targetEdge,
		Format:      format,
		Original:    original,
		Compressed:  compressed,
		Stats:       newStats(len(original), len(compressed)),
	}, nil
}

// IngestResult reports the outcome of persisting a preview. On a store
// failure the preview (and its already-issued token) is still returned so
// the caller can inform the user without recomputing.
type IngestResult struct {
	Preview *Preview
	ID      int64
	Stored  bool
}

// Persist writes a confirmed preview to the vault store. Re-ingesting
// identical content replaces the prior record for that content hash.
func (s *VaultService) Persist(ctx context.Context, p *Preview) (*IngestResult, error) {
	if p == nil {
		return nil, fmt.Errorf("preview cannot be nil")
	}

	rec := &domain.VaultRecord{
		ContentHash:     p.ContentHash,
		OriginalImage:   p.Original,
		CompressedImage: p.Compressed,
		LookupToken:     p.LookupToken,
		Name:            p.Name,
		Timestamp:       time.Now().UTC(),
		CompressedSize:  p.TargetEdge,
	}

	id, err := s.repo.Put(ctx, rec)
	if err != nil {
		log.Error().Err(err).Str("content_hash", p.ContentHash).Msg("Failed to persist vault record")
		return &IngestResult{Preview: p}, err
	}

	return &IngestResult{Preview: p, ID: id, Stored: true}, nil
}

// Ingest runs the full upload path: preview then persist.
func (s *VaultService) Ingest(ctx context.Context, raw []byte, name string, targetEdge int) (*IngestResult, error) {
	p, err := s.Preview(ctx, raw, name, targetEdge)
	if err != nil {
		return nil, err
	}

	return s.Persist(ctx, p)
}

// Retrieval is the reconstructed view of a stored record: both blobs decoded
// back to images, plus statistics recomputed by re-running the compressor at
// the record's stored target edge rather than trusting a cached size.
type Retrieval struct {
	Record          *domain.VaultRecord
	Original        *domain.Image
	Compressed      *domain.Image
	Format          Format
	CompressedBytes []byte
	Stats           Stats
}

// Retrieve looks up a record by lookup token and reconstructs its images and
// statistics. A miss surfaces as the uniform ErrAuthenticationDenied; no
// distinction is made between a malformed token and one never issued.
func (s *VaultService) Retrieve(ctx context.Context, token string) (*Retrieval, error) {
	rec, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	original, err := domain.ImageFromBytes(rec.OriginalImage)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored original: %w", err)
	}

	compressed, err := domain.ImageFromBytes(rec.CompressedImage)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored compressed image: %w", err)
	}

	rendition, err := s.rendition(original, rec.CompressedSize)
	if err != nil {
		return nil, err
	}

	recompressed, format, err := Compress(rendition, rec.CompressedSize)
	if err != nil {
		return nil, err
	}

	return &Retrieval{
		Record:          rec,
		Original:        original,
		Compressed:      compressed,
		Format:          format,
		CompressedBytes: recompressed,
		Stats:           newStats(len(rec.OriginalImage), len(recompressed)),
	}, nil
}

// rendition produces the image to compress for a target edge: the plugged-in
// transform when present, plain resize otherwise.
func (s *VaultService) rendition(img *domain.Image, targetEdge int) (*domain.Image, error) {
	if s.transform == nil {
		return Resize(img, targetEdge)
	}

	inferred, err := s.transform.Infer(img.Decoded())
	if err != nil {
		return nil, fmt.Errorf("transform inference failed: %w", err)
	}

	return domain.ImageFromDecoded(inferred)
}
