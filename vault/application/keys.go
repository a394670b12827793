package application

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dfryer1193/imagevault/vault/domain"
	"github.com/disintegration/imaging"
)

const (
	// normalizedEdge is the fixed square edge the pixel content is reduced to
	// before hashing. Hashing the normalized representation (rather than the
	// original encoded bytes) means perceptually-identical uploads in
	// different encodings or resolutions de-duplicate to the same record.
	normalizedEdge = 64

	// tokenSalt is the fixed system-wide constant mixed into the lookup
	// token. The token is a content-derived bearer credential, not a cipher
	// key; it provides obscurity, not confidentiality.
	tokenSalt = "imagevault-lookup-v1"
)

// DeriveKey computes the content hash and lookup token for an image.
// The hash is SHA-256 over the canonical NRGBA pixel buffer of the image
// resized to a fixed normalizedEdge square; the token is SHA-256 over the
// hash's hex string concatenated with the salt. Both are pure functions of
// pixel content: the same image always yields the same pair.
func DeriveKey(img *domain.Image) (contentHash string, lookupToken string) {
	normalized := imaging.Resize(img.Decoded(), normalizedEdge, normalizedEdge, imaging.Lanczos)

	hashSum := sha256.Sum256(normalized.Pix)
	contentHash = hex.EncodeToString(hashSum[:])

	tokenSum := sha256.Sum256([]byte(contentHash + tokenSalt))
	lookupToken = hex.EncodeToString(tokenSum[:])

	return contentHash, lookupToken
}
