package domain

import "errors"

// Error kinds for the vault core. Callers match these with errors.Is; every
// failure path returns one of them wrapped with context rather than panicking.
var (
	// ErrDecode indicates the submitted bytes are not a valid image.
	ErrDecode = errors.New("image could not be decoded")

	// ErrInvalidTargetSize indicates a target edge outside the supported
	// [MinTargetEdge, MaxTargetEdge] range. The boundary is enforced, never
	// clamped, so the size-to-format tier mapping stays unambiguous.
	ErrInvalidTargetSize = errors.New("target edge outside supported range")

	// ErrUnsupportedImageType indicates a value passed across the image
	// boundary that is neither raw encoded bytes nor a decoded image.
	ErrUnsupportedImageType = errors.New("unsupported image type")

	// ErrStoreWrite indicates a persistence failure (disk, constraint, I/O).
	ErrStoreWrite = errors.New("vault store write failed")

	// ErrStoreRead indicates a lookup failure caused by the underlying
	// storage engine, distinct from a legitimate miss.
	ErrStoreRead = errors.New("vault store read failed")

	// ErrAuthenticationDenied is the uniform denial for a token that does not
	// match any record. Malformed and never-issued tokens are deliberately
	// indistinguishable to the caller.
	ErrAuthenticationDenied = errors.New("authentication denied")
)
