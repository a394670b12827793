package api

// UploadResponse is returned by the preview and ingest endpoints. The lookup
// token is the only credential the user needs to retrieve the original later.
type UploadResponse struct {
	LookupToken  string  `json:"lookup_token"`
	ContentHash  string  `json:"content_hash"`
	Name         string  `json:"name"`
	TargetEdge   int     `json:"target_edge"`
	Format       string  `json:"format"`
	OriginalKB   float64 `json:"original_kb"`
	CompressedKB float64 `json:"compressed_kb"`
	Ratio        float64 `json:"ratio"`
	Stored       bool    `json:"stored"`
	ID           int64   `json:"id,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// RecordResponse describes a stored record on retrieval.
type RecordResponse struct {
	Name         string  `json:"name"`
	Timestamp    string  `json:"timestamp"`
	TargetEdge   int     `json:"target_edge"`
	Format       string  `json:"format"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	OriginalKB   float64 `json:"original_kb"`
	CompressedKB float64 `json:"compressed_kb"`
	Ratio        float64 `json:"ratio"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
