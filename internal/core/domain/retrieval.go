package domain

// ScoredChunk is one similarity-search candidate, ranked by the engine.
type ScoredChunk struct {
	DocumentID string  `json:"document_id"`
	FileName   string  `json:"file_name"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// IngestStatus distinguishes a fresh ingestion from a content-hash dedup hit.
type IngestStatus string

const (
	IngestStored    IngestStatus = "stored"
	IngestDuplicate IngestStatus = "duplicate"
)

// UploadReceipt is returned to the caller after an upload attempt.
type UploadReceipt struct {
	Status   IngestStatus `json:"status"`
	FileHash string       `json:"fileHash"`
	FileName string       `json:"fileName"`
	FileSize int64        `json:"fileSize"`
	Meta     DocumentMeta `json:"meta"`

	// ChunkCount is zero on a dedup hit; nothing was re-chunked.
	ChunkCount int `json:"chunkCount"`
}

// RecordPage is a paginated listing result.
type RecordPage struct {
	List  []Record `json:"list"`
	Total int64    `json:"total"`
}
