package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// DocumentType is the document kind derived from the uploaded file extension.
type DocumentType string

const (
	TypeText     DocumentType = "txt"
	TypeMarkdown DocumentType = "md"
	TypePDF      DocumentType = "pdf"
	TypeXLSX     DocumentType = "xlsx"
	TypeCSV      DocumentType = "csv"
	TypeUnknown  DocumentType = ""
)

// TypeFromFilename maps a file name (or bare extension) to a DocumentType.
func TypeFromFilename(name string) DocumentType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		ext = strings.ToLower(strings.TrimPrefix(name, "."))
	}
	switch ext {
	case "txt", "text", "log":
		return TypeText
	case "md", "markdown":
		return TypeMarkdown
	case "pdf":
		return TypePDF
	case "xlsx", "xls":
		return TypeXLSX
	case "csv":
		return TypeCSV
	default:
		return TypeUnknown
	}
}

// Ext returns the storage extension used for blobs of this type.
func (t DocumentType) Ext() string {
	return string(t)
}

// DocumentMeta carries parser-derived fields. The pipeline persists it as-is.
type DocumentMeta struct {
	Title     string `json:"title,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
	ByteSize  int64  `json:"byte_size,omitempty"`
}

// Document is one ingested file. ID is the content hash of the file bytes and
// doubles as the dedup key.
type Document struct {
	ID         string       `json:"id"`
	FileName   string       `json:"file_name"`
	FilePath   string       `json:"file_path"`
	Type       DocumentType `json:"type"`
	CategoryID int64        `json:"category_id"`
	Tags       []Tag        `json:"tags,omitempty"`
	Meta       DocumentMeta `json:"meta"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Tag is a many-to-many label on documents. A zero ID means the tag has not
// been persisted yet.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChunkMeta is attached to every chunk before it reaches the vector index.
type ChunkMeta struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

// Chunk is a retrieval-sized slice of extracted text. Chunks are derived fresh
// on every ingestion and live only in the vector index.
type Chunk struct {
	Index int       `json:"index"`
	Text  string    `json:"text"`
	Meta  ChunkMeta `json:"meta"`
}

// ParsedDocument is the extractor output handed to the splitter.
type ParsedDocument struct {
	Text string
	Meta DocumentMeta
}
