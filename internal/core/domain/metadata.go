package domain

import "fmt"

// EntityKind selects the relational entity a metadata operation targets.
// Unknown kinds are a programmer error and fail before touching storage.
type EntityKind string

const (
	KindCategory EntityKind = "Category"
	KindTag      EntityKind = "Tag"
	KindDocument EntityKind = "Document"
	KindUser     EntityKind = "User"
)

// Validate rejects kinds that do not map to a known table.
func (k EntityKind) Validate() error {
	switch k {
	case KindCategory, KindTag, KindDocument, KindUser:
		return nil
	default:
		return WrapError(ErrConfig, "entity kind", fmt.Errorf("unknown kind %q", string(k)))
	}
}

// MetaOp names a metadata store operation. Which ops are legal for which call
// is part of the store contract, not inferred from the payload.
type MetaOp string

const (
	OpUpsert     MetaOp = "upsert"
	OpCreateMany MetaOp = "createManyAndReturn"
	OpFindFirst  MetaOp = "findFirst"
	OpFindMany   MetaOp = "findMany"
	OpFindUnique MetaOp = "findUnique"
	OpDeleteMany MetaOp = "deleteMany"
	OpCount      MetaOp = "count"
)

// Record is a tagged union over the entity kinds. Exactly the field matching
// Kind is set.
type Record struct {
	Kind     EntityKind `json:"kind"`
	Document *Document  `json:"document,omitempty"`
	Category *Category  `json:"category,omitempty"`
	Tag      *Tag       `json:"tag,omitempty"`
	User     *User      `json:"user,omitempty"`
}

// Paging is (pageSize, pageNum), applied as (take, skip).
type Paging struct {
	PageSize int
	PageNum  int
}

func (p Paging) Normalize() Paging {
	out := p
	if out.PageSize <= 0 {
		out.PageSize = 10
	}
	if out.PageNum < 0 {
		out.PageNum = 0
	}
	return out
}

// FindQuery carries either an id (findFirst/findUnique) or paging (findMany).
type FindQuery struct {
	ID     string
	Paging Paging
}

// FindResult holds a single record or a page depending on the operation.
type FindResult struct {
	Record *Record
	List   []Record
	Total  int64
}
