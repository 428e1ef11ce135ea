package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/rsnlabs/docbase/internal/core/domain"
)

func (s *MetadataStore) Find(ctx context.Context, kind domain.EntityKind, op domain.MetaOp, q domain.FindQuery) (*domain.FindResult, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}

	switch op {
	case domain.OpFindFirst, domain.OpFindUnique:
		record, err := s.findOne(ctx, kind, op, q.ID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, nil
		}
		return &domain.FindResult{Record: record, Total: 1}, nil
	case domain.OpFindMany:
		return s.findMany(ctx, kind, q.Paging.Normalize())
	default:
		return nil, domain.WrapError(domain.ErrConfig, "metadata find", fmt.Errorf("unsupported operation %q", string(op)))
	}
}

// findMany counts first and short-circuits on an empty table so listings do
// not issue a pointless page query.
func (s *MetadataStore) findMany(ctx context.Context, kind domain.EntityKind, paging domain.Paging) (*domain.FindResult, error) {
	total, err := s.Count(ctx, kind)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		slog.Warn("no data in table", "kind", string(kind))
		return nil, nil
	}

	take := paging.PageSize
	skip := paging.PageNum

	var list []domain.Record
	switch kind {
	case domain.KindCategory:
		list, err = s.listCategories(ctx, take, skip)
	case domain.KindTag:
		list, err = s.listTags(ctx, take, skip)
	case domain.KindDocument:
		list, err = s.listDocuments(ctx, take, skip)
	case domain.KindUser:
		list, err = s.listUsers(ctx, take, skip)
	default:
		return nil, domain.WrapError(domain.ErrConfig, "metadata find", fmt.Errorf("unknown entity kind %q", string(kind)))
	}
	if err != nil {
		return nil, err
	}

	return &domain.FindResult{List: list, Total: total}, nil
}

func (s *MetadataStore) findOne(ctx context.Context, kind domain.EntityKind, op domain.MetaOp, id string) (*domain.Record, error) {
	if op == domain.OpFindUnique && id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "metadata find", errors.New("findUnique requires an id"))
	}

	switch kind {
	case domain.KindDocument:
		return s.findDocument(ctx, id)
	case domain.KindCategory:
		return s.findCategory(ctx, id)
	case domain.KindTag:
		return s.findTag(ctx, id)
	case domain.KindUser:
		return s.findUser(ctx, id)
	default:
		return nil, domain.WrapError(domain.ErrConfig, "metadata find", fmt.Errorf("unknown entity kind %q", string(kind)))
	}
}

func (s *MetadataStore) findDocument(ctx context.Context, id string) (*domain.Record, error) {
	query := `
SELECT id, file_name, file_path, type, category_id, meta, created_at, updated_at
FROM documents`
	args := []any{}
	if id != "" {
		query += ` WHERE id = $1`
		args = append(args, id)
	} else {
		query += ` ORDER BY created_at DESC LIMIT 1`
	}

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	tags, err := s.tagsForDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Tags = tags

	return &domain.Record{Kind: domain.KindDocument, Document: doc}, nil
}

func (s *MetadataStore) tagsForDocument(ctx context.Context, docID string) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT t.id, t.name, t.alias
FROM tags t
JOIN document_tags dt ON dt.tag_id = t.id
WHERE dt.document_id = $1
ORDER BY t.id`, docID)
	if err != nil {
		return nil, fmt.Errorf("query document tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Alias); err != nil {
			return nil, fmt.Errorf("scan document tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *MetadataStore) findCategory(ctx context.Context, id string) (*domain.Record, error) {
	query := `SELECT id, name FROM categories`
	args, err := numericIDArgs(id, &query)
	if err != nil {
		return nil, err
	}

	var cat domain.Category
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&cat.ID, &cat.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &domain.Record{Kind: domain.KindCategory, Category: &cat}, nil
}

func (s *MetadataStore) findTag(ctx context.Context, id string) (*domain.Record, error) {
	query := `SELECT id, name, alias FROM tags`
	args, err := numericIDArgs(id, &query)
	if err != nil {
		return nil, err
	}

	var tag domain.Tag
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&tag.ID, &tag.Name, &tag.Alias)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan tag: %w", err)
	}
	return &domain.Record{Kind: domain.KindTag, Tag: &tag}, nil
}

func (s *MetadataStore) findUser(ctx context.Context, id string) (*domain.Record, error) {
	query := `SELECT id, name, email FROM users`
	args, err := numericIDArgs(id, &query)
	if err != nil {
		return nil, err
	}

	var user domain.User
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Name, &user.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &domain.Record{Kind: domain.KindUser, User: &user}, nil
}

func numericIDArgs(id string, query *string) ([]any, error) {
	if id == "" {
		*query += ` ORDER BY id LIMIT 1`
		return nil, nil
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "metadata find", fmt.Errorf("non-numeric id %q", id))
	}
	*query += ` WHERE id = $1`
	return []any{n}, nil
}

func (s *MetadataStore) listCategories(ctx context.Context, take, skip int) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id LIMIT $1 OFFSET $2`, take, skip)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, domain.Record{Kind: domain.KindCategory, Category: &cat})
	}
	return out, rows.Err()
}

func (s *MetadataStore) listTags(ctx context.Context, take, skip int) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, alias FROM tags ORDER BY id LIMIT $1 OFFSET $2`, take, skip)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Alias); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, domain.Record{Kind: domain.KindTag, Tag: &tag})
	}
	return out, rows.Err()
}

func (s *MetadataStore) listUsers(ctx context.Context, take, skip int) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email FROM users ORDER BY id LIMIT $1 OFFSET $2`, take, skip)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, domain.Record{Kind: domain.KindUser, User: &user})
	}
	return out, rows.Err()
}

func (s *MetadataStore) listDocuments(ctx context.Context, take, skip int) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, file_name, file_path, type, category_id, meta, created_at, updated_at
FROM documents
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`, take, skip)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Record{Kind: domain.KindDocument, Document: doc})
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var typ string
	var metaRaw []byte

	err := row.Scan(
		&doc.ID, &doc.FileName, &doc.FilePath, &typ, &doc.CategoryID,
		&metaRaw, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if len(metaRaw) > 0 {
		if err := json.Unmarshal(metaRaw, &doc.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal document meta: %w", err)
		}
	}
	doc.Type = domain.DocumentType(typ)
	return &doc, nil
}
