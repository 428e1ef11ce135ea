package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rsnlabs/docbase/internal/core/domain"
)

func (s *MetadataStore) SaveOrUpdate(ctx context.Context, kind domain.EntityKind, op domain.MetaOp, records []domain.Record) (*domain.Record, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "metadata save", errors.New("no records"))
	}

	switch op {
	case domain.OpUpsert:
		return s.upsert(ctx, kind, records[0])
	case domain.OpCreateMany:
		return s.createMany(ctx, kind, records)
	default:
		return nil, domain.WrapError(domain.ErrConfig, "metadata save", fmt.Errorf("unsupported operation %q", string(op)))
	}
}

func (s *MetadataStore) upsert(ctx context.Context, kind domain.EntityKind, record domain.Record) (*domain.Record, error) {
	switch kind {
	case domain.KindDocument:
		if record.Document == nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "metadata save", errors.New("record carries no document"))
		}
		doc, err := s.upsertDocument(ctx, record.Document)
		if err != nil {
			return nil, err
		}
		return &domain.Record{Kind: kind, Document: doc}, nil
	case domain.KindCategory:
		if record.Category == nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "metadata save", errors.New("record carries no category"))
		}
		cat, err := s.upsertCategory(ctx, *record.Category)
		if err != nil {
			return nil, err
		}
		return &domain.Record{Kind: kind, Category: &cat}, nil
	case domain.KindTag:
		if record.Tag == nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "metadata save", errors.New("record carries no tag"))
		}
		tag, err := s.upsertTag(ctx, *record.Tag)
		if err != nil {
			return nil, err
		}
		return &domain.Record{Kind: kind, Tag: &tag}, nil
	case domain.KindUser:
		if record.User == nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "metadata save", errors.New("record carries no user"))
		}
		user, err := s.upsertUser(ctx, *record.User)
		if err != nil {
			return nil, err
		}
		return &domain.Record{Kind: kind, User: &user}, nil
	default:
		return nil, domain.WrapError(domain.ErrConfig, "metadata save", fmt.Errorf("unknown entity kind %q", string(kind)))
	}
}

// upsertDocument writes the document row and rebuilds the tag relation from
// the incoming tag list: tags with a persisted id are connected, tags without
// one are created first. The relation is rewritten entirely; no prior rows
// survive.
func (s *MetadataStore) upsertDocument(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	metaJSON, err := json.Marshal(doc.Meta)
	if err != nil {
		return nil, fmt.Errorf("marshal document meta: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin document upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
INSERT INTO documents (id, file_name, file_path, type, category_id, meta, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
ON CONFLICT (id) DO UPDATE SET
	file_name = EXCLUDED.file_name,
	file_path = EXCLUDED.file_path,
	type = EXCLUDED.type,
	category_id = EXCLUDED.category_id,
	meta = EXCLUDED.meta,
	updated_at = EXCLUDED.updated_at
`, doc.ID, doc.FileName, doc.FilePath, string(doc.Type), doc.CategoryID, metaJSON, now)
	if err != nil {
		return nil, fmt.Errorf("upsert document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id = $1`, doc.ID); err != nil {
		return nil, fmt.Errorf("clear document tags: %w", err)
	}

	reconciled := make([]domain.Tag, 0, len(doc.Tags))
	for _, tag := range doc.Tags {
		if tag.ID == 0 {
			if err := tx.QueryRowContext(ctx,
				`INSERT INTO tags (name, alias) VALUES ($1,$2) RETURNING id`,
				tag.Name, tag.Alias,
			).Scan(&tag.ID); err != nil {
				return nil, fmt.Errorf("create tag %q: %w", tag.Name, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO document_tags (document_id, tag_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			doc.ID, tag.ID,
		); err != nil {
			return nil, fmt.Errorf("connect tag %d: %w", tag.ID, err)
		}
		reconciled = append(reconciled, tag)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit document upsert tx: %w", err)
	}

	out := *doc
	out.Tags = reconciled
	out.CreatedAt = now
	out.UpdatedAt = now
	return &out, nil
}

// For non-document kinds an existing id selects update, a zero id create.
func (s *MetadataStore) upsertCategory(ctx context.Context, cat domain.Category) (domain.Category, error) {
	if cat.ID != 0 {
		if _, err := s.db.ExecContext(ctx, `UPDATE categories SET name = $2 WHERE id = $1`, cat.ID, cat.Name); err != nil {
			return domain.Category{}, fmt.Errorf("update category: %w", err)
		}
		return cat, nil
	}
	if err := s.db.QueryRowContext(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, cat.Name).Scan(&cat.ID); err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

func (s *MetadataStore) upsertTag(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	if tag.ID != 0 {
		if _, err := s.db.ExecContext(ctx, `UPDATE tags SET name = $2, alias = $3 WHERE id = $1`, tag.ID, tag.Name, tag.Alias); err != nil {
			return domain.Tag{}, fmt.Errorf("update tag: %w", err)
		}
		return tag, nil
	}
	if err := s.db.QueryRowContext(ctx, `INSERT INTO tags (name, alias) VALUES ($1,$2) RETURNING id`, tag.Name, tag.Alias).Scan(&tag.ID); err != nil {
		return domain.Tag{}, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

func (s *MetadataStore) upsertUser(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID != 0 {
		if _, err := s.db.ExecContext(ctx, `UPDATE users SET name = $2, email = $3 WHERE id = $1`, user.ID, user.Name, user.Email); err != nil {
			return domain.User{}, fmt.Errorf("update user: %w", err)
		}
		return user, nil
	}
	if err := s.db.QueryRowContext(ctx, `INSERT INTO users (name, email) VALUES ($1,$2) RETURNING id`, user.Name, user.Email).Scan(&user.ID); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *MetadataStore) createMany(ctx context.Context, kind domain.EntityKind, records []domain.Record) (*domain.Record, error) {
	var last *domain.Record
	for _, record := range records {
		saved, err := s.upsert(ctx, kind, record)
		if err != nil {
			return nil, err
		}
		last = saved
	}
	return last, nil
}
