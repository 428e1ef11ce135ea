package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rsnlabs/docbase/internal/core/domain"
)

// Remove supports only deleteMany-by-id. Any other operation value is a
// configuration error, rejected before touching storage.
func (s *MetadataStore) Remove(ctx context.Context, kind domain.EntityKind, op domain.MetaOp, ids []string) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	if op != domain.OpDeleteMany {
		return false, domain.WrapError(domain.ErrConfig, "metadata remove", fmt.Errorf("unsupported operation %q", string(op)))
	}
	if len(ids) == 0 {
		return false, domain.WrapError(domain.ErrInvalidInput, "metadata remove", errors.New("no ids"))
	}

	args, err := removeArgs(kind, ids)
	if err != nil {
		return false, err
	}

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", table, strings.Join(placeholders, ","))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Document ids are content hashes, every other table keys on bigint.
func removeArgs(kind domain.EntityKind, ids []string) ([]any, error) {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		if kind == domain.KindDocument {
			args = append(args, id)
			continue
		}
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "metadata remove", fmt.Errorf("non-numeric id %q", id))
		}
		args = append(args, n)
	}
	return args, nil
}
