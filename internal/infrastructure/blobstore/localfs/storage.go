package localfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rsnlabs/docbase/internal/core/domain"
)

// Store keeps blobs on the local filesystem at content-addressed paths:
// <base>/<hash>.<ext>. Writes go through a temp file and a rename so a reader
// never observes a partial blob at the final path.
type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if basePath == "" {
		basePath = "./data/uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) PathFor(hash string, typ domain.DocumentType) string {
	name := hash
	if ext := typ.Ext(); ext != "" {
		name = hash + "." + ext
	}
	return filepath.Join(s.basePath, name)
}

func (s *Store) Exists(hash string, typ domain.DocumentType) bool {
	info, err := os.Stat(s.PathFor(hash, typ))
	return err == nil && info.Mode().IsRegular()
}

func (s *Store) WriteStream(ctx context.Context, hash string, typ domain.DocumentType, src io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	final := s.PathFor(hash, typ)
	tmp, err := os.CreateTemp(s.basePath, "."+hash+".*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close temp blob: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("publish blob: %w", err)
	}
	return final, nil
}

func (s *Store) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Delete is best-effort: a dangling blob is a cleanup issue, not a
// correctness issue for the index. A missing file is logged and ignored.
func (s *Store) Delete(_ context.Context, path string) error {
	if path == "" {
		slog.Warn("blob delete skipped, empty path")
		return nil
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("blob delete skipped, file not found", "path", path)
			return nil
		}
		return fmt.Errorf("delete blob: %w", err)
	}
	slog.Info("blob deleted", "path", path)
	return nil
}
