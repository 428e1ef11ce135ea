package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rsnlabs/docbase/internal/core/domain"
)

func (r *Registry) extractPlaintext(ctx context.Context, path string, markdown bool) (domain.ParsedDocument, error) {
	reader, err := r.blobs.Open(ctx, path)
	if err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("open source blob: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("read source blob: %w", err)
	}

	if !utf8.Valid(raw) {
		return domain.ParsedDocument{}, domain.WrapError(
			domain.ErrUnsupportedFormat,
			"extract plaintext",
			errors.New("content is not valid utf-8"),
		)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return domain.ParsedDocument{}, domain.WrapError(
			domain.ErrInvalidInput,
			"extract plaintext",
			errors.New("empty document"),
		)
	}

	parsed := domain.ParsedDocument{
		Text: text,
		Meta: domain.DocumentMeta{ByteSize: int64(len(raw))},
	}
	if markdown {
		parsed.Meta.Title = markdownTitle(text)
	}
	return parsed, nil
}

// markdownTitle picks the first ATX heading, if any.
func markdownTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return ""
}
