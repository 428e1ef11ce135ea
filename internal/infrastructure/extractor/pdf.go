package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/rsnlabs/docbase/internal/core/domain"
)

func extractPDF(ctx context.Context, path string) (domain.ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.ParsedDocument{}, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return domain.ParsedDocument{}, domain.WrapError(
			domain.ErrUnsupportedFormat,
			"extract pdf",
			fmt.Errorf("open pdf: %w", err),
		)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return domain.ParsedDocument{}, domain.WrapError(
			domain.ErrUnsupportedFormat,
			"extract pdf",
			fmt.Errorf("extract plain text: %w", err),
		)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("read pdf text: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return domain.ParsedDocument{}, domain.WrapError(
			domain.ErrInvalidInput,
			"extract pdf",
			errors.New("pdf contains no extractable text"),
		)
	}

	return domain.ParsedDocument{
		Text: text,
		Meta: domain.DocumentMeta{PageCount: reader.NumPage()},
	}, nil
}
