package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rsnlabs/docbase/internal/core/domain"
)

// extractXLSX flattens every sheet into tab-separated rows. Sheet names are
// kept as section headers so chunking preserves table context.
func extractXLSX(ctx context.Context, path string) (domain.ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.ParsedDocument{}, err
	}

	book, err := excelize.OpenFile(path)
	if err != nil {
		return domain.ParsedDocument{}, domain.WrapError(
			domain.ErrUnsupportedFormat,
			"extract xlsx",
			fmt.Errorf("open workbook: %w", err),
		)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	var sb strings.Builder
	for _, sheet := range sheets {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return domain.ParsedDocument{}, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		sb.WriteString(sheet)
		sb.WriteString("\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return domain.ParsedDocument{}, domain.WrapError(
			domain.ErrInvalidInput,
			"extract xlsx",
			errors.New("workbook contains no cells"),
		)
	}

	return domain.ParsedDocument{
		Text: text,
		Meta: domain.DocumentMeta{Title: firstSheetTitle(sheets), PageCount: len(sheets)},
	}, nil
}

func firstSheetTitle(sheets []string) string {
	if len(sheets) == 0 {
		return ""
	}
	return sheets[0]
}
