package excel

import (
	"fmt"
	"unicode/utf8"

	"sheetlog/internal/dataset"

	"github.com/xuri/excelize/v2"
)

const (
	widthPadding  = 6
	maxExcelWidth = 255
)

// numberFormat returns the format code applied to columns of the given kind,
// or "" when the column keeps the default format.
func (o AppendOptions) numberFormat(kind dataset.Kind) string {
	switch kind {
	case dataset.KindInt:
		return o.IntFormat
	case dataset.KindFloat:
		return o.FloatFormat
	case dataset.KindDate:
		return o.DateFormat
	case dataset.KindDateTime:
		return o.DateTimeFormat
	}
	return ""
}

// columnWidth is the longest rendered value or column name plus padding,
// clipped by maxWidth when positive.
func columnWidth(col dataset.Column, maxWidth int) float64 {
	longest := utf8.RuneCountInString(col.Name)
	for _, v := range col.Values {
		if n := utf8.RuneCountInString(dataset.Stringify(col.Kind, v)); n > longest {
			longest = n
		}
	}

	width := longest + widthPadding
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
	}
	if width > maxExcelWidth {
		width = maxExcelWidth
	}
	return float64(width)
}

// formatColumns sizes every dataset column and applies the number format of
// its kind to the data cells written from firstRow on.
func formatColumns(f *excelize.File, sheet string, ds *dataset.Dataset, firstRow int, opts AppendOptions) error {
	styles := make(map[string]int)

	for j, col := range ds.Columns() {
		colName, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return fmt.Errorf("failed to name column %d: %w", j+1, err)
		}

		if err := f.SetColWidth(sheet, colName, colName, columnWidth(col, opts.MaxColWidth)); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", colName, err)
		}

		numFmt := opts.numberFormat(col.Kind)
		if numFmt == "" || ds.Len() == 0 {
			continue
		}

		styleID, ok := styles[numFmt]
		if !ok {
			code := numFmt
			styleID, err = f.NewStyle(&excelize.Style{CustomNumFmt: &code})
			if err != nil {
				return fmt.Errorf("failed to create number format style %q: %w", numFmt, err)
			}
			styles[numFmt] = styleID
		}

		top := fmt.Sprintf("%s%d", colName, firstRow)
		bottom := fmt.Sprintf("%s%d", colName, firstRow+ds.Len()-1)
		if err := f.SetCellStyle(sheet, top, bottom, styleID); err != nil {
			return fmt.Errorf("failed to apply number format to column %s: %w", colName, err)
		}
	}

	return nil
}
