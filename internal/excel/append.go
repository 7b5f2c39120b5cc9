package excel

import (
	"fmt"
	"strings"

	"sheetlog/internal/dataset"
	"sheetlog/internal/logger"

	"github.com/xuri/excelize/v2"
)

// HeaderMode controls whether column names are written above appended rows.
type HeaderMode int

const (
	// HeaderNever writes data rows only.
	HeaderNever HeaderMode = iota
	// HeaderAlways writes a header row before every batch of rows.
	HeaderAlways
	// HeaderIfEmpty writes a header row only into an empty sheet.
	HeaderIfEmpty
)

func (m HeaderMode) String() string {
	switch m {
	case HeaderAlways:
		return "always"
	case HeaderIfEmpty:
		return "if_empty"
	default:
		return "never"
	}
}

// ParseHeaderMode converts "never", "always" or "if_empty".
func ParseHeaderMode(s string) (HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "never", "false":
		return HeaderNever, nil
	case "always", "true":
		return HeaderAlways, nil
	case "if_empty", "if-empty":
		return HeaderIfEmpty, nil
	}
	return HeaderNever, fmt.Errorf("unknown header mode %q", s)
}

// AppendOptions configures Append.
type AppendOptions struct {
	Sheet string
	// StartRow is the zero-based row offset of the first written row. If nil,
	// rows go right after the last row of the sheet.
	StartRow       *int
	MaxColWidth    int
	AutoFilter     bool
	IntFormat      string
	FloatFormat    string
	DateFormat     string
	DateTimeFormat string
	TruncateSheet  bool
	Header         HeaderMode
}

// DefaultAppendOptions returns the defaults of the log writer.
func DefaultAppendOptions() AppendOptions {
	return AppendOptions{
		Sheet:          DefaultSheet,
		MaxColWidth:    30,
		IntFormat:      "#,##0",
		FloatFormat:    "#,##0.00",
		DateFormat:     "yyyy-mm-dd",
		DateTimeFormat: "yyyy-mm-dd hh:mm",
		Header:         HeaderNever,
	}
}

// AppendResult describes where rows were written.
type AppendResult struct {
	Path  string
	Sheet string
	// FirstRow is the 1-based row of the first data row.
	FirstRow      int
	Rows          int
	HeaderWritten bool
	FileCreated   bool
	SheetCreated  bool
}

// Append writes the rows of ds into the named sheet of the workbook at path,
// creating the workbook or the sheet when missing. Existing sheets, rows and
// styles are left untouched. Nothing is saved if any step fails.
func Append(path string, ds *dataset.Dataset, opts AppendOptions) (AppendResult, error) {
	if opts.Sheet == "" {
		opts.Sheet = DefaultSheet
	}
	result := AppendResult{Path: path, Sheet: opts.Sheet}

	editor, err := OpenOrCreateFile(path, opts.Sheet)
	if err != nil {
		return result, err
	}
	defer editor.Close()
	result.FileCreated = editor.Created()

	sheetCreated, err := editor.EnsureSheet(opts.Sheet)
	if err != nil {
		return result, err
	}
	result.SheetCreated = sheetCreated || editor.Created()

	if opts.TruncateSheet && !result.SheetCreated {
		if err := editor.ClearSheet(opts.Sheet); err != nil {
			return result, fmt.Errorf("failed to truncate sheet %q: %w", opts.Sheet, err)
		}
	}

	lastRow, err := editor.LastRow(opts.Sheet)
	if err != nil {
		return result, err
	}
	startRow := lastRow
	if opts.StartRow != nil {
		if *opts.StartRow < 0 {
			return result, fmt.Errorf("invalid start row %d", *opts.StartRow)
		}
		startRow = *opts.StartRow
	}

	f := editor.File()
	row := startRow + 1
	if opts.Header == HeaderAlways || (opts.Header == HeaderIfEmpty && lastRow == 0) {
		if err := writeRow(f, opts.Sheet, row, toInterfaces(ds.ColumnNames())); err != nil {
			return result, err
		}
		result.HeaderWritten = true
		row++
	}

	result.FirstRow = row
	for i := 0; i < ds.Len(); i++ {
		if err := writeRow(f, opts.Sheet, row, ds.Row(i)); err != nil {
			return result, err
		}
		row++
	}
	result.Rows = ds.Len()

	if opts.AutoFilter {
		if err := applyAutoFilter(editor, opts.Sheet); err != nil {
			return result, err
		}
	}

	if err := formatColumns(f, opts.Sheet, ds, result.FirstRow, opts); err != nil {
		return result, err
	}

	if err := editor.Save(); err != nil {
		return result, fmt.Errorf("failed to save %s: %w", path, err)
	}

	logger.Debug("Appended rows",
		"path", path,
		"sheet", opts.Sheet,
		"first_row", result.FirstRow,
		"rows", result.Rows,
		"file_created", result.FileCreated)
	return result, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for j, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(j+1, row)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set value in cell %s: %w", cell, err)
		}
	}
	return nil
}

func applyAutoFilter(editor *Editor, sheet string) error {
	rows, cols, err := editor.Extent(sheet)
	if err != nil {
		return err
	}
	if rows == 0 || cols == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(cols, rows)
	if err != nil {
		return fmt.Errorf("failed to address filter range: %w", err)
	}
	if err := editor.File().AutoFilter(sheet, "A1:"+last, nil); err != nil {
		return fmt.Errorf("failed to set auto filter: %w", err)
	}
	return nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
