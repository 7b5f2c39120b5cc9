package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet name used when none is given.
const DefaultSheet = "Sheet1"

type Editor struct {
	file     *excelize.File
	filepath string
	created  bool
}

// OpenFile opens an existing Excel file
func OpenFile(filepath string) (*Editor, error) {
	file, err := excelize.OpenFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return &Editor{
		file:     file,
		filepath: filepath,
	}, nil
}

// OpenOrCreateFile opens an existing file or creates a new workbook whose only
// sheet is named firstSheet if the file doesn't exist
func OpenOrCreateFile(filepath, firstSheet string) (*Editor, error) {
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		file := excelize.NewFile()
		if firstSheet != "" && firstSheet != DefaultSheet {
			if err := file.SetSheetName(DefaultSheet, firstSheet); err != nil {
				file.Close()
				return nil, fmt.Errorf("failed to name sheet %q: %w", firstSheet, err)
			}
		}
		return &Editor{
			file:     file,
			filepath: filepath,
			created:  true,
		}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking file status: %w", err)
	}

	file, err := excelize.OpenFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open existing file: %w", err)
	}
	return &Editor{
		file:     file,
		filepath: filepath,
	}, nil
}

// File exposes the underlying workbook.
func (e *Editor) File() *excelize.File {
	return e.file
}

// Path returns the file the editor saves to.
func (e *Editor) Path() string {
	return e.filepath
}

// Created reports whether the workbook did not exist on disk when opened.
func (e *Editor) Created() bool {
	return e.created
}

// Sheet returns a handle to a sheet of this workbook.
func (e *Editor) Sheet(name string) Sheet {
	return Sheet{File: e.file, Name: name}
}

// GetSheetNames returns all sheet names in the workbook
func (e *Editor) GetSheetNames() []string {
	return e.file.GetSheetList()
}

// HasSheet reports whether the workbook contains the named sheet.
func (e *Editor) HasSheet(name string) bool {
	idx, err := e.file.GetSheetIndex(name)
	return err == nil && idx != -1
}

// EnsureSheet creates the sheet if it is missing and reports whether it did.
func (e *Editor) EnsureSheet(name string) (bool, error) {
	if e.HasSheet(name) {
		return false, nil
	}
	if _, err := e.file.NewSheet(name); err != nil {
		return false, fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	return true, nil
}

// LastRow returns the 1-based number of the last row holding a value, or 0
// for an empty sheet.
func (e *Editor) LastRow(sheet string) (int, error) {
	rows, _, err := e.Extent(sheet)
	return rows, err
}

// Extent returns the number of rows and columns spanned by cell values.
func (e *Editor) Extent(sheet string) (int, int, error) {
	return sheetExtent(e.file, sheet)
}

// ClearSheet removes every row of the sheet, keeping the sheet in place.
func (e *Editor) ClearSheet(sheet string) error {
	rows, err := e.LastRow(sheet)
	if err != nil {
		return err
	}
	for r := rows; r >= 1; r-- {
		if err := e.file.RemoveRow(sheet, r); err != nil {
			return fmt.Errorf("failed to remove row %d: %w", r, err)
		}
	}
	return nil
}

// NumberFormat returns the number format code applied to a cell, "General"
// for unstyled cells.
func (e *Editor) NumberFormat(sheet, cell string) (string, error) {
	return numberFormat(e.file, sheet, cell)
}

// Save saves the Excel file to the original filepath
func (e *Editor) Save() error {
	if e.filepath == "" {
		return fmt.Errorf("no filepath specified, use SaveAs instead")
	}
	return e.SaveAs(e.filepath)
}

// SaveAs saves the Excel file with a new name
func (e *Editor) SaveAs(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	e.filepath = path
	return e.file.SaveAs(path)
}

// Close closes the Excel file
func (e *Editor) Close() error {
	return e.file.Close()
}

func sheetExtent(f *excelize.File, sheet string) (int, int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get rows of sheet %q: %w", sheet, err)
	}
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return len(rows), cols, nil
}

// builtInNumFmts maps the built-in number format IDs excelize may report
// back for common codes.
var builtInNumFmts = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	49: "@",
}

func numberFormat(f *excelize.File, sheet, cell string) (string, error) {
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return "", err
	}
	if styleID == 0 {
		return builtInNumFmts[0], nil
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		return "", err
	}
	if style.CustomNumFmt != nil {
		return *style.CustomNumFmt, nil
	}
	if code, ok := builtInNumFmts[style.NumFmt]; ok {
		return code, nil
	}
	return strconv.Itoa(style.NumFmt), nil
}

// parseNumericValue attempts to parse a string as a number and returns the appropriate type
// Returns the original string if it's not a valid number
func parseNumericValue(value string) interface{} {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value
	}

	if intVal, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return intVal
	}

	if floatVal, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return floatVal
	}

	return value
}
