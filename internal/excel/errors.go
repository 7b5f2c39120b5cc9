package excel

import "errors"

// ErrSheetNotFound indicates a named sheet is missing from a workbook.
var ErrSheetNotFound = errors.New("sheet not found")
