package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet addresses one sheet of an open workbook.
type Sheet struct {
	File *excelize.File
	Name string
}

// Bounds is an inclusive, 1-based cell rectangle. A zero bound means the
// edge of the sheet's used range.
type Bounds struct {
	MinRow int
	MaxRow int
	MinCol int
	MaxCol int
}

// CopyOptions configures CopyRange.
type CopyOptions struct {
	Bounds Bounds
	// Target is the sheet written to. If nil, the source sheet is used.
	Target *Sheet
	// TargetRow and TargetCol shift the copy: source cell (r, c) lands on
	// (r+TargetRow-1, c+TargetCol-1). Values below 1 are treated as 1.
	TargetRow int
	TargetCol int
	// WithStyle duplicates non-default cell styles into the target workbook.
	WithStyle bool
}

// DefaultCopyOptions returns options copying the whole sheet onto itself
// with styles.
func DefaultCopyOptions() CopyOptions {
	return CopyOptions{
		TargetRow: 1,
		TargetCol: 1,
		WithStyle: true,
	}
}

type cellSnapshot struct {
	row, col int
	formula  string
	value    interface{}
	styleID  int
}

// CopyRange copies the cells of src inside opts.Bounds to the target sheet
// and returns the target. Empty source cells leave the target cell as is.
// All source cells are read before any write, so overlapping copies within
// one sheet do not read their own output.
func CopyRange(src Sheet, opts CopyOptions) (Sheet, error) {
	dst := src
	if opts.Target != nil {
		dst = *opts.Target
	}
	rowShift := max(opts.TargetRow, 1) - 1
	colShift := max(opts.TargetCol, 1) - 1

	lastRow, lastCol, err := sheetExtent(src.File, src.Name)
	if err != nil {
		return dst, err
	}
	b := opts.Bounds.resolve(lastRow, lastCol)
	if b.empty() {
		return dst, nil
	}

	cells, err := snapshotRange(src, b, opts.WithStyle)
	if err != nil {
		return dst, err
	}

	styles := make(map[int]int)
	for _, c := range cells {
		cell, err := excelize.CoordinatesToCellName(c.col+colShift, c.row+rowShift)
		if err != nil {
			return dst, fmt.Errorf("failed to address target cell: %w", err)
		}

		switch {
		case c.formula != "":
			if err := dst.File.SetCellFormula(dst.Name, cell, c.formula); err != nil {
				return dst, fmt.Errorf("failed to set formula in cell %s: %w", cell, err)
			}
		case c.value != nil:
			if err := dst.File.SetCellValue(dst.Name, cell, c.value); err != nil {
				return dst, fmt.Errorf("failed to set value in cell %s: %w", cell, err)
			}
		}

		if c.styleID == 0 {
			continue
		}
		styleID, ok := styles[c.styleID]
		if !ok {
			styleID, err = duplicateStyle(src.File, dst.File, c.styleID)
			if err != nil {
				return dst, err
			}
			styles[c.styleID] = styleID
		}
		if err := dst.File.SetCellStyle(dst.Name, cell, cell, styleID); err != nil {
			return dst, fmt.Errorf("failed to set style on cell %s: %w", cell, err)
		}
	}

	return dst, nil
}

func (b Bounds) resolve(lastRow, lastCol int) Bounds {
	out := b
	if out.MinRow < 1 {
		out.MinRow = 1
	}
	if out.MinCol < 1 {
		out.MinCol = 1
	}
	if out.MaxRow == 0 {
		out.MaxRow = lastRow
	}
	if out.MaxCol == 0 {
		out.MaxCol = lastCol
	}
	return out
}

func (b Bounds) empty() bool {
	return b.MaxRow < b.MinRow || b.MaxCol < b.MinCol
}

func snapshotRange(src Sheet, b Bounds, withStyle bool) ([]cellSnapshot, error) {
	rows, err := src.File.GetRows(src.Name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", src.Name, err)
	}

	var cells []cellSnapshot
	for r := b.MinRow; r <= b.MaxRow; r++ {
		for c := b.MinCol; c <= b.MaxCol; c++ {
			cell, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return nil, fmt.Errorf("failed to address source cell: %w", err)
			}

			snap := cellSnapshot{row: r, col: c}
			formula, err := src.File.GetCellFormula(src.Name, cell)
			if err != nil {
				return nil, fmt.Errorf("failed to read formula of cell %s: %w", cell, err)
			}
			snap.formula = formula

			if formula == "" {
				raw := ""
				if r <= len(rows) && c <= len(rows[r-1]) {
					raw = rows[r-1][c-1]
				}
				if raw != "" {
					cellType, err := src.File.GetCellType(src.Name, cell)
					if err != nil {
						return nil, fmt.Errorf("failed to read type of cell %s: %w", cell, err)
					}
					snap.value = typedValue(cellType, raw)
				}
			}

			if withStyle {
				styleID, err := src.File.GetCellStyle(src.Name, cell)
				if err != nil {
					return nil, fmt.Errorf("failed to read style of cell %s: %w", cell, err)
				}
				snap.styleID = styleID
			}

			if snap.formula != "" || snap.value != nil || snap.styleID != 0 {
				cells = append(cells, snap)
			}
		}
	}
	return cells, nil
}

// typedValue converts a raw cell value back into the Go type excelize
// writes with the same cell type.
func typedValue(cellType excelize.CellType, raw string) interface{} {
	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || raw == "TRUE" || raw == "true"
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		return parseNumericValue(raw)
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
		return raw
	default:
		return raw
	}
}

// duplicateStyle registers a copy of a source style in the target workbook
// and returns its ID there.
func duplicateStyle(src, dst *excelize.File, styleID int) (int, error) {
	style, err := src.GetStyle(styleID)
	if err != nil {
		return 0, fmt.Errorf("failed to read style %d: %w", styleID, err)
	}
	newID, err := dst.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create style: %w", err)
	}
	return newID, nil
}
