package excel

import (
	"fmt"
	"path/filepath"
	"testing"

	"sheetlog/internal/dataset"

	"github.com/xuri/excelize/v2"
)

type cellState struct {
	raw     string
	styleID int
}

// writeLogFixture saves a workbook whose Sheet1 holds five styled rows
// (text, int, float) and whose second sheet "Otro" holds one value.
func writeLogFixture(t *testing.T, dir string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFFF00"}},
	})
	if err != nil {
		t.Fatalf("NewStyle failed: %v", err)
	}

	for r := 1; r <= 5; r++ {
		f.SetCellValue("Sheet1", fmt.Sprintf("A%d", r), fmt.Sprintf("T%d", r))
		f.SetCellValue("Sheet1", fmt.Sprintf("B%d", r), r*10)
		f.SetCellValue("Sheet1", fmt.Sprintf("C%d", r), float64(r)*1.5)
	}
	if err := f.SetCellStyle("Sheet1", "A1", "A5", bold); err != nil {
		t.Fatalf("SetCellStyle failed: %v", err)
	}

	if _, err := f.NewSheet("Otro"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	f.SetCellValue("Otro", "A1", "keep")

	path := filepath.Join(dir, "registros.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save fixture: %v", err)
	}
	return path
}

func trainDataset(t *testing.T, rows ...[]any) *dataset.Dataset {
	t.Helper()

	ds := dataset.New()
	for _, c := range []struct {
		name string
		kind dataset.Kind
	}{
		{"Tren", dataset.KindText},
		{"Fallas", dataset.KindInt},
		{"Km", dataset.KindFloat},
	} {
		if err := ds.AddColumn(c.name, c.kind); err != nil {
			t.Fatalf("AddColumn failed: %v", err)
		}
	}
	for _, row := range rows {
		if err := ds.AppendRow(row...); err != nil {
			t.Fatalf("AppendRow failed: %v", err)
		}
	}
	return ds
}

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func rowCount(t *testing.T, f *excelize.File, sheet string) int {
	t.Helper()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	return len(rows)
}

func rawValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()

	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue(%s) failed: %v", cell, err)
	}
	return v
}

func snapshotCells(t *testing.T, f *excelize.File, sheet string, rows, cols int) map[string]cellState {
	t.Helper()

	out := make(map[string]cellState)
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			cell, _ := excelize.CoordinatesToCellName(c, r)
			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				t.Fatalf("GetCellStyle(%s) failed: %v", cell, err)
			}
			out[cell] = cellState{raw: rawValue(t, f, sheet, cell), styleID: styleID}
		}
	}
	return out
}

func isBold(t *testing.T, f *excelize.File, sheet, cell string) bool {
	t.Helper()

	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		t.Fatalf("GetCellStyle(%s) failed: %v", cell, err)
	}
	if styleID == 0 {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("GetStyle(%d) failed: %v", styleID, err)
	}
	return style.Font != nil && style.Font.Bold
}
