package excel

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestCopyRangeAcrossWorkbooksWithStyle(t *testing.T) {
	src := openWorkbook(t, writeLogFixture(t, t.TempDir()))
	dst := excelize.NewFile()
	defer dst.Close()

	target := Sheet{File: dst, Name: "Sheet1"}
	opts := DefaultCopyOptions()
	opts.Target = &target

	got, err := CopyRange(Sheet{File: src, Name: "Sheet1"}, opts)
	if err != nil {
		t.Fatalf("CopyRange failed: %v", err)
	}
	if got.File != dst || got.Name != "Sheet1" {
		t.Errorf("expected the target sheet to be returned")
	}

	if n := rowCount(t, dst, "Sheet1"); n != 5 {
		t.Fatalf("expected 5 copied rows, got %d", n)
	}
	if v := rawValue(t, dst, "Sheet1", "B3"); v != "30" {
		t.Errorf("expected 30 in B3, got %q", v)
	}
	cellType, err := dst.GetCellType("Sheet1", "B3")
	if err != nil {
		t.Fatalf("GetCellType failed: %v", err)
	}
	if cellType == excelize.CellTypeSharedString || cellType == excelize.CellTypeInlineString {
		t.Errorf("numbers must stay numeric, got cell type %v", cellType)
	}
	if !isBold(t, dst, "Sheet1", "A2") {
		t.Errorf("expected style to be copied onto A2")
	}
	if isBold(t, dst, "Sheet1", "B2") {
		t.Errorf("unstyled source cell must not gain a style")
	}
}

func TestCopyRangeWithoutStyleKeepsTargetStyle(t *testing.T) {
	src := openWorkbook(t, writeLogFixture(t, t.TempDir()))
	dst := excelize.NewFile()
	defer dst.Close()

	italic, err := dst.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true}})
	if err != nil {
		t.Fatalf("NewStyle failed: %v", err)
	}
	if err := dst.SetCellStyle("Sheet1", "A1", "A1", italic); err != nil {
		t.Fatalf("SetCellStyle failed: %v", err)
	}

	target := Sheet{File: dst, Name: "Sheet1"}
	opts := DefaultCopyOptions()
	opts.Target = &target
	opts.WithStyle = false
	if _, err := CopyRange(Sheet{File: src, Name: "Sheet1"}, opts); err != nil {
		t.Fatalf("CopyRange failed: %v", err)
	}

	if v := rawValue(t, dst, "Sheet1", "A1"); v != "T1" {
		t.Errorf("expected value T1 in A1, got %q", v)
	}
	styleID, _ := dst.GetCellStyle("Sheet1", "A1")
	if styleID != italic {
		t.Errorf("expected prior style %d on A1, got %d", italic, styleID)
	}
	styleID, _ = dst.GetCellStyle("Sheet1", "A2")
	if styleID != 0 {
		t.Errorf("expected default style on A2, got %d", styleID)
	}
}

func TestCopyRangeBoundsAndOffset(t *testing.T) {
	f := openWorkbook(t, writeLogFixture(t, t.TempDir()))
	sheet := Sheet{File: f, Name: "Sheet1"}

	opts := DefaultCopyOptions()
	opts.Bounds = Bounds{MinRow: 2, MaxRow: 3, MinCol: 2, MaxCol: 2}
	opts.TargetRow = 10
	opts.TargetCol = 4
	if _, err := CopyRange(sheet, opts); err != nil {
		t.Fatalf("CopyRange failed: %v", err)
	}

	// (2,2) lands on (11,5) and (3,2) on (12,5)
	if v := rawValue(t, f, "Sheet1", "E11"); v != "20" {
		t.Errorf("expected 20 in E11, got %q", v)
	}
	if v := rawValue(t, f, "Sheet1", "E12"); v != "30" {
		t.Errorf("expected 30 in E12, got %q", v)
	}
	if v := rawValue(t, f, "Sheet1", "E13"); v != "" {
		t.Errorf("expected E13 to stay empty, got %q", v)
	}
	if v := rawValue(t, f, "Sheet1", "D11"); v != "" {
		t.Errorf("column A must not be copied, got %q", v)
	}
}

func TestCopyRangeEmptyBoundsIsNoop(t *testing.T) {
	path := writeLogFixture(t, t.TempDir())
	f := openWorkbook(t, path)
	sheet := Sheet{File: f, Name: "Sheet1"}
	before := snapshotCells(t, f, "Sheet1", 12, 6)

	for _, b := range []Bounds{
		{MinRow: 4, MaxRow: 2},
		{MinCol: 3, MaxCol: 1},
	} {
		opts := DefaultCopyOptions()
		opts.Bounds = b
		opts.TargetRow = 6
		if _, err := CopyRange(sheet, opts); err != nil {
			t.Fatalf("CopyRange failed: %v", err)
		}
	}

	empty := Sheet{File: f, Name: "Vacia"}
	if _, err := f.NewSheet("Vacia"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	opts := DefaultCopyOptions()
	opts.Target = &sheet
	if _, err := CopyRange(empty, opts); err != nil {
		t.Fatalf("CopyRange of empty sheet failed: %v", err)
	}

	after := snapshotCells(t, f, "Sheet1", 12, 6)
	for cell, want := range before {
		if after[cell] != want {
			t.Errorf("cell %s changed from %+v to %+v", cell, want, after[cell])
		}
	}
}

func TestCopyRangeOverlappingRows(t *testing.T) {
	f := openWorkbook(t, writeLogFixture(t, t.TempDir()))

	opts := DefaultCopyOptions()
	opts.Bounds = Bounds{MinRow: 1, MaxRow: 3, MinCol: 1, MaxCol: 1}
	opts.TargetRow = 2
	if _, err := CopyRange(Sheet{File: f, Name: "Sheet1"}, opts); err != nil {
		t.Fatalf("CopyRange failed: %v", err)
	}

	for cell, want := range map[string]string{"A1": "T1", "A2": "T1", "A3": "T2", "A4": "T3", "A5": "T5"} {
		if v := rawValue(t, f, "Sheet1", cell); v != want {
			t.Errorf("expected %q in %s, got %q", want, cell, v)
		}
	}
}

func TestCopyRangeCopiesFormulas(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", 2)
	f.SetCellValue("Sheet1", "A2", 3)
	if err := f.SetCellFormula("Sheet1", "A3", "SUM(A1:A2)"); err != nil {
		t.Fatalf("SetCellFormula failed: %v", err)
	}
	if _, err := f.NewSheet("Copia"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}

	target := Sheet{File: f, Name: "Copia"}
	opts := DefaultCopyOptions()
	opts.Target = &target
	if _, err := CopyRange(Sheet{File: f, Name: "Sheet1"}, opts); err != nil {
		t.Fatalf("CopyRange failed: %v", err)
	}

	formula, err := f.GetCellFormula("Copia", "A3")
	if err != nil {
		t.Fatalf("GetCellFormula failed: %v", err)
	}
	if formula != "SUM(A1:A2)" {
		t.Errorf("expected formula to be copied, got %q", formula)
	}
}

func TestMergeSheet(t *testing.T) {
	dir := t.TempDir()
	srcPath := writeLogFixture(t, dir)

	dstPath := filepath.Join(dir, "historico.xlsx")
	if _, err := Append(dstPath, trainDataset(t, []any{"H1", 1, 1.0}, []any{"H2", 2, 2.0}), DefaultAppendOptions()); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	result, err := MergeSheet(dstPath, srcPath, MergeOptions{WithStyle: true})
	if err != nil {
		t.Fatalf("MergeSheet failed: %v", err)
	}
	if result.FirstRow != 3 || result.Rows != 5 {
		t.Errorf("unexpected merge placement: %+v", result)
	}

	f := openWorkbook(t, dstPath)
	if n := rowCount(t, f, "Sheet1"); n != 7 {
		t.Fatalf("expected 7 rows, got %d", n)
	}
	if v := rawValue(t, f, "Sheet1", "A3"); v != "T1" {
		t.Errorf("expected T1 in A3, got %q", v)
	}
	if !isBold(t, f, "Sheet1", "A7") {
		t.Errorf("expected merged rows to keep their style")
	}
	if isBold(t, f, "Sheet1", "A2") {
		t.Errorf("existing rows must keep their style")
	}

	if _, err := MergeSheet(dstPath, srcPath, MergeOptions{SourceSheet: "Falta"}); err == nil {
		t.Errorf("expected error for a missing source sheet")
	}
}
