package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sheetlog/internal/logger"
)

// SheetSummary is the used size of one sheet.
type SheetSummary struct {
	Name string
	Rows int
	Cols int
}

// FileSummary lists the sheets of one workbook.
type FileSummary struct {
	Path   string
	Sheets []SheetSummary
	Err    error
}

// ScanDirectory walks dir for .xlsx files and summarizes every sheet of each.
// Files that cannot be read are reported with Err set instead of failing the scan.
func ScanDirectory(dir string) ([]FileSummary, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	xlsxFiles, err := getXlsxFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get xlsx files: %w", err)
	}
	sort.Strings(xlsxFiles)

	summaries := make([]FileSummary, 0, len(xlsxFiles))
	for _, filePath := range xlsxFiles {
		summary, err := ScanFile(filePath)
		if err != nil {
			logger.Warn("Failed to scan file", "file", filePath, "error", err)
			summary = FileSummary{Path: filePath, Err: err}
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// ScanFile summarizes every sheet of one workbook.
func ScanFile(filePath string) (FileSummary, error) {
	summary := FileSummary{Path: filePath}

	editor, err := OpenFile(filePath)
	if err != nil {
		return summary, err
	}
	defer editor.Close()

	for _, sheetName := range editor.GetSheetNames() {
		rows, cols, err := editor.Extent(sheetName)
		if err != nil {
			return summary, err
		}
		summary.Sheets = append(summary.Sheets, SheetSummary{
			Name: sheetName,
			Rows: rows,
			Cols: cols,
		})
	}

	return summary, nil
}

// getXlsxFiles returns all .xlsx files in the specified directory,
// skipping Office lock files
func getXlsxFiles(dir string) ([]string, error) {
	var xlsxFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		name := info.Name()
		if !info.IsDir() && strings.ToLower(filepath.Ext(path)) == ".xlsx" && !strings.HasPrefix(name, "~$") {
			xlsxFiles = append(xlsxFiles, path)
		}

		return nil
	})

	return xlsxFiles, err
}
