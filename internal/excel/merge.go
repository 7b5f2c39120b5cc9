package excel

import (
	"fmt"

	"sheetlog/internal/logger"
)

// MergeOptions configures MergeSheet.
type MergeOptions struct {
	// Sheet is the sheet appended to. Defaults to DefaultSheet.
	Sheet string
	// SourceSheet is read from the source workbook. Defaults to its first sheet.
	SourceSheet string
	WithStyle   bool
}

// MergeSheet appends every cell of a sheet in srcPath below the last row of
// a sheet in path, creating the file or sheet when missing.
func MergeSheet(path, srcPath string, opts MergeOptions) (AppendResult, error) {
	if opts.Sheet == "" {
		opts.Sheet = DefaultSheet
	}
	result := AppendResult{Path: path, Sheet: opts.Sheet}

	source, err := OpenFile(srcPath)
	if err != nil {
		return result, err
	}
	defer source.Close()

	srcSheet := opts.SourceSheet
	if srcSheet == "" {
		names := source.GetSheetNames()
		if len(names) == 0 {
			return result, fmt.Errorf("workbook %s has no sheets", srcPath)
		}
		srcSheet = names[0]
	}
	if !source.HasSheet(srcSheet) {
		return result, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, srcSheet, srcPath)
	}

	target, err := OpenOrCreateFile(path, opts.Sheet)
	if err != nil {
		return result, err
	}
	defer target.Close()
	result.FileCreated = target.Created()

	sheetCreated, err := target.EnsureSheet(opts.Sheet)
	if err != nil {
		return result, err
	}
	result.SheetCreated = sheetCreated || target.Created()

	lastRow, err := target.LastRow(opts.Sheet)
	if err != nil {
		return result, err
	}
	srcRows, _, err := source.Extent(srcSheet)
	if err != nil {
		return result, err
	}

	dst := target.Sheet(opts.Sheet)
	copyOpts := DefaultCopyOptions()
	copyOpts.Target = &dst
	copyOpts.TargetRow = lastRow + 1
	copyOpts.WithStyle = opts.WithStyle
	if _, err := CopyRange(source.Sheet(srcSheet), copyOpts); err != nil {
		return result, fmt.Errorf("failed to copy %s!%s: %w", srcPath, srcSheet, err)
	}

	if err := target.Save(); err != nil {
		return result, fmt.Errorf("failed to save %s: %w", path, err)
	}

	result.FirstRow = lastRow + 1
	result.Rows = srcRows
	logger.Info("Merged sheet",
		"path", path,
		"sheet", opts.Sheet,
		"source", srcPath,
		"source_sheet", srcSheet,
		"rows", srcRows)
	return result, nil
}
