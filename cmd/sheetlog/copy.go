package main

import (
	"fmt"

	"sheetlog/internal/excel"

	"github.com/spf13/cobra"
)

var copyFlags struct {
	from       string
	to         string
	targetFile string
	bounds     excel.Bounds
	targetRow  int
	targetCol  int
	noStyle    bool
}

var copyRangeCmd = &cobra.Command{
	Use:   "copy-range FILE",
	Short: "Copy a cell range, with its styles, to another sheet or workbook",
	Long: `Copy the cells of a sheet inside optional row and column bounds.

Source cell (r, c) lands on (r + target-row - 1, c + target-col - 1) of the
target sheet. The target sheet is created when missing. Without --target-file
the target lives in FILE itself.`,
	Example: `  sheetlog copy-range plantilla.xlsx --from Datos --to Resumen --min-row 2 --target-row 10`,
	Args:    cobra.ExactArgs(1),
	RunE:    runCopyRange,
}

func init() {
	f := copyRangeCmd.Flags()
	f.StringVar(&copyFlags.from, "from", "", "Source sheet (default: first sheet)")
	f.StringVar(&copyFlags.to, "to", "", "Target sheet (default: the source sheet name)")
	f.StringVar(&copyFlags.targetFile, "target-file", "", "Workbook to copy into (created when missing)")
	f.IntVar(&copyFlags.bounds.MinRow, "min-row", 0, "First source row (1-based, 0 for the sheet edge)")
	f.IntVar(&copyFlags.bounds.MaxRow, "max-row", 0, "Last source row (0 for the sheet edge)")
	f.IntVar(&copyFlags.bounds.MinCol, "min-col", 0, "First source column (1-based, 0 for the sheet edge)")
	f.IntVar(&copyFlags.bounds.MaxCol, "max-col", 0, "Last source column (0 for the sheet edge)")
	f.IntVar(&copyFlags.targetRow, "target-row", 1, "Row the first source row is shifted to")
	f.IntVar(&copyFlags.targetCol, "target-col", 1, "Column the first source column is shifted to")
	f.BoolVar(&copyFlags.noStyle, "no-style", false, "Copy values only")
}

func runCopyRange(cmd *cobra.Command, args []string) error {
	path := args[0]

	source, err := excel.OpenFile(path)
	if err != nil {
		return err
	}
	defer source.Close()

	from := copyFlags.from
	if from == "" {
		names := source.GetSheetNames()
		if len(names) == 0 {
			return fmt.Errorf("workbook %s has no sheets", path)
		}
		from = names[0]
	}
	if !source.HasSheet(from) {
		return fmt.Errorf("%w: %q in %s", excel.ErrSheetNotFound, from, path)
	}
	to := copyFlags.to
	if to == "" {
		to = from
	}

	target := source
	if copyFlags.targetFile != "" && copyFlags.targetFile != path {
		target, err = excel.OpenOrCreateFile(copyFlags.targetFile, to)
		if err != nil {
			return err
		}
		defer target.Close()
	}
	if _, err := target.EnsureSheet(to); err != nil {
		return err
	}

	dst := target.Sheet(to)
	opts := excel.CopyOptions{
		Bounds:    copyFlags.bounds,
		Target:    &dst,
		TargetRow: copyFlags.targetRow,
		TargetCol: copyFlags.targetCol,
		WithStyle: !copyFlags.noStyle,
	}
	if _, err := excel.CopyRange(source.Sheet(from), opts); err != nil {
		return fmt.Errorf("failed to copy %s!%s: %w", path, from, err)
	}

	if err := target.Save(); err != nil {
		return fmt.Errorf("failed to save %s: %w", target.Path(), err)
	}

	fmt.Printf("✓ Copied %s!%s to %s!%s\n", path, from, target.Path(), to)
	return nil
}
