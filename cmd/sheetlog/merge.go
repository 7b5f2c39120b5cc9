package main

import (
	"fmt"

	"sheetlog/internal/excel"

	"github.com/spf13/cobra"
)

var mergeFlags struct {
	sheet       string
	sourceSheet string
	noStyle     bool
}

var mergeCmd = &cobra.Command{
	Use:   "merge DST SRC",
	Short: "Append every row of a sheet in SRC below the last row of DST",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet := mergeFlags.sheet
		if sheet == "" {
			sheet = cfg.Append.Sheet
		}

		result, err := excel.MergeSheet(args[0], args[1], excel.MergeOptions{
			Sheet:       sheet,
			SourceSheet: mergeFlags.sourceSheet,
			WithStyle:   !mergeFlags.noStyle,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✓ Merged %d rows into %s!%s starting at row %d\n", result.Rows, result.Path, result.Sheet, result.FirstRow)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeFlags.sheet, "sheet", "", "Sheet of DST to append to (default from config)")
	mergeCmd.Flags().StringVar(&mergeFlags.sourceSheet, "source-sheet", "", "Sheet of SRC to read (default: first sheet)")
	mergeCmd.Flags().BoolVar(&mergeFlags.noStyle, "no-style", false, "Copy values only")
}
