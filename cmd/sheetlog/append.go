package main

import (
	"encoding/csv"
	"fmt"
	"strings"

	"sheetlog/internal/dataset"
	"sheetlog/internal/excel"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	appendColumns []string
	appendRows    []string
	appendOpts    struct {
		sheet          string
		startRow       int
		maxColWidth    int
		autoFilter     bool
		intFormat      string
		floatFormat    string
		dateFormat     string
		dateTimeFormat string
		truncate       bool
		header         string
	}
)

var appendCmd = &cobra.Command{
	Use:   "append FILE",
	Short: "Append typed rows to a sheet of a workbook",
	Long: `Append typed rows to a sheet, creating the workbook or sheet when missing.

Columns are declared with --column name:kind (kinds: text, int, float, date,
datetime) and each --row is one comma-separated line of values.`,
	Example: `  sheetlog append registros.xlsx --column Tren:text --column Km:float --row "T1,12.5" --row "T2,8"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runAppend,
}

func init() {
	f := appendCmd.Flags()
	f.StringArrayVarP(&appendColumns, "column", "c", nil, "Column as name:kind (repeatable)")
	f.StringArrayVarP(&appendRows, "row", "r", nil, "Comma-separated row values (repeatable)")
	f.StringVar(&appendOpts.sheet, "sheet", "", "Sheet to append to (default from config)")
	f.IntVar(&appendOpts.startRow, "start-row", 0, "Zero-based row offset to write at instead of after the last row")
	f.IntVar(&appendOpts.maxColWidth, "max-col-width", 0, "Maximum column width")
	f.BoolVar(&appendOpts.autoFilter, "autofilter", false, "Add an autofilter over the used range")
	f.StringVar(&appendOpts.intFormat, "int-format", "", "Number format for int columns")
	f.StringVar(&appendOpts.floatFormat, "float-format", "", "Number format for float columns")
	f.StringVar(&appendOpts.dateFormat, "date-format", "", "Number format for date columns")
	f.StringVar(&appendOpts.dateTimeFormat, "datetime-format", "", "Number format for datetime columns")
	f.BoolVar(&appendOpts.truncate, "truncate", false, "Clear the sheet before writing")
	f.StringVar(&appendOpts.header, "header", "", "Header row mode: never, always or if_empty")
	_ = appendCmd.MarkFlagRequired("column")
}

func runAppend(cmd *cobra.Command, args []string) error {
	path := args[0]

	opts, err := appendOptions(cmd.Flags())
	if err != nil {
		return err
	}

	ds, err := buildDataset(appendColumns, appendRows)
	if err != nil {
		return err
	}

	result, err := excel.Append(path, ds, opts)
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}

	fmt.Printf("✓ Appended %d rows to %s!%s starting at row %d\n", result.Rows, result.Path, result.Sheet, result.FirstRow)
	if result.HeaderWritten {
		fmt.Println("✓ Header row written")
	}
	return nil
}

// appendOptions starts from the configured defaults and applies the flags
// that were set explicitly.
func appendOptions(flags *pflag.FlagSet) (excel.AppendOptions, error) {
	opts, err := cfg.Append.Options()
	if err != nil {
		return opts, err
	}

	if flags.Changed("sheet") {
		opts.Sheet = appendOpts.sheet
	}
	if flags.Changed("start-row") {
		start := appendOpts.startRow
		opts.StartRow = &start
	}
	if flags.Changed("max-col-width") {
		opts.MaxColWidth = appendOpts.maxColWidth
	}
	if flags.Changed("autofilter") {
		opts.AutoFilter = appendOpts.autoFilter
	}
	if flags.Changed("int-format") {
		opts.IntFormat = appendOpts.intFormat
	}
	if flags.Changed("float-format") {
		opts.FloatFormat = appendOpts.floatFormat
	}
	if flags.Changed("date-format") {
		opts.DateFormat = appendOpts.dateFormat
	}
	if flags.Changed("datetime-format") {
		opts.DateTimeFormat = appendOpts.dateTimeFormat
	}
	if flags.Changed("truncate") {
		opts.TruncateSheet = appendOpts.truncate
	}
	if flags.Changed("header") {
		mode, err := excel.ParseHeaderMode(appendOpts.header)
		if err != nil {
			return opts, err
		}
		opts.Header = mode
	}
	return opts, nil
}

// buildDataset declares columns from name:kind pairs and parses each row as
// one CSV line.
func buildDataset(columns, rows []string) (*dataset.Dataset, error) {
	ds := dataset.New()
	for _, def := range columns {
		name, kindName, _ := strings.Cut(def, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid column %q: missing name", def)
		}
		kind, err := dataset.ParseKind(kindName)
		if err != nil {
			return nil, fmt.Errorf("invalid column %q: %w", def, err)
		}
		if err := ds.AddColumn(name, kind); err != nil {
			return nil, err
		}
	}

	for i, line := range rows {
		r := csv.NewReader(strings.NewReader(line))
		r.FieldsPerRecord = -1
		fields, err := r.Read()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if len(fields) != ds.Width() {
			return nil, fmt.Errorf("row %d: %w: got %d values for %d columns", i+1, dataset.ErrRowWidth, len(fields), ds.Width())
		}

		values := make([]any, len(fields))
		for c, raw := range fields {
			col := ds.Column(c)
			v, err := dataset.ParseValue(col.Kind, raw)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", i+1, col.Name, err)
			}
			values[c] = v
		}
		if err := ds.AppendRow(values...); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return ds, nil
}
