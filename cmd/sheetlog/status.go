package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"sheetlog/internal/excel"
	"sheetlog/internal/journal"
	"sheetlog/internal/logbook"

	"github.com/spf13/cobra"
)

var journalLimit int

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List the configured record forms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := logbook.New(cfg)
		if err != nil {
			return err
		}

		for _, form := range book.Forms() {
			fmt.Printf("%s: %s\n", form.Name, form.Title)
			fields := make([]string, 0, len(form.Fields))
			for _, f := range form.Fields {
				s := fmt.Sprintf("%s (%s)", f.Name, f.Kind)
				if f.Required {
					s += "*"
				}
				fields = append(fields, s)
			}
			fmt.Printf("  fields: %s\n", strings.Join(fields, ", "))
			for _, file := range form.Files {
				fmt.Printf("  → %s\n", file)
			}
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [DIR]",
	Short: "Summarize every workbook in the log directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Storage.LogDirectory
		if len(args) == 1 {
			dir = args[0]
		}

		summaries, err := excel.ScanDirectory(dir)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Printf("No .xlsx files found in directory: %s\n", dir)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tSHEET\tROWS\tCOLS")
		for _, s := range summaries {
			if s.Err != nil {
				fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", s.Path, s.Err)
				continue
			}
			for _, sheet := range s.Sheets {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.Path, sheet.Name, sheet.Rows, sheet.Cols)
			}
		}
		return w.Flush()
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the most recent appends made by record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Journal.Enabled {
			fmt.Println("The journal is disabled in the configuration")
			return nil
		}

		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(cmd.Context(), journalLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tFORM\tFILE\tSHEET\tROW\tROWS")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
				e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Form, e.Path, e.Sheet, e.FirstRow, e.Rows)
		}
		return w.Flush()
	},
}

func init() {
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
}
