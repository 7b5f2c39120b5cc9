package main

import (
	"errors"
	"fmt"
	"strings"

	"sheetlog/internal/entry"
	"sheetlog/internal/journal"
	"sheetlog/internal/logbook"
	"sheetlog/internal/logger"
	"sheetlog/internal/notify"

	"github.com/spf13/cobra"
)

var recordInteractive bool

var recordCmd = &cobra.Command{
	Use:   "record FORM [field=value ...]",
	Short: "Record one entry into every log file of a form",
	Example: `  sheetlog record trenes Fecha=2024-05-02 Tipo_Tren=A Numero_Tren=12
  sheetlog record vias -i`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().BoolVarP(&recordInteractive, "interactive", "i", false, "Type the values in a terminal form")
}

func runRecord(cmd *cobra.Command, args []string) error {
	values, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	var opts []logbook.Option
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer store.Close()
		opts = append(opts, logbook.WithJournal(store))
	}

	publisher, err := notify.New(cfg.Notify)
	if err != nil {
		// Records are still written when the broker is down.
		logger.Warn("Notifications disabled", "error", err)
		publisher = notify.Nop{}
	}
	defer publisher.Close()
	opts = append(opts, logbook.WithPublisher(publisher))

	book, err := logbook.New(cfg, opts...)
	if err != nil {
		return err
	}

	form, err := book.Form(args[0])
	if err != nil {
		return err
	}

	if recordInteractive {
		values, err = entry.Run(form, cfg.UI.LabelWidth, values)
		if errors.Is(err, entry.ErrCancelled) {
			fmt.Println("Entry cancelled, nothing recorded")
			return nil
		}
		if err != nil {
			return err
		}
	}

	results, err := book.Record(cmd.Context(), form.Name, values)
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("✓ %s!%s row %d\n", r.Path, r.Sheet, r.FirstRow)
	}
	return nil
}

// parseAssignments turns field=value arguments into a map.
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid value %q: expected field=value", arg)
		}
		if _, dup := values[name]; dup {
			return nil, fmt.Errorf("field %q given twice", name)
		}
		values[name] = value
	}
	return values, nil
}
