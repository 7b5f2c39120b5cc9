package main

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sheetlog/internal/config"
	"sheetlog/internal/dataset"
	"sheetlog/internal/excel"

	"github.com/spf13/pflag"
)

func TestBuildDataset(t *testing.T) {
	ds, err := buildDataset(
		[]string{"Tren:text", "Fecha:date", "Km:float", "Fallas:int"},
		[]string{`"T1, norte",2024-05-02,"12,5",3`, "T2,,8,"},
	)
	if err != nil {
		t.Fatalf("buildDataset failed: %v", err)
	}
	if ds.Len() != 2 || ds.Width() != 4 {
		t.Fatalf("expected 2x4 dataset, got %dx%d", ds.Len(), ds.Width())
	}
	if got := ds.Value(0, 0); got != "T1, norte" {
		t.Errorf("expected quoted text to keep its comma, got %v", got)
	}
	if got, ok := ds.Value(0, 1).(time.Time); !ok || got.Day() != 2 {
		t.Errorf("expected parsed date, got %v", ds.Value(0, 1))
	}
	if got := ds.Value(0, 2); got != 12.5 {
		t.Errorf("expected 12.5, got %v", got)
	}
	if got := ds.Value(1, 1); got != nil {
		t.Errorf("expected blank date to be nil, got %v", got)
	}
}

func TestBuildDatasetErrors(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		rows    []string
		wantErr error
	}{
		{"short row", []string{"A:int", "B:int"}, []string{"1"}, dataset.ErrRowWidth},
		{"duplicate column", []string{"A", "A:int"}, nil, dataset.ErrDuplicateColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildDataset(tt.columns, tt.rows)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	var pe *dataset.ParseError
	if _, err := buildDataset([]string{"A:int"}, []string{"uno"}); !errors.As(err, &pe) {
		t.Errorf("expected ParseError, got %v", err)
	}
	if _, err := buildDataset([]string{"A:blob"}, nil); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := buildDataset([]string{":int"}, nil); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"Fecha=2024-05-02", "Falla=puerta=abierta", "Km="})
	if err != nil {
		t.Fatalf("parseAssignments failed: %v", err)
	}
	if values["Falla"] != "puerta=abierta" || values["Km"] != "" || len(values) != 3 {
		t.Errorf("unexpected values %v", values)
	}

	if _, err := parseAssignments([]string{"Fecha"}); err == nil {
		t.Error("expected error without '='")
	}
	if _, err := parseAssignments([]string{"A=1", "A=2"}); err == nil {
		t.Error("expected error for repeated field")
	}
}

func TestAppendOptionsFlagsOverrideConfig(t *testing.T) {
	origCfg := cfg
	t.Cleanup(func() {
		cfg = origCfg
		appendCmd.Flags().VisitAll(func(f *pflag.Flag) {
			f.Changed = false
		})
	})
	cfg = config.Default()

	flags := appendCmd.Flags()
	if err := flags.Parse([]string{"--sheet", "Datos", "--start-row", "4", "--header", "always"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	opts, err := appendOptions(flags)
	if err != nil {
		t.Fatalf("appendOptions failed: %v", err)
	}
	if opts.Sheet != "Datos" || opts.StartRow == nil || *opts.StartRow != 4 || opts.Header != excel.HeaderAlways {
		t.Errorf("flags not applied: %+v", opts)
	}
	if opts.IntFormat != cfg.Append.IntFormat || opts.MaxColWidth != cfg.Append.MaxColWidth {
		t.Errorf("config defaults not kept: %+v", opts)
	}
}

func TestSetupLoadsConfig(t *testing.T) {
	origPath, origCfg := configPath, cfg
	t.Cleanup(func() {
		teardown()
		configPath, cfg = origPath, origCfg
	})

	dir := t.TempDir()
	configPath = filepath.Join(dir, "configs", "config.toml")
	t.Setenv("SHEETLOG_LOG_FILE", filepath.Join(dir, "logs", "sheetlog.log"))
	t.Setenv("SHEETLOG_LOG_DIRECTORY", filepath.Join(dir, "registros"))

	if err := setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if cfg == nil || cfg.Storage.LogDirectory != filepath.Join(dir, "registros") {
		t.Fatalf("expected config with env log directory, got %+v", cfg)
	}
	if logCloser == nil {
		t.Error("expected log file to be open")
	}
}
