// Package logbook writes form records into every spreadsheet log of a form.
package logbook

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"sheetlog/internal/config"
	"sheetlog/internal/dataset"
	"sheetlog/internal/excel"
	"sheetlog/internal/journal"
	"sheetlog/internal/logger"
	"sheetlog/internal/notify"

	"golang.org/x/sync/errgroup"
)

var ErrUnknownForm = errors.New("unknown form")

// Form is a configured record form with its files resolved.
type Form struct {
	Name   string
	Title  string
	Sheet  string
	Files  []string
	Fields []dataset.Field
	Labels map[string]string
}

// Label returns the display label of a field, falling back to its name.
func (f Form) Label(field string) string {
	if l, ok := f.Labels[field]; ok && l != "" {
		return l
	}
	return field
}

// Journal receives one entry per successful append.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

type Book struct {
	forms       []Form
	byName      map[string]int
	appendOpts  excel.AppendOptions
	concurrency int
	journal     Journal
	publisher   notify.Publisher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Book)

func WithJournal(j Journal) Option {
	return func(b *Book) { b.journal = j }
}

func WithPublisher(p notify.Publisher) Option {
	return func(b *Book) { b.publisher = p }
}

// New builds a Book from the configuration.
func New(cfg *config.Config, opts ...Option) (*Book, error) {
	appendOpts, err := cfg.Append.Options()
	if err != nil {
		return nil, err
	}
	// Record logs always carry a header row.
	appendOpts.Header = excel.HeaderIfEmpty

	b := &Book{
		byName:      make(map[string]int, len(cfg.Forms)),
		appendOpts:  appendOpts,
		concurrency: cfg.Storage.Concurrency,
		publisher:   notify.Nop{},
		locks:       make(map[string]*sync.Mutex),
	}
	if b.concurrency < 1 {
		b.concurrency = 1
	}

	for _, fc := range cfg.Forms {
		fields, err := fc.DatasetFields()
		if err != nil {
			return nil, fmt.Errorf("form %q: %w", fc.Name, err)
		}
		if _, dup := b.byName[fc.Name]; dup {
			return nil, fmt.Errorf("form %q is defined twice", fc.Name)
		}

		form := Form{
			Name:   fc.Name,
			Title:  fc.Title,
			Sheet:  fc.Sheet,
			Fields: fields,
			Labels: make(map[string]string),
		}
		if form.Title == "" {
			form.Title = fc.Name
		}
		for _, file := range fc.Files {
			form.Files = append(form.Files, resolvePath(cfg.Storage.LogDirectory, file))
		}
		for _, field := range fc.Fields {
			if field.Label != "" {
				form.Labels[field.Name] = field.Label
			}
		}

		b.byName[form.Name] = len(b.forms)
		b.forms = append(b.forms, form)
	}

	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func resolvePath(dir, file string) string {
	if filepath.IsAbs(file) || dir == "" {
		return file
	}
	return filepath.Join(dir, file)
}

// Forms returns the configured forms in configuration order.
func (b *Book) Forms() []Form {
	forms := make([]Form, len(b.forms))
	copy(forms, b.forms)
	return forms
}

func (b *Book) Form(name string) (Form, error) {
	i, ok := b.byName[name]
	if !ok {
		return Form{}, fmt.Errorf("%w: %q", ErrUnknownForm, name)
	}
	return b.forms[i], nil
}

// Record parses values against the form fields and appends the resulting row
// to every file of the form. Results are returned in file order.
func (b *Book) Record(ctx context.Context, formName string, values map[string]string) ([]excel.AppendResult, error) {
	form, err := b.Form(formName)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.FromRecord(form.Fields, values)
	if err != nil {
		return nil, fmt.Errorf("form %q: %w", form.Name, err)
	}

	opts := b.appendOpts
	if form.Sheet != "" {
		opts.Sheet = form.Sheet
	}

	results := make([]excel.AppendResult, len(form.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, path := range form.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := b.appendLocked(path, ds, opts)
			if err != nil {
				return fmt.Errorf("failed to append to %s: %w", path, err)
			}
			results[i] = res

			if b.journal != nil {
				entry := journal.Entry{
					Form:     form.Name,
					Path:     res.Path,
					Sheet:    res.Sheet,
					FirstRow: res.FirstRow,
					Rows:     res.Rows,
				}
				if err := b.journal.Record(gctx, entry); err != nil {
					return fmt.Errorf("failed to journal append to %s: %w", path, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("Recorded entry", "form", form.Name, "files", len(form.Files))

	event := notify.RecordEvent{
		Form:      form.Name,
		Files:     form.Files,
		Rows:      ds.Len(),
		Values:    values,
		Timestamp: time.Now(),
	}
	if err := b.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish record event", "form", form.Name, "error", err)
	}

	return results, nil
}

func (b *Book) appendLocked(path string, ds *dataset.Dataset, opts excel.AppendOptions) (excel.AppendResult, error) {
	lock := b.pathLock(path)
	lock.Lock()
	defer lock.Unlock()
	return excel.Append(path, ds, opts)
}

func (b *Book) pathLock(path string) *sync.Mutex {
	key := filepath.Clean(path)
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[key] = lock
	}
	return lock
}
