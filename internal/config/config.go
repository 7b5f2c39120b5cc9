package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sheetlog/internal/dataset"
	"sheetlog/internal/excel"
	"sheetlog/internal/logger"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where the CLI looks for its configuration.
const DefaultPath = "configs/config.toml"

type Config struct {
	Log     LogConfig     `toml:"log"`
	Storage StorageConfig `toml:"storage"`
	Append  AppendConfig  `toml:"append"`
	Journal JournalConfig `toml:"journal"`
	Notify  NotifyConfig  `toml:"notify"`
	UI      UIConfig      `toml:"ui"`
	Forms   []FormConfig  `toml:"forms"`
}

type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type StorageConfig struct {
	LogDirectory string `toml:"log_directory"`
	Concurrency  int    `toml:"concurrency"`
}

type AppendConfig struct {
	Sheet          string `toml:"sheet"`
	MaxColWidth    int    `toml:"max_col_width"`
	AutoFilter     bool   `toml:"autofilter"`
	IntFormat      string `toml:"int_format"`
	FloatFormat    string `toml:"float_format"`
	DateFormat     string `toml:"date_format"`
	DateTimeFormat string `toml:"datetime_format"`
	Header         string `toml:"header"`
}

type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type NotifyConfig struct {
	AMQPURL    string `toml:"amqp_url"`
	Exchange   string `toml:"exchange"`
	RoutingKey string `toml:"routing_key"`
}

type UIConfig struct {
	LabelWidth int `toml:"label_width"`
}

// FormConfig is one record form and the log files it feeds.
type FormConfig struct {
	Name   string        `toml:"name"`
	Title  string        `toml:"title"`
	Sheet  string        `toml:"sheet"`
	Files  []string      `toml:"files"`
	Fields []FieldConfig `toml:"fields"`
}

type FieldConfig struct {
	Name     string `toml:"name"`
	Label    string `toml:"label"`
	Type     string `toml:"type"`
	Required bool   `toml:"required"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	appendDefaults := excel.DefaultAppendOptions()
	return &Config{
		Log: LogConfig{
			File:  "logs/sheetlog.log",
			Level: "info",
		},
		Storage: StorageConfig{
			LogDirectory: "data/registros",
			Concurrency:  3,
		},
		Append: AppendConfig{
			Sheet:          appendDefaults.Sheet,
			MaxColWidth:    appendDefaults.MaxColWidth,
			IntFormat:      appendDefaults.IntFormat,
			FloatFormat:    appendDefaults.FloatFormat,
			DateFormat:     appendDefaults.DateFormat,
			DateTimeFormat: appendDefaults.DateTimeFormat,
			Header:         appendDefaults.Header.String(),
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "data/journal.db",
		},
		Notify: NotifyConfig{
			Exchange:   "sheetlog",
			RoutingKey: "records",
		},
		UI: UIConfig{
			LabelWidth: 24,
		},
		Forms: defaultForms(),
	}
}

func defaultForms() []FormConfig {
	rolling := func(prefix string) []string {
		return []string{
			prefix + "_mensual.xlsx",
			prefix + "_anual.xlsx",
			prefix + "_historico.xlsx",
		}
	}

	return []FormConfig{
		{
			Name:  "vias",
			Title: "Registro de vías",
			Files: rolling("registros_vias"),
			Fields: []FieldConfig{
				{Name: "Fecha", Type: "date", Required: true},
				{Name: "Linea", Label: "Línea", Type: "text", Required: true},
				{Name: "Via", Label: "Vía", Type: "text"},
				{Name: "Tiempo_min", Label: "Tiempo (min)", Type: "float", Required: true},
				{Name: "Estacion_inicio", Label: "Estación inicio", Type: "int", Required: true},
				{Name: "Estacion_fin", Label: "Estación fin", Type: "int", Required: true},
				{Name: "TPI_i", Type: "float"},
				{Name: "KA_i", Type: "float"},
			},
		},
		{
			Name:  "trenes",
			Title: "Registro de trenes",
			Files: rolling("registros_trenes"),
			Fields: []FieldConfig{
				{Name: "Fecha", Type: "date", Required: true},
				{Name: "Tipo_Tren", Label: "Tipo de tren", Type: "text", Required: true},
				{Name: "Numero_Tren", Label: "Número de tren", Type: "text", Required: true},
				{Name: "Falla", Type: "text"},
				{Name: "Km_recorridos", Label: "Km recorridos", Type: "float"},
			},
		},
		{
			Name:  "sc",
			Title: "Registro de sistemas de control",
			Files: rolling("registros_SC"),
			Fields: []FieldConfig{
				{Name: "Fecha", Type: "date", Required: true},
				{Name: "Sistema", Type: "text", Required: true},
				{Name: "Falla", Type: "text"},
				{Name: "Tiempo_min", Label: "Tiempo (min)", Type: "int"},
			},
		},
		{
			Name:  "mtto",
			Title: "Registro de mantenimiento",
			Files: rolling("registros_mtto"),
			Fields: []FieldConfig{
				{Name: "Fecha", Type: "date", Required: true},
				{Name: "Actividad", Type: "text", Required: true},
				{Name: "Real_en", Label: "Realizado en", Type: "text", Required: true},
				{Name: "Peso_Act", Label: "Peso de actividad", Type: "float"},
			},
		},
	}
}

// LoadConfig loads configuration from the specified config file path,
// writing the defaults there first if the file does not exist
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		defaultConfig := Default()
		if err := SaveConfig(configPath, defaultConfig); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		logger.Info("Created default config file", "path", configPath)
		defaultConfig.applyEnv()
		return defaultConfig, defaultConfig.Validate()
	}

	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	config.applyDefaults()
	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	logger.Info("Loaded configuration", "path", configPath)
	return &config, nil
}

// SaveConfig saves configuration to the specified config file path
func SaveConfig(configPath string, config *Config) error {
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	logger.Info("Saved configuration", "path", configPath)
	return nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Log.File == "" {
		c.Log.File = d.Log.File
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Storage.LogDirectory == "" {
		c.Storage.LogDirectory = d.Storage.LogDirectory
	}
	if c.Storage.Concurrency == 0 {
		c.Storage.Concurrency = d.Storage.Concurrency
	}
	if c.Append.Sheet == "" {
		c.Append.Sheet = d.Append.Sheet
	}
	if c.Append.MaxColWidth == 0 {
		c.Append.MaxColWidth = d.Append.MaxColWidth
	}
	if c.Append.IntFormat == "" {
		c.Append.IntFormat = d.Append.IntFormat
	}
	if c.Append.FloatFormat == "" {
		c.Append.FloatFormat = d.Append.FloatFormat
	}
	if c.Append.DateFormat == "" {
		c.Append.DateFormat = d.Append.DateFormat
	}
	if c.Append.DateTimeFormat == "" {
		c.Append.DateTimeFormat = d.Append.DateTimeFormat
	}
	if c.Journal.Path == "" {
		c.Journal.Path = d.Journal.Path
	}
	if c.Notify.Exchange == "" {
		c.Notify.Exchange = d.Notify.Exchange
	}
	if c.Notify.RoutingKey == "" {
		c.Notify.RoutingKey = d.Notify.RoutingKey
	}
	if c.UI.LabelWidth == 0 {
		c.UI.LabelWidth = d.UI.LabelWidth
	}
	if len(c.Forms) == 0 {
		c.Forms = d.Forms
	}
}

// applyEnv lets SHEETLOG_* variables (typically from .env) override the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("SHEETLOG_LOG_DIRECTORY"); v != "" {
		c.Storage.LogDirectory = v
	}
	if v := os.Getenv("SHEETLOG_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("SHEETLOG_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SHEETLOG_JOURNAL_PATH"); v != "" {
		c.Journal.Path = v
	}
	if v := os.Getenv("SHEETLOG_JOURNAL_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Journal.Enabled = enabled
		}
	}
	if v := os.Getenv("SHEETLOG_AMQP_URL"); v != "" {
		c.Notify.AMQPURL = v
	}
}

// Validate reports every problem found in the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Storage.Concurrency < 1 {
		problems = append(problems, fmt.Sprintf("storage.concurrency must be at least 1, got %d", c.Storage.Concurrency))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.Append.Options(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		problems = append(problems, "journal.path is required when the journal is enabled")
	}

	seenForms := make(map[string]bool)
	for i, form := range c.Forms {
		if form.Name == "" {
			problems = append(problems, fmt.Sprintf("forms[%d] has no name", i))
			continue
		}
		if seenForms[form.Name] {
			problems = append(problems, fmt.Sprintf("form %q is defined twice", form.Name))
		}
		seenForms[form.Name] = true
		problems = append(problems, form.problems()...)
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (f FormConfig) problems() []string {
	var problems []string
	if len(f.Files) == 0 {
		problems = append(problems, fmt.Sprintf("form %q has no files", f.Name))
	}
	seenFiles := make(map[string]bool)
	for _, file := range f.Files {
		key := filepath.Clean(file)
		if seenFiles[key] {
			problems = append(problems, fmt.Sprintf("form %q lists file %q twice", f.Name, file))
		}
		seenFiles[key] = true
	}

	if len(f.Fields) == 0 {
		problems = append(problems, fmt.Sprintf("form %q has no fields", f.Name))
	}
	if _, err := f.DatasetFields(); err != nil {
		problems = append(problems, fmt.Sprintf("form %q: %v", f.Name, err))
	}
	return problems
}

// Options converts the append settings into writer options.
func (a AppendConfig) Options() (excel.AppendOptions, error) {
	header, err := excel.ParseHeaderMode(a.Header)
	if err != nil {
		return excel.AppendOptions{}, err
	}
	return excel.AppendOptions{
		Sheet:          a.Sheet,
		MaxColWidth:    a.MaxColWidth,
		AutoFilter:     a.AutoFilter,
		IntFormat:      a.IntFormat,
		FloatFormat:    a.FloatFormat,
		DateFormat:     a.DateFormat,
		DateTimeFormat: a.DateTimeFormat,
		Header:         header,
	}, nil
}

// DatasetFields converts the form fields into typed dataset fields.
func (f FormConfig) DatasetFields() ([]dataset.Field, error) {
	fields := make([]dataset.Field, 0, len(f.Fields))
	seen := make(map[string]bool)
	for _, fc := range f.Fields {
		if fc.Name == "" {
			return nil, fmt.Errorf("field without name")
		}
		if seen[fc.Name] {
			return nil, fmt.Errorf("field %q is defined twice", fc.Name)
		}
		seen[fc.Name] = true

		kind, err := dataset.ParseKind(fc.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", fc.Name, err)
		}
		fields = append(fields, dataset.Field{Name: fc.Name, Kind: kind, Required: fc.Required})
	}
	return fields, nil
}
