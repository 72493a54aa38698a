package formpath

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formpath/pkg/fieldpath"
	"github.com/goliatone/go-formpath/pkg/tree"
)

// HintSource selects where type hints come from.
type HintSource uint8

const (
	// HintsFromControls casts values using each control's declared hint.
	HintsFromControls HintSource = iota
	// HintsIgnored treats every value as text.
	HintsIgnored
)

// ParseHintSource maps a configuration string onto a HintSource.
func ParseHintSource(raw string) HintSource {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none", "ignore", "ignored", "off":
		return HintsIgnored
	default:
		return HintsFromControls
	}
}

// Config is passed explicitly to every serialize and resolve call. The zero
// value is not ready for use; start from DefaultConfig or NewConfig.
type Config struct {
	Notation   fieldpath.Notation
	Hints      HintSource
	AppendMode tree.AppendMode
	MaxIndex   int
	Strict     bool
	Logger     *slog.Logger
}

// DefaultConfig returns dot notation, control hints, append-always markers
// and tree.DefaultMaxIndex.
func DefaultConfig() Config {
	return Config{
		Notation:   fieldpath.NotationDots,
		Hints:      HintsFromControls,
		AppendMode: tree.AppendAlways,
		MaxIndex:   tree.DefaultMaxIndex,
	}
}

// Option customises a Config.
type Option func(*Config)

// NewConfig applies options on top of DefaultConfig.
func NewConfig(options ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithConfig replaces the configuration wholesale; later options still apply.
func WithConfig(c Config) Option {
	return func(cfg *Config) {
		*cfg = c
	}
}

// WithNotation selects dot or bracket notation.
func WithNotation(n fieldpath.Notation) Option {
	return func(cfg *Config) {
		cfg.Notation = n
	}
}

// WithHintSource selects where type hints come from.
func WithHintSource(source HintSource) Option {
	return func(cfg *Config) {
		cfg.Hints = source
	}
}

// WithAppendMode selects the append marker semantics.
func WithAppendMode(mode tree.AppendMode) Option {
	return func(cfg *Config) {
		cfg.AppendMode = mode
	}
}

// WithMaxIndex caps explicit list indices.
func WithMaxIndex(n int) Option {
	return func(cfg *Config) {
		if n >= 0 {
			cfg.MaxIndex = n
		}
	}
}

// WithStrict aborts serialization on the first conflicting insertion.
func WithStrict(strict bool) Option {
	return func(cfg *Config) {
		cfg.Strict = strict
	}
}

// WithLogger routes debug records (literal names, skipped insertions,
// unresolved error paths) to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// FileConfig is the JSON/YAML representation of Config used by the CLI.
type FileConfig struct {
	Notation   string `json:"notation" yaml:"notation"`
	Hints      string `json:"hints" yaml:"hints"`
	AppendMode string `json:"append" yaml:"append"`
	MaxIndex   *int   `json:"max_index" yaml:"max_index"`
	Strict     bool   `json:"strict" yaml:"strict"`
}

// ParseFileConfig decodes a YAML (or JSON, a YAML subset) configuration
// document.
func ParseFileConfig(data []byte) (FileConfig, error) {
	var fc FileConfig
	if strings.TrimSpace(string(data)) == "" {
		return fc, nil
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("formpath: parse config: %w", err)
	}
	return fc, nil
}

// Options converts the file settings into options. Empty settings keep the
// defaults.
func (fc FileConfig) Options() []Option {
	var options []Option
	if fc.Notation != "" {
		options = append(options, WithNotation(fieldpath.ParseNotation(fc.Notation)))
	}
	if fc.Hints != "" {
		options = append(options, WithHintSource(ParseHintSource(fc.Hints)))
	}
	if fc.AppendMode != "" {
		options = append(options, WithAppendMode(tree.ParseAppendMode(fc.AppendMode)))
	}
	if fc.MaxIndex != nil {
		options = append(options, WithMaxIndex(*fc.MaxIndex))
	}
	if fc.Strict {
		options = append(options, WithStrict(true))
	}
	return options
}
