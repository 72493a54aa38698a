package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	formpath "github.com/goliatone/go-formpath"
	"github.com/goliatone/go-formpath/pkg/fieldpath"
	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/formdef"
	"github.com/goliatone/go-formpath/pkg/htmlform"
	"github.com/goliatone/go-formpath/pkg/tree"
)

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "formpath",
		Usage:     "map form field names to structured payloads and back",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML or JSON settings file"},
			&cli.StringFlag{Name: "notation", Usage: "field name notation: dots or brackets"},
			&cli.StringFlag{Name: "hints", Usage: "type hint source: controls or ignore"},
			&cli.StringFlag{Name: "append", Usage: "array append mode: always (alias push) or group"},
			&cli.IntFlag{Name: "max-index", Usage: "largest accepted explicit array index"},
			&cli.BoolFlag{Name: "strict", Usage: "fail on the first conflicting field"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging on stderr"},
		},
		Commands: []*cli.Command{
			serializeCommand(),
			resolveCommand(),
			fillCommand(),
			openapiCommand(),
			submitCommand(),
		},
	}
}

// formFlags select the form a command works on.
func formFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "form", Aliases: []string{"f"}, Usage: "HTML page or JSON/YAML form definition", Required: true},
		&cli.StringFlag{Name: "select", Usage: "form id or name inside an HTML page"},
		&cli.StringFlag{Name: "hint-attr", Value: htmlform.DefaultHintAttribute, Usage: "attribute carrying type hints in HTML"},
	}
}

func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
}

// settings layers the config file and the global flags over the defaults.
func settings(c *cli.Context, logger *slog.Logger) ([]formpath.Option, error) {
	options := []formpath.Option{formpath.WithLogger(logger)}

	if path := c.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		fc, err := formpath.ParseFileConfig(data)
		if err != nil {
			return nil, err
		}
		options = append(options, fc.Options()...)
	}

	if c.IsSet("notation") {
		options = append(options, formpath.WithNotation(fieldpath.ParseNotation(c.String("notation"))))
	}
	if c.IsSet("hints") {
		options = append(options, formpath.WithHintSource(formpath.ParseHintSource(c.String("hints"))))
	}
	if c.IsSet("append") {
		options = append(options, formpath.WithAppendMode(tree.ParseAppendMode(c.String("append"))))
	}
	if c.IsSet("max-index") {
		options = append(options, formpath.WithMaxIndex(c.Int("max-index")))
	}
	if c.IsSet("strict") {
		options = append(options, formpath.WithStrict(c.Bool("strict")))
	}
	return options, nil
}

// formInput is the form a command operates on. page and html are set for
// HTML input only.
type formInput struct {
	provider form.Provider
	page     *htmlform.Document
	html     *htmlform.Form
}

func openForm(c *cli.Context, logger *slog.Logger) (*formInput, error) {
	path := c.String("form")
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		page, err := htmlform.Parse(file,
			htmlform.WithHintAttribute(c.String("hint-attr")),
			htmlform.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		selected, err := page.Form(c.String("select"))
		if err != nil {
			return nil, err
		}
		return &formInput{provider: selected, page: page, html: selected}, nil
	default:
		return &formInput{provider: formdef.NewSource(nil, path)}, nil
	}
}

func writeOutput(c *cli.Context, path string, data []byte) error {
	if path == "" {
		_, err := c.App.Writer.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "written to %s\n", path)
	return nil
}
