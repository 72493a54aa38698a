package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	formpath "github.com/goliatone/go-formpath"
	"github.com/goliatone/go-formpath/pkg/display"
	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/formdef"
	pkgopenapi "github.com/goliatone/go-formpath/pkg/openapi"
	"github.com/goliatone/go-formpath/pkg/payload"
	"github.com/goliatone/go-formpath/pkg/submit"
	"github.com/goliatone/go-formpath/pkg/tui"
)

// errRejected is returned when the server answered with validation errors.
var errRejected = errors.New("submission rejected")

func serializeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serialize",
		Usage: "print the payload a form would submit",
		Flags: append(formFlags(),
			&cli.StringFlag{Name: "format", Value: "json", Usage: "json, form, formdata or dump"},
			&cli.BoolFlag{Name: "indent", Usage: "indent JSON output"},
		),
		Action: func(c *cli.Context) error {
			logger := newLogger(c)
			options, err := settings(c, logger)
			if err != nil {
				return err
			}
			input, err := openForm(c, logger)
			if err != nil {
				return err
			}
			f, err := input.provider.Snapshot(c.Context)
			if err != nil {
				return err
			}

			if c.String("format") == "dump" {
				root, err := formpath.Serialize(f, options...)
				if root == nil {
					return err
				}
				spew.Fdump(c.App.Writer, root.Interface())
				return nil
			}

			body, err := formpath.Encode(f, payload.ParseFormat(c.String("format")), options...)
			if err != nil {
				return err
			}
			data := body.Data
			if c.Bool("indent") && body.ContentType == payload.FormatJSON.ContentType() {
				var out bytes.Buffer
				if err := json.Indent(&out, data, "", "  "); err != nil {
					return err
				}
				data = out.Bytes()
			}
			if !strings.HasPrefix(body.ContentType, "multipart/") {
				data = append(data, '\n')
			}
			return writeOutput(c, "", data)
		},
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "find the controls server error paths refer to",
		ArgsUsage: "[error path...]",
		Flags: append(formFlags(),
			&cli.StringFlag{Name: "errors", Aliases: []string{"e"}, Usage: "JSON error payload to apply"},
			&cli.BoolFlag{Name: "summary", Usage: "print an HTML error summary"},
			&cli.StringFlag{Name: "annotate", Usage: "write the HTML page with validation attributes to this file"},
		),
		Action: func(c *cli.Context) error {
			logger := newLogger(c)
			options, err := settings(c, logger)
			if err != nil {
				return err
			}
			input, err := openForm(c, logger)
			if err != nil {
				return err
			}
			f, err := input.provider.Snapshot(c.Context)
			if err != nil {
				return err
			}

			for _, path := range c.Args().Slice() {
				ref, ok := formpath.Resolve(f, path, options...)
				if !ok {
					fmt.Fprintf(c.App.Writer, "%s: not found\n", path)
					continue
				}
				fmt.Fprintf(c.App.Writer, "%s: %s #%d (control %d)\n", path, ref.Name, ref.Position, ref.Index)
			}

			if c.String("errors") == "" {
				if c.Args().Len() == 0 {
					return errors.New("nothing to resolve: pass error paths or --errors")
				}
				return nil
			}
			data, err := os.ReadFile(c.String("errors"))
			if err != nil {
				return err
			}
			errs, err := payload.DecodeErrors(data)
			if err != nil {
				return err
			}

			sinks := []display.Sink{textSink{w: c.App.Writer, form: f}}
			var summary *display.Summary
			if c.Bool("summary") {
				if summary, err = display.NewSummary(f); err != nil {
					return err
				}
				sinks = append(sinks, summary)
			}
			if c.String("annotate") != "" {
				if input.html == nil {
					return errors.New("--annotate needs an HTML form")
				}
				sinks = append(sinks, input.html)
			}

			report := display.Apply(f, errs, formpath.NewConfig(options...).Resolver(), display.Multi(sinks...))
			if len(report.Unresolved) > 0 {
				logger.Info("error paths without a control", "paths", report.Unresolved)
			}

			if summary != nil {
				if _, err := summary.Render(c.App.Writer); err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer)
			}
			if path := c.String("annotate"); path != "" {
				return writeOutput(c, path, []byte(input.page.String()))
			}
			return nil
		},
	}
}

func fillCommand() *cli.Command {
	return &cli.Command{
		Name:  "fill",
		Usage: "fill a form interactively and save it as a form definition",
		Flags: append(formFlags(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "definition file (.yaml or .json); stdout when empty"},
		),
		Action: func(c *cli.Context) error {
			logger := newLogger(c)
			input, err := openForm(c, logger)
			if err != nil {
				return err
			}
			filler := tui.NewFiller(tui.WithLogger(logger), tui.WithPromptDriver(tui.NewSurveyDriver(c.App.ErrWriter)))
			f, err := filler.Provider(input.provider).Snapshot(c.Context)
			if err != nil {
				return err
			}
			data, err := formdef.Marshal(f, c.String("output"))
			if err != nil {
				return err
			}
			return writeOutput(c, c.String("output"), data)
		},
	}
}

func openapiCommand() *cli.Command {
	return &cli.Command{
		Name:  "openapi",
		Usage: "derive a form definition from an OpenAPI operation",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "OpenAPI document path or URL", Required: true},
			&cli.StringFlag{Name: "operation", Usage: "operation id; lists operations when empty"},
			&cli.IntFlag{Name: "rows", Value: 1, Usage: "rows generated for arrays of objects"},
			&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second, Usage: "remote document timeout"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "definition file (.yaml or .json); stdout when empty"},
		},
		Action: func(c *cli.Context) error {
			logger := newLogger(c)
			options, err := settings(c, logger)
			if err != nil {
				return err
			}
			src, err := pkgopenapi.ParseSource(c.String("source"))
			if err != nil {
				return err
			}
			loader := formpath.NewLoader(pkgopenapi.WithHTTPFallback(c.Duration("timeout")))
			doc, err := loader.Load(c.Context, src)
			if err != nil {
				return err
			}
			ops, err := formpath.NewParser().Operations(c.Context, doc)
			if err != nil {
				return err
			}

			id := c.String("operation")
			if id == "" {
				for _, id := range sortedOperationIDs(ops) {
					op := ops[id]
					fmt.Fprintf(c.App.Writer, "%s\t%s %s\t%s\n", id, op.Method, op.Path, op.Summary)
				}
				return nil
			}
			op, ok := ops[id]
			if !ok {
				return fmt.Errorf("operation %q not found", id)
			}

			cfg := formpath.NewConfig(options...)
			f, err := pkgopenapi.FormFor(op,
				pkgopenapi.WithNotation(cfg.Notation),
				pkgopenapi.WithArrayRows(c.Int("rows")),
			)
			if err != nil {
				return err
			}
			data, err := formdef.Marshal(f, c.String("output"))
			if err != nil {
				return err
			}
			return writeOutput(c, c.String("output"), data)
		},
	}
}

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "send a form to its action and show validation errors",
		Flags: append(formFlags(),
			&cli.StringFlag{Name: "format", Value: "form", Usage: "json, form or formdata"},
			&cli.StringFlag{Name: "action", Usage: "override the form action URL"},
			&cli.StringFlag{Name: "method", Usage: "override the form method"},
			&cli.StringSliceFlag{Name: "header", Aliases: []string{"H"}, Usage: "extra request header, \"Name: value\""},
			&cli.StringSliceFlag{Name: "hidden", Usage: "extra hidden field, name=value"},
			&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second, Usage: "request timeout"},
			&cli.BoolFlag{Name: "fill", Usage: "fill the form interactively before sending"},
		),
		Action: func(c *cli.Context) error {
			logger := newLogger(c)
			options, err := settings(c, logger)
			if err != nil {
				return err
			}
			input, err := openForm(c, logger)
			if err != nil {
				return err
			}

			provider := input.provider
			if c.Bool("fill") {
				filler := tui.NewFiller(tui.WithLogger(logger), tui.WithPromptDriver(tui.NewSurveyDriver(c.App.ErrWriter)))
				provider = filler.Provider(provider)
			}

			var current form.Form
			snapshot := form.ProviderFunc(func(ctx context.Context) (form.Form, error) {
				f, err := provider.Snapshot(ctx)
				current = f
				return f, err
			})

			submitOptions := []submit.Option{
				submit.WithFormat(payload.ParseFormat(c.String("format"))),
				submit.WithAction(c.String("action")),
				submit.WithMethod(c.String("method")),
				submit.WithFormOptions(options...),
				submit.WithLogger(logger),
				submit.WithSink(display.SinkFunc(func(ref *form.Ref, messages []string) {
					textSink{w: c.App.Writer, form: current}.Display(ref, messages)
				})),
			}
			for _, raw := range c.StringSlice("header") {
				name, value, ok := strings.Cut(raw, ":")
				if !ok {
					return fmt.Errorf("invalid header %q", raw)
				}
				submitOptions = append(submitOptions, submit.WithHeader(strings.TrimSpace(name), strings.TrimSpace(value)))
			}

			for _, raw := range c.StringSlice("hidden") {
				name, value, ok := strings.Cut(raw, "=")
				if !ok {
					return fmt.Errorf("invalid hidden field %q", raw)
				}
				submitOptions = append(submitOptions, submit.WithHidden(form.Hidden(name, value)))
			}

			s := submit.New(snapshot, submit.NewHTTPTransport(nil, c.Duration("timeout")), submitOptions...)
			ex, err := s.Submit(c.Context)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "%d %s\n", ex.Response.StatusCode, http.StatusText(ex.Response.StatusCode))
			if ex.Report == nil && len(ex.Response.Body) > 0 {
				fmt.Fprintf(c.App.Writer, "%s\n", bytes.TrimSpace(ex.Response.Body))
			}
			if ex.Report != nil && !ex.Report.Valid() {
				return errRejected
			}
			return nil
		},
	}
}

func sortedOperationIDs(ops map[string]pkgopenapi.Operation) []string {
	ids := make([]string, 0, len(ops))
	for id := range ops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
