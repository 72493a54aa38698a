package formpath

import (
	"context"
	"fmt"
	"sort"

	internalLoader "github.com/goliatone/go-formpath/internal/openapi/loader"
	internalParser "github.com/goliatone/go-formpath/internal/openapi/parser"
	"github.com/goliatone/go-formpath/pkg/form"
	pkgopenapi "github.com/goliatone/go-formpath/pkg/openapi"
)

// NewLoader constructs an OpenAPI loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	cfg := pkgopenapi.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewParser constructs an OpenAPI parser backed by the internal
// implementation.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	cfg := pkgopenapi.NewParserOptions(options...)
	return internalParser.New(cfg)
}

// OperationForm loads src, picks the operation and derives its form. The
// form's control names are rendered in the notation of the given options.
func OperationForm(ctx context.Context, loader pkgopenapi.Loader, parser pkgopenapi.Parser, src pkgopenapi.Source, operationID string, options ...Option) (form.Form, pkgopenapi.Operation, error) {
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return form.Form{}, pkgopenapi.Operation{}, err
	}
	operations, err := parser.Operations(ctx, doc)
	if err != nil {
		return form.Form{}, pkgopenapi.Operation{}, err
	}

	op, ok := operations[operationID]
	if !ok {
		return form.Form{}, pkgopenapi.Operation{}, fmt.Errorf("formpath: operation %q not found (have %v)", operationID, operationIDs(operations))
	}

	cfg := NewConfig(options...)
	f, err := pkgopenapi.FormFor(op, pkgopenapi.WithNotation(cfg.Notation))
	if err != nil {
		return form.Form{}, op, err
	}
	return f, op, nil
}

func operationIDs(operations map[string]pkgopenapi.Operation) []string {
	ids := make([]string, 0, len(operations))
	for id := range operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
