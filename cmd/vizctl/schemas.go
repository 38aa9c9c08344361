package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runSchemas prints every schema descriptor, or one by name.
func runSchemas(w io.Writer, args []string) error {
	if len(args) == 0 {
		return writeJSON(w, domain.Specs())
	}
	spec, ok := domain.SpecByName(args[0])
	if !ok {
		return fmt.Errorf("unknown schema %q", args[0])
	}
	return writeJSON(w, spec)
}

// runValidate constructs a schema from a JSON document and prints its
// serialized form, or every validation error.
func runValidate(w io.Writer, stdin io.Reader, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: validate <schema> <file.json|->")
	}
	codec, err := codecFromEnv()
	if err != nil {
		return err
	}
	schemas := domain.NewSchemas(codec)

	var in io.Reader = stdin
	if args[1] != "-" {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	dec := json.NewDecoder(in)
	dec.UseNumber()

	var out any
	switch args[0] {
	case domain.SummaryListSpec.Name:
		var raw []map[string]any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode input: %w", err)
		}
		var list domain.SummaryList
		if list, err = schemas.NewSummaryList(raw); err == nil {
			out = list.Raw(codec)
		}
	default:
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode input: %w", err)
		}
		out, err = buildOne(schemas, args[0], raw)
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		if werr := writeJSON(w, verr.Errors); werr != nil {
			return werr
		}
		return err
	}
	if err != nil {
		return err
	}
	return writeJSON(w, out)
}

func buildOne(schemas *domain.Schemas, name string, raw map[string]any) (any, error) {
	codec := schemas.Codec()
	switch name {
	case domain.ListQuerySpec.Name:
		q, err := schemas.NewListQuery(raw)
		if err != nil {
			return nil, err
		}
		return q.Raw(codec), nil
	case domain.SummarySpec.Name:
		s, err := schemas.NewSummary(raw)
		if err != nil {
			return nil, err
		}
		return s.Raw(codec), nil
	case domain.DetailedViewSpec.Name:
		v, err := schemas.NewDetailedView(raw)
		if err != nil {
			return nil, err
		}
		return v.Raw(codec), nil
	}
	return nil, fmt.Errorf("unknown schema %q", name)
}
