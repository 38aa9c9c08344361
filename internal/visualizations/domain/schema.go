package domain

import (
	"sort"
)

// FieldSpec documents one declared field of a schema.
type FieldSpec struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required"`
	Nullable    bool     `json:"nullable"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Constraints []string `json:"constraints,omitempty"`
}

// SchemaSpec is the declarative description of a schema: its recognized
// fields and whether unrecognized input fields are passed through
// (AllowUnknownFields) or rejected.
type SchemaSpec struct {
	Name               string      `json:"name"`
	Title              string      `json:"title,omitempty"`
	AllowUnknownFields bool        `json:"allow_unknown_fields"`
	Fields             []FieldSpec `json:"fields"`
}

// Declares reports whether name is a declared field.
func (s SchemaSpec) Declares(name string) bool {
	return s.index(name) >= 0
}

func (s SchemaSpec) index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// unknownKeys returns the keys of raw not declared by s, sorted.
func (s SchemaSpec) unknownKeys(raw map[string]any) []string {
	var out []string
	for k := range raw {
		if !s.Declares(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// sortErrors orders errors by declaration, unknown fields last.
func (s SchemaSpec) sortErrors(errs []FieldError) {
	rank := func(fe FieldError) int {
		if i := s.index(baseField(fe.Field)); i >= 0 {
			return i
		}
		return len(s.Fields)
	}
	sort.SliceStable(errs, func(i, j int) bool {
		ri, rj := rank(errs[i]), rank(errs[j])
		if ri != rj {
			return ri < rj
		}
		if ri == len(s.Fields) {
			return errs[i].Field < errs[j].Field
		}
		return false
	})
}

// Specs returns the descriptors of every schema in the set.
func Specs() []SchemaSpec {
	return []SchemaSpec{ListQuerySpec, SummarySpec, SummaryListSpec, DetailedViewSpec}
}

// SpecByName looks a descriptor up by schema name.
func SpecByName(name string) (SchemaSpec, bool) {
	for _, s := range Specs() {
		if s.Name == name {
			return s, true
		}
	}
	return SchemaSpec{}, false
}

// Schemas constructs and serializes the visualization schemas. It holds the
// id codec used by encoded and decoded id fields and is safe for concurrent
// use.
type Schemas struct {
	codec IDCodec
}

func NewSchemas(codec IDCodec) *Schemas {
	return &Schemas{codec: codec}
}

// Codec returns the id codec the schemas were built with.
func (s *Schemas) Codec() IDCodec {
	return s.codec
}

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }
