// Package codegen turns a YAML schema of bundles and queries into Go source
// declaring them for kessoku.
package codegen

import (
	"bytes"
	"go/token"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSchema is returned when a schema fails validation.
var ErrInvalidSchema = eris.New("codegen: invalid schema")

// Schema is the root of a schema file.
type Schema struct {
	Package string   `yaml:"package"`
	Imports []string `yaml:"imports,omitempty"`
	Bundles []Bundle `yaml:"bundles,omitempty"`
	Queries []Query  `yaml:"queries,omitempty"`
}

// Bundle declares a bundle struct: one field per component.
type Bundle struct {
	Name   string        `yaml:"name"`
	Doc    string        `yaml:"doc,omitempty"`
	Fields []BundleField `yaml:"fields"`
}

// BundleField is one component of a bundle.
type BundleField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Query declares a query item struct.
type Query struct {
	Name   string       `yaml:"name"`
	Doc    string       `yaml:"doc,omitempty"`
	Fields []QueryField `yaml:"fields"`
}

// QueryField is one component access of a query.
type QueryField struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Access   string `yaml:"access,omitempty"` // "read" (default) or "write"
	Optional bool   `yaml:"optional,omitempty"`
}

// Load reads and parses the schema file at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reading schema %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "parsing schema %s", path)
	}
	return s, nil
}

// Parse decodes a schema document. Unknown keys are rejected.
func Parse(data []byte) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Schema
	if err := dec.Decode(&s); err != nil {
		return nil, eris.Wrap(err, "decoding yaml")
	}
	return &s, nil
}

// Validate checks the schema for errors the Go compiler or kessoku would
// only report later: invalid names, repeated component types in a bundle and
// conflicting access in a query.
func (s *Schema) Validate() error {
	if !token.IsIdentifier(s.Package) {
		return eris.Wrapf(ErrInvalidSchema, "package name %q is not an identifier", s.Package)
	}
	if len(s.Bundles) == 0 && len(s.Queries) == 0 {
		return eris.Wrap(ErrInvalidSchema, "schema declares no bundles or queries")
	}
	for _, imp := range s.Imports {
		if strings.TrimSpace(imp) == "" {
			return eris.Wrap(ErrInvalidSchema, "empty import path")
		}
	}

	names := make(map[string]bool)
	declare := func(kind, name string) error {
		if !token.IsIdentifier(name) {
			return eris.Wrapf(ErrInvalidSchema, "%s name %q is not an identifier", kind, name)
		}
		if names[name] {
			return eris.Wrapf(ErrInvalidSchema, "%s %s is declared twice", kind, name)
		}
		names[name] = true
		return nil
	}

	for _, b := range s.Bundles {
		if err := declare("bundle", b.Name); err != nil {
			return err
		}
		if err := b.validate(); err != nil {
			return err
		}
	}
	for _, q := range s.Queries {
		if err := declare("query", q.Name); err != nil {
			return err
		}
		if err := q.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bundle) validate() error {
	fields := make(map[string]bool, len(b.Fields))
	types := make(map[string]bool, len(b.Fields))
	for _, f := range b.Fields {
		if err := checkField(b.Name, f.Name, f.Type, fields); err != nil {
			return err
		}
		t := normalizeType(f.Type)
		if types[t] {
			return eris.Wrapf(ErrInvalidSchema,
				"%s has multiple %s fields; each type must occur at most once", b.Name, t)
		}
		types[t] = true
	}
	return nil
}

func (q *Query) validate() error {
	fields := make(map[string]bool, len(q.Fields))
	writes := make(map[string]bool, len(q.Fields))
	for _, f := range q.Fields {
		if err := checkField(q.Name, f.Name, f.Type, fields); err != nil {
			return err
		}
		write, err := f.isWrite()
		if err != nil {
			return eris.Wrapf(err, "%s.%s", q.Name, f.Name)
		}
		t := normalizeType(f.Type)
		if prev, seen := writes[t]; seen && (prev || write) {
			return eris.Wrapf(ErrInvalidSchema,
				"query %s requests %s more than once with write access", q.Name, t)
		}
		writes[t] = write
	}
	return nil
}

func (f QueryField) isWrite() (bool, error) {
	switch f.Access {
	case "", "read":
		return false, nil
	case "write":
		return true, nil
	}
	return false, eris.Wrapf(ErrInvalidSchema, "unknown access %q (want read or write)", f.Access)
}

// tag renders the struct tag for the field, or "" when none is needed.
func (f QueryField) tag() string {
	var opts []string
	if f.Optional {
		opts = append(opts, "opt")
	}
	if f.Access == "write" {
		opts = append(opts, "mut")
	}
	if len(opts) == 0 {
		return ""
	}
	return "`ecs:\"" + strings.Join(opts, ",") + "\"`"
}

func checkField(owner, name, typ string, seen map[string]bool) error {
	if !token.IsIdentifier(name) {
		return eris.Wrapf(ErrInvalidSchema, "%s field name %q is not an identifier", owner, name)
	}
	if seen[name] {
		return eris.Wrapf(ErrInvalidSchema, "%s field %s is declared twice", owner, name)
	}
	seen[name] = true
	if normalizeType(typ) == "" {
		return eris.Wrapf(ErrInvalidSchema, "%s.%s has no type", owner, name)
	}
	return nil
}

// normalizeType collapses whitespace so equal type expressions compare equal.
func normalizeType(t string) string {
	return strings.Join(strings.Fields(t), " ")
}
