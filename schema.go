package aior

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SchemaNamer lets a schema type choose its component name. By default the
// Go type name is used.
type SchemaNamer interface {
	SchemaName() string
}

// Schema is the validation and documentation descriptor of one Go struct
// type. It is built once per type and cached.
type Schema struct {
	name    string
	typ     reflect.Type
	fields  []*schemaField
	parents []reflect.Type
}

type schemaField struct {
	goName     string
	wireName   string
	title      string
	doc        string
	index      []int
	typ        reflect.Type
	optional   bool
	hasDefault bool
	defaultRaw string
	validate   string
}

func (f *schemaField) required() bool { return !f.optional && !f.hasDefault }

var schemaCache sync.Map // reflect.Type → *Schema

// SchemaFor returns the cached Schema for t, building it on first use.
// Pointer types are unwrapped; anything other than a struct is rejected.
func SchemaFor(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*Schema), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidSchema, t)
	}

	s := &Schema{name: schemaName(t), typ: t}
	if err := s.collect(t, nil); err != nil {
		return nil, err
	}

	actual, _ := schemaCache.LoadOrStore(t, s)
	return actual.(*Schema), nil
}

// MustSchema is SchemaFor for a type parameter. It panics on invalid types.
func MustSchema[T any]() *Schema {
	s, err := SchemaFor(reflect.TypeFor[T]())
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the component name of the schema. Anonymous structs have no name.
func (s *Schema) Name() string { return s.name }

// Type returns the underlying Go type.
func (s *Schema) Type() reflect.Type { return s.typ }

// FieldNames returns the wire names of all fields, parent fields first.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.wireName
	}
	return names
}

// Required returns the wire names of fields that have no default and are not optional.
func (s *Schema) Required() []string {
	var req []string
	for _, f := range s.fields {
		if f.required() {
			req = append(req, f.wireName)
		}
	}
	return req
}

// collect walks t's fields. Embedded structs without a json name are parents:
// their fields are merged in place, ahead of the fields that follow them.
func (s *Schema) collect(t reflect.Type, index []int) error {
	for i := range t.NumField() {
		f := t.Field(i)
		idx := append(append([]int(nil), index...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct && f.Tag.Get("json") == "" {
			s.parents = append(s.parents, f.Type)
			if err := s.collect(f.Type, idx); err != nil {
				return err
			}
			continue
		}

		if !f.IsExported() {
			continue
		}

		wire := jsonFieldName(f)
		if wire == "-" {
			continue
		}

		sf := &schemaField{
			goName:   f.Name,
			wireName: wire,
			title:    f.Tag.Get("title"),
			doc:      f.Tag.Get("doc"),
			index:    idx,
			typ:      f.Type,
			optional: f.Type.Kind() == reflect.Pointer,
			validate: f.Tag.Get("validate"),
		}
		if sf.title == "" {
			sf.title = fieldTitle(wire)
		}
		if def, ok := f.Tag.Lookup("default"); ok {
			sf.hasDefault = true
			sf.defaultRaw = def
		}

		// A redeclared field replaces the parent's, keeping its position.
		replaced := false
		for j, existing := range s.fields {
			if existing.wireName == wire {
				s.fields[j] = sf
				replaced = true
				break
			}
		}
		if !replaced {
			s.fields = append(s.fields, sf)
		}
	}
	return nil
}

// JSONSchema is the subset of the OpenAPI 3.0 schema object this package emits.
type JSONSchema struct {
	Ref                  string      `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Title                string      `json:"title,omitempty" yaml:"title,omitempty"`
	Type                 string      `json:"type,omitempty" yaml:"type,omitempty"`
	Format               string      `json:"format,omitempty" yaml:"format,omitempty"`
	Description          string      `json:"description,omitempty" yaml:"description,omitempty"`
	Properties           Properties  `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items                *JSONSchema `json:"items,omitempty" yaml:"items,omitempty"`
	AdditionalProperties *JSONSchema `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	Required             []string    `json:"required,omitempty" yaml:"required,omitempty"`
	Default              any         `json:"default,omitempty" yaml:"default,omitempty"`
	Enum                 []string    `json:"enum,omitempty" yaml:"enum,omitempty"`
	Minimum              *float64    `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum              *float64    `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinLength            *int        `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength            *int        `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	MinItems             *int        `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems             *int        `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
}

// Describe returns the JSON Schema description of s. Nested named schema
// types are emitted as $ref entries.
func (s *Schema) Describe() JSONSchema {
	return s.describe(nil)
}

// describe builds the description; seen is called for every named schema
// referenced from it (not for s itself).
func (s *Schema) describe(seen func(*Schema)) JSONSchema {
	js := JSONSchema{
		Title: s.name,
		Type:  "object",
	}
	for _, f := range s.fields {
		prop := typeToSchema(f.typ, seen)
		if prop.Ref == "" {
			prop.Title = f.title
			prop.Description = f.doc
			applyConstraintTags(&prop, f.typ, f.validate)
			if f.hasDefault {
				prop.Default = f.defaultRaw
			}
		}
		js.Properties = append(js.Properties, Property{Name: f.wireName, Schema: prop})
		if f.required() {
			js.Required = append(js.Required, f.wireName)
		}
	}
	if seen != nil {
		for _, pt := range s.parents {
			if ps, err := SchemaFor(pt); err == nil && ps.name != "" {
				seen(ps)
			}
		}
	}
	return js
}

const componentsPrefix = "#/components/schemas/"

// typeToSchema converts a Go type to a JSONSchema, reporting named struct
// types to seen and referencing them by name.
func typeToSchema(t reflect.Type, seen func(*Schema)) JSONSchema {
	if t.Kind() == reflect.Pointer {
		return typeToSchema(t.Elem(), seen)
	}

	switch t {
	case reflect.TypeFor[time.Time]():
		return JSONSchema{Type: "string", Format: "date-time"}
	case reflect.TypeFor[time.Duration]():
		// encoding/json writes durations as integer nanoseconds.
		return JSONSchema{Type: "integer", Format: "int64"}
	case reflect.TypeFor[Void]():
		return JSONSchema{}
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		return JSONSchema{Type: "string"}
	case reflect.Bool:
		return JSONSchema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return JSONSchema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return JSONSchema{Type: "number"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return JSONSchema{Type: "string", Format: "byte"}
		}
		items := typeToSchema(t.Elem(), seen)
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Map:
		val := typeToSchema(t.Elem(), seen)
		return JSONSchema{Type: "object", AdditionalProperties: &val}
	case reflect.Struct:
		s, err := SchemaFor(t)
		if err != nil {
			return JSONSchema{Type: "object"}
		}
		if s.name == "" {
			return s.describe(seen)
		}
		if seen != nil {
			seen(s)
		}
		return JSONSchema{Ref: componentsPrefix + s.name}
	default:
		return JSONSchema{}
	}
}

// applyConstraintTags maps validator tags onto JSON Schema keywords.
func applyConstraintTags(js *JSONSchema, t reflect.Type, tag string) {
	if tag == "" {
		return
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for rule := range strings.SplitSeq(tag, ",") {
		name, param, _ := strings.Cut(rule, "=")
		switch name {
		case "min", "gte", "max", "lte", "len":
			applyBound(js, t.Kind(), name, param)
		case "oneof":
			js.Enum = strings.Fields(param)
		case "dive":
			return
		}
	}
}

func applyBound(js *JSONSchema, kind reflect.Kind, name, param string) {
	lower := name == "min" || name == "gte" || name == "len"
	upper := name == "max" || name == "lte" || name == "len"

	//exhaustive:ignore
	switch kind {
	case reflect.String:
		n, err := strconv.Atoi(param)
		if err != nil {
			return
		}
		if lower {
			js.MinLength = &n
		}
		if upper {
			js.MaxLength = &n
		}
	case reflect.Slice, reflect.Array, reflect.Map:
		n, err := strconv.Atoi(param)
		if err != nil {
			return
		}
		if lower {
			js.MinItems = &n
		}
		if upper {
			js.MaxItems = &n
		}
	default:
		if !isNumericKind(kind) {
			return
		}
		f, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return
		}
		if lower {
			js.Minimum = &f
		}
		if upper {
			js.Maximum = &f
		}
	}
}

func isNumericKind(k reflect.Kind) bool {
	//exhaustive:ignore
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// jsonFieldName returns the JSON field name for a struct field.
func jsonFieldName(f reflect.StructField) string {
	name, _ := tagOptions(f.Tag.Get("json"))
	if name == "" {
		return f.Name
	}
	return name
}

// tagOptions splits a struct tag value on comma and returns
// the name and remaining options.
func tagOptions(tag string) (string, string) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts
}

// nonWord matches one character that cannot appear in a schema name or
// operationId.
var nonWord = regexp.MustCompile(`\W`)

func schemaName(t reflect.Type) string {
	if n, ok := reflect.New(t).Elem().Interface().(SchemaNamer); ok {
		return n.SchemaName()
	}
	if t.Name() == "" {
		return ""
	}
	// Instantiated generics carry their type arguments in the name.
	return strings.Trim(nonWord.ReplaceAllString(t.Name(), "_"), "_")
}

// fieldTitle turns a wire name like "user_name" into "User Name".
func fieldTitle(wire string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(wire, "_", " "))
}
