package aior

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
)

// source looks up raw values by wire name.
type source interface {
	lookup(name string) (any, bool)
}

type mapSource map[string]any

func (m mapSource) lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

type stringMapSource map[string]string

func (m stringMapSource) lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// valuesSource flattens url.Values to their first value.
type valuesSource url.Values

func (v valuesSource) lookup(name string) (any, bool) {
	vals, ok := v[name]
	if !ok || len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

// headerSource looks names up case-insensitively.
type headerSource http.Header

func (h headerSource) lookup(name string) (any, bool) {
	vals := http.Header(h).Values(name)
	if len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

func asSource(raw any) (source, bool) {
	switch r := raw.(type) {
	case source:
		return r, true
	case map[string]any:
		return mapSource(r), true
	case map[string]string:
		return stringMapSource(r), true
	case url.Values:
		return valuesSource(r), true
	case http.Header:
		return headerSource(r), true
	default:
		return nil, false
	}
}

// Parse builds an instance of the schema type from raw data. raw may be a
// decoded JSON object (map[string]any), a map[string]string, url.Values or
// http.Header. On failure every failing field is reported and the returned
// value must not be used.
func (s *Schema) Parse(raw any) (reflect.Value, ValidationErrors) {
	v := reflect.New(s.typ).Elem()
	errs := s.decode(raw, v)
	if len(errs) > 0 && isRootErr(errs[0]) {
		return v, errs
	}

	// Fields that failed to decode are left zero; their constraint
	// failures would only repeat the decode error.
	failed := make(map[any]bool, len(errs))
	for _, e := range errs {
		failed[e.Loc[0]] = true
	}
	for _, e := range checkConstraints(v) {
		if len(e.Loc) > 0 && failed[e.Loc[0]] {
			continue
		}
		errs = append(errs, e)
	}
	return v, errs
}

func isRootErr(e FieldError) bool {
	return len(e.Loc) == 1 && e.Loc[0] == rootLoc
}

// Parse parses raw into a new T.
func Parse[T any](raw any) (*T, error) {
	s, err := SchemaFor(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	v, errs := s.Parse(raw)
	if len(errs) > 0 {
		return nil, errs
	}
	out := v.Addr().Interface().(*T)
	return out, nil
}

// decode coerces raw into v without constraint checks. Errors carry
// locations relative to v.
func (s *Schema) decode(raw any, v reflect.Value) ValidationErrors {
	src, ok := asSource(raw)
	if !ok {
		return ValidationErrors{{Loc: []any{rootLoc}, Msg: "value is not a valid dict", Type: KindDict}}
	}

	var errs ValidationErrors
	for _, f := range s.fields {
		val, present := src.lookup(f.wireName)
		if !present {
			switch {
			case f.hasDefault:
				val = f.defaultRaw
			case f.optional:
				continue
			default:
				errs = append(errs, FieldError{Loc: []any{f.wireName}, Msg: "field required", Type: KindMissing})
				continue
			}
		}

		if val == nil {
			if f.optional {
				continue
			}
			errs = append(errs, FieldError{Loc: []any{f.wireName}, Msg: "none is not an allowed value", Type: KindNone})
			continue
		}

		out, ferrs := coerce(f.typ, val)
		if len(ferrs) > 0 {
			errs = append(errs, ferrs.prefixed(f.wireName)...)
			continue
		}
		v.FieldByIndex(f.index).Set(out)
	}
	return errs
}

func (s *Schema) String() string {
	if s.name == "" {
		return fmt.Sprintf("schema(%s)", s.typ)
	}
	return "schema(" + s.name + ")"
}
