package aior

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"
)

// paramSpec describes one marker field of a request type.
type paramSpec struct {
	field  int
	name   string
	doc    string
	in     Location
	typ    reflect.Type
	schema *Schema // nil for non-struct bodies
	ptr    bool    // marker holds *T for a struct T
}

// requestSpec is the binding descriptor of a request type, computed once at
// registration.
type requestSpec struct {
	typ    reflect.Type
	params []paramSpec
	raw    []int
}

// newRequestSpec inspects a request type. Every exported field must be a
// marker or RawRequest.
func newRequestSpec(t reflect.Type) (*requestSpec, error) {
	rs := &requestSpec{typ: t}
	if t == reflect.TypeFor[Void]() {
		return rs, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidRequestType, t)
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if f.Type == reflect.TypeFor[RawRequest]() {
			rs.raw = append(rs.raw, i)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if !f.Type.Implements(markerType) {
			return nil, fmt.Errorf("%w: %s.%s is not a Body, Query, Header or Path marker",
				ErrInvalidRequestType, t.Name(), f.Name)
		}

		m := reflect.Zero(f.Type).Interface().(marker)
		p := paramSpec{
			field: i,
			name:  f.Tag.Get("name"),
			doc:   f.Tag.Get("doc"),
			in:    m.location(),
			typ:   m.schemaType(),
		}
		if p.name == "" {
			p.name = snakeCase(f.Name)
		}

		s, err := SchemaFor(p.typ)
		switch {
		case err == nil && p.typ.Kind() == reflect.Pointer && p.typ.Elem().Kind() == reflect.Pointer:
			return nil, fmt.Errorf("%w: %s.%s: multi-level pointer %s", ErrInvalidRequestType, t.Name(), f.Name, p.typ)
		case err == nil:
			p.schema = s
			p.ptr = p.typ.Kind() == reflect.Pointer
		case p.in != InBody:
			return nil, fmt.Errorf("%w: %s.%s: %w", ErrInvalidRequestType, t.Name(), f.Name, err)
		}
		rs.params = append(rs.params, p)
	}
	return rs, nil
}

// param returns the first parameter bound from in.
func (rs *requestSpec) param(in Location) (paramSpec, bool) {
	for _, p := range rs.params {
		if p.in == in {
			return p, true
		}
	}
	return paramSpec{}, false
}

// bind resolves every parameter of the request type. Field errors from all
// parameters are collected, in declaration order, into one ValidationErrors.
// A non-validation error (for example an oversized body) is returned as is.
func (rs *requestSpec) bind(r *http.Request, pathParams map[string]string) (reflect.Value, error) {
	req := reflect.New(rs.typ)
	if len(rs.params) == 0 && len(rs.raw) == 0 {
		return req, nil
	}
	elem := req.Elem()

	for _, i := range rs.raw {
		elem.Field(i).Set(reflect.ValueOf(RawRequest{Request: r}))
	}

	var errs ValidationErrors
	for _, p := range rs.params {
		var raw any
		switch p.in {
		case InBody:
			body, berrs, err := readJSONBody(r)
			if err != nil {
				return reflect.Value{}, err
			}
			if len(berrs) > 0 {
				errs = append(errs, berrs...)
				continue
			}
			raw = body
		case InQuery:
			raw = r.URL.Query()
		case InHeader:
			raw = r.Header
		case InPath:
			if pathParams == nil {
				pathParams = map[string]string{}
			}
			raw = pathParams
		}

		val, perrs := p.parse(raw)
		if len(perrs) > 0 {
			errs = append(errs, perrs...)
			continue
		}
		if p.ptr {
			val = val.Addr()
		}
		elem.Field(p.field).Field(0).Set(val)
	}

	if len(errs) > 0 {
		return reflect.Value{}, errs
	}
	return req, nil
}

func (p paramSpec) parse(raw any) (reflect.Value, ValidationErrors) {
	if p.schema != nil {
		return p.schema.Parse(raw)
	}
	if raw == nil {
		return reflect.Value{}, ValidationErrors{{Loc: []any{rootLoc}, Msg: "none is not an allowed value", Type: KindNone}}
	}
	val, errs := coerce(p.typ, raw)
	if len(errs) > 0 {
		return reflect.Value{}, errs.rooted()
	}
	return val, nil
}

// rooted gives top-level errors without a location the __root__ location.
func (v ValidationErrors) rooted() ValidationErrors {
	for i := range v {
		if len(v[i].Loc) == 0 {
			v[i].Loc = []any{rootLoc}
		}
	}
	return v
}

// readJSONBody decodes the request body. An empty body reads as an empty
// object. The body is buffered so several Body markers can share it.
func readJSONBody(r *http.Request) (any, ValidationErrors, error) {
	data, err := bufferBody(r)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, nil, Errorf(http.StatusRequestEntityTooLarge, "request body exceeds %d bytes", mbe.Limit)
		}
		return nil, nil, Errorf(http.StatusBadRequest, "read body: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, ValidationErrors{{Loc: []any{bodyLoc}, Msg: err.Error(), Type: KindJSONDecode}}, nil
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		msg := "invalid character after top-level value"
		if err != nil {
			msg = err.Error()
		}
		return nil, ValidationErrors{{Loc: []any{bodyLoc}, Msg: msg, Type: KindJSONDecode}}, nil
	}
	return v, nil, nil
}

func bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

// snakeCase converts a Go identifier such as "UserID" to "user_id".
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
