package aior

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
}

func fieldErr(msg, kind string) ValidationErrors {
	return ValidationErrors{{Loc: []any{}, Msg: msg, Type: kind}}
}

// coerce converts a raw JSON or string value to type t. String inputs are
// parsed for numeric and boolean targets, so query, path and header values
// share the rules used for bodies.
func coerce(t reflect.Type, raw any) (reflect.Value, ValidationErrors) {
	if t.Kind() == reflect.Pointer {
		if raw == nil {
			return reflect.Zero(t), nil
		}
		elem, errs := coerce(t.Elem(), raw)
		if len(errs) > 0 {
			return reflect.Value{}, errs
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}

	switch t {
	case timeType:
		return coerceTime(raw)
	case durationType:
		return coerceDuration(raw)
	}

	out := reflect.New(t).Elem()

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		s, ok := asString(raw)
		if !ok {
			return reflect.Value{}, fieldErr("str type expected", KindString)
		}
		out.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := asInt(raw)
		if !ok || out.OverflowInt(n) {
			return reflect.Value{}, fieldErr("value is not a valid integer", KindInteger)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := asUint(raw)
		if !ok || out.OverflowUint(n) {
			return reflect.Value{}, fieldErr("value is not a valid integer", KindInteger)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, ok := asFloat(raw)
		if !ok || out.OverflowFloat(f) {
			return reflect.Value{}, fieldErr("value is not a valid float", KindFloat)
		}
		out.SetFloat(f)
	case reflect.Bool:
		b, ok := asBool(raw)
		if !ok {
			return reflect.Value{}, fieldErr("value could not be parsed to a boolean", KindBool)
		}
		out.SetBool(b)
	case reflect.Slice:
		return coerceSlice(t, raw)
	case reflect.Map:
		return coerceMap(t, raw)
	case reflect.Struct:
		s, err := SchemaFor(t)
		if err != nil {
			return reflect.Value{}, fieldErr(err.Error(), KindDict)
		}
		if errs := s.decode(raw, out); len(errs) > 0 {
			return reflect.Value{}, errs
		}
	case reflect.Interface:
		if raw != nil {
			rv := reflect.ValueOf(raw)
			if !rv.Type().AssignableTo(t) {
				return reflect.Value{}, fieldErr("value is not assignable to "+t.String(), "type_error")
			}
			out.Set(rv)
		}
	default:
		return reflect.Value{}, fieldErr("unsupported field type "+t.String(), "type_error")
	}
	return out, nil
}

func coerceSlice(t reflect.Type, raw any) (reflect.Value, ValidationErrors) {
	// []byte is written as base64 by encoding/json.
	if s, ok := raw.(string); ok && t.Elem().Kind() == reflect.Uint8 {
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return reflect.Value{}, fieldErr("value is not valid base64", KindBytes)
		}
		return reflect.ValueOf(b).Convert(t), nil
	}

	items, ok := raw.([]any)
	if !ok {
		return reflect.Value{}, fieldErr("value is not a valid list", KindList)
	}
	out := reflect.MakeSlice(t, 0, len(items))
	var errs ValidationErrors
	for i, item := range items {
		if item == nil && t.Elem().Kind() != reflect.Pointer {
			errs = append(errs, FieldError{Loc: []any{i}, Msg: "none is not an allowed value", Type: KindNone})
			continue
		}
		v, ierrs := coerce(t.Elem(), item)
		if len(ierrs) > 0 {
			errs = append(errs, ierrs.prefixed(i)...)
			continue
		}
		out = reflect.Append(out, v)
	}
	if len(errs) > 0 {
		return reflect.Value{}, errs
	}
	return out, nil
}

func coerceMap(t reflect.Type, raw any) (reflect.Value, ValidationErrors) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return reflect.Value{}, fieldErr("value is not a valid dict", KindDict)
	}
	out := reflect.MakeMapWithSize(t, len(obj))
	var errs ValidationErrors
	for k, item := range obj {
		// Object keys are always strings; numeric and bool keys are parsed
		// the way encoding/json writes them.
		key, kerrs := coerce(t.Key(), k)
		if len(kerrs) > 0 {
			errs = append(errs, kerrs.prefixed(k)...)
			continue
		}
		v, ierrs := coerce(t.Elem(), item)
		if len(ierrs) > 0 {
			errs = append(errs, ierrs.prefixed(k)...)
			continue
		}
		out.SetMapIndex(key, v)
	}
	if len(errs) > 0 {
		return reflect.Value{}, errs
	}
	return out, nil
}

func coerceTime(raw any) (reflect.Value, ValidationErrors) {
	if s, ok := raw.(string); ok {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return reflect.ValueOf(t), nil
			}
		}
	}
	return reflect.Value{}, fieldErr("invalid datetime format", KindDatetime)
}

// coerceDuration accepts Go duration strings and integer nanoseconds, the
// form encoding/json writes.
func coerceDuration(raw any) (reflect.Value, ValidationErrors) {
	if s, ok := raw.(string); ok {
		if d, err := time.ParseDuration(s); err == nil {
			return reflect.ValueOf(d), nil
		}
	}
	if n, ok := asInt(raw); ok {
		return reflect.ValueOf(time.Duration(n)), nil
	}
	return reflect.Value{}, fieldErr("invalid duration format", KindDuration)
}

func asString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

func asInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case float64:
		return integral(v)
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func asUint(raw any) (uint64, bool) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return unsignedIntegral(f)
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case float64:
		return unsignedIntegral(v)
	case int:
		return uint64(v), v >= 0
	case int64:
		return uint64(v), v >= 0
	default:
		return 0, false
	}
}

func unsignedIntegral(f float64) (uint64, bool) {
	if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
		return 0, false
	}
	return uint64(f), true
}

func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func asBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case json.Number:
		switch v.String() {
		case "0":
			return false, true
		case "1":
			return true, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true, true
		case "0", "false", "f", "no", "n", "off":
			return false, true
		}
	}
	return false, false
}
