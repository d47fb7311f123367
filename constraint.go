package aior

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := jsonFieldName(f)
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RegisterConstraint adds a custom validate tag usable on schema fields.
// It must be called before any request is served.
func RegisterConstraint(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}

// checkConstraints runs the validate tags of v's type and converts failures
// into field errors located by wire names.
func checkConstraints(v reflect.Value) ValidationErrors {
	if !v.CanAddr() {
		return nil
	}
	err := validate.Struct(v.Addr().Interface())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{{Loc: []any{rootLoc}, Msg: err.Error(), Type: "value_error"}}
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Loc:  locFromNamespace(v.Type(), fe.StructNamespace()),
			Msg:  constraintMessage(fe),
			Type: constraintKindPrefix + fe.Tag(),
		})
	}
	return out
}

// locFromNamespace translates a validator struct namespace such as
// "Shop.Items[0].Name" into a wire location like ["items", 0, "name"].
// Embedded parents contribute no segment.
func locFromNamespace(root reflect.Type, ns string) []any {
	segments := strings.Split(ns, ".")
	if len(segments) > 0 {
		segments = segments[1:]
	}

	loc := []any{}
	t := root
	for _, seg := range segments {
		name, indexes := splitIndexes(seg)

		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			loc = append(loc, name)
			continue
		}
		f, ok := t.FieldByName(name)
		if !ok {
			loc = append(loc, name)
			continue
		}
		t = f.Type
		if !f.Anonymous || f.Tag.Get("json") != "" {
			loc = append(loc, jsonFieldName(f))
		}

		for _, idx := range indexes {
			if n, err := strconv.Atoi(idx); err == nil {
				loc = append(loc, n)
			} else {
				loc = append(loc, idx)
			}
			for t.Kind() == reflect.Pointer {
				t = t.Elem()
			}
			if t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map {
				t = t.Elem()
			}
		}
	}
	return loc
}

// splitIndexes splits "Items[0][key]" into "Items" and ["0", "key"].
func splitIndexes(seg string) (string, []string) {
	name, rest, found := strings.Cut(seg, "[")
	if !found {
		return seg, nil
	}
	var idx []string
	for _, part := range strings.Split("["+rest, "[") {
		if part == "" {
			continue
		}
		idx = append(idx, strings.TrimSuffix(part, "]"))
	}
	return name, idx
}

func constraintMessage(fe validator.FieldError) string {
	//exhaustive:ignore
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min", "gte":
		if isSizedKind(fe.Kind()) {
			return fmt.Sprintf("ensure this value has at least %s items or characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "max", "lte":
		if isSizedKind(fe.Kind()) {
			return fmt.Sprintf("ensure this value has at most %s items or characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("ensure this value is greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("ensure this value is less than %s", fe.Param())
	case "len":
		return fmt.Sprintf("ensure this value has exactly %s items or characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("value is not a valid enumeration member; permitted: %s", fe.Param())
	case "email":
		return "value is not a valid email address"
	case "url":
		return "invalid or missing URL scheme"
	case "uuid", "uuid4":
		return "value is not a valid uuid"
	default:
		return fmt.Sprintf("failed on the %q constraint", fe.Tag())
	}
}

func isSizedKind(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Slice || k == reflect.Array || k == reflect.Map
}
