// Package mask hides sensitive struct fields before they are logged.
package mask

import (
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const tagName = "mask"

// Placeholder replaces the value of every non-zero field tagged `mask:"true"`.
const Placeholder = "***masked***"

// StructToOrdMap flattens v into an ordered map keyed by field name, with
// nested structs joined by dots. Fields tagged `mask:"true"` are replaced by
// Placeholder unless they hold a zero value. Names come from the json tag,
// then the yaml tag, then the Go field name; fields tagged "-" are skipped.
// Non-struct inputs are returned under the empty key.
func StructToOrdMap(v any) *orderedmap.OrderedMap[string, any] {
	if v == nil {
		return nil
	}

	om := orderedmap.New[string, any]()
	flatten(om, reflect.ValueOf(v), "")
	return om
}

func flatten(om *orderedmap.OrderedMap[string, any], val reflect.Value, prefix string) {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			om.Set(prefix, nil)
			return
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		om.Set(prefix, val.Interface())
		return
	}

	typ := val.Type()
	for i := range val.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name, skip := fieldName(field)
		if skip {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		fv := val.Field(i)
		switch {
		case strings.EqualFold(field.Tag.Get(tagName), "true"):
			om.Set(name, hide(fv))
		case isStruct(fv):
			flatten(om, fv, name)
		default:
			om.Set(name, fv.Interface())
		}
	}
}

func isStruct(val reflect.Value) bool {
	if val.Kind() == reflect.Pointer {
		return !val.IsNil() && val.Elem().Kind() == reflect.Struct
	}
	return val.Kind() == reflect.Struct
}

func hide(val reflect.Value) any {
	switch val.Kind() { //nolint:exhaustive // remaining kinds are handled by IsZero below
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		if val.IsNil() {
			return nil
		}
	}
	if val.IsZero() {
		return val.Interface()
	}
	return Placeholder
}

// fieldName resolves the output name: json tag, yaml tag, then Go name.
func fieldName(field reflect.StructField) (string, bool) {
	for _, tag := range []string{"json", "yaml"} {
		raw, ok := field.Tag.Lookup(tag)
		if !ok {
			continue
		}
		if raw == "-" {
			return "", true
		}
		if name, _, _ := strings.Cut(raw, ","); name != "" {
			return name, false
		}
	}
	return field.Name, false
}
