package pipe

import (
	"fmt"
	"reflect"
)

// Pair is a single named value. A slice of pairs can start an Inject chain
// and can be returned by an injected function to update several entries.
type Pair struct {
	Key   string
	Value interface{}
}

// toMapping converts v into a new map of named values. Maps with string
// keys are copied, sequences must contain only pairs and structs contribute
// their exported fields.
func toMapping(v interface{}) (map[string]interface{}, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return mapEntries(rv)

	case reflect.Slice, reflect.Array:
		return pairEntries(rv)

	case reflect.Struct, reflect.Ptr:
		if sv := structValueOf(rv); sv.IsValid() {
			return FromStruct(sv.Interface()), nil
		}
	}

	return nil, fmt.Errorf("%w, got %T", ErrNotMapping, v)
}

// mapEntries copies a map with string keys.
func mapEntries(rv reflect.Value) (map[string]interface{}, error) {
	if k := rv.Type().Key().Kind(); k != reflect.String {
		return nil, fmt.Errorf("%w, got %s keys", ErrNotMapping, k)
	}

	result := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		result[iter.Key().String()] = iter.Value().Interface()
	}

	return result, nil
}

// pairEntries converts a sequence of pairs. Every element must be a pair.
func pairEntries(rv reflect.Value) (map[string]interface{}, error) {
	result := make(map[string]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		k, v, ok := pairOf(rv.Index(i))
		if !ok {
			return nil, fmt.Errorf("%w, element %d is not a key/value pair", ErrNotMapping, i)
		}

		result[k] = v
	}

	return result, nil
}

// pairOf returns the key and value of a Pair, or of a two element slice or
// array whose first element is a string.
func pairOf(rv reflect.Value) (string, interface{}, bool) {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		if p, ok := rv.Interface().(Pair); ok {
			return p.Key, p.Value, true
		}

	case reflect.Slice, reflect.Array:
		if rv.Len() != 2 {
			return "", nil, false
		}

		k := rv.Index(0)
		if k.Kind() == reflect.Interface && !k.IsNil() {
			k = k.Elem()
		}
		if k.Kind() != reflect.String {
			return "", nil, false
		}

		return k.String(), rv.Index(1).Interface(), true
	}

	return "", nil, false
}

// FromStruct returns the exported fields of the struct v (or pointer to a
// struct) as named values, using the same names Struct fields are matched
// by. Fields tagged `pipe:"-"` are skipped. This panics if v is not a
// struct.
func FromStruct(v interface{}) map[string]interface{} {
	sv := structValueOf(reflect.ValueOf(v))
	if !sv.IsValid() {
		panic(fmt.Sprintf("only struct or pointer to struct types are supported in FromStruct, got %T", v))
	}
	st := sv.Type()

	result := make(map[string]interface{}, st.NumField())
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.PkgPath != "" || isStructField(f) {
			continue
		}

		name, _ := fieldName(f)
		if name == "-" {
			continue
		}

		result[name] = sv.Field(i).Interface()
	}

	return result
}

func structValueOf(rv reflect.Value) reflect.Value {
	if k := rv.Kind(); k != reflect.Struct && k != reflect.Ptr {
		return reflect.Value{}
	}

	sv := rv
	if sv.Kind() == reflect.Ptr {
		if sv.IsNil() {
			return reflect.Value{}
		}

		// unwrap ptr
		sv = sv.Elem()
		if sv.Kind() != reflect.Struct {
			return reflect.Value{}
		}
	}

	return sv
}
