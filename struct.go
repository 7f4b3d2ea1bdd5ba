package pipe

import (
	"fmt"
	"reflect"
	"strings"
)

// Struct should be embedded into any struct argument to enable named
// matching. The exported fields of the struct are filled by name from the
// piped mapping.
//
// The name of a field is its lowercased Go name. It can be set verbatim with
// a `pipe:"name"` tag. Options follow the name after a comma:
//
//   - optional: the field is left as the zero value if the name is absent.
//   - rest: the field, which must be a map with string keys, receives the
//     entries no other field matched. It is only filled during keyword
//     expansion, never by Inject.
type Struct struct {
	structMarker
}

// structMarker is embedded so isStruct can detect Struct even when it is
// embedded under another name.
type structMarker struct{}

var structMarkerType = reflect.TypeOf(structMarker{})

// isStruct returns true if the given type is a struct (or pointer to one)
// that embeds Struct.
func isStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && isStructField(sf) {
			return true
		}
	}

	return false
}

// isStructField returns true if the field is the Struct marker (or anything
// that embeds the marker).
func isStructField(sf reflect.StructField) bool {
	if !sf.Anonymous {
		return false
	}
	if sf.Type == structMarkerType {
		return true
	}
	if sf.Type.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < sf.Type.NumField(); i++ {
		if isStructField(sf.Type.Field(i)) {
			return true
		}
	}

	return false
}

// param is a single named input of a function. For struct arguments the
// index is the field index, otherwise it is the argument position.
type param struct {
	Name     string
	Index    int
	Type     reflect.Type
	Optional bool
}

// structParams holds the named fields of a struct argument.
type structParams struct {
	typ    reflect.Type
	ptr    bool
	fields []*param
	rest   *param
}

func newStructParams(typ reflect.Type) (*structParams, error) {
	result := &structParams{}
	if typ.Kind() == reflect.Ptr {
		result.ptr = true
		typ = typ.Elem()
	}

	// Verify our value is a struct
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("struct expected, got %s", typ.Kind())
	}
	result.typ = typ

	seen := map[string]struct{}{}
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)

		// Ignore unexported fields and our struct marker
		if sf.PkgPath != "" || isStructField(sf) {
			continue
		}

		name, options := fieldName(sf)
		if name == "-" {
			continue
		}

		field := &param{
			Name:  name,
			Index: i,
			Type:  sf.Type,
		}

		if _, ok := options["rest"]; ok {
			if result.rest != nil {
				return nil, fmt.Errorf("only one rest field allowed, got %q and %q",
					result.rest.Name, sf.Name)
			}
			if sf.Type.Kind() != reflect.Map || sf.Type.Key().Kind() != reflect.String {
				return nil, fmt.Errorf("rest field %q must be a map with string keys", sf.Name)
			}

			result.rest = field
			continue
		}

		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate field name %q", name)
		}
		seen[name] = struct{}{}

		_, field.Optional = options["optional"]
		result.fields = append(result.fields, field)
	}

	return result, nil
}

// fieldName returns the name and the tag options of a struct field.
func fieldName(sf reflect.StructField) (string, map[string]struct{}) {
	name := strings.ToLower(sf.Name)

	// Parse out the tag if there is one
	options := map[string]struct{}{}
	if tag := sf.Tag.Get("pipe"); tag != "" {
		parts := strings.Split(tag, ",")

		// If we have a name set, then override the name
		if parts[0] != "" {
			name = parts[0]
		}

		for _, v := range parts[1:] {
			options[strings.TrimSpace(v)] = struct{}{}
		}
	}

	return name, options
}

// newValue returns a fresh settable struct value.
func (s *structParams) newValue() reflect.Value {
	return reflect.New(s.typ).Elem()
}

// callIn returns the argument list for a populated struct value.
func (s *structParams) callIn(v reflect.Value) []reflect.Value {
	if s.ptr {
		return []reflect.Value{v.Addr()}
	}

	return []reflect.Value{v}
}
