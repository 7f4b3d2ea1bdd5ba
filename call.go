package pipe

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// callScalar calls the function with v as the only argument.
func (f *Func) callScalar(log hclog.Logger, v interface{}) (interface{}, error) {
	return f.callArgs(log, []reflect.Value{reflect.ValueOf(v)})
}

// callSequence calls the function with each element of the slice or array
// as a positional argument.
func (f *Func) callSequence(log hclog.Logger, seq reflect.Value) (interface{}, error) {
	args := make([]reflect.Value, seq.Len())
	for i := range args {
		args[i] = seq.Index(i)
	}

	return f.callArgs(log, args)
}

// callKeywords calls the function with each entry of the map as a named
// argument. Every entry must be accepted by the function, either by a
// named argument, a rest field or a map catch-all argument.
func (f *Func) callKeywords(log hclog.Logger, m reflect.Value) (interface{}, error) {
	if k := m.Type().Key().Kind(); k != reflect.String {
		return nil, argInvalid(f, "keywords must be strings, got %s keys", k)
	}

	values := make(map[string]reflect.Value, m.Len())
	iter := m.MapRange()
	for iter.Next() {
		values[iter.Key().String()] = iter.Value()
	}

	switch {
	case f.mapArg:
		arg, err := f.mapArgValue(values)
		if err != nil {
			return nil, err
		}

		return f.call(log, []reflect.Value{arg})

	case f.structP != nil || f.params != nil:
		in, err := f.bind(values, true)
		if err != nil {
			return nil, err
		}

		return f.call(log, in)

	case len(values) > 0:
		return nil, argInvalid(f,
			"function does not accept keyword arguments, got %s",
			strings.Join(sortedValueKeys(values), ", "))

	default:
		// f(**{}) is a call without arguments
		return f.callArgs(log, nil)
	}
}

// callNamed calls the function with only the entries of values that the
// function declares by name. Unknown entries are ignored.
func (f *Func) callNamed(log hclog.Logger, values map[string]interface{}) (interface{}, error) {
	rvs := make(map[string]reflect.Value, len(values))
	for k, v := range values {
		rvs[k] = reflect.ValueOf(v)
	}

	ft := f.fn.Type()
	switch {
	case f.structP != nil || f.params != nil:
		in, err := f.bind(rvs, false)
		if err != nil {
			return nil, err
		}

		return f.call(log, in)

	case f.mapArg:
		// A catch-all declares no names so it receives nothing.
		return f.call(log, []reflect.Value{reflect.MakeMap(ft.In(0))})

	case ft.NumIn() == 0 || (ft.IsVariadic() && ft.NumIn() == 1):
		return f.call(log, nil)

	default:
		return nil, argInvalid(f,
			"arguments are not named: take a struct embedding pipe.Struct or use FuncParams")
	}
}

// callArgs calls the function with positional arguments, verifying arity
// and assignability first so a mismatch is an error instead of a panic.
func (f *Func) callArgs(log hclog.Logger, args []reflect.Value) (interface{}, error) {
	ft := f.fn.Type()
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, argInvalid(f,
				"takes at least %d positional arguments but %d were given", n-1, len(args))
		}
	} else if len(args) != n {
		return nil, argInvalid(f,
			"takes %d positional arguments but %d were given", n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		t := argType(ft, i)
		v, ok := assignable(arg, t)
		if !ok {
			return nil, argInvalid(f,
				"argument %d: %s is not assignable to %s", i, valueTypeString(arg), t)
		}

		in[i] = v
	}

	return f.call(log, in)
}

// bind builds the argument list for a function with named arguments.
// When strict is true, every value must be consumed by a named argument or
// the rest field. When it is false, unknown values are ignored and the rest
// field is left empty.
func (f *Func) bind(values map[string]reflect.Value, strict bool) ([]reflect.Value, error) {
	var structVal reflect.Value
	var in []reflect.Value
	if f.structP != nil {
		structVal = f.structP.newValue()
	} else {
		in = make([]reflect.Value, len(f.params))
	}

	var missing []string
	var invalid error
	used := make(map[string]struct{}, len(values))
	for _, p := range f.named() {
		var v reflect.Value
		raw, ok := values[p.Name]
		if !ok {
			if !p.Optional {
				missing = append(missing, p.Name)
				continue
			}

			v = reflect.Zero(p.Type)
		} else {
			used[p.Name] = struct{}{}

			var aok bool
			v, aok = assignable(raw, p.Type)
			if !aok {
				invalid = multierror.Append(invalid, fmt.Errorf(
					"argument %q: %s is not assignable to %s",
					p.Name, valueTypeString(raw), p.Type))
				continue
			}
		}

		if structVal.IsValid() {
			structVal.Field(p.Index).Set(v)
		} else {
			in[p.Index] = v
		}
	}

	if len(missing) > 0 {
		return nil, &ErrArgumentUnsatisfied{
			Func:   f,
			Args:   missing,
			Inputs: sortedValueKeys(values),
		}
	}
	if invalid != nil {
		return nil, argInvalid(f, "%s", invalid)
	}

	if strict {
		rest := make(map[string]reflect.Value)
		for k, v := range values {
			if _, ok := used[k]; !ok {
				rest[k] = v
			}
		}

		if len(rest) > 0 {
			if f.structP == nil || f.structP.rest == nil {
				return nil, argInvalid(f, "unexpected keyword arguments: %s",
					strings.Join(sortedValueKeys(rest), ", "))
			}

			restVal, err := f.restValue(f.structP.rest.Type, rest)
			if err != nil {
				return nil, err
			}

			structVal.Field(f.structP.rest.Index).Set(restVal)
		}
	}

	if structVal.IsValid() {
		return f.structP.callIn(structVal), nil
	}

	return in, nil
}

// mapArgValue builds the argument for a function taking a single map.
func (f *Func) mapArgValue(values map[string]reflect.Value) (reflect.Value, error) {
	return f.restValue(f.fn.Type().In(0), values)
}

// restValue builds a map of type t from the given values.
func (f *Func) restValue(t reflect.Type, values map[string]reflect.Value) (reflect.Value, error) {
	result := reflect.MakeMapWithSize(t, len(values))
	for k, raw := range values {
		v, ok := assignable(raw, t.Elem())
		if !ok {
			return reflect.Value{}, argInvalid(f,
				"keyword %q: %s is not assignable to %s", k, valueTypeString(raw), t.Elem())
		}

		result.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), v)
	}

	return result, nil
}

// call calls the function and converts its outputs into a payload.
func (f *Func) call(log hclog.Logger, in []reflect.Value) (interface{}, error) {
	if log.IsTrace() {
		for i, arg := range in {
			log.Trace("argument", "idx", i, "value", arg.Interface())
		}
	}

	r := result{out: f.fn.Call(in)}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return r.Payload(), nil
}

// argType returns the type of the i'th positional argument, accounting
// for variadic functions.
func argType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}

	return ft.In(i)
}

// assignable unwraps interface values and returns a value that can be
// assigned to t. Nil values are assignable to any nillable type.
func assignable(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			v = reflect.Value{}
		} else {
			v = v.Elem()
		}
	}

	if !v.IsValid() {
		switch t.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
			return reflect.Zero(t), true
		}

		return reflect.Value{}, false
	}

	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, false
	}

	return v, true
}

func valueTypeString(v reflect.Value) string {
	if v.IsValid() && v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() || (v.Kind() == reflect.Interface && v.IsNil()) {
		return "nil"
	}

	return v.Type().String()
}

func sortedValueKeys(m map[string]reflect.Value) []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}
