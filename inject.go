package pipe

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"
)

// Inject starts a chain where the payload is a map of named values that is
// threaded through every step.
//
// value is copied into a new map[string]interface{}. It can be a map with
// string keys, a slice of Pair (or of two element slices starting with a
// string), or a struct whose exported fields become the entries. Anything
// else results in a Value holding ErrNotMapping.
//
// Every function piped into the chain is called by InjectPlumber. The
// WithPlumber option has no effect here.
func Inject(value interface{}, opts ...Option) *Value {
	opts = append(opts[:len(opts):len(opts)], WithPlumber(InjectPlumber))
	cfg, err := newConfig(opts...)

	m, merr := toMapping(value)
	if merr != nil {
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		v := wrap(value, cfg)
		v.err = merr
		return v
	}

	v := wrap(m, cfg)
	v.err = err
	return v
}

// InjectPlumber is the Plumber for Inject chains. The payload of v must be
// a map[string]interface{}.
//
// The function is called with only the entries it declares by name (see
// Func). Missing entries result in an *ErrArgumentUnsatisfied error unless
// the argument is optional. Variadic arguments, rest fields and map
// arguments never receive entries.
//
// The result is merged back into the payload map, which is modified in
// place and returned:
//
//   - A map result updates the payload, the result wins on conflicts.
//   - A slice or array of pairs updates the payload the same way. Any other
//     sequence is an error.
//   - Any other result is stored under the name of the function.
func InjectPlumber(fn *Func, v *Value) (interface{}, error) {
	state, ok := v.Interface().(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w, got %s", ErrNotMapping, v.TypeName())
	}

	log := v.config().logger.With("func", fn.Name())
	log.Trace("injecting", "params", fn.Params(), "available", v.Keys())

	out, err := fn.callNamed(log, state)
	if err != nil {
		return nil, err
	}

	if err := merge(fn, state, out); err != nil {
		return nil, err
	}

	return state, nil
}

// merge merges the result of fn into state. The state is only modified if
// the whole result can be merged.
func merge(fn *Func, state map[string]interface{}, out interface{}) error {
	switch shapeOf(out) {
	case ShapeMapping:
		entries, err := mapEntries(reflect.ValueOf(out))
		if err != nil {
			return argInvalid(fn, "result can't update the mapping: %s", err)
		}

		for k, v := range entries {
			state[k] = v
		}

	case ShapeSequence:
		entries, err := pairEntries(reflect.ValueOf(out))
		if err != nil {
			return argInvalid(fn, "result can't update the mapping: %s", err)
		}

		for k, v := range entries {
			state[k] = v
		}

	default:
		state[fn.Name()] = out
	}

	return nil
}
