package pipe

import (
	"fmt"
	"reflect"
	"sort"
)

// Value wraps a payload so functions can be piped into it.
//
// Each application of the chain's operator calls a function with the
// payload and returns a new Value wrapping the result. The operator, the
// plumber and the logger are set once with New (or Inject) and carried
// over to every Value in the chain.
//
// A Value is never modified by Apply. If a call fails, the returned Value
// holds the error and every following application is a no-op, so a chain
// can be written as one expression and checked once with Err.
type Value struct {
	payload interface{}
	shape   Shape
	cfg     *config
	err     error
}

// New wraps value in a new chain. If any option fails, the chain starts
// with that error.
func New(value interface{}, opts ...Option) *Value {
	cfg, err := newConfig(opts...)
	v := wrap(value, cfg)
	v.err = err
	return v
}

func wrap(value interface{}, cfg *config) *Value {
	return &Value{
		payload: value,
		shape:   shapeOf(value),
		cfg:     cfg,
	}
}

// Apply pipes fn into the value using the operator op. The operator must be
// the operator the chain was created with, otherwise the result holds
// ErrUnsupportedOperator.
//
// fn is called according to the following rules, in order:
//
//  1. If the chain has a plumber, the plumber calls fn.
//  2. If the payload is a map, each entry is a named argument.
//  3. If the payload is a slice or array, each element is a positional
//     argument.
//  4. Otherwise the payload is the only argument.
//
// Strings are not sequences: a string payload is passed as the only
// argument, not one argument per byte or rune.
//
// Errors returned by fn are not wrapped. Panics are not recovered.
func (v *Value) Apply(op Operator, fn interface{}) *Value {
	if v.err != nil {
		return v
	}

	cfg := v.config()
	if op != cfg.operator {
		return v.fail(fmt.Errorf("%w %q for %s (chain operator is %q)",
			ErrUnsupportedOperator, op, v.TypeName(), cfg.operator))
	}

	f, err := NewFunc(fn)
	if err != nil {
		return v.fail(err)
	}

	log := cfg.logger.With("func", f.Name())

	var out interface{}
	switch {
	case cfg.plumber != nil:
		log.Trace("calling through plumber")
		out, err = cfg.plumber(f, v)

	case v.shape == ShapeMapping:
		log.Trace("calling with keyword expansion", "type", v.TypeName())
		out, err = f.callKeywords(log, reflect.ValueOf(v.payload))

	case v.shape == ShapeSequence:
		log.Trace("calling with positional expansion", "type", v.TypeName())
		out, err = f.callSequence(log, reflect.ValueOf(v.payload))

	default:
		log.Trace("calling with single argument", "type", v.TypeName())
		out, err = f.callScalar(log, v.payload)
	}
	if err != nil {
		log.Trace("call failed", "err", err)
		return v.fail(err)
	}

	next := wrap(out, cfg)
	log.Trace("rewrapped result", "type", next.TypeName(), "shape", next.shape)
	return next
}

// Pipe pipes fn into the value using the chain's operator.
func (v *Value) Pipe(fn interface{}) *Value {
	return v.Apply(v.config().operator, fn)
}

// Or pipes fn into the value using OperatorOr. This is the same as Pipe
// for chains created with the default operator.
func (v *Value) Or(fn interface{}) *Value {
	return v.Apply(OperatorOr, fn)
}

func (v *Value) fail(err error) *Value {
	return &Value{
		payload: v.payload,
		shape:   v.shape,
		cfg:     v.config(),
		err:     err,
	}
}

// config returns the configuration of the chain. The zero Value uses the
// defaults of New, so its payload is nil and its operator is OperatorOr.
func (v *Value) config() *config {
	if v.cfg == nil {
		cfg, _ := newConfig()
		return cfg
	}

	return v.cfg
}

// Err returns the error that stopped the chain, if any.
func (v *Value) Err() error { return v.err }

// Interface returns the payload. If the chain failed, this is the payload
// of the last successful step.
func (v *Value) Interface() interface{} { return v.payload }

// Result returns the payload and the error of the chain.
func (v *Value) Result() (interface{}, error) {
	return v.payload, v.err
}

// Shape returns the calling convention of the payload.
func (v *Value) Shape() Shape { return v.shape }

// Operator returns the operator of the chain.
func (v *Value) Operator() Operator { return v.config().operator }

// TypeName returns a name for the wrapped type, derived from the payload
// type. This is only meant for diagnostics.
func (v *Value) TypeName() string {
	t := reflect.TypeOf(v.payload)
	if t == nil {
		return "nilpipe"
	}

	name := t.Name()
	if name == "" {
		name = t.String()
	}

	return name + "pipe"
}

// Len returns the length of the payload for maps, slices, arrays, strings
// and channels, and 0 for anything else.
func (v *Value) Len() int {
	rv := reflect.ValueOf(v.payload)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String, reflect.Chan:
		return rv.Len()
	default:
		return 0
	}
}

// Index returns the i'th element of a sequence payload. This panics if the
// payload is not a sequence or i is out of range, like indexing would.
func (v *Value) Index(i int) interface{} {
	if v.shape != ShapeSequence {
		panic(fmt.Sprintf("pipe: Index of %s", v.TypeName()))
	}

	return reflect.ValueOf(v.payload).Index(i).Interface()
}

// Lookup returns the entry for key in a mapping payload. The boolean is
// false if the payload isn't a mapping, the key type doesn't match or the
// key is absent.
func (v *Value) Lookup(key interface{}) (interface{}, bool) {
	if v.shape != ShapeMapping {
		return nil, false
	}

	rv := reflect.ValueOf(v.payload)
	kv, ok := assignable(reflect.ValueOf(key), rv.Type().Key())
	if !ok {
		return nil, false
	}

	result := rv.MapIndex(kv)
	if !result.IsValid() {
		return nil, false
	}

	return result.Interface(), true
}

// Keys returns the sorted keys of a mapping payload with string keys.
// This returns nil for anything else.
func (v *Value) Keys() []string {
	rv := reflect.ValueOf(v.payload)
	if v.shape != ShapeMapping || rv.Type().Key().Kind() != reflect.String {
		return nil
	}

	result := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		result = append(result, k.String())
	}
	sort.Strings(result)

	return result
}

// String formats the payload as fmt would.
func (v *Value) String() string {
	return fmt.Sprint(v.payload)
}

// Format implements fmt.Formatter so a Value prints as its payload with
// any verb.
func (v *Value) Format(s fmt.State, verb rune) {
	fmt.Fprintf(s, fmt.FormatString(s, verb), v.payload)
}

// Get returns the payload as a T. This fails if the chain failed or the
// payload is not a T.
func Get[T any](v *Value) (T, error) {
	var zero T
	if v.err != nil {
		return zero, v.err
	}

	if v.payload == nil {
		if _, ok := assignable(reflect.Value{}, reflect.TypeOf((*T)(nil)).Elem()); ok {
			return zero, nil
		}
	}

	result, ok := v.payload.(T)
	if !ok {
		return zero, fmt.Errorf("payload of type %T is not %s",
			v.payload, reflect.TypeOf((*T)(nil)).Elem())
	}

	return result, nil
}
