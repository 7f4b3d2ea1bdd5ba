package pipe

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Func is a function that can be piped into a Value.
//
// A Func can take any number of arguments and return any number of values.
// How the arguments are populated depends on the payload of the Value it
// is piped into; see Value.Apply.
//
// # Named Arguments
//
// Go reflection doesn't enable accessing direct function parameter names,
// so there are two ways for a Func to declare names:
//
//   - Take a single struct argument that embeds Struct. Each exported
//     field is a named argument. See Struct for the tag format.
//
//   - Build the Func with the FuncParams option, naming each non-variadic
//     argument in order.
//
// A function taking a single map with string keys accepts any names during
// keyword expansion but declares none.
//
// # Results
//
// A final return type of "error" is treated as the error result of the
// call. A non-nil error stops the chain and is returned to the caller
// unchanged. Of the remaining results, none becomes a nil payload, one
// becomes the payload directly and more than one become a []interface{}.
type Func struct {
	fn   reflect.Value
	name string

	// Exactly one of these is set for a function with named arguments.
	params  []*param
	structP *structParams
	mapArg  bool
}

// FuncOption is an option for NewFunc.
type FuncOption func(*Func) error

// FuncName sets the name of the function. The name is the key Inject stores
// non-mapping results under.
func FuncName(n string) FuncOption {
	return func(f *Func) error {
		f.name = n
		return nil
	}
}

// FuncParams names the arguments of the function in order. Variadic
// arguments are never named, so the number of names must equal the number
// of non-variadic arguments.
func FuncParams(names ...string) FuncOption {
	return func(f *Func) error {
		ft := f.fn.Type()
		n := ft.NumIn()
		if ft.IsVariadic() {
			n--
		}

		if len(names) != n {
			return fmt.Errorf("function takes %d named arguments, got %d names", n, len(names))
		}

		params := make([]*param, n)
		seen := map[string]struct{}{}
		for i, name := range names {
			if _, ok := seen[name]; ok {
				return fmt.Errorf("duplicate argument name %q", name)
			}
			seen[name] = struct{}{}

			params[i] = &param{
				Name:  name,
				Index: i,
				Type:  ft.In(i),
			}
		}

		f.params = params
		f.structP = nil
		f.mapArg = false
		return nil
	}
}

// NewFunc creates a new Func from the given input function f.
//
// If f is already a *Func it is returned as is when no options are given.
// Otherwise the options are applied to a copy, so the names it already
// declares are kept unless an option replaces them.
func NewFunc(f interface{}, opts ...FuncOption) (*Func, error) {
	if fn, ok := f.(*Func); ok {
		if len(opts) == 0 {
			return fn, nil
		}

		result := *fn
		if err := applyFuncOptions(&result, opts); err != nil {
			return nil, err
		}

		return &result, nil
	}

	fv := reflect.ValueOf(f)
	if !fv.IsValid() {
		return nil, fmt.Errorf("%w, got nil", ErrNotFunc)
	}

	ft := fv.Type()
	if k := ft.Kind(); k != reflect.Func {
		return nil, fmt.Errorf("%w, got %s", ErrNotFunc, k)
	}
	if fv.IsNil() {
		return nil, fmt.Errorf("%w, got nil %s", ErrNotFunc, ft)
	}

	result := &Func{fn: fv}

	// A single struct argument embedding Struct is named; a single map with
	// string keys is a catch-all for keyword expansion.
	if ft.NumIn() == 1 && !ft.IsVariadic() {
		in := ft.In(0)
		switch {
		case isStruct(in):
			sp, err := newStructParams(in)
			if err != nil {
				return nil, err
			}

			result.structP = sp

		case in.Kind() == reflect.Map && in.Key().Kind() == reflect.String:
			result.mapArg = true
		}
	}

	if err := applyFuncOptions(result, opts); err != nil {
		return nil, err
	}

	return result, nil
}

func applyFuncOptions(f *Func, opts []FuncOption) error {
	var err error
	for _, opt := range opts {
		if oerr := opt(f); oerr != nil {
			err = multierror.Append(err, oerr)
		}
	}

	return err
}

// MustFunc can be called around NewFunc in order to force success and
// panic if there is any error.
func MustFunc(f *Func, err error) *Func {
	if err != nil {
		panic(err)
	}

	return f
}

// Func returns the function pointer that this Func is built around.
func (f *Func) Func() interface{} {
	return f.fn.Interface()
}

// Params returns the declared argument names, in order. This is empty for
// functions without named arguments.
func (f *Func) Params() []string {
	var result []string
	for _, p := range f.named() {
		result = append(result, p.Name)
	}

	return result
}

// named returns the named inputs of the function.
func (f *Func) named() []*param {
	if f.structP != nil {
		return f.structP.fields
	}

	return f.params
}

// Name returns the name of the function.
//
// This will return the configured name if one was given with FuncName. If
// not, this will look up the function symbol and use its last element, so
// "example.com/pkg.add" becomes "add". If no friendly name can be found,
// then this will default to the function type signature.
func (f *Func) Name() string {
	// Use our set name first, if we have one
	if f.name != "" {
		return f.name
	}

	// Fall back to inspecting the program counter
	if rfunc := runtime.FuncForPC(f.fn.Pointer()); rfunc != nil {
		if name := shortName(rfunc.Name()); name != "" {
			return name
		}
	}

	// Final fallback is our type signature
	return f.fn.Type().String()
}

// String returns the name for this function. See Name.
func (f *Func) String() string {
	return f.Name()
}

// shortName strips the package path and receiver from a runtime symbol.
func shortName(name string) string {
	name = strings.TrimSuffix(name, "-fm")
	name = strings.TrimSuffix(name, "[...]")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}

	return name
}

// errType is used to detect a trailing error result.
var errType = reflect.TypeOf((*error)(nil)).Elem()
