// Package pipe chains function calls through a wrapped value.
//
// A value wrapped with New can be piped into any function. The wrapped
// value decides how to call the function from the shape of its payload:
// maps are expanded into named arguments, slices and arrays are expanded
// into positional arguments, and anything else is passed as the single
// argument. The result is wrapped again so the chain can continue.
//
//	v := pipe.New(5).
//		Pipe(func(x int) int { return x * x }).
//		Pipe(func(x int) int { return x - 3 })
//
// Inject starts a chain over a map that acts as shared state. Each function
// only receives the entries it names, and its result is merged back into
// the map. See Inject and InjectPlumber for details.
//
// Go reflection doesn't expose function parameter names, so named matching
// requires either a struct argument embedding Struct or a Func built with
// FuncParams. See Func for more documentation.
package pipe
