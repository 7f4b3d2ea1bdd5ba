package pipe

import "reflect"

// Shape is the calling convention a payload uses when a function is piped
// into it. It is determined once, when the payload is wrapped.
type Shape uint

const (
	ShapeScalar   Shape = iota // f(v)
	ShapeSequence              // f(v[0], v[1], ...)
	ShapeMapping               // f(k1=v[k1], k2=v[k2], ...)
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeSequence:
		return "sequence"
	case ShapeMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// shapeOf checks mapping before sequence. Strings are scalars.
func shapeOf(v interface{}) Shape {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map:
		return ShapeMapping
	case reflect.Slice, reflect.Array:
		return ShapeSequence
	default:
		return ShapeScalar
	}
}
