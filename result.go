package pipe

import "reflect"

// result holds the raw outputs of a single function call.
type result struct {
	out []reflect.Value
}

// Err returns the error result of the call. A final output of type error
// that is non-nil is the error.
func (r *result) Err() error {
	if len(r.out) > 0 {
		final := r.out[len(r.out)-1]
		if final.IsValid() && final.Type() == errType {
			if err := final.Interface(); err != nil {
				return err.(error)
			}
		}
	}

	return nil
}

// Payload returns the call outputs (without a trailing error) as a single
// value. Multiple outputs are collected into a []interface{}.
func (r *result) Payload() interface{} {
	out := r.out
	if len(out) > 0 && out[len(out)-1].Type() == errType {
		out = out[:len(out)-1]
	}

	switch len(out) {
	case 0:
		return nil

	case 1:
		return out[0].Interface()

	default:
		values := make([]interface{}, len(out))
		for i, v := range out {
			values[i] = v.Interface()
		}

		return values
	}
}
