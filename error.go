// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package pipe

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotMapping is returned by Inject when the initial value can't be
	// converted to a map of named values.
	ErrNotMapping = errors.New("value must be a mapping")

	// ErrNotFunc is returned when something other than a function is
	// piped into a Value.
	ErrNotFunc = errors.New("value must be a function")

	// ErrUnsupportedOperator is returned by Apply when the operator doesn't
	// match the operator the chain was created with.
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

// ErrArgumentUnsatisfied is the value returned when a function declares a
// named argument that has no value in the piped mapping.
type ErrArgumentUnsatisfied struct {
	// Func is the target function call that was attempted.
	Func *Func

	// Args are the names of the arguments that aren't satisfied.
	Args []string

	// Inputs is the list of names that were available in the mapping.
	Inputs []string
}

func (e *ErrArgumentUnsatisfied) Error() string {
	missing := new(bytes.Buffer)
	for _, arg := range e.Args {
		fmt.Fprintf(missing, "    - %s\n", arg)
	}

	inputs := new(bytes.Buffer)
	if len(e.Inputs) == 0 {
		fmt.Fprintf(inputs, "    No inputs!\n")
	}
	for _, arg := range e.Inputs {
		fmt.Fprintf(inputs, "    - %s\n", arg)
	}

	return fmt.Sprintf(`
Argument to function %q could not be satisfied!

==> Unsatisfiable arguments

%s

==> Full list of available inputs

%s
`,
		e.Func.Name(),
		strings.TrimSuffix(missing.String(), "\n"),
		strings.TrimSuffix(inputs.String(), "\n"),
	)
}

// ErrArgumentInvalid is returned when the payload can't be expanded into
// the arguments of a function: wrong arity, unexpected names, values that
// aren't assignable, and so on.
type ErrArgumentInvalid struct {
	Func   *Func
	Reason string
}

func (e *ErrArgumentInvalid) Error() string {
	return fmt.Sprintf("invalid arguments for function %q: %s", e.Func.Name(), e.Reason)
}

func argInvalid(f *Func, format string, args ...interface{}) error {
	return &ErrArgumentInvalid{Func: f, Reason: fmt.Sprintf(format, args...)}
}

var (
	_ error = (*ErrArgumentUnsatisfied)(nil)
	_ error = (*ErrArgumentInvalid)(nil)
)
