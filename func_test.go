package pipe

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

func (c *counter) incr(x int) int {
	c.n += x
	return c.n
}

func TestNewFunc(t *testing.T) {
	cases := []struct {
		Name   string
		Func   interface{}
		Opts   []FuncOption
		Params []string
		Err    string
	}{
		{
			"positional",
			func(a, b int) int { return a + b },
			nil,
			nil,
			"",
		},

		{
			"struct",
			func(in struct {
				Struct

				A, B int
			}) int {
				return in.A + in.B
			},
			nil,
			[]string{"a", "b"},
			"",
		},

		{
			"named params",
			func(a, b int) int { return a + b },
			[]FuncOption{FuncParams("x", "y")},
			[]string{"x", "y"},
			"",
		},

		{
			"named params variadic",
			func(a int, rest ...int) int { return a },
			[]FuncOption{FuncParams("a")},
			[]string{"a"},
			"",
		},

		{
			"named params wrong count",
			func(a, b int) int { return a + b },
			[]FuncOption{FuncParams("a")},
			nil,
			"function takes 2 named arguments, got 1 names",
		},

		{
			"named params duplicate",
			func(a, b int) int { return a + b },
			[]FuncOption{FuncParams("a", "a")},
			nil,
			"duplicate argument name",
		},

		{
			"not a function",
			42,
			nil,
			nil,
			"value must be a function",
		},

		{
			"nil",
			nil,
			nil,
			nil,
			"value must be a function",
		},

		{
			"nil function",
			(func())(nil),
			nil,
			nil,
			"value must be a function",
		},

		{
			"invalid struct",
			func(in struct {
				Struct

				A int `pipe:",rest"`
			}) {
			},
			nil,
			nil,
			"must be a map",
		},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			require := require.New(t)

			f, err := NewFunc(tt.Func, tt.Opts...)
			if tt.Err != "" {
				require.Error(err)
				require.Contains(err.Error(), tt.Err)
				return
			}

			require.NoError(err)
			require.Equal(tt.Params, f.Params())
		})
	}
}

func TestNewFunc_notFunc(t *testing.T) {
	_, err := NewFunc("nope")
	require.True(t, errors.Is(err, ErrNotFunc))
}

func TestNewFunc_reuse(t *testing.T) {
	require := require.New(t)

	f := MustFunc(NewFunc(func(a int) int { return a }))

	same, err := NewFunc(f)
	require.NoError(err)
	require.True(f == same)

	named, err := NewFunc(f, FuncName("identity"))
	require.NoError(err)
	require.Equal("identity", named.Name())
	require.NotEqual("identity", f.Name())

	// Renaming keeps the declared names
	params := MustFunc(NewFunc(func(a, b int) int { return a + b }, FuncParams("a", "b")))
	renamed, err := NewFunc(params, FuncName("sum"))
	require.NoError(err)
	require.Equal("sum", renamed.Name())
	require.Equal([]string{"a", "b"}, renamed.Params())
	require.Empty(params.name)

	// Naming the arguments keeps the configured name
	kept := MustFunc(NewFunc(func(a int) int { return a }, FuncName("keep")))
	withParams, err := NewFunc(kept, FuncParams("a"))
	require.NoError(err)
	require.Equal("keep", withParams.Name())
	require.Equal([]string{"a"}, withParams.Params())
	require.Empty(kept.Params())

	// Struct arguments survive as well
	s := MustFunc(NewFunc(double))
	renamed, err = NewFunc(s, FuncName("twice"))
	require.NoError(err)
	require.Equal([]string{"a"}, renamed.Params())

	// Option errors are reported and the original is untouched
	_, err = NewFunc(params, FuncParams("a"))
	require.Error(err)
	require.Contains(err.Error(), "function takes 2 named arguments, got 1 names")
	require.Equal([]string{"a", "b"}, params.Params())
}

func TestFuncName(t *testing.T) {
	c := &counter{}

	cases := []struct {
		Name     string
		Func     *Func
		Expected string
	}{
		{
			"configured",
			MustFunc(NewFunc(func() {}, FuncName("custom"))),
			"custom",
		},

		{
			"package function",
			MustFunc(NewFunc(function)),
			"function",
		},

		{
			"method value",
			MustFunc(NewFunc(c.incr)),
			"incr",
		},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			require := require.New(t)
			require.Equal(tt.Expected, tt.Func.Name())
			require.Equal(tt.Expected, tt.Func.String())
		})
	}
}

func TestFuncName_closure(t *testing.T) {
	f := MustFunc(NewFunc(func() {}))
	require.True(t, strings.HasPrefix(f.Name(), "func"), f.Name())
}

func TestShortName(t *testing.T) {
	cases := []struct {
		In, Out string
	}{
		{"github.com/hashicorp/go-pipe.add", "add"},
		{"github.com/hashicorp/go-pipe.(*counter).incr-fm", "incr"},
		{"main.main.func1", "func1"},
		{"example.com/pkg.Map[...]", "Map"},
		{"plain", "plain"},
	}

	for _, tt := range cases {
		t.Run(tt.In, func(t *testing.T) {
			require.Equal(t, tt.Out, shortName(tt.In))
		})
	}
}

func TestMustFunc(t *testing.T) {
	require.Panics(t, func() {
		MustFunc(NewFunc(42))
	})
}
