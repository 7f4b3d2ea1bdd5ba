package pipe

import (
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Operator names the operation that pipes a function into a Value. It is
// fixed when the chain is created and inherited by every wrapped result.
type Operator string

const (
	OperatorOr     Operator = "|"
	OperatorRShift Operator = ">>"
	OperatorAnd    Operator = "&"
)

// Plumber controls how a function is invoked against the current payload.
// The returned value becomes the next payload.
type Plumber func(fn *Func, v *Value) (interface{}, error)

// Option configures a new chain.
type Option func(*config) error

type config struct {
	logger   hclog.Logger
	operator Operator
	plumber  Plumber
}

func newConfig(opts ...Option) (*config, error) {
	c := &config{
		logger:   hclog.L(),
		operator: OperatorOr,
	}

	var buildErr error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			buildErr = multierror.Append(buildErr, err)
		}
	}

	return c, buildErr
}

// WithOperator sets the operator of the chain.
func WithOperator(op Operator) Option {
	return func(c *config) error {
		if op == "" {
			return errors.New("operator must not be empty")
		}

		c.operator = op
		return nil
	}
}

// WithPlumber sets the strategy used to call every function in the chain.
func WithPlumber(p Plumber) Option {
	return func(c *config) error {
		c.plumber = p
		return nil
	}
}

// WithLogger sets the logger used for trace output. Defaults to hclog.L().
func WithLogger(l hclog.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return errors.New("logger must not be nil")
		}

		c.logger = l
		return nil
	}
}
