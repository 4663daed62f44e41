package job

import (
	"context"
	"errors"
)

// ErrNilFunc is returned by Run when New was handed a nil closure.
var ErrNilFunc = errors.New("job: nil function")

// Func adapts a plain closure to the shard executor's Job interface. The
// zero value is inert; build one with New.
type Func struct {
	fn func(context.Context) error
}

// New wraps fn for submission to the executor.
func New(fn func(context.Context) error) Func {
	return Func{fn: fn}
}

// Run invokes the wrapped closure.
func (f Func) Run(ctx context.Context) error {
	if f.fn == nil {
		return ErrNilFunc
	}
	return f.fn(ctx)
}
