package job

import (
	"context"
	"errors"
	"testing"
)

func TestFunc_ZeroValueIsInert(t *testing.T) {
	t.Parallel()
	var f Func
	if err := f.Run(context.Background()); !errors.Is(err, ErrNilFunc) {
		t.Fatalf("want ErrNilFunc, got %v", err)
	}
	if err := New(nil).Run(context.Background()); !errors.Is(err, ErrNilFunc) {
		t.Fatalf("New(nil): want ErrNilFunc, got %v", err)
	}
}

func TestFunc_PassesContextThrough(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	f := New(func(c context.Context) error {
		got = c.Err()
		return nil
	})
	if err := f.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !errors.Is(got, context.Canceled) {
		t.Fatalf("closure saw ctx err %v, want Canceled", got)
	}
}

func TestFunc_PropagatesError(t *testing.T) {
	t.Parallel()
	boom := errors.New("gateway down")
	f := New(func(context.Context) error { return boom })
	if err := f.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want wrapped error, got %v", err)
	}
}
