package client

import (
	"testing"
	"time"
)

func TestWithHTTPTimeout(t *testing.T) {
	c, err := New("http://example.com", "dev1", WithHTTPTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()
	if c.http.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v", c.http.Timeout)
	}

	if _, err := New("http://example.com", "dev1", WithHTTPTimeout(0)); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestWithExecutor(t *testing.T) {
	s := &stubExec{}
	c, err := New("http://example.com", "dev1", WithExecutor(s))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.exec != s {
		t.Fatal("executor not injected")
	}
	_ = c.Close()
	if s.stops != 1 {
		t.Fatalf("injected executor not stopped on Close: %d", s.stops)
	}

	if _, err := New("http://example.com", "dev1", WithExecutor(nil)); err == nil {
		t.Fatal("expected error for nil executor")
	}
}

func TestWithTuningOptions(t *testing.T) {
	c, err := New("http://example.com", "dev1",
		WithInsertDelay(50*time.Millisecond),
		WithFailureRemoveDelay(time.Second),
		WithGroupBudget(1000),
		WithMaxFileBytes(1<<20),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	if c.insertDelay != 50*time.Millisecond {
		t.Fatalf("insertDelay = %v", c.insertDelay)
	}
	if c.failureRemoveDelay != time.Second {
		t.Fatalf("failureRemoveDelay = %v", c.failureRemoveDelay)
	}
	if c.groupBudget != 1000 {
		t.Fatalf("groupBudget = %d", c.groupBudget)
	}
	if c.maxFileBytes != 1<<20 {
		t.Fatalf("maxFileBytes = %d", c.maxFileBytes)
	}
}

func TestWithTuningOptions_Invalid(t *testing.T) {
	cases := []Option{
		WithInsertDelay(-time.Second),
		WithFailureRemoveDelay(0),
		WithGroupBudget(0),
		WithMaxFileBytes(-1),
		WithSubscriber(nil),
		WithBlobStore(nil),
	}
	for i, opt := range cases {
		if _, err := New("http://example.com", "dev1", opt); err == nil {
			t.Fatalf("case %d: expected option validation error", i)
		}
	}
}
