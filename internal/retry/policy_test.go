package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// TestDefaultPolicy verifies the baseline default values.
func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != BackoffLinear {
		t.Fatalf("expected linear default mode got %s", p.Mode)
	}
	if p.Initial != time.Second || p.Max != 30*time.Second || p.MaxRetries != 2 {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(BackoffFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s got %v", p.Initial)
	}
	if p.Mode != BackoffFixed || p.MaxRetries != 5 {
		t.Fatalf("overrides not applied: %+v", p)
	}

	p = NewPolicy("sideways", 0, 0, 0)
	if p != DefaultPolicy() {
		t.Fatalf("zero values must fall back to defaults, got %+v", p)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		p    Policy
		ok   bool
	}{
		{"defaults", Policy{}.WithDefaults(), true},
		{"overrides kept", Policy{Mode: BackoffExponential, Initial: 10 * time.Second}.WithDefaults(), true},
		{"unknown mode", Policy{Mode: "random"}.WithDefaults(), false},
		{"negative initial", Policy{Initial: -time.Second}.WithDefaults(), false},
		{"initial above max", Policy{Initial: time.Minute, Max: time.Second}.WithDefaults(), false},
		{"negative retries", Policy{MaxRetries: -1}.WithDefaults(), false},
	}
	for _, c := range cases {
		err := c.p.Validate()
		if c.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("%s: expected an error for %+v", c.name, c.p)
		}
	}
}

func TestDelayModes(t *testing.T) {
	ms := time.Millisecond
	cases := []struct {
		mode    BackoffMode
		attempt int
		want    time.Duration
	}{
		{BackoffFixed, 1, 100 * ms},
		{BackoffFixed, 3, 100 * ms},
		{BackoffLinear, 1, 100 * ms},
		{BackoffLinear, 2, 200 * ms},
		{BackoffLinear, 3, 250 * ms},
		{BackoffExponential, 1, 100 * ms},
		{BackoffExponential, 2, 200 * ms},
		{BackoffExponential, 3, 250 * ms},
		{BackoffExponential, 64, 250 * ms},
		{BackoffLinear, 0, 0},
	}
	for _, c := range cases {
		p := NewPolicy(c.mode, 100*ms, 250*ms, 3)
		if got := p.Delay(c.attempt); got != c.want {
			t.Fatalf("%s attempt %d: expected %v got %v", c.mode, c.attempt, c.want, got)
		}
	}
}

func TestDo(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 2)
	transient := errors.RuntimeError("unavailable").Retryable().Build()

	calls := 0
	err := Do(context.Background(), p, func(context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success on third call, got calls=%d err=%v", calls, err)
	}

	calls = 0
	err = Do(context.Background(), p, func(context.Context) error {
		calls++
		return transient
	})
	if !stderrors.Is(err, transient) || calls != 3 {
		t.Fatalf("expected last error after 3 calls, got calls=%d err=%v", calls, err)
	}

	calls = 0
	permanent := stderrors.New("bad payload")
	err = Do(context.Background(), p, func(context.Context) error {
		calls++
		return permanent
	})
	if err != permanent || calls != 1 {
		t.Fatalf("unclassified errors must not be retried, got calls=%d", calls)
	}
}

func TestDo_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPolicy(BackoffFixed, time.Hour, time.Hour, 5)
	calls := 0
	err := Do(ctx, p, func(context.Context) error {
		calls++
		cancel()
		return errors.RuntimeError("unavailable").Retryable().Build()
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected one call and an error, got calls=%d err=%v", calls, err)
	}
}
