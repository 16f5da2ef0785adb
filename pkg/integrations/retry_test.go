package integrations

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestTransientError(t *testing.T) {
	err := transient(ErrNetwork, 0)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for transient error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("transient error should unwrap to ErrNetwork")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for permanent error")
	}
}

func TestRetryPolicyDo(t *testing.T) {
	p := RetryPolicy{Attempts: 3, Delay: time.Millisecond}
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		permanent bool
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, false, 1, false},
		{"permanent error stops", 1, true, 1, true},
		{"recovers", 1, false, 2, false},
		{"exhausted", 5, false, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := p.Do(ctx, func() error {
				calls++
				if calls > tt.failures {
					return nil
				}
				if tt.permanent {
					return ErrNotFound
				}
				return transient(ErrNetwork, 0)
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryPolicyAttempts(t *testing.T) {
	tests := []struct {
		attempts int
		want     int
	}{
		{0, 1},
		{1, 1},
		{4, 4},
	}
	for _, tt := range tests {
		calls := 0
		p := RetryPolicy{Attempts: tt.attempts, Delay: time.Microsecond}
		_ = p.Do(context.Background(), func() error {
			calls++
			return transient(ErrNetwork, 0)
		})
		if calls != tt.want {
			t.Errorf("Attempts=%d: calls = %d, want %d", tt.attempts, calls, tt.want)
		}
	}

	if got := DefaultRetryPolicy.WithAttempts(0).Attempts; got != DefaultRetryPolicy.Attempts {
		t.Errorf("WithAttempts(0) = %d, want default", got)
	}
	if got := DefaultRetryPolicy.WithAttempts(7).Attempts; got != 7 {
		t.Errorf("WithAttempts(7) = %d", got)
	}
}

func TestRetryPolicyMaxDelay(t *testing.T) {
	p := RetryPolicy{Attempts: 2, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	start := time.Now()
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return transient(ErrNetwork, time.Hour)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("Do() err %v, calls %d", err, calls)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Retry-After was not capped: waited %v", elapsed)
	}
}

func TestRetryPolicyContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DefaultRetryPolicy.Do(ctx, func() error {
		return transient(ErrNetwork, 0)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"missing", "", 0},
		{"seconds", "7", 7 * time.Second},
		{"negative seconds", "-3", 0},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"past date", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"garbage", "soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("Retry-After", tt.value)
			}
			if got := retryAfter(h, now); got != tt.want {
				t.Errorf("retryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestCheckStatusRetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "2")
	err := checkStatus(http.StatusTooManyRequests, h)

	var te *transientError
	if !errors.As(err, &te) {
		t.Fatalf("checkStatus(429) = %T, want transient", err)
	}
	if te.after != 2*time.Second {
		t.Errorf("after = %v, want 2s", te.after)
	}
}
