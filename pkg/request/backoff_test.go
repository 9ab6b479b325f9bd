package request

import (
	"testing"
	"time"
)

func TestProviderBackoff_ExponentialDelay(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		baseDelay time.Duration
		maxDelay  time.Duration
		wantMinMs int64
		wantMaxMs int64
	}{
		{"First failure", 1, 1 * time.Second, 60 * time.Second, 1000, 1200},
		{"Second failure", 2, 1 * time.Second, 60 * time.Second, 2000, 2400},
		{"Third failure", 3, 1 * time.Second, 60 * time.Second, 4000, 4800},
		{"Max cap hit", 10, 1 * time.Second, 60 * time.Second, 60000, 66000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewProviderBackoff(tt.baseDelay, tt.maxDelay)

			for i := 0; i < tt.failures; i++ {
				b.RecordFailure("gemini")
			}

			fc, nextAllowed := b.GetState("gemini")
			if fc != tt.failures {
				t.Errorf("failureCount = %d, want %d", fc, tt.failures)
			}

			// Tolerance covers the 10% jitter plus test scheduling.
			delayMs := time.Until(nextAllowed).Milliseconds()
			if delayMs < tt.wantMinMs || delayMs > tt.wantMaxMs {
				t.Errorf("delay = %dms, want between %dms and %dms", delayMs, tt.wantMinMs, tt.wantMaxMs)
			}
		})
	}
}

func TestProviderBackoff_GradualRecovery(t *testing.T) {
	b := NewProviderBackoff(1*time.Second, 60*time.Second)

	b.RecordFailure("groq")
	b.RecordFailure("groq")
	b.RecordFailure("groq")

	fc, _ := b.GetState("groq")
	if fc != 3 {
		t.Errorf("after 3 failures, count = %d, want 3", fc)
	}

	b.RecordSuccess("groq")
	fc, _ = b.GetState("groq")
	if fc != 2 {
		t.Errorf("after 1 success, count = %d, want 2", fc)
	}

	b.RecordSuccess("groq")
	b.RecordSuccess("groq")
	fc, nextAllowed := b.GetState("groq")
	if fc != 0 {
		t.Errorf("after full recovery, count = %d, want 0", fc)
	}
	if !nextAllowed.IsZero() {
		t.Errorf("deadline should clear at zero failures, got %v", nextAllowed)
	}
}

func TestProviderBackoff_IsolatedProviders(t *testing.T) {
	b := NewProviderBackoff(1*time.Second, 60*time.Second)

	b.RecordFailure("deepseek")
	b.RecordFailure("deepseek")

	fc1, _ := b.GetState("deepseek")
	fc2, _ := b.GetState("gemini")

	if fc1 != 2 {
		t.Errorf("deepseek failures = %d, want 2", fc1)
	}
	if fc2 != 0 {
		t.Errorf("gemini failures = %d, want 0 (isolated)", fc2)
	}
}

func TestProviderBackoff_WaitWithoutState(t *testing.T) {
	b := NewProviderBackoff(1*time.Second, 60*time.Second)

	start := time.Now()
	b.Wait("openai")
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Wait on clean provider blocked for %v", elapsed)
	}
}
