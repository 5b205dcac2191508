package enforcer

import (
	"strings"
	"testing"

	"github.com/gzhole/shellgate/internal/audit"
)

const breakerPolicy = `{
  "default_profile": "development",
  "profiles": {
    "development": {
      "safe_commands": ["git status"],
      "blocked_patterns": ["rm -rf"],
      "sandbox_enabled": true,
      "circuit_breaker": {"enabled": true, "threshold": 10}
    }
  }
}`

const breakerDisabledPolicy = `{
  "default_profile": "development",
  "profiles": {
    "development": {
      "safe_commands": ["git status"],
      "blocked_patterns": ["rm -rf"],
      "sandbox_enabled": true,
      "circuit_breaker": {"enabled": false, "threshold": 10}
    }
  }
}`

func TestBreaker_ElevenConsecutiveBlocks(t *testing.T) {
	enf, sink := newTestEnforcer(t, breakerPolicy)

	for i := 1; i <= 10; i++ {
		result := enf.Classify("rm -rf /")
		if result.Classification != Blocked {
			t.Fatalf("call %d: expected BLOCKED, got %s", i, result.Classification)
		}
		if !strings.Contains(result.Reason, "rm -rf") {
			t.Fatalf("call %d: expected the pattern reason, got %q", i, result.Reason)
		}
		if strings.Contains(result.Reason, "circuit breaker") {
			t.Fatalf("call %d: breaker must not fire yet", i)
		}
	}

	result := enf.Classify("rm -rf /")
	if result.Classification != Blocked {
		t.Fatalf("call 11: expected BLOCKED, got %s", result.Classification)
	}
	if !strings.Contains(result.Reason, "circuit breaker") {
		t.Errorf("call 11: reason %q must mention the circuit breaker", result.Reason)
	}

	// One trip event, error severity, on top of the per-call warnings.
	var trips int
	for _, event := range sink.events {
		if event.Operation == audit.OpBreakerTrip {
			trips++
			if event.Severity != audit.SeverityError {
				t.Errorf("trip event severity %q, want error", event.Severity)
			}
		}
	}
	if trips != 1 {
		t.Errorf("expected exactly one trip event, got %d", trips)
	}
}

func TestBreaker_SafeCommandClosesOpenBreaker(t *testing.T) {
	enf, _ := newTestEnforcer(t, breakerPolicy)

	for i := 0; i < 12; i++ {
		enf.Classify("rm -rf /")
	}

	// The breaker is open; a safe command still classifies SAFE and
	// closes it.
	result := enf.Classify("git status")
	if result.Classification != Safe {
		t.Fatalf("expected SAFE through the open breaker, got %s (%s)", result.Classification, result.Reason)
	}
	if enf.ConsecutiveBlocked() != 0 {
		t.Errorf("counter must reset, got %d", enf.ConsecutiveBlocked())
	}

	// Back to normal operation: the next block reports its own reason.
	next := enf.Classify("rm -rf /")
	if strings.Contains(next.Reason, "circuit breaker") {
		t.Errorf("breaker must be closed after reset, got %q", next.Reason)
	}
}

func TestBreaker_OpenOverridesNeedsApproval(t *testing.T) {
	enf, _ := newTestEnforcer(t, breakerPolicy)

	for i := 0; i < 11; i++ {
		enf.Classify("rm -rf /")
	}

	result := enf.Classify("npx create-react-app myapp")
	if result.Classification != Blocked {
		t.Fatalf("open breaker must force BLOCKED, got %s", result.Classification)
	}
	if !strings.Contains(result.Reason, "circuit breaker") {
		t.Errorf("reason %q must mention the circuit breaker", result.Reason)
	}
}

func TestBreaker_SafeResetMidStreak(t *testing.T) {
	enf, _ := newTestEnforcer(t, breakerPolicy)

	for i := 0; i < 9; i++ {
		enf.Classify("rm -rf /")
	}
	enf.Classify("git status")
	if enf.ConsecutiveBlocked() != 0 {
		t.Fatalf("expected reset, got %d", enf.ConsecutiveBlocked())
	}

	// The streak starts over; ten more blocks before the breaker opens.
	for i := 1; i <= 10; i++ {
		result := enf.Classify("rm -rf /")
		if strings.Contains(result.Reason, "circuit breaker") {
			t.Fatalf("call %d after reset: breaker fired early", i)
		}
	}
	result := enf.Classify("rm -rf /")
	if !strings.Contains(result.Reason, "circuit breaker") {
		t.Errorf("expected the breaker to open after a fresh streak, got %q", result.Reason)
	}
}

func TestBreaker_DisabledNeverTrips(t *testing.T) {
	enf, sink := newTestEnforcer(t, breakerDisabledPolicy)

	for i := 0; i < 20; i++ { // 2x threshold
		result := enf.Classify("rm -rf /")
		if result.Classification != Blocked {
			t.Fatalf("call %d: expected BLOCKED, got %s", i, result.Classification)
		}
		if strings.Contains(result.Reason, "circuit breaker") {
			t.Fatalf("call %d: disabled breaker produced a breaker reason", i)
		}
	}

	for _, event := range sink.events {
		if event.Operation == audit.OpBreakerTrip {
			t.Fatal("disabled breaker must never emit a trip event")
		}
	}

	// The counter still tracks for observability.
	if enf.ConsecutiveBlocked() != 20 {
		t.Errorf("expected counter 20, got %d", enf.ConsecutiveBlocked())
	}
}
