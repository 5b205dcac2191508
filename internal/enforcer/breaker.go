package enforcer

// breaker is the circuit breaker: a counter of consecutive blocked
// classifications owned exclusively by one Enforcer instance. Once the
// counter reaches the threshold the breaker is open and every
// classification that would not be SAFE is forced BLOCKED until a SAFE
// command closes it again. A disabled breaker still counts (for
// observability) but never opens.
type breaker struct {
	enabled            bool
	threshold          int
	consecutiveBlocked int
}

func newBreaker(enabled bool, threshold int) *breaker {
	return &breaker{enabled: enabled, threshold: threshold}
}

// tripped reports whether the breaker is open.
func (b *breaker) tripped() bool {
	return b.enabled && b.consecutiveBlocked >= b.threshold
}

// recordBlocked increments the counter and reports whether this
// increment opened the breaker (exactly once per open transition, so the
// caller can emit the trip event).
func (b *breaker) recordBlocked() (justTripped bool) {
	b.consecutiveBlocked++
	return b.enabled && b.consecutiveBlocked == b.threshold
}

// recordSafe closes the breaker and resets the counter.
func (b *breaker) recordSafe() {
	b.consecutiveBlocked = 0
}

// count exposes the current counter for observability.
func (b *breaker) count() int {
	return b.consecutiveBlocked
}
