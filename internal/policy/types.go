package policy

import "encoding/json"

// Policy is the top-level on-disk document: a set of named profiles plus
// the name of the profile used when the requested one is absent.
type Policy struct {
	Version        string                   `json:"version"`
	Profiles       map[string]ProfileConfig `json:"profiles"`
	DefaultProfile string                   `json:"default_profile"`
}

// ProfileConfig is one named policy variant (e.g. "development", "testing").
type ProfileConfig struct {
	SafeCommands    []string              `json:"safe_commands"`
	BlockedPatterns []string              `json:"blocked_patterns"`
	SandboxEnabled  bool                  `json:"sandbox_enabled"`
	CircuitBreaker  *CircuitBreakerConfig `json:"circuit_breaker,omitempty"`
}

// CircuitBreakerConfig overrides the breaker behavior per profile.
type CircuitBreakerConfig struct {
	Enabled   bool `json:"enabled"`
	Threshold int  `json:"threshold"`
}

// DefaultBreakerThreshold applies when a profile enables the breaker
// without specifying a threshold.
const DefaultBreakerThreshold = 10

// BreakerSettings resolves the profile's breaker config onto concrete
// values. A profile without a circuit_breaker block gets an enabled
// breaker at the default threshold.
func (p ProfileConfig) BreakerSettings() (enabled bool, threshold int) {
	if p.CircuitBreaker == nil {
		return true, DefaultBreakerThreshold
	}
	threshold = p.CircuitBreaker.Threshold
	if threshold <= 0 {
		threshold = DefaultBreakerThreshold
	}
	return p.CircuitBreaker.Enabled, threshold
}

// Validate reports whether a raw policy document has the required schema:
// a "profiles" object whose every profile carries safe_commands (list),
// blocked_patterns (list), and sandbox_enabled (bool). It operates on the
// undecoded JSON so that absent fields are distinguishable from zero
// values. Exposed for external callers (e.g. the lint command) to check
// candidate documents before installing them.
func Validate(data []byte) bool {
	_, field := validate(data)
	return field == ""
}

// validate returns the decoded document and the name of the first missing
// or invalid field ("" when the document is well formed).
func validate(data []byte) (*Policy, string) {
	var raw struct {
		Version        string                     `json:"version"`
		Profiles       map[string]json.RawMessage `json:"profiles"`
		DefaultProfile string                     `json:"default_profile"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, "document"
	}
	if raw.Profiles == nil {
		return nil, "profiles"
	}

	pol := &Policy{
		Version:        raw.Version,
		Profiles:       make(map[string]ProfileConfig, len(raw.Profiles)),
		DefaultProfile: raw.DefaultProfile,
	}

	for name, body := range raw.Profiles {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, name
		}
		for _, required := range []string{"safe_commands", "blocked_patterns", "sandbox_enabled"} {
			if _, ok := fields[required]; !ok {
				return nil, required
			}
		}

		var profile ProfileConfig
		if err := json.Unmarshal(fields["safe_commands"], &profile.SafeCommands); err != nil {
			return nil, "safe_commands"
		}
		if err := json.Unmarshal(fields["blocked_patterns"], &profile.BlockedPatterns); err != nil {
			return nil, "blocked_patterns"
		}
		if err := json.Unmarshal(fields["sandbox_enabled"], &profile.SandboxEnabled); err != nil {
			return nil, "sandbox_enabled"
		}
		if breaker, ok := fields["circuit_breaker"]; ok {
			profile.CircuitBreaker = &CircuitBreakerConfig{}
			if err := json.Unmarshal(breaker, profile.CircuitBreaker); err != nil {
				return nil, "circuit_breaker"
			}
		}
		pol.Profiles[name] = profile
	}

	return pol, ""
}
