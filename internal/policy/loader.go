package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvProfile selects the active profile when the caller passes none.
	EnvProfile = "SANDBOX_PROFILE"
	// EnvEnabled toggles sandboxing globally ("true"/"yes"/"1"/"y" and
	// their falsy counterparts, case-insensitive).
	EnvEnabled = "SANDBOX_ENABLED"

	// DefaultProfileName is the profile used when neither the caller nor
	// the environment names one.
	DefaultProfileName = "development"
)

// Cascade lookup locations, relative to the project root, checked in
// order when no explicit policy path is given. The root-level file always
// wins over the config subdirectory.
var cascadePaths = []string{
	filepath.Join(".claude", "sandbox_policy.json"),
	filepath.Join(".claude", "config", "sandbox_policy.json"),
}

// PacksDir is the directory (relative to the project root) scanned for
// YAML pattern packs.
var PacksDir = filepath.Join(".claude", "sandbox_packs")

// ValidationError reports an explicitly supplied policy file that exists
// but fails schema validation. Every other failure mode degrades to a
// default instead of erroring.
type ValidationError struct {
	Path  string
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("policy %s: missing or invalid field %q", e.Path, e.Field)
}

// Options controls policy resolution. All fields are optional.
type Options struct {
	// Path is an explicitly supplied policy file. If the file is missing
	// the bundled default policy applies; if it exists but is invalid,
	// Resolve fails with a *ValidationError.
	Path string

	// Profile selects the active profile. When empty, SANDBOX_PROFILE is
	// consulted, then DefaultProfileName.
	Profile string

	// Root is the project root for cascade and pack resolution. Defaults
	// to the current working directory.
	Root string
}

// Resolved is the flattened, profile-selected view the enforcer consults.
// It is built once at construction and treated as immutable afterwards.
type Resolved struct {
	Policy      *Policy
	Profile     ProfileConfig
	ProfileName string

	// SandboxEnabled combines the profile's sandbox_enabled with the
	// SANDBOX_ENABLED environment override.
	SandboxEnabled bool
}

// Resolve loads, validates, and flattens a policy per Options. The
// environment is read here, once, so classification logic never consults
// it ambiently.
func Resolve(opts Options) (*Resolved, error) {
	root := opts.Root
	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = wd
		} else {
			root = "."
		}
	}

	pol, err := load(opts.Path, root)
	if err != nil {
		return nil, err
	}

	// Pattern packs are additive; a broken packs directory never fails
	// resolution.
	pol, _, _ = MergePacks(filepath.Join(root, PacksDir), pol)

	name := opts.Profile
	if name == "" {
		name = os.Getenv(EnvProfile)
	}
	if name == "" {
		name = DefaultProfileName
	}

	profile, name := selectProfile(pol, name)

	return &Resolved{
		Policy:         pol,
		Profile:        profile,
		ProfileName:    name,
		SandboxEnabled: profile.SandboxEnabled && envEnabled(),
	}, nil
}

func load(explicitPath, root string) (*Policy, error) {
	if explicitPath != "" {
		data, err := os.ReadFile(explicitPath)
		if err != nil {
			if os.IsNotExist(err) {
				return DefaultPolicy(), nil
			}
			return nil, fmt.Errorf("reading policy %s: %w", explicitPath, err)
		}
		pol, field := validate(data)
		if field != "" {
			return nil, &ValidationError{Path: explicitPath, Field: field}
		}
		return pol, nil
	}

	// Cascade: first candidate that exists and parses wins.
	for _, rel := range cascadePaths {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		if pol, field := validate(data); field == "" {
			return pol, nil
		}
	}

	return DefaultPolicy(), nil
}

// selectProfile falls back to the policy's default_profile when the
// requested profile is absent. This is graceful degradation, never an
// error: an unknown name means the operator's policy simply does not
// cover it.
func selectProfile(pol *Policy, name string) (ProfileConfig, string) {
	if profile, ok := pol.Profiles[name]; ok {
		return profile, name
	}
	if profile, ok := pol.Profiles[pol.DefaultProfile]; ok {
		return profile, pol.DefaultProfile
	}
	fallback := DefaultPolicy()
	return fallback.Profiles[fallback.DefaultProfile], fallback.DefaultProfile
}

func envEnabled() bool {
	v, ok := os.LookupEnv(EnvEnabled)
	if !ok {
		return true
	}
	return ParseBool(v, true)
}

// ParseBool interprets the canonical truthy/falsy strings accepted in
// policy environment variables. Unrecognized values yield fallback.
func ParseBool(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y":
		return true
	case "false", "no", "0", "n":
		return false
	default:
		return fallback
	}
}

// DefaultPolicy is the bundled policy used when no file is found. It is
// deliberately conservative: a thin safe list, a blocked list covering
// the classic destructive shapes, and the breaker on at the default
// threshold.
func DefaultPolicy() *Policy {
	breaker := func() *CircuitBreakerConfig {
		return &CircuitBreakerConfig{Enabled: true, Threshold: DefaultBreakerThreshold}
	}
	return &Policy{
		Version:        "1.0",
		DefaultProfile: DefaultProfileName,
		Profiles: map[string]ProfileConfig{
			"development": {
				SafeCommands: []string{
					"ls", "pwd", "whoami", "cat", "echo", "head", "tail",
					"git status", "git diff", "git log",
					"go build", "go test", "go vet",
				},
				BlockedPatterns: []string{
					"rm -rf", "sudo", "chmod 777", "mkfs", "git push --force",
				},
				SandboxEnabled: true,
				CircuitBreaker: breaker(),
			},
			"testing": {
				SafeCommands: []string{
					"ls", "pwd", "cat", "go test",
				},
				BlockedPatterns: []string{
					"rm -rf", "sudo", "chmod 777", "mkfs", "git push --force", "curl", "wget",
				},
				SandboxEnabled: true,
				CircuitBreaker: breaker(),
			},
		},
	}
}
