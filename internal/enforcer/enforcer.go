// Package enforcer classifies shell commands as SAFE, BLOCKED, or
// NEEDS_APPROVAL against a resolved policy and builds the OS-appropriate
// sandbox argument vector for commands permitted to run. It never
// executes anything itself.
//
// An Enforcer is designed for single-goroutine use: the circuit breaker
// is scoped per instance, so concurrent workflows should each hold their
// own Enforcer (or wrap classify calls in external synchronization).
package enforcer

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/gzhole/shellgate/internal/audit"
	"github.com/gzhole/shellgate/internal/detect"
	"github.com/gzhole/shellgate/internal/policy"
	"github.com/gzhole/shellgate/internal/sandbox"
)

// Enforcer is the policy gatekeeper. Construct with New; the policy is
// resolved once and immutable for the instance's lifetime.
type Enforcer struct {
	resolved *policy.Resolved
	breaker  *breaker
	sink     audit.Sink
	builder  *sandbox.Builder
	capable  bool
}

// Option configures an Enforcer.
type Option func(*options)

type options struct {
	policyPath string
	profile    string
	root       string
	sink       audit.Sink
	resolver   sandbox.Resolver
}

// WithPolicyPath supplies an explicit policy file. A missing file falls
// back to the bundled default; an invalid one fails construction.
func WithPolicyPath(path string) Option {
	return func(o *options) { o.policyPath = path }
}

// WithProfile selects the policy profile, overriding SANDBOX_PROFILE.
func WithProfile(name string) Option {
	return func(o *options) { o.profile = name }
}

// WithRoot sets the project root for cascade and pack resolution.
func WithRoot(dir string) Option {
	return func(o *options) { o.root = dir }
}

// WithSink directs audit events somewhere other than the default NopSink.
func WithSink(sink audit.Sink) Option {
	return func(o *options) { o.sink = sink }
}

// WithResolver substitutes the sandbox binary resolver (tests use this
// instead of mocking the host).
func WithResolver(r sandbox.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// New resolves the policy (cascade, env overrides, packs) and detects the
// host's sandbox mechanism. The only error path is an explicitly supplied
// policy file that fails validation.
func New(opts ...Option) (*Enforcer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	resolved, err := policy.Resolve(policy.Options{
		Path:    o.policyPath,
		Profile: o.profile,
		Root:    o.root,
	})
	if err != nil {
		return nil, err
	}

	sink := o.sink
	if sink == nil {
		sink = audit.NopSink{}
	}

	resolver := o.resolver
	if resolver == nil {
		resolver = sandbox.NewResolver(runtime.GOOS, nil)
	}
	bin := resolver.Resolve()

	enabled, threshold := resolved.Profile.BreakerSettings()

	return &Enforcer{
		resolved: resolved,
		breaker:  newBreaker(enabled, threshold),
		sink:     sink,
		builder:  sandbox.NewBuilder(bin),
		capable:  bin.Kind != sandbox.KindNone && resolved.SandboxEnabled,
	}, nil
}

// ProfileName reports the active profile after fallback resolution.
func (e *Enforcer) ProfileName() string {
	return e.resolved.ProfileName
}

// ConsecutiveBlocked exposes the breaker counter for observability.
func (e *Enforcer) ConsecutiveBlocked() int {
	return e.breaker.count()
}

// Classify decides the fate of one command. It never returns an error:
// the worst input yields a BLOCKED result with an explanatory reason.
// Every call emits exactly one audit event (plus one error-severity event
// at the moment the breaker trips).
func (e *Enforcer) Classify(command string) Result {
	result := e.classify(command)
	e.sink.Record(audit.Event{
		Operation:      audit.OpClassify,
		Command:        command,
		Severity:       severityFor(result.Classification),
		Classification: string(result.Classification),
		Reason:         result.Reason,
		Profile:        e.resolved.ProfileName,
	})
	return result
}

func (e *Enforcer) classify(command string) Result {
	// Nothing concrete to block, nothing to trust either.
	if strings.TrimSpace(command) == "" {
		return Result{Classification: NeedsApproval, CanSandbox: e.capable}
	}

	inner := e.evaluate(command)

	// The open breaker overrides everything except a SAFE result: a safe
	// command is the only way back to normal operation.
	if e.breaker.tripped() && inner.Classification != Safe {
		if inner.Classification == Blocked {
			e.breaker.recordBlocked()
		}
		return Result{
			Classification: Blocked,
			Reason:         fmt.Sprintf("circuit breaker open after %d consecutive blocked commands", e.breaker.count()),
		}
	}

	switch inner.Classification {
	case Safe:
		e.breaker.recordSafe()
	case Blocked:
		if e.breaker.recordBlocked() {
			e.sink.Record(audit.Event{
				Operation: audit.OpBreakerTrip,
				Command:   command,
				Severity:  audit.SeverityError,
				Reason:    fmt.Sprintf("circuit breaker tripped at %d consecutive blocked commands", e.breaker.count()),
				Profile:   e.resolved.ProfileName,
			})
		}
	}
	return inner
}

// evaluate runs the stateless classification rules in fixed order,
// short-circuiting on the first match.
func (e *Enforcer) evaluate(command string) Result {
	if finding, ok := detect.Scan(command); ok {
		return Result{Classification: Blocked, Reason: finding.Reason}
	}

	if pattern, ok := e.matchBlockedPattern(command); ok {
		return Result{
			Classification: Blocked,
			Reason:         fmt.Sprintf("matched blocked pattern %q", pattern),
		}
	}

	if e.matchSafeCommand(command) {
		return Result{Classification: Safe, CanSandbox: e.capable}
	}

	return Result{Classification: NeedsApproval, CanSandbox: e.capable}
}

// matchBlockedPattern treats entries as regex-capable substrings: an
// entry that compiles is applied as a regex, anything else degrades to a
// literal substring match.
func (e *Enforcer) matchBlockedPattern(command string) (string, bool) {
	for _, pattern := range e.resolved.Profile.BlockedPatterns {
		if re, err := regexp.Compile(pattern); err == nil {
			if re.MatchString(command) {
				return pattern, true
			}
			continue
		}
		if strings.Contains(command, pattern) {
			return pattern, true
		}
	}
	return "", false
}

// matchSafeCommand accepts an exact match or a safe-list entry followed
// by a word boundary ("git status" matches "git status --short" but not
// "git statusx").
func (e *Enforcer) matchSafeCommand(command string) bool {
	for _, entry := range e.resolved.Profile.SafeCommands {
		if entry == "" {
			continue
		}
		if command == entry {
			return true
		}
		if strings.HasPrefix(command, entry) && !isWordChar(command[len(entry)]) {
			return true
		}
	}
	return false
}

func isWordChar(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Wrap builds the argument vector for running an approved command inside
// the host's sandbox mechanism under the given boundaries. On hosts with
// no mechanism (or with sandboxing disabled by policy) the command is
// returned shell-word split, unmodified.
func (e *Enforcer) Wrap(command string, bounds sandbox.Boundaries) ([]string, error) {
	if !e.capable {
		return sandbox.NewBuilder(sandbox.Binary{Kind: sandbox.KindNone}).Build(command, bounds)
	}
	return e.builder.Build(command, bounds)
}

// SandboxBinary reports the resolved mechanism for this host.
func (e *Enforcer) SandboxBinary() sandbox.Binary {
	return e.builder.Binary()
}

func severityFor(c Classification) string {
	if c == Blocked {
		return audit.SeverityWarning
	}
	return audit.SeverityInfo
}
