package enforcer

// Classification is the three-way verdict for a candidate command.
type Classification string

const (
	Safe          Classification = "SAFE"
	Blocked       Classification = "BLOCKED"
	NeedsApproval Classification = "NEEDS_APPROVAL"
)

// Result is the outcome of classifying one command. It is produced fresh
// on every call and never mutated after return.
type Result struct {
	Classification Classification

	// Reason is non-empty whenever the classification is BLOCKED; it
	// names the matched token or category so operators can tune policy.
	Reason string

	// CanSandbox reports whether the command, if approved, can be handed
	// to the argument builder on this host. False when the command is
	// blocked or no sandbox mechanism is available for the platform.
	CanSandbox bool
}
