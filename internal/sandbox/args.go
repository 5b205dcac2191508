package sandbox

import (
	"fmt"

	"mvdan.cc/sh/v3/shell"
)

// Boundaries is the caller-supplied filesystem/network access envelope
// for one sandboxed invocation.
type Boundaries struct {
	ReadOnly  []string
	ReadWrite []string
	Network   bool
}

// Builder emits the argument vector for invoking the resolved sandbox
// binary around a command. With no usable binary it degrades to a plain
// shell-word split of the command: passthrough, not failure.
type Builder struct {
	bin Binary

	// writeProfile persists a generated sandbox-exec profile and returns
	// its path. Defaults to a temp-file writer; injectable for tests.
	writeProfile func(profile string) (string, error)
}

// NewBuilder creates a Builder around the given resolved binary.
func NewBuilder(bin Binary) *Builder {
	return &Builder{bin: bin, writeProfile: writeProfileFile}
}

// Binary reports the mechanism this builder wraps with.
func (b *Builder) Binary() Binary {
	return b.bin
}

// Build returns the argv for running command under the sandbox described
// by bounds. The command always comes last. Empty boundaries still yield
// a well-formed invocation.
func (b *Builder) Build(command string, bounds Boundaries) ([]string, error) {
	tokens, err := shell.Fields(command, nil)
	if err != nil {
		return nil, fmt.Errorf("splitting command: %w", err)
	}

	switch b.bin.Kind {
	case KindBwrap:
		return b.buildBwrap(tokens, bounds), nil
	case KindSandboxExec:
		return b.buildSandboxExec(tokens, bounds)
	default:
		return tokens, nil
	}
}

func (b *Builder) buildBwrap(tokens []string, bounds Boundaries) []string {
	argv := []string{b.bin.Path}
	for _, path := range bounds.ReadOnly {
		argv = append(argv, "--ro-bind", path, path)
	}
	for _, path := range bounds.ReadWrite {
		argv = append(argv, "--bind", path, path)
	}
	if !bounds.Network {
		argv = append(argv, "--unshare-net")
	}
	argv = append(argv, "--")
	return append(argv, tokens...)
}

func (b *Builder) buildSandboxExec(tokens []string, bounds Boundaries) ([]string, error) {
	profilePath, err := b.writeProfile(GenerateProfile(bounds))
	if err != nil {
		return nil, fmt.Errorf("writing sandbox profile: %w", err)
	}
	argv := []string{b.bin.Path, "-f", profilePath}
	return append(argv, tokens...), nil
}
