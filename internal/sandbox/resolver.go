// Package sandbox resolves the host's sandboxing mechanism and builds the
// argument vector for wrapping a command in it. It never spawns
// processes; callers hand the built vector to their own exec layer.
package sandbox

import (
	"os/exec"
	"runtime"
)

// Kind identifies the wrapper mechanism usable on the current host.
type Kind string

const (
	KindNone        Kind = "none"
	KindBwrap       Kind = "bwrap"
	KindSandboxExec Kind = "sandbox-exec"
)

// Binary is a resolved sandbox executable. Path is empty for KindNone.
type Binary struct {
	Kind Kind
	Path string
}

// Resolver detects which sandbox binary, if any, is available. One
// implementation exists per supported OS family; the right one is picked
// once at construction and injected wherever wrapping happens, so tests
// substitute a resolver instead of mocking the environment.
type Resolver interface {
	Resolve() Binary
}

// LookPathFunc matches exec.LookPath; injectable for tests.
type LookPathFunc func(file string) (string, error)

// NewResolver returns the resolver for the given GOOS value. A nil
// lookPath defaults to exec.LookPath.
func NewResolver(goos string, lookPath LookPathFunc) Resolver {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	switch goos {
	case "linux":
		return linuxResolver{lookPath: lookPath}
	case "darwin":
		return darwinResolver{lookPath: lookPath}
	default:
		return noneResolver{}
	}
}

// HostResolver returns the resolver for the running OS.
func HostResolver() Resolver {
	return NewResolver(runtime.GOOS, nil)
}

type linuxResolver struct {
	lookPath LookPathFunc
}

func (r linuxResolver) Resolve() Binary {
	if path, err := r.lookPath("bwrap"); err == nil {
		return Binary{Kind: KindBwrap, Path: path}
	}
	return Binary{Kind: KindNone}
}

type darwinResolver struct {
	lookPath LookPathFunc
}

func (r darwinResolver) Resolve() Binary {
	if path, err := r.lookPath("sandbox-exec"); err == nil {
		return Binary{Kind: KindSandboxExec, Path: path}
	}
	return Binary{Kind: KindNone}
}

// noneResolver covers Windows and any unrecognized OS: no lookup is
// performed at all.
type noneResolver struct{}

func (noneResolver) Resolve() Binary {
	return Binary{Kind: KindNone}
}
