package sandbox

import (
	"errors"
	"testing"
)

func foundLookPath(t *testing.T, wantName, path string) LookPathFunc {
	return func(file string) (string, error) {
		if file != wantName {
			t.Errorf("looked up %q, want %q", file, wantName)
		}
		return path, nil
	}
}

func missingLookPath(string) (string, error) {
	return "", errors.New("executable file not found in $PATH")
}

func TestNewResolver_Matrix(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		lookPath LookPathFunc
		want     Binary
	}{
		{"linux with bwrap", "linux", nil, Binary{Kind: KindBwrap, Path: "/usr/bin/bwrap"}},
		{"linux without bwrap", "linux", missingLookPath, Binary{Kind: KindNone}},
		{"darwin with sandbox-exec", "darwin", nil, Binary{Kind: KindSandboxExec, Path: "/usr/bin/sandbox-exec"}},
		{"darwin without sandbox-exec", "darwin", missingLookPath, Binary{Kind: KindNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookPath := tt.lookPath
			if lookPath == nil {
				switch tt.goos {
				case "linux":
					lookPath = foundLookPath(t, "bwrap", tt.want.Path)
				case "darwin":
					lookPath = foundLookPath(t, "sandbox-exec", tt.want.Path)
				}
			}
			got := NewResolver(tt.goos, lookPath).Resolve()
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewResolver_WindowsNeverLooksUp(t *testing.T) {
	lookPath := func(file string) (string, error) {
		t.Fatalf("unexpected executable lookup for %q", file)
		return "", nil
	}

	for _, goos := range []string{"windows", "plan9", "js"} {
		got := NewResolver(goos, lookPath).Resolve()
		if got.Kind != KindNone {
			t.Errorf("goos %s: expected NONE, got %+v", goos, got)
		}
	}
}
