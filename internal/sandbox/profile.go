package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateProfile renders an Apple Sandbox Profile Language (SBPL)
// document encoding the boundaries: deny by default, reads allowed for
// the read-only and read-write paths, writes only for read-write paths,
// network per the flag.
func GenerateProfile(bounds Boundaries) string {
	var b strings.Builder

	b.WriteString("(version 1)\n")
	b.WriteString("(deny default)\n")
	b.WriteString("(allow process*)\n")
	b.WriteString("(allow signal)\n")
	b.WriteString("(allow sysctl-read)\n")
	b.WriteString("(allow mach-lookup)\n")

	for _, path := range bounds.ReadOnly {
		if abs := absOrEmpty(path); abs != "" {
			fmt.Fprintf(&b, "(allow file-read* (subpath %q))\n", abs)
		}
	}
	for _, path := range bounds.ReadWrite {
		if abs := absOrEmpty(path); abs != "" {
			fmt.Fprintf(&b, "(allow file-read* (subpath %q))\n", abs)
			fmt.Fprintf(&b, "(allow file-write* (subpath %q))\n", abs)
		}
	}

	if bounds.Network {
		b.WriteString("(allow network*)\n")
	}

	return b.String()
}

func absOrEmpty(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	return abs
}

func writeProfileFile(profile string) (string, error) {
	f, err := os.CreateTemp("", "shellgate-profile-*.sb")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(profile); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}
