package policy

import (
	"path/filepath"
	"testing"
)

const orgPack = `name: org-blocklist
description: Org-wide blocked patterns
version: "1.0"
author: secops
profiles:
  development:
    blocked_patterns:
      - "nc -l"
      - "rm -rf"
    safe_commands:
      - "make lint"
`

func TestMergePacks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "org.yaml"), orgPack)

	base := DefaultPolicy()
	baseBlocked := len(base.Profiles["development"].BlockedPatterns)

	merged, infos, err := MergePacks(dir, base)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Name != "org-blocklist" || !infos[0].Enabled {
		t.Fatalf("unexpected pack infos: %+v", infos)
	}

	dev := merged.Profiles["development"]
	if !contains(dev.BlockedPatterns, "nc -l") {
		t.Error("pack pattern not merged")
	}
	if !contains(dev.SafeCommands, "make lint") {
		t.Error("pack safe command not merged")
	}
	// "rm -rf" already exists in the base list; the union must not duplicate it.
	if got := len(dev.BlockedPatterns); got != baseBlocked+1 {
		t.Errorf("expected %d blocked patterns after merge, got %d", baseBlocked+1, got)
	}

	// The base policy must be untouched.
	if contains(base.Profiles["development"].BlockedPatterns, "nc -l") {
		t.Error("merge mutated the base policy")
	}
}

func TestMergePacks_DisabledPackSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "_org.yaml"), orgPack)

	merged, infos, err := MergePacks(dir, DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Enabled {
		t.Fatalf("expected one disabled pack, got %+v", infos)
	}
	if contains(merged.Profiles["development"].BlockedPatterns, "nc -l") {
		t.Error("disabled pack must not merge")
	}
}

func TestMergePacks_MissingDirIsNotAnError(t *testing.T) {
	base := DefaultPolicy()
	merged, infos, err := MergePacks(filepath.Join(t.TempDir(), "absent"), base)
	if err != nil {
		t.Fatal(err)
	}
	if merged != base || infos != nil {
		t.Error("missing directory must return the base policy unchanged")
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
