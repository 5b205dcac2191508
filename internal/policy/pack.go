package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pack is a YAML document of additional patterns distributed separately
// from the base policy (e.g. an org-wide blocklist). Pack entries are
// unioned into the matching profiles of the loaded policy; profiles named
// by a pack but absent from the policy are ignored.
type Pack struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	PackVersion string                 `yaml:"version"`
	Author      string                 `yaml:"author"`
	Profiles    map[string]PackProfile `yaml:"profiles"`
}

// PackProfile is the per-profile contribution of a pack.
type PackProfile struct {
	SafeCommands    []string `yaml:"safe_commands"`
	BlockedPatterns []string `yaml:"blocked_patterns"`
}

// PackInfo summarizes a discovered pack for listing.
type PackInfo struct {
	Name        string
	Description string
	Version     string
	Author      string
	Enabled     bool
	Path        string
}

// MergePacks reads all .yaml/.yml files from packsDir and unions their
// patterns into a copy of base. A filename starting with "_" marks a pack
// as disabled; it is listed but not merged. A missing directory is not an
// error.
func MergePacks(packsDir string, base *Policy) (*Policy, []PackInfo, error) {
	entries, err := os.ReadDir(packsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil, nil
		}
		return nil, nil, err
	}

	result := clonePolicy(base)
	var infos []PackInfo

	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}

		path := filepath.Join(packsDir, entry.Name())
		baseName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		enabled := !strings.HasPrefix(baseName, "_")

		pack, err := loadPack(path)
		if err != nil {
			infos = append(infos, PackInfo{Name: baseName, Enabled: enabled, Path: path})
			continue
		}

		info := PackInfo{
			Name:        pack.Name,
			Description: pack.Description,
			Version:     pack.PackVersion,
			Author:      pack.Author,
			Enabled:     enabled,
			Path:        path,
		}
		if info.Name == "" {
			info.Name = baseName
		}
		infos = append(infos, info)

		if enabled {
			mergePackInto(result, pack)
		}
	}

	return result, infos, nil
}

func loadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parsing pack %s: %w", path, err)
	}
	return &pack, nil
}

func mergePackInto(target *Policy, pack *Pack) {
	for name, contribution := range pack.Profiles {
		profile, ok := target.Profiles[name]
		if !ok {
			continue
		}
		profile.SafeCommands = union(profile.SafeCommands, contribution.SafeCommands)
		profile.BlockedPatterns = union(profile.BlockedPatterns, contribution.BlockedPatterns)
		target.Profiles[name] = profile
	}
}

func union(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range extra {
		if !seen[s] {
			existing = append(existing, s)
			seen[s] = true
		}
	}
	return existing
}

func clonePolicy(p *Policy) *Policy {
	clone := &Policy{
		Version:        p.Version,
		DefaultProfile: p.DefaultProfile,
		Profiles:       make(map[string]ProfileConfig, len(p.Profiles)),
	}
	for name, profile := range p.Profiles {
		cp := profile
		cp.SafeCommands = append([]string(nil), profile.SafeCommands...)
		cp.BlockedPatterns = append([]string(nil), profile.BlockedPatterns...)
		if profile.CircuitBreaker != nil {
			breaker := *profile.CircuitBreaker
			cp.CircuitBreaker = &breaker
		}
		clone.Profiles[name] = cp
	}
	return clone
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
