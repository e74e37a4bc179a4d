package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SizeTier maps a table size range to a recommended subpartition count.
type SizeTier struct {
	MaxSizeGB         float64 `json:"max_size_gb" yaml:"max_size_gb"` // 0 means unbounded
	SubpartitionCount int     `json:"subpartition_count" yaml:"subpartition_count"`
}

// EnvironmentProfile carries the storage defaults and bounds for one named
// environment. A named profile is resolved by merging the "global" baseline
// with the environment-specific override, override winning field by field.
type EnvironmentProfile struct {
	Name string `json:"name" yaml:"name"`

	DefaultTablespace      string   `json:"default_tablespace,omitempty" yaml:"default_tablespace,omitempty"`
	DefaultIndexTablespace string   `json:"default_index_tablespace,omitempty" yaml:"default_index_tablespace,omitempty"`
	DefaultLOBTablespace   string   `json:"default_lob_tablespace,omitempty" yaml:"default_lob_tablespace,omitempty"`
	AllowedTablespaces     []string `json:"allowed_tablespaces,omitempty" yaml:"allowed_tablespaces,omitempty"`

	MinSubpartitionCount int        `json:"min_subpartition_count,omitempty" yaml:"min_subpartition_count,omitempty"`
	MaxSubpartitionCount int        `json:"max_subpartition_count,omitempty" yaml:"max_subpartition_count,omitempty"`
	SizeTiers            []SizeTier `json:"size_tiers,omitempty" yaml:"size_tiers,omitempty"`

	MinParallelDegree     int `json:"min_parallel_degree,omitempty" yaml:"min_parallel_degree,omitempty"`
	MaxParallelDegree     int `json:"max_parallel_degree,omitempty" yaml:"max_parallel_degree,omitempty"`
	DefaultParallelDegree int `json:"default_parallel_degree,omitempty" yaml:"default_parallel_degree,omitempty"`
}

// GlobalProfile returns the baseline profile every environment inherits.
func GlobalProfile() EnvironmentProfile {
	return EnvironmentProfile{
		Name:                   "global",
		DefaultTablespace:      "USERS",
		DefaultIndexTablespace: "USERS",
		DefaultLOBTablespace:   "USERS",
		MinSubpartitionCount:   1,
		MaxSubpartitionCount:   1024,
		SizeTiers: []SizeTier{
			{MaxSizeGB: 1, SubpartitionCount: 2},
			{MaxSizeGB: 10, SubpartitionCount: 4},
			{MaxSizeGB: 50, SubpartitionCount: 8},
			{MaxSizeGB: 100, SubpartitionCount: 12},
			{MaxSizeGB: 0, SubpartitionCount: 16},
		},
		MinParallelDegree:     1,
		MaxParallelDegree:     16,
		DefaultParallelDegree: 2,
	}
}

// Merge returns a copy of the base profile with every non-zero field of the
// override applied on top.
func Merge(base, override EnvironmentProfile) EnvironmentProfile {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.DefaultTablespace != "" {
		out.DefaultTablespace = override.DefaultTablespace
	}
	if override.DefaultIndexTablespace != "" {
		out.DefaultIndexTablespace = override.DefaultIndexTablespace
	}
	if override.DefaultLOBTablespace != "" {
		out.DefaultLOBTablespace = override.DefaultLOBTablespace
	}
	if len(override.AllowedTablespaces) > 0 {
		out.AllowedTablespaces = override.AllowedTablespaces
	}
	if override.MinSubpartitionCount != 0 {
		out.MinSubpartitionCount = override.MinSubpartitionCount
	}
	if override.MaxSubpartitionCount != 0 {
		out.MaxSubpartitionCount = override.MaxSubpartitionCount
	}
	if len(override.SizeTiers) > 0 {
		out.SizeTiers = override.SizeTiers
	}
	if override.MinParallelDegree != 0 {
		out.MinParallelDegree = override.MinParallelDegree
	}
	if override.MaxParallelDegree != 0 {
		out.MaxParallelDegree = override.MaxParallelDegree
	}
	if override.DefaultParallelDegree != 0 {
		out.DefaultParallelDegree = override.DefaultParallelDegree
	}
	return out
}

// RecommendedSubpartitions returns the size-tier recommendation for a table
// of the given size.
func (e *EnvironmentProfile) RecommendedSubpartitions(sizeGB float64) int {
	for _, tier := range e.SizeTiers {
		if tier.MaxSizeGB == 0 || sizeGB <= tier.MaxSizeGB {
			return tier.SubpartitionCount
		}
	}
	return 0
}

// TablespaceAllowed reports whether the named tablespace is permitted in this
// environment. An empty allow-list permits everything.
func (e *EnvironmentProfile) TablespaceAllowed(name string) bool {
	if len(e.AllowedTablespaces) == 0 {
		return true
	}
	for _, ts := range e.AllowedTablespaces {
		if ts == name {
			return true
		}
	}
	return false
}

// environmentsFile is the on-disk shape of an environment override file: a
// map of environment name to partial profile.
type environmentsFile struct {
	Environments map[string]EnvironmentProfile `yaml:"environments"`
}

// ResolveEnvironment merges the global baseline with the named override from
// the given YAML file. An empty path or an unknown name yields the baseline
// with the requested name.
func ResolveEnvironment(path, name string) (EnvironmentProfile, error) {
	profile := GlobalProfile()
	if name == "" || name == "global" {
		return profile, nil
	}

	if path == "" {
		profile.Name = name
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("reading environments file: %w", err)
	}

	var ef environmentsFile
	if err := yaml.Unmarshal(data, &ef); err != nil {
		return profile, fmt.Errorf("parsing environments file: %w", err)
	}

	// A "global" entry in the file overrides the built-in baseline before the
	// named environment is applied.
	if global, ok := ef.Environments["global"]; ok {
		profile = Merge(profile, global)
		profile.Name = "global"
	}

	override, ok := ef.Environments[name]
	if !ok {
		profile.Name = name
		return profile, nil
	}
	override.Name = name
	return Merge(profile, override), nil
}
