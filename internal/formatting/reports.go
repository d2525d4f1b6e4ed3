package formatting

import (
	"strata/internal/dependency"
)

// Order directions
const (
	DirectionInitialization = "initialization"
	DirectionShutdown       = "shutdown"
)

// OrderReport is an initialization or shutdown order.
type OrderReport struct {
	Direction  string       `yaml:"direction" json:"direction"`
	Components []OrderEntry `yaml:"components" json:"components"`
}

// OrderEntry is one position of an order.
type OrderEntry struct {
	Position     int      `yaml:"position" json:"position"`
	Component    string   `yaml:"component" json:"component"`
	Version      string   `yaml:"version,omitempty" json:"version,omitempty"`
	Defined      bool     `yaml:"defined" json:"defined"`
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// CheckReport lists everything that prevents a clean start.
type CheckReport struct {
	Cycle      []string          `yaml:"cycle,omitempty" json:"cycle,omitempty"`
	Missing    []MissingEntry    `yaml:"missing,omitempty" json:"missing,omitempty"`
	Mismatches []MismatchEntry   `yaml:"versionMismatches,omitempty" json:"versionMismatches,omitempty"`
	Optional   []MissingEntry    `yaml:"missingOptional,omitempty" json:"missingOptional,omitempty"`
	Summary    CheckReportStatus `yaml:"status" json:"status"`
}

// CheckReportStatus is the overall outcome of a check.
type CheckReportStatus string

const (
	StatusOK     CheckReportStatus = "ok"
	StatusFailed CheckReportStatus = "failed"
)

// MissingEntry names a component and the dependencies it lacks.
type MissingEntry struct {
	Component string   `yaml:"component" json:"component"`
	Missing   []string `yaml:"missing" json:"missing"`
}

// MismatchEntry is a dependency whose version violates a declared constraint.
type MismatchEntry struct {
	Component  string `yaml:"component" json:"component"`
	Dependency string `yaml:"dependency" json:"dependency"`
	Constraint string `yaml:"constraint" json:"constraint"`
	Version    string `yaml:"version" json:"version"`
	Reason     string `yaml:"reason" json:"reason"`
}

// Failed reports whether the check found a blocking problem.
func (r CheckReport) Failed() bool {
	return len(r.Cycle) > 0 || len(r.Missing) > 0 || len(r.Mismatches) > 0
}

// Finalize sets the summary status from the report contents.
func (r *CheckReport) Finalize() {
	if r.Failed() {
		r.Summary = StatusFailed
	} else {
		r.Summary = StatusOK
	}
}

// NewMismatchEntries converts version mismatches into report entries.
func NewMismatchEntries(mismatches []dependency.VersionMismatch) []MismatchEntry {
	entries := make([]MismatchEntry, 0, len(mismatches))
	for _, m := range mismatches {
		entries = append(entries, MismatchEntry{
			Component:  m.Component.String(),
			Dependency: m.Dependency.String(),
			Constraint: m.Constraint,
			Version:    m.Version,
			Reason:     m.Reason,
		})
	}
	return entries
}

// KeyStrings converts keys to their "type/provider" form.
func KeyStrings(keys []dependency.ComponentKey) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, key.String())
	}
	return out
}
