package models

import (
	"fmt"
	"sort"
)

// Canonical risk categories the reconciliation engine owns. All other
// categories pass through from the registry untouched.
const (
	RiskAdministrativeOffenses = "administrative_offenses"
	RiskCriminalProceedings    = "criminal_proceedings"
	RiskCivilProceedings       = "civil_proceedings"
)

// RiskSignalSet maps a provider-defined risk category to its presence.
// Only categories the provider reports as present are retained by the
// initial fetch; the reconciliation engine then adds and removes entries
// in place.
type RiskSignalSet map[string]bool

// NewRiskSignalSet creates an empty signal set
func NewRiskSignalSet() RiskSignalSet {
	return make(RiskSignalSet)
}

// Set marks a risk category as present
func (r RiskSignalSet) Set(category string) {
	r[category] = true
}

// Remove drops a risk category from the set
func (r RiskSignalSet) Remove(category string) {
	delete(r, category)
}

// Has reports whether a risk category is flagged as present
func (r RiskSignalSet) Has(category string) bool {
	return r[category]
}

// Len returns the number of flagged categories
func (r RiskSignalSet) Len() int {
	return len(r)
}

// Categories returns the flagged category names in sorted order,
// for deterministic rendering
func (r RiskSignalSet) Categories() []string {
	out := make([]string, 0, len(r))
	for category, present := range r {
		if present {
			out = append(out, category)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the signal set
func (r RiskSignalSet) Clone() RiskSignalSet {
	out := make(RiskSignalSet, len(r))
	for category, present := range r {
		out[category] = present
	}
	return out
}

// SyncStatus represents the readiness of an asynchronous provider-side
// computation, not a risk boolean
type SyncStatus string

const (
	StatusYes  SyncStatus = "YES"
	StatusNo   SyncStatus = "NO"
	StatusSync SyncStatus = "SYNC"
	StatusInit SyncStatus = "INIT"
)

// ParseSyncStatus validates a raw provider status value at the boundary
func ParseSyncStatus(raw string) (SyncStatus, error) {
	switch SyncStatus(raw) {
	case StatusYes, StatusNo, StatusSync, StatusInit:
		return SyncStatus(raw), nil
	default:
		return "", fmt.Errorf("unknown sync status: %q", raw)
	}
}
