package models

import (
	"fmt"
	"time"
)

// CaseKind classifies a legal case record
type CaseKind int

const (
	CaseKindCivil          CaseKind = 1
	CaseKindCriminal       CaseKind = 2
	CaseKindAdministrative CaseKind = 3
)

// String returns a human-readable name for the case kind
func (k CaseKind) String() string {
	switch k {
	case CaseKindCivil:
		return "civil"
	case CaseKindCriminal:
		return "criminal"
	case CaseKindAdministrative:
		return "administrative"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// CaseKindFromCode maps a provider type code to a CaseKind.
// The registry encodes kinds as small integers: 1=civil, 2=criminal, 3=administrative.
func CaseKindFromCode(code int) (CaseKind, error) {
	switch code {
	case 1:
		return CaseKindCivil, nil
	case 2:
		return CaseKindCriminal, nil
	case 3:
		return CaseKindAdministrative, nil
	default:
		return 0, fmt.Errorf("unknown case type code: %d", code)
	}
}

// LegalCase represents one litigation or administrative record for an applicant.
// Records are created in bulk from a case-history fetch and never mutated
// afterwards; they are only removed from the store.
type LegalCase struct {
	Category   string     `json:"category"`
	Number     string     `json:"number"`
	Part       string     `json:"part"`
	Kind       CaseKind   `json:"kind"`
	Date       *time.Time `json:"date,omitempty"` // some records only carry a year
	ProviderID int64      `json:"provider_id"`
	Organ      string     `json:"organ"`
	Plaintiff  *string    `json:"plaintiff,omitempty"`
	Defendant  *string    `json:"defendant,omitempty"`
	Role       *string    `json:"role,omitempty"`
	Result     string     `json:"result"`
	Status     *string    `json:"status,omitempty"`
	Year       int        `json:"year"` // always populated, even when Date is absent
}

// DefaultCaseWindowYears is the age window applied to civil and
// administrative cases when deciding whether they still count as risk.
const DefaultCaseWindowYears = 3

// CaseStore holds the legal-case history for one applicant in stable
// insertion order. The reference year is fixed at construction so that a
// single run produces temporally consistent results even if it spans
// real time.
type CaseStore struct {
	referenceYear int
	cases         []LegalCase
}

// NewCaseStore creates an empty case store anchored at the given reference year
func NewCaseStore(referenceYear int) *CaseStore {
	return &CaseStore{referenceYear: referenceYear}
}

// Append adds a case to the store
func (s *CaseStore) Append(c LegalCase) {
	s.cases = append(s.cases, c)
}

// Cases returns the stored cases in insertion order
func (s *CaseStore) Cases() []LegalCase {
	return s.cases
}

// Len returns the number of stored cases
func (s *CaseStore) Len() int {
	return len(s.cases)
}

// ReferenceYear returns the year the store's age windows are anchored at
func (s *CaseStore) ReferenceYear() int {
	return s.referenceYear
}

// HasCases reports whether the store holds relevant cases of the given kind.
// Criminal history never expires: any criminal case counts regardless of age.
// Civil and administrative cases count only within |referenceYear - year| <= maxDelta.
func (s *CaseStore) HasCases(kind CaseKind, maxDelta int) bool {
	for _, c := range s.cases {
		if c.Kind != kind {
			continue
		}
		if kind == CaseKindCriminal {
			return true
		}
		delta := s.referenceYear - c.Year
		if delta < 0 {
			delta = -delta
		}
		if delta <= maxDelta {
			return true
		}
	}
	return false
}

// RemoveCases evicts every case of the given kind, preserving the relative
// order of the remaining cases
func (s *CaseStore) RemoveCases(kind CaseKind) {
	kept := s.cases[:0]
	for _, c := range s.cases {
		if c.Kind != kind {
			kept = append(kept, c)
		}
	}
	s.cases = kept
}
