package service

import (
	"context"
	"errors"
	"time"

	"diligence-backend/models"
	"diligence-backend/registry"
)

// RiskDataProvider is the slice of the registry client the risk service
// consumes. Kept narrow so tests can substitute it.
type RiskDataProvider interface {
	GetRiskSummary(ctx context.Context, taxID string) (models.RiskSignalSet, error)
	GetCaseStatus(ctx context.Context, taxID string) (models.SyncStatus, error)
	GetCaseList(ctx context.Context, taxID string, page int) (*registry.CaseHistoryPage, error)
}

// RiskService assembles the reconciled risk profile for one applicant
type RiskService struct {
	provider      RiskDataProvider
	referenceDate time.Time
	windowYears   int
}

// RiskServiceOption is a functional option for RiskService
type RiskServiceOption func(*RiskService)

// RiskWithProvider sets the registry data provider
func RiskWithProvider(p RiskDataProvider) RiskServiceOption {
	return func(s *RiskService) {
		s.provider = p
	}
}

// RiskWithReferenceDate fixes the date all age windows are computed
// against. Set once at process start so a run spanning midnight stays
// temporally consistent.
func RiskWithReferenceDate(d time.Time) RiskServiceOption {
	return func(s *RiskService) {
		s.referenceDate = d
	}
}

// RiskWithCaseWindow overrides the civil/administrative age window
func RiskWithCaseWindow(years int) RiskServiceOption {
	return func(s *RiskService) {
		s.windowYears = years
	}
}

// NewRiskService creates a new risk service
func NewRiskService(opts ...RiskServiceOption) *RiskService {
	s := &RiskService{
		referenceDate: time.Now(),
		windowYears:   models.DefaultCaseWindowYears,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var ErrProviderNotSet = errors.New("risk data provider not set")

// BuildRiskProfileRequest identifies the applicant to profile
type BuildRiskProfileRequest struct {
	TaxID string
}

// BuildRiskProfileResult carries the reconciled outputs that drive
// report content
type BuildRiskProfileResult struct {
	Signals models.RiskSignalSet
	Cases   *models.CaseStore
}

// BuildRiskProfile fetches the raw risk signals and case history for one
// applicant and reconciles them into the final profile. The case-history
// fetch only happens when the provider's status gate says cases exist.
func (s *RiskService) BuildRiskProfile(
	ctx context.Context,
	req BuildRiskProfileRequest,
) (*BuildRiskProfileResult, error) {
	if s.provider == nil {
		return nil, ErrProviderNotSet
	}

	signals, err := s.provider.GetRiskSummary(ctx, req.TaxID)
	if err != nil {
		return nil, err
	}

	store := models.NewCaseStore(s.referenceDate.Year())

	status, err := s.provider.GetCaseStatus(ctx, req.TaxID)
	if err != nil {
		return nil, err
	}

	if status == models.StatusYes {
		page, err := s.provider.GetCaseList(ctx, req.TaxID, 1)
		if err != nil {
			return nil, err
		}
		cases, err := page.LegalCases()
		if err != nil {
			return nil, err
		}
		for _, c := range cases {
			store.Append(c)
		}
	}

	Reconcile(signals, store, s.windowYears)

	return &BuildRiskProfileResult{
		Signals: signals,
		Cases:   store,
	}, nil
}
