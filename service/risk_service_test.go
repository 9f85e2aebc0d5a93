package service

import (
	"context"
	"testing"
	"time"

	"diligence-backend/models"
	"diligence-backend/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRiskProvider substitutes the registry client with canned responses
type mockRiskProvider struct {
	summary       models.RiskSignalSet
	summaryErr    error
	caseStatus    models.SyncStatus
	caseStatusErr error
	casePage      *registry.CaseHistoryPage
	caseListErr   error

	caseListCalls int
}

func (m *mockRiskProvider) GetRiskSummary(ctx context.Context, taxID string) (models.RiskSignalSet, error) {
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	return m.summary.Clone(), nil
}

func (m *mockRiskProvider) GetCaseStatus(ctx context.Context, taxID string) (models.SyncStatus, error) {
	return m.caseStatus, m.caseStatusErr
}

func (m *mockRiskProvider) GetCaseList(ctx context.Context, taxID string, page int) (*registry.CaseHistoryPage, error) {
	m.caseListCalls++
	if m.caseListErr != nil {
		return nil, m.caseListErr
	}
	return m.casePage, nil
}

func refDate(year int) time.Time {
	return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC)
}

func TestBuildRiskProfileReconcilesFlagsAgainstCases(t *testing.T) {
	summary := models.NewRiskSignalSet()
	summary.Set(models.RiskAdministrativeOffenses)

	provider := &mockRiskProvider{
		summary:    summary,
		caseStatus: models.StatusYes,
		casePage: &registry.CaseHistoryPage{
			Content: []registry.CaseRow{
				{Number: "ADM-1", TypeID: 3, Year: 2021},
				{Number: "CIV-1", TypeID: 1, Year: 2025},
			},
		},
	}

	svc := NewRiskService(
		RiskWithProvider(provider),
		RiskWithReferenceDate(refDate(2026)),
	)

	result, err := svc.BuildRiskProfile(context.Background(), BuildRiskProfileRequest{TaxID: "555"})
	require.NoError(t, err)

	// The stale administrative flag is dropped; the recent civil case
	// forces its flag and survives as the only remaining case.
	assert.False(t, result.Signals.Has(models.RiskAdministrativeOffenses))
	assert.True(t, result.Signals.Has(models.RiskCivilProceedings))
	require.Equal(t, 1, result.Cases.Len())
	assert.Equal(t, "CIV-1", result.Cases.Cases()[0].Number)
}

func TestBuildRiskProfileSkipsCaseFetchWhenGateSaysNo(t *testing.T) {
	provider := &mockRiskProvider{
		summary:    models.NewRiskSignalSet(),
		caseStatus: models.StatusNo,
	}

	svc := NewRiskService(
		RiskWithProvider(provider),
		RiskWithReferenceDate(refDate(2026)),
	)

	result, err := svc.BuildRiskProfile(context.Background(), BuildRiskProfileRequest{TaxID: "555"})
	require.NoError(t, err)

	assert.Equal(t, 0, provider.caseListCalls)
	assert.Equal(t, 0, result.Cases.Len())
}

func TestBuildRiskProfileUsesReferenceDateForWindows(t *testing.T) {
	summary := models.NewRiskSignalSet()
	summary.Set(models.RiskAdministrativeOffenses)

	provider := &mockRiskProvider{
		summary:    summary,
		caseStatus: models.StatusYes,
		casePage: &registry.CaseHistoryPage{
			Content: []registry.CaseRow{{Number: "ADM-1", TypeID: 3, Year: 2021}},
		},
	}

	// Anchored at 2023 the same case is one year old and within the window.
	svc := NewRiskService(
		RiskWithProvider(provider),
		RiskWithReferenceDate(refDate(2023)),
	)

	result, err := svc.BuildRiskProfile(context.Background(), BuildRiskProfileRequest{TaxID: "555"})
	require.NoError(t, err)

	assert.True(t, result.Signals.Has(models.RiskAdministrativeOffenses))
	assert.Equal(t, 1, result.Cases.Len())
}

func TestBuildRiskProfileCustomWindow(t *testing.T) {
	provider := &mockRiskProvider{
		summary:    models.NewRiskSignalSet(),
		caseStatus: models.StatusYes,
		casePage: &registry.CaseHistoryPage{
			Content: []registry.CaseRow{{Number: "CIV-1", TypeID: 1, Year: 2020}},
		},
	}

	svc := NewRiskService(
		RiskWithProvider(provider),
		RiskWithReferenceDate(refDate(2026)),
		RiskWithCaseWindow(10),
	)

	result, err := svc.BuildRiskProfile(context.Background(), BuildRiskProfileRequest{TaxID: "555"})
	require.NoError(t, err)

	assert.True(t, result.Signals.Has(models.RiskCivilProceedings))
}

func TestBuildRiskProfileRequiresProvider(t *testing.T) {
	svc := NewRiskService()

	_, err := svc.BuildRiskProfile(context.Background(), BuildRiskProfileRequest{TaxID: "555"})
	assert.ErrorIs(t, err, ErrProviderNotSet)
}

func TestBuildRiskProfilePropagatesProviderErrors(t *testing.T) {
	provider := &mockRiskProvider{summaryErr: registry.ErrServiceUnavailable}

	svc := NewRiskService(
		RiskWithProvider(provider),
		RiskWithReferenceDate(refDate(2026)),
	)

	_, err := svc.BuildRiskProfile(context.Background(), BuildRiskProfileRequest{TaxID: "555"})
	assert.ErrorIs(t, err, registry.ErrServiceUnavailable)
}

func TestBuildRiskProfileRejectsMalformedCasePage(t *testing.T) {
	provider := &mockRiskProvider{
		summary:    models.NewRiskSignalSet(),
		caseStatus: models.StatusYes,
		casePage: &registry.CaseHistoryPage{
			Content: []registry.CaseRow{{Number: "X-1", TypeID: 42, Year: 2024}},
		},
	}

	svc := NewRiskService(
		RiskWithProvider(provider),
		RiskWithReferenceDate(refDate(2026)),
	)

	_, err := svc.BuildRiskProfile(context.Background(), BuildRiskProfileRequest{TaxID: "555"})
	assert.ErrorIs(t, err, registry.ErrMalformedPayload)
}
