package service

import (
	"testing"

	"diligence-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileStaleAdministrativeFlag(t *testing.T) {
	// The provider flags administrative offenses, but the only
	// administrative case is five years old. A recent civil case exists.
	signals := models.NewRiskSignalSet()
	signals.Set(models.RiskAdministrativeOffenses)

	store := models.NewCaseStore(2026)
	store.Append(models.LegalCase{Number: "ADM-1", Kind: models.CaseKindAdministrative, Year: 2021})
	store.Append(models.LegalCase{Number: "CIV-1", Kind: models.CaseKindCivil, Year: 2025})

	Reconcile(signals, store, models.DefaultCaseWindowYears)

	assert.False(t, signals.Has(models.RiskAdministrativeOffenses))
	assert.True(t, signals.Has(models.RiskCivilProceedings))
	assert.Equal(t, 1, signals.Len())

	require.Equal(t, 1, store.Len())
	assert.Equal(t, "CIV-1", store.Cases()[0].Number)
}

func TestReconcileAdministrativeFlagWithinWindowSurvives(t *testing.T) {
	signals := models.NewRiskSignalSet()
	signals.Set(models.RiskAdministrativeOffenses)

	store := models.NewCaseStore(2026)
	store.Append(models.LegalCase{Kind: models.CaseKindAdministrative, Year: 2024})

	Reconcile(signals, store, models.DefaultCaseWindowYears)

	assert.True(t, signals.Has(models.RiskAdministrativeOffenses))
	assert.Equal(t, 1, store.Len())
}

func TestReconcileCriminalCaseForcesFlag(t *testing.T) {
	// The criminal flag is derived from case history even when the
	// provider never reported it, and criminal history never expires.
	signals := models.NewRiskSignalSet()

	store := models.NewCaseStore(2026)
	store.Append(models.LegalCase{Kind: models.CaseKindCriminal, Year: 2001})

	Reconcile(signals, store, models.DefaultCaseWindowYears)

	assert.True(t, signals.Has(models.RiskCriminalProceedings))
	assert.Equal(t, 1, signals.Len())
	assert.Equal(t, 1, store.Len())
}

func TestReconcileStaleCivilCasesEvicted(t *testing.T) {
	signals := models.NewRiskSignalSet()

	store := models.NewCaseStore(2026)
	store.Append(models.LegalCase{Kind: models.CaseKindCivil, Year: 2019})
	store.Append(models.LegalCase{Kind: models.CaseKindCivil, Year: 2020})

	Reconcile(signals, store, models.DefaultCaseWindowYears)

	assert.False(t, signals.Has(models.RiskCivilProceedings))
	assert.Equal(t, 0, store.Len())
}

func TestReconcileLeavesUnrelatedSignalsAlone(t *testing.T) {
	signals := models.NewRiskSignalSet()
	signals.Set("tax_arrears")

	store := models.NewCaseStore(2026)

	Reconcile(signals, store, models.DefaultCaseWindowYears)

	assert.True(t, signals.Has("tax_arrears"))
	assert.Equal(t, 1, signals.Len())
}

func TestReconcileIdempotent(t *testing.T) {
	signals := models.NewRiskSignalSet()
	signals.Set(models.RiskAdministrativeOffenses)
	signals.Set("tax_arrears")

	store := models.NewCaseStore(2026)
	store.Append(models.LegalCase{Number: "ADM-1", Kind: models.CaseKindAdministrative, Year: 2025})
	store.Append(models.LegalCase{Number: "CRI-1", Kind: models.CaseKindCriminal, Year: 2010})
	store.Append(models.LegalCase{Number: "CIV-1", Kind: models.CaseKindCivil, Year: 2019})

	Reconcile(signals, store, models.DefaultCaseWindowYears)

	first := signals.Clone()
	firstCases := append([]models.LegalCase(nil), store.Cases()...)

	Reconcile(signals, store, models.DefaultCaseWindowYears)

	assert.Equal(t, first, signals)
	assert.Equal(t, firstCases, store.Cases())
}

func TestReconcileEmptyInputs(t *testing.T) {
	signals := models.NewRiskSignalSet()
	store := models.NewCaseStore(2026)

	Reconcile(signals, store, models.DefaultCaseWindowYears)

	assert.Equal(t, 0, signals.Len())
	assert.Equal(t, 0, store.Len())
}
