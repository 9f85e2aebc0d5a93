package service

import (
	"diligence-backend/models"
)

// Reconcile resolves disagreements between the provider-reported risk
// signals and the applicant's actual case history, mutating both in
// place. Case evidence is authoritative for three flags; every other
// provider-reported flag passes through untouched.
//
// Rules, in order:
//  1. An "administrative offenses" flag survives only if an
//     administrative case exists within the window; otherwise the flag
//     is removed and the stale administrative cases are evicted.
//  2. Any criminal case, regardless of age, force-sets the "criminal
//     proceedings" flag (the flag is derived from case history and may
//     not come from the provider at all). With no criminal cases the
//     store is purged of them.
//  3. A civil case within the window force-sets "civil proceedings";
//     otherwise civil cases are evicted.
//
// Pure over its inputs: no I/O, no errors, total on empty inputs.
func Reconcile(signals models.RiskSignalSet, store *models.CaseStore, windowYears int) {
	if signals.Has(models.RiskAdministrativeOffenses) {
		if !store.HasCases(models.CaseKindAdministrative, windowYears) {
			signals.Remove(models.RiskAdministrativeOffenses)
			store.RemoveCases(models.CaseKindAdministrative)
		}
	}

	if store.HasCases(models.CaseKindCriminal, windowYears) {
		signals.Set(models.RiskCriminalProceedings)
	} else {
		store.RemoveCases(models.CaseKindCriminal)
	}

	if store.HasCases(models.CaseKindCivil, windowYears) {
		signals.Set(models.RiskCivilProceedings)
	} else {
		store.RemoveCases(models.CaseKindCivil)
	}
}
