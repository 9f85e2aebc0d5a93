package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"diligence-backend/models"
)

const casePageSize = 20

// caseListRetry: the case-list endpoint occasionally reports unavailable
// while its backing index warms up; one more attempt a minute later is
// enough in practice.
var caseListRetry = RetryPolicy{
	MaxAttempts: 2,
	Interval:    60 * time.Second,
	Retryable:   IsServiceUnavailable,
}

// IsServiceUnavailable reports whether err is the transient-unavailability
// sentinel (possibly wrapped)
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// CaseRow is one raw case record as the provider returns it
type CaseRow struct {
	Category  string  `json:"category"`
	Number    string  `json:"number"`
	Part      string  `json:"part"`
	TypeID    int     `json:"type_id"`
	Date      *string `json:"date"`
	ID        int64   `json:"id"`
	Organ     string  `json:"organ"`
	Plaintiff *string `json:"plaintiff"`
	Defendant *string `json:"defendant"`
	Role      *string `json:"role"`
	Result    string  `json:"result"`
	Status    *string `json:"status"`
	Year      int     `json:"year"`
}

// CaseHistoryPage is one page of an applicant's case history plus the
// provider's per-kind counters
type CaseHistoryPage struct {
	Identifier    string    `json:"identifier"`
	Content       []CaseRow `json:"content"`
	Size          int       `json:"size"`
	TotalPages    int       `json:"total_pages"`
	TotalElements int       `json:"total_elements"`
	CurrentPage   int       `json:"current_page"`
	CivilCount    int       `json:"type_1_count"`
	CriminalCount int       `json:"type_2_count"`
	AdmCount      int       `json:"type_3_count"`
}

// LegalCases adapts the raw page rows into domain cases. An unknown kind
// code is a fatal validation error, not a row to skip.
func (p *CaseHistoryPage) LegalCases() ([]models.LegalCase, error) {
	cases := make([]models.LegalCase, 0, len(p.Content))
	for _, row := range p.Content {
		kind, err := models.CaseKindFromCode(row.TypeID)
		if err != nil {
			return nil, fmt.Errorf("case %s: %v: %w", row.Number, err, ErrMalformedPayload)
		}

		var date *time.Time
		if row.Date != nil && *row.Date != "" {
			parsed, err := parseCaseDate(*row.Date)
			if err != nil {
				return nil, fmt.Errorf("case %s: bad date %q: %w", row.Number, *row.Date, ErrMalformedPayload)
			}
			date = &parsed
		}

		cases = append(cases, models.LegalCase{
			Category:   row.Category,
			Number:     row.Number,
			Part:       row.Part,
			Kind:       kind,
			Date:       date,
			ProviderID: row.ID,
			Organ:      row.Organ,
			Plaintiff:  row.Plaintiff,
			Defendant:  row.Defendant,
			Role:       row.Role,
			Result:     row.Result,
			Status:     row.Status,
			Year:       row.Year,
		})
	}
	return cases, nil
}

// parseCaseDate accepts the two timestamp shapes the provider emits
func parseCaseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}

// GetCaseStatus checks whether the provider has any case history for the
// applicant. Used as a gate before the expensive paginated fetch.
func (c *Client) GetCaseStatus(ctx context.Context, taxID string) (models.SyncStatus, error) {
	var payload yesNoPayload
	if err := c.getJSON(ctx, "/cases/"+taxID+"/status", &payload); err != nil {
		return "", err
	}
	status, err := models.ParseSyncStatus(payload.Status)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, ErrMalformedPayload)
	}
	return status, nil
}

type caseListFilter struct {
	TypeID []int    `json:"type_id"`
	Role   []string `json:"role"`
	Year   []int    `json:"year"`
}

// GetCaseList fetches one page of the applicant's case history with an
// unfiltered query. Transient unavailability is retried per caseListRetry.
func (c *Client) GetCaseList(ctx context.Context, taxID string, page int) (*CaseHistoryPage, error) {
	path := "/cases/" + taxID + "/list?page=" + strconv.Itoa(page) +
		"&page_size=" + strconv.Itoa(casePageSize)

	var result CaseHistoryPage
	err := caseListRetry.Do(ctx, func() error {
		result = CaseHistoryPage{}
		return c.postJSON(ctx, path, caseListFilter{
			TypeID: []int{},
			Role:   []string{},
			Year:   []int{},
		}, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
