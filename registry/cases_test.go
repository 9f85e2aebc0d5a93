package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"diligence-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegalCasesAdaptsRows(t *testing.T) {
	role := "defendant"
	date := "2024-03-15T00:00:00"
	page := CaseHistoryPage{
		Content: []CaseRow{
			{Number: "2-123/24", TypeID: 1, Year: 2024, Organ: "City Court", Role: &role, Date: &date},
			{Number: "1-55/20", TypeID: 2, Year: 2020, Result: "Convicted"},
			{Number: "5-9/25", TypeID: 3, Year: 2025},
		},
	}

	cases, err := page.LegalCases()
	require.NoError(t, err)
	require.Len(t, cases, 3)

	assert.Equal(t, models.CaseKindCivil, cases[0].Kind)
	require.NotNil(t, cases[0].Date)
	assert.Equal(t, 2024, cases[0].Date.Year())
	assert.Equal(t, "defendant", *cases[0].Role)

	assert.Equal(t, models.CaseKindCriminal, cases[1].Kind)
	assert.Nil(t, cases[1].Date)

	assert.Equal(t, models.CaseKindAdministrative, cases[2].Kind)
}

func TestLegalCasesRejectsUnknownKindCode(t *testing.T) {
	page := CaseHistoryPage{
		Content: []CaseRow{{Number: "X-1", TypeID: 9, Year: 2024}},
	}

	_, err := page.LegalCases()
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestLegalCasesRejectsUnparseableDate(t *testing.T) {
	date := "15.03.2024"
	page := CaseHistoryPage{
		Content: []CaseRow{{Number: "X-1", TypeID: 1, Year: 2024, Date: &date}},
	}

	_, err := page.LegalCases()
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseCaseDateAcceptsBothShapes(t *testing.T) {
	for _, raw := range []string{"2024-03-15T00:00:00Z", "2024-03-15T00:00:00"} {
		parsed, err := parseCaseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 2024, parsed.Year())
	}
}

func TestGetCaseStatus(t *testing.T) {
	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cases/555/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "NO"})
	})

	status, err := client.GetCaseStatus(context.Background(), "555")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNo, status)
}

func TestGetCaseStatusRejectsUnknownValue(t *testing.T) {
	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "DONE"})
	})

	_, err := client.GetCaseStatus(context.Background(), "555")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestGetCaseListSendsUnfilteredQuery(t *testing.T) {
	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/cases/555/list", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("page_size"))

		var filter caseListFilter
		require.NoError(t, json.NewDecoder(r.Body).Decode(&filter))
		assert.Empty(t, filter.TypeID)
		assert.Empty(t, filter.Role)
		assert.Empty(t, filter.Year)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"identifier":     "555",
			"content":        []map[string]interface{}{{"number": "2-1/24", "type_id": 1, "year": 2024}},
			"total_pages":    1,
			"total_elements": 1,
			"current_page":   1,
			"type_1_count":   1,
		})
	})

	page, err := client.GetCaseList(context.Background(), "555", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, page.TotalElements)
	assert.Equal(t, 1, page.CivilCount)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "2-1/24", page.Content[0].Number)
}
