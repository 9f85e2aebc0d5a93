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

func summaryPayload(status string, riskTags, attentionTags []string) map[string]interface{} {
	toData := func(tags []string) []map[string]string {
		data := make([]map[string]string, 0, len(tags))
		for _, tag := range tags {
			data = append(data, map[string]string{"tag": tag})
		}
		return data
	}
	return map[string]interface{}{
		"risk":      map[string]interface{}{"status": status, "data": toData(riskTags)},
		"attention": map[string]interface{}{"status": status, "data": toData(attentionTags)},
		"positive":  map[string]interface{}{"status": status, "data": []map[string]string{}},
	}
}

func TestGetRiskSummaryUnionsRiskAndAttention(t *testing.T) {
	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/777/reliability_summary", r.URL.Path)
		_ = json.NewEncoder(w).Encode(summaryPayload("YES",
			[]string{"criminal_proceedings"},
			[]string{"tax_arrears"},
		))
	})

	signals, err := client.GetRiskSummary(context.Background(), "777")
	require.NoError(t, err)

	assert.True(t, signals.Has("criminal_proceedings"))
	assert.True(t, signals.Has("tax_arrears"))
	assert.Equal(t, 2, signals.Len())
}

func TestGetRiskSummarySkipsSeverityQualifierTags(t *testing.T) {
	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(summaryPayload("YES",
			[]string{"low degree of risk", "administrative_offenses"},
			nil,
		))
	})

	signals, err := client.GetRiskSummary(context.Background(), "777")
	require.NoError(t, err)

	assert.True(t, signals.Has("administrative_offenses"))
	assert.Equal(t, 1, signals.Len())
}

func TestGetRiskSummaryPollsUntilSynced(t *testing.T) {
	statuses := []string{"NO", "SYNC", "YES"}
	polls := 0

	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		status := statuses[polls]
		polls++
		var tags []string
		if status == "YES" {
			tags = []string{"civil_proceedings"}
		}
		_ = json.NewEncoder(w).Encode(summaryPayload(status, tags, nil))
	})

	signals, err := client.GetRiskSummary(context.Background(), "777")
	require.NoError(t, err)

	assert.Equal(t, 3, polls)
	assert.True(t, signals.Has("civil_proceedings"))
}

func TestGetRiskSummaryProceedsWithLastPayloadWhenNeverSynced(t *testing.T) {
	polls := 0
	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		polls++
		_ = json.NewEncoder(w).Encode(summaryPayload("SYNC", []string{"stale_tag"}, nil))
	})

	signals, err := client.GetRiskSummary(context.Background(), "777")
	require.NoError(t, err)

	assert.Equal(t, summaryPollAttempts, polls)
	assert.True(t, signals.Has("stale_tag"))
}

func TestGetRiskSummaryRejectsUnknownStatus(t *testing.T) {
	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(summaryPayload("PERHAPS", nil, nil))
	})

	_, err := client.GetRiskSummary(context.Background(), "777")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestGetRiskSummaryEmptyBucketsYieldEmptySet(t *testing.T) {
	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(summaryPayload("YES", nil, nil))
	})

	signals, err := client.GetRiskSummary(context.Background(), "777")
	require.NoError(t, err)
	assert.Equal(t, models.NewRiskSignalSet(), signals)
}
