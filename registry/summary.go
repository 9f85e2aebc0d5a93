package registry

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"diligence-backend/models"
)

// Tags carrying this qualifier are severity annotations on another tag
// ("... low degree of risk"), not standalone risk categories.
const degreeOfRiskQualifier = " degree of risk"

// summaryPollAttempts bounds how long we wait for the provider to finish
// syncing the risk bucket. If it never syncs we proceed with the last
// payload rather than fail the applicant.
const summaryPollAttempts = 5

type summaryTag struct {
	Tag            string  `json:"tag"`
	Recommendation *string `json:"recom"`
}

type summaryBucket struct {
	Status string       `json:"status"`
	Data   []summaryTag `json:"data"`
}

type rawSummary struct {
	Risk      summaryBucket `json:"risk"`
	Attention summaryBucket `json:"attention"`
	Positive  summaryBucket `json:"positive"`
}

// GetRiskSummary fetches the categorized reliability summary for an
// applicant, polling until the risk bucket reports synced (bounded by
// summaryPollAttempts), and unions the surviving risk and attention tags
// into a signal set.
func (c *Client) GetRiskSummary(ctx context.Context, taxID string) (models.RiskSignalSet, error) {
	var summary rawSummary

	for attempt := 1; ; attempt++ {
		summary = rawSummary{}
		if err := c.getJSON(ctx, "/company/"+taxID+"/reliability_summary", &summary); err != nil {
			return nil, err
		}

		status, err := models.ParseSyncStatus(summary.Risk.Status)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrMalformedPayload)
		}

		if status == models.StatusYes {
			break
		}
		if attempt >= summaryPollAttempts {
			log.Printf("Warning: risk summary for %s still %s after %d polls, proceeding with last payload", taxID, status, attempt)
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	signals := models.NewRiskSignalSet()
	for _, bucket := range []summaryBucket{summary.Risk, summary.Attention} {
		for _, tag := range bucket.Data {
			if strings.Contains(tag.Tag, degreeOfRiskQualifier) {
				continue
			}
			signals.Set(tag.Tag)
		}
	}
	return signals, nil
}
