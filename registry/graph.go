package registry

import (
	"context"
	"fmt"

	"diligence-backend/models"
)

// GraphNode is one entity in the applicant's relationship tree
type GraphNode struct {
	Identifier string      `json:"identifier"`
	Name       string      `json:"name"`
	Relation   string      `json:"relation"`
	Share      *float64    `json:"share"`
	Children   []GraphNode `json:"children"`
}

// TriggerGraphGeneration asks the provider to (re)compute the
// relationship graph for an applicant. Generation runs server-side;
// completion is observed via GetGraphStatus.
func (c *Client) TriggerGraphGeneration(ctx context.Context, taxID string) error {
	return c.postJSON(ctx, "/affiliation/"+taxID+"/generate", nil, nil)
}

// GetGraphStatus reports the readiness of the relationship-graph computation
func (c *Client) GetGraphStatus(ctx context.Context, taxID string) (models.SyncStatus, error) {
	var payload yesNoPayload
	if err := c.getJSON(ctx, "/affiliation/"+taxID+"/status", &payload); err != nil {
		return "", err
	}
	status, err := models.ParseSyncStatus(payload.Status)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, ErrMalformedPayload)
	}
	return status, nil
}

// GetRelationshipGraph fetches the computed relationship tree
func (c *Client) GetRelationshipGraph(ctx context.Context, taxID string) (*GraphNode, error) {
	var root GraphNode
	if err := c.getJSON(ctx, "/affiliation/"+taxID+"/tree", &root); err != nil {
		return nil, err
	}
	if root.Identifier == "" {
		return nil, fmt.Errorf("graph payload missing root identifier: %w", ErrMalformedPayload)
	}
	return &root, nil
}

// WaitForGraph drives the asynchronous graph computation to completion
// and returns the resulting tree. There is no deadline beyond ctx.
func (c *Client) WaitForGraph(ctx context.Context, taxID string) (*GraphNode, error) {
	err := PollUntilReady(ctx, c.pollInterval,
		func(ctx context.Context) (models.SyncStatus, error) {
			return c.GetGraphStatus(ctx, taxID)
		},
		func(ctx context.Context) error {
			return c.TriggerGraphGeneration(ctx, taxID)
		},
	)
	if err != nil {
		return nil, err
	}
	return c.GetRelationshipGraph(ctx, taxID)
}
