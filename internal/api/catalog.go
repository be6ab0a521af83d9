package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

// StrainInput is the writable part of a strain.
type StrainInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BatchInput is the writable part of a batch. An empty StartedDate is sent
// as null.
type BatchInput struct {
	BatchCode   string  `json:"batch_code"`
	Description string  `json:"description"`
	StartedDate *string `json:"started_date"`
}

// ListStrains fetches the strain catalog.
func (c *Client) ListStrains(ctx context.Context) ([]types.Strain, error) {
	var out []types.Strain
	if err := c.getJSON(ctx, "/api/strains/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateStrain adds a strain.
func (c *Client) CreateStrain(ctx context.Context, in StrainInput) (types.Strain, error) {
	var out types.Strain
	err := c.sendJSON(ctx, http.MethodPost, "/api/strains/", in, &out)
	return out, err
}

// UpdateStrain replaces strain id.
func (c *Client) UpdateStrain(ctx context.Context, id int64, in StrainInput) (types.Strain, error) {
	var out types.Strain
	err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/api/strains/%d/", id), in, &out)
	return out, err
}

// DeleteStrain removes strain id.
func (c *Client) DeleteStrain(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/strains/%d/", id))
}

// ListBatches fetches every batch.
func (c *Client) ListBatches(ctx context.Context) ([]types.Batch, error) {
	var out []types.Batch
	if err := c.getJSON(ctx, "/api/batches/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBatch adds a batch.
func (c *Client) CreateBatch(ctx context.Context, in BatchInput) (types.Batch, error) {
	var out types.Batch
	err := c.sendJSON(ctx, http.MethodPost, "/api/batches/", in, &out)
	return out, err
}

// UpdateBatch replaces batch id.
func (c *Client) UpdateBatch(ctx context.Context, id int64, in BatchInput) (types.Batch, error) {
	var out types.Batch
	err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/api/batches/%d/", id), in, &out)
	return out, err
}

// DeleteBatch removes batch id.
func (c *Client) DeleteBatch(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/batches/%d/", id))
}
