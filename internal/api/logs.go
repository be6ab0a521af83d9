package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

// ListLogs fetches the journal of one tree.
func (c *Client) ListLogs(ctx context.Context, treeID int64) ([]types.TreeLog, error) {
	var logs []types.TreeLog
	if err := c.getJSON(ctx, fmt.Sprintf("/api/trees/%d/logs/", treeID), &logs); err != nil {
		return nil, err
	}
	for i := range logs {
		c.secureImages(logs[i].Images)
	}
	return logs, nil
}

// CreateLog posts a multipart journal entry for treeID.
func (c *Client) CreateLog(ctx context.Context, treeID int64, m *Multipart) (types.TreeLog, error) {
	var l types.TreeLog
	if err := c.sendMultipart(ctx, http.MethodPost, fmt.Sprintf("/api/trees/%d/logs/", treeID), m, &l); err != nil {
		return types.TreeLog{}, err
	}
	c.secureImages(l.Images)
	return l, nil
}

// DeleteLog removes one journal entry.
func (c *Client) DeleteLog(ctx context.Context, treeID, logID int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/trees/%d/logs/%d/", treeID, logID))
}
