package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

// ListTrees fetches every tree.
func (c *Client) ListTrees(ctx context.Context) ([]types.Tree, error) {
	var trees []types.Tree
	if err := c.getJSON(ctx, "/api/trees/", &trees); err != nil {
		return nil, err
	}
	for i := range trees {
		c.secureTree(&trees[i])
	}
	return trees, nil
}

// GetTree fetches one tree. A missing tree yields an error matching
// types.ErrNotFound.
func (c *Client) GetTree(ctx context.Context, id int64) (types.Tree, error) {
	var t types.Tree
	if err := c.getJSON(ctx, fmt.Sprintf("/api/trees/%d/", id), &t); err != nil {
		return types.Tree{}, err
	}
	c.secureTree(&t)
	return t, nil
}

// CreateTree posts a multipart tree payload and returns the stored tree.
func (c *Client) CreateTree(ctx context.Context, m *Multipart) (types.Tree, error) {
	var t types.Tree
	if err := c.sendMultipart(ctx, http.MethodPost, "/api/trees/", m, &t); err != nil {
		return types.Tree{}, err
	}
	c.secureTree(&t)
	return t, nil
}

// UpdateTree replaces tree id with the multipart payload.
func (c *Client) UpdateTree(ctx context.Context, id int64, m *Multipart) (types.Tree, error) {
	var t types.Tree
	if err := c.sendMultipart(ctx, http.MethodPut, fmt.Sprintf("/api/trees/%d/", id), m, &t); err != nil {
		return types.Tree{}, err
	}
	c.secureTree(&t)
	return t, nil
}

// DeleteTree removes one tree.
func (c *Client) DeleteTree(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/trees/%d/", id))
}

// BulkDeleteTrees removes many trees in one server call.
func (c *Client) BulkDeleteTrees(ctx context.Context, ids []int64) error {
	body := struct {
		IDs []int64 `json:"ids"`
	}{IDs: ids}
	return c.sendJSON(ctx, http.MethodPost, "/api/trees/bulk_delete/", body, nil)
}

// DeleteTreeDocument detaches the tree's document.
func (c *Client) DeleteTreeDocument(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/trees/%d/delete_document/", id))
}

// DeleteAllTreeImages removes every image attached to the tree.
func (c *Client) DeleteAllTreeImages(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/trees/%d/delete_all_images/", id), nil, "", nil)
}

// DeleteImage removes a single stored image.
func (c *Client) DeleteImage(ctx context.Context, imageID int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/images/%d/", imageID))
}

// SecureURL upgrades http:// to https:// when the client talks to an https
// backend. Other URLs are returned unchanged.
func (c *Client) SecureURL(u string) string {
	if strings.HasPrefix(c.BaseURL, "https://") && strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

func (c *Client) secureImages(images []types.Image) {
	for i := range images {
		images[i].Image = c.SecureURL(images[i].Image)
		images[i].Thumbnail = c.SecureURL(images[i].Thumbnail)
	}
}

func (c *Client) secureTree(t *types.Tree) {
	c.secureImages(t.Images)
	if t.Document != nil {
		d := c.SecureURL(*t.Document)
		t.Document = &d
	}
	if t.LatestLog != nil {
		c.secureImages(t.LatestLog.Images)
	}
}
