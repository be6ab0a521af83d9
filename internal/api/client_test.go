package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mytree/internal/upload"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client(), nil)
}

func TestListTrees(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/trees/", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": 1, "nickname": "Ruby", "strain": {"id": 3, "name": "Kush"}, "yield_amount": "12.50",
			 "images": [{"id": 9, "image": "http://cdn/x.jpg"}]},
			{"id": 2, "nickname": "Jade", "strain": null, "yield_amount": null}
		]`))
	})

	trees, err := c.ListTrees(context.Background())
	require.NoError(t, err)
	require.Len(t, trees, 2)
	assert.Equal(t, "Kush", trees[0].StrainName())
	require.NotNil(t, trees[0].YieldAmount)
	assert.Equal(t, types.Decimal(12.5), *trees[0].YieldAmount)
	assert.Equal(t, "http://cdn/x.jpg", trees[0].Images[0].Image, "http backend keeps http urls")
	assert.Nil(t, trees[1].YieldAmount)
	assert.Equal(t, "", trees[1].StrainName())
}

func TestSecureURL(t *testing.T) {
	c := New("https://api.example.com", nil, nil)
	assert.Equal(t, "https://cdn/x.jpg", c.SecureURL("http://cdn/x.jpg"))
	assert.Equal(t, "https://cdn/y.jpg", c.SecureURL("https://cdn/y.jpg"))
	assert.Equal(t, "", c.SecureURL(""))

	plain := New("http://127.0.0.1:8000", nil, nil)
	assert.Equal(t, "http://cdn/x.jpg", plain.SecureURL("http://cdn/x.jpg"))
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "message field", status: 400, body: `{"message": "strain is required"}`, wantMsg: "strain is required"},
		{name: "error field", status: 400, body: `{"error": "bad batch"}`, wantMsg: "bad batch"},
		{name: "plain text", status: 500, body: "boom", wantMsg: "Error 500: boom"},
		{name: "empty body", status: 502, body: "", wantMsg: "Error 502: Bad Gateway"},
		{name: "json without known fields", status: 400, body: `{"name": ["exists"]}`, wantMsg: `Error 400: {"name": ["exists"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := c.DeleteTree(context.Background(), 1)
			require.Error(t, err)
			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestNotFoundMatchesSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.GetTree(context.Background(), 42)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestNoContent(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteTreeDocument(context.Background(), 7))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/trees/7/delete_document/", gotPath)

	require.NoError(t, c.DeleteAllTreeImages(context.Background(), 7))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/trees/7/delete_all_images/", gotPath)

	require.NoError(t, c.DeleteImage(context.Background(), 11))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/images/11/", gotPath)

	require.NoError(t, c.DeleteLog(context.Background(), 7, 3))
	assert.Equal(t, "/api/trees/7/logs/3/", gotPath)
}

func TestBulkDeleteTrees(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/trees/bulk_delete/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body struct {
			IDs []int64 `json:"ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []int64{1, 3}, body.IDs)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.BulkDeleteTrees(context.Background(), []int64{1, 3}))
}

func TestCreateTreeMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "3", r.FormValue("strain_id"))
		assert.Equal(t, []string{""}, r.MultipartForm.Value["yield_amount"])
		files := r.MultipartForm.File["uploaded_images"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.jpg", files[0].Filename)
		f, err := files[1].Open()
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "png-bytes", string(data))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 5, "nickname": "new"}`))
	})

	m := NewMultipart()
	m.Set("strain_id", "3")
	m.Set("yield_amount", "")
	m.AddFile("uploaded_images", upload.FromBytes("a.jpg", "image/jpeg", []byte("jpg-bytes")))
	m.AddFile("uploaded_images", upload.FromBytes("b.png", "image/png", []byte("png-bytes")))

	tree, err := c.CreateTree(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, int64(5), tree.ID)
}

func TestUpdateUsesPut(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		switch r.URL.Path {
		case "/api/trees/4/":
			_, _ = w.Write([]byte(`{"id": 4}`))
		case "/api/strains/2/":
			_, _ = w.Write([]byte(`{"id": 2, "name": "Haze"}`))
		case "/api/batches/8/":
			var in BatchInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Nil(t, in.StartedDate)
			_, _ = w.Write([]byte(`{"id": 8, "batch_code": "B-8"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	_, err := c.UpdateTree(ctx, 4, NewMultipart())
	require.NoError(t, err)
	s, err := c.UpdateStrain(ctx, 2, StrainInput{Name: "Haze"})
	require.NoError(t, err)
	assert.Equal(t, "Haze", s.Name)
	b, err := c.UpdateBatch(ctx, 8, BatchInput{BatchCode: "B-8"})
	require.NoError(t, err)
	assert.Equal(t, "B-8", b.BatchCode)
}

func TestListLogsSecuresImages(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/trees/3/logs/", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id": 1, "tree": 3, "action_type": "water", "ph": "6.2",
			"images": [{"id": 1, "image": "http://cdn/l.jpg", "thumbnail": "http://cdn/t.jpg"}]}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client(), nil)
	logs, err := c.ListLogs(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "https://cdn/l.jpg", logs[0].Images[0].Image)
	assert.Equal(t, "https://cdn/t.jpg", logs[0].Images[0].Thumbnail)
	require.NotNil(t, logs[0].PH)
	assert.Equal(t, types.Decimal(6.2), *logs[0].PH)
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListStrains(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMultipartAccessors(t *testing.T) {
	m := NewMultipart()
	m.Set("a", "1")
	m.Set("b", "")
	m.Set("a", "2")
	m.AddFile("images", upload.FromBytes("x.jpg", "image/jpeg", nil))

	assert.Equal(t, []string{"1", "2"}, m.Values("a"))
	v, ok := m.Value("b")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	_, ok = m.Value("missing")
	assert.False(t, ok)
	assert.Len(t, m.Files("images"), 1)
	assert.Equal(t, []string{"a", "b", "images"}, m.Fields())
}
