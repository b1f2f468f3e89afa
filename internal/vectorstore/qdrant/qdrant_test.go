package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmrag/internal/domain"
	"mmrag/internal/vectorstore"
)

func newTestStorage(t *testing.T, handler http.Handler) *Storage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStorage(Config{URL: srv.URL, APIKey: "secret"})
}

func TestStorageReset(t *testing.T) {
	var deleted bool
	var created map[string]any

	s := newTestStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		assert.Equal(t, "/collections/voyage-multimodal-docs", r.URL.Path)
		switch r.Method {
		case http.MethodDelete:
			deleted = true
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, s.Reset(context.Background(), 1024))
	assert.True(t, deleted)

	vectors, ok := created["vectors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1024), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
	assert.Equal(t, true, created["on_disk_payload"])
}

func TestStorageUpsert(t *testing.T) {
	var body map[string]any
	s := newTestStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/voyage-multimodal-docs/points" {
			assert.Equal(t, "true", r.URL.Query().Get("wait"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		}
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, s.Reset(context.Background(), 2))
	err := s.Upsert(context.Background(), []domain.IndexPoint{{
		ID:     "11111111-2222-3333-4444-555555555555",
		Vector: []float64{0.5, 0.5},
		Payload: domain.PointPayload{
			DocumentID:   "manual",
			Text:         "온실 관리",
			SegmentCount: 3,
			ImageCount:   1,
		},
	}})
	require.NoError(t, err)

	points, ok := body["points"].([]any)
	require.True(t, ok)
	require.Len(t, points, 1)
	point := points[0].(map[string]any)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", point["id"])
	payload := point["payload"].(map[string]any)
	assert.Equal(t, "manual", payload["pdf_name"])
}

func TestStorageUpsertDimensionMismatchSendsNothing(t *testing.T) {
	var pointRequests int
	s := newTestStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/collections/voyage-multimodal-docs/points" {
			pointRequests++
		}
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, s.Reset(context.Background(), 3))
	err := s.Upsert(context.Background(), []domain.IndexPoint{
		{ID: "ok", Vector: []float64{1, 2, 3}},
		{ID: "bad", Vector: []float64{1, 2}},
	})
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
	assert.Zero(t, pointRequests)
}

func TestStorageSearch(t *testing.T) {
	s := newTestStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/voyage-multimodal-docs/points/search", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(10), req["limit"])
		assert.Equal(t, true, req["with_payload"])

		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"id":    "p1",
					"score": 0.87,
					"payload": map[string]any{
						"pdf_name":      "manual",
						"text":          "딸기 온실 온도 관리",
						"content_count": 5,
						"image_count":   2,
						"images": []map[string]any{
							{"image_name": "page_1_img_1.png", "caption": "온실 전경"},
						},
					},
				},
			},
		})
	}))

	results, err := s.Search(context.Background(), []float64{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, "p1", got.Point.ID)
	assert.InDelta(t, 0.87, got.Score, 1e-9)
	assert.Equal(t, "manual", got.Point.Payload.DocumentID)
	assert.Equal(t, 2, got.Point.Payload.ImageCount)
	require.Len(t, got.Point.Payload.Images, 1)
	assert.Equal(t, "온실 전경", got.Point.Payload.Images[0].Caption)
}

func TestStorageCount(t *testing.T) {
	s := newTestStorage(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/voyage-multimodal-docs/points/count", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req["exact"])

		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"count": 42}})
	}))

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestStorageCountUnreachable(t *testing.T) {
	s := NewStorage(Config{URL: "http://127.0.0.1:1"})
	_, err := s.Count(context.Background())
	assert.Error(t, err)
}
