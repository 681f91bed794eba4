package scoringclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req scoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "artifacts/abc.png", req.ArtifactHandle)
		assert.Equal(t, []string{"natural light only"}, req.Rules)
		assert.Equal(t, float64(100), req.MaxScore)

		json.NewEncoder(w).Encode(scoreResponse{Score: 87})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	score, err := client.Score(context.Background(), "artifacts/abc.png", []string{"natural light only"}, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 87, score)
}

func TestClientScoreNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "scorer overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.Score(context.Background(), "h", nil, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestClientScoreCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, nil)
	_, err := client.Score(ctx, "h", nil, 100)
	require.Error(t, err)
}
