package scoringclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/snapclash/arena/app/shared/sharedtypes"
)

// Client calls the external scoring service over HTTP. The caller owns the
// retry policy and the per-call deadline; the client makes exactly one
// request per Score call.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a scoring client for the given endpoint.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

type scoreRequest struct {
	ArtifactHandle string   `json:"artifact_handle"`
	Rules          []string `json:"rules"`
	MaxScore       float64  `json:"max_score"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

// Score submits the artifact handle for evaluation and returns the awarded
// score.
func (c *Client) Score(ctx context.Context, artifactHandle string, rules []string, maxScore sharedtypes.ScoreValue) (sharedtypes.ScoreValue, error) {
	body, err := json.Marshal(scoreRequest{
		ArtifactHandle: artifactHandle,
		Rules:          rules,
		MaxScore:       float64(maxScore),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("scoring request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("scoring service returned status %d", resp.StatusCode)
	}

	var payload scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode score response: %w", err)
	}

	return sharedtypes.ScoreValue(payload.Score), nil
}
