package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/regsite/registry-backend/internal/model"
)

// HTTPRemoteClient counts participants on peer registries over their
// federated count endpoint.
type HTTPRemoteClient struct {
	client *http.Client
}

// NewHTTPRemoteClient creates a new HTTPRemoteClient. Per-call
// deadlines come from the caller's context.
func NewHTTPRemoteClient() *HTTPRemoteClient {
	return &HTTPRemoteClient{client: &http.Client{}}
}

type remoteCountRequest struct {
	Criteria model.FederatedSearchCriteria `json:"criteria"`
}

type remoteCountResponse struct {
	Data  *model.CohortCount `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CountUsers posts the criteria to the peer's federated count endpoint
// and returns its cohort count.
func (c *HTTPRemoteClient) CountUsers(ctx context.Context, baseURL string, criteria model.FederatedSearchCriteria) (int, error) {
	body, err := json.Marshal(remoteCountRequest{Criteria: criteria})
	if err != nil {
		return 0, err
	}

	url := strings.TrimSuffix(baseURL, "/") + "/api/v1/cohorts/federated"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, err
	}

	var out remoteCountResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("peer returned status %d with unreadable body", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || out.Data == nil {
		if out.Error != nil {
			return 0, fmt.Errorf("peer returned %s: %s", out.Error.Code, out.Error.Message)
		}
		return 0, fmt.Errorf("peer returned status %d", resp.StatusCode)
	}
	return out.Data.Count, nil
}
