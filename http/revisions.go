package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/portdex/portdex"
)

// Ensure RevisionService implements portdex.RevisionSource at compile time.
var _ portdex.RevisionSource = (*RevisionService)(nil)

// RevisionService resolves the latest revision ID of the source document
// from the Wikimedia page history API.
type RevisionService struct {
	client *http.Client
	apiURL string
}

// NewRevisionService creates a new RevisionService for the given history
// API URL. If client is nil, http.DefaultClient is used.
func NewRevisionService(client *http.Client, apiURL string) *RevisionService {
	if client == nil {
		client = http.DefaultClient
	}
	if apiURL == "" {
		apiURL = portdex.DefaultHistoryAPIURL
	}
	return &RevisionService{client: client, apiURL: apiURL}
}

// historyResponse mirrors the history API's response shape.
type historyResponse struct {
	Revisions []struct {
		ID int64 `json:"id"`
	} `json:"revisions"`
}

// LatestRevision queries the history API and returns the newest revision ID.
func (s *RevisionService) LatestRevision(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL, nil)
	if err != nil {
		return 0, portdex.Errorf(portdex.EINVALID, "invalid history API URL %q: %v", s.apiURL, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return 0, portdex.Errorf(portdex.ETIMEOUT, "revision query timed out")
		}
		return 0, portdex.Errorf(portdex.EUNAVAILABLE, "revision query failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, portdex.Errorf(portdex.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, s.apiURL)
	}

	var history historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return 0, portdex.Errorf(portdex.EUNPROCESSABLE, "malformed history API response: %v", err)
	}
	if len(history.Revisions) == 0 {
		return 0, portdex.Errorf(portdex.ENOTFOUND, "revision history is empty")
	}

	return history.Revisions[0].ID, nil
}
