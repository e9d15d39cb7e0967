package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"masonry/internal/core"
	"masonry/internal/httpclient"
)

// HTTPSource reads submissions and image metadata from the internal CRUD API.
// Used when the layout service is deployed without database access.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates an HTTP-backed source for the given base URL
// (e.g. "http://crud-backend:3000").
func NewHTTPSource(baseURL string, client *http.Client) (*HTTPSource, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("upstream base URL is required")
	}
	if client == nil {
		client = httpclient.New(nil)
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}, nil
}

// ListApproved returns the approved submissions for an issue in id order.
func (s *HTTPSource) ListApproved(ctx context.Context, issueID int64) ([]core.SubmissionRef, error) {
	url := fmt.Sprintf("%s/internal/issues/%d/submissions?status=approved", s.baseURL, issueID)

	var refs []core.SubmissionRef
	if err := s.getJSON(ctx, url, &refs); err != nil {
		return nil, fmt.Errorf("failed to list submissions for issue %d: %w", issueID, err)
	}
	return refs, nil
}

// ImageMeta returns the pixel dimensions for an image.
func (s *HTTPSource) ImageMeta(ctx context.Context, imageID int64) (core.ImageMeta, error) {
	url := fmt.Sprintf("%s/internal/images/%d/meta", s.baseURL, imageID)

	var meta core.ImageMeta
	if err := s.getJSON(ctx, url, &meta); err != nil {
		return core.ImageMeta{}, err
	}
	return meta, nil
}

// Ping verifies the CRUD API is reachable.
func (s *HTTPSource) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/internal/health", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream health returned status %d", resp.StatusCode)
	}
	return nil
}

// Close is a no-op; the HTTP client owns no per-source resources.
func (s *HTTPSource) Close() error {
	return nil
}

func (s *HTTPSource) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}
