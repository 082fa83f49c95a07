package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPRemote is a minimal JSON-over-HTTP RemoteClient for remotes exposing
// GET/PUT /records/{type}/{id} and GET /profiles/{userId}.
type HTTPRemote struct {
	base   string
	client *http.Client
}

// NewHTTPRemote constructs a client for the given base URL.
func NewHTTPRemote(baseURL string) *HTTPRemote {
	return &HTTPRemote{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetRecord fetches one remote record, returning (nil, nil) on 404.
func (h *HTTPRemote) GetRecord(ctx context.Context, docType, id string) (map[string]any, error) {
	return h.getJSON(ctx, fmt.Sprintf("%s/records/%s/%s", h.base, url.PathEscape(docType), url.PathEscape(id)))
}

// PutRecord writes one remote record.
func (h *HTTPRemote) PutRecord(ctx context.Context, docType, id string, data map[string]any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	u := fmt.Sprintf("%s/records/%s/%s", h.base, url.PathEscape(docType), url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", docType, id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("put %s/%s: remote returned %s", docType, id, resp.Status)
	}
	return nil
}

// GetProfile fetches the remote profile for a user, (nil, nil) when absent.
func (h *HTTPRemote) GetProfile(ctx context.Context, userID string) (map[string]any, error) {
	return h.getJSON(ctx, fmt.Sprintf("%s/profiles/%s", h.base, url.PathEscape(userID)))
}

func (h *HTTPRemote) getJSON(ctx context.Context, u string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %s: remote returned %s", u, resp.Status)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode remote record: %w", err)
	}
	return out, nil
}
