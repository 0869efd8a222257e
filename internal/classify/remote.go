// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/recipe-engine/internal/httputil"
	"github.com/pdiddy/recipe-engine/pkg/types"
)

const (
	defaultRemoteTimeout    = 5 * time.Second
	defaultRemoteMaxRetries = 2
	maxResponseBytes        = 64 << 10
)

// Remote classifies vectors by POSTing them as JSON to a scoring service
// and reading back {"class": "<grade>"}.
type Remote struct {
	client     *http.Client
	url        string
	apiKey     string
	timeout    time.Duration
	maxRetries int
}

// remoteResponse is the scoring service reply.
type remoteResponse struct {
	Class string `json:"class"`
}

// NewRemote builds a Remote from cfg. A nil client uses http.DefaultClient.
func NewRemote(cfg types.ClassifierConfig, client *http.Client) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultRemoteMaxRetries
	}
	return &Remote{
		client:     client,
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		maxRetries: maxRetries,
	}
}

// Classify implements Classifier. The whole exchange, retries included, is
// bounded by the configured timeout.
func (r *Remote) Classify(ctx context.Context, v Vector) (types.Score, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding vector: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("building classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, r.client, req, body, r.maxRetries)
	if err != nil {
		return "", fmt.Errorf("calling classifier: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading classifier response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("classifier returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out remoteResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decoding classifier response: %w", err)
	}

	grade := types.Score(out.Class)
	if !ValidGrade(grade) {
		return "", fmt.Errorf("classifier returned unknown class %q", out.Class)
	}
	return grade, nil
}
