// Package e2e drives the HTTP API through Gherkin scenarios.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext holds one scenario's HTTP client and the last response.
type TestContext struct {
	baseURL    string
	pathPrefix string
	client     *http.Client

	status int
	body   []byte
	vars   map[string]string
}

// NewTestContext targets baseURL, prefixing API paths with pathPrefix.
func NewTestContext(baseURL, pathPrefix string) *TestContext {
	return &TestContext{
		baseURL:    strings.TrimRight(baseURL, "/"),
		pathPrefix: pathPrefix,
		client:     &http.Client{Timeout: 10 * time.Second},
		vars:       map[string]string{},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.status = 0
	tc.body = nil
	tc.vars = map[string]string{}
}

func (tc *TestContext) Request(ctx context.Context, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("encode body: %w", err)
			}
			raw = string(b)
		}
		reader = strings.NewReader(raw)
	}

	url := tc.baseURL + path
	if strings.HasPrefix(path, "/v") {
		url = tc.baseURL + tc.pathPrefix + path
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.status = resp.StatusCode
	tc.body, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) Status() int {
	return tc.status
}

func (tc *TestContext) Body() []byte {
	return bytes.Clone(tc.body)
}

// GetResponseField reads a top-level field of a JSON object response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var obj map[string]any
	if err := json.Unmarshal(tc.body, &obj); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	v, ok := obj[field]
	if !ok {
		return nil, fmt.Errorf("response has no field %q: %s", field, tc.body)
	}
	return v, nil
}

func (tc *TestContext) Set(key, value string) {
	tc.vars[key] = value
}

func (tc *TestContext) Get(key string) string {
	return tc.vars[key]
}
