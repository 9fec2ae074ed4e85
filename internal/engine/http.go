package engine

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

// HTTPInvoker forwards stage invocations to an external reasoning endpoint.
type HTTPInvoker struct {
	url    string
	client *http.Client
}

func NewHTTPInvoker(url string) *HTTPInvoker {
	return &HTTPInvoker{
		url: strings.TrimSpace(url),
		client: &http.Client{
			// Per-stage deadlines come from the orchestrator's context; this is
			// a backstop against a backend that never responds.
			Timeout: 120 * time.Second,
		},
	}
}

type stageRequest struct {
	Stage  string `json:"stage"`
	Prompt string `json:"prompt"`
}

func (a *HTTPInvoker) Invoke(ctx context.Context, stage Stage, prompt string) (string, error) {
	payload, err := json.Marshal(stageRequest{Stage: string(stage), Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s stage request: %w", stage, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("%s stage http status %d: %s", stage, res.StatusCode, string(body))
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	// Backends may answer {"output": "..."} or raw text; accept both.
	var obj struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal(body, &obj); err == nil && strings.TrimSpace(obj.Output) != "" {
		return obj.Output, nil
	}
	return string(body), nil
}
