package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"docbud-go/internal/config"
	"docbud-go/internal/logger"
	"docbud-go/internal/types"
)

// Client fetches recognizer chunks and diarization turns from the hosted
// collaborator, for callers that do not already hold the artifacts on disk.
// The collaborator transcribes and diarizes; fusing the two streams stays
// on this side.
type Client struct {
	host         string
	timeout      time.Duration
	pollInterval time.Duration
	http         *http.Client
	log          *logger.Logger
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		host:         strings.TrimRight(cfg.CollabURL, "/"),
		timeout:      time.Duration(cfg.CollabTimeoutSec) * time.Second,
		pollInterval: 1500 * time.Millisecond,
		http:         &http.Client{Timeout: 12 * time.Second},
		log:          logger.New(),
	}
}

type submitResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		JobID     string `json:"job_id"`
		Status    string `json:"status"`
		ResultURL string `json:"result_url"`
	} `json:"data"`
	Reason string `json:"reason,omitempty"`
}

type statusResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Status    string `json:"status"`
		ResultURL string `json:"result_url"`
	} `json:"data"`
	Reason string `json:"reason,omitempty"`
}

// resultPayload is the completed job artifact: raw recognizer chunks plus
// diarization turns, not yet fused.
type resultPayload struct {
	Chunks json.RawMessage `json:"chunks"`
	Turns  json.RawMessage `json:"turns"`
}

// Fetch submits the recording, waits for the collaborator to finish, and
// returns the normalized segments and turns plus a digest of the raw result.
func (c *Client) Fetch(ctx context.Context, audioURL string) ([]types.TextSegment, []types.SpeakerTurn, string, error) {
	log := c.log.WithField("component", "collab.client")
	if c.host == "" {
		return nil, nil, "", errors.New("collaborator URL not set")
	}

	jobID, resultURL, err := c.submit(ctx, audioURL)
	if err != nil {
		return nil, nil, "", err
	}
	if resultURL == "" {
		resultURL, err = c.poll(ctx, jobID)
		if err != nil {
			return nil, nil, "", err
		}
	}
	log.WithField("result_url", resultURL).Info("downloading job result")

	body, err := c.download(ctx, resultURL)
	if err != nil {
		return nil, nil, "", err
	}
	var payload resultPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, "", fmt.Errorf("decode result: %w", err)
	}
	segments, err := ParseSegments(payload.Chunks)
	if err != nil {
		return nil, nil, "", err
	}
	turns, err := ParseTurns(payload.Turns)
	if err != nil {
		return nil, nil, "", err
	}
	return segments, turns, DigestBytes(body), nil
}

func (c *Client) submit(ctx context.Context, audioURL string) (string, string, error) {
	endpoint := c.host + "/jobs"
	payload, _ := json.Marshal(map[string]any{"audio_url": audioURL, "diarize": true})
	var resp submitResponse
	if err := c.doJSON(ctx, http.MethodPost, endpoint, payload, &resp); err != nil {
		return "", "", err
	}
	if resp.Code != 200 {
		return "", "", fmt.Errorf("job submit error: code=%d reason=%s", resp.Code, resp.Reason)
	}
	if resp.Data.ResultURL != "" && strings.EqualFold(resp.Data.Status, "completed") {
		return "", resp.Data.ResultURL, nil
	}
	if resp.Data.JobID == "" {
		return "", "", errors.New("job submit error: no job id")
	}
	return resp.Data.JobID, "", nil
}

func (c *Client) poll(ctx context.Context, jobID string) (string, error) {
	endpoint := c.host + "/jobs/" + url.PathEscape(jobID)
	deadline := time.Now().Add(c.timeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
		var s statusResponse
		if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &s); err != nil {
			continue
		}
		switch strings.ToLower(s.Data.Status) {
		case "completed":
			return s.Data.ResultURL, nil
		case "queued", "processing":
			continue
		case "error", "failed":
			return "", fmt.Errorf("collaborator job failed: %s", s.Reason)
		}
	}
	return "", errors.New("collaborator poll timeout")
}

func (c *Client) download(ctx context.Context, resultURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("download failed: %s", string(b))
	}
	return io.ReadAll(resp.Body)
}

// doJSON performs one JSON exchange, rebuilding the request each attempt and
// retrying server errors with exponential backoff.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body []byte, target any) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 12 * time.Second
	var lastErr error
	op := func() error {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %s", string(data))
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("client error: status %d", resp.StatusCode)
			return backoff.Permanent(lastErr)
		}
		if len(data) == 0 {
			lastErr = errors.New("empty body")
			return lastErr
		}
		if err := json.Unmarshal(data, target); err != nil {
			lastErr = fmt.Errorf("json decode error: %v", err)
			return lastErr
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return lastErr
	}
	return nil
}
