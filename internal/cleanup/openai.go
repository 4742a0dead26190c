package cleanup

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

// systemPrompt keeps the remote model conservative: fix typos, keep structure.
const systemPrompt = `You are an expert in refining diarized medical appointment transcripts. Your task is to fix only obvious misspellings or grammar errors while preserving timestamps, speaker labels, and the overall meaning. Do not add, remove, or guess content. Do not rename speakers unless it is obviously wrong.`

// OpenAI cleans transcripts through an OpenAI style chat completions API.
type OpenAI struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	timeout     time.Duration
	client      *http.Client
	log         *logger.Logger
}

func NewOpenAI(cfg config.Config) *OpenAI {
	timeout := time.Duration(cfg.OpenAITimeoutSec) * time.Second
	return &OpenAI{
		endpoint:    cfg.OpenAIEndpoint,
		apiKey:      cfg.OpenAIKey,
		model:       cfg.OpenAIModel,
		temperature: cfg.OpenAITemperature,
		timeout:     timeout,
		client:      &http.Client{Timeout: timeout},
		log:         logger.New(),
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Available() bool { return o.apiKey != "" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Clean sends the transcript for conservative correction. Server side errors
// are retried with exponential backoff inside the configured time budget;
// client errors are classified and surfaced immediately.
func (o *OpenAI) Clean(ctx context.Context, transcript string) types.CleanupResult {
	log := o.log.WithField("component", "cleanup.openai").WithField("model", o.model)
	if o.apiKey == "" {
		return types.CleanupResult{Text: transcript, Outcome: types.CleanupSkipped}
	}

	payload := chatRequest{
		Model:       o.model,
		Temperature: o.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Please clean the following diarized transcript according to the rules above:\n\n" + transcript},
		},
	}
	data, _ := json.Marshal(payload)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var cleaned string
	var failure *types.CleanupResult

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(data))
		if err != nil {
			failure = &types.CleanupResult{Outcome: types.CleanupError, Kind: types.KindUnexpected, Detail: err.Error()}
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := o.client.Do(req)
		if err != nil {
			failure = classifyTransport(err)
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			failure = classifyStatus(resp.StatusCode, body)
			err := fmt.Errorf("chat completions status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			failure = &types.CleanupResult{Outcome: types.CleanupError, Kind: types.KindProtocol, Detail: "malformed completion response: " + err.Error()}
			return err
		}
		if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
			failure = &types.CleanupResult{Outcome: types.CleanupError, Kind: types.KindProtocol, Detail: "completion carried no content"}
			return errors.New("empty completion")
		}

		cleaned = strings.TrimSpace(parsed.Choices[0].Message.Content)
		failure = nil
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = o.timeout
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		res := types.CleanupResult{Outcome: types.CleanupError, Kind: types.KindUnexpected, Detail: err.Error()}
		if failure != nil {
			res = *failure
		}
		log.WithField("error_kind", string(res.Kind)).Warn("remote cleanup failed")
		return res
	}

	log.Info("remote cleanup succeeded")
	return types.CleanupResult{Text: cleaned, Outcome: types.CleanupSuccess}
}

// classifyTransport maps request transport failures onto the error taxonomy.
func classifyTransport(err error) *types.CleanupResult {
	kind := types.KindConnection
	var ue *url.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ue) && ue.Timeout()) {
		kind = types.KindTimeout
	}
	return &types.CleanupResult{Outcome: types.CleanupError, Kind: kind, Detail: err.Error()}
}

// classifyStatus maps HTTP statuses onto the error taxonomy.
func classifyStatus(status int, body []byte) *types.CleanupResult {
	detail := apiErrorDetail(status, body)
	var kind types.ErrorKind
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = types.KindAuthFailed
	case http.StatusTooManyRequests:
		kind = types.KindRateLimited
	default:
		kind = types.KindProtocol
	}
	return &types.CleanupResult{Outcome: types.CleanupError, Kind: kind, Detail: detail}
}

// apiErrorDetail prefers the API's own error message over raw body bytes.
func apiErrorDetail(status int, body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return fmt.Sprintf("status %d: %s", status, parsed.Error.Message)
	}
	return fmt.Sprintf("status %d", status)
}
