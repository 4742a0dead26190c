package cleanup

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"docbud-go/internal/config"
	"docbud-go/internal/format"
	"docbud-go/internal/logger"
	"docbud-go/internal/types"
)

// localPrompt instructs the local model and pins the expected line shape.
const localPrompt = `You are reviewing a diarized medical appointment transcript.
Each line includes a timestamp, speaker label, and utterance.
Your task is to fix any clear mistakes conservatively.

Return only the cleaned transcript in this format:
[HH:MM:SS] SPEAKER: Utterance

Original Transcript:
`

// Ollama cleans transcripts by piping them through a local model runner.
type Ollama struct {
	binary  string
	model   string
	timeout time.Duration
	log     *logger.Logger
}

func NewOllama(cfg config.Config) *Ollama {
	return &Ollama{
		binary:  cfg.OllamaBin,
		model:   cfg.OllamaModel,
		timeout: time.Duration(cfg.OllamaTimeoutSec) * time.Second,
		log:     logger.New(),
	}
}

func (o *Ollama) Name() string { return "ollama" }

// Available reports whether the runner binary resolves on this machine.
func (o *Ollama) Available() bool {
	_, err := exec.LookPath(o.binary)
	return err == nil
}

// Clean runs the local model over the transcript and keeps only output lines
// that held the canonical shape. Output with no such lines is reported as
// unstructured rather than passed along as a transcript.
func (o *Ollama) Clean(ctx context.Context, transcript string) types.CleanupResult {
	log := o.log.WithField("component", "cleanup.ollama").WithField("model", o.model)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, o.binary, "run", o.model)
	cmd.Stdin = strings.NewReader(localPrompt + transcript)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		log.Warn("local model timed out")
		return types.CleanupResult{Outcome: types.CleanupError, Kind: types.KindTimeout, Detail: "local model timed out"}
	}
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		log.WithError(err).Warn("local model run failed")
		return types.CleanupResult{Outcome: types.CleanupError, Kind: types.KindUnexpected, Detail: detail}
	}

	raw := stdout.String()
	lines := format.FilterCanonical(raw)
	if len(lines) == 0 {
		if strings.TrimSpace(raw) == "" {
			return types.CleanupResult{Outcome: types.CleanupError, Kind: types.KindUnexpected, Detail: "local model produced no output"}
		}
		log.WithField("raw_len", len(raw)).Warn("local model output lost the line shape")
		return types.CleanupResult{Outcome: types.CleanupUnstructured, Kind: types.KindUnstructured, Detail: raw}
	}

	log.WithField("lines", len(lines)).Info("local cleanup succeeded")
	return types.CleanupResult{Text: strings.Join(lines, "\n"), Outcome: types.CleanupSuccess}
}
