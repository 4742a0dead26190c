package processor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docbud-go/internal/align"
	"docbud-go/internal/cleanup"
	"docbud-go/internal/config"
	"docbud-go/internal/format"
	"docbud-go/internal/insights"
	"docbud-go/internal/logger"
	"docbud-go/internal/types"
)

// Request is one recording's worth of collaborator output.
type Request struct {
	Segments []types.TextSegment
	Turns    []types.SpeakerTurn
	Digest   string
}

// Result is the full run report for one request.
type Result struct {
	RequestID   string               `json:"request_id"`
	Success     bool                 `json:"success"`
	Outcome     types.CleanupOutcome `json:"outcome"`
	FinalText   string               `json:"final_text"`
	RawText     string               `json:"raw_text"`
	Assignments []types.Assignment   `json:"assignments"`
	Attempts    []types.Attempt      `json:"attempts"`
	Insights    insights.Summary     `json:"insights"`
	InputDigest string               `json:"input_digest,omitempty"`
	DurationMs  int64                `json:"duration_ms"`
}

// Processor fuses collaborator output into a speaker labeled transcript and
// runs it through the cleanup chain.
type Processor struct {
	cfg  config.Config
	pipe *cleanup.Pipeline
	log  *logger.Logger
}

func New(cfg config.Config, pipe *cleanup.Pipeline) *Processor {
	return &Processor{cfg: cfg, pipe: pipe, log: logger.New()}
}

// Process aligns, formats, and cleans one request. It always returns a usable
// transcript; Success reports whether a cleanup backend actually ran to
// completion on it.
func (p *Processor) Process(ctx context.Context, req Request) Result {
	start := time.Now()
	runID := uuid.New().String()
	log := p.log.WithRun(runID).
		WithField("segments", len(req.Segments)).
		WithField("turns", len(req.Turns))
	log.Info("processing request")

	assignments := align.Align(req.Segments, req.Turns)
	if p.cfg.SpeakerOverride {
		assignments = align.ApplyResponseOverride(assignments, req.Turns)
	}
	raw := format.Transcript(assignments)

	final, attempts := p.pipe.Run(ctx, raw)
	outcome := chainOutcome(attempts)

	res := Result{
		RequestID:   runID,
		Success:     outcome == types.CleanupSuccess,
		Outcome:     outcome,
		FinalText:   final,
		RawText:     raw,
		Assignments: assignments,
		Attempts:    attempts,
		Insights:    insights.Summarize(assignments),
		InputDigest: req.Digest,
		DurationMs:  time.Since(start).Milliseconds(),
	}
	log.WithField("outcome", string(outcome)).
		WithField("duration_ms", res.DurationMs).
		Info("request done")
	return res
}

// chainOutcome is the terminal chain state: a success short-circuits the
// chain, otherwise the last attempt stands. An empty chain counts as skipped.
func chainOutcome(attempts []types.Attempt) types.CleanupOutcome {
	if len(attempts) == 0 {
		return types.CleanupSkipped
	}
	last := attempts[len(attempts)-1]
	return last.Outcome
}
