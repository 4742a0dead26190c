package cleanup

import (
	"context"
	"fmt"
	"strings"

	"docbud-go/internal/config"
	"docbud-go/internal/logger"
	"docbud-go/internal/types"
)

// Cleaner is one correction backend in the fallback chain.
type Cleaner interface {
	// Clean applies conservative correction to a formatted transcript.
	Clean(ctx context.Context, transcript string) types.CleanupResult
	// Name identifies the backend in attempt logs.
	Name() string
	// Available reports whether the backend is configured to run.
	Available() bool
}

// Pipeline walks its backends in order until one succeeds. It never fails:
// when every backend is skipped or errors out, the caller gets the input back.
type Pipeline struct {
	cleaners []Cleaner
	log      *logger.Logger
}

func NewPipeline(cleaners ...Cleaner) *Pipeline {
	return &Pipeline{cleaners: cleaners, log: logger.New()}
}

// Run feeds the transcript through the chain. The returned text is the first
// successful cleanup, or the input unchanged, together with one attempt
// record per backend reached.
func (p *Pipeline) Run(ctx context.Context, transcript string) (string, []types.Attempt) {
	log := p.log.WithField("component", "cleanup.pipeline")
	attempts := make([]types.Attempt, 0, len(p.cleaners))
	for _, c := range p.cleaners {
		if !c.Available() {
			log.WithField("backend", c.Name()).Info("backend unavailable, skipping")
			attempts = append(attempts, types.Attempt{Backend: c.Name(), Outcome: types.CleanupSkipped})
			continue
		}
		res := c.Clean(ctx, transcript)
		attempts = append(attempts, types.Attempt{
			Backend: c.Name(),
			Outcome: res.Outcome,
			Kind:    res.Kind,
			Detail:  res.Detail,
		})
		if res.Outcome == types.CleanupSuccess {
			log.WithField("backend", c.Name()).Info("cleanup succeeded")
			return res.Text, attempts
		}
		if res.Outcome == types.CleanupSkipped {
			log.WithField("backend", c.Name()).Info("backend skipped")
			continue
		}
		log.WithField("backend", c.Name()).
			WithField("outcome", string(res.Outcome)).
			WithField("error_kind", string(res.Kind)).
			Warn("cleanup attempt failed, falling through")
	}
	return transcript, attempts
}

// NewChain builds cleaners from the configured backend names, in order.
func NewChain(cfg config.Config) ([]Cleaner, error) {
	var cleaners []Cleaner
	for _, name := range cfg.Chain {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "openai":
			cleaners = append(cleaners, NewOpenAI(cfg))
		case "ollama":
			cleaners = append(cleaners, NewOllama(cfg))
		case "identity":
			cleaners = append(cleaners, Identity{})
		case "":
		default:
			return nil, fmt.Errorf("unknown cleanup backend %q", name)
		}
	}
	return cleaners, nil
}
