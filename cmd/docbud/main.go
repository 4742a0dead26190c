package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"docbud-go/internal/cleanup"
	"docbud-go/internal/collab"
	"docbud-go/internal/config"
	"docbud-go/internal/export"
	"docbud-go/internal/logger"
	"docbud-go/internal/processor"
)

// job names one recording's inputs and outputs: either the two collaborator
// artifact files, or an audio URL for the hosted collaborator.
type job struct {
	Segments string `json:"segments,omitempty"`
	Turns    string `json:"turns,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
	Out      string `json:"out,omitempty"`
	Xlsx     string `json:"xlsx,omitempty"`
}

func main() {
	_ = godotenv.Load() // loads .env

	var (
		segmentsPath = flag.String("segments", "", "recognizer chunks JSON file")
		turnsPath    = flag.String("turns", "", "diarization turns JSON file")
		audioURL     = flag.String("audio-url", "", "recording URL for the hosted collaborator")
		outPath      = flag.String("o", "transcript.txt", "transcript output path")
		xlsxPath     = flag.String("xlsx", "", "optional review workbook path")
		chain        = flag.String("chain", "", "cleanup chain override, comma separated")
		configPath   = flag.String("config", "", "optional YAML config file")
		batchPath    = flag.String("batch", "", "manifest JSON listing many jobs")
	)
	flag.Parse()

	log := logger.New()
	log.WithField("service", "docbud-go").Info("starting")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}
	if *chain != "" {
		cfg.Chain = config.SplitChain(*chain)
	}

	cleaners, err := cleanup.NewChain(cfg)
	if err != nil {
		log.WithError(err).Fatal("cleanup chain invalid")
	}
	proc := processor.New(cfg, cleanup.NewPipeline(cleaners...))

	ctx := context.Background()

	if *batchPath != "" {
		if err := runBatch(ctx, cfg, proc, *batchPath); err != nil {
			log.WithError(err).Fatal("batch failed")
		}
		return
	}

	j := job{Segments: *segmentsPath, Turns: *turnsPath, AudioURL: *audioURL, Out: *outPath, Xlsx: *xlsxPath}
	res, err := runOne(ctx, cfg, proc, j)
	if err != nil {
		log.WithError(err).Fatal("run failed")
	}
	emit(res)
}

func runOne(ctx context.Context, cfg config.Config, proc *processor.Processor, j job) (processor.Result, error) {
	req, err := loadRequest(ctx, cfg, j)
	if err != nil {
		return processor.Result{}, err
	}
	res := proc.Process(ctx, req)
	if j.Out != "" {
		if err := export.WriteTranscript(j.Out, res.FinalText); err != nil {
			return res, err
		}
	}
	if j.Xlsx != "" {
		if err := export.WriteWorkbook(j.Xlsx, res.Assignments, res.Attempts); err != nil {
			return res, err
		}
	}
	return res, nil
}

func loadRequest(ctx context.Context, cfg config.Config, j job) (processor.Request, error) {
	if j.Segments != "" && j.Turns != "" {
		segments, err := collab.LoadSegments(j.Segments)
		if err != nil {
			return processor.Request{}, err
		}
		turns, err := collab.LoadTurns(j.Turns)
		if err != nil {
			return processor.Request{}, err
		}
		digest, err := collab.Digest(j.Segments, j.Turns)
		if err != nil {
			return processor.Request{}, err
		}
		return processor.Request{Segments: segments, Turns: turns, Digest: digest}, nil
	}
	if j.AudioURL != "" {
		segments, turns, digest, err := collab.NewClient(cfg).Fetch(ctx, j.AudioURL)
		if err != nil {
			return processor.Request{}, err
		}
		return processor.Request{Segments: segments, Turns: turns, Digest: digest}, nil
	}
	return processor.Request{}, errors.New("need -segments and -turns files, or -audio-url")
}

func runBatch(ctx context.Context, cfg config.Config, proc *processor.Processor, manifestPath string) error {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	var jobs []job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return fmt.Errorf("decode manifest: %w", err)
	}
	log := logger.New().WithField("component", "batch").WithField("jobs", len(jobs))
	log.Info("batch starting")

	limit := cfg.BatchLimit
	if limit < 1 {
		limit = 1
	}
	results := make([]processor.Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, j := range jobs {
		g.Go(func() error {
			res, err := runOne(gctx, cfg, proc, j)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("batch finished")
	emit(results)
	return nil
}

func emit(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.New().WithError(err).Error("failed to write report")
	}
}
