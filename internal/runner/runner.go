// Package runner executes scrape jobs sequentially: each job resolves
// its video ID, pages through the comment API, and exports the result
// before the next job starts. No error crosses a job boundary.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitbash-dev/tiktok-comments/internal/config"
	"github.com/bitbash-dev/tiktok-comments/internal/export"
	"github.com/bitbash-dev/tiktok-comments/internal/metrics"
	"github.com/bitbash-dev/tiktok-comments/internal/scraper"
	"github.com/bitbash-dev/tiktok-comments/internal/store"
	"github.com/bitbash-dev/tiktok-comments/internal/transport"
)

// Options carries the per-run CLI overrides.
type Options struct {
	OutputDir string
	// ExportFormat overrides job and settings formats when non-empty.
	ExportFormat string
}

// Runner wires the resolver, pagination engine, export sink, and run
// store together for a batch of jobs. One transport client is shared
// across jobs for connection reuse; no other state crosses a job
// boundary.
type Runner struct {
	cfg    config.Config
	client transport.Client
	sink   *export.Sink
	runs   store.RunStore
	logger *zap.Logger
}

// New constructs a Runner. The run store may be nil.
func New(cfg config.Config, client transport.Client, sink *export.Sink, runs store.RunStore, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		client: client,
		sink:   sink,
		runs:   runs,
		logger: logger,
	}
}

// LoadJobs reads the jobs input file. A top-level value that is not a
// JSON list is fatal to the whole run; individual entries are decoded
// lazily so one bad entry cannot sink its siblings.
func LoadJobs(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}
	var jobs []json.RawMessage
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("jobs file %s must contain a JSON list: %w", path, err)
	}
	return jobs, nil
}

// Run executes every job in order. Entries that are not JSON objects
// are skipped with a warning.
func (r *Runner) Run(ctx context.Context, jobs []json.RawMessage, opts Options) {
	for idx, rawJob := range jobs {
		var job scraper.Job
		if err := json.Unmarshal(rawJob, &job); err != nil {
			r.logger.Warn("skipping job: not a JSON object",
				zap.Int("job", idx+1), zap.Error(err))
			continue
		}
		r.runJob(ctx, idx, job, opts)
	}
}

func (r *Runner) runJob(ctx context.Context, idx int, job scraper.Job, opts Options) {
	logger := r.logger.With(zap.Int("job", idx+1))

	target := job.TargetURL()
	if target == "" {
		logger.Error("job is missing video_url")
		metrics.ObserveJob("invalid")
		return
	}

	// Per-job overrides apply to exactly these settings.
	maxComments := r.cfg.Scraper.MaxComments
	if job.MaxComments != nil {
		maxComments = *job.MaxComments
	}
	scrapeReplies := r.cfg.Scraper.ScrapeReplies
	if job.ScrapeReplies != nil {
		scrapeReplies = *job.ScrapeReplies
	}

	// Export format precedence: CLI flag > job > settings default.
	rawFormat := opts.ExportFormat
	if rawFormat == "" {
		rawFormat = job.ExportFormat
	}
	if rawFormat == "" {
		rawFormat = r.cfg.Scraper.ExportFormat
	}
	if rawFormat == "" {
		rawFormat = string(export.FormatJSON)
	}
	format := r.sink.ParseFormat(rawFormat)

	baseName := job.OutputFile
	if baseName == "" {
		baseName = fmt.Sprintf("tiktok_comments_%d", idx+1)
	}

	logger.Info("starting job",
		zap.String("url", target),
		zap.Int("max_comments", maxComments),
		zap.Bool("scrape_replies", scrapeReplies),
		zap.String("format", string(format)),
	)

	rec := store.RunRecord{
		ID:           newRunID(),
		VideoURL:     target,
		ExportFormat: string(format),
		StartedAt:    time.Now().UTC(),
	}

	var comments []scraper.Comment
	videoID, err := scraper.ResolveVideoID(target)
	if err != nil {
		logger.Error("url parsing failed", zap.Error(err))
		rec.Status = store.RunStatusFailed
		rec.ErrorText = err.Error()
		metrics.ObserveJob("failed")
	} else {
		rec.VideoID = videoID
		engine := scraper.NewEngine(r.client, scraper.Options{
			MaxComments:   maxComments,
			ScrapeReplies: scrapeReplies,
			Delay:         r.cfg.Scraper.Delay,
		}, logger)
		comments = engine.FetchAll(ctx, videoID)
		if len(comments) == 0 {
			logger.Warn("no comments retrieved; this may be a network issue or an upstream API change")
			rec.Status = store.RunStatusEmpty
			metrics.ObserveJob("empty")
		} else {
			rec.Status = store.RunStatusSucceeded
			metrics.ObserveJob("succeeded")
		}
	}
	rec.CommentCount = len(comments)

	// Every failure path still exports a well-formed (possibly empty)
	// output file rather than aborting silently.
	r.sink.Export(comments, opts.OutputDir, baseName, format)

	rec.FinishedAt = time.Now().UTC()
	if r.runs != nil {
		if err := r.runs.RecordRun(ctx, rec); err != nil {
			logger.Warn("record run failed", zap.Error(err))
		}
	}

	logger.Info("completed job", zap.Int("comments", len(comments)))
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
