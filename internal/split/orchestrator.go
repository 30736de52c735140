package split

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"hermes/internal/fileutil"
	"hermes/internal/logging"
	"hermes/internal/services"
)

// Orchestrator drives a plan's encode jobs to completion through a bounded
// worker pool. One job's failure never aborts its siblings; every job
// reaches its own terminal outcome and partial output is kept.
type Orchestrator struct {
	ffmpeg     string
	workers    int
	jobTimeout time.Duration
	logger     *slog.Logger
	runner     CommandRunner
}

// NewOrchestrator builds an orchestrator for the given encoder binary.
// Workers defaults to the number of available processing units; runner
// defaults to real process execution.
func NewOrchestrator(opts Options, logger *slog.Logger) *Orchestrator {
	ffmpeg := opts.Encoder.FFmpeg
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Orchestrator{
		ffmpeg:     ffmpeg,
		workers:    workers,
		jobTimeout: opts.JobTimeout,
		logger:     logging.NewComponentLogger(logger, "split"),
		runner:     execRunner{},
	}
}

// SetRunner substitutes the process runner; tests use this to simulate
// encoder behavior.
func (o *Orchestrator) SetRunner(r CommandRunner) {
	if r != nil {
		o.runner = r
	}
}

// Run executes all jobs and returns one outcome per job, in job (track)
// order regardless of completion order. Cancelling ctx stops workers from
// picking up new jobs and kills in-flight encoder processes; affected jobs
// are reported as cancelled, not as encode failures.
func (o *Orchestrator) Run(ctx context.Context, jobs []EncodeJob) []Outcome {
	outcomes := make([]Outcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := range jobs {
		g.Go(func() error {
			outcomes[i] = o.runJob(ctx, jobs[i])
			return nil
		})
	}
	// Workers never return errors; failures live in the outcome slots.
	_ = g.Wait()
	return outcomes
}

func (o *Orchestrator) runJob(ctx context.Context, job EncodeJob) Outcome {
	outcome := Outcome{
		TrackNumber: job.TrackNumber,
		TrackTitle:  job.TrackTitle,
		OutputPath:  job.Spec.Path,
	}
	logger := o.logger.With(
		logging.Int(logging.FieldTrack, job.TrackNumber),
		logging.String(logging.FieldOutput, job.Spec.Path),
	)

	if err := ctx.Err(); err != nil {
		outcome.Kind = OutcomeCancelled
		outcome.Err = services.Wrap(services.ErrCancelled, "split", "run", "run cancelled before job started", nil)
		return outcome
	}

	if job.SkipExists && fileutil.FileExists(job.Spec.Path) {
		logger.Info("output exists, skipping track")
		outcome.Kind = OutcomeSkipped
		return outcome
	}

	if err := fileutil.EnsureParentDir(job.Spec.Path); err != nil {
		outcome.Kind = OutcomeFilesystem
		outcome.Err = services.Wrap(services.ErrFilesystem, "split", "prepare output", "", err)
		return outcome
	}

	jobCtx := ctx
	if o.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, o.jobTimeout)
		defer cancel()
	}

	logger.Info("encoding track",
		logging.String(logging.FieldSource, job.Source),
		logging.String("start", job.Start.Seconds()),
		logging.Bool("to_end_of_file", !job.HasDuration),
	)
	started := time.Now()
	err := o.runner.Run(jobCtx, o.ffmpeg, job.Args)
	if err == nil {
		logger.Info("track encoded", logging.Duration("elapsed", time.Since(started)))
		outcome.Kind = OutcomeOK
		return outcome
	}

	switch {
	case errors.Is(jobCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		outcome.Kind = OutcomeTimedOut
		outcome.Err = services.Wrap(services.ErrTimeout, "split", "run encoder",
			"encoder killed after job timeout", err)
	case ctx.Err() != nil:
		outcome.Kind = OutcomeCancelled
		outcome.Err = services.Wrap(services.ErrCancelled, "split", "run encoder",
			"encoder killed by run cancellation", err)
	default:
		outcome.Kind = OutcomeEncode
		outcome.Err = services.Wrap(services.ErrEncode, "split", "run encoder", "", err)
	}
	logger.Warn("track failed", logging.String("kind", outcome.Kind.String()), logging.Error(outcome.Err))
	return outcome
}
