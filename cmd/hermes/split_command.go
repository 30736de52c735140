package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"hermes/internal/config"
	"hermes/internal/cue"
	"hermes/internal/discover"
	"hermes/internal/journal"
	"hermes/internal/logging"
	"hermes/internal/nametemplate"
	"hermes/internal/services"
	"hermes/internal/split"
)

type splitFlags struct {
	template    string
	outDir      string
	preset      string
	ext         string
	ffmpeg      string
	encoding    string
	jobs        int
	timeout     int
	dry         bool
	force       bool
	noOverwrite bool
	noCopy      bool
}

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var flags splitFlags

	cmd := &cobra.Command{
		Use:   "split <cuesheet|directory>... [-- <ffmpeg args>]",
		Short: "Split album images into tracks",
		Long: `Split parses each cuesheet, renders output names from the naming
template, and drives one ffmpeg invocation per track. Directories are
searched recursively for .cue files.

Arguments after "--" are passed to ffmpeg verbatim in place of a preset;
they require --ext because the output extension cannot be inferred.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rawArgs []string
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				rawArgs = args[dash:]
				args = args[:dash]
			}
			if len(args) == 0 {
				return fmt.Errorf("at least one cuesheet or directory is required")
			}
			return runSplit(cmd, ctx, flags, args, rawArgs)
		},
	}

	cmd.Flags().StringVarP(&flags.template, "template", "t", "", "Naming template (see 'hermes template-help')")
	cmd.Flags().StringVarP(&flags.outDir, "out-dir", "o", "", "Base directory for split tracks")
	cmd.Flags().StringVarP(&flags.preset, "preset", "p", "", "Encoding preset (see 'hermes presets')")
	cmd.Flags().StringVar(&flags.ext, "ext", "", "Output extension for raw ffmpeg arguments")
	cmd.Flags().StringVar(&flags.ffmpeg, "ffmpeg", "", "Path to the ffmpeg binary")
	cmd.Flags().StringVar(&flags.encoding, "encoding", "", "Fallback text encoding for non-UTF-8 cuesheets")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "Concurrent encode jobs (0 = CPU count)")
	cmd.Flags().IntVar(&flags.timeout, "timeout", -1, "Per-track timeout in seconds (0 disables)")
	cmd.Flags().BoolVar(&flags.dry, "dry", false, "Print the ffmpeg commands without running them")
	cmd.Flags().BoolVarP(&flags.force, "force", "y", false, "Overwrite existing output files")
	cmd.Flags().BoolVarP(&flags.noOverwrite, "no-overwrite", "n", false, "Skip tracks whose output already exists")
	cmd.Flags().BoolVar(&flags.noCopy, "no-copy", false, "Always re-encode instead of stream copying")
	cmd.MarkFlagsMutuallyExclusive("force", "no-overwrite")
	cmd.MarkFlagsMutuallyExclusive("preset", "ext")

	return cmd
}

func runSplit(cmd *cobra.Command, cmdCtx *commandContext, flags splitFlags, paths, rawArgs []string) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return err
	}

	opts, err := buildSplitOptions(cfg, flags, rawArgs)
	if err != nil {
		return err
	}

	var cuesheets []string
	for _, path := range paths {
		found, err := discover.Cuesheets(path)
		if err != nil {
			return err
		}
		cuesheets = append(cuesheets, found...)
	}

	// All cuesheets are planned before any encoder starts so that output
	// collisions between sheets fail the whole run up front, instead of a
	// later sheet clobbering files an earlier one just wrote.
	planned := make([]plannedSheet, 0, len(cuesheets))
	renderedBy := make(map[string]string)
	for _, sheetPath := range cuesheets {
		jobs, err := planSheet(cfg, opts, flags, sheetPath)
		if err != nil {
			return err
		}
		for _, job := range jobs {
			if prev, ok := renderedBy[job.Spec.Path]; ok {
				return services.Wrap(services.ErrConfiguration, "split", "plan",
					fmt.Sprintf("cuesheets %s and %s render the same output path %s (choose a more specific naming template)",
						prev, sheetPath, job.Spec.Path), nil)
			}
			renderedBy[job.Spec.Path] = sheetPath
		}
		planned = append(planned, plannedSheet{path: sheetPath, jobs: jobs})
	}

	out := cmd.OutOrStdout()
	if flags.dry {
		for _, sheet := range planned {
			for _, job := range sheet.jobs {
				fmt.Fprintln(out, shellJoin(opts.Encoder.FFmpeg, job.Args))
			}
		}
		return nil
	}

	if opts.Overwrite == split.OverwritePrompt && !isatty.IsTerminal(os.Stdin.Fd()) {
		logger.Warn("stdin is not a terminal, existing outputs will be skipped instead of prompting")
		opts.Overwrite = split.OverwriteSkip
		for _, sheet := range planned {
			for i := range sheet.jobs {
				sheet.jobs[i].SkipExists = true
			}
		}
	}

	totalFailed := 0
	for _, sheet := range planned {
		failed, err := executeSheet(cmd.Context(), out, logger, cfg, opts, sheet)
		if err != nil {
			return err
		}
		totalFailed += failed
	}
	if totalFailed > 0 {
		return fmt.Errorf("%d tracks failed", totalFailed)
	}
	return nil
}

type plannedSheet struct {
	path string
	jobs []split.EncodeJob
}

func planSheet(cfg *config.Config, opts split.Options, flags splitFlags, sheetPath string) ([]split.EncodeJob, error) {
	encoding := strings.TrimSpace(flags.encoding)
	if encoding == "" {
		encoding = cfg.Cue.Encoding
	}
	sheet, err := cue.ParseFile(sheetPath, encoding)
	if err != nil {
		return nil, err
	}
	return split.Plan(sheet, filepath.Dir(sheetPath), opts)
}

func buildSplitOptions(cfg *config.Config, flags splitFlags, rawArgs []string) (split.Options, error) {
	templateText := strings.TrimSpace(flags.template)
	if templateText == "" {
		templateText = cfg.Output.Template
	}
	template := nametemplate.Parse(templateText)
	if err := template.Validate(); err != nil {
		return split.Options{}, err
	}

	outDir := strings.TrimSpace(flags.outDir)
	if outDir == "" {
		outDir = cfg.Output.Directory
	} else {
		expanded, err := config.ExpandPath(outDir)
		if err != nil {
			return split.Options{}, err
		}
		outDir = expanded
	}

	overwrite, err := resolveOverwrite(flags, cfg.Output.Overwrite)
	if err != nil {
		return split.Options{}, err
	}

	ffmpeg := strings.TrimSpace(flags.ffmpeg)
	if ffmpeg == "" {
		ffmpeg = cfg.Encoder.FFmpeg
	}
	preset := strings.TrimSpace(flags.preset)
	if preset == "" && len(rawArgs) == 0 {
		preset = cfg.Encoder.Preset
	}

	jobs := flags.jobs
	if jobs == 0 {
		jobs = cfg.Split.Jobs
	}
	timeoutSeconds := flags.timeout
	if timeoutSeconds < 0 {
		timeoutSeconds = cfg.Split.JobTimeoutSeconds
	}

	return split.Options{
		Template: template,
		OutDir:   outDir,
		Encoder: split.Encoder{
			FFmpeg:  ffmpeg,
			Preset:  preset,
			RawArgs: rawArgs,
			RawExt:  strings.TrimSpace(flags.ext),
			NoCopy:  flags.noCopy || cfg.Encoder.NoCopy,
		},
		Overwrite:  overwrite,
		Workers:    jobs,
		JobTimeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

func resolveOverwrite(flags splitFlags, configured string) (split.Overwrite, error) {
	switch {
	case flags.force:
		return split.OverwriteForce, nil
	case flags.noOverwrite:
		return split.OverwriteSkip, nil
	}
	switch configured {
	case "force":
		return split.OverwriteForce, nil
	case "skip":
		return split.OverwriteSkip, nil
	case "", "prompt":
		return split.OverwritePrompt, nil
	}
	return 0, fmt.Errorf("output.overwrite: unsupported value %q", configured)
}

func executeSheet(ctx context.Context, out io.Writer, logger *slog.Logger, cfg *config.Config, opts split.Options, sheet plannedSheet) (int, error) {
	sheetPath := sheet.path
	jobs := sheet.jobs

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(opts.OutDir, ".hermes.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("lock output directory: %w", err)
	}
	if !locked {
		return 0, fmt.Errorf("another hermes run is writing to %s", opts.OutDir)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	runID := uuid.NewString()
	runLogger := logger.With(
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldCueSheet, sheetPath),
	)
	runLogger.Info("starting split",
		logging.Int("tracks", len(jobs)),
		logging.String("out_dir", opts.OutDir),
	)

	started := time.Now()
	orchestrator := split.NewOrchestrator(opts, runLogger)
	outcomes := orchestrator.Run(ctx, jobs)
	finished := time.Now()

	fmt.Fprintln(out, renderOutcomes(sheetPath, outcomes))

	summary := split.Summarize(outcomes)
	fmt.Fprintf(out, "%d ok, %d skipped, %d failed\n", summary.Succeeded, summary.Skipped, summary.Failed)

	source := ""
	if len(jobs) > 0 {
		source = jobs[0].Source
	}
	recordRun(ctx, runLogger, cfg, journal.Run{
		ID:         runID,
		Cuesheet:   sheetPath,
		Source:     source,
		Preset:     presetLabel(opts.Encoder),
		Template:   opts.Template.String(),
		OutDir:     opts.OutDir,
		StartedAt:  started,
		FinishedAt: finished,
	}, outcomes)

	if err := ctx.Err(); err != nil {
		return summary.Failed, err
	}
	return summary.Failed, nil
}

func renderOutcomes(sheetPath string, outcomes []split.Outcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		detail := ""
		if outcome.Err != nil {
			detail = outcome.Err.Error()
		}
		rows = append(rows, []string{
			strconv.Itoa(outcome.TrackNumber),
			outcome.TrackTitle,
			outcome.Kind.String(),
			detail,
		})
	}
	header := fmt.Sprintf("%s\n", sheetPath)
	return header + renderTable(
		[]column{numCol("Track"), textCol("Title"), textCol("Outcome"), textCol("Detail")},
		rows,
	)
}

// shellJoin renders a command for display, quoting arguments that would
// need it in a shell. Dry-run output should paste back into a terminal.
func shellJoin(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteArg(name))
	for _, arg := range args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t\n'\"\\$&|;<>()*?[]#~`") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
