package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vidstitch/internal/batch"
	"vidstitch/internal/config"
	"vidstitch/internal/deps"
	"vidstitch/internal/encoder"
	"vidstitch/internal/engine"
	"vidstitch/internal/fetch"
	"vidstitch/internal/logging"
	"vidstitch/internal/manifest"
	"vidstitch/internal/normalize"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var resolutionFlag string
	var musicFlag string
	var fadeFlag float64
	var noTransitions bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "run <batch-file>",
		Short: "Fetch, normalize and merge a batch of videos",
		Long: "Reads a batch file of source URLs (one per line, with optional start and\n" +
			"end timestamps), downloads each video, converts everything to one shared\n" +
			"format, and stitches the results into a single output file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg, outputFlag, resolutionFlag, musicFlag, fadeFlag, noTransitions, noCache)
			if err := cfg.Validate(); err != nil {
				return err
			}

			entries, err := batch.ParseFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, entry := range entries {
				if !batch.ValidYouTubeURL(entry.URL) {
					fmt.Fprintf(out, "warning: %s does not look like a YouTube URL\n", entry.URL)
				}
			}

			if resolved, err := deps.ResolveFFprobe(cfg.Tools.FFprobe, cfg.Tools.FFmpeg); err == nil {
				cfg.Tools.FFprobe = resolved
			}
			statuses := deps.CheckBinaries(deps.Required(cfg))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s (run `vidstitch check` for details)",
					strings.Join(missing, ", "))
			}

			logger, err := logging.NewWithFile(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			}, cfg.Paths.LogDir, "vidstitch.log")
			if err != nil {
				return err
			}

			sink := newConsoleSink(out)

			var store *manifest.Store
			if cfg.Manifest.Enabled {
				store, err = manifest.Open(cfg.Paths.CacheDir)
				if err != nil {
					sink.Log(fmt.Sprintf("cache manifest unavailable, re-downloading everything: %v", err))
					store = nil
				} else {
					defer store.Close()
				}
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			profile := encoder.Detect(runCtx, logger)
			eng := engine.New(engine.Options{
				Config:     cfg,
				Profile:    profile,
				Fetcher:    fetch.New(cfg, fetch.NewRunner(cfg.Tools.YtDlp), store, logger),
				Normalizer: normalize.New(cfg, profile, logger),
				Entries:    entries,
				Logger:     logger,
				LogSink:    sink,
				Progress:   sink,
			})

			runErr := eng.Run(runCtx)
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSummary(entries))
			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(out, "\nOutput: %s\n", cfg.Output.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file path")
	cmd.Flags().StringVarP(&resolutionFlag, "resolution", "r", "",
		"Target resolution ("+strings.Join(config.ResolutionNames(), ", ")+")")
	cmd.Flags().StringVarP(&musicFlag, "music", "m", "", "Background music file")
	cmd.Flags().Float64Var(&fadeFlag, "fade", 0, "Crossfade duration in seconds (implies transitions)")
	cmd.Flags().BoolVar(&noTransitions, "no-transitions", false, "Concatenate directly without crossfades")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the cache manifest and re-download sources")
	return cmd
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config, output, resolution, music string, fade float64, noTransitions, noCache bool) {
	if output != "" {
		cfg.Output.Path = config.ExpandUser(output)
	}
	if resolution != "" {
		cfg.Output.Resolution = resolution
	}
	if music != "" {
		cfg.Music.Path = config.ExpandUser(music)
	}
	if cmd.Flags().Changed("fade") {
		cfg.Transitions.Enabled = true
		cfg.Transitions.FadeDuration = fade
	}
	if noTransitions {
		cfg.Transitions.Enabled = false
	}
	if noCache {
		cfg.Manifest.Enabled = false
	}
}
