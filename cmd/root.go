// Package cmd defines the readlevel CLI.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/periodical-labs/readlevel/internal/cache"
	"github.com/periodical-labs/readlevel/internal/config"
	"github.com/periodical-labs/readlevel/internal/cookies"
	"github.com/periodical-labs/readlevel/internal/fetcher"
	"github.com/periodical-labs/readlevel/internal/fetcher/detector"
	"github.com/periodical-labs/readlevel/internal/fetcher/headless"
	"github.com/periodical-labs/readlevel/internal/logging"
	"github.com/periodical-labs/readlevel/internal/pipeline"
)

var cfgFile string

// runtime holds the services built once per invocation and shared by the
// subcommands.
type runtime struct {
	cfg      config.Config
	pipe     *pipeline.Pipeline
	renderer *headless.Renderer
	logger   *zap.Logger
}

var rt *runtime

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readlevel",
		Short: "Measure the reading level of a periodical over time.",
		Long: `readlevel crawls a periodical's magazine issues and web-only
articles, computes readability metrics over the extracted text, and
aggregates them into per-issue and per-year trends.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			rt, err = buildRuntime(cmd)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt == nil {
				return
			}
			if rt.renderer != nil {
				rt.renderer.Close()
			}
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults + READLEVEL_* env)")

	cmd.AddCommand(
		newFetchMagazineCmd(),
		newFetchWebCmd(),
		newComputeMetricsCmd(),
		newAggregateCmd(),
		newVisualizeCmd(),
	)
	return cmd
}

func buildRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := logging.InitLogger(cfg.Logging.Development); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}
	logger := logging.L

	var creds []cookies.Record
	if cfg.Site.CookiesPath != "" {
		creds, err = cookies.Load(cfg.Site.CookiesPath)
		if err != nil {
			return nil, fmt.Errorf("load cookies: %w", err)
		}
		logger.Info("loaded cookies", zap.Int("count", len(creds)))
	}

	store, err := cache.New(cfg.Storage.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	var (
		renderer *headless.Renderer
		det      fetcher.Detector
	)
	if cfg.Render.Enabled {
		renderer, err = headless.New(headless.Config{
			MaxParallel:       cfg.Render.MaxParallel,
			UserAgent:         cfg.Site.UserAgent,
			NavigationTimeout: time.Duration(cfg.Render.NavTimeoutSec) * time.Second,
			DomainQPS:         cfg.HTTP.RequestsPerSec,
		}, creds, logger)
		if err != nil {
			return nil, fmt.Errorf("start renderer: %w", err)
		}
		det = detector.NewHeuristic(cfg.Render.MinTextBytes)
	}

	client := fetcher.New(fetcher.Config{
		UserAgent:       cfg.Site.UserAgent,
		Timeout:         cfg.RequestTimeout(),
		MaxRetries:      cfg.HTTP.MaxRetries,
		BackoffInitial:  time.Duration(cfg.HTTP.BackoffInitialMs) * time.Millisecond,
		BackoffMax:      time.Duration(cfg.HTTP.BackoffMaxMs) * time.Millisecond,
		RequestInterval: intervalFromQPS(cfg.HTTP.RequestsPerSec),
	}, store, rendererOrNil(renderer), det, creds, logger)

	pipe, err := pipeline.New(cfg, client, logger)
	if err != nil {
		return nil, fmt.Errorf("assemble pipeline: %w", err)
	}

	return &runtime{cfg: cfg, pipe: pipe, renderer: renderer, logger: logger}, nil
}

// rendererOrNil avoids handing the client a typed-nil interface value.
func rendererOrNil(r *headless.Renderer) fetcher.Renderer {
	if r == nil {
		return nil
	}
	return r
}

func intervalFromQPS(qps float64) time.Duration {
	if qps <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / qps)
}

// Execute runs the CLI. Configuration and storage failures exit non-zero;
// individual article failures inside a run are logged and skipped.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
