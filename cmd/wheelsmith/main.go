package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/wheelsmith/internal/backend"
	"git.home.luguber.info/inful/wheelsmith/internal/cache"
	"git.home.luguber.info/inful/wheelsmith/internal/config"
	"git.home.luguber.info/inful/wheelsmith/internal/metrics"
	"git.home.luguber.info/inful/wheelsmith/internal/orchestrator"
	"git.home.luguber.info/inful/wheelsmith/internal/policy"
	"git.home.luguber.info/inful/wheelsmith/internal/provenance"
	"git.home.luguber.info/inful/wheelsmith/internal/requirement"
	"git.home.luguber.info/inful/wheelsmith/internal/vcs"
	"git.home.luguber.info/inful/wheelsmith/internal/version"
	"git.home.luguber.info/inful/wheelsmith/internal/workspace"
)

var CLI struct {
	Config        string           `short:"c" help:"Configuration file path" default:"wheelsmith.yaml"`
	Verbose       bool             `short:"v" help:"Enable verbose logging"`
	MetricsListen string           `help:"Address to serve Prometheus metrics on during the run (optional)"`
	Version       kong.VersionFlag `help:"Print version information and exit"`

	Wheel struct {
		Output   string   `short:"o" help:"Output directory for built wheels (defaults to output.wheel_dir from the configuration)"`
		NoBinary []string `help:"Requirement names to forbid binary wheels for (':all:' for every requirement)"`
	} `cmd:"" help:"Build wheels for all configured requirements into an output directory"`

	Install struct {
		BuildDir string   `help:"Directory for unpacked build locations (defaults to the run workspace)"`
		NoBinary []string `help:"Requirement names to forbid binary wheels for (':all:' for every requirement)"`
	} `cmd:"" help:"Build wheels and place them as installation sources"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	kctx := kong.Parse(&CLI, kong.Vars{
		"version": version.Version + " (commit " + version.GitCommit + ", built " + version.BuildTime + ")",
	})

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch kctx.Command() {
	case "wheel":
		cfg := mustLoadConfig()
		wheelDir := CLI.Wheel.Output
		if wheelDir == "" {
			wheelDir = cfg.Output.WheelDir
		}
		failed, err := runBuild(cfg, orchestrator.ModeWheel, orchestrator.Options{
			WheelDir:       wheelDir,
			InterpreterTag: cfg.Build.InterpreterTag,
		}, CLI.Wheel.NoBinary)
		if err != nil {
			slog.Error("Wheel build failed", "error", err)
			os.Exit(1)
		}
		if failed > 0 {
			os.Exit(1)
		}
	case "install":
		cfg := mustLoadConfig()
		failed, err := runBuild(cfg, orchestrator.ModeInstall, orchestrator.Options{
			BuildDir:       CLI.Install.BuildDir,
			InterpreterTag: cfg.Build.InterpreterTag,
		}, CLI.Install.NoBinary)
		if err != nil {
			slog.Error("Install build failed", "error", err)
			os.Exit(1)
		}
		if failed > 0 {
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration file created", "path", CLI.Config)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// runBuild executes one batch build and returns the number of requirements
// that failed to build.
func runBuild(cfg *config.Config, mode orchestrator.Mode, opts orchestrator.Options, noBinary []string) (int, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	wsManager := workspace.NewManager("")
	if err := wsManager.Create(); err != nil {
		return 0, err
	}
	defer func() {
		if err := wsManager.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup workspace", "error", err)
		}
	}()

	// Ephemeral cache lives inside the run workspace and dies with it.
	ephemDir, err := wsManager.CreateSubdir("ephem-wheel-cache")
	if err != nil {
		return 0, err
	}

	binaryAllowed := policy.AlwaysAllowed
	if len(noBinary) > 0 {
		binaryAllowed = policy.DisallowNames(noBinary...)
	}

	dispatcher := backend.NewDispatcher(backend.Options{
		BuildCommand:  cfg.Build.Command,
		CleanCommand:  cfg.Build.CleanCommand,
		GlobalOptions: cfg.Build.GlobalOptions,
		BuildOptions:  cfg.Build.BuildOptions,
	})

	orch := orchestrator.New(
		policy.New(binaryAllowed, vcs.NewRegistry()),
		cache.New(cfg.Cache.Dir, ephemDir),
		dispatcher,
		wsManager,
		opts,
	)

	if CLI.MetricsListen != "" {
		registry := prom.NewRegistry()
		orch.WithRecorder(metrics.NewPrometheusRecorder(registry))
		go serveMetrics(CLI.MetricsListen, registry)
	}

	if cfg.Provenance.Database != "" {
		store, err := provenance.NewStore(cfg.Provenance.Database)
		if err != nil {
			return 0, err
		}
		defer func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close provenance store", "error", err)
			}
		}()
		orch.WithProvenance(store)
	}

	reqs := make([]*requirement.Requirement, 0, len(cfg.Requirements))
	for _, rc := range cfg.Requirements {
		req, err := rc.ToRequirement()
		if err != nil {
			return 0, err
		}
		reqs = append(reqs, req)
	}

	slog.Info("Starting wheel build run",
		"mode", string(mode),
		"requirements", len(reqs),
		"run_id", orch.RunID())

	failed, err := orch.Build(ctx, reqs, mode)
	if err != nil {
		return len(failed), err
	}
	return len(failed), nil
}

func serveMetrics(addr string, registry *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Warn("Metrics server stopped", "error", err)
	}
}
