package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inferd/internal/config"
	"inferd/internal/engine"
	"inferd/internal/gateway"
	"inferd/internal/httpapi"
	"inferd/internal/registry"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRootCmd constructs the Cobra command for the daemon.
func buildRootCmd() *cobra.Command {
	// Flags with environment variable defaults
	defaultAddr := ":8080"
	if v := os.Getenv("INFERD_ADDR"); v != "" {
		defaultAddr = v
	}
	defaultModelsFile := os.Getenv("INFERD_MODELS_FILE")
	defaultLogLevel := "info"
	if v := os.Getenv("INFERD_LOG_LEVEL"); v != "" {
		defaultLogLevel = v
	}

	var (
		addr          string
		configPath    string
		modelsFile    string
		maxConcurrent int
		syncTokens    int
		streamTokens  int
		dummyDelayMS  int
		llamaCtx      int
		llamaThreads  int
		logLevel      string
		corsOrigins   string
	)

	root := &cobra.Command{
		Use:           "inferd",
		Short:         "Local inference gateway over a seeded model registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Config{
				Addr:               addr,
				ModelsFile:         modelsFile,
				MaxConcurrentInfer: maxConcurrent,
				SyncMaxTokens:      syncTokens,
				StreamMaxTokens:    streamTokens,
				DummyDelayMS:       dummyDelayMS,
				LlamaCtx:           llamaCtx,
				LlamaThreads:       llamaThreads,
				LogLevel:           logLevel,
			}
			if configPath != "" {
				fileCfg, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config %s: %w", configPath, err)
				}
				// Only flags explicitly set on the command line beat the
				// file; defaults do not.
				if !cmd.Flags().Changed("addr") {
					cfg.Addr = ""
				}
				if !cmd.Flags().Changed("models-file") {
					cfg.ModelsFile = ""
				}
				if !cmd.Flags().Changed("log-level") {
					cfg.LogLevel = ""
				}
				cfg = mergeConfig(fileCfg, cfg)
				if cfg.Addr == "" {
					cfg.Addr = addr
				}
				if cfg.ModelsFile == "" {
					cfg.ModelsFile = modelsFile
				}
				if cfg.LogLevel == "" {
					cfg.LogLevel = logLevel
				}
			}
			if corsOrigins != "" {
				cfg.CORS.Enabled = true
				cfg.CORS.AllowedOrigins = splitCSV(corsOrigins)
			}
			return run(cfg)
		},
	}

	root.Flags().StringVar(&addr, "addr", defaultAddr, "HTTP listen address, e.g. :8080")
	root.Flags().StringVar(&configPath, "config", "", "Optional config file (yaml|json|toml); flags override it")
	root.Flags().StringVar(&modelsFile, "models-file", defaultModelsFile, "Model manifest file; empty uses the built-in seeds")
	root.Flags().IntVar(&maxConcurrent, "max-concurrent-infer", 0, "Cap on simultaneous generation sessions (0=default)")
	root.Flags().IntVar(&syncTokens, "sync-max-tokens", 0, "Default token budget for synchronous inference (0=default)")
	root.Flags().IntVar(&streamTokens, "stream-max-tokens", 0, "Default token budget for streaming inference (0=default)")
	root.Flags().IntVar(&dummyDelayMS, "dummy-delay-ms", 0, "Per-fragment delay for the dummy engine in ms (0=default)")
	root.Flags().IntVar(&llamaCtx, "llama-ctx", 0, "Context window for the llama engine (0=default)")
	root.Flags().IntVar(&llamaThreads, "llama-threads", 0, "Thread count for the llama engine (0=auto)")
	root.Flags().StringVar(&logLevel, "log-level", defaultLogLevel, "Log level: debug|info|warn|error|off")
	root.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins (enables CORS)")

	return root
}

// mergeConfig overlays non-zero flag values on top of the file config.
func mergeConfig(file, flags config.Config) config.Config {
	out := file
	if flags.Addr != "" {
		out.Addr = flags.Addr
	}
	if flags.ModelsFile != "" {
		out.ModelsFile = flags.ModelsFile
	}
	if flags.MaxConcurrentInfer > 0 {
		out.MaxConcurrentInfer = flags.MaxConcurrentInfer
	}
	if flags.SyncMaxTokens > 0 {
		out.SyncMaxTokens = flags.SyncMaxTokens
	}
	if flags.StreamMaxTokens > 0 {
		out.StreamMaxTokens = flags.StreamMaxTokens
	}
	if flags.DummyDelayMS > 0 {
		out.DummyDelayMS = flags.DummyDelayMS
	}
	if flags.LlamaCtx > 0 {
		out.LlamaCtx = flags.LlamaCtx
	}
	if flags.LlamaThreads > 0 {
		out.LlamaThreads = flags.LlamaThreads
	}
	if flags.LogLevel != "" {
		out.LogLevel = flags.LogLevel
	}
	return out
}

func run(cfg config.Config) error {
	log := newLogger(cfg.LogLevel)

	seeds := registry.DefaultSeeds()
	if cfg.ModelsFile != "" {
		var err error
		seeds, err = registry.LoadFile(cfg.ModelsFile)
		if err != nil {
			return fmt.Errorf("load models file %s: %w", cfg.ModelsFile, err)
		}
	}
	reg := registry.New(seeds)

	var engOpts engine.Options
	if cfg.DummyDelayMS > 0 {
		engOpts.DummyDelay = time.Duration(cfg.DummyDelayMS) * time.Millisecond
	}
	engOpts.LlamaCtx = cfg.LlamaCtx
	engOpts.LlamaThreads = cfg.LlamaThreads

	gw := gateway.NewWithConfig(gateway.GatewayConfig{
		Registry:           reg,
		MaxConcurrentInfer: cfg.MaxConcurrentInfer,
		SyncMaxTokens:      cfg.SyncMaxTokens,
		StreamMaxTokens:    cfg.StreamMaxTokens,
		Engine:             engOpts,
		Logger:             &log,
	})

	// Base context canceled on shutdown so in-flight sessions stop even when
	// clients stay connected.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(log)
	if cfg.CORS.Enabled {
		httpapi.SetCORSOptions(true, cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders)
	}

	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: httpapi.NewMux(gw)}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Int("models", len(seeds)).Msg("inferd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

// newLogger builds the process logger writing console output to stderr.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if level == "off" {
		lvl = zerolog.Disabled
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// splitCSV splits a comma-separated flag value, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
