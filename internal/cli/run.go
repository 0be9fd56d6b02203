package cli

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harun/tandem/internal/config"
	"github.com/harun/tandem/internal/logger"
	"github.com/harun/tandem/internal/observability"
	"github.com/harun/tandem/pkg/agent"
	"github.com/harun/tandem/pkg/society"
	"github.com/harun/tandem/pkg/tooling"
	"github.com/harun/tandem/pkg/transcript"
)

var (
	runTask       string
	runRounds     int
	runOutDir     string
	runNoExport   bool
	runWithMetric bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a task through the two-agent society",
	Long: `Run loads the configuration, builds the driver and worker agents and
drives the dialogue under a strict round limit. The final answer is
printed to stdout and the full transcript is exported.`,
	RunE: runSociety,
}

func init() {
	runCmd.Flags().StringVarP(&runTask, "task", "t", "", "task prompt (required)")
	runCmd.Flags().IntVarP(&runRounds, "rounds", "r", 0, "round limit (overrides config)")
	runCmd.Flags().StringVarP(&runOutDir, "out", "o", "", "transcript output directory (overrides config)")
	runCmd.Flags().BoolVar(&runNoExport, "no-export", false, "skip transcript export")
	runCmd.Flags().BoolVar(&runWithMetric, "metrics", false, "serve prometheus metrics during the run")
	_ = runCmd.MarkFlagRequired("task")

	rootCmd.AddCommand(runCmd)
}

func runSociety(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return err
	}
	if runRounds > 0 {
		cfg.Task.RoundLimit = runRounds
	}
	if runOutDir != "" {
		cfg.Output.Dir = runOutDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   cfg.Logging.Console,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return err
	}
	defer lg.Close()

	sessionID := uuid.New().String()
	zl := lg.Zerolog().With().Str("session_id", sessionID).Logger()

	if cfg.Metrics.Enabled || runWithMetric {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.MetricsHandler())
			zl.Info().Str("listen", cfg.Metrics.Listen).Msg("serving metrics")
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				zl.Warn().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	registry := tooling.NewRegistry(zl)

	driver, err := buildAgent("driver", cfg.Driver, society.DriverContract(runTask), registry, zl)
	if err != nil {
		return err
	}
	worker, err := buildAgent("worker", cfg.Worker, society.WorkerContract(runTask), registry, zl)
	if err != nil {
		return err
	}

	soc, err := society.New(society.Config{
		TaskPrompt: runTask,
		Driver:     driver,
		Worker:     worker,
		Logger:     zl,
	})
	if err != nil {
		return err
	}

	zl.Info().
		Int("round_limit", cfg.Task.RoundLimit).
		Msg("starting society run")

	progress := func(current, limit int) {
		zl.Info().Int("round", current).Int("round_limit", limit).Msg("round started")
	}

	answer, history, usage, err := society.RunSocietyWithStrictLimit(
		cmd.Context(), soc, cfg.Task.RoundLimit, progress)
	if err != nil {
		return err
	}

	zl.Info().
		Int("rounds", len(history)).
		Int("prompt_tokens", usage.PromptTokenCount).
		Int("completion_tokens", usage.CompletionTokenCount).
		Msg("society run finished")

	fmt.Fprintln(cmd.OutOrStdout(), answer)

	if !runNoExport {
		record, err := transcript.New(runTask, answer, history, usage)
		if err != nil {
			return err
		}
		if cfg.Output.JSON {
			path, err := record.WriteJSON(cfg.Output.Dir)
			if err != nil {
				return err
			}
			zl.Info().Str("path", path).Msg("transcript written")
		}
		if cfg.Output.Markdown {
			path, err := record.WriteMarkdown(cfg.Output.Dir)
			if err != nil {
				return err
			}
			zl.Info().Str("path", path).Msg("transcript written")
		}
	}

	return nil
}

func buildAgent(role string, cfg config.AgentConfig, systemPrompt string, registry *tooling.Registry, zl zerolog.Logger) (*agent.ChatAgent, error) {
	provider, err := agent.NewProvider(cfg.Provider, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", role, err)
	}

	return agent.NewChatAgent(agent.ChatAgentConfig{
		Role:         role,
		SystemPrompt: systemPrompt,
		Provider:     provider,
		Config: agent.Config{
			Provider:    cfg.Provider,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			MaxRetries:  cfg.MaxRetries,
			Tools:       cfg.Tools,
		},
		Registry: registry,
		Logger:   zl,
	})
}
