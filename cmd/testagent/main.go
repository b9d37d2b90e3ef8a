// Command testagent runs the scripted A2A workflow agent used by the
// orchestrator's end-to-end tests. It serves the workflow protocol over
// SSE and replays the scenario selected at startup.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pixell-labs/workflow-testagent/internal/config"
	"github.com/pixell-labs/workflow-testagent/internal/logging"
	"github.com/pixell-labs/workflow-testagent/internal/scenario"
	"github.com/pixell-labs/workflow-testagent/internal/server"
	"github.com/pixell-labs/workflow-testagent/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port         int
		scenarioName string
		delayMS      int
	)

	cmd := &cobra.Command{
		Use:   "testagent",
		Short: "Scripted workflow agent for e2e protocol tests",
		Long: `testagent is a stand-in remote agent that replays a configured test
scenario over the A2A streaming protocol, so an orchestrator's workflow
state machine can be exercised without a live agent.

Scenarios:
  full_plan_mode       complete workflow through all phases
  direct_execution     skip plan mode, execute directly
  error_mid_execution  simulate an error during execution
  multi_clarification  two rounds of clarification
  timeout_scenario     agent never responds (for timeout testing)

Configuration comes from TEST_AGENT_PORT, TEST_SCENARIO, and
TEST_AGENT_DELAY_MS; flags override the environment.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("scenario") {
				cfg.Scenario = scenarioName
			}
			if cmd.Flags().Changed("delay-ms") {
				cfg.DelayMS = delayMS
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 9999, "listen port (overrides "+config.EnvPort+")")
	cmd.Flags().StringVar(&scenarioName, "scenario", scenario.FullPlanMode, "test scenario (overrides "+config.EnvScenario+")")
	cmd.Flags().IntVar(&delayMS, "delay-ms", 50, "inter-event delay in ms (overrides "+config.EnvDelayMS+")")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	store := session.NewStore()
	engine := scenario.NewEngine(store, cfg.Scenario, cfg.Delay(), log.WithName("scenario"))
	srv := server.New(store, engine, log.WithName("server"))

	// No write timeout: the streaming endpoints hold the response open for
	// the duration of a scenario run, ten minutes in the timeout scenario.
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("test agent listening", "addr", cfg.Addr(), "scenario", cfg.Scenario, "delayMs", cfg.DelayMS)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, gracefully stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "http server shutdown")
	}
	log.Info("shutdown complete")
	return nil
}
