package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rbxsim/rbxsim/internal/daemon"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulator daemon",
	Long: `Start the rbxsim daemon: opens the local state database, restores
the wallet and fun-zone records, and serves the REST API until
interrupted. State lives under ~/.rbxsim (override with RBXSIM_HOME).`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	dir, err := daemon.Home()
	if err != nil {
		return err
	}
	cfg, err := daemon.Load(daemon.ConfigPath(dir))
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	app, err := daemon.New(cfg, dir, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}
