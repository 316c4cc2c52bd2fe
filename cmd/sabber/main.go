package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/okusnadi/SabberStone/internal/config"
	"github.com/okusnadi/SabberStone/internal/game/cards"
	"github.com/okusnadi/SabberStone/internal/logging"
)

var version = "dev" // set via ldflags during build

type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "sabber",
		Short:         "Zone and effect core of a card battle simulator",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "config/sabber.yaml", "path to configuration file")

	root.AddCommand(
		newSimulateCmd(a),
		newReplayCmd(a),
		newCardsCmd(a),
		newServeCmd(a),
	)
	return root
}

// repository loads the card database, from postgres when a database url is
// configured and from the card file otherwise.
func (a *app) repository(cmd *cobra.Command) (cards.Repository, error) {
	if url := a.cfg.Cards.DatabaseURL; url != "" {
		store, err := cards.OpenPostgres(cmd.Context(), url, a.logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(cmd.Context())
	}
	return cards.LoadFile(a.cfg.Cards.Path)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
