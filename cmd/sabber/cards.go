package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/okusnadi/SabberStone/internal/game/cards"
)

func newCardsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage the card database",
	}

	validate := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a card file against the card schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Cards.Path
			if len(args) == 1 {
				path = args[0]
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			repo, err := cards.Parse(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d cards ok\n", path, len(repo.All()))
			return nil
		},
	}

	var databaseURL string
	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Load a card file into postgres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Cards.Path
			if len(args) == 1 {
				path = args[0]
			}
			url := databaseURL
			if url == "" {
				url = a.cfg.Cards.DatabaseURL
			}
			if url == "" {
				return errors.New("no database url: set cards.database_url or pass --database-url")
			}

			repo, err := cards.LoadFile(path)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := cards.OpenPostgres(ctx, url, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return err
			}
			n, err := store.Import(ctx, repo.All())
			if err != nil {
				return err
			}

			a.logger.Info("card import complete",
				zap.String("path", path),
				zap.Int("cards", n),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cards\n", n)
			return nil
		},
	}
	importCmd.Flags().StringVar(&databaseURL, "database-url", "", "postgres url (defaults to cards.database_url)")

	cmd.AddCommand(validate, importCmd)
	return cmd
}
