package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/okusnadi/SabberStone/internal/game/model"
	"github.com/okusnadi/SabberStone/internal/game/sim"
	"github.com/okusnadi/SabberStone/internal/transport/ws"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		turns int
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run matches and stream their zones to websocket inspectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd, turns, delay)
		},
	}
	cmd.Flags().IntVar(&turns, "turns", 10, "turns per player in each match")
	cmd.Flags().DurationVar(&delay, "delay", 500*time.Millisecond, "pause after every turn")
	return cmd
}

func (a *app) serve(cmd *cobra.Command, turns int, delay time.Duration) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	repo, err := a.repository(cmd)
	if err != nil {
		return err
	}

	hub := ws.NewHub(a.logger)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{
		Addr:              a.cfg.Inspector.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("starting inspector", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	pause := func(*model.Game, *model.Controller) {
		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
	}
	go func() {
		for ctx.Err() == nil {
			var detach func()
			_, err := sim.Run(ctx, sim.Options{
				Game:         a.cfg.Game,
				Logger:       a.logger,
				Cards:        repo,
				Turns:        turns,
				StartingHand: 3,
				OnGame:       func(g *model.Game) { detach = hub.Attach(g) },
				OnTurn:       pause,
			})
			if detach != nil {
				detach()
			}
			if err != nil && ctx.Err() == nil {
				errCh <- err
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down inspector")
	case err := <-errCh:
		cancel()
		_ = srv.Close()
		return err
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
