package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/okusnadi/SabberStone/internal/game/conditions"
	"github.com/okusnadi/SabberStone/internal/game/model"
	"github.com/okusnadi/SabberStone/internal/game/replay"
	"github.com/okusnadi/SabberStone/internal/game/sim"
	"github.com/okusnadi/SabberStone/internal/game/watchers"
	"github.com/okusnadi/SabberStone/internal/persistence/transposition"
)

var (
	styleTitle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	styleController = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleZone       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	styleEmpty      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleAction     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

type simulateOptions struct {
	turns     int
	hand      int
	copies    int
	seed      int64
	targets   string
	lookahead bool
	mulligan  int
	record    bool
	verbose   bool
}

func newSimulateCmd(a *app) *cobra.Command {
	opts := simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a scripted match and print the final zones",
		Long: `Both players draw from shuffled decks built from the card database,
put minions into play and cast buff spells each turn. The final state of
every zone is printed together with its digest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.simulate(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.turns, "turns", 5, "turns per player")
	cmd.Flags().IntVar(&opts.hand, "hand", 3, "cards drawn before the first turn")
	cmd.Flags().IntVar(&opts.copies, "copies", 2, "copies of each card per deck")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed (0 uses the configured seed)")
	cmd.Flags().StringVar(&opts.targets, "targets", "", `CEL condition buff spells must satisfy, e.g. 'entity.tags.TAUNT > 0'`)
	cmd.Flags().BoolVar(&opts.lookahead, "lookahead", false, "try every buff target on a forked game and keep the best")
	cmd.Flags().IntVar(&opts.mulligan, "mulligan", 0, "swap starting cards costing more than this (0 keeps the hand)")
	cmd.Flags().BoolVar(&opts.record, "record", false, "save a replay of the match")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print every action")
	return cmd
}

func (a *app) simulate(cmd *cobra.Command, opts simulateOptions) error {
	repo, err := a.repository(cmd)
	if err != nil {
		return err
	}

	gameCfg := a.cfg.Game
	if opts.seed != 0 {
		gameCfg.Seed = opts.seed
	}

	var targets *conditions.SelfCondition
	if opts.targets != "" {
		if targets, err = conditions.Expr(opts.targets); err != nil {
			return err
		}
	}

	store, err := transposition.Open(a.cfg.Transposition, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	recorder := replay.NewRecorder(a.logger, a.cfg.Replay.Directory)
	simOpts := sim.Options{
		Game:          gameCfg,
		Logger:        a.logger,
		Cards:         repo,
		Turns:         opts.turns,
		Copies:        opts.copies,
		StartingHand:  opts.hand,
		Targets:       targets,
		Lookahead:     opts.lookahead,
		MulliganAbove: opts.mulligan,
		Store:         store,
	}
	if opts.record {
		simOpts.OnGame = func(g *model.Game) { recorder.Attach(g) }
	}

	res, err := sim.Run(cmd.Context(), simOpts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.verbose {
		for _, action := range res.Actions {
			fmt.Fprintln(out, styleAction.Render(action))
		}
	}
	fmt.Fprint(out, renderGame(res.Game))
	fmt.Fprint(out, renderStats(res))
	fmt.Fprintf(out, "transpositions: %d\n", res.Transpositions)

	if opts.record {
		path, err := recorder.Save(res.Game.ID())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "replay: %s\n", path)
		a.logger.Info("replay written", zap.String("path", path))
	}
	return nil
}

// renderStats prints the watcher totals of every controller.
func renderStats(res *sim.Result) string {
	var b strings.Builder
	for _, c := range res.Game.Controllers() {
		fmt.Fprintf(&b, "%s:", c.Name())
		for _, w := range res.Watchers.All() {
			if counter, ok := w.(watchers.Counter); ok {
				fmt.Fprintf(&b, " %s=%d", strings.TrimSuffix(w.Key(), "Watcher"), counter.Total(c.ID()))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderGame prints every zone of every controller, one per line.
func renderGame(g *model.Game) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("game %s turn %d", g.ID(), g.Turn())))
	b.WriteString("\n")
	for _, c := range g.Controllers() {
		header := c.Name()
		if h := c.Hero(); h != nil {
			header += fmt.Sprintf(" %s %d hp", h, h.Health())
		}
		if w := c.Weapon(); w != nil {
			header += fmt.Sprintf(" wielding %s %d/%d", w, w.AttackDamage(), w.Durability())
		}
		b.WriteString(styleController.Render(header))
		b.WriteString("\n")
		for _, z := range c.Zones() {
			style := styleZone
			if z.IsEmpty() {
				style = styleEmpty
			}
			b.WriteString("  ")
			b.WriteString(style.Render(z.FullPrint()))
			b.WriteString("\n")
		}
	}
	b.WriteString(styleTitle.Render("digest " + g.Digest()))
	b.WriteString("\n")
	return b.String()
}
