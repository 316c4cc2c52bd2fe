package sim

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/okusnadi/SabberStone/internal/config"
	"github.com/okusnadi/SabberStone/internal/game/cards"
	"github.com/okusnadi/SabberStone/internal/game/conditions"
	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/model"
	"github.com/okusnadi/SabberStone/internal/game/watchers"
	"github.com/okusnadi/SabberStone/internal/persistence/transposition"
)

func bundled(t *testing.T) cards.Repository {
	t.Helper()
	repo, err := cards.LoadFile("../../../data/cards.yaml")
	require.NoError(t, err)
	return repo
}

func options(t *testing.T) Options {
	cfg := config.Default().Game
	cfg.Seed = 1234
	return Options{
		Game:         cfg,
		Logger:       zaptest.NewLogger(t),
		Cards:        bundled(t),
		Turns:        6,
		StartingHand: 3,
	}
}

func TestRunIsDeterministic(t *testing.T) {
	a, err := Run(context.Background(), options(t))
	require.NoError(t, err)
	b, err := Run(context.Background(), options(t))
	require.NoError(t, err)

	assert.Equal(t, a.Game.Digest(), b.Game.Digest())
	assert.Equal(t, a.Actions, b.Actions)
	assert.Equal(t, 12, a.Game.Turn())
}

func TestRunKeepsZonesConsistent(t *testing.T) {
	opts := options(t)
	var turns int
	opts.OnTurn = func(g *model.Game, active *model.Controller) {
		turns++
		for _, c := range g.Controllers() {
			for _, z := range c.Zones() {
				for i, p := range z.All() {
					require.Equal(t, i, p.ZonePosition())
					require.Same(t, z, p.Zone())
				}
				require.LessOrEqual(t, z.Count(), z.MaxSize())
			}
		}
	}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 12, turns)
	assert.NotEmpty(t, res.Actions)

	for _, c := range res.Game.Controllers() {
		require.NotNil(t, c.Hero())
		total := c.Deck().Count() + c.Hand().Count() + c.Board().Count() + c.Graveyard().Count()
		if c.Weapon() != nil {
			total++
		}
		// 11 playable cards, two copies each.
		assert.Equal(t, 22, total, "no card lost for %s", c)
	}
}

func TestRunFeedsWatchers(t *testing.T) {
	res, err := Run(context.Background(), options(t))
	require.NoError(t, err)

	drawn := res.Watchers.Get("CardsDrawnWatcher").(watchers.Counter)
	burned := res.Watchers.Get("CardsBurnedWatcher").(watchers.Counter)
	played := res.Watchers.Get("MinionsPlayedWatcher").(watchers.Counter)
	died := res.Watchers.Get("MinionsDiedWatcher").(watchers.Counter)
	for _, c := range res.Game.Controllers() {
		// Three cards up front, then one per turn.
		assert.Equal(t, 9, drawn.Total(c.ID())+burned.Total(c.ID()), "draws of %s", c)
		assert.Equal(t, c.Board().Count(), played.Total(c.ID()), "nothing leaves the board")
		assert.Zero(t, died.Total(c.ID()))
	}
}

func TestRunTargetsFilter(t *testing.T) {
	opts := options(t)
	opts.Turns = 8
	cond, err := conditions.Expr(`entity.tags.TAUNT > 0`)
	require.NoError(t, err)
	opts.Targets = cond

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	for _, action := range res.Actions {
		if strings.Contains(action, " casts ") {
			assert.Contains(t, action, "Ironfur Grizzly")
		}
	}

	for _, c := range res.Game.Controllers() {
		for _, p := range c.Board().All() {
			if p.Tag(enums.GameTagTaunt) == 0 {
				for _, e := range p.Enchants().All() {
					assert.NotEqual(t, enums.ActivationSpell, e.Activation, "%s was buffed", p)
				}
			}
		}
	}
}

func TestRunRecordsTranspositions(t *testing.T) {
	opts := options(t)
	opts.Store = transposition.NewMemoryStore()

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	n, err := opts.Store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n, "every end-of-turn state is new")

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Transpositions, "a replayed match revisits every state")
}

func TestRunRequiresPlayableCards(t *testing.T) {
	opts := options(t)
	opts.Cards = cards.NewMemoryRepository(cards.MustNew(cards.Definition{ID: "HERO_01", Name: "Garrosh Hellscream", Type: "HERO", Health: 30}))
	_, err := Run(context.Background(), opts)
	assert.ErrorIs(t, err, ErrNoCards)
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, options(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunMulligan(t *testing.T) {
	opts := options(t)
	grizzly := cards.MustNew(cards.Definition{ID: "CS2_125", Name: "Ironfur Grizzly", Type: "MINION", Cost: 3, Attack: 3, Health: 3})
	opts.Cards = cards.NewMemoryRepository(grizzly)
	opts.Copies = 4
	opts.StartingHand = 2
	opts.Turns = 1
	opts.MulliganAbove = 2

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	var mulligans int
	for _, action := range res.Actions {
		if strings.Contains(action, " mulligans ") {
			mulligans++
		}
	}
	assert.Equal(t, 4, mulligans, "both starting cards of both players")

	for _, c := range res.Game.Controllers() {
		total := c.Deck().Count() + c.Hand().Count() + c.Board().Count() + c.Graveyard().Count()
		assert.Equal(t, 4, total, "no card lost for %s", c)
		for _, z := range []*model.Zone{c.Deck(), c.Hand()} {
			for i, p := range z.All() {
				assert.Equal(t, i, p.ZonePosition())
				assert.Same(t, z, p.Zone())
			}
		}
	}
}

func TestTargetLookaheadPicksStrongestBoard(t *testing.T) {
	repo := bundled(t)
	cfg := config.Default().Game
	cfg.Seed = 5
	g := model.NewGame(cfg, zaptest.NewLogger(t))
	c := g.Controller(0)

	place := func(id string, z *model.Zone) model.Playable {
		card, ok := repo.Card(id)
		require.True(t, ok)
		p, err := model.FromCard(c, card, nil, z, 0)
		require.NoError(t, err)
		return p
	}
	raptor := place("CS2_172", c.Board())
	boulder := place("CS2_200", c.Board())
	spell := place("CS2_092", c.Hand())
	before := g.Digest()

	m := &match{opts: Options{Lookahead: true}, game: g, logger: zaptest.NewLogger(t)}
	chosen, err := m.target(c, spell, spells["CS2_092"])
	require.NoError(t, err)
	assert.Same(t, boulder, chosen)

	assert.Equal(t, before, g.Digest(), "lookahead runs on forks only")
	assert.Zero(t, raptor.Enchants().Len())
	assert.Zero(t, boulder.Enchants().Len())
}

func TestRunWithLookahead(t *testing.T) {
	opts := options(t)
	opts.Lookahead = true
	a, err := Run(context.Background(), opts)
	require.NoError(t, err)
	again, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, a.Game.Digest(), again.Game.Digest())
	assert.Equal(t, a.Actions, again.Actions)
}

func TestManaFor(t *testing.T) {
	assert.Equal(t, 1, manaFor(0))
	assert.Equal(t, 1, manaFor(1))
	assert.Equal(t, 2, manaFor(2))
	assert.Equal(t, MaxMana, manaFor(40))
}
