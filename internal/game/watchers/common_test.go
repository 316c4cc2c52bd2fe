package watchers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/okusnadi/SabberStone/internal/config"
	"github.com/okusnadi/SabberStone/internal/game/cards"
	"github.com/okusnadi/SabberStone/internal/game/enchants"
	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/model"
	"github.com/okusnadi/SabberStone/internal/game/rules"
	"github.com/okusnadi/SabberStone/internal/game/tasks"
)

var (
	raptorCard = cards.MustNew(cards.Definition{ID: "CS2_172", Name: "Bloodfen Raptor", Type: "MINION", Cost: 2, Attack: 3, Health: 2})
	kingsCard  = cards.MustNew(cards.Definition{ID: "CS2_092", Name: "Blessing of Kings", Type: "SPELL", Cost: 4})
)

func move(t *testing.T, p model.Playable, to *model.Zone) {
	t.Helper()
	if z := p.Zone(); z != nil {
		_, err := z.Remove(p)
		require.NoError(t, err)
	}
	_, err := to.Add(p)
	require.NoError(t, err)
}

func TestZoneWatchersFollowTheBus(t *testing.T) {
	cfg := config.Default().Game
	cfg.Seed = 3
	g := model.NewGame(cfg, zaptest.NewLogger(t), "Alice", "Bob")
	p1, p2 := g.Controller(0), g.Controller(1)

	registry := Standard()
	detach := registry.Attach(g.Bus())
	defer detach()

	drawn := registry.Get("CardsDrawnWatcher").(Counter)
	burned := registry.Get("CardsBurnedWatcher").(Counter)
	played := registry.Get("MinionsPlayedWatcher").(Counter)
	died := registry.Get("MinionsDiedWatcher").(Counter)

	var deck []model.Playable
	for i := 0; i < 4; i++ {
		p, err := model.FromCard(p1, raptorCard, nil, p1.Deck(), 0)
		require.NoError(t, err)
		deck = append(deck, p)
	}
	assert.False(t, drawn.ConditionMet(), "filling a deck is not a draw")

	move(t, deck[0], p1.Hand())
	move(t, deck[1], p1.Hand())
	move(t, deck[2], p1.Graveyard())
	move(t, deck[0], p1.Board())
	assert.Equal(t, 2, drawn.Count(p1.ID()))
	assert.Equal(t, 0, drawn.Count(p2.ID()))
	assert.Equal(t, 1, burned.Count(p1.ID()))
	assert.Equal(t, 1, played.Count(p1.ID()))

	g.NextTurn()
	assert.False(t, drawn.ConditionMet())
	assert.Equal(t, 0, drawn.Count(p1.ID()))
	assert.Equal(t, 2, drawn.Total(p1.ID()))

	move(t, deck[0], p1.Graveyard())
	assert.Equal(t, 1, died.Count(p1.ID()))
	assert.Equal(t, 1, died.Total(p1.ID()))
}

func TestBuffsWatcher(t *testing.T) {
	g := model.NewGame(config.Default().Game, zaptest.NewLogger(t))
	p1 := g.Controller(0)

	registry := rules.NewWatcherRegistry()
	buffs := NewBuffsWatcher()
	registry.Add(buffs)
	registry.Attach(g.Bus())

	for i := 0; i < 3; i++ {
		_, err := model.FromCard(p1, raptorCard, nil, p1.Board(), 0)
		require.NoError(t, err)
	}
	spell, err := model.FromCard(p1, kingsCard, nil, p1.Hand(), 0)
	require.NoError(t, err)

	buff := enchants.New(enums.ActivationSpell, enchants.Effect{Tag: enums.GameTagAtk, Op: enchants.OpAdd, Value: 1})
	task := tasks.NewBuffTask(buff, enums.EntityTypeMinions, nil)
	task.Game, task.Controller, task.Source = g, p1, spell
	require.Equal(t, tasks.StateComplete, task.Process())

	assert.Equal(t, 3, buffs.Count(p1.ID()))
	assert.True(t, buffs.ConditionMet())

	cp := buffs.Copy().(*BuffsWatcher)
	buffs.Reset()
	assert.Equal(t, 0, buffs.Count(p1.ID()))
	assert.Equal(t, 3, buffs.Total(p1.ID()))
	assert.Equal(t, 3, cp.Count(p1.ID()))
}

func TestZoneWatcherIgnoresOtherEvents(t *testing.T) {
	w := NewMinionsPlayedWatcher()
	w.Watch(rules.NewZoneEvent(rules.EventEntityRemoved, 4, 2, enums.ZoneHand, enums.ZonePlay, 0))
	w.Watch(rules.NewZoneEvent(rules.EventZoneChange, 4, 2, enums.ZoneDeck, enums.ZonePlay, 0))
	assert.False(t, w.ConditionMet())
	w.Watch(rules.NewZoneEvent(rules.EventZoneChange, 4, 2, enums.ZoneHand, enums.ZonePlay, 0))
	assert.Equal(t, 1, w.Count(2))
	assert.Equal(t, rules.WatcherScopeController, w.Scope())
}
