package model

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/okusnadi/SabberStone/internal/config"
	"github.com/okusnadi/SabberStone/internal/game/cards"
	"github.com/okusnadi/SabberStone/internal/game/enums"
)

var (
	raptorCard  = cards.MustNew(cards.Definition{ID: "CS2_172", Name: "Bloodfen Raptor", Type: "MINION", Cost: 2, Attack: 3, Health: 2})
	grizzlyCard = cards.MustNew(cards.Definition{ID: "CS2_125", Name: "Ironfur Grizzly", Type: "MINION", Cost: 3, Attack: 3, Health: 3, Tags: map[string]int{"TAUNT": 1}})
	crocCard    = cards.MustNew(cards.Definition{ID: "CS2_120", Name: "River Crocolisk", Type: "MINION", Cost: 2, Attack: 2, Health: 3})
	axeCard     = cards.MustNew(cards.Definition{ID: "CS2_106", Name: "Fiery War Axe", Type: "WEAPON", Cost: 3, Attack: 3, Durability: 2})
	kingsCard   = cards.MustNew(cards.Definition{ID: "CS2_092", Name: "Blessing of Kings", Type: "SPELL", Cost: 4})
	heroCard    = cards.MustNew(cards.Definition{ID: "HERO_01", Name: "Garrosh Hellscream", Type: "HERO", Health: 30})
	buffCard    = cards.MustNew(cards.Definition{ID: "CS2_092e", Name: "Blessing of Kings", Type: "ENCHANTMENT"})
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	cfg := config.Default().Game
	cfg.Seed = 42
	return NewGame(cfg, zaptest.NewLogger(t), "Alice", "Bob")
}

func newEntity(t *testing.T, c *Controller, card *cards.Card) Playable {
	t.Helper()
	p, err := FromCard(c, card, nil, nil, 0)
	require.NoError(t, err)
	return p
}

func mustAdd(t *testing.T, z *Zone, ps ...Playable) {
	t.Helper()
	for _, p := range ps {
		_, err := z.Add(p)
		require.NoError(t, err)
	}
}

func ids(ps []Playable) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.ID()
	}
	return out
}

func requireDense(t *testing.T, z *Zone) {
	t.Helper()
	for i, p := range z.All() {
		require.Equal(t, i, p.ZonePosition(), "position of %s", p)
		require.Same(t, z, p.Zone())
		require.Equal(t, int(z.Kind()), p.Tag(enums.GameTagZone))
	}
}

// probeRecorder is a minion that records every zone probe it receives.
type probeRecorder struct {
	*Minion
	probes []enums.ZoneProbe
}

func (r *probeRecorder) ApplyEnchantments(activation enums.EnchantmentActivation, zone enums.ZoneType) {
	r.probes = append(r.probes, enums.ZoneProbe{Activation: activation, Zone: zone})
	r.Minion.ApplyEnchantments(activation, zone)
}
