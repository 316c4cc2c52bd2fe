package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/okusnadi/SabberStone/internal/config"
	"github.com/okusnadi/SabberStone/internal/game/cards"
	"github.com/okusnadi/SabberStone/internal/game/conditions"
	"github.com/okusnadi/SabberStone/internal/game/enchants"
	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/model"
	"github.com/okusnadi/SabberStone/internal/game/rules"
)

var (
	raptorCard  = cards.MustNew(cards.Definition{ID: "CS2_172", Name: "Bloodfen Raptor", Type: "MINION", Cost: 2, Attack: 3, Health: 2})
	grizzlyCard = cards.MustNew(cards.Definition{ID: "CS2_125", Name: "Ironfur Grizzly", Type: "MINION", Cost: 3, Attack: 3, Health: 3, Tags: map[string]int{"TAUNT": 1}})
	crocCard    = cards.MustNew(cards.Definition{ID: "CS2_120", Name: "River Crocolisk", Type: "MINION", Cost: 2, Attack: 2, Health: 3})
	axeCard     = cards.MustNew(cards.Definition{ID: "CS2_106", Name: "Fiery War Axe", Type: "WEAPON", Cost: 3, Attack: 3, Durability: 2})
	kingsCard   = cards.MustNew(cards.Definition{ID: "CS2_092", Name: "Blessing of Kings", Type: "SPELL", Cost: 4})
	heroCard    = cards.MustNew(cards.Definition{ID: "HERO_01", Name: "Garrosh Hellscream", Type: "HERO", Health: 30})
)

var kingsBuff = enchants.New(enums.ActivationSpell,
	enchants.Effect{Tag: enums.GameTagAtk, Op: enchants.OpAdd, Value: 4},
	enchants.Effect{Tag: enums.GameTagHealth, Op: enchants.OpAdd, Value: 4},
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(kind enums.EntityType, c *model.Controller, source model.Object, target model.Playable, pool []model.Playable) []model.Playable {
	args := m.Called(kind, c, source, target, pool)
	if ps := args.Get(0); ps != nil {
		return ps.([]model.Playable)
	}
	return nil
}

func newGame(t *testing.T) *model.Game {
	t.Helper()
	cfg := config.Default().Game
	cfg.Seed = 11
	return model.NewGame(cfg, zaptest.NewLogger(t), "Alice", "Bob")
}

func place(t *testing.T, c *model.Controller, card *cards.Card, z *model.Zone) model.Playable {
	t.Helper()
	p, err := model.FromCard(c, card, nil, z, 0)
	require.NoError(t, err)
	return p
}

func enchantCounts(ps []model.Playable) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.Enchants().Len()
	}
	return out
}

func TestBuffTaskAppliesToResolvedTargets(t *testing.T) {
	g := newGame(t)
	p1 := g.Controller(0)
	spell := place(t, p1, kingsCard, p1.Hand())
	raptor := place(t, p1, raptorCard, p1.Board())
	croc := place(t, p1, crocCard, p1.Board())

	res := &mockResolver{}
	res.On("Resolve", enums.EntityTypeMinions, p1, spell, raptor, []model.Playable(nil)).
		Return([]model.Playable{raptor, croc}).Once()

	var processed []rules.Event
	g.Bus().SubscribeTyped(rules.EventTaskProcessed, func(e rules.Event) { processed = append(processed, e) })

	task := NewBuffTask(kingsBuff, enums.EntityTypeMinions, nil)
	task.Game, task.Controller, task.Source, task.Target, task.Resolver = g, p1, spell, raptor, res

	assert.Equal(t, StateReady, task.State())
	assert.Equal(t, StateComplete, task.Process())
	assert.Equal(t, StateComplete, task.State())
	res.AssertExpectations(t)

	assert.Equal(t, 7, raptor.(*model.Minion).AttackDamage())
	assert.Equal(t, 6, raptor.(*model.Minion).Health())
	assert.Equal(t, 7, croc.(*model.Minion).Health())

	e := raptor.Enchants().All()[0]
	assert.Equal(t, "CS2_092", e.SourceCardID)
	assert.Equal(t, p1.ID(), e.Owner)
	assert.Same(t, g, e.Session)
	assert.Empty(t, kingsBuff.SourceCardID, "template stays detached")

	require.Len(t, processed, 1)
	assert.Equal(t, spell.ID(), processed[0].SourceID)
	assert.Equal(t, 2, processed[0].Position)
}

func TestBuffTaskConditionFilters(t *testing.T) {
	g := newGame(t)
	p1 := g.Controller(0)
	spell := place(t, p1, kingsCard, p1.Hand())
	raptor := place(t, p1, raptorCard, p1.Board())
	grizzly := place(t, p1, grizzlyCard, p1.Board())
	croc := place(t, p1, crocCard, p1.Board())

	order := []model.Playable{croc, grizzly, raptor}
	res := &mockResolver{}
	res.On("Resolve", enums.EntityTypeStack, mock.Anything, mock.Anything, mock.Anything, order).Return(order)

	task := NewBuffTask(kingsBuff, enums.EntityTypeStack, conditions.Not(conditions.HasTag(enums.GameTagTaunt)))
	task.Controller, task.Source, task.Playables, task.Resolver = p1, spell, order, res

	require.Equal(t, StateComplete, task.Process())
	assert.Equal(t, []int{1, 0, 1}, enchantCounts(order))
}

func TestBuffTaskStops(t *testing.T) {
	g := newGame(t)
	p1 := g.Controller(0)
	spell := place(t, p1, kingsCard, p1.Hand())
	board := []model.Playable{
		place(t, p1, raptorCard, p1.Board()),
		place(t, p1, crocCard, p1.Board()),
	}

	t.Run("no buff", func(t *testing.T) {
		res := &mockResolver{}
		task := NewBuffTask(nil, enums.EntityTypeMinions, nil)
		task.Controller, task.Source, task.Resolver = p1, spell, res

		assert.Equal(t, StateStop, task.Process())
		res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, []int{0, 0}, enchantCounts(board))
	})

	t.Run("no source", func(t *testing.T) {
		task := NewBuffTask(kingsBuff, enums.EntityTypeMinions, nil)
		task.Controller = p1

		assert.Equal(t, StateStop, task.Process())
		assert.Equal(t, []int{0, 0}, enchantCounts(board))
	})

	t.Run("source is not playable", func(t *testing.T) {
		task := NewBuffTask(kingsBuff, enums.EntityTypeMinions, nil)
		task.Controller, task.Source = p1, p1

		assert.Equal(t, StateStop, task.Process())
		assert.Equal(t, []int{0, 0}, enchantCounts(board))
	})

	t.Run("typed nil source", func(t *testing.T) {
		res := &mockResolver{}
		task := NewBuffTask(kingsBuff, enums.EntityTypeMinions, nil)
		task.Controller, task.Source, task.Resolver = p1, (*model.Spell)(nil), res

		assert.NotPanics(t, func() {
			assert.Equal(t, StateStop, task.Process())
		})
		res.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, []int{0, 0}, enchantCounts(board))
	})
}

func TestIncludeResolverSkipsTypedNil(t *testing.T) {
	r := IncludeResolver{}
	assert.Empty(t, r.Resolve(enums.EntityTypeSource, nil, (*model.Minion)(nil), nil, nil))
	assert.Empty(t, r.Resolve(enums.EntityTypeTarget, nil, nil, (*model.Minion)(nil), nil))
}

func TestBuffTaskZoneBoundBuffWaitsForZone(t *testing.T) {
	g := newGame(t)
	p1 := g.Controller(0)
	spell := place(t, p1, kingsCard, p1.Hand())
	inHand := place(t, p1, raptorCard, p1.Hand())

	aura := enchants.New(enums.ActivationBoardZone, enchants.Effect{Tag: enums.GameTagAtk, Op: enchants.OpAdd, Value: 1})
	task := NewBuffTask(aura, enums.EntityTypeHand, conditions.IsMinion)
	task.Controller, task.Source = p1, spell

	require.Equal(t, StateComplete, task.Process())
	assert.Equal(t, 1, inHand.Enchants().Len())
	assert.Equal(t, 3, inHand.(*model.Minion).AttackDamage())

	_, err := p1.Hand().Remove(inHand)
	require.NoError(t, err)
	_, err = p1.Board().Add(inHand)
	require.NoError(t, err)
	assert.Equal(t, 4, inHand.(*model.Minion).AttackDamage())
}

func TestBuffTaskClone(t *testing.T) {
	g := newGame(t)
	p1 := g.Controller(0)
	spell := place(t, p1, kingsCard, p1.Hand())
	raptor := place(t, p1, raptorCard, p1.Board())

	cond := conditions.IsMinion
	task := NewBuffTask(kingsBuff, enums.EntityTypeStack, cond)
	task.Controller, task.Source, task.Playables = p1, spell, []model.Playable{raptor}

	clone, ok := task.Clone().(*BuffTask)
	require.True(t, ok)
	assert.Same(t, task.Buff, clone.Buff)
	assert.Same(t, cond, clone.Condition)
	assert.Equal(t, task.Type, clone.Type)
	assert.Same(t, p1, clone.Controller)
	assert.Equal(t, task.Playables, clone.Playables)

	clone.Playables[0] = spell
	assert.Same(t, raptor, task.Playables[0], "candidate pools are independent")

	require.Equal(t, StateComplete, task.Process())
	assert.Equal(t, StateReady, clone.State())
}

func TestIncludeResolver(t *testing.T) {
	g := newGame(t)
	p1, p2 := g.Controller(0), g.Controller(1)

	hero, err := model.FromCard(p1, heroCard, nil, nil, 0)
	require.NoError(t, err)
	p1.SetHero(hero.(*model.Hero))
	opHero, err := model.FromCard(p2, heroCard, nil, nil, 0)
	require.NoError(t, err)
	p2.SetHero(opHero.(*model.Hero))
	weapon, err := model.FromCard(p1, axeCard, nil, nil, 0)
	require.NoError(t, err)
	p1.SetWeapon(weapon.(*model.Weapon))

	a := place(t, p1, raptorCard, p1.Board())
	b := place(t, p1, crocCard, p1.Board())
	x := place(t, p2, grizzlyCard, p2.Board())
	h := place(t, p1, kingsCard, p1.Hand())
	oh := place(t, p2, kingsCard, p2.Hand())
	d := place(t, p1, crocCard, p1.Deck())
	od := place(t, p2, crocCard, p2.Deck())
	gy := place(t, p1, raptorCard, p1.Graveyard())
	ogy := place(t, p2, raptorCard, p2.Graveyard())
	pool := []model.Playable{b, x}

	cases := []struct {
		kind enums.EntityType
		want []model.Playable
	}{
		{enums.EntityTypeSource, []model.Playable{a}},
		{enums.EntityTypeTarget, []model.Playable{x}},
		{enums.EntityTypeHero, []model.Playable{hero}},
		{enums.EntityTypeOpHero, []model.Playable{opHero}},
		{enums.EntityTypeMinions, []model.Playable{a, b}},
		{enums.EntityTypeOpMinions, []model.Playable{x}},
		{enums.EntityTypeAllMinions, []model.Playable{a, b, x}},
		{enums.EntityTypeMinionsNoSource, []model.Playable{b}},
		{enums.EntityTypeAllMinionsNoSource, []model.Playable{b, x}},
		{enums.EntityTypeFriends, []model.Playable{hero, a, b}},
		{enums.EntityTypeEnemies, []model.Playable{opHero, x}},
		{enums.EntityTypeAll, []model.Playable{hero, a, b, opHero, x}},
		{enums.EntityTypeHand, []model.Playable{h}},
		{enums.EntityTypeOpHand, []model.Playable{oh}},
		{enums.EntityTypeDeck, []model.Playable{d}},
		{enums.EntityTypeOpDeck, []model.Playable{od}},
		{enums.EntityTypeGraveyard, []model.Playable{gy}},
		{enums.EntityTypeOpGraveyard, []model.Playable{ogy}},
		{enums.EntityTypeWeapon, []model.Playable{weapon}},
		{enums.EntityTypeOpWeapon, nil},
		{enums.EntityTypeStack, pool},
		{enums.EntityTypeInvalid, nil},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			got := IncludeResolver{}.Resolve(tc.kind, p1, a, x, pool)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Empty(t, IncludeResolver{}.Resolve(enums.EntityTypeMinions, nil, a, nil, nil))
	assert.Empty(t, IncludeResolver{}.Resolve(enums.EntityTypeTarget, p1, a, nil, nil))
}
