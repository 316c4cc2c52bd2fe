// Package sim plays scripted matches on the zone core: both players draw,
// put minions into play and cast buff spells until the turn limit.
package sim

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/okusnadi/SabberStone/internal/config"
	"github.com/okusnadi/SabberStone/internal/game/cards"
	"github.com/okusnadi/SabberStone/internal/game/conditions"
	"github.com/okusnadi/SabberStone/internal/game/enchants"
	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/model"
	"github.com/okusnadi/SabberStone/internal/game/rules"
	"github.com/okusnadi/SabberStone/internal/game/tasks"
	"github.com/okusnadi/SabberStone/internal/game/watchers"
	"github.com/okusnadi/SabberStone/internal/persistence/transposition"
)

// MaxMana caps the mana a player gets per turn.
const MaxMana = 10

// ErrNoCards is returned when the repository holds nothing playable.
var ErrNoCards = errors.New("no playable cards")

// Options configure one simulated match.
type Options struct {
	Game   config.GameConfig
	Logger *zap.Logger
	Cards  cards.Repository
	// Turns is the number of turns each player takes.
	Turns int
	// Copies of every playable card in each deck.
	Copies int
	// StartingHand is the number of cards drawn before the first turn.
	StartingHand int
	// Targets narrows the minions a buff spell may choose.
	Targets *conditions.SelfCondition
	// Lookahead makes buff spells try every target on a fork of the game and
	// keep the one that leaves the strongest board. Off, the target is random.
	Lookahead bool
	// MulliganAbove swaps every starting card costing more than this for the
	// top of the deck. Zero keeps the starting hand.
	MulliganAbove int
	// Store receives a visit for every state reached at the end of a turn.
	Store transposition.Store
	// OnGame is called with the new game before anything happens in it.
	OnGame func(*model.Game)
	// OnTurn is called after every turn, outside the game lock.
	OnTurn func(g *model.Game, active *model.Controller)
}

// Result is the outcome of a match.
type Result struct {
	Game    *model.Game
	Actions []string
	// Transpositions counts end-of-turn states already seen by the store.
	Transpositions int
	// Watchers holds the stock watchers, fed for the whole match.
	Watchers *rules.WatcherRegistry
}

// spells maps a spell card to the buff it casts on a friendly minion.
var spells = map[string]*enchants.Enchant{
	"CS2_092": enchants.New(enums.ActivationSpell,
		enchants.Effect{Tag: enums.GameTagAtk, Op: enchants.OpAdd, Value: 4},
		enchants.Effect{Tag: enums.GameTagHealth, Op: enchants.OpAdd, Value: 4},
	),
	"CS2_087": enchants.New(enums.ActivationSpell,
		enchants.Effect{Tag: enums.GameTagAtk, Op: enchants.OpAdd, Value: 3},
	),
}

// raidLeaderAura gives other friendly minions +1 attack: the ones already in
// play through a buff task, later arrivals through the board's own list.
var raidLeaderAura = enchants.New(enums.ActivationBoardZone,
	enchants.Effect{Tag: enums.GameTagAtk, Op: enchants.OpAdd, Value: 1},
)

const raidLeader = "CS2_122"

var heroes = []string{"HERO_01", "HERO_08"}

type match struct {
	opts    Options
	game    *model.Game
	logger  *zap.Logger
	actions []string
}

// Run plays a match to the end.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Turns <= 0 {
		opts.Turns = 5
	}
	if opts.Copies <= 0 {
		opts.Copies = 2
	}
	if opts.StartingHand < 0 {
		opts.StartingHand = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	g := model.NewGame(opts.Game, opts.Logger, "Player1", "Player2")
	m := &match{opts: opts, game: g, logger: opts.Logger}
	res := &Result{Game: g, Watchers: watchers.Standard()}
	detach := res.Watchers.Attach(g.Bus())
	defer detach()
	if opts.OnGame != nil {
		opts.OnGame(g)
	}

	if err := g.Do(m.setup); err != nil {
		return nil, err
	}

	for turn := 0; turn < 2*opts.Turns; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		active := g.Controller(turn % 2)
		if err := g.Do(func() error { return m.turn(active, manaFor(turn)) }); err != nil {
			return nil, err
		}
		if opts.OnTurn != nil {
			opts.OnTurn(g, active)
		}

		if opts.Store != nil {
			e, err := transposition.Observe(ctx, opts.Store, g)
			if err != nil {
				return nil, fmt.Errorf("failed to record transposition: %w", err)
			}
			if e.Visits > 1 {
				res.Transpositions++
			}
		}
	}

	res.Actions = m.actions
	m.logger.Info("simulation finished",
		zap.String("game_id", g.ID()),
		zap.Int("turns", g.Turn()),
		zap.Int("actions", len(m.actions)),
		zap.String("digest", g.Digest()),
	)
	return res, nil
}

func manaFor(turn int) int {
	mana := turn/2 + 1
	if mana > MaxMana {
		return MaxMana
	}
	return mana
}

func (m *match) record(format string, args ...any) {
	m.actions = append(m.actions, fmt.Sprintf("T%d ", m.game.Turn())+fmt.Sprintf(format, args...))
}

func (m *match) setup() error {
	var deck []*cards.Card
	for _, c := range m.opts.Cards.All() {
		switch c.Type {
		case enums.CardTypeMinion, enums.CardTypeSpell, enums.CardTypeWeapon:
			deck = append(deck, c)
		}
	}
	if len(deck) == 0 {
		return ErrNoCards
	}

	for i, c := range m.game.Controllers() {
		if card, ok := m.opts.Cards.Card(heroes[i%len(heroes)]); ok {
			hero, err := model.FromCard(c, card, nil, nil, 0)
			if err != nil {
				return err
			}
			c.SetHero(hero.(*model.Hero))
		}

		list := make([]*cards.Card, 0, len(deck)*m.opts.Copies)
		for n := 0; n < m.opts.Copies; n++ {
			list = append(list, deck...)
		}
		m.game.Rand().Shuffle(len(list), func(a, b int) { list[a], list[b] = list[b], list[a] })
		for _, card := range list {
			if _, err := model.FromCard(c, card, nil, c.Deck(), 0); err != nil {
				return err
			}
		}

		for n := 0; n < m.opts.StartingHand; n++ {
			if err := m.draw(c); err != nil {
				return err
			}
		}
		if m.opts.MulliganAbove > 0 {
			if err := m.mulligan(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// mulligan puts expensive starting cards back at random deck positions, each
// replaced in its hand slot by the top of the deck.
func (m *match) mulligan(c *model.Controller) error {
	for _, p := range c.Hand().All() {
		if p.Cost() <= m.opts.MulliganAbove {
			continue
		}
		top := c.Deck().At(0)
		if top == nil {
			return nil
		}
		if _, err := c.Deck().Remove(top); err != nil {
			return err
		}
		old, err := c.Hand().Replace(p, top)
		if err != nil {
			return err
		}
		if _, err := c.Deck().Insert(old, m.game.Rand().Intn(c.Deck().Count()+1)); err != nil {
			return err
		}
		m.record("%s mulligans %s for %s", c, old, top)
	}
	return nil
}

func (m *match) turn(c *model.Controller, mana int) error {
	m.game.NextTurn()
	if err := m.draw(c); err != nil {
		return err
	}

	for _, p := range c.Hand().All() {
		if p.Cost() > mana {
			continue
		}
		played, err := m.play(c, p)
		if err != nil {
			return err
		}
		if played {
			mana -= p.Cost()
		}
	}
	return nil
}

// draw moves the top of the deck to the hand, or burns it when the hand is full.
func (m *match) draw(c *model.Controller) error {
	top := c.Deck().At(0)
	if top == nil {
		m.record("%s has no cards left", c)
		return nil
	}
	if _, err := c.Deck().Remove(top); err != nil {
		return err
	}
	if c.Hand().IsFull() {
		m.record("%s burns %s", c, top)
		_, err := c.Graveyard().Add(top)
		return err
	}
	_, err := c.Hand().Add(top)
	return err
}

func (m *match) play(c *model.Controller, p model.Playable) (bool, error) {
	switch e := p.(type) {
	case *model.Minion:
		if c.Board().IsFull() {
			return false, nil
		}
		if _, err := c.Hand().Remove(p); err != nil {
			return false, err
		}
		if _, err := c.Board().Add(p); err != nil {
			return false, err
		}
		m.record("%s plays %s", c, p)
		if p.Card().ID == raidLeader {
			m.raidLeader(c, p)
		}
		return true, nil

	case *model.Spell:
		buff, ok := spells[p.Card().ID]
		if !ok {
			return false, nil
		}
		chosen, err := m.target(c, p, buff)
		if err != nil || chosen == nil {
			return false, err
		}

		task := tasks.NewBuffTask(buff, enums.EntityTypeTarget, m.opts.Targets)
		task.Game, task.Controller, task.Source, task.Target = m.game, c, p, chosen
		if task.Process() != tasks.StateComplete {
			return false, nil
		}
		if _, err := c.Hand().Remove(p); err != nil {
			return false, err
		}
		if _, err := c.Graveyard().Add(p); err != nil {
			return false, err
		}
		m.record("%s casts %s on %s", c, p, chosen)
		return true, nil

	case *model.Weapon:
		if _, err := c.Hand().Remove(p); err != nil {
			return false, err
		}
		if old := c.Weapon(); old != nil {
			if _, err := c.Graveyard().Add(old); err != nil {
				return false, err
			}
		}
		c.SetWeapon(e)
		m.record("%s equips %s", c, p)
		return true, nil
	}
	return false, nil
}

// target picks the friendly minion a buff spell lands on, or nil when none qualifies.
func (m *match) target(c *model.Controller, spell model.Playable, buff *enchants.Enchant) (model.Playable, error) {
	if m.opts.Targets == nil && !m.opts.Lookahead {
		return c.Board().Random(), nil
	}
	candidates := conditions.And(conditions.IsMinion, m.opts.Targets).Filter(c.Board().All())
	if len(candidates) == 0 {
		return nil, nil
	}
	if !m.opts.Lookahead {
		return candidates[m.game.Rand().Intn(len(candidates))], nil
	}

	var best model.Playable
	bestScore := -1
	for _, candidate := range candidates {
		score, err := m.tryBuff(c, spell, candidate, buff)
		if err != nil {
			return nil, err
		}
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, nil
}

// tryBuff casts buff on a fork of the game and scores the resulting board.
func (m *match) tryBuff(c *model.Controller, spell, target model.Playable, buff *enchants.Enchant) (int, error) {
	f, err := m.game.Fork()
	if err != nil {
		return 0, fmt.Errorf("failed to fork for lookahead: %w", err)
	}
	fc := f.ControllerByID(c.ID())
	fs, ok := f.Entity(spell.ID())
	if !ok {
		return 0, fmt.Errorf("spell %s missing from fork", spell)
	}
	ft, ok := f.Entity(target.ID())
	if !ok {
		return 0, fmt.Errorf("target %s missing from fork", target)
	}

	task := tasks.NewBuffTask(buff, enums.EntityTypeTarget, m.opts.Targets)
	task.Game, task.Controller, task.Source, task.Target = f, fc, fs, ft
	task.Process()
	return boardValue(fc.Board()), nil
}

// boardValue sums attack times health over the minions of a board.
func boardValue(z *model.Zone) int {
	total := 0
	for _, p := range z.All() {
		if minion, ok := p.(*model.Minion); ok {
			total += minion.AttackDamage() * minion.Health()
		}
	}
	return total
}

func (m *match) raidLeader(c *model.Controller, source model.Playable) {
	task := tasks.NewBuffTask(raidLeaderAura, enums.EntityTypeMinionsNoSource, nil)
	task.Game, task.Controller, task.Source = m.game, c, source
	task.Process()

	c.Board().Enchants().Add(raidLeaderAura.Copy(raidLeader, m.game, m.game.Turn(), c.ID(), false))
}
