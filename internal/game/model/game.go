// Package model holds the simulation state: games, controllers, entities and the zones that own them.
package model

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/okusnadi/SabberStone/internal/config"
	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/rules"
)

// GameEntityID is the entity id reserved for the game itself.
const GameEntityID = 1

// Object is anything addressable by entity id.
type Object interface {
	ID() int
}

// Game owns the controllers, the entity registry and the event bus of one simulation.
// Zones and entities are not safe for concurrent use; hosts that drive a game from
// several goroutines serialize through Do.
type Game struct {
	mu sync.Mutex

	id     string
	cfg    config.GameConfig
	logger *zap.Logger
	rng    *rand.Rand
	bus    *rules.EventBus

	controllers []*Controller
	entities    map[int]Playable

	nextID    int
	nextOrder int
	turn      int
}

// NewGame creates a game with two controllers. A nil logger discards output;
// a zero seed seeds the random source from the clock.
func NewGame(cfg config.GameConfig, logger *zap.Logger, names ...string) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = normalize(cfg)
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		id:       uuid.NewString(),
		cfg:      cfg,
		logger:   logger,
		rng:      rand.New(rand.NewSource(seed)),
		bus:      rules.NewEventBus(),
		entities: make(map[int]Playable),
		nextID:   GameEntityID + 1,
	}

	for i := 0; i < 2; i++ {
		name := fmt.Sprintf("Player%d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		g.controllers = append(g.controllers, newController(g, g.NextID(), name))
	}

	g.bus.Subscribe(g.dispatch)

	logger.Info("game created",
		zap.String("game_id", g.id),
		zap.Strings("players", []string{g.controllers[0].name, g.controllers[1].name}),
		zap.Int64("seed", seed),
	)
	return g
}

func normalize(cfg config.GameConfig) config.GameConfig {
	def := config.Default().Game
	if cfg.MaxMinionsOnBoard <= 0 {
		cfg.MaxMinionsOnBoard = def.MaxMinionsOnBoard
	}
	if cfg.MaxHandSize <= 0 {
		cfg.MaxHandSize = def.MaxHandSize
	}
	if cfg.UnboundedZoneSize <= 0 {
		cfg.UnboundedZoneSize = def.UnboundedZoneSize
	}
	return cfg
}

// ID returns the game's unique identifier.
func (g *Game) ID() string { return g.id }

// Turn returns the current turn number.
func (g *Game) Turn() int { return g.turn }

// Config returns the limits the game was created with.
func (g *Game) Config() config.GameConfig { return g.cfg }

// Logger returns the game's logger.
func (g *Game) Logger() *zap.Logger { return g.logger }

// Bus returns the game's event bus.
func (g *Game) Bus() *rules.EventBus { return g.bus }

// Rand returns the game's seeded random source.
func (g *Game) Rand() *rand.Rand { return g.rng }

// NextTurn advances the turn counter and announces it.
func (g *Game) NextTurn() int {
	g.turn++
	g.bus.Publish(rules.Event{Type: rules.EventTurnStart, Position: g.turn})
	return g.turn
}

// NextID allocates a fresh entity id. Ids are never reused.
func (g *Game) NextID() int {
	id := g.nextID
	g.nextID++
	return id
}

// NextOrderOfPlay allocates the next order-of-play sequence number.
func (g *Game) NextOrderOfPlay() int {
	g.nextOrder++
	return g.nextOrder
}

func (g *Game) register(p Playable) {
	g.entities[p.ID()] = p
	if p.ID() >= g.nextID {
		g.nextID = p.ID() + 1
	}
}

// Entity looks up a playable by id.
func (g *Game) Entity(id int) (Playable, bool) {
	p, ok := g.entities[id]
	return p, ok
}

// Controller returns the controller at index 0 or 1.
func (g *Game) Controller(i int) *Controller {
	if i < 0 || i >= len(g.controllers) {
		return nil
	}
	return g.controllers[i]
}

// Controllers returns both controllers in seat order.
func (g *Game) Controllers() []*Controller {
	out := make([]*Controller, len(g.controllers))
	copy(out, g.controllers)
	return out
}

// ControllerByID finds a controller by its entity id.
func (g *Game) ControllerByID(id int) *Controller {
	for _, c := range g.controllers {
		if c.id == id {
			return c
		}
	}
	return nil
}

// Opponent returns the other controller.
func (g *Game) Opponent(c *Controller) *Controller {
	for _, other := range g.controllers {
		if other != c {
			return other
		}
	}
	return nil
}

// Do runs fn while holding the game lock.
func (g *Game) Do(fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn()
}

// dispatch offers every event to the zone trigger lists and to the trigger
// lists of entities on the board, controller by controller.
func (g *Game) dispatch(evt rules.Event) {
	if evt.Type == rules.EventTriggerFired {
		return
	}

	var fired []*rules.Trigger
	for _, c := range g.controllers {
		for _, z := range c.Zones() {
			fired = append(fired, z.triggers.Handle(evt)...)
		}
		for _, p := range c.Board().All() {
			fired = append(fired, p.Triggers().Handle(evt)...)
		}
	}

	for _, t := range fired {
		g.logger.Debug("trigger fired",
			zap.String("game_id", g.id),
			zap.String("event_type", string(evt.Type)),
			zap.Int("source_id", t.SourceID),
			zap.Int("owner", t.Owner),
		)
		out := rules.NewEvent(rules.EventTriggerFired, evt.EntityID, t.SourceID, t.Owner)
		out.Data = string(evt.Type)
		g.bus.Publish(out)
	}
}

// Hash fingerprints the whole game state.
func (g *Game) Hash(ignore ...enums.GameTag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[G:T%d]", g.turn)
	for _, c := range g.controllers {
		b.WriteString(c.Hash(ignore...))
	}
	return b.String()
}

// Digest is the hex blake2b-256 of Hash, used as a transposition key.
func (g *Game) Digest(ignore ...enums.GameTag) string {
	sum := blake2b.Sum256([]byte(g.Hash(ignore...)))
	return hex.EncodeToString(sum[:])
}

// Fork returns an independent copy of the game. Entity ids, turn and
// order-of-play counters carry over; enchantments and triggers are copied with
// their provenance and rebound to the fork.
func (g *Game) Fork() (*Game, error) {
	cfg := g.cfg
	cfg.Seed = g.rng.Int63()
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}

	f := NewGame(cfg, g.logger, g.controllers[0].name, g.controllers[1].name)
	f.turn = g.turn
	f.nextOrder = g.nextOrder

	for i, c := range g.controllers {
		fc := f.controllers[i]
		fc.maxHandSize = c.maxHandSize

		if c.hero != nil {
			cp, err := stampCopy(fc, c.hero)
			if err != nil {
				return nil, err
			}
			fc.hero = cp.(*Hero)
		}
		if c.weapon != nil {
			cp, err := stampCopy(fc, c.weapon)
			if err != nil {
				return nil, err
			}
			fc.weapon = cp.(*Weapon)
		}
		for _, kind := range controllerZones {
			if err := fc.Zone(kind).Stamp(c.Zone(kind)); err != nil {
				return nil, fmt.Errorf("failed to fork %s of %s: %w", kind, c.name, err)
			}
		}
	}

	if g.nextID > f.nextID {
		f.nextID = g.nextID
	}

	g.logger.Debug("game forked",
		zap.String("game_id", g.id),
		zap.String("fork_id", f.id),
		zap.Int("turn", g.turn),
	)
	return f, nil
}

func stampCopy(c *Controller, src Playable) (Playable, error) {
	cp, err := FromCard(c, src.Card(), nil, nil, src.ID())
	if err != nil {
		return nil, err
	}
	cp.Stamp(src)
	return cp, nil
}
