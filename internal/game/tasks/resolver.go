package tasks

import (
	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/model"
)

// Resolver turns a target category into the ordered set of entities it names.
type Resolver interface {
	Resolve(kind enums.EntityType, c *model.Controller, source model.Object, target model.Playable, pool []model.Playable) []model.Playable
}

// IncludeResolver resolves categories against the controller's zones.
// Friendly entities come before enemy ones and heroes before minions.
type IncludeResolver struct{}

func (IncludeResolver) Resolve(kind enums.EntityType, c *model.Controller, source model.Object, target model.Playable, pool []model.Playable) []model.Playable {
	switch kind {
	case enums.EntityTypeSource:
		if p, ok := source.(model.Playable); ok && model.Live(p) {
			return []model.Playable{p}
		}
		return nil
	case enums.EntityTypeTarget:
		if model.Live(target) {
			return []model.Playable{target}
		}
		return nil
	case enums.EntityTypeStack:
		out := make([]model.Playable, len(pool))
		copy(out, pool)
		return out
	}

	if c == nil {
		return nil
	}
	op := c.Opponent()

	switch kind {
	case enums.EntityTypeHero:
		return heroOf(c)
	case enums.EntityTypeOpHero:
		return heroOf(op)
	case enums.EntityTypeMinions:
		return c.Board().All()
	case enums.EntityTypeOpMinions:
		return op.Board().All()
	case enums.EntityTypeAllMinions:
		return append(c.Board().All(), op.Board().All()...)
	case enums.EntityTypeMinionsNoSource:
		return without(c.Board().All(), source)
	case enums.EntityTypeAllMinionsNoSource:
		return without(append(c.Board().All(), op.Board().All()...), source)
	case enums.EntityTypeFriends:
		return append(heroOf(c), c.Board().All()...)
	case enums.EntityTypeEnemies:
		return append(heroOf(op), op.Board().All()...)
	case enums.EntityTypeAll:
		out := append(heroOf(c), c.Board().All()...)
		out = append(out, heroOf(op)...)
		return append(out, op.Board().All()...)
	case enums.EntityTypeHand:
		return c.Hand().All()
	case enums.EntityTypeOpHand:
		return op.Hand().All()
	case enums.EntityTypeDeck:
		return c.Deck().All()
	case enums.EntityTypeOpDeck:
		return op.Deck().All()
	case enums.EntityTypeGraveyard:
		return c.Graveyard().All()
	case enums.EntityTypeOpGraveyard:
		return op.Graveyard().All()
	case enums.EntityTypeWeapon:
		return weaponOf(c)
	case enums.EntityTypeOpWeapon:
		return weaponOf(op)
	default:
		return nil
	}
}

func heroOf(c *model.Controller) []model.Playable {
	if h := c.Hero(); h != nil {
		return []model.Playable{h}
	}
	return nil
}

func weaponOf(c *model.Controller) []model.Playable {
	if w := c.Weapon(); w != nil {
		return []model.Playable{w}
	}
	return nil
}

func without(ps []model.Playable, source model.Object) []model.Playable {
	if source == nil {
		return ps
	}
	out := ps[:0]
	for _, p := range ps {
		if p.ID() != source.ID() {
			out = append(out, p)
		}
	}
	return out
}
