// Package conditions holds predicates over single entities, used to narrow
// the targets of an effect.
package conditions

import (
	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/model"
)

// SelfCondition is a named predicate over one entity.
type SelfCondition struct {
	Name string
	fn   func(model.Playable) bool
}

// New wraps fn as a condition.
func New(name string, fn func(model.Playable) bool) *SelfCondition {
	return &SelfCondition{Name: name, fn: fn}
}

// Eval reports whether p satisfies the condition. A nil condition accepts everything.
func (c *SelfCondition) Eval(p model.Playable) bool {
	if c == nil || c.fn == nil {
		return true
	}
	return c.fn(p)
}

func (c *SelfCondition) String() string {
	if c == nil {
		return "ALWAYS"
	}
	return c.Name
}

// Filter returns the members of ps that satisfy c, in their original order.
func (c *SelfCondition) Filter(ps []model.Playable) []model.Playable {
	out := make([]model.Playable, 0, len(ps))
	for _, p := range ps {
		if c.Eval(p) {
			out = append(out, p)
		}
	}
	return out
}

// IsMinion matches minions.
var IsMinion = New("IS_MINION", func(p model.Playable) bool {
	_, ok := p.(*model.Minion)
	return ok
})

// IsWeapon matches weapons.
var IsWeapon = New("IS_WEAPON", func(p model.Playable) bool {
	_, ok := p.(*model.Weapon)
	return ok
})

// IsHero matches heroes.
var IsHero = New("IS_HERO", func(p model.Playable) bool {
	_, ok := p.(*model.Hero)
	return ok
})

// IsInZone matches entities currently held by a zone of the given kind.
func IsInZone(kind enums.ZoneType) *SelfCondition {
	return New("IS_IN_ZONE_"+kind.String(), func(p model.Playable) bool {
		return p.ZoneType() == kind
	})
}

// HasTag matches entities whose tag is set to a non-zero value.
func HasTag(tag enums.GameTag) *SelfCondition {
	return New("HAS_"+tag.String(), func(p model.Playable) bool {
		return p.Tag(tag) != 0
	})
}

// TagAtLeast matches entities whose tag is at least min.
func TagAtLeast(tag enums.GameTag, min int) *SelfCondition {
	return New(tag.String()+">=", func(p model.Playable) bool {
		return p.Tag(tag) >= min
	})
}

// Not negates c.
func Not(c *SelfCondition) *SelfCondition {
	return New("NOT_"+c.String(), func(p model.Playable) bool {
		return !c.Eval(p)
	})
}

// And matches when every condition matches.
func And(cs ...*SelfCondition) *SelfCondition {
	return New("AND", func(p model.Playable) bool {
		for _, c := range cs {
			if !c.Eval(p) {
				return false
			}
		}
		return true
	})
}

// Or matches when any condition matches.
func Or(cs ...*SelfCondition) *SelfCondition {
	return New("OR", func(p model.Playable) bool {
		for _, c := range cs {
			if c.Eval(p) {
				return true
			}
		}
		return false
	})
}
