package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/okusnadi/SabberStone/internal/game/enchants"
	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/rules"
)

var (
	// ErrOutOfRange is returned when an insert position lies past the end of a zone.
	ErrOutOfRange = errors.New("zone position out of range")
	// ErrNotFound is returned when removing an entity that is not in the zone.
	ErrNotFound = errors.New("entity not in zone")
	// ErrZoneMismatch is returned when swapping entities that do not share this zone.
	ErrZoneMismatch = errors.New("zone mismatch")
)

// Zone is an ordered container of one controller's entities of one kind.
// Positions are dense: after every structural change entity i has ZONE_POSITION i.
// Capacity is advisory; callers check IsFull where it matters.
type Zone struct {
	game       *Game
	controller *Controller
	kind       enums.ZoneType

	entities []Playable
	enchants *enchants.List
	triggers *rules.TriggerList
}

func newZone(g *Game, c *Controller, kind enums.ZoneType) *Zone {
	z := &Zone{
		game:       g,
		controller: c,
		kind:       kind,
		enchants:   enchants.NewList(),
		triggers:   rules.NewTriggerList(),
	}
	g.logger.Debug("created zone",
		zap.String("game_id", g.id),
		zap.String("zone", kind.String()),
		zap.String("controller", c.name),
	)
	return z
}

func (z *Zone) Kind() enums.ZoneType         { return z.kind }
func (z *Zone) Controller() *Controller      { return z.controller }
func (z *Zone) Game() *Game                  { return z.game }
func (z *Zone) Enchants() *enchants.List     { return z.enchants }
func (z *Zone) Triggers() *rules.TriggerList { return z.triggers }
func (z *Zone) Count() int                   { return len(z.entities) }
func (z *Zone) IsEmpty() bool                { return len(z.entities) == 0 }
func (z *Zone) IsFull() bool                 { return len(z.entities) >= z.MaxSize() }

// MaxSize is the board limit for PLAY, the controller's hand size for HAND
// and the unbounded size for everything else.
func (z *Zone) MaxSize() int {
	switch z.kind {
	case enums.ZonePlay:
		return z.game.cfg.MaxMinionsOnBoard
	case enums.ZoneHand:
		return z.controller.maxHandSize
	default:
		return z.game.cfg.UnboundedZoneSize
	}
}

// At returns the entity at pos, or nil when pos is out of range.
func (z *Zone) At(pos int) Playable {
	if pos < 0 || pos >= len(z.entities) {
		return nil
	}
	return z.entities[pos]
}

// All returns a snapshot of the entities in order.
func (z *Zone) All() []Playable {
	out := make([]Playable, len(z.entities))
	copy(out, z.entities)
	return out
}

// Random picks a member with the game's random source, or nil when empty.
func (z *Zone) Random() Playable {
	if len(z.entities) == 0 {
		return nil
	}
	return z.entities[z.game.rng.Intn(len(z.entities))]
}

// Contains reports whether p is a member, by identity.
func (z *Zone) Contains(p Playable) bool {
	return z.indexOf(p) >= 0
}

func (z *Zone) indexOf(p Playable) int {
	for i, e := range z.entities {
		if e == p {
			return i
		}
	}
	return -1
}

// Add appends p to the zone. See Insert.
func (z *Zone) Add(p Playable) (Playable, error) {
	return z.Insert(p, -1)
}

// Insert places p at pos, or appends when pos is negative. Entering a
// graveyard resets the entity first. After the move every zone-bound
// enchantment category is probed, in SETASIDE, PLAY, HAND, DECK order, and the
// entity's order of play is stamped with this zone's kind.
func (z *Zone) Insert(p Playable, pos int) (Playable, error) {
	if pos > len(z.entities) {
		return nil, fmt.Errorf("%w: position %d in %s zone of %d", ErrOutOfRange, pos, z.kind, len(z.entities))
	}

	from := enums.ZoneType(p.Tag(enums.GameTagZone))

	if z.kind == enums.ZoneGraveyard {
		p.Reset()
	}

	if pos < 0 {
		pos = len(z.entities)
	}
	z.MoveTo(p, pos)

	z.game.logger.Debug("entity added to zone",
		zap.Int("entity_id", p.ID()),
		zap.String("card_id", p.Card().ID),
		zap.String("card_type", string(p.Card().Type)),
		zap.String("zone", z.kind.String()),
		zap.Int("position", p.ZonePosition()),
		zap.String("controller", z.controller.name),
	)

	for _, probe := range enums.ZoneProbes {
		p.ApplyEnchantments(probe.Activation, probe.Zone)
	}

	p.SetOrderOfPlay(z.kind.String())

	z.game.bus.Publish(rules.NewZoneEvent(rules.EventZoneChange, p.ID(), z.controller.id, from, z.kind, p.ZonePosition()))
	return p, nil
}

// Remove takes p out of the zone and clears its zone reference. The ZONE tag
// keeps naming this zone until the entity is placed elsewhere.
func (z *Zone) Remove(p Playable) (Playable, error) {
	idx := z.indexOf(p)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s in %s zone", ErrNotFound, p, z.kind)
	}

	z.entities = append(z.entities[:idx], z.entities[idx+1:]...)
	z.reposition(idx)
	p.SetZone(nil)

	z.game.bus.Publish(rules.NewZoneEvent(rules.EventEntityRemoved, p.ID(), z.controller.id, z.kind, enums.ZoneInvalid, idx))
	return p, nil
}

// MoveTo inserts p at pos and updates its zone reference and ZONE tag. It
// performs no bounds check, probes no enchantments and publishes nothing.
func (z *Zone) MoveTo(p Playable, pos int) {
	z.entities = append(z.entities, nil)
	copy(z.entities[pos+1:], z.entities[pos:])
	z.entities[pos] = p
	p.SetZone(z)
	p.SetTag(enums.GameTagZone, int(z.kind))
	z.reposition(pos)
}

// Replace puts replacement into old's slot and removes old, returning it.
// There is no rollback: if the swap fails, replacement stays appended.
func (z *Zone) Replace(old, replacement Playable) (Playable, error) {
	z.MoveTo(replacement, len(z.entities))
	if err := z.Swap(old, replacement); err != nil {
		return nil, err
	}
	return z.Remove(old)
}

// Swap exchanges the slots of a and b, which must both sit in this zone.
func (z *Zone) Swap(a, b Playable) error {
	if a.Zone() != b.Zone() || a.Zone() != z {
		return fmt.Errorf("%w: cannot swap %s and %s in %s zone", ErrZoneMismatch, a, b, z.kind)
	}

	aPos := a.ZonePosition()
	bPos := b.ZonePosition()
	b.SetZonePosition(aPos)
	a.SetZonePosition(bPos)
	z.entities[bPos] = a
	z.entities[aPos] = b
	return nil
}

// Stamp copies the contents of src into this zone: every entity is recreated
// from its card with the same id, takes over the source's state and is placed
// at its recorded position (clamped to the current length). The zone's
// enchantments and triggers are copied with their provenance.
func (z *Zone) Stamp(src *Zone) error {
	for _, p := range src.entities {
		cp, err := FromCard(z.controller, p.Card(), nil, nil, p.ID())
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", p, err)
		}
		cp.Stamp(p)

		pos := cp.ZonePosition()
		if pos > len(z.entities) {
			pos = len(z.entities)
		}
		if pos < 0 {
			pos = 0
		}
		z.MoveTo(cp, pos)
	}
	src.enchants.CopyInto(z.enchants, z.game)
	src.triggers.CopyInto(z.triggers, z.game)

	evt := rules.NewEvent(rules.EventZoneStamped, 0, 0, z.controller.id)
	evt.To = z.kind
	evt.Position = len(z.entities)
	z.game.bus.Publish(evt)
	return nil
}

// Hash fingerprints the zone. Outside PLAY, order carries no meaning: entities
// are sorted by id and ZONE_POSITION is ignored.
func (z *Zone) Hash(ignore ...enums.GameTag) string {
	list := z.All()
	if z.kind != enums.ZonePlay {
		sort.Slice(list, func(i, j int) bool { return list[i].ID() < list[j].ID() })
		ignore = append(append([]enums.GameTag(nil), ignore...), enums.GameTagZonePosition)
	}

	var b strings.Builder
	b.WriteString("[Z:")
	b.WriteString(z.kind.String())
	b.WriteString("][E:")
	for _, p := range list {
		b.WriteString(p.Hash(ignore...))
	}
	b.WriteString("][EN:")
	b.WriteString(z.enchants.Hash())
	b.WriteString("][TR:")
	b.WriteString(z.triggers.Hash())
	b.WriteString("]")
	return b.String()
}

func (z *Zone) reposition(from int) {
	for i := from; i < len(z.entities); i++ {
		z.entities[i].SetZonePosition(i)
	}
}

func (z *Zone) String() string {
	return fmt.Sprintf("[ZONE %s '%s']", z.kind, z.controller.name)
}

// FullPrint renders the zone and its members on one line.
func (z *Zone) FullPrint() string {
	var b strings.Builder
	b.WriteString(z.String())
	b.WriteString("|")
	for _, p := range z.entities {
		fmt.Fprintf(&b, "[P%d]", p.ZonePosition())
		switch e := p.(type) {
		case *Minion:
			fmt.Fprintf(&b, "[%d/%d]", e.AttackDamage(), e.Health())
		case *Weapon:
			fmt.Fprintf(&b, "[%d/%d]", e.AttackDamage(), e.Durability())
		}
		fmt.Fprintf(&b, "[C%d]%s|", p.Cost(), p)
	}
	fmt.Fprintf(&b, "[ENCH %d]", z.enchants.Len())
	fmt.Fprintf(&b, "[TRIG %d]", z.triggers.Len())
	return b.String()
}
