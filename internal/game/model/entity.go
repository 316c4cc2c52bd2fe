package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/okusnadi/SabberStone/internal/game/cards"
	"github.com/okusnadi/SabberStone/internal/game/enchants"
	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/rules"
)

// ErrUnsupportedCard is returned when no entity kind exists for a card type.
var ErrUnsupportedCard = errors.New("unsupported card type")

// OrderOfPlay records when and into which zone an entity was last added.
type OrderOfPlay struct {
	Seq   int
	Label string
}

// Playable is an entity that can occupy a zone. The set of implementations
// is closed: Minion, Weapon, Spell, Hero and HeroPower.
type Playable interface {
	ID() int
	Card() *cards.Card
	Game() *Game
	Controller() *Controller
	ControllerID() int

	Zone() *Zone
	SetZone(z *Zone)
	ZoneType() enums.ZoneType
	ZonePosition() int
	SetZonePosition(pos int)

	Tag(t enums.GameTag) int
	SetTag(t enums.GameTag, value int)
	Cost() int

	Enchants() *enchants.List
	Triggers() *rules.TriggerList
	Session() enchants.Session

	OrderOfPlay() OrderOfPlay
	SetOrderOfPlay(label string)

	Reset()
	ApplyEnchantments(activation enums.EnchantmentActivation, zone enums.ZoneType)
	Stamp(src Playable)
	Hash(ignore ...enums.GameTag) string
	String() string

	entity() *Entity
}

// Entity is the state shared by every playable kind.
type Entity struct {
	id         int
	game       *Game
	controller *Controller
	card       *cards.Card
	zone       *Zone

	tags     map[enums.GameTag]int
	enchants *enchants.List
	triggers *rules.TriggerList
	order    OrderOfPlay
}

func (e *Entity) entity() *Entity { return e }

func (e *Entity) ID() int                 { return e.id }
func (e *Entity) Card() *cards.Card       { return e.card }
func (e *Entity) Game() *Game             { return e.game }
func (e *Entity) Controller() *Controller { return e.controller }
func (e *Entity) Zone() *Zone             { return e.zone }
func (e *Entity) SetZone(z *Zone)         { e.zone = z }

// ControllerID returns the owning controller's entity id.
func (e *Entity) ControllerID() int {
	if e.controller == nil {
		return e.Tag(enums.GameTagController)
	}
	return e.controller.id
}

// ZoneType is the kind of the zone the entity currently sits in, or
// ZoneInvalid when it is not contained. The ZONE tag may lag behind.
func (e *Entity) ZoneType() enums.ZoneType {
	if e.zone == nil {
		return enums.ZoneInvalid
	}
	return e.zone.kind
}

func (e *Entity) ZonePosition() int        { return e.Tag(enums.GameTagZonePosition) }
func (e *Entity) SetZonePosition(pos int)  { e.tags[enums.GameTagZonePosition] = pos }
func (e *Entity) Cost() int                { return e.Tag(enums.GameTagCost) }
func (e *Entity) Enchants() *enchants.List { return e.enchants }
func (e *Entity) Triggers() *rules.TriggerList {
	return e.triggers
}

// Session returns the game as seen by enchantments.
func (e *Entity) Session() enchants.Session { return e.game }

// Tag returns the current value of t: the override if one is set, else the card's printed value.
func (e *Entity) Tag(t enums.GameTag) int {
	if v, ok := e.tags[t]; ok {
		return v
	}
	return e.card.Tag(t)
}

// SetTag overrides t.
func (e *Entity) SetTag(t enums.GameTag, value int) {
	e.tags[t] = value
}

func (e *Entity) OrderOfPlay() OrderOfPlay { return e.order }

// SetOrderOfPlay stamps the entity with the next sequence number of the game.
func (e *Entity) SetOrderOfPlay(label string) {
	e.order = OrderOfPlay{Seq: e.game.NextOrderOfPlay(), Label: label}
}

// keptOnReset are the overrides that describe where an entity is rather than what it is.
var keptOnReset = []enums.GameTag{
	enums.GameTagEntityID,
	enums.GameTagController,
	enums.GameTagZone,
	enums.GameTagZonePosition,
}

// Reset restores the printed state: every override except identity and
// placement is dropped and the entity's own enchantments and triggers are cleared.
func (e *Entity) Reset() {
	kept := make(map[enums.GameTag]int, len(keptOnReset))
	for _, t := range keptOnReset {
		if v, ok := e.tags[t]; ok {
			kept[t] = v
		}
	}
	e.tags = kept
	e.enchants.Clear()
	e.triggers.Clear()
}

// ApplyEnchantments offers a zone probe to the entity's own enchantments and
// then to those of its current zone. Enchantments filter themselves.
func (e *Entity) ApplyEnchantments(activation enums.EnchantmentActivation, zone enums.ZoneType) {
	fired := e.enchants.Probe(activation, zone, e)
	if e.zone != nil {
		fired += e.zone.enchants.Probe(activation, zone, e)
	}
	if fired == 0 {
		return
	}

	e.game.logger.Debug("enchantments applied",
		zap.Int("entity_id", e.id),
		zap.String("activation", string(activation)),
		zap.Int("fired", fired),
	)
	evt := rules.NewEvent(rules.EventEnchantmentApplied, e.id, e.id, e.ControllerID())
	evt.To = zone
	evt.Data = string(activation)
	e.game.bus.Publish(evt)
}

// Stamp copies the stateful fields of src onto the receiver: tag overrides,
// order of play and the entity's own enchantments and triggers.
func (e *Entity) Stamp(src Playable) {
	s := src.entity()
	e.tags = make(map[enums.GameTag]int, len(s.tags))
	for k, v := range s.tags {
		e.tags[k] = v
	}
	e.order = s.order
	e.enchants.Clear()
	e.triggers.Clear()
	s.enchants.CopyInto(e.enchants, e.game)
	s.triggers.CopyInto(e.triggers, e.game)
}

// Hash fingerprints the card, the effective tags and the entity's own
// enchantments and triggers. Zero-valued tags are omitted so that an unset
// tag and a tag set to zero hash alike.
func (e *Entity) Hash(ignore ...enums.GameTag) string {
	skip := make(map[enums.GameTag]bool, len(ignore))
	for _, t := range ignore {
		skip[t] = true
	}

	effective := e.card.Tags()
	for k, v := range e.tags {
		effective[k] = v
	}
	keys := make([]int, 0, len(effective))
	for k, v := range effective {
		if skip[k] || v == 0 {
			continue
		}
		keys = append(keys, int(k))
	}
	sort.Ints(keys)

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.card.ID)
	b.WriteString("]{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(strconv.Itoa(k))
		b.WriteString(":")
		b.WriteString(strconv.Itoa(effective[enums.GameTag(k)]))
	}
	b.WriteString("}")
	if e.enchants.Len() > 0 || e.triggers.Len() > 0 {
		b.WriteString("[EN:")
		b.WriteString(e.enchants.Hash())
		b.WriteString("][TR:")
		b.WriteString(e.triggers.Hash())
		b.WriteString("]")
	}
	return b.String()
}

func (e *Entity) String() string {
	return fmt.Sprintf("'%s[%d]'", e.card.Name, e.id)
}

// Minion is a creature on the board.
type Minion struct {
	Entity
}

func (m *Minion) AttackDamage() int { return m.Tag(enums.GameTagAtk) }
func (m *Minion) BaseHealth() int   { return m.Tag(enums.GameTagHealth) }

// Health is the remaining health after damage.
func (m *Minion) Health() int {
	return m.Tag(enums.GameTagHealth) - m.Tag(enums.GameTagDamage)
}

func (m *Minion) HasTaunt() bool { return m.Tag(enums.GameTagTaunt) > 0 }

// Weapon is an equippable with attack and durability.
type Weapon struct {
	Entity
}

func (w *Weapon) AttackDamage() int { return w.Tag(enums.GameTagAtk) }

// Durability is the remaining durability after damage.
func (w *Weapon) Durability() int {
	return w.Tag(enums.GameTagDurability) - w.Tag(enums.GameTagDamage)
}

// Spell is a one-shot card.
type Spell struct {
	Entity
}

// Hero is a controller's avatar.
type Hero struct {
	Entity
}

func (h *Hero) AttackDamage() int { return h.Tag(enums.GameTagAtk) }
func (h *Hero) Armor() int        { return h.Tag(enums.GameTagArmor) }

// Health is the remaining health after damage.
func (h *Hero) Health() int {
	return h.Tag(enums.GameTagHealth) - h.Tag(enums.GameTagDamage)
}

// HeroPower is a hero's reusable ability.
type HeroPower struct {
	Entity
}

// Live reports whether p holds an entity. A nil interface and a typed nil
// pointer are both dead.
func Live(p Playable) bool {
	switch e := p.(type) {
	case nil:
		return false
	case *Minion:
		return e != nil
	case *Weapon:
		return e != nil
	case *Spell:
		return e != nil
	case *Hero:
		return e != nil
	case *HeroPower:
		return e != nil
	}
	return true
}

// FromCard creates an entity of the kind matching card. An id of zero or less
// allocates a fresh id; a positive id is reused as is, which is how copies keep
// their identity. When zone is non-nil the entity is added to it.
func FromCard(c *Controller, card *cards.Card, tags map[enums.GameTag]int, zone *Zone, id int) (Playable, error) {
	if c == nil || card == nil {
		return nil, fmt.Errorf("%w: missing controller or card", ErrUnsupportedCard)
	}
	g := c.game
	if id <= 0 {
		id = g.NextID()
	}

	base := Entity{
		id:         id,
		game:       g,
		controller: c,
		card:       card,
		tags:       make(map[enums.GameTag]int, len(tags)+4),
		enchants:   enchants.NewList(),
		triggers:   rules.NewTriggerList(),
	}
	for k, v := range tags {
		base.tags[k] = v
	}
	base.tags[enums.GameTagEntityID] = id
	base.tags[enums.GameTagController] = c.id

	var p Playable
	switch card.Type {
	case enums.CardTypeMinion:
		p = &Minion{Entity: base}
	case enums.CardTypeWeapon:
		p = &Weapon{Entity: base}
	case enums.CardTypeSpell:
		p = &Spell{Entity: base}
	case enums.CardTypeHero:
		p = &Hero{Entity: base}
	case enums.CardTypeHeroPower:
		p = &HeroPower{Entity: base}
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedCard, card.Type, card.ID)
	}

	g.register(p)

	if zone != nil {
		if _, err := zone.Add(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}
