// Package enchants holds the modifiers that effects attach to entities and zones.
package enchants

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okusnadi/SabberStone/internal/game/enums"
)

// Session is the game an enchantment belongs to.
type Session interface {
	ID() string
	Turn() int
}

// Target is anything an enchantment can modify.
type Target interface {
	ID() int
	ControllerID() int
	ZoneType() enums.ZoneType
	Tag(t enums.GameTag) int
	SetTag(t enums.GameTag, value int)
	Session() Session
}

// Operator combines an effect value with the current tag value.
type Operator string

const (
	OpSet Operator = "="
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
)

// Effect is one tag modification.
type Effect struct {
	Tag   enums.GameTag
	Op    Operator
	Value int
}

// Apply writes the effect onto the target.
func (e Effect) Apply(t Target) {
	current := t.Tag(e.Tag)
	switch e.Op {
	case OpSet:
		t.SetTag(e.Tag, e.Value)
	case OpAdd:
		t.SetTag(e.Tag, current+e.Value)
	case OpSub:
		t.SetTag(e.Tag, current-e.Value)
	case OpMul:
		t.SetTag(e.Tag, current*e.Value)
	}
}

func (e Effect) String() string {
	return e.Tag.String() + string(e.Op) + strconv.Itoa(e.Value)
}

// ApplyFunc replaces the default effect application. It must not keep state
// between calls; copies of an enchantment share the same function.
type ApplyFunc func(ench *Enchant, t Target)

// Enchant is a modifier template or an activated modifier.
type Enchant struct {
	SourceCardID    string
	Session         Session
	Turn            int
	Owner           int
	RemoveOnTrigger bool
	Activation      enums.EnchantmentActivation
	Effects         []Effect
	Apply           ApplyFunc
}

// New builds an enchantment template.
func New(activation enums.EnchantmentActivation, effects ...Effect) *Enchant {
	return &Enchant{Activation: activation, Effects: effects}
}

// Fire applies the enchantment to the target once.
func (e *Enchant) Fire(t Target) {
	if e.Apply != nil {
		e.Apply(e, t)
		return
	}
	for _, eff := range e.Effects {
		eff.Apply(t)
	}
}

// Copy returns a detached enchantment carrying the given provenance.
func (e *Enchant) Copy(sourceCardID string, session Session, turn, owner int, removeOnTrigger bool) *Enchant {
	effects := make([]Effect, len(e.Effects))
	copy(effects, e.Effects)
	return &Enchant{
		SourceCardID:    sourceCardID,
		Session:         session,
		Turn:            turn,
		Owner:           owner,
		RemoveOnTrigger: removeOnTrigger,
		Activation:      e.Activation,
		Effects:         effects,
		Apply:           e.Apply,
	}
}

// Activate attaches a copy of this template to list on behalf of target.
// Zone-bound activations only fire right away when the target already sits
// in the matching zone; everything else fires immediately.
func (e *Enchant) Activate(sourceCardID string, list *List, target Target) *Enchant {
	session := target.Session()
	turn := 0
	if session != nil {
		turn = session.Turn()
	}
	activated := e.Copy(sourceCardID, session, turn, target.ControllerID(), e.RemoveOnTrigger)
	list.Add(activated)

	if zone, bound := ZoneOf(e.Activation); bound {
		if target.ZoneType() == zone {
			activated.Fire(target)
		}
		return activated
	}
	activated.Fire(target)
	return activated
}

// Matches reports whether a zone probe applies to this enchantment for target.
func (e *Enchant) Matches(activation enums.EnchantmentActivation, zone enums.ZoneType, target Target) bool {
	return e.Activation == activation && target.ZoneType() == zone
}

// Hash is a deterministic fingerprint of the enchantment's data.
func (e *Enchant) Hash() string {
	var b strings.Builder
	b.WriteString("{")
	b.WriteString(e.SourceCardID)
	b.WriteString(",")
	b.WriteString(string(e.Activation))
	b.WriteString(",")
	b.WriteString(strconv.Itoa(e.Owner))
	b.WriteString(",")
	b.WriteString(strconv.Itoa(e.Turn))
	b.WriteString(",")
	b.WriteString(strconv.FormatBool(e.RemoveOnTrigger))
	for _, eff := range e.Effects {
		b.WriteString(",")
		b.WriteString(eff.String())
	}
	b.WriteString("}")
	return b.String()
}

func (e *Enchant) String() string {
	return fmt.Sprintf("Enchant[%s %s]", e.SourceCardID, e.Activation)
}

// ZoneOf returns the zone kind a zone-bound activation category refers to.
func ZoneOf(activation enums.EnchantmentActivation) (enums.ZoneType, bool) {
	for _, probe := range enums.ZoneProbes {
		if probe.Activation == activation {
			return probe.Zone, true
		}
	}
	return enums.ZoneInvalid, false
}
