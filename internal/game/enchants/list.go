package enchants

import (
	"strconv"
	"strings"

	"github.com/okusnadi/SabberStone/internal/game/enums"
)

// List is an ordered collection of enchantments owned by an entity or a zone.
type List struct {
	items []*Enchant
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

// Add appends an enchantment.
func (l *List) Add(e *Enchant) {
	l.items = append(l.items, e)
}

// Remove drops e by identity and reports whether it was present.
func (l *List) Remove(e *Enchant) bool {
	for i, item := range l.items {
		if item == e {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of enchantments.
func (l *List) Len() int {
	return len(l.items)
}

// All returns a copy of the enchantments in order.
func (l *List) All() []*Enchant {
	out := make([]*Enchant, len(l.items))
	copy(out, l.items)
	return out
}

// Clear drops every enchantment.
func (l *List) Clear() {
	l.items = nil
}

// Probe fires every enchantment that reacts to the activation for a target
// sitting in zone, removing the ones marked RemoveOnTrigger. It returns the
// number of enchantments fired.
func (l *List) Probe(activation enums.EnchantmentActivation, zone enums.ZoneType, target Target) int {
	fired := 0
	for _, e := range l.All() {
		if !e.Matches(activation, zone, target) {
			continue
		}
		e.Fire(target)
		fired++
		if e.RemoveOnTrigger {
			l.Remove(e)
		}
	}
	return fired
}

// CopyInto appends provenance-preserving copies of every enchantment to dst,
// rebound to session.
func (l *List) CopyInto(dst *List, session Session) {
	for _, e := range l.items {
		dst.Add(e.Copy(e.SourceCardID, session, e.Turn, e.Owner, e.RemoveOnTrigger))
	}
}

// Hash is the count followed by each enchantment hash.
func (l *List) Hash() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(l.items)))
	for _, e := range l.items {
		b.WriteString(e.Hash())
	}
	return b.String()
}
