package rules

import (
	"strconv"
	"strings"
)

// Session is the game a trigger belongs to.
type Session interface {
	ID() string
	Turn() int
}

// Trigger reacts to a specific event type on behalf of a source entity.
// Action must not keep state between calls; copies share it.
type Trigger struct {
	SourceID        int
	Session         Session
	Turn            int
	Owner           int
	EventType       EventType
	Condition       func(Event) bool
	Action          func(t *Trigger, evt Event)
	RemoveAfterFire bool
}

// Copy returns a detached trigger carrying the given provenance.
func (t *Trigger) Copy(sourceID int, session Session, turn, owner int) *Trigger {
	return &Trigger{
		SourceID:        sourceID,
		Session:         session,
		Turn:            turn,
		Owner:           owner,
		EventType:       t.EventType,
		Condition:       t.Condition,
		Action:          t.Action,
		RemoveAfterFire: t.RemoveAfterFire,
	}
}

// Matches reports whether the trigger reacts to evt.
func (t *Trigger) Matches(evt Event) bool {
	if t.EventType != evt.Type {
		return false
	}
	return t.Condition == nil || t.Condition(evt)
}

// Hash is a deterministic fingerprint of the trigger's data.
func (t *Trigger) Hash() string {
	var b strings.Builder
	b.WriteString("{")
	b.WriteString(string(t.EventType))
	b.WriteString(",")
	b.WriteString(strconv.Itoa(t.SourceID))
	b.WriteString(",")
	b.WriteString(strconv.Itoa(t.Owner))
	b.WriteString(",")
	b.WriteString(strconv.Itoa(t.Turn))
	b.WriteString(",")
	b.WriteString(strconv.FormatBool(t.RemoveAfterFire))
	b.WriteString("}")
	return b.String()
}

// TriggerList stores triggers in registration order and evaluates them against events.
type TriggerList struct {
	triggers []*Trigger
}

// NewTriggerList creates an empty trigger list.
func NewTriggerList() *TriggerList {
	return &TriggerList{}
}

// Add appends a trigger.
func (tl *TriggerList) Add(t *Trigger) {
	tl.triggers = append(tl.triggers, t)
}

// Remove drops a trigger by identity.
func (tl *TriggerList) Remove(t *Trigger) bool {
	for i, existing := range tl.triggers {
		if existing == t {
			tl.triggers = append(tl.triggers[:i], tl.triggers[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of triggers.
func (tl *TriggerList) Len() int {
	return len(tl.triggers)
}

// All returns a copy of the triggers in order.
func (tl *TriggerList) All() []*Trigger {
	out := make([]*Trigger, len(tl.triggers))
	copy(out, tl.triggers)
	return out
}

// Clear drops every trigger.
func (tl *TriggerList) Clear() {
	tl.triggers = nil
}

// Handle fires every matching trigger in order and returns the ones that fired.
// Triggers flagged RemoveAfterFire are dropped after firing.
func (tl *TriggerList) Handle(evt Event) []*Trigger {
	if len(tl.triggers) == 0 {
		return nil
	}

	var fired []*Trigger
	for _, t := range tl.All() {
		if !t.Matches(evt) {
			continue
		}
		if t.Action != nil {
			t.Action(t, evt)
		}
		fired = append(fired, t)
		if t.RemoveAfterFire {
			tl.Remove(t)
		}
	}
	return fired
}

// CopyInto appends provenance-preserving copies of every trigger to dst, rebound to session.
func (tl *TriggerList) CopyInto(dst *TriggerList, session Session) {
	for _, t := range tl.triggers {
		dst.Add(t.Copy(t.SourceID, session, t.Turn, t.Owner))
	}
}

// Hash is the count followed by each trigger hash.
func (tl *TriggerList) Hash() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(tl.triggers)))
	for _, t := range tl.triggers {
		b.WriteString(t.Hash())
	}
	return b.String()
}
