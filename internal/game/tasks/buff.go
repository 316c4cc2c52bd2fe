package tasks

import (
	"go.uber.org/zap"

	"github.com/okusnadi/SabberStone/internal/game/conditions"
	"github.com/okusnadi/SabberStone/internal/game/enchants"
	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/model"
	"github.com/okusnadi/SabberStone/internal/game/rules"
)

// BuffTask attaches an enchantment to every entity of a target category that
// passes the optional condition.
type BuffTask struct {
	Base
	Buff      *enchants.Enchant
	Type      enums.EntityType
	Condition *conditions.SelfCondition
}

// NewBuffTask builds a ready task; the context fields are filled in by the caller.
func NewBuffTask(buff *enchants.Enchant, kind enums.EntityType, condition *conditions.SelfCondition) *BuffTask {
	return &BuffTask{Buff: buff, Type: kind, Condition: condition}
}

// Process resolves the targets and activates the buff on each of them.
// Without a playable source or a buff it stops and changes nothing.
func (t *BuffTask) Process() State {
	source, ok := t.Source.(model.Playable)
	if !ok || !model.Live(source) || source.Card() == nil || t.Buff == nil {
		return t.finish(StateStop)
	}

	targets := t.resolver().Resolve(t.Type, t.Controller, t.Source, t.Target, t.Playables)
	targets = t.Condition.Filter(targets)

	cardID := source.Card().ID
	for _, p := range targets {
		t.Buff.Activate(cardID, p.Enchants(), p)
	}

	if g := t.game(source); g != nil {
		g.Logger().Debug("buff task processed",
			zap.String("game_id", g.ID()),
			zap.String("card_id", cardID),
			zap.String("target_type", string(t.Type)),
			zap.String("condition", t.Condition.String()),
			zap.Int("targets", len(targets)),
		)
		evt := rules.NewEvent(rules.EventTaskProcessed, 0, source.ID(), source.ControllerID())
		evt.Data = "BUFF"
		evt.Position = len(targets)
		g.Bus().Publish(evt)
	}
	return t.finish(StateComplete)
}

func (t *BuffTask) game(source model.Playable) *model.Game {
	if t.Game != nil {
		return t.Game
	}
	return source.Game()
}

// Clone copies the task. The buff and the condition are shared.
func (t *BuffTask) Clone() Task {
	cp := &BuffTask{
		Base:      t.Base.Copy(),
		Buff:      t.Buff,
		Type:      t.Type,
		Condition: t.Condition,
	}
	return cp
}
