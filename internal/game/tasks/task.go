// Package tasks holds single-shot effect tasks executed by the rules engine.
package tasks

import (
	"github.com/okusnadi/SabberStone/internal/game/model"
)

// State is the outcome of a task.
type State int

const (
	StateReady State = iota
	StateComplete
	StateStop
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateComplete:
		return "COMPLETE"
	case StateStop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// Task is a unit of effect execution. Process runs it once.
type Task interface {
	Process() State
	State() State
	Clone() Task
}

// Base carries the context the rules engine hands every task.
type Base struct {
	Game       *model.Game
	Controller *model.Controller
	Source     model.Object
	Target     model.Playable
	Playables  []model.Playable
	Resolver   Resolver

	state State
}

// State reports the outcome of the last Process call, or StateReady.
func (b *Base) State() State { return b.state }

func (b *Base) finish(s State) State {
	b.state = s
	return s
}

func (b *Base) resolver() Resolver {
	if b.Resolver == nil {
		return IncludeResolver{}
	}
	return b.Resolver
}

// Copy duplicates the bookkeeping fields. The candidate pool is copied, the
// entities in it are shared.
func (b Base) Copy() Base {
	cp := b
	if b.Playables != nil {
		cp.Playables = make([]model.Playable, len(b.Playables))
		copy(cp.Playables, b.Playables)
	}
	return cp
}
