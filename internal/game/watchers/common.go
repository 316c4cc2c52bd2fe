// Package watchers holds the stock watchers: per-controller tallies of zone
// traffic and buff tasks.
package watchers

import (
	"github.com/okusnadi/SabberStone/internal/game/enums"
	"github.com/okusnadi/SabberStone/internal/game/rules"
)

// tally counts per controller, both since the last reset and over the game.
type tally struct {
	turn  map[int]int
	total map[int]int
}

func newTally() tally {
	return tally{turn: make(map[int]int), total: make(map[int]int)}
}

func (t tally) add(controller, n int) {
	t.turn[controller] += n
	t.total[controller] += n
}

func (t tally) copy() tally {
	cp := newTally()
	for k, v := range t.turn {
		cp.turn[k] = v
	}
	for k, v := range t.total {
		cp.total[k] = v
	}
	return cp
}

// ZoneWatcher counts entities crossing from one zone kind to another.
type ZoneWatcher struct {
	*rules.BaseWatcher
	from, to enums.ZoneType
	counts   tally
}

// NewZoneWatcher creates a watcher for moves from -> to under key.
func NewZoneWatcher(key string, from, to enums.ZoneType) *ZoneWatcher {
	return &ZoneWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeController, key),
		from:        from,
		to:          to,
		counts:      newTally(),
	}
}

// NewCardsDrawnWatcher counts cards moved from deck to hand.
func NewCardsDrawnWatcher() *ZoneWatcher {
	return NewZoneWatcher("CardsDrawnWatcher", enums.ZoneDeck, enums.ZoneHand)
}

// NewCardsBurnedWatcher counts cards that went straight from deck to graveyard.
func NewCardsBurnedWatcher() *ZoneWatcher {
	return NewZoneWatcher("CardsBurnedWatcher", enums.ZoneDeck, enums.ZoneGraveyard)
}

// NewMinionsPlayedWatcher counts entities moved from hand into play.
func NewMinionsPlayedWatcher() *ZoneWatcher {
	return NewZoneWatcher("MinionsPlayedWatcher", enums.ZoneHand, enums.ZonePlay)
}

// NewMinionsDiedWatcher counts entities moved from play to the graveyard.
func NewMinionsDiedWatcher() *ZoneWatcher {
	return NewZoneWatcher("MinionsDiedWatcher", enums.ZonePlay, enums.ZoneGraveyard)
}

// Watch implements rules.Watcher.
func (w *ZoneWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventZoneChange || event.From != w.from || event.To != w.to {
		return
	}
	w.counts.add(event.Controller, 1)
	w.SetCondition(true)
}

// Reset clears the per-turn counts. Totals are kept.
func (w *ZoneWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.counts.turn = make(map[int]int)
}

// Count returns the moves by controller since the last reset.
func (w *ZoneWatcher) Count(controller int) int { return w.counts.turn[controller] }

// Total returns the moves by controller over the whole game.
func (w *ZoneWatcher) Total(controller int) int { return w.counts.total[controller] }

// Copy implements rules.Watcher.
func (w *ZoneWatcher) Copy() rules.Watcher {
	return &ZoneWatcher{BaseWatcher: w.Clone(), from: w.from, to: w.to, counts: w.counts.copy()}
}

// BuffsWatcher counts entities buffed by buff tasks.
type BuffsWatcher struct {
	*rules.BaseWatcher
	counts tally
}

// NewBuffsWatcher creates a buffs watcher.
func NewBuffsWatcher() *BuffsWatcher {
	return &BuffsWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeController, "BuffsWatcher"),
		counts:      newTally(),
	}
}

// Watch implements rules.Watcher.
func (w *BuffsWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventTaskProcessed || event.Data != "BUFF" {
		return
	}
	w.counts.add(event.Controller, event.Position)
	w.SetCondition(true)
}

// Reset clears the per-turn counts. Totals are kept.
func (w *BuffsWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.counts.turn = make(map[int]int)
}

func (w *BuffsWatcher) Count(controller int) int { return w.counts.turn[controller] }
func (w *BuffsWatcher) Total(controller int) int { return w.counts.total[controller] }

// Copy implements rules.Watcher.
func (w *BuffsWatcher) Copy() rules.Watcher {
	return &BuffsWatcher{BaseWatcher: w.Clone(), counts: w.counts.copy()}
}

// Counter is a watcher that reports per-controller totals.
type Counter interface {
	rules.Watcher
	Count(controller int) int
	Total(controller int) int
}

// Standard returns a registry holding every stock watcher.
func Standard() *rules.WatcherRegistry {
	r := rules.NewWatcherRegistry()
	r.Add(
		NewCardsDrawnWatcher(),
		NewCardsBurnedWatcher(),
		NewMinionsPlayedWatcher(),
		NewMinionsDiedWatcher(),
		NewBuffsWatcher(),
	)
	return r
}
