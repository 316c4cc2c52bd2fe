package rules

import (
	"sort"
	"sync"
)

// WatcherScope defines the scope of a watcher's tracking.
type WatcherScope int

const (
	// WatcherScopeGame tracks events for the entire game.
	WatcherScopeGame WatcherScope = iota
	// WatcherScopeController tracks events for one controller.
	WatcherScopeController
	// WatcherScopeEntity tracks events for one entity.
	WatcherScopeEntity
)

// String returns the string representation of the watcher scope.
func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeGame:
		return "GAME"
	case WatcherScopeController:
		return "CONTROLLER"
	case WatcherScopeEntity:
		return "ENTITY"
	default:
		return "UNKNOWN"
	}
}

// Watcher observes events and keeps a running tally. Reset is called at the
// start of every turn.
type Watcher interface {
	Watch(event Event)
	Reset()
	// ConditionMet reports whether anything was seen since the last reset.
	ConditionMet() bool
	Scope() WatcherScope
	Key() string
	Copy() Watcher
}

// BaseWatcher carries the bookkeeping shared by all watchers.
type BaseWatcher struct {
	scope     WatcherScope
	key       string
	condition bool
}

// NewBaseWatcher creates a base watcher with the given scope and key.
func NewBaseWatcher(scope WatcherScope, key string) *BaseWatcher {
	return &BaseWatcher{scope: scope, key: key}
}

func (bw *BaseWatcher) Scope() WatcherScope         { return bw.scope }
func (bw *BaseWatcher) Key() string                 { return bw.key }
func (bw *BaseWatcher) ConditionMet() bool          { return bw.condition }
func (bw *BaseWatcher) SetCondition(condition bool) { bw.condition = condition }

// Reset clears the condition.
func (bw *BaseWatcher) Reset() {
	bw.condition = false
}

// Clone returns an independent copy of the base.
func (bw *BaseWatcher) Clone() *BaseWatcher {
	cp := *bw
	return &cp
}

// WatcherRegistry manages the watchers of one game.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
	byScope  map[WatcherScope][]Watcher
}

// NewWatcherRegistry creates an empty registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{
		watchers: make(map[string]Watcher),
		byScope:  make(map[WatcherScope][]Watcher),
	}
}

// Add registers watchers, replacing any with the same key.
func (wr *WatcherRegistry) Add(watchers ...Watcher) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	for _, w := range watchers {
		if w == nil {
			continue
		}
		if _, ok := wr.watchers[w.Key()]; ok {
			wr.remove(w.Key())
		}
		wr.watchers[w.Key()] = w
		wr.byScope[w.Scope()] = append(wr.byScope[w.Scope()], w)
	}
}

// Remove drops the watcher registered under key.
func (wr *WatcherRegistry) Remove(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.remove(key)
}

func (wr *WatcherRegistry) remove(key string) {
	w, ok := wr.watchers[key]
	if !ok {
		return
	}
	delete(wr.watchers, key)

	scoped := wr.byScope[w.Scope()]
	for i, s := range scoped {
		if s.Key() == key {
			wr.byScope[w.Scope()] = append(scoped[:i], scoped[i+1:]...)
			break
		}
	}
}

// Get retrieves a watcher by key, or nil.
func (wr *WatcherRegistry) Get(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.watchers[key]
}

// ByScope returns the watchers of one scope in registration order.
func (wr *WatcherRegistry) ByScope(scope WatcherScope) []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	out := make([]Watcher, len(wr.byScope[scope]))
	copy(out, wr.byScope[scope])
	return out
}

// All returns every watcher sorted by key.
func (wr *WatcherRegistry) All() []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	out := make([]Watcher, 0, len(wr.watchers))
	for _, w := range wr.watchers {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Reset resets every watcher.
func (wr *WatcherRegistry) Reset() {
	for _, w := range wr.All() {
		w.Reset()
	}
}

// Notify hands the event to every watcher; each filters for itself.
func (wr *WatcherRegistry) Notify(event Event) {
	for _, w := range wr.All() {
		w.Watch(event)
	}
}

// Copy returns a registry holding copies of every watcher.
func (wr *WatcherRegistry) Copy() *WatcherRegistry {
	cp := NewWatcherRegistry()
	for _, w := range wr.All() {
		cp.Add(w.Copy())
	}
	return cp
}

// Attach feeds the registry from bus: TURN_START resets every watcher, all
// other events are passed on. The returned func detaches it.
func (wr *WatcherRegistry) Attach(bus *EventBus) func() {
	handle := bus.Subscribe(func(e Event) {
		if e.Type == EventTurnStart {
			wr.Reset()
			return
		}
		wr.Notify(e)
	})
	return func() { bus.Unsubscribe(handle) }
}
