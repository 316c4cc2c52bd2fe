package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okusnadi/SabberStone/internal/game/enums"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Zone events
	EventZoneChange    EventType = "ZONE_CHANGE"
	EventEntityRemoved EventType = "ENTITY_REMOVED"
	EventZoneStamped   EventType = "ZONE_STAMPED"

	// Effect events
	EventEnchantmentApplied EventType = "ENCHANTMENT_APPLIED"
	EventTriggerFired       EventType = "TRIGGER_FIRED"
	EventTaskProcessed      EventType = "TASK_PROCESSED"

	// Turn events
	EventTurnStart EventType = "TURN_START"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType
	ID          string         // Unique event ID
	EntityID    int            // Entity the event is about
	SourceID    int            // Entity that caused the event
	Controller  int            // Controller entity ID
	From        enums.ZoneType // Zone the entity left, if any
	To          enums.ZoneType // Zone the entity entered, if any
	Position    int            // Zone position after the change
	Data        string         // Additional string data
	Timestamp   time.Time
	Metadata    map[string]string
	Description string // Human-readable description
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // empty for all events
	callback  Listener
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
// Listeners run outside the bus lock and may publish further events.
type EventBus struct {
	mu         sync.RWMutex
	subs       []subscription
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.subscribe("", listener)
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	return bus.subscribe(eventType, callback)
}

func (bus *EventBus) subscribe(eventType EventType, callback Listener) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, eventType: eventType, callback: callback})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i := range bus.subs {
		if bus.subs[i].handle == handle {
			bus.subs = append(bus.subs[:i], bus.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to all matching listeners in subscription order.
func (bus *EventBus) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.mu.RLock()
	snapshot := make([]subscription, len(bus.subs))
	copy(snapshot, bus.subs)
	bus.mu.RUnlock()

	for _, sub := range snapshot {
		if sub.eventType != "" && sub.eventType != event.Type {
			continue
		}
		sub.callback(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, entityID, sourceID, controller int) Event {
	return Event{
		Type:       eventType,
		ID:         uuid.NewString(),
		EntityID:   entityID,
		SourceID:   sourceID,
		Controller: controller,
		Timestamp:  time.Now(),
		Metadata:   make(map[string]string),
	}
}

// NewZoneEvent creates an event describing an entity crossing zones.
func NewZoneEvent(eventType EventType, entityID, controller int, from, to enums.ZoneType, position int) Event {
	evt := NewEvent(eventType, entityID, entityID, controller)
	evt.From = from
	evt.To = to
	evt.Position = position
	return evt
}
