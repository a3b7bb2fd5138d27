// Package telemetry provides simulation statistics, CSV output and Prometheus metrics.
package telemetry

import "github.com/pthm-cable/planets/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventPlaced EventType = iota
	EventRejected
	EventSpawned
	EventDepleted
)

// String returns the event name used in metric labels.
func (t EventType) String() string {
	switch t {
	case EventPlaced:
		return "placed"
	case EventRejected:
		return "rejected"
	case EventSpawned:
		return "spawned"
	case EventDepleted:
		return "depleted"
	default:
		return "unknown"
	}
}

// Event represents a single telemetry event.
type Event struct {
	Type   EventType
	Tick   int32
	Planet uint32
	Kind   components.Kind
	Angle  float32 // degrees, where the event happened on the surface
}

// NewPlacedEvent creates an accepted placement event.
func NewPlacedEvent(tick int32, planet uint32, kind components.Kind, angle float32) Event {
	return Event{Type: EventPlaced, Tick: tick, Planet: planet, Kind: kind, Angle: angle}
}

// NewRejectedEvent creates a rejected placement event.
func NewRejectedEvent(tick int32, planet uint32, kind components.Kind, angle float32) Event {
	return Event{Type: EventRejected, Tick: tick, Planet: planet, Kind: kind, Angle: angle}
}

// NewSpawnedEvent creates a villager spawn event.
func NewSpawnedEvent(tick int32, planet uint32, angle float32) Event {
	return Event{Type: EventSpawned, Tick: tick, Planet: planet, Kind: components.KindAgent, Angle: angle}
}

// NewDepletedEvent creates an exhausted natural resource event.
func NewDepletedEvent(tick int32) Event {
	return Event{Type: EventDepleted, Tick: tick, Kind: components.KindResource}
}

// EventCSV is a flat struct for CSV export of events.
type EventCSV struct {
	Tick   int32   `csv:"tick"`
	Type   string  `csv:"type"`
	Planet uint32  `csv:"planet"`
	Kind   string  `csv:"kind"`
	Angle  float32 `csv:"angle"`
}

// ToCSV converts an Event to its CSV record.
func (e Event) ToCSV() EventCSV {
	return EventCSV{
		Tick:   e.Tick,
		Type:   e.Type.String(),
		Planet: e.Planet,
		Kind:   e.Kind.String(),
		Angle:  e.Angle,
	}
}
