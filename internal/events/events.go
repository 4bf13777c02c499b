// Package events announces natillera and contribution lifecycle changes to
// other systems.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Kind names an event and doubles as its routing key.
type Kind string

const (
	NatilleraCreated      Kind = "natillera.created"
	MemberJoined          Kind = "member.joined"
	ContributionReported  Kind = "contribution.reported"
	ContributionConfirmed Kind = "contribution.confirmed"
	ContributionRejected  Kind = "contribution.rejected"
)

// Event is a lightweight notification; consumers fetch full records by ID.
type Event struct {
	Kind           Kind      `json:"kind"`
	NatilleraID    string    `json:"natillera_id"`
	UserID         string    `json:"user_id,omitempty"`
	ContributionID string    `json:"contribution_id,omitempty"`
	Amount         int64     `json:"amount,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// New stamps an event with the current time.
func New(kind Kind, natilleraID string) Event {
	return Event{Kind: kind, NatilleraID: natilleraID, Timestamp: time.Now().UTC()}
}

// ToJSON encodes the event.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event.
func FromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers events. Publish must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                          { return nil }

// Memory keeps published events in memory.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) Close() error { return nil }

// Events returns a copy of the events published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
