package event

import (
	"log"
	"sync"
	"time"

	"hostel-allocation-backend/internal/model"
)

// Type identifies a lifecycle transition.
type Type string

const (
	LeaseCreated    Type = "lease.created"
	LeaseCompleted  Type = "lease.completed"
	LeaseDeleted    Type = "lease.deleted"
	RoomCreated     Type = "room.created"
	RoomUpdated     Type = "room.updated"
	RoomDeleted     Type = "room.deleted"
	OccupantCreated Type = "occupant.created"
	OccupantUpdated Type = "occupant.updated"
	OccupantDeleted Type = "occupant.deleted"
)

// Event carries the post-commit snapshots of the records a transition
// touched. Snapshot pointers are nil for records the transition did not
// touch, or that no longer exist (deletes carry only the ID).
type Event struct {
	Type     Type
	At       time.Time
	ID       int64 // ID of the primary record, set for delete events
	Lease    *model.Lease
	Room     *model.Room
	Occupant *model.Occupant
}

// Bus is the capability the engine and the handlers publish through.
// Delivery is best effort: a publish never blocks and never fails the
// operation that triggered it.
type Bus interface {
	Publish(ev Event)
}

// Broker is an in-process Bus with fan-out to subscriber channels.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
	buffer int
}

// NewBroker creates a broker whose subscriber channels hold up to buffer
// undelivered events before the broker starts dropping.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 64
	}
	return &Broker{
		subs:   make(map[int]chan Event),
		buffer: buffer,
	}
}

// Subscribe returns a channel of events and a cancel function. After cancel
// returns the channel is closed and receives nothing further.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish fans the event out to every subscriber. Subscribers that cannot
// keep up lose events rather than stalling the publisher.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("event broker: subscriber %d lagging, dropped %s", id, ev.Type)
		}
	}
}
