package sale

import "time"

// CommittedEvent is emitted when a sale commits. It carries the full
// immutable record so consumers (receipt emitter, sales archive) never need
// to read back through the repository.
type CommittedEvent struct {
	Sale       Sale
	OccurredAt time.Time
}

func (CommittedEvent) EventName() string { return "sale.committed" }

func NewCommittedEvent(s *Sale) CommittedEvent {
	return CommittedEvent{
		Sale:       *s,
		OccurredAt: time.Now().UTC(),
	}
}

// VoidedEvent is emitted when a cart is voided after a failed commit
// attempt, so reporting can count forced voids by reason.
type VoidedEvent struct {
	CartID     string
	Reason     string
	OccurredAt time.Time
}

func (VoidedEvent) EventName() string { return "sale.voided" }

func NewVoidedEvent(cartID, reason string) VoidedEvent {
	return VoidedEvent{
		CartID:     cartID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
