// Package queue defines message payloads exchanged over the message broker.
package queue

// PaymentStatusChangedEvent is published when a provider notification moves a
// reservation to a new status.  Redundant redeliveries (same status applied
// again) do not produce an event, so consumers can treat each message as a
// real transition.  It carries enough information for downstream consumers
// to log, notify, or trigger analytics without querying the primary database.
type PaymentStatusChangedEvent struct {
    ReferenceID    string `json:"reference_id"`
    ReservationID  uint64 `json:"reservation_id"`
    RoomID         uint64 `json:"room_id"`
    PreviousStatus string `json:"previous_status"`
    Status         string `json:"status"`
    TotalPrice     int64  `json:"total_price_cents"`
    ChangedAt      string `json:"changed_at"`
}
