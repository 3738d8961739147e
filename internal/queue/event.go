// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// StallBookedEvent is published when a booking write succeeds.  It carries
// enough for a downstream consumer to record the booking without querying
// the stalls table.
type StallBookedEvent struct {
    BookingRef   string `json:"booking_ref"`
    StallID      string `json:"stall_id"`
    StallLabel   string `json:"stall_label"`
    Layout       string `json:"layout"`
    Category     string `json:"category"`
    Name         string `json:"name"`
    BusinessName string `json:"business_name"`
    Phone        string `json:"phone"`
    BookedAt     string `json:"booked_at"`
}
