package model

import "time"

// Reservation statuses.  PENDING_PAYMENT is the only status this service
// assigns itself; every other value arrives verbatim from PagBank charge
// notifications.  UNKNOWN is the sentinel used when a notification carries
// no resolvable status.
const (
    StatusPendingPayment = "PENDING_PAYMENT"
    StatusAuthorized     = "AUTHORIZED"
    StatusPaid           = "PAID"
    StatusInAnalysis     = "IN_ANALYSIS"
    StatusDeclined       = "DECLINED"
    StatusCanceled       = "CANCELED"
    StatusUnknown        = "UNKNOWN"
)

// Reservation records a guest's booking of a room for a date range.  The
// ReferenceID is generated internally before any checkout request is issued
// and is the sole correlation key between this row and the provider-side
// payment session.  Booking attributes are immutable after creation; only
// Status changes, and only through notification ingestion.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – guest who made the reservation (nullable, guests may book anonymously).
//  RoomID      – room being reserved.
//  Guests      – number of guests for the stay.
//  CheckIn     – first night of the stay.
//  CheckOut    – checkout date.
//  TotalPrice  – total price in cents.
//  Status      – payment state of the reservation.
//  ReferenceID – unique correlation key shared with PagBank.
//  CreatedAt   – creation timestamp (reservado_em).
type Reservation struct {
    ID          uint64    // reservas.id
    UserID      *uint64   // reservas.user_id (nullable)
    RoomID      uint64    // reservas.quarto_id
    Guests      uint32    // reservas.hospedes
    CheckIn     time.Time // reservas.inicio
    CheckOut    time.Time // reservas.fim
    TotalPrice  int64     // reservas.preco_total
    Status      string    // reservas.status
    ReferenceID string    // reservas.reference_id
    CreatedAt   time.Time // reservas.reservado_em
}
