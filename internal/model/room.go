package model

// Room represents a bookable hotel room as stored in the `quartos` table.
// Rooms are reference data for this service: reservations point at them but
// the payment flow never mutates them.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – human readable label (e.g. "Quarto 101").
//  Description   – optional marketing text.
//  Capacity      – maximum number of guests.
//  NightlyPrice  – price per night in cents.
//  IsActive      – whether the room is currently bookable.
type Room struct {
    ID           uint64 // quartos.id
    Name         string // quartos.nome
    Description  string // quartos.descricao
    Capacity     uint32 // quartos.capacidade
    NightlyPrice int64  // quartos.preco_noite
    IsActive     bool   // quartos.is_active
}
