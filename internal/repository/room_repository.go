package repository // repository holds data access logic for domain entities

import (
    "context"
    "database/sql"
    "errors"

    "github.com/hotelbrasileiro/hotel-reservation/internal/model"
)

// RoomRepo provides read access to the `quartos` table.  Rooms are managed
// outside the payment flow; this service only needs to list them for guests
// and to confirm a room exists before creating a reservation.
type RoomRepo struct {
    db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
    return &RoomRepo{db: db}
}

// GetByID retrieves a room by its ID.  It returns ErrRoomNotFound when no
// row is found.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
    const q = `SELECT id, nome, descricao, capacidade, preco_noite, is_active FROM quartos WHERE id = ?`
    var room model.Room
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &room.ID, &room.Name, &room.Description, &room.Capacity, &room.NightlyPrice, &room.IsActive,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrRoomNotFound
        }
        return nil, err
    }
    return &room, nil
}

// ListActive returns all bookable rooms ordered by id.
func (r *RoomRepo) ListActive(ctx context.Context) ([]model.Room, error) {
    const q = `SELECT id, nome, descricao, capacidade, preco_noite, is_active FROM quartos WHERE is_active = 1 ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.Room
    for rows.Next() {
        var room model.Room
        if err := rows.Scan(&room.ID, &room.Name, &room.Description, &room.Capacity, &room.NightlyPrice, &room.IsActive); err != nil {
            return nil, err
        }
        out = append(out, room)
    }
    return out, rows.Err()
}
