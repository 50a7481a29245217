package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/hotelbrasileiro/hotel-reservation/internal/model"
)

// ReservationRepo persists reservation rows in the `reservas` table.  The
// reference id is the correlation key shared with the payment provider, so
// every lookup and status update here is keyed by it rather than by the
// numeric primary key.  All timestamp fields are stored in UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `id, user_id, quarto_id, hospedes, inicio, fim, preco_total, status, reference_id, reservado_em`

// Create inserts a new reservation.  The caller must have set RoomID,
// Guests, CheckIn, CheckOut, TotalPrice, Status and ReferenceID; the
// generated ID and the database-assigned reservado_em are populated on the
// provided record.  The reference id column carries a unique index, so a
// collision surfaces as a database error instead of a silent overwrite.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservas (user_id, quarto_id, hospedes, inicio, fim, preco_total, status, reference_id, reservado_em)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())`
    result, err := r.db.ExecContext(ctx, q,
        res.UserID, res.RoomID, res.Guests, res.CheckIn, res.CheckOut, res.TotalPrice, res.Status, res.ReferenceID)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)
    // Query back the full row to populate the insert timestamp
    const sel = `SELECT ` + reservationCols + ` FROM reservas WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, res.ID).Scan(
        &res.ID, &res.UserID, &res.RoomID, &res.Guests, &res.CheckIn, &res.CheckOut,
        &res.TotalPrice, &res.Status, &res.ReferenceID, &res.CreatedAt,
    )
}

// GetByReference fetches a reservation by its reference id.  It returns
// ErrReservationNotFound when no row matches.
func (r *ReservationRepo) GetByReference(ctx context.Context, referenceID string) (*model.Reservation, error) {
    const q = `SELECT ` + reservationCols + ` FROM reservas WHERE reference_id = ? LIMIT 1`
    var res model.Reservation
    err := r.db.QueryRowContext(ctx, q, referenceID).Scan(
        &res.ID, &res.UserID, &res.RoomID, &res.Guests, &res.CheckIn, &res.CheckOut,
        &res.TotalPrice, &res.Status, &res.ReferenceID, &res.CreatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    return &res, nil
}

// StatusByReference returns only the stored status for a reference id.
// Status is push-updated by notifications, never pulled from the provider.
func (r *ReservationRepo) StatusByReference(ctx context.Context, referenceID string) (string, error) {
    const q = `SELECT status FROM reservas WHERE reference_id = ? LIMIT 1`
    var status string
    err := r.db.QueryRowContext(ctx, q, referenceID).Scan(&status)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return "", ErrReservationNotFound
        }
        return "", err
    }
    return status, nil
}

// UpdateStatusByReference overwrites the status of the reservation matching
// referenceID and returns the status that was stored before the write.  The
// update itself is a single targeted statement; the preceding read exists so
// callers can tell an actual transition apart from a redundant redelivery.
// Returns ErrReservationNotFound when the reference id matches no row.
func (r *ReservationRepo) UpdateStatusByReference(ctx context.Context, referenceID, status string) (previous string, err error) {
    const sel = `SELECT status FROM reservas WHERE reference_id = ? LIMIT 1`
    if err = r.db.QueryRowContext(ctx, sel, referenceID).Scan(&previous); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return "", ErrReservationNotFound
        }
        return "", err
    }
    const upd = `UPDATE reservas SET status = ? WHERE reference_id = ?`
    if _, err = r.db.ExecContext(ctx, upd, status, referenceID); err != nil {
        return "", err
    }
    return previous, nil
}

// ListByUser returns all reservations made by the given user, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationCols + ` FROM reservas WHERE user_id = ? ORDER BY reservado_em DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.Reservation
    for rows.Next() {
        var res model.Reservation
        if err := rows.Scan(
            &res.ID, &res.UserID, &res.RoomID, &res.Guests, &res.CheckIn, &res.CheckOut,
            &res.TotalPrice, &res.Status, &res.ReferenceID, &res.CreatedAt,
        ); err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    return out, rows.Err()
}
