// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// payment orchestrator and the HTTP handlers to distinguish between
// failure scenarios. For example, ErrReservationNotFound signals a
// notification whose reference id matches no reservation, which the
// webhook endpoint reports without crashing, while ErrEmailExists maps
// to an HTTP 409 during registration.
package repository

import "errors"

// ErrReservationNotFound is returned when no reservation matches the given
// reference id. Notification ingestion treats this as a rejected (logged)
// notification rather than silently dropping it.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

// ErrEmailExists is returned when registering a user with an email that is
// already taken. Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
