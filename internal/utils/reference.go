package utils

import (
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
)

// NewReferenceID generates a reservation reference id of the form
// reserva_<unix-millis>_<uuid-fragment>.  The timestamp keeps ids roughly
// sortable and human-searchable in provider dashboards; the random fragment
// makes collisions between concurrent creations practically impossible.
// Uniqueness is a correctness requirement: the reference id is the only
// correlation key between a reservation row and its PagBank checkout.
func NewReferenceID() string {
    frag := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
    return fmt.Sprintf("reserva_%d_%s", time.Now().UnixMilli(), frag)
}
