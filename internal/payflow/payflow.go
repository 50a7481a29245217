// Package payflow is the reservation-payment orchestrator.  It composes the
// reservation store and the PagBank gateway client so that every reservation
// has a correlating checkout attempt, and so that provider notifications are
// applied to the right reservation without crashing on stale or duplicate
// deliveries.
package payflow

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/hotelbrasileiro/hotel-reservation/internal/gateway"
    "github.com/hotelbrasileiro/hotel-reservation/internal/model"
    "github.com/hotelbrasileiro/hotel-reservation/internal/queue"
    "github.com/hotelbrasileiro/hotel-reservation/internal/utils"
)

// ValidationError reports caller input that is missing or malformed.
// Handlers translate it into an HTTP 400.
type ValidationError struct {
    Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// ErrNoPayURL is returned by CreateReservationAndCheckout when PagBank
// answered successfully but without a PAY link.  The reservation row is
// already persisted and stays PENDING_PAYMENT.
var ErrNoPayURL = errors.New("provider returned no checkout url")

// ReservationStore is the slice of the repository the orchestrator needs.
// *repository.ReservationRepo satisfies it; tests inject fakes.
type ReservationStore interface {
    Create(ctx context.Context, res *model.Reservation) error
    GetByReference(ctx context.Context, referenceID string) (*model.Reservation, error)
    StatusByReference(ctx context.Context, referenceID string) (string, error)
    UpdateStatusByReference(ctx context.Context, referenceID, status string) (string, error)
}

// CheckoutGateway opens hosted checkout sessions. *gateway.Client satisfies it.
type CheckoutGateway interface {
    CreateCheckout(ctx context.Context, intent gateway.CheckoutIntent) (*gateway.CheckoutSession, error)
}

// EventPublisher pushes a status-change event to the broker.  Publishing is
// best effort; the orchestrator logs failures and moves on.
type EventPublisher func(ctx context.Context, event queue.PaymentStatusChangedEvent) error

// PayFlow wires the store, the gateway and the redirect targets together.
// Construct it with New; the zero value is not usable.
type PayFlow struct {
    store       ReservationStore
    gw          CheckoutGateway
    publish     EventPublisher
    redirectWeb string // browser flow redirect target
    redirectApp string // mobile deep-link redirect target
}

// New returns a PayFlow orchestrator.  publish may be nil to disable
// status-change events (tests, broker-less deployments).
func New(store ReservationStore, gw CheckoutGateway, publish EventPublisher, redirectWeb, redirectApp string) *PayFlow {
    return &PayFlow{
        store:       store,
        gw:          gw,
        publish:     publish,
        redirectWeb: redirectWeb,
        redirectApp: redirectApp,
    }
}

// BookingRequest is the input for CreateReservationAndCheckout.
type BookingRequest struct {
    UserID     *uint64
    RoomID     uint64
    Guests     uint32
    CheckIn    time.Time
    CheckOut   time.Time
    TotalPrice int64
    Customer   gateway.Customer
    Items      []gateway.Item
}

// CheckoutRequest is the input for the persistence-free CreateCheckout
// variant.  ReferenceID is generated when empty; RedirectURL overrides the
// configured web redirect when set.
type CheckoutRequest struct {
    ReferenceID string
    Customer    gateway.Customer
    Items       []gateway.Item
    RedirectURL string
}

// CheckoutResult is what both creation operations return on success.
type CheckoutResult struct {
    Reservation *model.Reservation // nil for the checkout-only variant
    ReferenceID string
    CheckoutURL string          // may be empty for the checkout-only variant
    Raw         json.RawMessage // provider response verbatim
}

// Notification is a provider callback reduced to what the orchestrator
// needs.  The ingestion endpoint extracts these fields from PagBank's
// notification shape.
type Notification struct {
    ReferenceID string
    Status      string
}

// CreateReservationAndCheckout persists a reservation in PENDING_PAYMENT and
// then opens a PagBank checkout for it.  The reservation is written BEFORE
// the provider is contacted so a provider-side failure still leaves an
// auditable, retryable record; on gateway errors the row is intentionally
// not rolled back.  Status is not touched on success; it only changes when
// notifications arrive.
func (p *PayFlow) CreateReservationAndCheckout(ctx context.Context, req BookingRequest) (*CheckoutResult, error) {
    if err := validateBooking(req); err != nil {
        return nil, err
    }

    res := &model.Reservation{
        UserID:      req.UserID,
        RoomID:      req.RoomID,
        Guests:      req.Guests,
        CheckIn:     req.CheckIn,
        CheckOut:    req.CheckOut,
        TotalPrice:  req.TotalPrice,
        Status:      model.StatusPendingPayment,
        ReferenceID: utils.NewReferenceID(),
    }
    if err := p.store.Create(ctx, res); err != nil {
        return nil, fmt.Errorf("persist reservation: %w", err)
    }

    sess, err := p.gw.CreateCheckout(ctx, gateway.CheckoutIntent{
        ReferenceID: res.ReferenceID,
        Customer:    req.Customer,
        Items:       req.Items,
        RedirectURL: p.redirectApp,
    })
    if err != nil {
        log.Printf("payflow: checkout failed for %s, reservation retained as %s: %v",
            res.ReferenceID, model.StatusPendingPayment, err)
        return nil, err
    }
    if sess.PayURL == "" {
        log.Printf("payflow: no checkout url for %s, reservation retained as %s",
            res.ReferenceID, model.StatusPendingPayment)
        return nil, ErrNoPayURL
    }

    return &CheckoutResult{
        Reservation: res,
        ReferenceID: res.ReferenceID,
        CheckoutURL: sess.PayURL,
        Raw:         sess.Raw,
    }, nil
}

// CreateCheckout opens a checkout session without creating a reservation,
// for callers that keep their own records.  Same validation and error policy
// as CreateReservationAndCheckout, minus persistence; a missing PAY link is
// not an error here, the caller decides whether an empty URL is acceptable.
func (p *PayFlow) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
    if err := validateCheckout(req); err != nil {
        return nil, err
    }
    referenceID := req.ReferenceID
    if referenceID == "" {
        referenceID = utils.NewReferenceID()
    }
    redirect := req.RedirectURL
    if redirect == "" {
        redirect = p.redirectWeb
    }

    sess, err := p.gw.CreateCheckout(ctx, gateway.CheckoutIntent{
        ReferenceID: referenceID,
        Customer:    req.Customer,
        Items:       req.Items,
        RedirectURL: redirect,
    })
    if err != nil {
        return nil, err
    }
    return &CheckoutResult{
        ReferenceID: referenceID,
        CheckoutURL: sess.PayURL,
        Raw:         sess.Raw,
    }, nil
}

// Status returns the stored status for a reference id without contacting the
// provider; status is push-updated by notifications, never pulled.
func (p *PayFlow) Status(ctx context.Context, referenceID string) (string, error) {
    if referenceID == "" {
        return "", &ValidationError{Reason: "reference id is required"}
    }
    return p.store.StatusByReference(ctx, referenceID)
}

// ApplyNotification applies a provider-pushed status to the matching
// reservation.  The write is last-write-wins: PagBank supplies no sequence
// token, so there is nothing to order concurrent notifications by.  The
// outcome is idempotent (applying the same notification twice lands on the
// same state) and a redundant redelivery is detected via the previous
// status, which gates the status-change event.
func (p *PayFlow) ApplyNotification(ctx context.Context, n Notification) error {
    if n.ReferenceID == "" {
        return &ValidationError{Reason: "notification has no reference id"}
    }
    if n.Status == "" {
        return &ValidationError{Reason: "notification has no status"}
    }

    res, err := p.store.GetByReference(ctx, n.ReferenceID)
    if err != nil {
        return err
    }
    previous, err := p.store.UpdateStatusByReference(ctx, n.ReferenceID, n.Status)
    if err != nil {
        return err
    }
    if previous == n.Status {
        return nil // redelivery, nothing changed
    }

    log.Printf("payflow: reservation %s status %s -> %s", n.ReferenceID, previous, n.Status)
    if p.publish != nil {
        event := queue.PaymentStatusChangedEvent{
            ReferenceID:    n.ReferenceID,
            ReservationID:  res.ID,
            RoomID:         res.RoomID,
            PreviousStatus: previous,
            Status:         n.Status,
            TotalPrice:     res.TotalPrice,
            ChangedAt:      time.Now().UTC().Format(time.RFC3339),
        }
        if err := p.publish(ctx, event); err != nil {
            log.Printf("payflow: publish status-change for %s failed: %v", n.ReferenceID, err)
        }
    }
    return nil
}

func validateBooking(req BookingRequest) error {
    switch {
    case req.RoomID == 0:
        return &ValidationError{Reason: "room id is required"}
    case req.Guests == 0:
        return &ValidationError{Reason: "guest count is required"}
    case req.CheckIn.IsZero() || req.CheckOut.IsZero():
        return &ValidationError{Reason: "stay dates are required"}
    case !req.CheckOut.After(req.CheckIn):
        return &ValidationError{Reason: "check-out must be after check-in"}
    case req.TotalPrice <= 0:
        return &ValidationError{Reason: "total price is required"}
    }
    if err := validateCustomerItems(req.Customer, req.Items); err != nil {
        return err
    }
    return nil
}

func validateCheckout(req CheckoutRequest) error {
    return validateCustomerItems(req.Customer, req.Items)
}

func validateCustomerItems(customer gateway.Customer, items []gateway.Item) error {
    if customer.Name == "" || customer.Email == "" {
        return &ValidationError{Reason: "customer name and email are required"}
    }
    if len(items) == 0 {
        return &ValidationError{Reason: "at least one item is required"}
    }
    for _, it := range items {
        if it.Name == "" || it.Amount <= 0 {
            return &ValidationError{Reason: "items must have a name and a positive amount"}
        }
    }
    return nil
}
