// Package gateway implements the PagBank hosted-checkout client.  It
// translates an internal checkout intent into PagBank's wire format and the
// provider's answer back into a pay-URL plus the raw payload, or a typed
// error that tells callers whether PagBank rejected the request or the
// endpoint itself misbehaved.
package gateway

import (
    "encoding/json"
    "errors"
    "fmt"
)

// ErrTokenMissing is returned before any network call when the client was
// constructed without a bearer token.  This is an operator problem, not a
// request problem, and handlers map it to HTTP 500.
var ErrTokenMissing = errors.New("pagbank token not configured")

// RequestError is PagBank rejecting the business request: the response was
// valid JSON with a failure HTTP status.  Payload carries the provider error
// body verbatim so callers can surface it without paraphrasing.
type RequestError struct {
    StatusCode int
    Payload    json.RawMessage
}

func (e *RequestError) Error() string {
    return fmt.Sprintf("pagbank rejected checkout: status %d", e.StatusCode)
}

// ProtocolError means the PagBank endpoint itself is unreachable or
// misbehaving: a transport failure, a timeout, or a body that is not JSON
// (typically a proxy HTML error page).  It is deliberately distinct from
// RequestError so a 502 can be told apart from a provider-side rejection.
type ProtocolError struct {
    Reason string
    Err    error
}

func (e *ProtocolError) Error() string {
    if e.Err != nil {
        return fmt.Sprintf("pagbank protocol error: %s: %v", e.Reason, e.Err)
    }
    return "pagbank protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Customer identifies the paying guest in the checkout payload.  The shape
// is passed through to PagBank as-is.
type Customer struct {
    Name  string `json:"name"`
    Email string `json:"email"`
    TaxID string `json:"tax_id,omitempty"`
}

// Item is one priced line of a checkout.  Amount is in cents.
type Item struct {
    Name     string `json:"name"`
    Quantity int    `json:"quantity,omitempty"`
    Amount   int64  `json:"amount"`
}

// CheckoutIntent is what callers provide to open a checkout session.  The
// redirect URL is chosen by the caller (web redirect vs. mobile deep link);
// the notification callback is fixed by client configuration.
type CheckoutIntent struct {
    ReferenceID string
    Customer    Customer
    Items       []Item
    RedirectURL string
}

// CheckoutSession is the usable result of a created checkout.  PayURL may be
// empty when PagBank answered successfully but without a PAY link; callers
// decide whether that is acceptable.  Raw holds the provider response
// verbatim for logging and audit.
type CheckoutSession struct {
    PayURL string
    Raw    json.RawMessage
}

// checkoutRequest is the PagBank /checkouts wire format.
type checkoutRequest struct {
    ReferenceID      string   `json:"reference_id"`
    Customer         Customer `json:"customer"`
    Items            []Item   `json:"items"`
    NotificationURLs []string `json:"notification_urls"`
    RedirectURL      string   `json:"redirect_url"`
}

// link is one entry of the links array in a PagBank response.  The entry
// whose rel is "PAY" carries the hosted checkout URL.
type link struct {
    Rel  string `json:"rel"`
    Href string `json:"href"`
}

type checkoutResponse struct {
    Links []link `json:"links"`
}
