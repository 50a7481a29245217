package gateway

import (
    "bytes"
    "context"
    "encoding/json"
    "io"
    "log"
    "net/http"
    "time"
)

// Config carries everything the client needs.  It is passed explicitly at
// construction; the client holds no package-level state so tests can point
// it at a stub server.
type Config struct {
    BaseURL         string        // PagBank checkouts endpoint
    Token           string        // bearer token; empty makes every call fail with ErrTokenMissing
    NotificationURL string        // webhook URL PagBank pushes charge notifications to
    Timeout         time.Duration // connect/response timeout for the whole call
}

// Client talks to the PagBank checkouts API.
type Client struct {
    cfg   Config
    httpc *http.Client
}

// New constructs a Client from the given configuration.  A zero Timeout
// falls back to 15 seconds.
func New(cfg Config) *Client {
    timeout := cfg.Timeout
    if timeout <= 0 {
        timeout = 15 * time.Second
    }
    return &Client{
        cfg:   cfg,
        httpc: &http.Client{Timeout: timeout},
    }
}

// CreateCheckout opens a hosted checkout session for the given intent.
//
// Response handling is three-way:
//   - valid JSON with a success status: the PAY link is extracted; a missing
//     link is logged but not fatal, PayURL comes back empty.
//   - valid JSON with a failure status: *RequestError with the provider
//     payload verbatim.
//   - anything that is not JSON (HTML error pages, transport failures,
//     timeouts): *ProtocolError.
func (c *Client) CreateCheckout(ctx context.Context, intent CheckoutIntent) (*CheckoutSession, error) {
    if c.cfg.Token == "" {
        return nil, ErrTokenMissing
    }

    payload := checkoutRequest{
        ReferenceID:      intent.ReferenceID,
        Customer:         intent.Customer,
        Items:            intent.Items,
        NotificationURLs: []string{c.cfg.NotificationURL},
        RedirectURL:      intent.RedirectURL,
    }
    body, err := json.Marshal(payload)
    if err != nil {
        return nil, err
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
    if err != nil {
        return nil, err
    }
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

    resp, err := c.httpc.Do(req)
    if err != nil {
        return nil, &ProtocolError{Reason: "request failed", Err: err}
    }
    defer resp.Body.Close()

    raw, err := io.ReadAll(resp.Body)
    if err != nil {
        return nil, &ProtocolError{Reason: "reading response body", Err: err}
    }

    if !json.Valid(raw) {
        // likely an HTML error page from a proxy in front of the API
        log.Printf("gateway: PagBank returned non-JSON (%d bytes), status %d", len(raw), resp.StatusCode)
        return nil, &ProtocolError{Reason: "response is not JSON"}
    }

    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        log.Printf("gateway: PagBank error for reference %s: status %d body %s",
            intent.ReferenceID, resp.StatusCode, raw)
        return nil, &RequestError{StatusCode: resp.StatusCode, Payload: raw}
    }

    var parsed checkoutResponse
    if err := json.Unmarshal(raw, &parsed); err != nil {
        // valid JSON but not the expected shape
        return nil, &ProtocolError{Reason: "decoding response", Err: err}
    }

    session := &CheckoutSession{Raw: raw}
    for _, l := range parsed.Links {
        if l.Rel == "PAY" {
            session.PayURL = l.Href
            break
        }
    }
    if session.PayURL == "" {
        log.Printf("gateway: no PAY link in PagBank response for reference %s", intent.ReferenceID)
    }
    return session, nil
}
