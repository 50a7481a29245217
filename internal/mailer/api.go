package mailer

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"
)

// APISender posts token emails to a transactional-email HTTP API with bearer
// authorization.  It is the migration target replacing the SMTP backend; the
// two are selected by configuration and behave identically to callers.
type APISender struct {
    url   string
    key   string
    from  string
    httpc *http.Client
}

// NewAPISender returns an APISender for the given endpoint.
func NewAPISender(url, key, from string) *APISender {
    return &APISender{
        url:   url,
        key:   key,
        from:  from,
        httpc: &http.Client{Timeout: 10 * time.Second},
    }
}

type apiMailRequest struct {
    From    string `json:"from"`
    To      string `json:"to"`
    Subject string `json:"subject"`
    Text    string `json:"text"`
}

// Send posts one token email.  Non-2xx responses are returned as errors with
// a body snippet for the log.
func (s *APISender) Send(ctx context.Context, to, token string, purpose Purpose) error {
    if s.url == "" || s.key == "" {
        return fmt.Errorf("mail api not configured")
    }
    subject, body := subjectBody(token, purpose)

    payload, err := json.Marshal(apiMailRequest{From: s.from, To: to, Subject: subject, Text: body})
    if err != nil {
        return err
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
    if err != nil {
        return err
    }
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("Authorization", "Bearer "+s.key)

    resp, err := s.httpc.Do(req)
    if err != nil {
        return fmt.Errorf("mail api request: %w", err)
    }
    defer resp.Body.Close()

    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
        return fmt.Errorf("mail api status %d: %s", resp.StatusCode, snippet)
    }
    return nil
}
