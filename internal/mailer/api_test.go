package mailer

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
)

func TestAPISenderSend(t *testing.T) {
    var gotAuth string
    var got apiMailRequest
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotAuth = r.Header.Get("Authorization")
        if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
            t.Errorf("decode: %v", err)
        }
        w.WriteHeader(http.StatusAccepted)
    }))
    defer srv.Close()

    s := NewAPISender(srv.URL, "mail-key", "reservas@hotelbrasileiro.example")
    if err := s.Send(context.Background(), "maria@example.com", "123456", PurposePasswordRecovery); err != nil {
        t.Fatalf("Send: %v", err)
    }
    if gotAuth != "Bearer mail-key" {
        t.Errorf("Authorization = %q", gotAuth)
    }
    if got.To != "maria@example.com" {
        t.Errorf("to = %q", got.To)
    }
    if !strings.Contains(got.Text, "123456") {
        t.Errorf("body %q does not carry the token", got.Text)
    }
    if !strings.Contains(got.Subject, "Recupera") {
        t.Errorf("subject = %q", got.Subject)
    }
}

func TestAPISenderErrorStatus(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, "quota exceeded", http.StatusTooManyRequests)
    }))
    defer srv.Close()

    s := NewAPISender(srv.URL, "mail-key", "reservas@hotelbrasileiro.example")
    if err := s.Send(context.Background(), "maria@example.com", "123456", PurposePasswordRecovery); err == nil {
        t.Fatal("want error on non-2xx response")
    }
}

func TestAPISenderUnconfigured(t *testing.T) {
    s := NewAPISender("", "", "")
    if err := s.Send(context.Background(), "maria@example.com", "123456", PurposePasswordRecovery); err == nil {
        t.Fatal("want error when api is not configured")
    }
}
