package mailer

import (
    "context"
    "crypto/tls"
    "fmt"
    "net"
    "net/smtp"
)

// SMTPSender submits token emails over SMTP with implicit TLS (port 465,
// Gmail-style submission).  The username doubles as the From address.
type SMTPSender struct {
    host string
    port string
    user string
    pass string
}

// NewSMTPSender returns an SMTPSender for the given account.
func NewSMTPSender(host, port, user, pass string) *SMTPSender {
    return &SMTPSender{host: host, port: port, user: user, pass: pass}
}

// Send delivers one token email.  The context bounds the TLS dial; SMTP
// conversation errors are returned as-is for the caller to log.
func (s *SMTPSender) Send(ctx context.Context, to, token string, purpose Purpose) error {
    if s.user == "" || s.pass == "" {
        return fmt.Errorf("smtp credentials not configured")
    }
    subject, body := subjectBody(token, purpose)

    addr := net.JoinHostPort(s.host, s.port)
    dialer := &tls.Dialer{Config: &tls.Config{ServerName: s.host}}
    conn, err := dialer.DialContext(ctx, "tcp", addr)
    if err != nil {
        return fmt.Errorf("dial smtp: %w", err)
    }

    client, err := smtp.NewClient(conn, s.host)
    if err != nil {
        conn.Close()
        return fmt.Errorf("smtp handshake: %w", err)
    }
    defer client.Close()

    if err := client.Auth(smtp.PlainAuth("", s.user, s.pass, s.host)); err != nil {
        return fmt.Errorf("smtp auth: %w", err)
    }
    if err := client.Mail(s.user); err != nil {
        return err
    }
    if err := client.Rcpt(to); err != nil {
        return err
    }
    w, err := client.Data()
    if err != nil {
        return err
    }
    if _, err := w.Write(smtpMessage(s.user, to, subject, body)); err != nil {
        return err
    }
    if err := w.Close(); err != nil {
        return err
    }
    return client.Quit()
}

// smtpMessage renders the RFC 5322 message sent during DATA.  The body
// carries Portuguese text, so the content type pins UTF-8 explicitly.
func smtpMessage(from, to, subject, body string) []byte {
    msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
        from, to, subject, body)
    return []byte(msg)
}
