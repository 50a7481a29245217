// Package mailer sends single-token emails (password recovery, signup
// confirmation).  Delivery is a thin collaborator: one templated send per
// call, no retry logic.  Two interchangeable backends exist, plain SMTP and
// a transactional-email HTTP API, selected by the MAIL_DRIVER configuration.
package mailer

import (
    "context"
    "fmt"

    "github.com/hotelbrasileiro/hotel-reservation/internal/config"
)

// Purpose selects the subject and body template of a token email.
type Purpose string

const (
    PurposePasswordRecovery   Purpose = "password_recovery"
    PurposeSignupConfirmation Purpose = "signup_confirmation"
)

// TokenSender delivers a token email of a given purpose to a recipient.
type TokenSender interface {
    Send(ctx context.Context, to, token string, purpose Purpose) error
}

// NewFromConfig selects the backend named by cfg.MailDriver.
func NewFromConfig(cfg config.Config) (TokenSender, error) {
    switch cfg.MailDriver {
    case "smtp":
        return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass), nil
    case "api":
        return NewAPISender(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom), nil
    default:
        return nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
    }
}

// subjectBody renders the template for a purpose.  Texts match the ones the
// hotel has always sent.
func subjectBody(token string, purpose Purpose) (subject, body string) {
    switch purpose {
    case PurposeSignupConfirmation:
        return "Confirmação de Cadastro - Hotel Brasileiro",
            fmt.Sprintf("Seu código de confirmação é: %s", token)
    default: // password recovery
        return "Recuperação de Senha - Hotel Brasileiro",
            fmt.Sprintf("Seu código de recuperação é: %s", token)
    }
}
