package identity

import (
	"context"
	"log"

	"raydrip/internal/contact"
)

// CodeSender delivers a one-time code to the identifier out of band.
type CodeSender interface {
	Send(ctx context.Context, identifier, code string) error
}

// LogSender records that a code was issued without revealing it.
type LogSender struct{}

func (LogSender) Send(_ context.Context, identifier, _ string) error {
	log.Printf("[OTP] [INFO] code issued for %s", contact.Mask(identifier))
	return nil
}
