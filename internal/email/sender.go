package email

import (
	"context"
	"errors"
)

// Message es un correo listo para enviar, con version texto y HTML.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender define la interfaz del transporte de correo.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) Send(_ context.Context, _ Message) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
