package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator is the part of the Twilio API the sender uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// WhatsAppConfig holds Twilio credentials and the capability flag.
type WhatsAppConfig struct {
	Enabled    bool
	AccountSID string
	AuthToken  string
	From       string
}

// WhatsAppSender sends messages through the Twilio WhatsApp API.
type WhatsAppSender struct {
	enabled bool
	from    string
	api     messageCreator
}

// NewWhatsAppSender creates a sender. The enabled flag is fixed for the
// lifetime of the sender. Missing credentials leave the sender in place but
// every Send returns ErrNotConfigured.
func NewWhatsAppSender(cfg WhatsAppConfig) *WhatsAppSender {
	s := &WhatsAppSender{enabled: cfg.Enabled, from: cfg.From}
	if cfg.AccountSID != "" && cfg.AuthToken != "" && cfg.From != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		s.api = client.Api
	}
	return s
}

func (s *WhatsAppSender) Name() string { return "whatsapp" }

func (s *WhatsAppSender) Send(_ context.Context, ev *Event) error {
	if !s.enabled {
		return ErrUnavailable
	}
	if s.api == nil {
		return fmt.Errorf("whatsapp: twilio credentials missing: %w", ErrNotConfigured)
	}
	if ev.Phone == "" {
		return fmt.Errorf("whatsapp: no recipient: %w", ErrNotConfigured)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + s.from)
	params.SetTo("whatsapp:" + ev.Phone)
	params.SetBody(MessageBody(ev))

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("whatsapp: create message: %w", err)
	}
	return nil
}

// MessageBody renders the alert text for ev.
func MessageBody(ev *Event) string {
	return fmt.Sprintf("🚀 StatusWatch Alert!\n\nYour tracker *'%s'* has a new status:\n\n*%s*\n\nTime: %s",
		ev.TrackerName, ev.NewStatus, ev.OccurredAt.Format("15:04:05"))
}
