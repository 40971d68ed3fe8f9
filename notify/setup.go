package notify

import (
	"github.com/nats-io/nats.go"

	"github.com/use-agent/statuswatch/config"
)

// FromConfig builds the notifier for a process. WhatsApp is always
// registered so its capability flag and credential checks are reported on
// every change; the webhook and NATS senders are added when configured.
// nc may be nil.
func FromConfig(cfg config.NotifyConfig, nc *nats.Conn) *Notifier {
	senders := []Sender{NewWhatsAppSender(WhatsAppConfig{
		Enabled:    cfg.WhatsAppEnabled,
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		From:       cfg.TwilioWhatsAppNumber,
	})}
	if cfg.WebhookURL != "" {
		senders = append(senders, NewWebhookSender(cfg.WebhookURL, cfg.WebhookSecret))
	}
	if nc != nil {
		senders = append(senders, NewNATSSender(nc, cfg.NATSSubject))
	}
	return New(senders...)
}
