package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// SignatureHeader carries the HMAC-SHA256 of the request body.
const SignatureHeader = "X-StatusWatch-Signature"

// WebhookSender POSTs events as JSON.
// The body is signed with HMAC-SHA256 if secret is non-empty.
// Header: X-StatusWatch-Signature: sha256=<hex>
type WebhookSender struct {
	url    string
	secret string
	client *resty.Client
}

// NewWebhookSender creates a sender posting to url.
func NewWebhookSender(url, secret string) *WebhookSender {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "StatusWatch-Webhook/1.0")
	return &WebhookSender{url: url, secret: secret, client: client}
}

func (w *WebhookSender) Name() string { return "webhook" }

func (w *WebhookSender) Send(ctx context.Context, ev *Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req := w.client.R().SetContext(ctx).SetBody(body)
	if w.secret != "" {
		req.SetHeader(SignatureHeader, "sha256="+Sign(w.secret, body))
	}

	resp, err := req.Post(w.url)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode())
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
