// Package app wires configuration into the long-lived components shared by
// the statuswatch binaries.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/use-agent/statuswatch/config"
	"github.com/use-agent/statuswatch/engine"
	"github.com/use-agent/statuswatch/notify"
	"github.com/use-agent/statuswatch/scraper"
)

// InitLogger configures the default slog logger. The MCP server passes
// stderr because stdout carries the protocol.
func InitLogger(cfg config.LogConfig, w io.Writer) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewFetcher builds the HTTP content fetcher from cfg.
func NewFetcher(cfg config.FetchConfig) *engine.HTTPEngine {
	return engine.NewHTTPEngine(
		engine.WithTimeout(cfg.Timeout),
		engine.WithMaxBody(cfg.MaxBodyBytes),
		engine.WithUserAgent(cfg.UserAgent),
	)
}

// Pipeline is the scraper plus the fetcher it was built on.
type Pipeline struct {
	Fetcher *engine.HTTPEngine
	Scraper *scraper.Scraper
}

// NewPipeline builds the fetcher and the scraper.
func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	f := NewFetcher(cfg.Fetch)
	sc, err := scraper.NewFromConfig(cfg, f)
	if err != nil {
		return nil, fmt.Errorf("app: scraper: %w", err)
	}
	return &Pipeline{Fetcher: f, Scraper: sc}, nil
}

// ConnectNATS connects when cfg.NATSURL is set. It returns nil, nil
// otherwise.
func ConnectNATS(cfg config.NotifyConfig) (*nats.Conn, error) {
	if cfg.NATSURL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("statuswatch"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("app: connect nats %s: %w", cfg.NATSURL, err)
	}
	slog.Info("nats connected", "url", nc.ConnectedUrl(), "subject", cfg.NATSSubject)
	return nc, nil
}

// NewNotifier builds the notifier and logs which channels are active.
func NewNotifier(cfg config.NotifyConfig, nc *nats.Conn) *notify.Notifier {
	n := notify.FromConfig(cfg, nc)
	slog.Info("notification channels configured",
		"channels", n.Channels(),
		"whatsapp_enabled", cfg.WhatsAppEnabled,
	)
	return n
}
