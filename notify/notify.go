// Package notify delivers status change events to the user.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var (
	// ErrNotConfigured means a sender is missing credentials or a target.
	ErrNotConfigured = errors.New("notify: sender not configured")
	// ErrUnavailable means the transport is switched off for this process.
	ErrUnavailable = errors.New("notify: transport unavailable")
)

// Event is one status change of one tracker.
type Event struct {
	Phone       string    `json:"phone"`
	TrackerID   int64     `json:"tracker_id,omitempty"`
	TrackerName string    `json:"tracker_name"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Sender is one delivery channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, ev *Event) error
}

// Notifier fans an event out to every configured sender. A sender failure
// is logged and never propagated to the caller.
type Notifier struct {
	senders []Sender
	now     func() time.Time
}

// New creates a Notifier over senders, tried in order.
func New(senders ...Sender) *Notifier {
	return &Notifier{senders: senders, now: time.Now}
}

// Channels returns the names of the configured senders.
func (n *Notifier) Channels() []string {
	names := make([]string, 0, len(n.senders))
	for _, s := range n.senders {
		names = append(names, s.Name())
	}
	return names
}

// NotifyChange sends an event when the status actually changed and a phone
// number is on file. Statuses are compared as plain strings.
func (n *Notifier) NotifyChange(ctx context.Context, oldStatus, newStatus, phone, trackerName string) bool {
	return n.Notify(ctx, &Event{
		Phone:       phone,
		TrackerName: trackerName,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
	})
}

// Notify applies the NotifyChange gating to a prepared event.
func (n *Notifier) Notify(ctx context.Context, ev *Event) bool {
	if ev.OldStatus == ev.NewStatus {
		return false
	}
	if ev.Phone == "" {
		slog.InfoContext(ctx, "status changed but no phone on file", "tracker", ev.TrackerName)
		return false
	}
	return n.Deliver(ctx, ev)
}

// Deliver hands ev to every sender and reports whether any accepted it.
func (n *Notifier) Deliver(ctx context.Context, ev *Event) bool {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = n.now()
	}
	sent := false
	for _, s := range n.senders {
		if err := s.Send(ctx, ev); err != nil {
			level := slog.LevelError
			if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrUnavailable) {
				level = slog.LevelWarn
			}
			slog.Log(ctx, level, "notification not sent",
				"channel", s.Name(),
				"tracker", ev.TrackerName,
				"error", err,
			)
			continue
		}
		slog.InfoContext(ctx, "notification sent", "channel", s.Name(), "tracker", ev.TrackerName)
		sent = true
	}
	return sent
}
