// Package tracker runs the scrape, persist and notify flow for trackers.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/use-agent/statuswatch/models"
	"github.com/use-agent/statuswatch/notify"
	"github.com/use-agent/statuswatch/store"
)

// ErrRejected is returned by Create when the initial scrape faults.
var ErrRejected = errors.New("could not add tracker")

// DefaultTestMessage is sent by TestNotify when no message is given.
const DefaultTestMessage = "Test notification from StatusWatch! 🚀"

// Scraper produces a status for a request.
type Scraper interface {
	Scrape(ctx context.Context, req models.ScrapeRequest) models.Status
}

// Notifier delivers change events.
type Notifier interface {
	Notify(ctx context.Context, ev *notify.Event) bool
	Deliver(ctx context.Context, ev *notify.Event) bool
}

// Service coordinates scraper, store and notifier.
type Service struct {
	store    *store.Store
	scraper  Scraper
	notifier Notifier
}

// NewService creates a Service.
func NewService(st *store.Store, sc Scraper, n Notifier) *Service {
	return &Service{store: st, scraper: sc, notifier: n}
}

// Create scrapes the initial status and stores the tracker. A transport
// fault rejects the tracker with ErrRejected; every other status is kept,
// including ones that merely mention an error.
func (s *Service) Create(ctx context.Context, userID string, in models.TrackerCreate) (*models.Tracker, error) {
	status := s.scraper.Scrape(ctx, models.ScrapeRequest{
		TargetURL:  in.TargetURL,
		Selector:   in.Selector,
		SearchTerm: in.SearchTerm,
	})
	if status.IsFault() {
		slog.WarnContext(ctx, "tracker rejected", "user", userID, "url", in.TargetURL, "status", status.String())
		return nil, fmt.Errorf("%w. Reason: %s", ErrRejected, status.String())
	}

	// The owner's profile and the tracker row commit together.
	var t *models.Tracker
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		var err error
		t, err = q.CreateTracker(ctx, &models.Tracker{
			UserID:        userID,
			Name:          in.Name,
			ApplicationID: in.SearchTerm,
			TargetURL:     in.TargetURL,
			SearchTerm:    in.SearchTerm,
			Selector:      in.Selector,
			LastStatus:    status.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "tracker created", "user", userID, "tracker_id", t.ID, "status", t.LastStatus)
	return t, nil
}

// List returns userID's trackers.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Tracker, error) {
	return s.store.ListTrackers(ctx, userID)
}

// Get returns one tracker.
func (s *Service) Get(ctx context.Context, userID string, id int64) (*models.Tracker, error) {
	return s.store.GetTracker(ctx, userID, id)
}

// Delete removes one tracker.
func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	return s.store.DeleteTracker(ctx, userID, id)
}

// Refresh scrapes the tracker again, stores the result and notifies the
// owner on change. The scrape runs before the transaction opens; a fault
// status is stored like any other result.
func (s *Service) Refresh(ctx context.Context, userID string, id int64) (*models.RefreshResponse, error) {
	t, err := s.store.GetTracker(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	status := s.scraper.Scrape(ctx, models.ScrapeRequest{
		TargetURL:  t.TargetURL,
		Selector:   t.Selector,
		SearchTerm: t.SearchTerm,
	})

	resp, err := s.apply(ctx, userID, id, status.String())
	if err != nil {
		return nil, err
	}
	resp.StatusKind = status.Kind.String()
	return resp, nil
}

// SetStatus replaces the stored status by hand and runs the same change
// detection as Refresh.
func (s *Service) SetStatus(ctx context.Context, userID string, id int64, newStatus string) (*models.RefreshResponse, error) {
	return s.apply(ctx, userID, id, newStatus)
}

// apply persists newStatus in a transaction, then notifies.
func (s *Service) apply(ctx context.Context, userID string, id int64, newStatus string) (*models.RefreshResponse, error) {
	var (
		old     string
		updated *models.Tracker
		phone   string
	)
	err := s.store.WithTx(ctx, func(q *store.Queries) error {
		cur, err := q.GetTracker(ctx, userID, id)
		if err != nil {
			return err
		}
		old = cur.LastStatus

		updated, err = q.UpdateStatus(ctx, userID, id, newStatus)
		if err != nil {
			return err
		}

		p, err := q.GetProfile(ctx, userID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		default:
			phone = p.Phone
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	changed := old != newStatus
	slog.InfoContext(ctx, "tracker status stored",
		"tracker_id", id,
		"changed", changed,
		"has_phone", phone != "",
	)

	sent := s.notifier.Notify(ctx, &notify.Event{
		Phone:       phone,
		TrackerID:   id,
		TrackerName: updated.Name,
		OldStatus:   old,
		NewStatus:   newStatus,
	})

	return &models.RefreshResponse{
		Tracker:          updated,
		OldStatus:        old,
		NewStatus:        newStatus,
		StatusChanged:    changed,
		NotificationSent: sent,
	}, nil
}

// Profile returns userID's profile, creating it on first use.
func (s *Service) Profile(ctx context.Context, userID, email string) (*models.Profile, error) {
	return s.store.EnsureProfile(ctx, userID, email)
}

// SetPhone stores the notification phone and returns the previous one.
func (s *Service) SetPhone(ctx context.Context, userID, phone string) (string, *models.Profile, error) {
	old, p, err := s.store.SetPhone(ctx, userID, phone)
	if err != nil {
		return "", nil, err
	}
	slog.InfoContext(ctx, "phone updated", "user", userID)
	return old, p, nil
}

// TestNotify sends message to phone through every channel, bypassing the
// change check.
func (s *Service) TestNotify(ctx context.Context, phone, message string) bool {
	if message == "" {
		message = DefaultTestMessage
	}
	return s.notifier.Deliver(ctx, &notify.Event{
		Phone:       phone,
		TrackerName: "Test Tracker",
		NewStatus:   message,
	})
}
