package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/use-agent/statuswatch/models"
)

// Queries runs statements against a DBTX.
type Queries struct {
	db DBTX
}

const trackerColumns = `id, user_id, name, application_id, target_url, search_term, selector, last_status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTracker(row rowScanner) (*models.Tracker, error) {
	var (
		t       models.Tracker
		created int64
		updated sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.ApplicationID, &t.TargetURL,
		&t.SearchTerm, &t.Selector, &t.LastStatus, &created, &updated)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = fromMillis(created)
	t.UpdatedAt = nullMillis(updated)
	return &t, nil
}

// CreateTracker inserts t and returns the stored row. The owner's profile is
// created on demand.
func (q *Queries) CreateTracker(ctx context.Context, t *models.Tracker) (*models.Tracker, error) {
	if _, err := q.EnsureProfile(ctx, t.UserID, ""); err != nil {
		return nil, err
	}
	now := nowMillis()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO trackers (user_id, name, application_id, target_url, search_term, selector, last_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Name, t.ApplicationID, t.TargetURL, t.SearchTerm, t.Selector, t.LastStatus, now)
	if err != nil {
		return nil, fmt.Errorf("store: insert tracker: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: tracker id: %w", err)
	}
	return q.GetTracker(ctx, t.UserID, id)
}

// GetTracker returns one of userID's trackers.
func (q *Queries) GetTracker(ctx context.Context, userID string, id int64) (*models.Tracker, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+trackerColumns+` FROM trackers WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTracker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get tracker %d: %w", id, err)
	}
	return t, nil
}

// ListTrackers returns userID's trackers, oldest first.
func (q *Queries) ListTrackers(ctx context.Context, userID string) ([]*models.Tracker, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+trackerColumns+` FROM trackers WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list trackers: %w", err)
	}
	defer rows.Close()

	trackers := []*models.Tracker{}
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan tracker: %w", err)
		}
		trackers = append(trackers, t)
	}
	return trackers, rows.Err()
}

// UpdateStatus sets last_status and returns the updated row.
func (q *Queries) UpdateStatus(ctx context.Context, userID string, id int64, status string) (*models.Tracker, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE trackers SET last_status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		status, nowMillis(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("store: update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return q.GetTracker(ctx, userID, id)
}

// DeleteTracker removes one of userID's trackers.
func (q *Queries) DeleteTracker(ctx context.Context, userID string, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM trackers WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("store: delete tracker: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProfile returns userID's profile.
func (q *Queries) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var (
		p       models.Profile
		created int64
		updated sql.NullInt64
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT user_id, email, phone, created_at, updated_at FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Email, &p.Phone, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get profile: %w", err)
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = nullMillis(updated)
	return &p, nil
}

// EnsureProfile creates userID's profile if it does not exist yet. A
// non-empty email is recorded when the stored one is empty.
func (q *Queries) EnsureProfile(ctx context.Context, userID, email string) (*models.Profile, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, email, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET email = excluded.email
		 WHERE profiles.email = '' AND excluded.email <> ''`,
		userID, email, nowMillis())
	if err != nil {
		return nil, fmt.Errorf("store: ensure profile: %w", err)
	}
	return q.GetProfile(ctx, userID)
}

// SetPhone stores the notification phone for userID and returns the
// previous value.
func (q *Queries) SetPhone(ctx context.Context, userID, phone string) (string, *models.Profile, error) {
	prev, err := q.EnsureProfile(ctx, userID, "")
	if err != nil {
		return "", nil, err
	}
	if _, err := q.db.ExecContext(ctx,
		`UPDATE profiles SET phone = ?, updated_at = ? WHERE user_id = ?`,
		phone, nowMillis(), userID); err != nil {
		return "", nil, fmt.Errorf("store: set phone: %w", err)
	}
	p, err := q.GetProfile(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	return prev.Phone, p, nil
}

func nowMillis() int64 { return time.Now().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}
