package store

import (
	"context"
	"fmt"
	"time"
)

// Visit is one tracked page view. The client address is stored hashed.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// VisitorStats summarizes visitor and message counts for the dashboard.
type VisitorStats struct {
	TotalVisitors    int64   `json:"total_visitors"`
	UniqueVisitors   int64   `json:"unique_visitors"`
	VisitorsToday    int64   `json:"visitors_today"`
	VisitorsThisWeek int64   `json:"visitors_this_week"`
	TotalMessages    int64   `json:"total_messages"`
	UnreadMessages   int64   `json:"unread_messages"`
	RecentVisitors   []Visit `json:"recent_visitors"`
}

// RecordVisit inserts a visit.
func (s *Store) RecordVisit(ctx context.Context, v *Visit) error {
	_, err := s.exec(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, v.HashedIP, v.UserAgent, v.Path, toMillis(v.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// RecentVisitors returns up to limit visits, newest first.
func (s *Store) RecentVisitors(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.query(ctx, `
		SELECT id, hashed_ip, user_agent, path, timestamp
		FROM visitors
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}
	defer rows.Close()

	visits := []Visit{}
	for rows.Next() {
		var v Visit
		var ts int64
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		v.Timestamp = fromMillis(ts)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// Stats computes dashboard statistics relative to now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*VisitorStats, error) {
	stats := &VisitorStats{}
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := now.Add(-7 * 24 * time.Hour)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{toMillis(dayStart)}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{toMillis(weekStart)}},
	}
	for _, c := range counts {
		if err := s.queryRow(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to compute visitor stats: %w", err)
		}
	}

	var err error
	stats.TotalMessages, stats.UnreadMessages, err = s.CountContactMessages(ctx)
	if err != nil {
		return nil, err
	}

	stats.RecentVisitors, err = s.RecentVisitors(ctx, 50)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteVisitsBefore removes visits older than cutoff and returns how many
// were deleted.
func (s *Store) DeleteVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM visitors WHERE timestamp < ?`, toMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old visits: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
