package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Contact message statuses.
const (
	StatusNew  = "new"
	StatusRead = "read"
)

// ContactMessage is a stored contact form submission.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

// StatusCheck is a client heartbeat record.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// SaveContactMessage inserts a message.
func (s *Store) SaveContactMessage(ctx context.Context, m *ContactMessage) error {
	if m.Status == "" {
		m.Status = StatusNew
	}
	_, err := s.exec(ctx, `
		INSERT INTO contact_messages (id, name, email, message, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Email, m.Message, m.Status, toMillis(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}
	return nil
}

// GetContactMessage returns the message with id.
func (s *Store) GetContactMessage(ctx context.Context, id string) (*ContactMessage, error) {
	var m ContactMessage
	var created int64
	err := s.queryRow(ctx, `
		SELECT id, name, email, message, status, created_at
		FROM contact_messages WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact message: %w", err)
	}
	m.CreatedAt = fromMillis(created)
	return &m, nil
}

// ListContactMessages returns up to limit messages, newest first.
func (s *Store) ListContactMessages(ctx context.Context, limit int) ([]ContactMessage, error) {
	rows, err := s.query(ctx, `
		SELECT id, name, email, message, status, created_at
		FROM contact_messages
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	messages := []ContactMessage{}
	for rows.Next() {
		var m ContactMessage
		var created int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &created); err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		m.CreatedAt = fromMillis(created)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// UpdateContactStatus sets the status of a message.
func (s *Store) UpdateContactStatus(ctx context.Context, id, status string) error {
	res, err := s.exec(ctx, `UPDATE contact_messages SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update contact status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountContactMessages returns the total and unread message counts.
func (s *Store) CountContactMessages(ctx context.Context) (total, unread int64, err error) {
	err = s.queryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM contact_messages
	`, StatusNew).Scan(&total, &unread)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count contact messages: %w", err)
	}
	return total, unread, nil
}

// SaveStatusCheck inserts a status check.
func (s *Store) SaveStatusCheck(ctx context.Context, c *StatusCheck) error {
	_, err := s.exec(ctx, `INSERT INTO status_checks (id, client_name, timestamp) VALUES (?, ?, ?)`,
		c.ID, c.ClientName, toMillis(c.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to save status check: %w", err)
	}
	return nil
}

// ListStatusChecks returns up to limit status checks in insertion time order.
func (s *Store) ListStatusChecks(ctx context.Context, limit int) ([]StatusCheck, error) {
	rows, err := s.query(ctx, `
		SELECT id, client_name, timestamp FROM status_checks
		ORDER BY timestamp ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list status checks: %w", err)
	}
	defer rows.Close()

	checks := []StatusCheck{}
	for rows.Next() {
		var c StatusCheck
		var ts int64
		if err := rows.Scan(&c.ID, &c.ClientName, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan status check: %w", err)
		}
		c.Timestamp = fromMillis(ts)
		checks = append(checks, c)
	}
	return checks, rows.Err()
}
