package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event records one change of the displayed label.
type Event struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Previous  string    `json:"previous"`
	Theme     string    `json:"theme"`
	Hands     int       `json:"hands"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository provides access to the label history.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts a new event. A missing ID or timestamp is filled in.
func (r *EventRepository) Create(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO label_events (id, label, previous, theme, hands, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Label, e.Previous, e.Theme, e.Hands, e.CreatedAt,
	)
	return err
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e := &Event{}
	err := r.db.QueryRow(
		`SELECT id, label, previous, theme, hands, created_at
		 FROM label_events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Label, &e.Previous, &e.Theme, &e.Hands, &e.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns the most recent events, newest first. A limit of zero or
// less returns every event.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, label, previous, theme, hands, created_at
		 FROM label_events ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Label, &e.Previous, &e.Theme, &e.Hands, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Counts returns how many times each label has been entered.
func (r *EventRepository) Counts() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT label, COUNT(*) FROM label_events GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// Clear deletes every event and returns how many were removed.
func (r *EventRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM label_events`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
