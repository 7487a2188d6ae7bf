package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/propconsole/internal/model"
)

// ClientRepo encapsulates all queries on the clients table.
type ClientRepo struct {
	db *sql.DB
}

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

// List returns every client, newest first.
func (r *ClientRepo) List(ctx context.Context) ([]model.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, full_name, email, phone, preferences, created_at FROM clients "+orderNewestFirst)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Client{}
	for rows.Next() {
		var (
			c           model.Client
			phone, pref sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &phone, &pref, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Phone = nullable(phone)
		c.Preferences = nullable(pref)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of clients without reading any row.
func (r *ClientRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients").Scan(&n)
	return n, err
}

// ListOptions returns the (id, full_name) projection of all clients.
func (r *ClientRepo) ListOptions(ctx context.Context) ([]model.ClientOption, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, full_name FROM clients ORDER BY full_name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ClientOption{}
	for rows.Next() {
		var o model.ClientOption
		if err := rows.Scan(&o.ID, &o.FullName); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts c with a fresh id and reads back its creation time.
// Empty optional fields are stored as NULL.  A failed read-back does not
// fail the create.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	c.ID = uuid.NewString()
	const qInsert = "INSERT INTO clients (id, full_name, email, phone, preferences) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, qInsert,
		c.ID, c.FullName, c.Email, nullString(c.Phone), nullString(c.Preferences)); err != nil {
		return err
	}
	c.CreatedAt = readCreatedAt(ctx, r.db, "clients", c.ID)
	return nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
