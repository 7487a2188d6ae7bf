package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/propconsole/internal/database"
	"github.com/iliyamo/propconsole/internal/model"
)

// LeaseRepo provides the reads and the transactional insert for leases.
// A lease references one property and one client; reads embed the
// referenced rows' display columns through a single joined query.
type LeaseRepo struct {
	db *sql.DB
}

// NewLeaseRepo returns a new LeaseRepo bound to the given database.
func NewLeaseRepo(db *sql.DB) *LeaseRepo { return &LeaseRepo{db: db} }

const dateLayout = "2006-01-02"

// ListDetailed returns every lease, newest first, with the property's
// address and type and the client's name and email embedded.  Embedded
// parts are nil when the referenced row is missing.
func (r *LeaseRepo) ListDetailed(ctx context.Context) ([]model.Lease, error) {
	const q = `SELECT l.id, l.property_id, l.client_id, l.start_date, l.end_date, l.total_amount, l.status, l.created_at,
                      p.address, p.property_type, c.full_name, c.email
               FROM leases l
               LEFT JOIN properties p ON p.id = l.property_id
               LEFT JOIN clients c ON c.id = l.client_id
               ORDER BY l.created_at DESC, l.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Lease{}
	for rows.Next() {
		var (
			l                 model.Lease
			amount            sql.NullFloat64
			address, propType sql.NullString
			fullName, email   sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.PropertyID, &l.ClientID, &l.StartDate, &l.EndDate, &amount, &l.Status, &l.CreatedAt,
			&address, &propType, &fullName, &email); err != nil {
			return nil, err
		}
		l.TotalAmount = amount.Float64
		if address.Valid {
			l.Property = &model.LeaseProperty{Address: address.String, PropertyType: propType.String}
		}
		if fullName.Valid {
			l.Client = &model.LeaseClient{FullName: fullName.String, Email: email.String}
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAmounts scans only (status, total_amount) for every lease.  The
// amount is returned as text, nil when the column is NULL.
func (r *LeaseRepo) ListAmounts(ctx context.Context) ([]model.LeaseAmount, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, total_amount FROM leases")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.LeaseAmount{}
	for rows.Next() {
		var (
			a      model.LeaseAmount
			amount sql.NullString
		)
		if err := rows.Scan(&a.Status, &amount); err != nil {
			return nil, err
		}
		a.TotalAmount = nullable(amount)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts l.  When l.Status is active the referenced property is
// marked leased in the same transaction, so either both writes are
// committed or neither is.  A reference to a missing property or client
// yields ErrInvalidReference.
func (r *LeaseRepo) Create(ctx context.Context, l *model.Lease) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	id := uuid.NewString()
	const qInsert = `INSERT INTO leases (id, property_id, client_id, start_date, end_date, total_amount, status)
                     VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, qInsert, id, l.PropertyID, l.ClientID,
		l.StartDate.Format(dateLayout), l.EndDate.Format(dateLayout), l.TotalAmount, l.Status); err != nil {
		if database.IsForeignKey(err) {
			return ErrInvalidReference
		}
		return err
	}
	if l.Status == model.LeaseActive {
		if _, err := tx.ExecContext(ctx, "UPDATE properties SET status = ? WHERE id = ?",
			model.PropertyLeased, l.PropertyID); err != nil {
			return err
		}
	}
	var createdAt sql.NullTime
	if err := tx.QueryRowContext(ctx, "SELECT created_at FROM leases WHERE id = ?", id).Scan(&createdAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	l.ID = id
	l.CreatedAt = createdAt.Time
	return nil
}
