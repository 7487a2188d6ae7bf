package repository

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/propconsole/internal/model"
)

// PropertyRepo encapsulates all queries on the properties table.
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepo constructs a PropertyRepo with the provided DB handle.
func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{db: db} }

const propertyColumns = "id, address, property_type, bedrooms, bathrooms, sqft, price, status, created_at"

// List returns every property, newest first.
func (r *PropertyRepo) List(ctx context.Context) ([]model.Property, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+propertyColumns+" FROM properties "+orderNewestFirst)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Property{}
	for rows.Next() {
		var (
			p    model.Property
			sqft sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Address, &p.PropertyType, &p.Bedrooms, &p.Bathrooms, &sqft, &p.Price, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		if sqft.Valid {
			v := int(sqft.Int64)
			p.Sqft = &v
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of properties without reading any row.
func (r *PropertyRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM properties").Scan(&n)
	return n, err
}

// ListOptionsByStatus returns the (id, address, status) projection of the
// properties whose status equals status.
func (r *PropertyRepo) ListOptionsByStatus(ctx context.Context, status string) ([]model.PropertyOption, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, address, status FROM properties WHERE status = ? "+orderNewestFirst, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.PropertyOption{}
	for rows.Next() {
		var o model.PropertyOption
		if err := rows.Scan(&o.ID, &o.Address, &o.Status); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts p.  A new id is generated and CreatedAt is read back from
// the row so callers receive the stored record.  Once the insert succeeded
// Create reports success even if the read-back fails.
func (r *PropertyRepo) Create(ctx context.Context, p *model.Property) error {
	p.ID = uuid.NewString()
	var sqft any
	if p.Sqft != nil {
		sqft = *p.Sqft
	}
	const qInsert = `INSERT INTO properties (id, address, property_type, bedrooms, bathrooms, sqft, price, status)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, qInsert,
		p.ID, p.Address, p.PropertyType, p.Bedrooms, p.Bathrooms, sqft, p.Price, p.Status); err != nil {
		return err
	}
	p.CreatedAt = readCreatedAt(ctx, r.db, "properties", p.ID)
	return nil
}

// readCreatedAt fetches the stored creation time of a row that was just
// inserted.  The row exists at this point, so a failed read is logged and
// the local clock stands in.
func readCreatedAt(ctx context.Context, db *sql.DB, table, id string) time.Time {
	var t time.Time
	if err := db.QueryRowContext(ctx, "SELECT created_at FROM "+table+" WHERE id = ?", id).Scan(&t); err != nil {
		log.Printf("repository: %s %s saved, created_at not read back: %v", table, id, err)
		return time.Now().UTC()
	}
	return t
}
