package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/propconsole/internal/model"
)

func TestPropertyRepo_ListNewestFirst(t *testing.T) {
	db, mock := newMock(t)
	newer := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM properties ORDER BY created_at DESC, id DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "address", "property_type", "bedrooms", "bathrooms", "sqft", "price", "status", "created_at"}).
			AddRow("p2", "2 Ela Beach Rd", "House", 3, 2, 1800, 4500.0, "available", newer).
			AddRow("p1", "1 Waigani Dr", "Apartment", 1, 1, nil, 1200.5, "leased", older))

	got, err := NewPropertyRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ID)
	require.NotNil(t, got[0].Sqft)
	assert.Equal(t, 1800, *got[0].Sqft)
	assert.Nil(t, got[1].Sqft)
	assert.Equal(t, 1200.5, got[1].Price)
	assert.Equal(t, "leased", got[1].Status)
}

func TestPropertyRepo_ListEmptyIsNotNil(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM properties").
		WillReturnRows(sqlmock.NewRows([]string{"id", "address", "property_type", "bedrooms", "bathrooms", "sqft", "price", "status", "created_at"}))

	got, err := NewPropertyRepo(db).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPropertyRepo_Count(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM properties")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(7))

	n, err := NewPropertyRepo(db).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestPropertyRepo_ListOptionsByStatus(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, address, status FROM properties WHERE status = ?")).
		WithArgs("available").
		WillReturnRows(sqlmock.NewRows([]string{"id", "address", "status"}).
			AddRow("p1", "1 Waigani Dr", "available"))

	got, err := NewPropertyRepo(db).ListOptionsByStatus(context.Background(), model.PropertyAvailable)
	require.NoError(t, err)
	assert.Equal(t, []model.PropertyOption{{ID: "p1", Address: "1 Waigani Dr", Status: "available"}}, got)
}

func TestPropertyRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	sqft := 950

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO properties")).
		WithArgs(sqlmock.AnyArg(), "5 Koki St", "Condo", 2, 1, 950, 2100.0, "available").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM properties WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	p := model.Property{Address: "5 Koki St", PropertyType: "Condo", Bedrooms: 2, Bathrooms: 1, Sqft: &sqft, Price: 2100, Status: "available"}
	require.NoError(t, NewPropertyRepo(db).Create(context.Background(), &p))
	assert.Len(t, p.ID, 36)
	assert.Equal(t, created, p.CreatedAt)
}

func TestPropertyRepo_CreateFailure(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO properties").WillReturnError(boom)

	p := model.Property{Address: "x", PropertyType: "House", Bedrooms: 1, Bathrooms: 1, Price: 1, Status: "available"}
	err := NewPropertyRepo(db).Create(context.Background(), &p)
	assert.ErrorIs(t, err, boom)
}

func TestPropertyRepo_CreateSurvivesReadBackFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO properties").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM properties WHERE id = ?")).
		WillReturnError(errors.New("connection reset"))

	before := time.Now().UTC()
	p := model.Property{Address: "x", PropertyType: "House", Bedrooms: 1, Bathrooms: 1, Price: 1, Status: "available"}
	require.NoError(t, NewPropertyRepo(db).Create(context.Background(), &p))
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.Before(before))
}
