package service

import (
	"testing"
	"time"

	"shop_backend/pkg/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestRevenue(t *testing.T) {
	t.Run("Daily report", func(t *testing.T) {
		db, mock := newMockDB(t)
		service := NewAnalyticsService(db)

		mock.ExpectQuery(`SELECT to_char.* AS period`).
			WillReturnRows(sqlmock.NewRows([]string{"period", "revenue", "orders"}).
				AddRow("2026-08-28", 600.0, 3).
				AddRow("2026-08-27", 200.0, 1))

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) AS total`).
			WillReturnRows(sqlmock.NewRows([]string{"total", "avg"}).AddRow(800.0, 200.0))

		mock.ExpectQuery(`SELECT p\.id AS product_id`).
			WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "quantity", "revenue"}).
				AddRow("prod-1", "Linen Shirt", 5, 500.0))

		mock.ExpectQuery(`SELECT id, user_id, total_amount, created_at`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount", "created_at"}).
				AddRow("order-1", "user-1", 200.0, time.Now()))

		report, err := service.Revenue("daily")

		assert.NoError(t, err)
		assert.Equal(t, "daily", report.Period)
		assert.Len(t, report.Buckets, 2)
		assert.Equal(t, float64(800), report.TotalRevenue)
		assert.Equal(t, float64(200), report.AvgOrderValue)
		assert.Equal(t, "Linen Shirt", report.TopProducts[0].Name)
		assert.Len(t, report.RecentOrders, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid period rejected", func(t *testing.T) {
		db, _ := newMockDB(t)
		service := NewAnalyticsService(db)

		_, err := service.Revenue("hourly")

		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestDashboard(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewAnalyticsService(db)

	countRow := func(n int64) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"count"}).AddRow(n)
	}
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE deleted_at IS NULL`).
		WillReturnRows(countRow(42))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE payment_status = 'Pending'`).
		WillReturnRows(countRow(7))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products`).
		WillReturnRows(countRow(12))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(countRow(99))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(12345.5))

	stats, err := service.Dashboard()

	assert.NoError(t, err)
	assert.Equal(t, int64(42), stats.TotalOrders)
	assert.Equal(t, int64(7), stats.PendingOrders)
	assert.Equal(t, int64(12), stats.TotalProducts)
	assert.Equal(t, int64(99), stats.TotalUsers)
	assert.Equal(t, 12345.5, stats.Revenue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
