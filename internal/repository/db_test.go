package repository

import (
	"testing"
	"time"

	"PaymentsBackend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存 SQLite，单连接保证所有语句看到同一个库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.PaymentDetail{}, &model.SchemePayments{}))
	return db
}

func strPtr(s string) *string { return &s }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func seedPayment(t *testing.T, db *gorm.DB, p model.PaymentDetail) *model.PaymentDetail {
	t.Helper()
	if p.PublishedDate.IsZero() {
		p.PublishedDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func seedSummary(t *testing.T, db *gorm.DB, s model.SchemePayments) *model.SchemePayments {
	t.Helper()
	require.NoError(t, db.Create(&s).Error)
	return &s
}
