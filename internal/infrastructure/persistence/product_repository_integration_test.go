//go:build integration

package persistence

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shop_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, migrationsDir(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	return db
}

func TestGormProductRepository_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db := newPostgresDB(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(`
		INSERT INTO products (title, description, price, category, stock_status, image_url, created_at)
		VALUES
			('Burr Oak Bowl', 'Natural edge', 120.00, 'one-off-art', 'available', 'art/oak.jpg', now() - interval '2 days'),
			('Spalted Beech Form', NULL, NULL, 'one-off-art', 'sold', NULL, now() - interval '1 day'),
			('Yew Hollow Form', NULL, 310.50, 'one-off-art', 'reserved', NULL, now()),
			('Cherry Scoop', NULL, 18.00, 'kitchenware', 'available', NULL, now())
	`).Error)

	repo := NewGormProductRepository(db)

	products, err := repo.FindByCategory(ctx, catalog.CategoryOneOffArt)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Yew Hollow Form", products[0].Title)
	assert.Equal(t, "Burr Oak Bowl", products[2].Title)
	assert.True(t, decimal.RequireFromString("310.5").Equal(*products[0].Price))
	assert.Nil(t, products[1].Price)
	assert.Equal(t, catalog.StockStatusSold, products[1].StockStatus)

	empty, err := repo.FindByCategory(ctx, "turned-pens")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
