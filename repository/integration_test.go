//go:build integration

package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/database"
	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/CodeForFun2004/The-Chill-Cup-API/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:14-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "chillcup",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := database.ConnectPostgres(database.PostgresConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "testuser",
		Password: "testpass",
		DBName:   "chillcup",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestIntegration_DiscountLedger(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	discounts := repository.NewGormDiscountRepository(db)
	ledger := repository.NewGormUserDiscountRepository(db)

	d := &models.Discount{
		Title:           "Ten off",
		PromotionCode:   "SAVE10",
		DiscountPercent: 10,
		ExpiryDate:      time.Now().Add(24 * time.Hour),
		MinOrder:        50000,
	}
	require.NoError(t, discounts.Create(ctx, d))

	found, err := discounts.FindByCode(ctx, "save10")
	require.NoError(t, err)
	assert.Equal(t, d.ID, found.ID)

	// Only one of many concurrent applications wins the ledger row.
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := ledger.MarkUsed(ctx, "u1", d.ID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	released, err := ledger.Release(ctx, "u1", d.ID)
	require.NoError(t, err)
	assert.True(t, released)

	ok, err := ledger.MarkUsed(ctx, "u1", d.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	used, err := ledger.UsedDiscountIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, d.ID, used[0])
}

func TestIntegration_LoyaltyCreditAccumulates(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	tx := repository.NewGormTxManager(db)

	for _, points := range []int64{96, 87} {
		err := tx.WithTransaction(ctx, func(repos repository.Repositories) error {
			return repos.Loyalty.Credit(ctx, "u1", points, &models.LoyaltyHistory{Type: models.LoyaltyEarn})
		})
		require.NoError(t, err)
	}

	balance, err := repository.NewGormLoyaltyRepository(db).FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(183), balance.TotalPoints)
	assert.Len(t, balance.History, 2)
}

func TestIntegration_DeletedCodeCanBeReused(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	discounts := repository.NewGormDiscountRepository(db)

	newDiscount := func() *models.Discount {
		return &models.Discount{
			Title:           "Summer",
			PromotionCode:   "SUMMER",
			DiscountPercent: 15,
			ExpiryDate:      time.Now().Add(24 * time.Hour),
		}
	}
	first := newDiscount()
	require.NoError(t, discounts.Create(ctx, first))

	err := discounts.Create(ctx, newDiscount())
	assert.True(t, repository.IsUniqueViolation(err))

	require.NoError(t, discounts.Delete(ctx, first.ID))
	second := newDiscount()
	require.NoError(t, discounts.Create(ctx, second))
	assert.NotEqual(t, first.ID, second.ID)
}
