package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL and skips the test when it is unset.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := New(ctx, Config{DSN: dsn, MaxConns: 4})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))

	t.Cleanup(db.Close)
	return db
}

func createTestUser(t *testing.T, db *DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user-%d@example.com", time.Now().UnixNano())
	u, err := db.CreateUser(context.Background(), "Test User", email, "hash")
	require.NoError(t, err)
	return u
}

func TestDB_Users(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, db)
	assert.NotZero(t, u.ID)

	_, err := db.CreateUser(ctx, "Other", u.Email, "hash")
	assert.ErrorIs(t, err, ErrUserExists)

	found, err := db.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = db.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDB_RegistryProducts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	outbox := NewOutboxRepository(db)

	owner := createTestUser(t, db)
	stranger := createTestUser(t, db)

	reg := &models.Registry{UserID: owner.ID, Name: "Wedding"}
	require.NoError(t, db.CreateRegistry(ctx, reg))

	_, err := db.GetRegistry(ctx, reg.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	rating := 4.5
	lamp := &models.SavedProduct{
		Name:   "Desk Lamp",
		Price:  decimal.RequireFromString("24.99"),
		Rating: &rating,
	}
	err = db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := db.InsertProductTx(ctx, tx, lamp); err != nil {
			return err
		}
		if err := db.LinkRegistryProductTx(ctx, tx, reg.ID, lamp.ID); err != nil {
			return err
		}
		return outbox.InsertWithTx(ctx, tx, &OutboxEvent{
			AggregateType: "registry_product",
			AggregateID:   fmt.Sprint(lamp.ID),
			EventType:     "PRODUCT_SAVED",
			Payload:       json.RawMessage(`{}`),
		})
	})
	require.NoError(t, err)

	got, err := db.GetProduct(ctx, lamp.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.RegistryID)
	assert.True(t, lamp.Price.Equal(got.Price))

	minRating := 4.0
	page, err := db.ListProducts(ctx, ProductFilter{UserID: owner.ID, Query: "lamp", MinRating: &minRating})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)

	page, err = db.ListProducts(ctx, ProductFilter{UserID: stranger.ID})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	err = db.Transaction(ctx, func(tx pgx.Tx) error {
		_, err := db.DeleteProductTx(ctx, tx, lamp.ID, stranger.ID)
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.Transaction(ctx, func(tx pgx.Tx) error {
		_, err := db.DeleteProductTx(ctx, tx, lamp.ID, owner.ID)
		return err
	})
	require.NoError(t, err)

	_, err = db.GetProduct(ctx, lamp.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDB_TransactionRollback(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db)
	reg := &models.Registry{UserID: owner.ID, Name: "Birthday"}
	require.NoError(t, db.CreateRegistry(ctx, reg))

	p := &models.SavedProduct{Name: "Kite", Price: decimal.NewFromInt(15)}
	err := db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := db.InsertProductTx(ctx, tx, p); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	_, err = db.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDB_PriceKeepsScale(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, raw := range []string{"1.234", "12345678901.5", "0.0001"} {
		p := &models.SavedProduct{Name: "Priced " + raw, Price: decimal.RequireFromString(raw)}
		require.NoError(t, db.Transaction(ctx, func(tx pgx.Tx) error {
			return db.InsertProductTx(ctx, tx, p)
		}), raw)

		got, err := db.GetProduct(ctx, p.ID)
		require.NoError(t, err, raw)
		assert.True(t, p.Price.Equal(got.Price), "%s stored as %s", raw, got.Price)
	}
}
