package storage

import (
	"path/filepath"
	"testing"

	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(name string, price float64) models.Candidate {
	return models.Candidate{Name: name, Price: decimal.NewFromFloat(price)}
}

func TestScrapeStore_AppendGetClear(t *testing.T) {
	file := filepath.Join(t.TempDir(), "scrapes.json")
	store, err := NewScrapeStore(file)
	require.NoError(t, err)

	const shop = "https://shop.example.com/catalog"

	n, err := store.Append(1, shop, []models.Candidate{candidate("Lamp", 10)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.Append(1, shop, []models.Candidate{candidate("Chair", 20), candidate("Desk", 30)})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	products := store.Get(1, shop)
	require.Len(t, products, 3)
	assert.Equal(t, "Lamp", products[0].Name)
	assert.Equal(t, "Desk", products[2].Name)

	assert.Empty(t, store.Get(1, "https://unknown.example.com"))
	assert.Equal(t, []string{shop}, store.StoreURLs(1))

	existed, err := store.Clear(1, shop)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Empty(t, store.Get(1, shop))

	existed, err = store.Clear(1, shop)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestScrapeStore_PersistsAcrossInstances(t *testing.T) {
	file := filepath.Join(t.TempDir(), "scrapes.json")

	first, err := NewScrapeStore(file)
	require.NoError(t, err)
	_, err = first.Append(7, "https://a.example.com", []models.Candidate{candidate("Mug", 4.5)})
	require.NoError(t, err)

	second, err := NewScrapeStore(file)
	require.NoError(t, err)
	products := second.Get(7, "https://a.example.com")
	require.Len(t, products, 1)
	assert.Equal(t, "Mug", products[0].Name)
	assert.True(t, decimal.NewFromFloat(4.5).Equal(products[0].Price))
}

func TestScrapeStore_GetReturnsCopy(t *testing.T) {
	store, err := NewScrapeStore(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)
	_, err = store.Append(1, "u", []models.Candidate{candidate("A", 1)})
	require.NoError(t, err)

	got := store.Get(1, "u")
	got[0].Name = "mutated"
	assert.Equal(t, "A", store.Get(1, "u")[0].Name)
}

func TestScrapeStore_RequiresStoreURL(t *testing.T) {
	store, err := NewScrapeStore(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)

	_, err = store.Append(1, "", nil)
	assert.Error(t, err)
}

func TestScrapeStore_EntriesArePerUser(t *testing.T) {
	store, err := NewScrapeStore(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)

	const shop = "https://shop.example.com/"
	_, err = store.Append(1, shop, []models.Candidate{candidate("Private", 5)})
	require.NoError(t, err)

	assert.Empty(t, store.Get(2, shop))
	assert.Empty(t, store.StoreURLs(2))

	existed, err := store.Clear(2, shop)
	require.NoError(t, err)
	assert.False(t, existed)
	require.Len(t, store.Get(1, shop), 1)

	n, err := store.Append(2, shop, []models.Candidate{candidate("Other", 6)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Private", store.Get(1, shop)[0].Name)
}
