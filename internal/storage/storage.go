package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/emerssive/Chrome-Extension/internal/models"
)

// StoreEntry holds every candidate scraped from one store page.
type StoreEntry struct {
	StoreURL  string             `json:"storeUrl"`
	Products  []models.Candidate `json:"products"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ScrapeStore keeps scraped candidates per user and store URL until the user
// saves or clears them. One user never sees another user's entries. State is
// persisted as one JSON file.
type ScrapeStore struct {
	mu       sync.RWMutex
	entries  map[int64]map[string]*StoreEntry
	filename string
}

func NewScrapeStore(filename string) (*ScrapeStore, error) {
	s := &ScrapeStore{
		entries:  make(map[int64]map[string]*StoreEntry),
		filename: filename,
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load scrape store: %w", err)
	}

	return s, nil
}

// Append adds products to the user's entry for storeURL and returns the entry's new size.
func (s *ScrapeStore) Append(userID int64, storeURL string, products []models.Candidate) (int, error) {
	if storeURL == "" {
		return 0, fmt.Errorf("store URL is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stores, ok := s.entries[userID]
	if !ok {
		stores = make(map[string]*StoreEntry)
		s.entries[userID] = stores
	}

	entry, exists := stores[storeURL]
	if !exists {
		entry = &StoreEntry{StoreURL: storeURL, Products: make([]models.Candidate, 0, len(products))}
		stores[storeURL] = entry
	}

	entry.Products = append(entry.Products, products...)
	entry.UpdatedAt = time.Now()

	if err := s.save(); err != nil {
		return 0, err
	}
	return len(entry.Products), nil
}

// Get returns a copy of the products the user stored for storeURL.
func (s *ScrapeStore) Get(userID int64, storeURL string) []models.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[userID][storeURL]
	if !exists {
		return []models.Candidate{}
	}

	products := make([]models.Candidate, len(entry.Products))
	copy(products, entry.Products)
	return products
}

// Clear removes the user's entry for storeURL. It reports whether an entry existed.
func (s *ScrapeStore) Clear(userID int64, storeURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stores := s.entries[userID]
	if _, exists := stores[storeURL]; !exists {
		return false, nil
	}

	delete(stores, storeURL)
	if len(stores) == 0 {
		delete(s.entries, userID)
	}
	return true, s.save()
}

func (s *ScrapeStore) StoreURLs(userID int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stores := s.entries[userID]
	urls := make([]string, 0, len(stores))
	for u := range stores {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

func (s *ScrapeStore) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file first for atomicity
	tmpFile := s.filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpFile, s.filename)
}

func (s *ScrapeStore) Load() error {
	data, err := os.ReadFile(s.filename)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &s.entries)
}
