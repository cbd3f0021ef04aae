package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tippleai/models"
)

// PreferenceStore keeps per-user favorite ingredients and cocktails. All
// implementations guarantee that mutations for one user are linearizable with
// respect to each other, and that absent users or items never produce errors.
type PreferenceStore interface {
	// Add unions the given items into the user's sets, creating the user
	// entry if needed, and returns the items that were not stored before.
	Add(ctx context.Context, userID string, ingredients, cocktails []string) (*models.DetectedPreferences, error)

	// Remove deletes the given items; removing a non-member is a no-op.
	Remove(ctx context.Context, userID string, ingredients, cocktails []string) error

	// Get returns a snapshot of the user's sets. Unknown users yield empty
	// sets, not an error.
	Get(ctx context.Context, userID string) (models.PreferenceSnapshot, error)
}

// MemoryPreferenceStore is the in-process PreferenceStore. A read lock guards
// the user map; each user entry carries its own mutex so unrelated users
// mutate in parallel.
type MemoryPreferenceStore struct {
	mu    sync.RWMutex
	users map[string]*userEntry
}

type userEntry struct {
	mu          sync.Mutex
	ingredients map[string]struct{}
	cocktails   map[string]struct{}
}

func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{users: make(map[string]*userEntry)}
}

func (s *MemoryPreferenceStore) entry(userID string, create bool) *userEntry {
	s.mu.RLock()
	entry := s.users[userID]
	s.mu.RUnlock()
	if entry != nil || !create {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry = s.users[userID]; entry == nil {
		entry = &userEntry{
			ingredients: make(map[string]struct{}),
			cocktails:   make(map[string]struct{}),
		}
		s.users[userID] = entry
	}
	return entry
}

func (s *MemoryPreferenceStore) Add(ctx context.Context, userID string, ingredients, cocktails []string) (*models.DetectedPreferences, error) {
	entry := s.entry(userID, true)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	added := &models.DetectedPreferences{}
	for _, item := range normalizeItems(ingredients) {
		if _, ok := entry.ingredients[item]; !ok {
			entry.ingredients[item] = struct{}{}
			added.Ingredients = append(added.Ingredients, item)
		}
	}
	for _, item := range normalizeItems(cocktails) {
		if _, ok := entry.cocktails[item]; !ok {
			entry.cocktails[item] = struct{}{}
			added.Cocktails = append(added.Cocktails, item)
		}
	}
	return added, nil
}

func (s *MemoryPreferenceStore) Remove(ctx context.Context, userID string, ingredients, cocktails []string) error {
	entry := s.entry(userID, false)
	if entry == nil {
		return nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	for _, item := range normalizeItems(ingredients) {
		delete(entry.ingredients, item)
	}
	for _, item := range normalizeItems(cocktails) {
		delete(entry.cocktails, item)
	}
	return nil
}

func (s *MemoryPreferenceStore) Get(ctx context.Context, userID string) (models.PreferenceSnapshot, error) {
	entry := s.entry(userID, false)
	if entry == nil {
		return models.PreferenceSnapshot{Ingredients: []string{}, Cocktails: []string{}}, nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	return models.PreferenceSnapshot{
		Ingredients: sortedKeys(entry.ingredients),
		Cocktails:   sortedKeys(entry.cocktails),
	}, nil
}

func normalizeItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
