package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/solaradmin/internal/api"
)

// PaginationMode says who slices an entity's list: the table (client) or
// the API (server).
type PaginationMode string

const (
	PaginateClient PaginationMode = "client"
	PaginateServer PaginationMode = "server"
)

// Screen describes one entity CRUD screen.
type Screen struct {
	Key      string // URL segment, e.g. "products"
	Group    string // sidebar group
	Label    string // plural heading
	Singular string // used in dialog titles and messages
	Order    int    // position within the group

	APIPath  string
	Envelope api.Envelope
	Mode     PaginationMode

	// SearchKey is the column the search box filters. Empty disables search.
	SearchKey string

	// ReadOnly screens have no create dialog. Orders are placed by customers.
	ReadOnly  bool
	NoDelete  bool
	Uploads   []string // upload kinds the entity form accepts, e.g. "brand-logo"
}

var (
	registry   = make(map[string]Screen)
	registryMu sync.RWMutex
)

// Register adds a screen to the registry.
// Panics if a screen with the same key is already registered.
func Register(s Screen) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[s.Key]; exists {
		panic(fmt.Sprintf("screen already registered: %s", s.Key))
	}
	if s.Mode == "" {
		s.Mode = PaginateClient
	}
	if s.Singular == "" {
		s.Singular = s.Label
	}

	registry[s.Key] = s
}

// Get returns a screen by key.
// Returns false if not found.
func Get(key string) (Screen, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[key]
	return s, ok
}

// All returns all registered screens, sorted by group, then order, then key.
func All() []Screen {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Screen, 0, len(registry))
	for _, s := range registry {
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Group != result[j].Group {
			return result[i].Group < result[j].Group
		}
		return less(result[i], result[j])
	})

	return result
}

// ByGroup returns the screens of one group in sidebar order.
func ByGroup(group string) []Screen {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []Screen
	for _, s := range registry {
		if s.Group == group {
			result = append(result, s)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return less(result[i], result[j])
	})

	return result
}

func less(a, b Screen) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.Key < b.Key
}

// Groups returns all unique group names.
// Sorted alphabetically.
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, s := range registry {
		seen[s.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// ForUpload returns the screen whose form accepts the upload kind.
func ForUpload(kind string) (Screen, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, s := range registry {
		for _, k := range s.Uploads {
			if k == kind {
				return s, true
			}
		}
	}
	return Screen{}, false
}

// ScreenCount returns the number of registered screens.
func ScreenCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered screens.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Screen)
}
