package store

import (
	"context"
	"sort"
	"sync"

	"github.com/xrplist/warden/core"
)

// MemoryStore is an in-memory implementation of every store port. It backs
// single-instance deployments and the test suite. All mutations happen under
// one mutex, which gives ConsumeChallenge its compare-and-set semantics.
type MemoryStore struct {
	mu          sync.Mutex
	challenges  map[string]core.Challenge
	admins      map[string]core.AdminAccount // keyed by address
	entries     map[string]core.AllowlistEntry
	entryWallet map[string]string // wallet address -> entry id
	collections map[string]core.Collection
	seq         uint64            // insertion counter for newest-first ties
	order       map[string]uint64 // record id -> insertion sequence
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges:  make(map[string]core.Challenge),
		admins:      make(map[string]core.AdminAccount),
		entries:     make(map[string]core.AllowlistEntry),
		entryWallet: make(map[string]string),
		collections: make(map[string]core.Collection),
		order:       make(map[string]uint64),
	}
}

func (s *MemoryStore) InsertChallenge(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.ID] = *challenge
	return nil
}

func (s *MemoryStore) GetChallenge(ctx context.Context, id string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[id]
	if !ok {
		return nil, core.ErrChallengeNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ConsumeChallenge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[id]
	if !ok {
		return core.ErrChallengeNotFound
	}
	if c.Used {
		return core.ErrChallengeUsed
	}
	c.Used = true
	s.challenges[id] = c
	return nil
}

func (s *MemoryStore) InsertAdmin(ctx context.Context, admin *core.AdminAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[admin.Address]; ok {
		return core.ErrDuplicateAdmin
	}
	s.admins[admin.Address] = *admin
	s.seq++
	s.order[admin.ID] = s.seq
	return nil
}

func (s *MemoryStore) GetAdmin(ctx context.Context, address string) (*core.AdminAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[address]
	if !ok {
		return nil, core.ErrAdminNotFound
	}
	return &a, nil
}

func (s *MemoryStore) DeleteAdmin(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[address]
	if !ok {
		return core.ErrAdminNotFound
	}
	delete(s.admins, address)
	delete(s.order, a.ID)
	return nil
}

func (s *MemoryStore) ListAdmins(ctx context.Context) ([]core.AdminAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.AdminAccount, 0, len(s.admins))
	for _, a := range s.admins {
		out = append(out, a)
	}
	s.sortNewestFirst(out, func(i int) string { return out[i].ID })
	return out, nil
}

func (s *MemoryStore) InsertEntry(ctx context.Context, entry *core.AllowlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entryWallet[entry.WalletAddress]; ok {
		return core.ErrDuplicateEntry
	}
	s.entries[entry.ID] = *entry
	s.entryWallet[entry.WalletAddress] = entry.ID
	s.seq++
	s.order[entry.ID] = s.seq
	return nil
}

func (s *MemoryStore) ListEntries(ctx context.Context) ([]core.AllowlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.AllowlistEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.sortNewestFirst(out, func(i int) string { return out[i].ID })
	return out, nil
}

func (s *MemoryStore) ClearEntries(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	for id := range s.entries {
		delete(s.order, id)
	}
	s.entries = make(map[string]core.AllowlistEntry)
	s.entryWallet = make(map[string]string)
	return n, nil
}

func (s *MemoryStore) InsertCollection(ctx context.Context, collection *core.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection.ID] = *collection
	s.seq++
	s.order[collection.ID] = s.seq
	return nil
}

func (s *MemoryStore) ListCollections(ctx context.Context) ([]core.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Collection, 0, len(s.collections))
	for _, c := range s.collections {
		out = append(out, c)
	}
	s.sortNewestFirst(out, func(i int) string { return out[i].ID })
	return out, nil
}

func (s *MemoryStore) DeleteCollection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[id]; !ok {
		return core.ErrCollectionNotFound
	}
	delete(s.collections, id)
	delete(s.order, id)
	return nil
}

func (s *MemoryStore) ClearCollections(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.collections)
	for id := range s.collections {
		delete(s.order, id)
	}
	s.collections = make(map[string]core.Collection)
	return n, nil
}

// sortNewestFirst orders a slice by descending insertion sequence. Callers
// hold the mutex.
func (s *MemoryStore) sortNewestFirst(slice interface{}, idAt func(int) string) {
	sort.SliceStable(slice, func(i, j int) bool {
		return s.order[idAt(i)] > s.order[idAt(j)]
	})
}
