// Package memory provides in-process dataset and user stores for development and tests.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
)

// Store keeps datasets and users in maps guarded by a single mutex.
// Deleting a user also deletes that user's datasets.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]core.Dataset
	users    map[string]auth.User
	now      func() time.Time
	last     time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		datasets: make(map[string]core.Dataset),
		users:    make(map[string]auth.User),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new dataset, assigning its ID and upload time.
func (s *Store) Create(_ context.Context, nd core.NewDataset) (*core.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := core.Dataset{
		ID:         uuid.New().String(),
		FileKey:    nd.FileKey,
		FileName:   nd.FileName,
		UploadedAt: s.tick(),
		Stats:      nd.Stats,
	}
	ds.TypeDistribution = maps.Clone(nd.Stats.TypeDistribution)

	if nd.UploaderID != "" {
		u, ok := s.users[nd.UploaderID]
		if !ok {
			return nil, auth.ErrUserNotFound
		}
		ds.Uploader = &core.Identity{ID: u.ID, Username: u.Username}
	}

	s.datasets[ds.ID] = ds
	return cloneDataset(ds), nil
}

// Get returns a copy of the dataset with id.
func (s *Store) Get(_ context.Context, id string) (*core.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneDataset(ds), nil
}

// List returns every dataset, newest first.
func (s *Store) List(_ context.Context) ([]core.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		out = append(out, *cloneDataset(ds))
	}
	sortNewestFirst(out)
	return out, nil
}

// Delete removes the dataset with id.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.datasets, id)
	return nil
}

// CreateUser adds a user. Usernames are unique.
func (s *Store) CreateUser(_ context.Context, username, passwordHash string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return nil, auth.ErrUsernameTaken
		}
	}

	u := auth.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	s.users[u.ID] = u
	return &u, nil
}

// GetUserByUsername looks a user up by exact username.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

// GetUserByID looks a user up by ID.
func (s *Store) GetUserByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &u, nil
}

// DeleteUser removes a user and every dataset they uploaded.
// It returns the file keys of the removed datasets.
func (s *Store) DeleteUser(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return nil, auth.ErrUserNotFound
	}
	delete(s.users, id)

	var keys []string
	for dsID, ds := range s.datasets {
		if ds.Uploader != nil && ds.Uploader.ID == id {
			keys = append(keys, ds.FileKey)
			delete(s.datasets, dsID)
		}
	}
	return keys, nil
}

// tick returns the current time, strictly after the previous call. Caller holds mu.
func (s *Store) tick() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func sortNewestFirst(list []core.Dataset) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})
}

func cloneDataset(ds core.Dataset) *core.Dataset {
	out := ds
	out.TypeDistribution = maps.Clone(ds.TypeDistribution)
	if ds.Uploader != nil {
		u := *ds.Uploader
		out.Uploader = &u
	}
	return &out
}
