// Package memory provides in-memory implementations of the repository
// contracts. They back the service and pipeline tests, where spinning up
// Postgres with the pgvector extension is not worth the cost.
package memory

import (
	"context"
	"sort"
	"sync"

	"ai-ideation-be/internal/repository/contract"
	"ai-ideation-be/internal/repository/specification"
	"ai-ideation-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// filter is the in-memory counterpart of a gorm specification. Only the
// specification types the services actually use are interpreted here.
type filter struct {
	id        *uuid.UUID
	ids       []uuid.UUID
	sessionId *uuid.UUID
	userId    *uuid.UUID
	finalOnly bool
	orderBy   string
	orderDesc bool
	limit     int
	offset    int
}

func buildFilter(specs []specification.Specification) filter {
	f := filter{limit: -1}
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id := s.ID
			f.id = &id
		case specification.ByIDs:
			f.ids = s.IDs
		case specification.BySessionID:
			id := s.SessionID
			f.sessionId = &id
		case specification.UserOwnedBy:
			id := s.UserID
			f.userId = &id
		case specification.FinalOnly:
			f.finalOnly = true
		case specification.OrderBy:
			f.orderBy = s.Field
			f.orderDesc = s.Desc
		case specification.Pagination:
			f.limit = s.Limit
			f.offset = s.Offset
		}
	}
	return f
}

func (f filter) matchesIds(id uuid.UUID) bool {
	if f.id != nil && *f.id != id {
		return false
	}
	if len(f.ids) > 0 {
		found := false
		for _, candidate := range f.ids {
			if candidate == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func paginate[T any](items []T, f filter) []T {
	if f.offset > 0 {
		if f.offset >= len(items) {
			return nil
		}
		items = items[f.offset:]
	}
	if f.limit >= 0 && f.limit < len(items) {
		items = items[:f.limit]
	}
	return items
}

func sortStable[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// Store bundles the three repositories over one mutex so tests observe a
// consistent view, mirroring what a single database gives the real impls.
type Store struct {
	mu       sync.RWMutex
	sessions *SessionRepository
	ideas    *IdeaRepository
	clusters *ClusterRepository
}

func NewStore() *Store {
	s := &Store{}
	s.sessions = &SessionRepository{store: s, records: make(map[uuid.UUID]*sessionRecord)}
	s.ideas = &IdeaRepository{store: s, records: make(map[uuid.UUID]*ideaRecord)}
	s.clusters = &ClusterRepository{store: s, records: make(map[uuid.UUID]*clusterRecord)}
	return s
}

func (s *Store) SessionRepository() contract.IdeationSessionRepository {
	return s.sessions
}

func (s *Store) IdeaRepository() contract.IdeaRepository {
	return s.ideas
}

func (s *Store) ClusterRepository() contract.IdeaClusterRepository {
	return s.clusters
}

// unitOfWork adapts the Store to the unitofwork contract. There is no
// real transaction; Begin/Commit/Rollback are no-ops.
type unitOfWork struct {
	store *Store
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) IdeationSessionRepository() contract.IdeationSessionRepository {
	return u.store.sessions
}

func (u *unitOfWork) IdeaRepository() contract.IdeaRepository {
	return u.store.ideas
}

func (u *unitOfWork) IdeaClusterRepository() contract.IdeaClusterRepository {
	return u.store.clusters
}

type repositoryFactory struct {
	store *Store
}

// NewRepositoryFactory exposes the Store through the same factory
// interface the gorm-backed implementation uses.
func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &repositoryFactory{store: store}
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}
