package memory

import (
	"context"
	"time"

	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type clusterRecord struct {
	cluster entity.IdeaCluster
}

type ClusterRepository struct {
	store   *Store
	records map[uuid.UUID]*clusterRecord
}

func cloneCluster(c entity.IdeaCluster) *entity.IdeaCluster {
	out := c
	out.Centroid = append([]float32(nil), c.Centroid...)
	if len(c.Centroid) == 0 {
		out.Centroid = nil
	}
	return &out
}

func (r *ClusterRepository) CreateBulk(ctx context.Context, clusters []*entity.IdeaCluster) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, cluster := range clusters {
		if cluster.Id == uuid.Nil {
			cluster.Id = uuid.New()
		}
		if cluster.CreatedAt.IsZero() {
			cluster.CreatedAt = time.Now()
		}
		r.records[cluster.Id] = &clusterRecord{cluster: *cloneCluster(*cluster)}
	}
	return nil
}

func (r *ClusterRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, rec := range r.records {
		if rec.cluster.SessionId == sessionId {
			delete(r.records, id)
		}
	}
	return nil
}

func (r *ClusterRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IdeaCluster, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	f := buildFilter(specs)
	var out []*entity.IdeaCluster
	for id, rec := range r.records {
		if !f.matchesIds(id) {
			continue
		}
		if f.sessionId != nil && rec.cluster.SessionId != *f.sessionId {
			continue
		}
		out = append(out, cloneCluster(rec.cluster))
	}
	sortStable(out, func(a, b *entity.IdeaCluster) bool {
		return a.ClusterNumber < b.ClusterNumber
	})
	return paginate(out, f), nil
}

func (r *ClusterRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	clusters, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(clusters)), nil
}
