package memory

import (
	"context"
	"time"

	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ideaRecord struct {
	idea entity.Idea
}

type IdeaRepository struct {
	store   *Store
	records map[uuid.UUID]*ideaRecord
}

func cloneIdea(i entity.Idea) *entity.Idea {
	out := i
	out.Embedding = append([]float32(nil), i.Embedding...)
	if len(i.Embedding) == 0 {
		out.Embedding = nil
	}
	out.UseCases = append([]string(nil), i.UseCases...)
	out.EdgeCases = append([]string(nil), i.EdgeCases...)
	out.ImplementationNotes = append([]string(nil), i.ImplementationNotes...)
	if i.ClusterNumber != nil {
		n := *i.ClusterNumber
		out.ClusterNumber = &n
	}
	if i.DuplicateOfId != nil {
		id := *i.DuplicateOfId
		out.DuplicateOfId = &id
	}
	if i.ScoreRationale != nil {
		m := make(map[string]string, len(i.ScoreRationale))
		for k, v := range i.ScoreRationale {
			m[k] = v
		}
		out.ScoreRationale = m
	}
	clonePtr := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	out.ImpactScore = clonePtr(i.ImpactScore)
	out.FeasibilityScore = clonePtr(i.FeasibilityScore)
	out.EffortScore = clonePtr(i.EffortScore)
	out.StrategicFitScore = clonePtr(i.StrategicFitScore)
	out.RiskScore = clonePtr(i.RiskScore)
	out.CompositeScore = clonePtr(i.CompositeScore)
	return &out
}

func (r *IdeaRepository) CreateBulk(ctx context.Context, ideas []*entity.Idea) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, idea := range ideas {
		if idea.Id == uuid.Nil {
			idea.Id = uuid.New()
		}
		if idea.CreatedAt.IsZero() {
			idea.CreatedAt = time.Now()
		}
		r.records[idea.Id] = &ideaRecord{idea: *cloneIdea(*idea)}
	}
	return nil
}

func (r *IdeaRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, rec := range r.records {
		if rec.idea.SessionId == sessionId {
			delete(r.records, id)
		}
	}
	return nil
}

func (r *IdeaRepository) findLocked(specs ...specification.Specification) []*entity.Idea {
	f := buildFilter(specs)
	var out []*entity.Idea
	for id, rec := range r.records {
		if !f.matchesIds(id) {
			continue
		}
		if f.sessionId != nil && rec.idea.SessionId != *f.sessionId {
			continue
		}
		if f.finalOnly && !rec.idea.IsFinal {
			continue
		}
		out = append(out, cloneIdea(rec.idea))
	}
	switch f.orderBy {
	case "display_order":
		sortStable(out, func(a, b *entity.Idea) bool {
			if f.orderDesc {
				return a.DisplayOrder > b.DisplayOrder
			}
			return a.DisplayOrder < b.DisplayOrder
		})
	case "created_at":
		sortStable(out, func(a, b *entity.Idea) bool {
			if f.orderDesc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		})
	default:
		// Deterministic order for tests even without an explicit OrderBy.
		sortStable(out, func(a, b *entity.Idea) bool { return a.DisplayOrder < b.DisplayOrder })
	}
	return paginate(out, f)
}

func (r *IdeaRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Idea, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	matches := r.findLocked(specs...)
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *IdeaRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Idea, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.findLocked(specs...), nil
}

func (r *IdeaRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.findLocked(specs...))), nil
}

func (r *IdeaRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		rec.idea.Embedding = append([]float32(nil), embedding...)
	}
	return nil
}

func (r *IdeaRepository) AssignCluster(ctx context.Context, id uuid.UUID, clusterNumber int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		n := clusterNumber
		rec.idea.ClusterNumber = &n
	}
	return nil
}

func (r *IdeaRepository) UpdateEnrichment(ctx context.Context, id uuid.UUID, useCases, edgeCases, implementationNotes []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		rec.idea.UseCases = append([]string(nil), useCases...)
		rec.idea.EdgeCases = append([]string(nil), edgeCases...)
		rec.idea.ImplementationNotes = append([]string(nil), implementationNotes...)
	}
	return nil
}

func (r *IdeaRepository) UpdateScores(ctx context.Context, id uuid.UUID, scores entity.CriterionScores) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		impact, feasibility, effort := scores.Impact, scores.Feasibility, scores.Effort
		strategicFit, risk, composite := scores.StrategicFit, scores.Risk, scores.Composite
		rec.idea.ImpactScore = &impact
		rec.idea.FeasibilityScore = &feasibility
		rec.idea.EffortScore = &effort
		rec.idea.StrategicFitScore = &strategicFit
		rec.idea.RiskScore = &risk
		rec.idea.CompositeScore = &composite
		rec.idea.ScoreRationale = scores.Rationale
	}
	return nil
}

func (r *IdeaRepository) MarkDuplicate(ctx context.Context, id uuid.UUID, duplicateOfId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		canonical := duplicateOfId
		rec.idea.IsDuplicate = true
		rec.idea.DuplicateOfId = &canonical
		rec.idea.IsFinal = false
	}
	return nil
}

func (r *IdeaRepository) MarkFinal(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		rec.idea.IsDuplicate = false
		rec.idea.DuplicateOfId = nil
		rec.idea.IsFinal = true
	}
	return nil
}

func (r *IdeaRepository) UpdateContent(ctx context.Context, id uuid.UUID, title, description string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		rec.idea.Title = title
		rec.idea.Description = description
	}
	return nil
}
