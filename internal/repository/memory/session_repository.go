package memory

import (
	"context"
	"time"

	"ai-ideation-be/internal/constant"
	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/repository/specification"

	"github.com/google/uuid"
)

type sessionRecord struct {
	session entity.IdeationSession
}

type SessionRepository struct {
	store   *Store
	records map[uuid.UUID]*sessionRecord
}

func cloneSession(s entity.IdeationSession) *entity.IdeationSession {
	out := s
	out.Constraints = append([]string(nil), s.Constraints...)
	out.Goals = append([]string(nil), s.Goals...)
	out.ResearchInsights = append([]string(nil), s.ResearchInsights...)
	out.KnowledgeBaseIds = append([]string(nil), s.KnowledgeBaseIds...)
	if s.StructuredProblem != nil {
		sp := *s.StructuredProblem
		out.StructuredProblem = &sp
	}
	if s.GenerationMetadata != nil {
		gm := *s.GenerationMetadata
		out.GenerationMetadata = &gm
	}
	return &out
}

func (r *SessionRepository) Create(ctx context.Context, session *entity.IdeationSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.records[session.Id] = &sessionRecord{session: *cloneSession(*session)}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *SessionRepository) findLocked(specs ...specification.Specification) []*entity.IdeationSession {
	f := buildFilter(specs)
	var out []*entity.IdeationSession
	for id, rec := range r.records {
		if !f.matchesIds(id) {
			continue
		}
		if f.userId != nil && rec.session.UserId != *f.userId {
			continue
		}
		out = append(out, cloneSession(rec.session))
	}
	if f.orderBy == "created_at" {
		sortStable(out, func(a, b *entity.IdeationSession) bool {
			if f.orderDesc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		})
	}
	return paginate(out, f)
}

func (r *SessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IdeationSession, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	matches := r.findLocked(specs...)
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *SessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IdeationSession, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.findLocked(specs...), nil
}

func (r *SessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.findLocked(specs...))), nil
}

func (r *SessionRepository) AdvanceProgress(ctx context.Context, id uuid.UUID, status string, step int, message string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return false, nil
	}
	if rec.session.ProgressStep > step || rec.session.Status == constant.StatusCompleted {
		return false, nil
	}
	rec.session.Status = status
	rec.session.ProgressStep = step
	rec.session.ProgressMessage = message
	return true, nil
}

func (r *SessionRepository) MarkFailed(ctx context.Context, id uuid.UUID, step int, errorMessage string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return false, nil
	}
	if rec.session.ProgressStep > step ||
		rec.session.Status == constant.StatusCompleted ||
		rec.session.Status == constant.StatusFailed {
		return false, nil
	}
	rec.session.Status = constant.StatusFailed
	rec.session.ErrorMessage = errorMessage
	return true, nil
}

func (r *SessionRepository) ResetForRetry(ctx context.Context, id uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.session.Status != constant.StatusFailed {
		return false, nil
	}
	rec.session.Status = constant.StatusPending
	rec.session.ProgressStep = constant.StepPending
	rec.session.ProgressMessage = ""
	rec.session.Confidence = constant.ConfidenceHigh
	rec.session.ErrorMessage = ""
	rec.session.StructuredProblem = nil
	rec.session.GenerationMetadata = nil
	return true, nil
}

func (r *SessionRepository) UpdateStructuredProblem(ctx context.Context, id uuid.UUID, problem *entity.StructuredProblem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		if problem == nil {
			rec.session.StructuredProblem = nil
		} else {
			sp := *problem
			rec.session.StructuredProblem = &sp
		}
	}
	return nil
}

func (r *SessionRepository) UpdateConfidence(ctx context.Context, id uuid.UUID, confidence string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		rec.session.Confidence = confidence
	}
	return nil
}

func (r *SessionRepository) UpdateGenerationMetadata(ctx context.Context, id uuid.UUID, metadata *entity.GenerationMetadata) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		if metadata == nil {
			rec.session.GenerationMetadata = nil
		} else {
			gm := *metadata
			rec.session.GenerationMetadata = &gm
		}
	}
	return nil
}
