package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"ai-ideation-be/internal/constant"
	"ai-ideation-be/internal/dto"
	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/pkg/logger"
	"ai-ideation-be/internal/pkg/serverutils"
	"ai-ideation-be/internal/repository/specification"
	"ai-ideation-be/internal/repository/unitofwork"
	"ai-ideation-be/pkg/events"
	"ai-ideation-be/pkg/ideation"
	pktNats "ai-ideation-be/pkg/nats"
)

// statusCacheTTL absorbs UI polling; the pipeline advances far slower
// than clients poll.
const statusCacheTTL = 2 * time.Second

type IIdeationService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetStatus(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionStatusResponse, error)
	GetDetail(ctx context.Context, userId uuid.UUID, id uuid.UUID, finalOnly bool) (*dto.SessionDetailResponse, error)
	List(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.ListSessionsResponse, error)
	Retry(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionStatusResponse, error)
	UpdateIdea(ctx context.Context, userId uuid.UUID, ideaId uuid.UUID, req *dto.UpdateIdeaRequest) (*dto.UpdateIdeaResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type ideationService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	statusCache      *cache.Cache
	logger           logger.ILogger
}

func NewIdeationService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IIdeationService {
	return &ideationService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		statusCache:      cache.New(statusCacheTTL, time.Minute),
		logger:           log,
	}
}

func (s *ideationService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	statement := strings.TrimSpace(req.ProblemStatement)
	if len(statement) < constant.MinProblemStatementLength {
		return nil, &ideation.ValidationError{
			Field:   "problem_statement",
			Message: "problem statement is too short",
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := entity.IdeationSession{
		Id:               uuid.New(),
		UserId:           userId,
		ProblemStatement: statement,
		Constraints:      orEmpty(req.Constraints),
		Goals:            orEmpty(req.Goals),
		ResearchInsights: orEmpty(req.ResearchInsights),
		KnowledgeBaseIds: orEmpty(req.KnowledgeBaseIds),
		Status:           constant.StatusPending,
		ProgressStep:     constant.StepPending,
		Confidence:       constant.ConfidenceHigh,
		CreatedAt:        time.Now(),
	}

	if err := uow.IdeationSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	if err := s.dispatchRun(ctx, session.Id); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.IdeationStarted{
			SessionId:  session.Id,
			UserId:     userId,
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("Ideation", "Failed to publish lifecycle event", map[string]interface{}{"event": evt.EventType(), "error": err.Error()})
		}
	}

	return &dto.CreateSessionResponse{
		Id:     session.Id,
		Status: session.Status,
	}, nil
}

func (s *ideationService) dispatchRun(ctx context.Context, sessionId uuid.UUID) error {
	payload, err := json.Marshal(dto.RunPipelineMessage{SessionId: sessionId})
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payload)
}

func (s *ideationService) GetStatus(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionStatusResponse, error) {
	cacheKey := userId.String() + ":" + id.String()
	if cached, found := s.statusCache.Get(cacheKey); found {
		res := cached.(dto.SessionStatusResponse)
		return &res, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.IdeationSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewRequestError(404, "Session not found")
	}

	res := statusOf(session)
	s.statusCache.Set(cacheKey, *res, statusCacheTTL)
	return res, nil
}

func (s *ideationService) GetDetail(ctx context.Context, userId uuid.UUID, id uuid.UUID, finalOnly bool) (*dto.SessionDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.IdeationSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewRequestError(404, "Session not found")
	}

	ideaSpecs := []specification.Specification{
		specification.BySessionID{SessionID: id},
		specification.OrderBy{Field: "display_order"},
	}
	if finalOnly {
		ideaSpecs = append(ideaSpecs, specification.FinalOnly{})
	}
	ideas, err := uow.IdeaRepository().FindAll(ctx, ideaSpecs...)
	if err != nil {
		return nil, err
	}

	clusters, err := uow.IdeaClusterRepository().FindAll(ctx,
		specification.BySessionID{SessionID: id},
		specification.OrderBy{Field: "cluster_number"},
	)
	if err != nil {
		return nil, err
	}

	res := dto.SessionDetailResponse{
		Session:  *sessionOf(session),
		Ideas:    make([]dto.IdeaResponse, 0, len(ideas)),
		Clusters: make([]dto.ClusterResponse, 0, len(clusters)),
	}
	for _, idea := range ideas {
		res.Ideas = append(res.Ideas, *ideaOf(idea))
	}
	for _, cluster := range clusters {
		res.Clusters = append(res.Clusters, dto.ClusterResponse{
			Id:               cluster.Id,
			ClusterNumber:    cluster.ClusterNumber,
			ThemeName:        cluster.ThemeName,
			ThemeDescription: cluster.ThemeDescription,
			IdeaCount:        cluster.IdeaCount,
		})
	}

	return &res, nil
}

func (s *ideationService) List(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.ListSessionsResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.IdeationSessionRepository()

	total, err := repo.Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	sessions, err := repo.FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	res := dto.ListSessionsResponse{
		Sessions: make([]dto.SessionStatusResponse, 0, len(sessions)),
		Total:    total,
	}
	for _, session := range sessions {
		res.Sessions = append(res.Sessions, *statusOf(session))
	}
	return &res, nil
}

func (s *ideationService) Retry(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.IdeationSessionRepository()

	session, err := repo.FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewRequestError(404, "Session not found")
	}
	if session.Status != constant.StatusFailed {
		return nil, serverutils.NewRequestError(409, "Only failed sessions can be retried")
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.IdeaRepository().DeleteBySessionId(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.IdeaClusterRepository().DeleteBySessionId(ctx, id); err != nil {
		return nil, err
	}

	ok, err := uow.IdeationSessionRepository().ResetForRetry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, serverutils.NewRequestError(409, "Session is no longer in failed state")
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.statusCache.Delete(userId.String() + ":" + id.String())

	if err := s.dispatchRun(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("Ideation", "Session retry dispatched", map[string]interface{}{"session_id": id})

	return &dto.SessionStatusResponse{
		Id:           id,
		Status:       constant.StatusPending,
		ProgressStep: constant.StepPending,
		Confidence:   constant.ConfidenceHigh,
	}, nil
}

func (s *ideationService) UpdateIdea(ctx context.Context, userId uuid.UUID, ideaId uuid.UUID, req *dto.UpdateIdeaRequest) (*dto.UpdateIdeaResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	idea, err := uow.IdeaRepository().FindOne(ctx, specification.ByID{ID: ideaId})
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, serverutils.NewRequestError(404, "Idea not found")
	}

	// Ownership runs through the session.
	session, err := uow.IdeationSessionRepository().FindOne(ctx,
		specification.ByID{ID: idea.SessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewRequestError(404, "Idea not found")
	}

	title := idea.Title
	description := idea.Description
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		description = strings.TrimSpace(*req.Description)
	}

	// A user override never re-triggers any pipeline step.
	if err := uow.IdeaRepository().UpdateContent(ctx, ideaId, title, description); err != nil {
		return nil, err
	}

	return &dto.UpdateIdeaResponse{
		Id:          ideaId,
		Title:       title,
		Description: description,
	}, nil
}

func (s *ideationService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.IdeationSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return serverutils.NewRequestError(404, "Session not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.IdeaRepository().DeleteBySessionId(ctx, id); err != nil {
		return err
	}
	if err := uow.IdeaClusterRepository().DeleteBySessionId(ctx, id); err != nil {
		return err
	}
	if err := uow.IdeationSessionRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.statusCache.Delete(userId.String() + ":" + id.String())
	return nil
}

// --- DTO mapping ---

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func statusOf(session *entity.IdeationSession) *dto.SessionStatusResponse {
	return &dto.SessionStatusResponse{
		Id:              session.Id,
		Status:          session.Status,
		ProgressStep:    session.ProgressStep,
		ProgressMessage: session.ProgressMessage,
		Confidence:      session.Confidence,
		ErrorMessage:    session.ErrorMessage,
	}
}

func sessionOf(session *entity.IdeationSession) *dto.SessionResponse {
	res := dto.SessionResponse{
		Id:               session.Id,
		ProblemStatement: session.ProblemStatement,
		Constraints:      session.Constraints,
		Goals:            session.Goals,
		ResearchInsights: session.ResearchInsights,
		KnowledgeBaseIds: session.KnowledgeBaseIds,
		Status:           session.Status,
		ProgressStep:     session.ProgressStep,
		ProgressMessage:  session.ProgressMessage,
		Confidence:       session.Confidence,
		ErrorMessage:     session.ErrorMessage,
		CreatedAt:        session.CreatedAt,
	}
	if session.StructuredProblem != nil {
		res.StructuredProblem = &dto.StructuredProblemResponse{
			ProblemCore:    session.StructuredProblem.ProblemCore,
			AffectedUsers:  session.StructuredProblem.AffectedUsers,
			CurrentMetrics: session.StructuredProblem.CurrentMetrics,
			DesiredOutcome: session.StructuredProblem.DesiredOutcome,
		}
	}
	if session.GenerationMetadata != nil {
		res.GenerationMetadata = &dto.GenerationMetadataResponse{
			LLMModel:           session.GenerationMetadata.LLMModel,
			EmbeddingModel:     session.GenerationMetadata.EmbeddingModel,
			GeneratedCount:     session.GenerationMetadata.GeneratedCount,
			DuplicatesRemoved:  session.GenerationMetadata.DuplicatesRemoved,
			EnrichmentFailures: session.GenerationMetadata.EnrichmentFailures,
			ScoringFallbacks:   session.GenerationMetadata.ScoringFallbacks,
			DurationMs:         session.GenerationMetadata.DurationMs,
		}
	}
	return &res
}

func ideaOf(idea *entity.Idea) *dto.IdeaResponse {
	return &dto.IdeaResponse{
		Id:                  idea.Id,
		Title:               idea.Title,
		Description:         idea.Description,
		Category:            idea.Category,
		EffortEstimate:      idea.EffortEstimate,
		ImpactEstimate:      idea.ImpactEstimate,
		ClusterNumber:       idea.ClusterNumber,
		UseCases:            orEmpty(idea.UseCases),
		EdgeCases:           orEmpty(idea.EdgeCases),
		ImplementationNotes: orEmpty(idea.ImplementationNotes),
		ImpactScore:         idea.ImpactScore,
		FeasibilityScore:    idea.FeasibilityScore,
		EffortScore:         idea.EffortScore,
		StrategicFitScore:   idea.StrategicFitScore,
		RiskScore:           idea.RiskScore,
		ScoreRationale:      idea.ScoreRationale,
		CompositeScore:      idea.CompositeScore,
		IsDuplicate:         idea.IsDuplicate,
		DuplicateOfId:       idea.DuplicateOfId,
		IsFinal:             idea.IsFinal,
		DisplayOrder:        idea.DisplayOrder,
	}
}
