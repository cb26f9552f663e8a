package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ai-ideation-be/internal/constant"
	"ai-ideation-be/internal/dto"
	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/pkg/logger"
	"ai-ideation-be/internal/repository/specification"
	"ai-ideation-be/internal/repository/unitofwork"
	"ai-ideation-be/pkg/embedding"
	"ai-ideation-be/pkg/events"
	"ai-ideation-be/pkg/ideation"
	pktNats "ai-ideation-be/pkg/nats"
)

// ProgressNotifier pushes live progress snapshots to watchers. Typically
// implemented by the websocket Hub.
type ProgressNotifier interface {
	Publish(update dto.ProgressUpdate)
}

// ContextFetcher retrieves knowledge-base text used as extra prompt
// context. The retrieval mechanism itself lives outside this service.
type ContextFetcher interface {
	FetchContext(ctx context.Context, knowledgeBaseIds []string, query string) (string, error)
}

type IPipelineService interface {
	// Run executes the full pipeline for one session. It never returns an
	// error: every failure ends in the session's own failed state.
	Run(ctx context.Context, sessionId uuid.UUID)
}

type pipelineService struct {
	uowFactory        unitofwork.RepositoryFactory
	parser            *ideation.ProblemParser
	generator         *ideation.IdeaGenerator
	clusterEngine     *ideation.ClusterEngine
	enrichmentEngine  *ideation.EnrichmentEngine
	scoringEngine     *ideation.ScoringEngine
	embeddingProvider embedding.EmbeddingProvider
	embeddingTimeout  time.Duration
	contextFetcher    ContextFetcher
	eventPublisher    *pktNats.Publisher
	notifier          ProgressNotifier
	logger            logger.ILogger
	llmModel          string
	embeddingModel    string
}

type PipelineDeps struct {
	UowFactory        unitofwork.RepositoryFactory
	Completions       *ideation.CompletionClient
	EmbeddingProvider embedding.EmbeddingProvider
	EmbeddingTimeout  time.Duration
	Workers           int
	ContextFetcher    ContextFetcher // optional
	EventPublisher    *pktNats.Publisher
	Notifier          ProgressNotifier // optional
	Logger            logger.ILogger
	LLMModel          string
	EmbeddingModel    string
}

func NewPipelineService(deps PipelineDeps) IPipelineService {
	return &pipelineService{
		uowFactory:        deps.UowFactory,
		parser:            ideation.NewProblemParser(deps.Completions),
		generator:         ideation.NewIdeaGenerator(deps.Completions),
		clusterEngine:     ideation.NewClusterEngine(deps.Completions),
		enrichmentEngine:  ideation.NewEnrichmentEngine(deps.Completions, deps.Workers),
		scoringEngine:     ideation.NewScoringEngine(deps.Completions, deps.Workers),
		embeddingProvider: deps.EmbeddingProvider,
		embeddingTimeout:  deps.EmbeddingTimeout,
		contextFetcher:    deps.ContextFetcher,
		eventPublisher:    deps.EventPublisher,
		notifier:          deps.Notifier,
		logger:            deps.Logger,
		llmModel:          deps.LLMModel,
		embeddingModel:    deps.EmbeddingModel,
	}
}

// run tracks the state of one pipeline execution. The service is the
// single writer of session status/progress during the run.
type run struct {
	svc        *pipelineService
	uow        unitofwork.UnitOfWork
	session    *entity.IdeationSession
	confidence string
	metadata   entity.GenerationMetadata
	startedAt  time.Time
}

func (s *pipelineService) Run(ctx context.Context, sessionId uuid.UUID) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.IdeationSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		s.logger.Error("Pipeline", "Failed to load session", map[string]interface{}{"session_id": sessionId, "error": err.Error()})
		return
	}
	if session == nil {
		s.logger.Warn("Pipeline", "Session not found, dropping run", map[string]interface{}{"session_id": sessionId})
		return
	}

	r := &run{
		svc:        s,
		uow:        uow,
		session:    session,
		confidence: constant.ConfidenceHigh,
		startedAt:  time.Now(),
		metadata: entity.GenerationMetadata{
			LLMModel:       s.llmModel,
			EmbeddingModel: s.embeddingModel,
		},
	}

	r.execute(ctx)
}

func (r *run) execute(ctx context.Context) {
	contextText := r.fetchContext(ctx)

	problem, ok := r.parse(ctx, contextText)
	if !ok {
		return
	}

	ideas, ok := r.generate(ctx, problem, contextText)
	if !ok {
		return
	}

	ideas, ok = r.cluster(ctx, ideas)
	if !ok {
		return
	}

	if !r.enrich(ctx, problem, ideas) {
		return
	}

	ideas, ok = r.score(ctx, problem, ideas)
	if !ok {
		return
	}

	if !r.deduplicate(ctx, ideas) {
		return
	}

	r.complete(ctx)
}

// advance persists the new status/step before the step runs. A false
// return means a concurrent writer already moved the session past this
// point; the stale run stops quietly.
func (r *run) advance(ctx context.Context, status string, step int, message string) bool {
	ok, err := r.uow.IdeationSessionRepository().AdvanceProgress(ctx, r.session.Id, status, step, message)
	if err != nil {
		r.fail(ctx, step, fmt.Errorf("persist progress: %w", err))
		return false
	}
	if !ok {
		r.svc.logger.Warn("Pipeline", "Stale progress write rejected, aborting run", map[string]interface{}{
			"session_id": r.session.Id,
			"step":       step,
		})
		return false
	}

	r.notify(dto.ProgressUpdate{
		SessionId:       r.session.Id,
		Status:          status,
		ProgressStep:    step,
		ProgressMessage: message,
		Confidence:      r.confidence,
	})
	return true
}

func (r *run) fail(ctx context.Context, step int, cause error) {
	r.svc.logger.Error("Pipeline", "Run failed", map[string]interface{}{
		"session_id": r.session.Id,
		"step":       step,
		"error":      cause.Error(),
		"retryable":  ideation.IsRetryable(cause),
	})

	if _, err := r.uow.IdeationSessionRepository().MarkFailed(ctx, r.session.Id, step, cause.Error()); err != nil {
		r.svc.logger.Error("Pipeline", "Failed to persist failure", map[string]interface{}{"session_id": r.session.Id, "error": err.Error()})
	}

	r.notify(dto.ProgressUpdate{
		SessionId:       r.session.Id,
		Status:          constant.StatusFailed,
		ProgressStep:    step,
		ProgressMessage: "Pipeline failed",
		Confidence:      r.confidence,
		ErrorMessage:    cause.Error(),
	})

	r.publishEvent(ctx, events.IdeationFailed{
		SessionId:  r.session.Id,
		UserId:     r.session.UserId,
		Reason:     cause.Error(),
		Retryable:  ideation.IsRetryable(cause),
		OccurredAt: time.Now(),
	})
}

// degrade folds an observed degradation into the run's confidence, which
// only ever moves downward.
func (r *run) degrade(level string) {
	if r.confidence == constant.ConfidenceLow {
		return
	}
	if level == constant.ConfidenceLow || r.confidence == constant.ConfidenceHigh {
		r.confidence = level
	}
}

func (r *run) fetchContext(ctx context.Context) string {
	if r.svc.contextFetcher == nil || len(r.session.KnowledgeBaseIds) == 0 {
		return ""
	}
	text, err := r.svc.contextFetcher.FetchContext(ctx, r.session.KnowledgeBaseIds, r.session.ProblemStatement)
	if err != nil {
		// Context is an enhancement, never a reason to fail the run.
		r.svc.logger.Warn("Pipeline", "Context fetch failed, continuing without", map[string]interface{}{
			"session_id": r.session.Id,
			"error":      err.Error(),
		})
		return ""
	}
	return text
}

func (r *run) parse(ctx context.Context, contextText string) (*entity.StructuredProblem, bool) {
	if !r.advance(ctx, constant.StatusParsing, constant.StepParsing, "Analyzing problem statement") {
		return nil, false
	}

	problem, degraded, err := r.svc.parser.Parse(ctx, r.session, contextText)
	if err != nil {
		r.fail(ctx, constant.StepParsing, err)
		return nil, false
	}
	if degraded {
		r.degrade(constant.ConfidenceLow)
	}

	if err := r.uow.IdeationSessionRepository().UpdateStructuredProblem(ctx, r.session.Id, problem); err != nil {
		r.fail(ctx, constant.StepParsing, err)
		return nil, false
	}

	return problem, true
}

func (r *run) generate(ctx context.Context, problem *entity.StructuredProblem, contextText string) ([]*entity.Idea, bool) {
	if !r.advance(ctx, constant.StatusGenerating, constant.StepGenerating, "Generating ideas") {
		return nil, false
	}

	drafts, degraded, err := r.svc.generator.Generate(ctx, problem, r.session, contextText)
	if err != nil {
		r.fail(ctx, constant.StepGenerating, err)
		return nil, false
	}
	if degraded {
		r.degrade(constant.ConfidenceMedium)
	}

	now := time.Now()
	ideas := make([]*entity.Idea, len(drafts))
	for i, draft := range drafts {
		ideas[i] = &entity.Idea{
			Id:                  uuid.New(),
			SessionId:           r.session.Id,
			Title:               draft.Title,
			Description:         draft.Description,
			Category:            draft.Category,
			EffortEstimate:      draft.EffortEstimate,
			ImpactEstimate:      draft.ImpactEstimate,
			UseCases:            []string{},
			EdgeCases:           []string{},
			ImplementationNotes: []string{},
			DisplayOrder:        i,
			CreatedAt:           now,
		}
	}

	if err := r.uow.IdeaRepository().CreateBulk(ctx, ideas); err != nil {
		r.fail(ctx, constant.StepGenerating, err)
		return nil, false
	}
	r.metadata.GeneratedCount = len(ideas)

	return ideas, true
}

func (r *run) cluster(ctx context.Context, ideas []*entity.Idea) ([]*entity.Idea, bool) {
	if !r.advance(ctx, constant.StatusClustering, constant.StepClustering, "Grouping ideas into themes") {
		return nil, false
	}

	titles := make([]string, len(ideas))
	embeddings := make([][]float32, len(ideas))
	for i, idea := range ideas {
		vec, err := r.embedIdea(ctx, idea)
		if err != nil {
			r.fail(ctx, constant.StepClustering, err)
			return nil, false
		}
		titles[i] = idea.Title
		embeddings[i] = vec
		idea.Embedding = vec

		if err := r.uow.IdeaRepository().UpdateEmbedding(ctx, idea.Id, vec); err != nil {
			r.fail(ctx, constant.StepClustering, err)
			return nil, false
		}
	}

	result, err := r.svc.clusterEngine.Cluster(ctx, titles, embeddings)
	if err != nil {
		r.fail(ctx, constant.StepClustering, err)
		return nil, false
	}

	now := time.Now()
	clusters := make([]*entity.IdeaCluster, len(result.Clusters))
	for i, summary := range result.Clusters {
		clusters[i] = &entity.IdeaCluster{
			Id:               uuid.New(),
			SessionId:        r.session.Id,
			ClusterNumber:    summary.Number,
			ThemeName:        summary.ThemeName,
			ThemeDescription: summary.ThemeDescription,
			IdeaCount:        len(summary.MemberIndexes),
			Centroid:         summary.Centroid,
			CreatedAt:        now,
		}
	}
	if err := r.uow.IdeaClusterRepository().CreateBulk(ctx, clusters); err != nil {
		r.fail(ctx, constant.StepClustering, err)
		return nil, false
	}

	for i, idea := range ideas {
		number := result.Assignments[i]
		if err := r.uow.IdeaRepository().AssignCluster(ctx, idea.Id, number); err != nil {
			r.fail(ctx, constant.StepClustering, err)
			return nil, false
		}
		n := number
		idea.ClusterNumber = &n
	}

	return ideas, true
}

func (r *run) embedIdea(ctx context.Context, idea *entity.Idea) ([]float32, error) {
	cctx, cancel := context.WithTimeout(ctx, r.svc.embeddingTimeout)
	defer cancel()

	text := idea.Title + "\n" + idea.Description
	res, err := r.svc.embeddingProvider.Generate(cctx, text, "SEMANTIC_SIMILARITY")
	if err != nil {
		return nil, &ideation.ExternalServiceError{Service: "embedding", Err: err}
	}
	if len(res.Embedding.Values) == 0 {
		return nil, &ideation.MalformedResponseError{Err: fmt.Errorf("empty embedding for idea %s", idea.Id)}
	}

	return embedding.NormalizeVector(res.Embedding.Values), nil
}

func (r *run) enrich(ctx context.Context, problem *entity.StructuredProblem, ideas []*entity.Idea) bool {
	if !r.advance(ctx, constant.StatusEnriching, constant.StepEnriching, "Enriching ideas with details") {
		return false
	}

	values := make([]entity.Idea, len(ideas))
	for i, idea := range ideas {
		values[i] = *idea
	}

	result, err := r.svc.enrichmentEngine.Enrich(ctx, problem, values)
	if err != nil {
		r.fail(ctx, constant.StepEnriching, err)
		return false
	}

	for _, idea := range ideas {
		enrichment, ok := result.ByID[idea.Id]
		if !ok {
			continue // failed ideas keep their empty lists
		}
		if err := r.uow.IdeaRepository().UpdateEnrichment(ctx, idea.Id, enrichment.UseCases, enrichment.EdgeCases, enrichment.ImplementationNotes); err != nil {
			r.fail(ctx, constant.StepEnriching, err)
			return false
		}
		idea.UseCases = enrichment.UseCases
		idea.EdgeCases = enrichment.EdgeCases
		idea.ImplementationNotes = enrichment.ImplementationNotes
	}

	r.metadata.EnrichmentFailures = result.Failed
	if result.Failed*2 > result.Total {
		r.degrade(constant.ConfidenceLow)
	} else if result.Failed > 0 {
		r.degrade(constant.ConfidenceMedium)
	}

	return true
}

func (r *run) score(ctx context.Context, problem *entity.StructuredProblem, ideas []*entity.Idea) ([]*entity.Idea, bool) {
	if !r.advance(ctx, constant.StatusScoring, constant.StepScoring, "Scoring ideas") {
		return nil, false
	}

	values := make([]entity.Idea, len(ideas))
	for i, idea := range ideas {
		values[i] = *idea
	}

	result, err := r.svc.scoringEngine.Score(ctx, problem, values)
	if err != nil {
		r.fail(ctx, constant.StepScoring, err)
		return nil, false
	}

	for _, idea := range ideas {
		scores, ok := result.ByID[idea.Id]
		if !ok {
			r.fail(ctx, constant.StepScoring, &ideation.PipelineInternalError{Message: "missing score for idea " + idea.Id.String()})
			return nil, false
		}
		if err := r.uow.IdeaRepository().UpdateScores(ctx, idea.Id, scores); err != nil {
			r.fail(ctx, constant.StepScoring, err)
			return nil, false
		}

		impact, feasibility, effort := scores.Impact, scores.Feasibility, scores.Effort
		strategicFit, risk, composite := scores.StrategicFit, scores.Risk, scores.Composite
		idea.ImpactScore = &impact
		idea.FeasibilityScore = &feasibility
		idea.EffortScore = &effort
		idea.StrategicFitScore = &strategicFit
		idea.RiskScore = &risk
		idea.CompositeScore = &composite
		idea.ScoreRationale = scores.Rationale
	}

	r.metadata.ScoringFallbacks = result.Fallbacks
	if result.Fallbacks > 0 {
		r.degrade(constant.ConfidenceMedium)
	}

	return ideas, true
}

func (r *run) deduplicate(ctx context.Context, ideas []*entity.Idea) bool {
	if !r.advance(ctx, constant.StatusDeduplicating, constant.StepDeduplicating, "Removing near-duplicate ideas") {
		return false
	}

	values := make([]entity.Idea, len(ideas))
	for i, idea := range ideas {
		values[i] = *idea
	}

	plan, err := ideation.Deduplicate(values)
	if err != nil {
		r.fail(ctx, constant.StepDeduplicating, err)
		return false
	}

	for duplicateId, canonicalId := range plan.DuplicateOf {
		if err := r.uow.IdeaRepository().MarkDuplicate(ctx, duplicateId, canonicalId); err != nil {
			r.fail(ctx, constant.StepDeduplicating, err)
			return false
		}
	}
	for _, finalId := range plan.FinalIDs {
		if err := r.uow.IdeaRepository().MarkFinal(ctx, finalId); err != nil {
			r.fail(ctx, constant.StepDeduplicating, err)
			return false
		}
	}

	r.metadata.DuplicatesRemoved = plan.DuplicatesRemoved()
	return true
}

func (r *run) complete(ctx context.Context) {
	repo := r.uow.IdeationSessionRepository()

	if err := repo.UpdateConfidence(ctx, r.session.Id, r.confidence); err != nil {
		r.fail(ctx, constant.StepDeduplicating, err)
		return
	}

	r.metadata.DurationMs = time.Since(r.startedAt).Milliseconds()
	if err := repo.UpdateGenerationMetadata(ctx, r.session.Id, &r.metadata); err != nil {
		r.fail(ctx, constant.StepDeduplicating, err)
		return
	}

	if !r.advance(ctx, constant.StatusCompleted, constant.StepCompleted, "Ideation completed") {
		return
	}

	r.svc.logger.Info("Pipeline", "Run completed", map[string]interface{}{
		"session_id":         r.session.Id,
		"confidence":         r.confidence,
		"generated":          r.metadata.GeneratedCount,
		"duplicates_removed": r.metadata.DuplicatesRemoved,
		"duration_ms":        r.metadata.DurationMs,
	})

	r.publishEvent(ctx, events.IdeationCompleted{
		SessionId:         r.session.Id,
		UserId:            r.session.UserId,
		Confidence:        r.confidence,
		FinalIdeaCount:    r.metadata.GeneratedCount - r.metadata.DuplicatesRemoved,
		DuplicatesRemoved: r.metadata.DuplicatesRemoved,
		OccurredAt:        time.Now(),
	})
}

func (r *run) notify(update dto.ProgressUpdate) {
	if r.svc.notifier != nil {
		r.svc.notifier.Publish(update)
	}
}

func (r *run) publishEvent(ctx context.Context, evt events.Event) {
	if r.svc.eventPublisher == nil {
		return
	}
	// Notification delivery is auxiliary, never fails the run.
	if err := r.svc.eventPublisher.Publish(ctx, evt); err != nil {
		r.svc.logger.Warn("Pipeline", "Failed to publish lifecycle event", map[string]interface{}{
			"session_id": r.session.Id,
			"event":      evt.EventType(),
			"error":      err.Error(),
		})
	}
}
