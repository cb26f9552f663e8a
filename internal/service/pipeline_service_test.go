package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ideation-be/internal/constant"
	"ai-ideation-be/internal/dto"
	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/pkg/logger"
	"ai-ideation-be/internal/repository/memory"
	"ai-ideation-be/internal/repository/specification"
	"ai-ideation-be/pkg/embedding"
	"ai-ideation-be/pkg/ideation"
	"ai-ideation-be/pkg/llm"
)

// --- fakes ---

// scriptedLLM answers each pipeline prompt kind with a canned response.
type scriptedLLM struct {
	parseResponse string
	failCompleter bool
	enrichFail    func(prompt string) bool
}

func (f *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	if f.failCompleter {
		return "", errors.New("completion service unreachable")
	}

	switch {
	case strings.Contains(prompt, "product analyst"):
		if f.parseResponse != "" {
			return f.parseResponse, nil
		}
		return `{"problem_core": "Users churn during onboarding", "affected_users": ["new users"], "current_metrics": ["40% drop-off"], "desired_outcome": "75% activation"}`, nil

	case strings.Contains(prompt, "distinct "):
		for _, category := range ideation.Categories {
			if strings.Contains(prompt, fmt.Sprintf("distinct %s ideas", category)) {
				return categoryIdeas(category), nil
			}
		}
		return "", errors.New("unknown category prompt")

	case strings.Contains(prompt, "common theme"):
		return `{"name": "Onboarding", "description": "Ideas improving early user experience."}`, nil

	case strings.Contains(prompt, "list 3 use cases"):
		if f.enrichFail != nil && f.enrichFail(prompt) {
			return "I would rather not enumerate anything today.", nil
		}
		return `{"use_cases": ["u1"], "edge_cases": ["e1"], "implementation_notes": ["n1"]}`, nil

	case strings.Contains(prompt, "Score the product idea"):
		return `{"impact": 7, "feasibility": 6, "effort": 4, "strategic_fit": 8, "risk": 3, "rationale": {"impact": "solid"}}`, nil
	}

	return "", fmt.Errorf("unscripted prompt: %.60s", prompt)
}

func (f *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.Generate(ctx, history[len(history)-1].Content, opts...)
}

func categoryIdeas(category string) string {
	out := `{"ideas":[`
	for i := 0; i < 5; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"title":"%s idea %d","description":"Detailed description of %s idea %d","effort_estimate":%d,"impact_estimate":%d}`,
			category, i+1, category, i+1, (i%10)+1, ((i+5)%10)+1)
	}
	return out + `]}`
}

// fakeEmbedder hands each distinct text its own axis so nothing is a
// duplicate, unless two texts are aliased to the same axis.
type fakeEmbedder struct {
	mu      sync.Mutex
	axes    map[string]int
	next    int
	aliases map[string]string
	fail    bool
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{axes: map[string]int{}, aliases: map[string]string{}}
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.fail {
		return nil, errors.New("embedding timeout")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := text
	if alias, ok := f.aliases[text]; ok {
		key = alias
	}
	axis, ok := f.axes[key]
	if !ok {
		axis = f.next
		f.next++
		f.axes[key] = axis
	}

	values := make([]float32, 32)
	values[axis%32] = 1
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: values},
	}, nil
}

// capturedUpdates records progress pushed at watchers.
type capturedUpdates struct {
	mu      sync.Mutex
	updates []dto.ProgressUpdate
}

func (c *capturedUpdates) Publish(update dto.ProgressUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, update)
}

func (c *capturedUpdates) statuses() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.updates))
	for i, u := range c.updates {
		out[i] = u.Status
	}
	return out
}

// --- harness ---

type pipelineFixture struct {
	store    *memory.Store
	service  IPipelineService
	llm      *scriptedLLM
	embedder *fakeEmbedder
	notifier *capturedUpdates
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	store := memory.NewStore()
	llmFake := &scriptedLLM{}
	embedder := newFakeEmbedder()
	notifier := &capturedUpdates{}

	svc := NewPipelineService(PipelineDeps{
		UowFactory:        memory.NewRepositoryFactory(store),
		Completions:       ideation.NewCompletionClient(llmFake),
		EmbeddingProvider: embedder,
		EmbeddingTimeout:  time.Second,
		Workers:           4,
		Notifier:          notifier,
		Logger:            logger.NewIsolatedLogger(t.TempDir() + "/pipeline.log"),
		LLMModel:          "llama3",
		EmbeddingModel:    "nomic-embed-text",
	})

	return &pipelineFixture{
		store:    store,
		service:  svc,
		llm:      llmFake,
		embedder: embedder,
		notifier: notifier,
	}
}

func (f *pipelineFixture) createSession(t *testing.T) *entity.IdeationSession {
	t.Helper()
	session := &entity.IdeationSession{
		Id:               uuid.New(),
		UserId:           uuid.New(),
		ProblemStatement: "Our onboarding flow loses 40% of new users before activation",
		Constraints:      []string{},
		Goals:            []string{"raise activation"},
		Status:           constant.StatusPending,
		Confidence:       constant.ConfidenceHigh,
		CreatedAt:        time.Now(),
	}
	require.NoError(t, f.store.SessionRepository().Create(context.Background(), session))
	return session
}

func (f *pipelineFixture) session(t *testing.T, id uuid.UUID) *entity.IdeationSession {
	t.Helper()
	session, err := f.store.SessionRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}

func (f *pipelineFixture) ideas(t *testing.T, id uuid.UUID) []*entity.Idea {
	t.Helper()
	ideas, err := f.store.IdeaRepository().FindAll(context.Background(),
		specification.BySessionID{SessionID: id},
		specification.OrderBy{Field: "display_order"},
	)
	require.NoError(t, err)
	return ideas
}

func (f *pipelineFixture) clusters(t *testing.T, id uuid.UUID) []*entity.IdeaCluster {
	t.Helper()
	clusters, err := f.store.ClusterRepository().FindAll(context.Background(),
		specification.BySessionID{SessionID: id},
	)
	require.NoError(t, err)
	return clusters
}

// --- tests ---

func TestPipelineHappyPath(t *testing.T) {
	f := newPipelineFixture(t)
	session := f.createSession(t)

	f.service.Run(context.Background(), session.Id)

	got := f.session(t, session.Id)
	assert.Equal(t, constant.StatusCompleted, got.Status)
	assert.Equal(t, constant.StepCompleted, got.ProgressStep)
	assert.Equal(t, constant.ConfidenceHigh, got.Confidence)
	assert.Empty(t, got.ErrorMessage)
	require.NotNil(t, got.StructuredProblem)
	assert.Equal(t, "Users churn during onboarding", got.StructuredProblem.ProblemCore)

	require.NotNil(t, got.GenerationMetadata)
	assert.Equal(t, ideation.TargetIdeaCount, got.GenerationMetadata.GeneratedCount)
	assert.Equal(t, 0, got.GenerationMetadata.DuplicatesRemoved)
	assert.Equal(t, "llama3", got.GenerationMetadata.LLMModel)

	ideas := f.ideas(t, session.Id)
	require.Len(t, ideas, ideation.TargetIdeaCount)

	clusters := f.clusters(t, session.Id)
	k := len(clusters)
	assert.GreaterOrEqual(t, k, ideation.MinClusters)
	assert.LessOrEqual(t, k, ideation.MaxClusters)

	finals := 0
	for i, idea := range ideas {
		assert.Equal(t, i, idea.DisplayOrder)
		require.NotNil(t, idea.ClusterNumber, "every idea must be clustered")
		assert.GreaterOrEqual(t, *idea.ClusterNumber, 1)
		assert.LessOrEqual(t, *idea.ClusterNumber, k)
		require.NotNil(t, idea.CompositeScore)
		assert.GreaterOrEqual(t, *idea.CompositeScore, 0.0)
		assert.LessOrEqual(t, *idea.CompositeScore, 100.0)
		assert.Equal(t, []string{"u1"}, idea.UseCases)
		assert.Equal(t, !idea.IsDuplicate, idea.IsFinal)
		if idea.IsFinal {
			finals++
		}
	}
	assert.Equal(t, ideation.TargetIdeaCount, finals)

	// orchestrator walked every state in order
	statuses := f.notifier.statuses()
	expected := []string{
		constant.StatusParsing, constant.StatusGenerating, constant.StatusClustering,
		constant.StatusEnriching, constant.StatusScoring, constant.StatusDeduplicating,
		constant.StatusCompleted,
	}
	assert.Equal(t, expected, statuses)
}

func TestPipelineMarksDuplicates(t *testing.T) {
	f := newPipelineFixture(t)
	session := f.createSession(t)

	// two idea pairs embed identically
	f.embedder.aliases["process idea 1\nDetailed description of process idea 1"] =
		"product idea 1\nDetailed description of product idea 1"
	f.embedder.aliases["business idea 2\nDetailed description of business idea 2"] =
		"technology idea 2\nDetailed description of technology idea 2"

	f.service.Run(context.Background(), session.Id)

	got := f.session(t, session.Id)
	require.Equal(t, constant.StatusCompleted, got.Status)
	assert.Equal(t, 2, got.GenerationMetadata.DuplicatesRemoved)

	ideas := f.ideas(t, session.Id)
	finals, duplicates := 0, 0
	for _, idea := range ideas {
		if idea.IsDuplicate {
			duplicates++
			require.NotNil(t, idea.DuplicateOfId)
			assert.False(t, idea.IsFinal)
		} else {
			finals++
			assert.True(t, idea.IsFinal)
			assert.Nil(t, idea.DuplicateOfId)
		}
	}
	assert.Equal(t, 2, duplicates)
	assert.Equal(t, ideation.TargetIdeaCount-2, finals)

	// duplicates point at final ideas only (no chains)
	byId := map[uuid.UUID]*entity.Idea{}
	for _, idea := range ideas {
		byId[idea.Id] = idea
	}
	for _, idea := range ideas {
		if idea.IsDuplicate {
			canonical := byId[*idea.DuplicateOfId]
			require.NotNil(t, canonical)
			assert.True(t, canonical.IsFinal)
		}
	}
}

// Embedding outage during clustering: the session fails, no cluster rows
// exist, and every idea keeps a nil cluster number.
func TestPipelineEmbeddingTimeoutFailsSession(t *testing.T) {
	f := newPipelineFixture(t)
	f.embedder.fail = true
	session := f.createSession(t)

	f.service.Run(context.Background(), session.Id)

	got := f.session(t, session.Id)
	assert.Equal(t, constant.StatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "embedding")

	assert.Empty(t, f.clusters(t, session.Id))
	for _, idea := range f.ideas(t, session.Id) {
		assert.Nil(t, idea.ClusterNumber)
	}
}

// Unparseable parse completion: structured problem falls back to the raw
// statement, confidence drops to low, the run still completes.
func TestPipelineParserFallbackCompletesWithLowConfidence(t *testing.T) {
	f := newPipelineFixture(t)
	f.llm.parseResponse = "I am sorry, I cannot produce JSON today."
	session := f.createSession(t)

	f.service.Run(context.Background(), session.Id)

	got := f.session(t, session.Id)
	assert.Equal(t, constant.StatusCompleted, got.Status)
	assert.Equal(t, constant.ConfidenceLow, got.Confidence)
	require.NotNil(t, got.StructuredProblem)
	assert.Equal(t, session.ProblemStatement, got.StructuredProblem.ProblemCore)
}

// Enrichment failing for the majority of ideas still completes the run,
// but the session lands at low confidence.
func TestPipelineEnrichmentMajorityFailureLowersConfidence(t *testing.T) {
	f := newPipelineFixture(t)
	// 10 of the 18 ideas (all product and process ones) get prose instead
	// of enrichment JSON
	f.llm.enrichFail = func(prompt string) bool {
		return strings.Contains(prompt, "Idea: product idea") ||
			strings.Contains(prompt, "Idea: process idea")
	}
	session := f.createSession(t)

	f.service.Run(context.Background(), session.Id)

	got := f.session(t, session.Id)
	assert.Equal(t, constant.StatusCompleted, got.Status)
	assert.Equal(t, constant.StepCompleted, got.ProgressStep)
	assert.Equal(t, constant.ConfidenceLow, got.Confidence)
	require.NotNil(t, got.GenerationMetadata)
	assert.Equal(t, 10, got.GenerationMetadata.EnrichmentFailures)

	enriched, bare := 0, 0
	for _, idea := range f.ideas(t, session.Id) {
		if len(idea.UseCases) > 0 {
			enriched++
		} else {
			bare++
		}
		// failed enrichment never blocks scoring
		require.NotNil(t, idea.CompositeScore)
	}
	assert.Equal(t, 8, enriched)
	assert.Equal(t, 10, bare)
}

// A minority of enrichment failures degrades confidence one notch only.
func TestPipelineEnrichmentMinorityFailureIsMediumConfidence(t *testing.T) {
	f := newPipelineFixture(t)
	f.llm.enrichFail = func(prompt string) bool {
		return strings.Contains(prompt, "Idea: business idea")
	}
	session := f.createSession(t)

	f.service.Run(context.Background(), session.Id)

	got := f.session(t, session.Id)
	assert.Equal(t, constant.StatusCompleted, got.Status)
	assert.Equal(t, constant.ConfidenceMedium, got.Confidence)
	assert.Equal(t, 3, got.GenerationMetadata.EnrichmentFailures)
}

func TestPipelineCompletionOutageFailsSession(t *testing.T) {
	f := newPipelineFixture(t)
	f.llm.failCompleter = true
	session := f.createSession(t)

	f.service.Run(context.Background(), session.Id)

	got := f.session(t, session.Id)
	assert.Equal(t, constant.StatusFailed, got.Status)
	assert.NotEmpty(t, got.ErrorMessage)
	assert.Empty(t, f.ideas(t, session.Id))
}

// A failed session reset for retry runs again from the start and can
// reach completed.
func TestPipelineRetryAfterFailure(t *testing.T) {
	f := newPipelineFixture(t)
	f.embedder.fail = true
	session := f.createSession(t)

	f.service.Run(context.Background(), session.Id)
	require.Equal(t, constant.StatusFailed, f.session(t, session.Id).Status)

	ctx := context.Background()
	require.NoError(t, f.store.IdeaRepository().DeleteBySessionId(ctx, session.Id))
	require.NoError(t, f.store.ClusterRepository().DeleteBySessionId(ctx, session.Id))
	ok, err := f.store.SessionRepository().ResetForRetry(ctx, session.Id)
	require.NoError(t, err)
	require.True(t, ok)

	reset := f.session(t, session.Id)
	assert.Equal(t, constant.StatusPending, reset.Status)
	assert.Equal(t, constant.StepPending, reset.ProgressStep)
	assert.Empty(t, reset.ErrorMessage)

	f.embedder.fail = false
	f.service.Run(ctx, session.Id)

	got := f.session(t, session.Id)
	assert.Equal(t, constant.StatusCompleted, got.Status)
	assert.Len(t, f.ideas(t, session.Id), ideation.TargetIdeaCount)
}

// ResetForRetry only applies to failed sessions.
func TestResetForRetryRejectsNonFailedSessions(t *testing.T) {
	f := newPipelineFixture(t)
	session := f.createSession(t)

	f.service.Run(context.Background(), session.Id)
	require.Equal(t, constant.StatusCompleted, f.session(t, session.Id).Status)

	ok, err := f.store.SessionRepository().ResetForRetry(context.Background(), session.Id)
	require.NoError(t, err)
	assert.False(t, ok)
}

// A stale step can never drag an advanced session backwards.
func TestAdvanceProgressIsMonotonic(t *testing.T) {
	f := newPipelineFixture(t)
	session := f.createSession(t)
	ctx := context.Background()
	repo := f.store.SessionRepository()

	ok, err := repo.AdvanceProgress(ctx, session.Id, constant.StatusScoring, constant.StepScoring, "scoring")
	require.NoError(t, err)
	require.True(t, ok)

	// stale writer still at clustering
	ok, err = repo.AdvanceProgress(ctx, session.Id, constant.StatusClustering, constant.StepClustering, "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	got := f.session(t, session.Id)
	assert.Equal(t, constant.StatusScoring, got.Status)
	assert.Equal(t, constant.StepScoring, got.ProgressStep)

	// completed sessions reject any further writes
	ok, err = repo.AdvanceProgress(ctx, session.Id, constant.StatusCompleted, constant.StepCompleted, "done")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.MarkFailed(ctx, session.Id, constant.StepCompleted, "too late")
	require.NoError(t, err)
	assert.False(t, ok)
}
