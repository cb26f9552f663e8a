package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ideation-be/internal/constant"
	"ai-ideation-be/internal/dto"
	"ai-ideation-be/internal/entity"
	"ai-ideation-be/internal/pkg/logger"
	"ai-ideation-be/internal/pkg/serverutils"
	"ai-ideation-be/internal/repository/memory"
	"ai-ideation-be/internal/repository/specification"
	"ai-ideation-be/pkg/ideation"
)

type recordingPublisher struct {
	payloads [][]byte
}

func (r *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingPublisher) sessionIds(t *testing.T) []uuid.UUID {
	t.Helper()
	out := make([]uuid.UUID, 0, len(r.payloads))
	for _, payload := range r.payloads {
		var msg dto.RunPipelineMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		out = append(out, msg.SessionId)
	}
	return out
}

type ideationFixture struct {
	store     *memory.Store
	service   IIdeationService
	publisher *recordingPublisher
	userId    uuid.UUID
}

func newIdeationFixture(t *testing.T) *ideationFixture {
	t.Helper()
	store := memory.NewStore()
	publisher := &recordingPublisher{}
	svc := NewIdeationService(
		memory.NewRepositoryFactory(store),
		publisher,
		nil,
		logger.NewIsolatedLogger(t.TempDir()+"/ideation.log"),
	)
	return &ideationFixture{store: store, service: svc, publisher: publisher, userId: uuid.New()}
}

func (f *ideationFixture) seedSession(t *testing.T, status string, step int) *entity.IdeationSession {
	t.Helper()
	session := &entity.IdeationSession{
		Id:               uuid.New(),
		UserId:           f.userId,
		ProblemStatement: "Support ticket volume doubled after the last release",
		Constraints:      []string{},
		Goals:            []string{},
		Status:           status,
		ProgressStep:     step,
		Confidence:       constant.ConfidenceHigh,
		CreatedAt:        time.Now(),
	}
	require.NoError(t, f.store.SessionRepository().Create(context.Background(), session))
	return session
}

func (f *ideationFixture) seedIdea(t *testing.T, sessionId uuid.UUID, order int) *entity.Idea {
	t.Helper()
	idea := &entity.Idea{
		Id:           uuid.New(),
		SessionId:    sessionId,
		Title:        "Self-serve triage",
		Description:  "Let users categorize their own tickets",
		Category:     "product",
		DisplayOrder: order,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, f.store.IdeaRepository().CreateBulk(context.Background(), []*entity.Idea{idea}))
	return idea
}

func TestCreateSessionDispatchesRun(t *testing.T) {
	f := newIdeationFixture(t)

	res, err := f.service.Create(context.Background(), f.userId, &dto.CreateSessionRequest{
		ProblemStatement: "  Support ticket volume doubled after the last release  ",
		Goals:            []string{"halve ticket volume"},
	})
	require.NoError(t, err)
	assert.Equal(t, constant.StatusPending, res.Status)

	// one run message carrying the new session id
	ids := f.publisher.sessionIds(t)
	require.Len(t, ids, 1)
	assert.Equal(t, res.Id, ids[0])

	session, err := f.store.SessionRepository().FindOne(context.Background(), specification.ByID{ID: res.Id})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "Support ticket volume doubled after the last release", session.ProblemStatement)
	assert.Equal(t, constant.StepPending, session.ProgressStep)
	assert.Equal(t, constant.ConfidenceHigh, session.Confidence)
	assert.NotNil(t, session.Constraints)
	assert.Equal(t, []string{"halve ticket volume"}, session.Goals)
}

func TestCreateSessionRejectsShortStatement(t *testing.T) {
	f := newIdeationFixture(t)

	_, err := f.service.Create(context.Background(), f.userId, &dto.CreateSessionRequest{
		ProblemStatement: "   too slow  ",
	})
	require.Error(t, err)

	var validationErr *ideation.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "problem_statement", validationErr.Field)
	assert.Empty(t, f.publisher.payloads, "nothing dispatched for rejected input")
}

func TestGetStatusScopedToOwner(t *testing.T) {
	f := newIdeationFixture(t)
	session := f.seedSession(t, constant.StatusGenerating, constant.StepGenerating)

	res, err := f.service.GetStatus(context.Background(), f.userId, session.Id)
	require.NoError(t, err)
	assert.Equal(t, constant.StatusGenerating, res.Status)
	assert.Equal(t, constant.StepGenerating, res.ProgressStep)

	_, err = f.service.GetStatus(context.Background(), uuid.New(), session.Id)
	require.Error(t, err)
	var reqErr *serverutils.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 404, reqErr.StatusCode)
}

func TestGetStatusServesCachedSnapshot(t *testing.T) {
	f := newIdeationFixture(t)
	session := f.seedSession(t, constant.StatusParsing, constant.StepParsing)
	ctx := context.Background()

	first, err := f.service.GetStatus(ctx, f.userId, session.Id)
	require.NoError(t, err)
	assert.Equal(t, constant.StatusParsing, first.Status)

	ok, err := f.store.SessionRepository().AdvanceProgress(ctx, session.Id, constant.StatusScoring, constant.StepScoring, "scoring")
	require.NoError(t, err)
	require.True(t, ok)

	// within the TTL the stale snapshot is still served
	second, err := f.service.GetStatus(ctx, f.userId, session.Id)
	require.NoError(t, err)
	assert.Equal(t, constant.StatusParsing, second.Status)
}

func TestRetryRequiresFailedState(t *testing.T) {
	f := newIdeationFixture(t)
	session := f.seedSession(t, constant.StatusCompleted, constant.StepCompleted)

	_, err := f.service.Retry(context.Background(), f.userId, session.Id)
	require.Error(t, err)
	var reqErr *serverutils.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 409, reqErr.StatusCode)
	assert.Empty(t, f.publisher.payloads)
}

func TestRetryResetsSessionAndRedispatches(t *testing.T) {
	f := newIdeationFixture(t)
	session := f.seedSession(t, constant.StatusFailed, constant.StepClustering)
	f.seedIdea(t, session.Id, 0)
	f.seedIdea(t, session.Id, 1)
	ctx := context.Background()

	res, err := f.service.Retry(ctx, f.userId, session.Id)
	require.NoError(t, err)
	assert.Equal(t, constant.StatusPending, res.Status)
	assert.Equal(t, constant.StepPending, res.ProgressStep)

	ideas, err := f.store.IdeaRepository().FindAll(ctx, specification.BySessionID{SessionID: session.Id})
	require.NoError(t, err)
	assert.Empty(t, ideas, "stale ideas are discarded before the rerun")

	ids := f.publisher.sessionIds(t)
	require.Len(t, ids, 1)
	assert.Equal(t, session.Id, ids[0])
}

func TestUpdateIdeaOverridesContent(t *testing.T) {
	f := newIdeationFixture(t)
	session := f.seedSession(t, constant.StatusCompleted, constant.StepCompleted)
	idea := f.seedIdea(t, session.Id, 0)
	ctx := context.Background()

	title := "  Assisted triage  "
	res, err := f.service.UpdateIdea(ctx, f.userId, idea.Id, &dto.UpdateIdeaRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Assisted triage", res.Title)
	assert.Equal(t, idea.Description, res.Description, "untouched fields keep their value")

	stored, err := f.store.IdeaRepository().FindOne(ctx, specification.ByID{ID: idea.Id})
	require.NoError(t, err)
	assert.Equal(t, "Assisted triage", stored.Title)

	// overrides never wake the pipeline back up
	assert.Empty(t, f.publisher.payloads)
}

func TestUpdateIdeaRejectsForeignUser(t *testing.T) {
	f := newIdeationFixture(t)
	session := f.seedSession(t, constant.StatusCompleted, constant.StepCompleted)
	idea := f.seedIdea(t, session.Id, 0)

	title := "hijack"
	_, err := f.service.UpdateIdea(context.Background(), uuid.New(), idea.Id, &dto.UpdateIdeaRequest{Title: &title})
	require.Error(t, err)
	var reqErr *serverutils.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 404, reqErr.StatusCode)
}

func TestGetDetailFinalOnlyFiltersDuplicates(t *testing.T) {
	f := newIdeationFixture(t)
	session := f.seedSession(t, constant.StatusCompleted, constant.StepCompleted)
	ctx := context.Background()

	canonical := f.seedIdea(t, session.Id, 0)
	duplicate := f.seedIdea(t, session.Id, 1)
	require.NoError(t, f.store.IdeaRepository().MarkFinal(ctx, canonical.Id))
	require.NoError(t, f.store.IdeaRepository().MarkDuplicate(ctx, duplicate.Id, canonical.Id))

	full, err := f.service.GetDetail(ctx, f.userId, session.Id, false)
	require.NoError(t, err)
	assert.Len(t, full.Ideas, 2)

	finals, err := f.service.GetDetail(ctx, f.userId, session.Id, true)
	require.NoError(t, err)
	require.Len(t, finals.Ideas, 1)
	assert.Equal(t, canonical.Id, finals.Ideas[0].Id)
	assert.True(t, finals.Ideas[0].IsFinal)
}

func TestDeleteCascades(t *testing.T) {
	f := newIdeationFixture(t)
	session := f.seedSession(t, constant.StatusCompleted, constant.StepCompleted)
	f.seedIdea(t, session.Id, 0)
	ctx := context.Background()

	require.NoError(t, f.service.Delete(ctx, f.userId, session.Id))

	gone, err := f.store.SessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	assert.Nil(t, gone)

	ideas, err := f.store.IdeaRepository().FindAll(ctx, specification.BySessionID{SessionID: session.Id})
	require.NoError(t, err)
	assert.Empty(t, ideas)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	f := newIdeationFixture(t)
	ctx := context.Background()

	seed := func(userId uuid.UUID, createdAt time.Time) {
		require.NoError(t, f.store.SessionRepository().Create(ctx, &entity.IdeationSession{
			Id:               uuid.New(),
			UserId:           userId,
			ProblemStatement: "Support ticket volume doubled after the last release",
			Status:           constant.StatusCompleted,
			ProgressStep:     constant.StepCompleted,
			CreatedAt:        createdAt,
		}))
	}
	base := time.Now()
	for i := 0; i < 5; i++ {
		seed(f.userId, base.Add(time.Duration(i)*time.Minute))
	}
	// another user's sessions never leak into the listing
	seed(uuid.New(), base)

	res, err := f.service.List(ctx, f.userId, 3, 0)
	require.NoError(t, err)
	assert.Len(t, res.Sessions, 3)

	rest, err := f.service.List(ctx, f.userId, 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest.Sessions, 2)
}
