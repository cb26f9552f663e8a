package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ideation-be/internal/dto"
	"ai-ideation-be/internal/pkg/logger"
)

// blockingPipeline reports each started run and then parks until released.
type blockingPipeline struct {
	started chan uuid.UUID
	release chan struct{}
}

func (p *blockingPipeline) Run(ctx context.Context, sessionId uuid.UUID) {
	p.started <- sessionId
	<-p.release
}

func publishRun(t *testing.T, pubSub *gochannel.GoChannel, topic string, sessionId uuid.UUID) {
	t.Helper()
	payload, err := json.Marshal(dto.RunPipelineMessage{SessionId: sessionId})
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload)))
}

// One long run must not hold up the next session's pipeline.
func TestConsumerRunsSessionsConcurrently(t *testing.T) {
	const topic = "RUN_IDEATION_PIPELINE"

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	pipeline := &blockingPipeline{
		started: make(chan uuid.UUID, 2),
		release: make(chan struct{}),
	}
	defer close(pipeline.release)

	consumer := NewConsumerService(pubSub, topic, pipeline, logger.NewIsolatedLogger(t.TempDir()+"/consumer.log"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	first, second := uuid.New(), uuid.New()
	publishRun(t, pubSub, topic, first)
	publishRun(t, pubSub, topic, second)

	// neither run is released yet, so both starting proves they overlap
	got := map[uuid.UUID]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-pipeline.started:
			got[id] = true
		case <-time.After(3 * time.Second):
			t.Fatal("second pipeline never started while the first was still running")
		}
	}
	assert.True(t, got[first])
	assert.True(t, got[second])
}

// A payload that does not parse is dropped, and later messages still flow.
func TestConsumerSkipsMalformedMessages(t *testing.T) {
	const topic = "RUN_IDEATION_PIPELINE"

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	pipeline := &blockingPipeline{
		started: make(chan uuid.UUID, 1),
		release: make(chan struct{}),
	}
	defer close(pipeline.release)

	consumer := NewConsumerService(pubSub, topic, pipeline, logger.NewIsolatedLogger(t.TempDir()+"/consumer.log"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))

	sessionId := uuid.New()
	publishRun(t, pubSub, topic, sessionId)

	select {
	case id := <-pipeline.started:
		assert.Equal(t, sessionId, id)
	case <-time.After(3 * time.Second):
		t.Fatal("valid message stuck behind a malformed one")
	}
}
