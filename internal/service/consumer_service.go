package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-ideation-be/internal/dto"
	"ai-ideation-be/internal/pkg/logger"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the run topic and executes pipelines. Each
// message carries one session id and is acked on receipt, with the run
// dispatched on its own goroutine: a pipeline takes minutes, and one
// session's run must never delay another's. The run owns all error
// handling, so a failure lands in the session's failed state instead of
// a redelivery.
type consumerService struct {
	pubSub          *gochannel.GoChannel
	topicName       string
	pipelineService IPipelineService
	logger          logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	pipelineService IPipelineService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:          pubSub,
		topicName:       topicName,
		pipelineService: pipelineService,
		logger:          log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RunPipelineMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal run message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid messages would retry forever
		return
	}

	// Ack before running: gochannel withholds the next message until this
	// one is acked, and sessions must not queue behind each other. A failed
	// run is retried via the explicit retry operation, not by redelivery.
	msg.Ack()

	cs.logger.Info("Consumer", "Starting ideation pipeline", map[string]interface{}{"session_id": payload.SessionId})

	go cs.pipelineService.Run(ctx, payload.SessionId)
}
