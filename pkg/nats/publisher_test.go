package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-ideation-be/pkg/events"
)

func TestSubjectMapping(t *testing.T) {
	assert.Equal(t, "ideation.events.ideation_started", Subject(events.TypeIdeationStarted))
	assert.Equal(t, "ideation.events.ideation_completed", Subject(events.TypeIdeationCompleted))
	assert.Equal(t, "ideation.events.ideation_failed", Subject(events.TypeIdeationFailed))
}
