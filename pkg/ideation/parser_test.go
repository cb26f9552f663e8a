package ideation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ideation-be/internal/entity"
)

func testSession() *entity.IdeationSession {
	return &entity.IdeationSession{
		Id:               uuid.New(),
		UserId:           uuid.New(),
		ProblemStatement: "Our onboarding flow loses 40% of new users before activation",
		Constraints:      []string{"engineering team of 3"},
		Goals:            []string{"raise activation to 75%"},
	}
}

func TestParserHappyPath(t *testing.T) {
	parser := NewProblemParser(newCompletionsWith(func(prompt string) (string, error) {
		assert.Contains(t, prompt, "Our onboarding flow")
		assert.Contains(t, prompt, "engineering team of 3")
		return `{
			"problem_core": "New users abandon onboarding before activation",
			"affected_users": ["new signups"],
			"current_metrics": ["40% drop-off"],
			"desired_outcome": "75% activation rate"
		}`, nil
	}))

	problem, degraded, err := parser.Parse(context.Background(), testSession(), "")
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, "New users abandon onboarding before activation", problem.ProblemCore)
	assert.Equal(t, []string{"new signups"}, problem.AffectedUsers)
	assert.Equal(t, "75% activation rate", problem.DesiredOutcome)
}

func TestParserFallsBackOnUnparseableCompletion(t *testing.T) {
	parser := NewProblemParser(newCompletionsWith(func(string) (string, error) {
		return "I think your onboarding problem is interesting, let me elaborate at length...", nil
	}))

	session := testSession()
	problem, degraded, err := parser.Parse(context.Background(), session, "")
	require.NoError(t, err, "a malformed parse never fails the run")
	assert.True(t, degraded)
	assert.Equal(t, session.ProblemStatement, problem.ProblemCore)
	assert.Equal(t, strings.Join(session.Goals, "; "), problem.DesiredOutcome)
	assert.Empty(t, problem.AffectedUsers)
}

func TestParserFallsBackOnEmptyProblemCore(t *testing.T) {
	parser := NewProblemParser(newCompletionsWith(func(string) (string, error) {
		return `{"problem_core": "  ", "desired_outcome": "something"}`, nil
	}))

	session := testSession()
	problem, degraded, err := parser.Parse(context.Background(), session, "")
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Equal(t, session.ProblemStatement, problem.ProblemCore)
}

func TestParserPropagatesExternalFailure(t *testing.T) {
	parser := NewProblemParser(newCompletionsWith(func(string) (string, error) {
		return "", errors.New("context deadline exceeded")
	}))

	_, _, err := parser.Parse(context.Background(), testSession(), "")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}
