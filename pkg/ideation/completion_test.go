package ideation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteJSONExtractsFencedPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bare object", `{"value": 42}`},
		{"json code fence", "```json\n{\"value\": 42}\n```"},
		{"plain code fence", "```\n{\"value\": 42}\n```"},
		{"surrounding prose", "Sure! Here is the result:\n{\"value\": 42}\nHope that helps."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newCompletionsWith(func(string) (string, error) {
				return tt.raw, nil
			})

			var out struct {
				Value int `json:"value"`
			}
			err := client.CompleteJSON(context.Background(), "prompt", &out)
			require.NoError(t, err)
			assert.Equal(t, 42, out.Value)
		})
	}
}

func TestCompleteJSONClassifiesErrors(t *testing.T) {
	t.Run("transport failure is retryable", func(t *testing.T) {
		client := newCompletionsWith(func(string) (string, error) {
			return "", errors.New("connection refused")
		})

		var out map[string]interface{}
		err := client.CompleteJSON(context.Background(), "prompt", &out)
		require.Error(t, err)
		assert.True(t, IsRetryable(err))
		assert.False(t, IsMalformed(err))
	})

	t.Run("non-JSON output is malformed", func(t *testing.T) {
		client := newCompletionsWith(func(string) (string, error) {
			return "I cannot answer that.", nil
		})

		var out map[string]interface{}
		err := client.CompleteJSON(context.Background(), "prompt", &out)
		require.Error(t, err)
		assert.True(t, IsMalformed(err))
		assert.False(t, IsRetryable(err))

		var mal *MalformedResponseError
		require.ErrorAs(t, err, &mal)
		assert.Equal(t, "I cannot answer that.", mal.Raw)
	})

	t.Run("truncated JSON is malformed", func(t *testing.T) {
		client := newCompletionsWith(func(string) (string, error) {
			return `{"value": 42`, nil
		})

		var out map[string]interface{}
		err := client.CompleteJSON(context.Background(), "prompt", &out)
		require.Error(t, err)
		assert.True(t, IsMalformed(err))
	})
}
