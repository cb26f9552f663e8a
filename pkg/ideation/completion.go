package ideation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"ai-ideation-be/pkg/llm"
)

// CompletionClient wraps an LLM provider with JSON extraction and the
// error classification the pipeline needs. Every call either yields a
// value matching the requested schema or a typed error.
type CompletionClient struct {
	provider llm.LLMProvider
}

func NewCompletionClient(provider llm.LLMProvider) *CompletionClient {
	return &CompletionClient{provider: provider}
}

// CompleteJSON sends the prompt and unmarshals the model output into out.
// Transport failures come back as ExternalServiceError, schema failures
// as MalformedResponseError carrying the raw text.
func (c *CompletionClient) CompleteJSON(ctx context.Context, prompt string, out interface{}) error {
	raw, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0.4))
	if err != nil {
		return &ExternalServiceError{Service: "completion", Err: err}
	}

	payload, ok := extractJSON(raw)
	if !ok {
		return &MalformedResponseError{Raw: raw, Err: errors.New("no JSON object in response")}
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return &MalformedResponseError{Raw: raw, Err: err}
	}

	return nil
}

// CompleteText sends the prompt and returns the raw model output.
func (c *CompletionClient) CompleteText(ctx context.Context, prompt string) (string, error) {
	raw, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0.7))
	if err != nil {
		return "", &ExternalServiceError{Service: "completion", Err: err}
	}
	return strings.TrimSpace(raw), nil
}

// extractJSON pulls the first JSON object or array out of model output,
// tolerating markdown code fences and surrounding prose.
func extractJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}

	var closer byte
	if s[start] == '{' {
		closer = '}'
	} else {
		closer = ']'
	}

	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return "", false
	}

	return s[start : end+1], true
}
