package ideation

import (
	"context"
	"fmt"

	"ai-ideation-be/pkg/llm"
)

// fakeLLM scripts provider behavior per prompt. respond is consulted
// first; if nil, responses are returned in order.
type fakeLLM struct {
	respond   func(prompt string) (string, error)
	responses []string
	calls     int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.calls++
	if f.respond != nil {
		return f.respond(prompt)
	}
	if len(f.responses) == 0 {
		return "", fmt.Errorf("fakeLLM: no scripted response")
	}
	res := f.responses[0]
	f.responses = f.responses[1:]
	return res, nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("fakeLLM: empty history")
	}
	return f.Generate(ctx, history[len(history)-1].Content, opts...)
}

func newCompletionsWith(respond func(prompt string) (string, error)) *CompletionClient {
	return NewCompletionClient(&fakeLLM{respond: respond})
}

// categoryIdeasJSON builds a well-formed generation response with count
// ideas for the prompts of one category.
func categoryIdeasJSON(category string, count int) string {
	out := `{"ideas":[`
	for i := 0; i < count; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"title":"%s idea %d","description":"Description for %s idea %d","effort_estimate":%d,"impact_estimate":%d}`,
			category, i+1, category, i+1, (i%10)+1, ((i+3)%10)+1)
	}
	return out + `]}`
}
