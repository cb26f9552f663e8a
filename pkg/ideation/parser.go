package ideation

import (
	"context"
	"fmt"
	"strings"

	"ai-ideation-be/internal/entity"
)

// ProblemParser turns a raw problem statement into a structured problem
// via a single completion call, with a deterministic fallback when the
// model output fails schema validation.
type ProblemParser struct {
	completions *CompletionClient
}

func NewProblemParser(completions *CompletionClient) *ProblemParser {
	return &ProblemParser{completions: completions}
}

type parsedProblemPayload struct {
	ProblemCore    string   `json:"problem_core"`
	AffectedUsers  []string `json:"affected_users"`
	CurrentMetrics []string `json:"current_metrics"`
	DesiredOutcome string   `json:"desired_outcome"`
}

// Parse returns the structured problem and whether the fallback path was
// taken. External service failures propagate; malformed output never
// fails the run here.
func (p *ProblemParser) Parse(ctx context.Context, session *entity.IdeationSession, contextText string) (*entity.StructuredProblem, bool, error) {
	prompt := buildParsePrompt(session, contextText)

	var payload parsedProblemPayload
	err := p.completions.CompleteJSON(ctx, prompt, &payload)
	if err != nil {
		if IsMalformed(err) {
			return fallbackStructuredProblem(session), true, nil
		}
		return nil, false, err
	}

	if strings.TrimSpace(payload.ProblemCore) == "" {
		return fallbackStructuredProblem(session), true, nil
	}

	return &entity.StructuredProblem{
		ProblemCore:    strings.TrimSpace(payload.ProblemCore),
		AffectedUsers:  payload.AffectedUsers,
		CurrentMetrics: payload.CurrentMetrics,
		DesiredOutcome: strings.TrimSpace(payload.DesiredOutcome),
	}, false, nil
}

// fallbackStructuredProblem is the deterministic degraded parse: the raw
// statement becomes the problem core and the stated goals the outcome.
func fallbackStructuredProblem(session *entity.IdeationSession) *entity.StructuredProblem {
	return &entity.StructuredProblem{
		ProblemCore:    strings.TrimSpace(session.ProblemStatement),
		AffectedUsers:  []string{},
		CurrentMetrics: []string{},
		DesiredOutcome: strings.Join(session.Goals, "; "),
	}
}

func buildParsePrompt(session *entity.IdeationSession, contextText string) string {
	var sb strings.Builder
	sb.WriteString("You are a product analyst. Analyze the problem statement below and respond with ONLY a JSON object of the form ")
	sb.WriteString(`{"problem_core": string, "affected_users": [string], "current_metrics": [string], "desired_outcome": string}.`)
	sb.WriteString("\n\nProblem statement:\n")
	sb.WriteString(session.ProblemStatement)

	if len(session.Constraints) > 0 {
		fmt.Fprintf(&sb, "\n\nConstraints:\n- %s", strings.Join(session.Constraints, "\n- "))
	}
	if len(session.Goals) > 0 {
		fmt.Fprintf(&sb, "\n\nGoals:\n- %s", strings.Join(session.Goals, "\n- "))
	}
	if len(session.ResearchInsights) > 0 {
		fmt.Fprintf(&sb, "\n\nResearch insights:\n- %s", strings.Join(session.ResearchInsights, "\n- "))
	}
	if contextText != "" {
		sb.WriteString("\n\nAdditional context:\n")
		sb.WriteString(contextText)
	}

	return sb.String()
}
