package ideation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-ideation-be/internal/entity"
)

// IdeaGenerator produces the fixed-size, category-balanced idea set. One
// completion call per category; a malformed category response contributes
// zero ideas and the shortfall is padded deterministically.
type IdeaGenerator struct {
	completions *CompletionClient
}

func NewIdeaGenerator(completions *CompletionClient) *IdeaGenerator {
	return &IdeaGenerator{completions: completions}
}

type generatedIdeaPayload struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	EffortEstimate int    `json:"effort_estimate"`
	ImpactEstimate int    `json:"impact_estimate"`
}

type generateCategoryPayload struct {
	Ideas []generatedIdeaPayload `json:"ideas"`
}

// Generate returns exactly TargetIdeaCount drafts in category order. The
// degraded flag is set when any category response was unusable. External
// failures abort; all categories malformed is a MalformedResponseError.
func (g *IdeaGenerator) Generate(ctx context.Context, problem *entity.StructuredProblem, session *entity.IdeationSession, contextText string) ([]DraftIdea, bool, error) {
	perCategory := make([][]DraftIdea, len(Categories))
	degraded := false

	for i, category := range Categories {
		prompt := buildGeneratePrompt(problem, session, category, contextText)

		var payload generateCategoryPayload
		if err := g.completions.CompleteJSON(ctx, prompt, &payload); err != nil {
			if IsMalformed(err) {
				degraded = true
				continue
			}
			return nil, false, err
		}

		for _, raw := range payload.Ideas {
			draft, ok := sanitizeDraft(raw, category)
			if !ok {
				degraded = true
				continue
			}
			perCategory[i] = append(perCategory[i], draft)
			if len(perCategory[i]) >= PerCategoryCount {
				break
			}
		}
	}

	drafts := flattenDrafts(perCategory)
	if len(drafts) == 0 {
		return nil, false, &MalformedResponseError{Err: errors.New("no usable ideas in any category response")}
	}

	if len(drafts) < TargetIdeaCount {
		drafts = padDrafts(drafts, TargetIdeaCount)
		degraded = true
	}
	if len(drafts) > TargetIdeaCount {
		drafts = drafts[:TargetIdeaCount]
	}

	return drafts, degraded, nil
}

func sanitizeDraft(raw generatedIdeaPayload, category string) (DraftIdea, bool) {
	title := strings.TrimSpace(raw.Title)
	description := strings.TrimSpace(raw.Description)
	if title == "" || description == "" {
		return DraftIdea{}, false
	}
	return DraftIdea{
		Title:          title,
		Description:    description,
		Category:       category,
		EffortEstimate: clampEstimate(raw.EffortEstimate),
		ImpactEstimate: clampEstimate(raw.ImpactEstimate),
	}, true
}

func clampEstimate(v int) int {
	if v < 1 || v > 10 {
		return 5
	}
	return v
}

func flattenDrafts(perCategory [][]DraftIdea) []DraftIdea {
	var out []DraftIdea
	for _, drafts := range perCategory {
		out = append(out, drafts...)
	}
	return out
}

// padDrafts fills the shortfall by duplicating the last idea of the
// lowest-index non-empty category with a numbered variant suffix,
// reproducible given the same inputs.
func padDrafts(drafts []DraftIdea, target int) []DraftIdea {
	var seed *DraftIdea
	for _, category := range Categories {
		for i := range drafts {
			if drafts[i].Category == category {
				seed = &drafts[i]
			}
		}
		if seed != nil {
			break
		}
	}
	if seed == nil {
		seed = &drafts[len(drafts)-1]
	}

	base := *seed
	for n := 1; len(drafts) < target; n++ {
		variant := base
		variant.Title = fmt.Sprintf("%s (variant %d)", base.Title, n)
		drafts = append(drafts, variant)
	}
	return drafts
}

func buildGeneratePrompt(problem *entity.StructuredProblem, session *entity.IdeationSession, category string, contextText string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a product strategist. Propose exactly %d distinct %s ideas addressing the problem below.\n", PerCategoryCount, category)
	sb.WriteString(`Respond with ONLY a JSON object of the form {"ideas": [{"title": string, "description": string, "effort_estimate": 1-10, "impact_estimate": 1-10}]}.`)

	fmt.Fprintf(&sb, "\n\nProblem: %s", problem.ProblemCore)
	if len(problem.AffectedUsers) > 0 {
		fmt.Fprintf(&sb, "\nAffected users: %s", strings.Join(problem.AffectedUsers, ", "))
	}
	if problem.DesiredOutcome != "" {
		fmt.Fprintf(&sb, "\nDesired outcome: %s", problem.DesiredOutcome)
	}
	if len(session.Constraints) > 0 {
		fmt.Fprintf(&sb, "\nConstraints: %s", strings.Join(session.Constraints, "; "))
	}
	if contextText != "" {
		fmt.Fprintf(&sb, "\n\nAdditional context:\n%s", contextText)
	}

	return sb.String()
}
