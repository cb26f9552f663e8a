package ideation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"ai-ideation-be/internal/entity"
)

// Composite score weights. Effort and Risk count inverted: cheaper and
// safer ideas rank higher.
const (
	weightImpact       = 0.30
	weightFeasibility  = 0.25
	weightStrategicFit = 0.20
	weightEffort       = 0.15
	weightRisk         = 0.10
)

// CompositeScore derives the 0-100 ranking value from the five criterion
// scores. Pure: same inputs always produce the same output. Inputs are
// clamped to [0,10] first.
func CompositeScore(impact, feasibility, effort, strategicFit, risk float64) float64 {
	impact = clampScore(impact)
	feasibility = clampScore(feasibility)
	effort = clampScore(effort)
	strategicFit = clampScore(strategicFit)
	risk = clampScore(risk)

	return 10 * (impact*weightImpact +
		feasibility*weightFeasibility +
		strategicFit*weightStrategicFit +
		(10-effort)*weightEffort +
		(10-risk)*weightRisk)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// ScoringEngine obtains the five criterion scores per idea from the
// completion service, falling back to a deterministic heuristic over the
// raw effort/impact estimates when the response is malformed.
type ScoringEngine struct {
	completions *CompletionClient
	workers     int
}

func NewScoringEngine(completions *CompletionClient, workers int) *ScoringEngine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &ScoringEngine{completions: completions, workers: workers}
}

type scoringPayload struct {
	Impact       float64           `json:"impact"`
	Feasibility  float64           `json:"feasibility"`
	Effort       float64           `json:"effort"`
	StrategicFit float64           `json:"strategic_fit"`
	Risk         float64           `json:"risk"`
	Rationale    map[string]string `json:"rationale"`
}

// Score computes criterion scores for every idea. Malformed responses use
// the heuristic fallback and are counted; an external service failure
// aborts the step.
func (s *ScoringEngine) Score(ctx context.Context, problem *entity.StructuredProblem, ideas []entity.Idea) (*ScoreResult, error) {
	result := &ScoreResult{
		ByID: make(map[uuid.UUID]entity.CriterionScores, len(ideas)),
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	sem := make(chan struct{}, s.workers)

	for i := range ideas {
		idea := ideas[i]
		wg.Add(1)
		sem <- struct{}{}

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			scores, fallback, err := s.scoreOne(ctx, problem, idea)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if fallback {
				result.Fallbacks++
			}
			result.ByID[idea.Id] = scores
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return result, nil
}

func (s *ScoringEngine) scoreOne(ctx context.Context, problem *entity.StructuredProblem, idea entity.Idea) (entity.CriterionScores, bool, error) {
	prompt := fmt.Sprintf(
		"Score the product idea below against the problem on five criteria, each 0-10: impact, feasibility, effort (10 = most effort), strategic_fit, risk (10 = riskiest). Respond with ONLY a JSON object {\"impact\": number, \"feasibility\": number, \"effort\": number, \"strategic_fit\": number, \"risk\": number, \"rationale\": {\"impact\": string, \"feasibility\": string, \"effort\": string, \"strategic_fit\": string, \"risk\": string}}.\n\nProblem: %s\nIdea: %s\nDetails: %s",
		problem.ProblemCore, idea.Title, idea.Description)

	var payload scoringPayload
	if err := s.completions.CompleteJSON(ctx, prompt, &payload); err != nil {
		if IsMalformed(err) {
			return heuristicScores(idea), true, nil
		}
		return entity.CriterionScores{}, false, err
	}

	scores := entity.CriterionScores{
		Impact:       clampScore(payload.Impact),
		Feasibility:  clampScore(payload.Feasibility),
		Effort:       clampScore(payload.Effort),
		StrategicFit: clampScore(payload.StrategicFit),
		Risk:         clampScore(payload.Risk),
		Rationale:    payload.Rationale,
	}
	scores.Composite = CompositeScore(scores.Impact, scores.Feasibility, scores.Effort, scores.StrategicFit, scores.Risk)
	return scores, false, nil
}

// heuristicScores derives scores from the raw estimates captured at
// generation time. Deterministic per idea.
func heuristicScores(idea entity.Idea) entity.CriterionScores {
	impact := clampScore(float64(idea.ImpactEstimate))
	effort := clampScore(float64(idea.EffortEstimate))

	scores := entity.CriterionScores{
		Impact:       impact,
		Feasibility:  10 - effort,
		Effort:       effort,
		StrategicFit: 5,
		Risk:         5,
		Rationale: map[string]string{
			"note": "derived from raw effort/impact estimates",
		},
	}
	scores.Composite = CompositeScore(scores.Impact, scores.Feasibility, scores.Effort, scores.StrategicFit, scores.Risk)
	return scores
}
