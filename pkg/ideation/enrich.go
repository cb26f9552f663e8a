package ideation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"ai-ideation-be/internal/entity"
)

// EnrichmentEngine attaches use cases, edge cases, and implementation
// notes to each idea. Calls run under a bounded worker pool; per-idea
// failures leave that idea's lists empty and the run continues.
type EnrichmentEngine struct {
	completions *CompletionClient
	workers     int
}

func NewEnrichmentEngine(completions *CompletionClient, workers int) *EnrichmentEngine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &EnrichmentEngine{completions: completions, workers: workers}
}

type enrichmentPayload struct {
	UseCases            []string `json:"use_cases"`
	EdgeCases           []string `json:"edge_cases"`
	ImplementationNotes []string `json:"implementation_notes"`
}

// Enrich processes every idea and reports how many failed. When every
// single call fails on the external service itself the run is aborted
// with an ExternalServiceError; partial failure is tolerated.
func (e *EnrichmentEngine) Enrich(ctx context.Context, problem *entity.StructuredProblem, ideas []entity.Idea) (*EnrichmentResult, error) {
	result := &EnrichmentResult{
		ByID:  make(map[uuid.UUID]Enrichment, len(ideas)),
		Total: len(ideas),
	}

	var (
		mu               sync.Mutex
		wg               sync.WaitGroup
		externalFailures int
		firstExternal    error
	)
	sem := make(chan struct{}, e.workers)

	for i := range ideas {
		idea := ideas[i]
		wg.Add(1)
		sem <- struct{}{}

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			enrichment, err := e.enrichOne(ctx, problem, idea)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				if IsRetryable(err) {
					externalFailures++
					if firstExternal == nil {
						firstExternal = err
					}
				}
				return
			}
			result.ByID[idea.Id] = enrichment
		}()
	}

	wg.Wait()

	if len(ideas) > 0 && externalFailures == len(ideas) {
		return nil, firstExternal
	}

	return result, nil
}

func (e *EnrichmentEngine) enrichOne(ctx context.Context, problem *entity.StructuredProblem, idea entity.Idea) (Enrichment, error) {
	prompt := fmt.Sprintf(
		"For the product idea below, list 3 use cases, 3 edge cases, and 3 implementation notes. Respond with ONLY a JSON object {\"use_cases\": [string], \"edge_cases\": [string], \"implementation_notes\": [string]}.\n\nProblem: %s\nIdea: %s\nDetails: %s",
		problem.ProblemCore, idea.Title, idea.Description)

	var payload enrichmentPayload
	if err := e.completions.CompleteJSON(ctx, prompt, &payload); err != nil {
		return Enrichment{}, err
	}

	return Enrichment{
		UseCases:            nonNil(payload.UseCases),
		EdgeCases:           nonNil(payload.EdgeCases),
		ImplementationNotes: nonNil(payload.ImplementationNotes),
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
