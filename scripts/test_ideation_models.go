//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-ideation-be/internal/config"
	"ai-ideation-be/pkg/embedding"
	"ai-ideation-be/pkg/ideation"
	"ai-ideation-be/pkg/llm/factory"
)

// Manual smoke check for the two model endpoints the pipeline depends on.
// Run with: go run scripts/test_ideation_models.go
func main() {
	cfg := config.Load()
	fmt.Printf("Loaded Config > LLM: %s / %s\n", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	fmt.Printf("Loaded Config > Embedding: %s / %s\n", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	ctx := context.Background()

	// 1. Completion round trip through the JSON extractor
	provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL,
		time.Duration(cfg.Ai.CompletionTimeout)*time.Second)
	if err != nil {
		log.Fatalf("Error creating LLM provider: %v", err)
	}
	completions := ideation.NewCompletionClient(provider)

	var probe struct {
		Answer string `json:"answer"`
	}
	prompt := "Respond with ONLY a JSON object {\"answer\": \"ok\"}."
	if err := completions.CompleteJSON(ctx, prompt, &probe); err != nil {
		log.Fatalf("Error on completion probe: %v", err)
	}
	fmt.Printf("Completion probe answer: %q\n", probe.Answer)

	// 2. Embedding dimensions
	embedder := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel,
		time.Duration(cfg.Ai.EmbeddingTimeout)*time.Second)

	resp, err := embedder.Generate(ctx, "Reduce onboarding drop-off for new users.", "SEMANTIC_SIMILARITY")
	if err != nil {
		log.Fatalf("Error generating embedding: %v", err)
	}
	dims := len(resp.Embedding.Values)
	fmt.Printf("Embedding dimensions: %d\n", dims)

	if dims == embedding.Dimension {
		fmt.Println("✅ Dimensions match the vector(768) schema.")
	} else {
		fmt.Printf("⚠️  Dimensions %d do NOT match the expected %d. (Is it a different model?)\n", dims, embedding.Dimension)
	}
}
