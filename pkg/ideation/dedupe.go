package ideation

import (
	"github.com/google/uuid"

	"ai-ideation-be/internal/entity"
)

// DuplicatePlan is the outcome of deduplication: which ideas collapse
// onto which canonical idea, and which survive as final.
type DuplicatePlan struct {
	// DuplicateOf maps each duplicate idea to its canonical idea. The
	// canonical is never itself a duplicate, so no chains form.
	DuplicateOf map[uuid.UUID]uuid.UUID
	FinalIDs    []uuid.UUID
}

// DuplicatesRemoved is the number of ideas marked duplicate.
func (p *DuplicatePlan) DuplicatesRemoved() int {
	return len(p.DuplicateOf)
}

// Deduplicate groups ideas whose embeddings exceed the similarity
// threshold (transitively, via union-find) and keeps one canonical idea
// per group: highest composite score, ties broken by lowest display
// order. Ideas must carry embeddings and composite scores.
func Deduplicate(ideas []entity.Idea) (*DuplicatePlan, error) {
	n := len(ideas)
	for i := range ideas {
		if len(ideas[i].Embedding) == 0 {
			return nil, &PipelineInternalError{Message: "idea without embedding entering deduplication"}
		}
		if ideas[i].CompositeScore == nil {
			return nil, &PipelineInternalError{Message: "idea without composite score entering deduplication"}
		}
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if CosineSimilarity(ideas[i].Embedding, ideas[j].Embedding) > SimilarityThreshold {
				union(i, j)
			}
		}
	}

	groups := map[int][]int{}
	for i := 0; i < n; i++ {
		root := find(i)
		groups[root] = append(groups[root], i)
	}

	plan := &DuplicatePlan{
		DuplicateOf: map[uuid.UUID]uuid.UUID{},
	}

	for i := 0; i < n; i++ {
		members := groups[find(i)]
		if members[0] != i {
			continue // handle each group once, at its first member
		}

		canonical := members[0]
		for _, m := range members[1:] {
			if better(ideas[m], ideas[canonical]) {
				canonical = m
			}
		}

		plan.FinalIDs = append(plan.FinalIDs, ideas[canonical].Id)
		for _, m := range members {
			if m != canonical {
				plan.DuplicateOf[ideas[m].Id] = ideas[canonical].Id
			}
		}
	}

	return plan, nil
}

func better(a, b entity.Idea) bool {
	if *a.CompositeScore != *b.CompositeScore {
		return *a.CompositeScore > *b.CompositeScore
	}
	return a.DisplayOrder < b.DisplayOrder
}
