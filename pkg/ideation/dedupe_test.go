package ideation

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ideation-be/internal/entity"
)

func scoredIdea(order int, composite float64, embedding []float32) entity.Idea {
	c := composite
	return entity.Idea{
		Id:             uuid.New(),
		Title:          "Idea",
		Description:    "Description",
		Embedding:      embedding,
		CompositeScore: &c,
		DisplayOrder:   order,
	}
}

// oneHot returns a dim-length unit vector pointing along axis.
func oneHot(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis] = 1
	return v
}

// blend returns a unit vector with cosine similarity sim to axis a,
// orthogonal remainder on axis b.
func blend(dim, a, b int, sim float64) []float32 {
	v := make([]float32, dim)
	v[a] = float32(sim)
	v[b] = float32(math.Sqrt(1 - sim*sim))
	return v
}

// Eighteen ideas with two disjoint near-duplicate pairs: exactly two
// ideas are marked duplicate, sixteen stay final.
func TestDeduplicateTwoDisjointPairs(t *testing.T) {
	const dim = 18
	ideas := make([]entity.Idea, dim)
	for i := range ideas {
		ideas[i] = scoredIdea(i, float64(i), oneHot(dim, i))
	}
	ideas[7].Embedding = blend(dim, 2, 7, 0.95)
	ideas[12].Embedding = blend(dim, 4, 12, 0.92)

	plan, err := Deduplicate(ideas)
	require.NoError(t, err)

	assert.Equal(t, 2, plan.DuplicatesRemoved())
	assert.Len(t, plan.FinalIDs, 16)

	// each pair collapsed onto its higher-scored member
	assert.Equal(t, ideas[7].Id, plan.DuplicateOf[ideas[2].Id])
	assert.Equal(t, ideas[12].Id, plan.DuplicateOf[ideas[4].Id])
	assert.NotContains(t, plan.FinalIDs, ideas[2].Id)
	assert.NotContains(t, plan.FinalIDs, ideas[4].Id)
	assert.Contains(t, plan.FinalIDs, ideas[7].Id)
	assert.Contains(t, plan.FinalIDs, ideas[12].Id)
}

// Pairwise similarity above the threshold is resolved transitively: a~b
// and b~c put all three in one group even when a and c are far apart.
func TestDeduplicateResolvesTransitiveGroups(t *testing.T) {
	angle := func(deg float64) []float32 {
		rad := deg * math.Pi / 180
		return []float32{float32(math.Cos(rad)), float32(math.Sin(rad))}
	}

	ideas := []entity.Idea{
		scoredIdea(0, 40, angle(0)),
		scoredIdea(1, 80, angle(18)),
		scoredIdea(2, 60, angle(36)),
	}

	// sanity: only adjacent pairs cross the threshold
	require.Greater(t, CosineSimilarity(ideas[0].Embedding, ideas[1].Embedding), SimilarityThreshold)
	require.Greater(t, CosineSimilarity(ideas[1].Embedding, ideas[2].Embedding), SimilarityThreshold)
	require.Less(t, CosineSimilarity(ideas[0].Embedding, ideas[2].Embedding), SimilarityThreshold)

	plan, err := Deduplicate(ideas)
	require.NoError(t, err)

	assert.Equal(t, 2, plan.DuplicatesRemoved())
	require.Len(t, plan.FinalIDs, 1)
	assert.Equal(t, ideas[1].Id, plan.FinalIDs[0])

	// no chains: every duplicate points straight at the canonical
	assert.Equal(t, ideas[1].Id, plan.DuplicateOf[ideas[0].Id])
	assert.Equal(t, ideas[1].Id, plan.DuplicateOf[ideas[2].Id])
}

func TestDeduplicateTieBreaksOnDisplayOrder(t *testing.T) {
	ideas := []entity.Idea{
		scoredIdea(0, 75, []float32{1, 0}),
		scoredIdea(1, 75, []float32{1, 0.01}),
	}

	plan, err := Deduplicate(ideas)
	require.NoError(t, err)

	require.Len(t, plan.FinalIDs, 1)
	assert.Equal(t, ideas[0].Id, plan.FinalIDs[0], "first-generated idea wins ties")
	assert.Equal(t, ideas[0].Id, plan.DuplicateOf[ideas[1].Id])
}

func TestDeduplicateNoDuplicates(t *testing.T) {
	ideas := []entity.Idea{
		scoredIdea(0, 10, oneHot(4, 0)),
		scoredIdea(1, 20, oneHot(4, 1)),
		scoredIdea(2, 30, oneHot(4, 2)),
	}

	plan, err := Deduplicate(ideas)
	require.NoError(t, err)
	assert.Equal(t, 0, plan.DuplicatesRemoved())
	assert.Len(t, plan.FinalIDs, 3)
}

func TestDeduplicateRequiresScoresAndEmbeddings(t *testing.T) {
	noEmbedding := scoredIdea(0, 10, nil)
	_, err := Deduplicate([]entity.Idea{noEmbedding})
	require.Error(t, err)

	noScore := scoredIdea(0, 10, oneHot(4, 0))
	noScore.CompositeScore = nil
	_, err = Deduplicate([]entity.Idea{noScore})
	require.Error(t, err)
}
