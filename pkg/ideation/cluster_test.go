package ideation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetClusterCount(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 3},
		{9, 3},
		{10, 3},
		{16, 4},
		{18, 4},
		{25, 5},
		{36, 5},
		{100, 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, TargetClusterCount(tt.n))
		})
	}
}

// groupedEmbeddings builds 18 vectors in four well-separated directions:
// indexes 0-4, 5-9, 10-13, 14-17.
func groupedEmbeddings() ([]string, [][]float32) {
	directions := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 1},
	}
	sizes := []int{5, 5, 4, 4}

	var titles []string
	var embeddings [][]float32
	for g, size := range sizes {
		for i := 0; i < size; i++ {
			vec := make([]float32, 3)
			copy(vec, directions[g])
			// small in-group jitter, deterministic
			vec[g%3] += float32(i) * 0.001
			embeddings = append(embeddings, vec)
			titles = append(titles, fmt.Sprintf("group%d idea %d", g, i))
		}
	}
	return titles, embeddings
}

func TestClusterGroupsSeparatedEmbeddings(t *testing.T) {
	engine := NewClusterEngine(nil)
	titles, embeddings := groupedEmbeddings()

	result, err := engine.Cluster(context.Background(), titles, embeddings)
	require.NoError(t, err)

	k := len(result.Clusters)
	assert.GreaterOrEqual(t, k, MinClusters)
	assert.LessOrEqual(t, k, MaxClusters)
	assert.Equal(t, 4, k)

	// every idea assigned, numbers within [1, k]
	require.Len(t, result.Assignments, 18)
	for _, number := range result.Assignments {
		assert.GreaterOrEqual(t, number, 1)
		assert.LessOrEqual(t, number, k)
	}

	// members of the same direction share a cluster
	for i := 1; i < 5; i++ {
		assert.Equal(t, result.Assignments[0], result.Assignments[i])
	}
	for i := 6; i < 10; i++ {
		assert.Equal(t, result.Assignments[5], result.Assignments[i])
	}
	for i := 11; i < 14; i++ {
		assert.Equal(t, result.Assignments[10], result.Assignments[i])
	}
	for i := 15; i < 18; i++ {
		assert.Equal(t, result.Assignments[14], result.Assignments[i])
	}

	// cluster numbers follow generation order of their first member
	assert.Equal(t, 1, result.Assignments[0])
	assert.Equal(t, 2, result.Assignments[5])
	assert.Equal(t, 3, result.Assignments[10])
	assert.Equal(t, 4, result.Assignments[14])
}

func TestClusterIsDeterministic(t *testing.T) {
	engine := NewClusterEngine(nil)
	titles, embeddings := groupedEmbeddings()

	first, err := engine.Cluster(context.Background(), titles, embeddings)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := engine.Cluster(context.Background(), titles, embeddings)
		require.NoError(t, err)
		assert.Equal(t, first.Assignments, again.Assignments)
		for c := range first.Clusters {
			assert.Equal(t, first.Clusters[c].ThemeName, again.Clusters[c].ThemeName)
			assert.Equal(t, first.Clusters[c].MemberIndexes, again.Clusters[c].MemberIndexes)
		}
	}
}

func TestClusterCentroidIsMemberMean(t *testing.T) {
	engine := NewClusterEngine(nil)
	titles := []string{"a", "b", "c"}
	embeddings := [][]float32{
		{1, 0},
		{0, 1},
		{1, 1},
	}

	result, err := engine.Cluster(context.Background(), titles, embeddings)
	require.NoError(t, err)
	// n=3 keeps every idea in its own cluster
	require.Len(t, result.Clusters, 3)

	for _, cluster := range result.Clusters {
		require.Len(t, cluster.MemberIndexes, 1)
		assert.Equal(t, embeddings[cluster.MemberIndexes[0]], cluster.Centroid)
	}
}

func TestClusterCountClampedBelowThreeIdeas(t *testing.T) {
	engine := NewClusterEngine(nil)

	result, err := engine.Cluster(context.Background(),
		[]string{"only", "pair"},
		[][]float32{{1, 0}, {0, 1}},
	)
	require.NoError(t, err)
	assert.Len(t, result.Clusters, 2)
}

func TestClusterRejectsEmptyInput(t *testing.T) {
	engine := NewClusterEngine(nil)

	_, err := engine.Cluster(context.Background(), nil, nil)
	require.Error(t, err)

	var internal *PipelineInternalError
	assert.ErrorAs(t, err, &internal)
}

func TestClusterThemeRefinementFallsBackOnFailure(t *testing.T) {
	engine := NewClusterEngine(newCompletionsWith(func(string) (string, error) {
		return "not json at all", nil
	}))
	titles, embeddings := groupedEmbeddings()

	result, err := engine.Cluster(context.Background(), titles, embeddings)
	require.NoError(t, err)

	for _, cluster := range result.Clusters {
		assert.NotEmpty(t, cluster.ThemeName)
		assert.NotEmpty(t, cluster.ThemeDescription)
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
