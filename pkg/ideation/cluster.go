package ideation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ClusterSummary describes one theme produced by the cluster engine.
// MemberIndexes refer to positions in the input slices, which arrive in
// display order.
type ClusterSummary struct {
	Number           int
	MemberIndexes    []int
	Centroid         []float32
	ThemeName        string
	ThemeDescription string
}

// ClusterResult maps every input idea to a cluster number in [1, k].
type ClusterResult struct {
	Assignments []int
	Clusters    []ClusterSummary
}

// ClusterEngine groups idea embeddings into themes using deterministic
// average-linkage agglomerative clustering over cosine distance. The
// completion client is optional; when present it refines theme wording,
// falling back to the keyword heuristic on any failure.
type ClusterEngine struct {
	completions *CompletionClient
}

func NewClusterEngine(completions *CompletionClient) *ClusterEngine {
	return &ClusterEngine{completions: completions}
}

// TargetClusterCount returns k = clamp(round(sqrt(n)), 3, 5), further
// clamped to n when fewer than three ideas exist.
func TargetClusterCount(n int) int {
	if n <= 0 {
		return 0
	}
	k := int(math.Round(math.Sqrt(float64(n))))
	if k < MinClusters {
		k = MinClusters
	}
	if k > MaxClusters {
		k = MaxClusters
	}
	if k > n {
		k = n
	}
	return k
}

// Cluster assigns every idea to a theme. Titles and embeddings are
// parallel slices in display order.
func (e *ClusterEngine) Cluster(ctx context.Context, titles []string, embeddings [][]float32) (*ClusterResult, error) {
	n := len(embeddings)
	if n == 0 {
		return nil, &PipelineInternalError{Message: "zero ideas entering clustering"}
	}
	if len(titles) != n {
		return nil, &PipelineInternalError{Message: "title/embedding count mismatch"}
	}
	for i, emb := range embeddings {
		if len(emb) == 0 {
			return nil, &PipelineInternalError{Message: fmt.Sprintf("idea %d has no embedding", i)}
		}
	}

	k := TargetClusterCount(n)
	groups := agglomerate(embeddings, k)

	// Number clusters 1..k by their lowest member index so output order
	// follows generation order.
	sort.Slice(groups, func(a, b int) bool {
		return groups[a][0] < groups[b][0]
	})

	result := &ClusterResult{
		Assignments: make([]int, n),
		Clusters:    make([]ClusterSummary, 0, k),
	}

	for idx, members := range groups {
		number := idx + 1
		for _, m := range members {
			result.Assignments[m] = number
		}

		memberTitles := make([]string, len(members))
		for i, m := range members {
			memberTitles[i] = titles[m]
		}
		name, description := themeFromTitles(memberTitles)

		summary := ClusterSummary{
			Number:           number,
			MemberIndexes:    members,
			Centroid:         meanVector(embeddings, members),
			ThemeName:        name,
			ThemeDescription: description,
		}
		e.refineTheme(ctx, &summary, memberTitles)
		result.Clusters = append(result.Clusters, summary)
	}

	return result, nil
}

// agglomerate merges the closest pair of clusters (average-linkage cosine
// distance, ties broken by lowest index pair) until k remain. Each group
// is kept sorted so merge order is fully deterministic.
func agglomerate(embeddings [][]float32, k int) [][]int {
	n := len(embeddings)

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			d := 1 - CosineSimilarity(embeddings[i], embeddings[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	groups := make([][]int, n)
	for i := range groups {
		groups[i] = []int{i}
	}

	for len(groups) > k {
		bestA, bestB := 0, 1
		bestD := math.Inf(1)
		for a := 0; a < len(groups); a++ {
			for b := a + 1; b < len(groups); b++ {
				d := averageLinkage(dist, groups[a], groups[b])
				if d < bestD {
					bestD = d
					bestA, bestB = a, b
				}
			}
		}

		merged := append(append([]int{}, groups[bestA]...), groups[bestB]...)
		sort.Ints(merged)
		groups[bestA] = merged
		groups = append(groups[:bestB], groups[bestB+1:]...)
	}

	return groups
}

func averageLinkage(dist [][]float64, a, b []int) float64 {
	var sum float64
	for _, i := range a {
		for _, j := range b {
			sum += dist[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when either vector has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	var dot, magA, magB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		magA += av * av
		magB += bv * bv
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func meanVector(embeddings [][]float32, members []int) []float32 {
	dim := len(embeddings[members[0]])
	sum := make([]float64, dim)
	for _, m := range members {
		for i, v := range embeddings[m] {
			sum[i] += float64(v)
		}
	}
	out := make([]float32, dim)
	for i := range sum {
		out[i] = float32(sum[i] / float64(len(members)))
	}
	return out
}

var themeStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "into": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "our": true,
	"the": true, "to": true, "via": true, "with": true, "your": true,
	"new": true, "more": true, "using": true, "based": true, "variant": true,
}

// themeFromTitles derives a theme from the most frequent meaningful
// keywords across member titles. Deterministic: frequency desc, then
// first-seen order.
func themeFromTitles(titles []string) (string, string) {
	counts := map[string]int{}
	var order []string

	for _, title := range titles {
		for _, word := range strings.Fields(strings.ToLower(title)) {
			word = strings.Trim(word, ".,:;!?()[]\"'0123456789")
			if len(word) < 3 || themeStopwords[word] {
				continue
			}
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	if len(order) == 0 {
		return "General", "Ideas without a dominant shared topic."
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	top := order
	if len(top) > 2 {
		top = top[:2]
	}
	for i, w := range top {
		top[i] = titleCase(w)
	}

	name := strings.Join(top, " & ")
	description := fmt.Sprintf("Ideas centered on %s, covering %d related proposals.",
		strings.ToLower(name), len(titles))
	return name, description
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

// refineTheme asks the model for better theme wording. Best effort: any
// failure keeps the heuristic name.
func (e *ClusterEngine) refineTheme(ctx context.Context, cluster *ClusterSummary, memberTitles []string) {
	if e.completions == nil {
		return
	}

	prompt := fmt.Sprintf(
		"Name the common theme of these ideas in at most 4 words, then describe it in one sentence. Respond with ONLY a JSON object {\"name\": string, \"description\": string}.\n\nIdeas:\n- %s",
		strings.Join(memberTitles, "\n- "))

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := e.completions.CompleteJSON(ctx, prompt, &payload); err != nil {
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		return
	}
	cluster.ThemeName = strings.TrimSpace(payload.Name)
	if strings.TrimSpace(payload.Description) != "" {
		cluster.ThemeDescription = strings.TrimSpace(payload.Description)
	}
}
