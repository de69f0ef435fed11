// Package recommender ranks stored users by programming language overlap.
// Every user with at least one known language becomes a binary presence
// vector over the corpus language union; candidates are ordered by cosine
// similarity against the target vector.

package recommender

import (
	"errors"
	"math"
	"sort"

	"github.com/thep200/github-user-dashboard/internal/model"
)

// ErrTargetNotFound means the target login is absent from the similarity
// space: either never stored or stored without any language data.
var ErrTargetNotFound = errors.New("target user not in similarity space")

// DefaultTopN bounds the result list when the caller does not.
const DefaultTopN = 10

type Recommendation struct {
	Login           string   `json:"login"`
	Name            string   `json:"name"`
	AvatarUrl       string   `json:"avatar_url"`
	ProfileUrl      string   `json:"profile_url"`
	Score           float64  `json:"score"`
	SharedLanguages []string `json:"shared_languages"`
}

// Recommend returns the topN users most similar to targetLogin. Users
// without language data do not appear as candidates and contribute no
// vector dimension. Ties keep corpus order (stable sort, no secondary
// key). A corpus whose only eligible user is the target yields an empty
// list, not an error.
func Recommend(corpus []*model.User, targetLogin string, topN int) ([]Recommendation, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	eligible := make([]*model.User, 0, len(corpus))
	for _, user := range corpus {
		if len(user.Languages) > 0 {
			eligible = append(eligible, user)
		}
	}

	targetIdx := -1
	for i, user := range eligible {
		if user.Login == targetLogin {
			targetIdx = i
			break
		}
	}
	if targetIdx == -1 {
		return nil, ErrTargetNotFound
	}

	dimensions, vectors := incidenceMatrix(eligible)
	targetVector := vectors[targetIdx]

	type scored struct {
		idx   int
		score float64
	}

	candidates := make([]scored, 0, len(eligible)-1)
	for i := range eligible {
		if i == targetIdx {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: cosine(targetVector, vectors[i])})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	results := make([]Recommendation, 0, len(candidates))
	for _, candidate := range candidates {
		user := eligible[candidate.idx]
		results = append(results, Recommendation{
			Login:           user.Login,
			Name:            user.Name,
			AvatarUrl:       user.AvatarUrl,
			ProfileUrl:      user.ProfileUrl,
			Score:           math.Round(candidate.score*1000) / 1000,
			SharedLanguages: shared(dimensions, targetVector, vectors[candidate.idx]),
		})
	}

	return results, nil
}

// incidenceMatrix builds the binary user-by-language matrix. Columns are
// the language union in first-seen order over each user's sorted language
// list, so the matrix is deterministic for a given corpus order.
func incidenceMatrix(users []*model.User) ([]string, [][]float64) {
	index := map[string]int{}
	dimensions := []string{}
	for _, user := range users {
		for _, name := range user.LanguageNames() {
			if _, seen := index[name]; !seen {
				index[name] = len(dimensions)
				dimensions = append(dimensions, name)
			}
		}
	}

	vectors := make([][]float64, len(users))
	for i, user := range users {
		vector := make([]float64, len(dimensions))
		for name := range user.Languages {
			vector[index[name]] = 1
		}
		vectors[i] = vector
	}

	return dimensions, vectors
}

// shared lists the languages both vectors mark, in matrix column order.
func shared(dimensions []string, a, b []float64) []string {
	languages := []string{}
	for i, name := range dimensions {
		if a[i] == 1 && b[i] == 1 {
			languages = append(languages, name)
		}
	}
	return languages
}

func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
