package recommender

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-user-dashboard/internal/model"
)

func user(login string, languages ...string) *model.User {
	langMap := model.CountMap{}
	for _, language := range languages {
		langMap[language] = 100
	}
	return &model.User{
		Login:      login,
		Name:       login,
		ProfileUrl: "https://github.com/" + login,
		Languages:  langMap,
	}
}

func TestRecommendIdenticalLanguageSets(t *testing.T) {
	corpus := []*model.User{
		user("target", "Go", "Python"),
		user("twin-a", "Go", "Python"),
		user("twin-b", "Python", "Go"),
	}

	results, err := Recommend(corpus, "target", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, rec := range results {
		assert.Equal(t, 1.0, rec.Score)
		assert.Equal(t, []string{"Go", "Python"}, rec.SharedLanguages)
	}
}

func TestRecommendDisjointLanguageSets(t *testing.T) {
	corpus := []*model.User{
		user("target", "Go"),
		user("other", "Haskell"),
	}

	results, err := Recommend(corpus, "target", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
	assert.Empty(t, results[0].SharedLanguages)
}

func TestRecommendNeverReturnsTarget(t *testing.T) {
	corpus := []*model.User{
		user("target", "Go"),
		user("a", "Go"),
		user("b", "Go", "Rust"),
	}

	results, err := Recommend(corpus, "target", 10)
	require.NoError(t, err)
	for _, rec := range results {
		assert.NotEqual(t, "target", rec.Login)
	}
}

func TestRecommendScoresWithinCosineRange(t *testing.T) {
	corpus := []*model.User{
		user("target", "Go", "Python", "C"),
		user("a", "Go"),
		user("b", "Python", "C"),
		user("c", "Rust", "Haskell"),
		user("d", "Go", "Python", "C"),
	}

	results, err := Recommend(corpus, "target", 10)
	require.NoError(t, err)
	for _, rec := range results {
		assert.GreaterOrEqual(t, rec.Score, -1.0)
		assert.LessOrEqual(t, rec.Score, 1.0)
	}
}

func TestRecommendTruncatesAndSorts(t *testing.T) {
	corpus := []*model.User{user("target", "Go", "Python", "C", "Rust", "Java")}
	languages := []string{"Go", "Python", "C", "Rust", "Java"}
	for i := 0; i < 50; i++ {
		// Varying overlap sizes so scores spread out
		corpus = append(corpus, user(fmt.Sprintf("candidate-%02d", i), languages[:i%5+1]...))
	}

	results, err := Recommend(corpus, "target", 10)
	require.NoError(t, err)
	require.Len(t, results, 10)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestRecommendTiesKeepCorpusOrder(t *testing.T) {
	corpus := []*model.User{
		user("target", "Go"),
		user("first", "Go"),
		user("second", "Go"),
		user("third", "Go"),
	}

	results, err := Recommend(corpus, "target", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Login)
	assert.Equal(t, "second", results[1].Login)
	assert.Equal(t, "third", results[2].Login)
}

func TestRecommendExcludesUsersWithoutLanguages(t *testing.T) {
	corpus := []*model.User{
		user("target", "Go"),
		user("empty"),
		user("peer", "Go"),
	}

	results, err := Recommend(corpus, "target", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "peer", results[0].Login)
}

func TestRecommendTargetWithoutLanguages(t *testing.T) {
	corpus := []*model.User{
		user("target"),
		user("peer", "Go"),
	}

	_, err := Recommend(corpus, "target", 10)
	require.ErrorIs(t, err, ErrTargetNotFound)
}

func TestRecommendUnknownTarget(t *testing.T) {
	corpus := []*model.User{user("peer", "Go")}

	_, err := Recommend(corpus, "stranger", 10)
	require.ErrorIs(t, err, ErrTargetNotFound)
}

func TestRecommendLonelyCorpus(t *testing.T) {
	corpus := []*model.User{user("target", "Go")}

	results, err := Recommend(corpus, "target", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRecommendPartialOverlapScore(t *testing.T) {
	corpus := []*model.User{
		user("target", "Go", "Python"),
		user("peer", "Go", "Rust"),
	}

	results, err := Recommend(corpus, "target", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	// cos = 1 / (sqrt(2) * sqrt(2)) = 0.5
	assert.Equal(t, 0.5, results[0].Score)
	assert.Equal(t, []string{"Go"}, results[0].SharedLanguages)
}
