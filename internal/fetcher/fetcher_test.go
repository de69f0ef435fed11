package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-user-dashboard/cfg"
	githubapi "github.com/thep200/github-user-dashboard/internal/github_api"
	"github.com/thep200/github-user-dashboard/internal/model"
	"github.com/thep200/github-user-dashboard/pkg/log"
)

// fakeGithub serves the endpoint set of one user: three repositories, of
// which "beta" is a fork and "gamma" has no primary language.
type fakeGithub struct {
	mux *http.ServeMux

	failFollowers bool
	failLanguages bool
	failRepos     bool
}

func newFakeGithub(t *testing.T) (*fakeGithub, *httptest.Server) {
	t.Helper()
	fake := &fakeGithub{mux: http.NewServeMux()}

	writeJson := func(w http.ResponseWriter, payload interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}

	fake.mux.HandleFunc("/users/testuser", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, githubapi.UserResponse{
			Login:       "testuser",
			Name:        "Test User",
			Bio:         "writes Go",
			AvatarUrl:   "https://example.com/avatar.png",
			HtmlUrl:     "https://github.com/testuser",
			PublicRepos: 3,
			Followers:   2,
			Following:   1,
			CreatedAt:   time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		})
	})

	fake.mux.HandleFunc("/users/testuser/repos", func(w http.ResponseWriter, r *http.Request) {
		if fake.failRepos {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJson(w, []githubapi.RepoResponse{
			{Id: 1, Name: "alpha", Language: "Go", StargazersCount: 10},
			{Id: 2, Name: "beta", Language: "Python", StargazersCount: 5, Fork: true},
			{Id: 3, Name: "gamma", Language: "", StargazersCount: 2},
		})
	})

	languages := map[string]map[string]int64{
		"alpha": {"Go": 1500, "HTML": 300},
		"beta":  {"Python": 700},
		"gamma": {"Go": 100},
	}
	for repo, langs := range languages {
		repo, langs := repo, langs
		fake.mux.HandleFunc("/repos/testuser/"+repo+"/languages", func(w http.ResponseWriter, r *http.Request) {
			if fake.failLanguages {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			writeJson(w, langs)
		})
	}

	fake.mux.HandleFunc("/repos/testuser/alpha/commits", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("per_page") == "1" {
			w.Header().Set("Link",
				`<https://api.github.com/repos/testuser/alpha/commits?per_page=1&page=2>; rel="next", `+
					`<https://api.github.com/repos/testuser/alpha/commits?per_page=1&page=7>; rel="last"`)
			writeJson(w, []githubapi.CommitResponse{{SHA: "a1"}})
			return
		}
		writeJson(w, []githubapi.CommitResponse{
			{SHA: "a1", Commit: githubapi.CommitDetail{Author: githubapi.CommitAuthor{Date: time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC)}}},
			{SHA: "a2", Commit: githubapi.CommitDetail{Author: githubapi.CommitAuthor{Date: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)}}},
		})
	})

	fake.mux.HandleFunc("/repos/testuser/gamma/commits", func(w http.ResponseWriter, r *http.Request) {
		// No Link header: the item count is the commit count
		writeJson(w, []githubapi.CommitResponse{
			{SHA: "g1", Commit: githubapi.CommitDetail{Author: githubapi.CommitAuthor{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}}},
		})
	})

	fake.mux.HandleFunc("/users/testuser/followers", func(w http.ResponseWriter, r *http.Request) {
		if fake.failFollowers {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJson(w, []githubapi.SimpleUser{{Login: "alice"}, {Login: "bob"}})
	})
	fake.mux.HandleFunc("/users/testuser/following", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, []githubapi.SimpleUser{{Login: "carol"}})
	})
	fake.mux.HandleFunc("/users/testuser/orgs", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, []githubapi.SimpleUser{{Login: "gophers"}})
	})
	fake.mux.HandleFunc("/users/testuser/starred", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, []githubapi.StarredRepo{{HtmlUrl: "https://github.com/golang/go"}})
	})
	fake.mux.HandleFunc("/users/testuser/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, []githubapi.StarredRepo{{HtmlUrl: "https://github.com/spf13/viper"}})
	})

	server := httptest.NewServer(fake.mux)
	t.Cleanup(server.Close)
	return fake, server
}

func newTestFetcher(t *testing.T, apiUrl string) *Fetcher {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, _ := loader.Load()
	config.GithubApi.ApiUrl = apiUrl

	logger, _ := log.NewCslLogger()
	caller := githubapi.NewCaller(logger, config)
	fetcher, err := NewFetcher(logger, config, caller)
	require.NoError(t, err)
	return fetcher
}

func TestFetchAggregatesRepositories(t *testing.T) {
	_, server := newFakeGithub(t)
	fetcher := newTestFetcher(t, server.URL)

	record, err := fetcher.Fetch(context.Background(), "testuser")
	require.NoError(t, err)

	assert.Equal(t, "testuser", record.Login)
	assert.Equal(t, "Test User", record.Name)
	assert.Equal(t, 3, record.PublicRepos)
	assert.Equal(t, 2, record.FollowersCount)

	// Byte counts summed across repositories
	assert.Equal(t, model.CountMap{"Go": 1600, "HTML": 300, "Python": 700}, record.Languages)

	// Stars keyed by repository and by primary language; forks count
	assert.Equal(t, model.CountMap{"alpha": 10, "beta": 5, "gamma": 2}, record.StarsPerRepo)
	assert.Equal(t, model.CountMap{"Go": 10, "Python": 5, "Unknown": 2}, record.StarsPerLang)

	// Commit counting skips the fork; alpha's count comes from the Link
	// header, gamma's from the item count
	assert.Equal(t, model.CountMap{"alpha": 7, "gamma": 1}, record.CommitsPerRepo)
	assert.Equal(t, model.CountMap{"Go": 7, "Unknown": 1}, record.CommitsPerLang)
	assert.Equal(t, int64(8), record.TotalCommits)

	assert.Len(t, record.CommitDates, 3)

	assert.Equal(t, model.StringList{"alice", "bob"}, record.FollowersList)
	assert.Equal(t, model.StringList{"carol"}, record.FollowingList)
	assert.Equal(t, model.StringList{"gophers"}, record.Organizations)
	assert.Equal(t, model.StringList{"https://github.com/golang/go"}, record.StarredRepos)
	assert.Equal(t, model.StringList{"https://github.com/spf13/viper"}, record.Subscriptions)

	// Static placeholders attached to every record
	assert.Equal(t, model.DefaultPlatforms, record.Platforms)
	assert.Equal(t, model.DefaultWebFrameworks, record.WebFrameworks)
}

func TestFetchCommitSumsAreConsistent(t *testing.T) {
	_, server := newFakeGithub(t)
	fetcher := newTestFetcher(t, server.URL)

	record, err := fetcher.Fetch(context.Background(), "testuser")
	require.NoError(t, err)

	var perRepo, perLang int64
	for _, count := range record.CommitsPerRepo {
		perRepo += count
	}
	for _, count := range record.CommitsPerLang {
		perLang += count
	}
	assert.Equal(t, perRepo, perLang)
	assert.Equal(t, perRepo, record.TotalCommits)
}

func TestFetchIsIdempotent(t *testing.T) {
	_, server := newFakeGithub(t)
	fetcher := newTestFetcher(t, server.URL)

	first, err := fetcher.Fetch(context.Background(), "testuser")
	require.NoError(t, err)
	second, err := fetcher.Fetch(context.Background(), "testuser")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFetchUnknownUserFails(t *testing.T) {
	_, server := newFakeGithub(t)
	fetcher := newTestFetcher(t, server.URL)

	_, err := fetcher.Fetch(context.Background(), "nobody")
	require.ErrorIs(t, err, githubapi.ErrUserNotFound)
}

func TestFetchDegradesSecondaryFailures(t *testing.T) {
	fake, server := newFakeGithub(t)
	fake.failFollowers = true
	fake.failLanguages = true
	fetcher := newTestFetcher(t, server.URL)

	record, err := fetcher.Fetch(context.Background(), "testuser")
	require.NoError(t, err)

	// Failed secondary endpoints degrade to empty, the fetch survives
	assert.Empty(t, record.FollowersList)
	assert.Empty(t, record.Languages)

	// Untouched fields still aggregate
	assert.Equal(t, model.StringList{"carol"}, record.FollowingList)
	assert.Equal(t, int64(8), record.TotalCommits)
}

func TestFetchDegradesRepoListFailure(t *testing.T) {
	fake, server := newFakeGithub(t)
	fake.failRepos = true
	fetcher := newTestFetcher(t, server.URL)

	record, err := fetcher.Fetch(context.Background(), "testuser")
	require.NoError(t, err)

	assert.Empty(t, record.Languages)
	assert.Empty(t, record.StarsPerRepo)
	assert.Zero(t, record.TotalCommits)
	// Profile identity is untouched by the repo failure
	assert.Equal(t, "testuser", record.Login)
}
