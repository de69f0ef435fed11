// Package fetcher aggregates the GitHub profile of one user into the flat
// record the dashboard stores and renders. The fetch is pure: it never
// touches the store, so a failed fetch can never clobber a stored record.
//
// Policy: the profile request is primary, its failure aborts the fetch.
// Every secondary list or metric degrades to an empty collection on
// failure and the fetch continues.

package fetcher

import (
	"context"
	"time"

	"github.com/thep200/github-user-dashboard/cfg"
	githubapi "github.com/thep200/github-user-dashboard/internal/github_api"
	"github.com/thep200/github-user-dashboard/internal/model"
	"github.com/thep200/github-user-dashboard/pkg/log"
)

// unknownLanguage buckets repositories GitHub reports no primary language
// for, so their stars and commits still show up in the aggregates.
const unknownLanguage = "Unknown"

type Fetcher struct {
	Logger log.Logger
	Config *cfg.Config
	Caller *githubapi.Caller
}

func NewFetcher(logger log.Logger, config *cfg.Config, caller *githubapi.Caller) (*Fetcher, error) {
	return &Fetcher{
		Logger: logger,
		Config: config,
		Caller: caller,
	}, nil
}

// Fetch builds the complete record for one login. Blocking and strictly
// sequential: one repository at a time, suspending only inside the rate
// limit cooldown of the API caller.
func (f *Fetcher) Fetch(ctx context.Context, login string) (*model.User, error) {
	startTime := time.Now()
	f.Logger.Info(ctx, "Fetching GitHub data for user %s", login)

	profile, err := f.Caller.User(ctx, login)
	if err != nil {
		f.Logger.Error(ctx, "Profile fetch for %s failed: %v", login, err)
		return nil, err
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	record := &model.User{
		Login:           profile.Login,
		Name:            name,
		Bio:             profile.Bio,
		AvatarUrl:       profile.AvatarUrl,
		ProfileUrl:      profile.HtmlUrl,
		GithubCreatedAt: profile.CreatedAt,
		GithubUpdatedAt: profile.UpdatedAt,
		PublicRepos:     profile.PublicRepos,
		FollowersCount:  profile.Followers,
		FollowingCount:  profile.Following,
		Platforms:       model.DefaultPlatforms,
		WebFrameworks:   model.DefaultWebFrameworks,
	}

	record.FollowersList = f.stringList(ctx, "followers", login, f.Caller.Followers)
	record.FollowingList = f.stringList(ctx, "following", login, f.Caller.Following)
	record.StarredRepos = f.stringList(ctx, "starred repositories", login, f.Caller.Starred)
	record.Subscriptions = f.stringList(ctx, "subscriptions", login, f.Caller.Subscriptions)
	record.Organizations = f.stringList(ctx, "organizations", login, f.Caller.Organizations)

	repos := f.allRepos(ctx, login)
	f.aggregateRepos(ctx, login, repos, record)

	f.Logger.Info(ctx, "Finished fetch for %s: %d repos, %d languages, %d commits in %v",
		login, len(repos), len(record.Languages), record.TotalCommits, time.Since(startTime).Round(time.Millisecond))

	return record, nil
}

// aggregateRepos folds the repository list into the per-language and
// per-repository aggregates of the record.
func (f *Fetcher) aggregateRepos(ctx context.Context, login string, repos []githubapi.RepoResponse, record *model.User) {
	languages := model.CountMap{}
	starsPerLang := model.CountMap{}
	commitsPerLang := model.CountMap{}
	starsPerRepo := model.CountMap{}
	commitsPerRepo := model.CountMap{}
	commitDates := model.TimeList{}

	var totalCommits int64

	for _, repo := range repos {
		lang := repo.Language
		if lang == "" {
			lang = unknownLanguage
		}

		starsPerRepo[repo.Name] = repo.StargazersCount
		starsPerLang[lang] += repo.StargazersCount

		// Byte counts summed across repositories, not kept per repo
		langBytes, err := f.Caller.Languages(ctx, login, repo.Name)
		if err != nil {
			f.Logger.Warn(ctx, "Could not fetch languages of %s/%s: %v", login, repo.Name, err)
		} else {
			for name, size := range langBytes {
				languages[name] += size
			}
		}

		// Forks carry upstream history, commit counting skips them
		if repo.Fork {
			continue
		}

		count, err := f.Caller.CommitCount(ctx, login, repo.Name)
		if err != nil {
			f.Logger.Warn(ctx, "Could not count commits of %s/%s: %v", login, repo.Name, err)
			count = 0
		}
		commitsPerRepo[repo.Name] = count
		commitsPerLang[lang] += count
		totalCommits += count

		commits, err := f.Caller.Commits(ctx, login, repo.Name, 1)
		if err != nil {
			f.Logger.Warn(ctx, "Could not fetch commit dates of %s/%s: %v", login, repo.Name, err)
			continue
		}
		for _, commit := range commits {
			if !commit.Commit.Author.Date.IsZero() {
				commitDates = append(commitDates, commit.Commit.Author.Date)
			}
		}
	}

	record.Languages = languages
	record.StarsPerLang = starsPerLang
	record.CommitsPerLang = commitsPerLang
	record.StarsPerRepo = starsPerRepo
	record.CommitsPerRepo = commitsPerRepo
	record.CommitDates = commitDates
	record.TotalCommits = totalCommits
}

// allRepos walks the paginated repository list. A failure on the first
// page degrades to no repositories; a failure mid-walk keeps the pages
// already read.
func (f *Fetcher) allRepos(ctx context.Context, login string) []githubapi.RepoResponse {
	perPage := f.Config.GithubApi.PerPage
	if perPage <= 0 {
		perPage = 100
	}

	var all []githubapi.RepoResponse
	for page := 1; ; page++ {
		repos, err := f.Caller.Repos(ctx, login, page)
		if err != nil {
			f.Logger.Warn(ctx, "Could not fetch repository page %d for %s: %v", page, login, err)
			break
		}
		all = append(all, repos...)
		if len(repos) < perPage {
			break
		}
	}
	return all
}

func (f *Fetcher) stringList(ctx context.Context, what, login string, call func(context.Context, string) ([]string, error)) model.StringList {
	items, err := call(ctx, login)
	if err != nil {
		f.Logger.Warn(ctx, "Could not fetch %s for %s, keeping it empty: %v", what, login, err)
		return model.StringList{}
	}
	return model.StringList(items)
}
