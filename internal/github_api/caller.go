package githubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/thep200/github-user-dashboard/cfg"
	"github.com/thep200/github-user-dashboard/pkg/log"
)

var (
	// ErrUserNotFound means the profile lookup returned 404. Terminal.
	ErrUserNotFound = errors.New("github user not found")

	// ErrRateLimited means the API answered 403/429 twice in a row: once
	// before the cooldown and once after the single retry.
	ErrRateLimited = errors.New("github api rate limit reached")
)

type Caller struct {
	Logger   log.Logger
	Config   *cfg.Config
	client   *http.Client
	cooldown time.Duration
}

func NewCaller(logger log.Logger, config *cfg.Config) *Caller {
	timeout := time.Duration(config.GithubApi.RequestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cooldown := time.Duration(config.GithubApi.RateLimitCooldownSec) * time.Second
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	return &Caller{
		Logger:   logger,
		Config:   config,
		client:   &http.Client{Timeout: timeout},
		cooldown: cooldown,
	}
}

func (c *Caller) perPage() int {
	if c.Config.GithubApi.PerPage > 0 {
		return c.Config.GithubApi.PerPage
	}
	return 100
}

// do performs one GET against the API. A 403-class status triggers the
// fixed cooldown and exactly one retry of the same request; every other
// failure surfaces immediately. The caller owns the response body.
func (c *Caller) do(ctx context.Context, rawUrl string) (*http.Response, error) {
	var resp *http.Response

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawUrl, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			req.Header.Set("Accept", "application/vnd.github.v3+json")
			if c.Config.GithubApi.AccessToken != "" {
				req.Header.Set("Authorization", fmt.Sprintf("token %s", c.Config.GithubApi.AccessToken))
			}

			r, err := c.client.Do(req)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			if r.StatusCode == http.StatusForbidden || r.StatusCode == http.StatusTooManyRequests {
				r.Body.Close()
				return ErrRateLimited
			}

			resp = r
			return nil
		},
		retry.Attempts(2),
		retry.Delay(c.cooldown),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool { return errors.Is(err, ErrRateLimited) }),
		retry.OnRetry(func(n uint, err error) {
			c.Logger.Warn(ctx, "Rate limit hit, waited %v before retrying: %s", c.cooldown, rawUrl)
		}),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// getJson performs a GET and decodes the body into out.
func (c *Caller) getJson(ctx context.Context, rawUrl string, out interface{}) error {
	resp, err := c.do(ctx, rawUrl)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status: %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Caller) endpoint(path string, query url.Values) string {
	base := strings.TrimRight(c.Config.GithubApi.ApiUrl, "/")
	if len(query) == 0 {
		return base + path
	}
	return base + path + "?" + query.Encode()
}

// User fetches the profile. The only endpoint whose 404 is a terminal
// not-found condition for the whole fetch.
func (c *Caller) User(ctx context.Context, login string) (*UserResponse, error) {
	resp, err := c.do(ctx, c.endpoint("/users/"+login, nil))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status: %s", resp.Status)
	}

	user := &UserResponse{}
	if err := json.NewDecoder(resp.Body).Decode(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Repos fetches one page of the repository list.
func (c *Caller) Repos(ctx context.Context, login string, page int) ([]RepoResponse, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.perPage()))
	query.Set("page", strconv.Itoa(page))

	var repos []RepoResponse
	if err := c.getJson(ctx, c.endpoint("/users/"+login+"/repos", query), &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// Languages fetches the byte count per language of one repository.
func (c *Caller) Languages(ctx context.Context, owner, repo string) (map[string]int64, error) {
	languages := map[string]int64{}
	if err := c.getJson(ctx, c.endpoint("/repos/"+owner+"/"+repo+"/languages", nil), &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

// Commits fetches one page of the commit list. Empty repositories answer
// 404 or 409; both degrade to an empty list.
func (c *Caller) Commits(ctx context.Context, owner, repo string, page int) ([]CommitResponse, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.perPage()))
	query.Set("page", strconv.Itoa(page))

	resp, err := c.do(ctx, c.endpoint("/repos/"+owner+"/"+repo+"/commits", query))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusConflict {
		return []CommitResponse{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status: %s", resp.Status)
	}

	var commits []CommitResponse
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		return nil, err
	}
	return commits, nil
}

// CommitCount determines the total number of commits of a repository from
// pagination metadata: with per_page=1 the page number of the rel="last"
// Link is the commit count. Without a Link header the count equals the
// number of items returned.
func (c *Caller) CommitCount(ctx context.Context, owner, repo string) (int64, error) {
	query := url.Values{}
	query.Set("per_page", "1")

	resp, err := c.do(ctx, c.endpoint("/repos/"+owner+"/"+repo+"/commits", query))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusConflict {
		return 0, nil
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected response status: %s", resp.Status)
	}

	if link := resp.Header.Get("Link"); link != "" {
		if last := parseLastPage(link); last > 0 {
			return last, nil
		}
	}

	var commits []CommitResponse
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		return 0, err
	}
	return int64(len(commits)), nil
}

// Followers fetches the follower logins.
func (c *Caller) Followers(ctx context.Context, login string) ([]string, error) {
	return c.userList(ctx, "/users/"+login+"/followers")
}

// Following fetches the followed logins.
func (c *Caller) Following(ctx context.Context, login string) ([]string, error) {
	return c.userList(ctx, "/users/"+login+"/following")
}

// Organizations fetches the organization logins.
func (c *Caller) Organizations(ctx context.Context, login string) ([]string, error) {
	return c.userList(ctx, "/users/"+login+"/orgs")
}

// Starred fetches the html urls of starred repositories.
func (c *Caller) Starred(ctx context.Context, login string) ([]string, error) {
	return c.repoUrlList(ctx, "/users/"+login+"/starred")
}

// Subscriptions fetches the html urls of watched repositories.
func (c *Caller) Subscriptions(ctx context.Context, login string) ([]string, error) {
	return c.repoUrlList(ctx, "/users/"+login+"/subscriptions")
}

func (c *Caller) userList(ctx context.Context, path string) ([]string, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.perPage()))

	var users []SimpleUser
	if err := c.getJson(ctx, c.endpoint(path, query), &users); err != nil {
		return nil, err
	}

	logins := make([]string, 0, len(users))
	for _, u := range users {
		logins = append(logins, u.Login)
	}
	return logins, nil
}

func (c *Caller) repoUrlList(ctx context.Context, path string) ([]string, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.perPage()))

	var repos []StarredRepo
	if err := c.getJson(ctx, c.endpoint(path, query), &repos); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(repos))
	for _, r := range repos {
		urls = append(urls, r.HtmlUrl)
	}
	return urls, nil
}

// parseLastPage extracts the page number of the rel="last" entry from a
// Link response header. Returns 0 when no such entry exists.
func parseLastPage(link string) int64 {
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="last"`) {
			continue
		}
		segments := strings.SplitN(part, ";", 2)
		rawUrl := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		parsed, err := url.Parse(rawUrl)
		if err != nil {
			return 0
		}
		page, err := strconv.ParseInt(parsed.Query().Get("page"), 10, 64)
		if err != nil {
			return 0
		}
		return page
	}
	return 0
}
