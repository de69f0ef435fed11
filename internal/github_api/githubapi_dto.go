// Package githubapi provides a caller for the GitHub REST API, fetching
// user profiles, repositories and per repository statistics. It handles
// token authentication when an access token is configured and applies the
// fixed cooldown rate limit policy.

package githubapi

import "time"

type UserResponse struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	AvatarUrl   string    `json:"avatar_url"`
	HtmlUrl     string    `json:"html_url"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RepoResponse struct {
	Id              int64  `json:"id"`
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	Language        string `json:"language"`
	Fork            bool   `json:"fork"`
	Size            int64  `json:"size"`
	StargazersCount int64  `json:"stargazers_count"`
	HtmlUrl         string `json:"html_url"`
}

type CommitAuthor struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

type CommitDetail struct {
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
}

type CommitResponse struct {
	SHA    string       `json:"sha"`
	Commit CommitDetail `json:"commit"`
}

// SimpleUser is the shape returned by the followers, following and
// organizations endpoints.
type SimpleUser struct {
	Login   string `json:"login"`
	HtmlUrl string `json:"html_url"`
}

// StarredRepo is the shape returned by the starred and subscriptions
// endpoints.
type StarredRepo struct {
	FullName string `json:"full_name"`
	HtmlUrl  string `json:"html_url"`
}
