// Package chart builds the display directives the web layer renders:
// donut breakdowns, the quarterly commit line, the platform word cloud
// and the framework bubble chart. Everything here is stateless; rendering
// happens client side from these JSON shapes.

package chart

import (
	"fmt"
	"sort"
	"time"

	"github.com/thep200/github-user-dashboard/internal/model"
)

type Donut struct {
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Values []int64  `json:"values"`
	Hole   float64  `json:"hole"`
}

// NewDonut builds a donut spec from a count mapping. Empty data renders a
// single "None" slice instead of an empty chart.
func NewDonut(title string, data model.CountMap) Donut {
	donut := Donut{Title: title, Hole: 0.4}

	if len(data) == 0 {
		donut.Labels = []string{"None"}
		donut.Values = []int64{1}
		return donut
	}

	labels := make([]string, 0, len(data))
	for label := range data {
		labels = append(labels, label)
	}
	// Largest slice first, name breaks ties
	sort.Slice(labels, func(a, b int) bool {
		if data[labels[a]] != data[labels[b]] {
			return data[labels[a]] > data[labels[b]]
		}
		return labels[a] < labels[b]
	})

	donut.Labels = labels
	donut.Values = make([]int64, len(labels))
	for i, label := range labels {
		donut.Values[i] = data[label]
	}
	return donut
}

type LinePoint struct {
	Quarter string `json:"quarter"`
	Commits int64  `json:"commits"`
}

// CommitsPerQuarter buckets commit timestamps into chronological
// year-quarter points, e.g. 2023Q4.
func CommitsPerQuarter(dates model.TimeList) []LinePoint {
	counts := map[string]int64{}
	for _, date := range dates {
		counts[quarterOf(date)]++
	}

	quarters := make([]string, 0, len(counts))
	for quarter := range counts {
		quarters = append(quarters, quarter)
	}
	sort.Strings(quarters)

	points := make([]LinePoint, 0, len(quarters))
	for _, quarter := range quarters {
		points = append(points, LinePoint{Quarter: quarter, Commits: counts[quarter]})
	}
	return points
}

func quarterOf(date time.Time) string {
	return fmt.Sprintf("%dQ%d", date.Year(), (int(date.Month())-1)/3+1)
}

type Word struct {
	Text   string `json:"text"`
	Weight int64  `json:"weight"`
}

// WordCloud turns a label list into weighted words, heaviest first.
func WordCloud(labels model.StringList) []Word {
	counts := map[string]int64{}
	for _, label := range labels {
		counts[label]++
	}

	words := make([]Word, 0, len(counts))
	for text, weight := range counts {
		words = append(words, Word{Text: text, Weight: weight})
	}
	sort.Slice(words, func(a, b int) bool {
		if words[a].Weight != words[b].Weight {
			return words[a].Weight > words[b].Weight
		}
		return words[a].Text < words[b].Text
	})
	return words
}

type BubblePoint struct {
	Label string  `json:"label"`
	Value int64   `json:"value"`
	Size  float64 `json:"size"`
}

// Bubble sizes each entry relative to the largest value, clamped to a
// minimum of 20 so small bubbles stay clickable.
func Bubble(data model.CountMap) []BubblePoint {
	if len(data) == 0 {
		data = model.CountMap{"None": 1}
	}

	labels := make([]string, 0, len(data))
	var max int64
	for label, value := range data {
		labels = append(labels, label)
		if value > max {
			max = value
		}
	}
	sort.Strings(labels)

	points := make([]BubblePoint, 0, len(labels))
	for _, label := range labels {
		size := float64(data[label]) / float64(max) * 100
		if size < 20 {
			size = 20
		}
		points = append(points, BubblePoint{Label: label, Value: data[label], Size: size})
	}
	return points
}

type ProfileCard struct {
	Login        string `json:"login"`
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	AvatarUrl    string `json:"avatar_url"`
	ProfileUrl   string `json:"profile_url"`
	Joined       string `json:"joined"`
	PublicRepos  int    `json:"public_repos"`
	Followers    int    `json:"followers"`
	Following    int    `json:"following"`
	TotalCommits int64  `json:"total_commits"`
}

// NewProfileCard summarizes a record for the header card. The joined
// wording counts whole years and leftover months since account creation.
func NewProfileCard(user *model.User, now time.Time) ProfileCard {
	return ProfileCard{
		Login:        user.Login,
		Name:         user.Name,
		Bio:          user.Bio,
		AvatarUrl:    user.AvatarUrl,
		ProfileUrl:   user.ProfileUrl,
		Joined:       joinedAgo(user.GithubCreatedAt, now),
		PublicRepos:  user.PublicRepos,
		Followers:    user.FollowersCount,
		Following:    user.FollowingCount,
		TotalCommits: user.TotalCommits,
	}
}

func joinedAgo(createdAt, now time.Time) string {
	if createdAt.IsZero() || createdAt.After(now) {
		return "Unknown"
	}
	days := int(now.Sub(createdAt).Hours() / 24)
	years := days / 365
	months := (days % 365) / 30
	return fmt.Sprintf("%d years and %d months ago", years, months)
}
