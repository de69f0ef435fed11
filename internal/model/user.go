package model

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/thep200/github-user-dashboard/cfg"
	"github.com/thep200/github-user-dashboard/pkg/db"
	"github.com/thep200/github-user-dashboard/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrRecordNotFound is the cache miss: no record stored for the login.
	ErrRecordNotFound = errors.New("no record stored for login")

	// ErrStoreUnavailable means the database could not serve the
	// operation. Fatal to the caller, never retried here.
	ErrStoreUnavailable = errors.New("user store unavailable")
)

// Platforms and WebFrameworks are static placeholders attached to every
// record. They are not derived from fetched data and need a real source
// (OS/CI config detection, dependency manifests) or removal.
var (
	DefaultPlatforms     = StringList{"Linux", "Windows", "macOS"}
	DefaultWebFrameworks = CountMap{"Django": 3, "Flask": 2, "React": 5}
)

// User is the flattened per-login record: profile identity, counts,
// relation lists and the per-language / per-repository aggregates the
// dashboard renders. One row per login, replaced wholesale on re-fetch.
type User struct {
	Model
	Login           string     `json:"login" gorm:"column:login;type:varchar(255);uniqueIndex;not null"`
	Name            string     `json:"name" gorm:"column:name;type:varchar(255)"`
	Bio             string     `json:"bio" gorm:"column:bio;type:text"`
	AvatarUrl       string     `json:"avatar_url" gorm:"column:avatar_url;type:varchar(512)"`
	ProfileUrl      string     `json:"profile_url" gorm:"column:profile_url;type:varchar(512)"`
	GithubCreatedAt time.Time  `json:"github_created_at" gorm:"column:github_created_at"`
	GithubUpdatedAt time.Time  `json:"github_updated_at" gorm:"column:github_updated_at"`
	PublicRepos     int        `json:"public_repos" gorm:"column:public_repos;default:0"`
	FollowersCount  int        `json:"followers_count" gorm:"column:followers_count;default:0"`
	FollowingCount  int        `json:"following_count" gorm:"column:following_count;default:0"`
	TotalCommits    int64      `json:"total_commits" gorm:"column:total_commits;default:0"`
	FollowersList   StringList `json:"followers_list" gorm:"column:followers_list;type:json"`
	FollowingList   StringList `json:"following_list" gorm:"column:following_list;type:json"`
	StarredRepos    StringList `json:"starred_repos" gorm:"column:starred_repos;type:json"`
	Subscriptions   StringList `json:"subscriptions" gorm:"column:subscriptions;type:json"`
	Organizations   StringList `json:"organizations" gorm:"column:organizations;type:json"`
	Languages       CountMap   `json:"languages" gorm:"column:languages;type:json"`
	StarsPerLang    CountMap   `json:"stars_per_language" gorm:"column:stars_per_language;type:json"`
	CommitsPerLang  CountMap   `json:"commits_per_language" gorm:"column:commits_per_language;type:json"`
	StarsPerRepo    CountMap   `json:"stars_per_repo" gorm:"column:stars_per_repo;type:json"`
	CommitsPerRepo  CountMap   `json:"commits_per_repo" gorm:"column:commits_per_repo;type:json"`
	CommitDates     TimeList   `json:"commit_dates" gorm:"column:commit_dates;type:json"`
	Platforms       StringList `json:"platforms" gorm:"column:platforms;type:json"`
	WebFrameworks   CountMap   `json:"web_frameworks" gorm:"column:web_frameworks;type:json"`
}

func NewUser(config *cfg.Config, logger log.Logger, db *db.Mysql) (*User, error) {
	user := &User{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return user, nil
}

func (u *User) TableName() string {
	return "users"
}

// userDataColumns are the columns replaced on upsert. Every data field is
// listed so a re-fetch overwrites the record wholesale, never merges.
var userDataColumns = []string{
	"name", "bio", "avatar_url", "profile_url",
	"github_created_at", "github_updated_at",
	"public_repos", "followers_count", "following_count", "total_commits",
	"followers_list", "following_list", "starred_repos", "subscriptions", "organizations",
	"languages", "stars_per_language", "commits_per_language",
	"stars_per_repo", "commits_per_repo",
	"commit_dates", "platforms", "web_frameworks",
	"updated_at",
}

// Upsert inserts or replaces the record keyed on login.
func (u *User) Upsert(ctx context.Context, record *User) error {
	record.Login = TruncateString(record.Login, 250)
	record.Name = TruncateString(record.Name, 250)
	record.UpdatedAt = time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = record.UpdatedAt
	}

	db, err := u.Mysql.Db()
	if err != nil {
		u.Logger.Error(ctx, "Failed to get database connection: %v", err)
		return errors.Join(ErrStoreUnavailable, err)
	}

	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "login"}},
		DoUpdates: clause.AssignmentColumns(userDataColumns),
	}).Create(record).Error; err != nil {
		u.Logger.Error(ctx, "Failed to upsert user %s: %v", record.Login, err)
		return errors.Join(ErrStoreUnavailable, err)
	}

	u.Logger.Info(ctx, "Stored record for user %s", record.Login)
	return nil
}

// FindByLogin looks up the record for one login. A miss is
// ErrRecordNotFound; everything else is the store failing.
func (u *User) FindByLogin(ctx context.Context, login string) (*User, error) {
	db, err := u.Mysql.Db()
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	record := &User{}
	result := db.WithContext(ctx).Where("login = ?", login).First(record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		u.Logger.Error(ctx, "Failed to look up user %s: %v", login, result.Error)
		return nil, errors.Join(ErrStoreUnavailable, result.Error)
	}

	return record, nil
}

// FindAll loads the whole stored corpus for the recommender.
func (u *User) FindAll(ctx context.Context) ([]*User, error) {
	db, err := u.Mysql.Db()
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	var records []*User
	if err := db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		u.Logger.Error(ctx, "Failed to load user corpus: %v", err)
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return records, nil
}

// LanguageNames derives the language list from the language-size mapping,
// sorted so downstream consumers see a stable order.
func (u *User) LanguageNames() []string {
	names := make([]string, 0, len(u.Languages))
	for name := range u.Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
