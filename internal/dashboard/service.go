// Package dashboard wires the store, the fetcher and the recommender into
// the two pipelines the UI drives: show one user, and rank similar users.

package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/thep200/github-user-dashboard/cfg"
	"github.com/thep200/github-user-dashboard/internal/model"
	"github.com/thep200/github-user-dashboard/internal/recommender"
	"github.com/thep200/github-user-dashboard/pkg/kafka"
	"github.com/thep200/github-user-dashboard/pkg/log"
)

// Store is the persistence surface the service needs: point lookup by
// login, wholesale upsert, and the full corpus for the recommender.
type Store interface {
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	Upsert(ctx context.Context, record *model.User) error
	FindAll(ctx context.Context) ([]*model.User, error)
}

// Fetcher builds a complete record from the remote API.
type Fetcher interface {
	Fetch(ctx context.Context, login string) (*model.User, error)
}

// Publisher emits dashboard events. Optional; nil disables publishing.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

type Service struct {
	Logger   log.Logger
	Config   *cfg.Config
	Store    Store
	Fetcher  Fetcher
	Producer Publisher
}

func NewService(logger log.Logger, config *cfg.Config, store Store, fetcher Fetcher, producer Publisher) (*Service, error) {
	return &Service{
		Logger:   logger,
		Config:   config,
		Store:    store,
		Fetcher:  fetcher,
		Producer: producer,
	}, nil
}

// GetUser returns the stored record for login, fetching and persisting it
// on a miss. The miss path fetches exactly once and upserts exactly once;
// a failed fetch leaves the store untouched.
func (s *Service) GetUser(ctx context.Context, login string) (*model.User, error) {
	record, err := s.Store.FindByLogin(ctx, login)
	if err == nil {
		s.Logger.Debug(ctx, "Cache hit for user %s", login)
		return record, nil
	}
	if !errors.Is(err, model.ErrRecordNotFound) {
		return nil, err
	}

	s.Logger.Info(ctx, "No stored record for %s, fetching from GitHub", login)
	return s.RefreshUser(ctx, login)
}

// RefreshUser fetches login unconditionally and replaces the stored
// record wholesale.
func (s *Service) RefreshUser(ctx context.Context, login string) (*model.User, error) {
	record, err := s.Fetcher.Fetch(ctx, login)
	if err != nil {
		return nil, err
	}

	if err := s.Store.Upsert(ctx, record); err != nil {
		return nil, err
	}

	s.publishFetched(ctx, record)
	return record, nil
}

// Recommendations ranks the stored corpus against login. The target is
// resolved through the same get-or-fetch path the profile page uses, so
// asking for recommendations of an unseen user pulls them in first.
func (s *Service) Recommendations(ctx context.Context, login string, topN int) ([]recommender.Recommendation, error) {
	if _, err := s.GetUser(ctx, login); err != nil {
		return nil, err
	}

	corpus, err := s.Store.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	return recommender.Recommend(corpus, login, topN)
}

func (s *Service) publishFetched(ctx context.Context, record *model.User) {
	if s.Producer == nil {
		return
	}

	event := kafka.UserFetchedEvent{
		Login:       record.Login,
		PublicRepos: record.PublicRepos,
		TotalCommit: record.TotalCommits,
		FetchedAt:   time.Now(),
	}
	if err := s.Producer.Publish(ctx, "user_fetched", event); err != nil {
		// Event publishing never fails the interaction
		s.Logger.Warn(ctx, "Could not publish user_fetched event for %s: %v", record.Login, err)
	}
}
