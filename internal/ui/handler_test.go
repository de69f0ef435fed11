package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-user-dashboard/cfg"
	"github.com/thep200/github-user-dashboard/internal/dashboard"
	githubapi "github.com/thep200/github-user-dashboard/internal/github_api"
	"github.com/thep200/github-user-dashboard/internal/model"
	"github.com/thep200/github-user-dashboard/pkg/log"
)

type memStore struct {
	records map[string]*model.User
}

func (m *memStore) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	if record, ok := m.records[login]; ok {
		return record, nil
	}
	return nil, model.ErrRecordNotFound
}

func (m *memStore) Upsert(ctx context.Context, record *model.User) error {
	m.records[record.Login] = record
	return nil
}

func (m *memStore) FindAll(ctx context.Context) ([]*model.User, error) {
	all := make([]*model.User, 0, len(m.records))
	for _, record := range m.records {
		all = append(all, record)
	}
	return all, nil
}

type notFoundFetcher struct{}

func (notFoundFetcher) Fetch(ctx context.Context, login string) (*model.User, error) {
	return nil, githubapi.ErrUserNotFound
}

func newTestHandler(t *testing.T, store dashboard.Store) *Handler {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, _ := loader.Load()
	logger, _ := log.NewCslLogger()

	service, err := dashboard.NewService(logger, config, store, notFoundFetcher{}, nil)
	require.NoError(t, err)

	handler, err := NewHandler(logger, config, service)
	require.NoError(t, err)
	return handler
}

func serve(handler *Handler, method, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

func storedUser() *model.User {
	return &model.User{
		Login:          "octocat",
		Name:           "The Octocat",
		Languages:      model.CountMap{"Go": 1000},
		StarsPerLang:   model.CountMap{"Go": 5},
		CommitsPerLang: model.CountMap{"Go": 12},
		StarsPerRepo:   model.CountMap{"hello": 5},
		CommitsPerRepo: model.CountMap{"hello": 12},
		Platforms:      model.DefaultPlatforms,
		WebFrameworks:  model.DefaultWebFrameworks,
	}
}

func TestGetUserReturnsStoredRecord(t *testing.T) {
	store := &memStore{records: map[string]*model.User{"octocat": storedUser()}}
	handler := newTestHandler(t, store)

	recorder := serve(handler, http.MethodGet, "/api/user?login=octocat")

	require.Equal(t, http.StatusOK, recorder.Code)
	var record model.User
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &record))
	assert.Equal(t, "The Octocat", record.Name)
}

func TestGetUserMissingLoginParameter(t *testing.T) {
	handler := newTestHandler(t, &memStore{records: map[string]*model.User{}})

	recorder := serve(handler, http.MethodGet, "/api/user")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetUserUnknownUserMapsTo404(t *testing.T) {
	handler := newTestHandler(t, &memStore{records: map[string]*model.User{}})

	recorder := serve(handler, http.MethodGet, "/api/user?login=ghost")

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetChartsBundlesDirectives(t *testing.T) {
	store := &memStore{records: map[string]*model.User{"octocat": storedUser()}}
	handler := newTestHandler(t, store)

	recorder := serve(handler, http.MethodGet, "/api/charts?login=octocat")

	require.Equal(t, http.StatusOK, recorder.Code)
	var response ChartsResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "octocat", response.Profile.Login)
	assert.Len(t, response.Donuts, 5)
	assert.NotEmpty(t, response.Platforms)
	assert.NotEmpty(t, response.WebFrameworks)
}

func TestGetRecommendationsRanksPeers(t *testing.T) {
	store := &memStore{records: map[string]*model.User{
		"octocat": storedUser(),
		"peer":    {Login: "peer", Languages: model.CountMap{"Go": 50}},
	}}
	handler := newTestHandler(t, store)

	recorder := serve(handler, http.MethodGet, "/api/recommendations?login=octocat")

	require.Equal(t, http.StatusOK, recorder.Code)
	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "peer", results[0]["login"])
}

func TestTriggerRefreshRequiresPost(t *testing.T) {
	handler := newTestHandler(t, &memStore{records: map[string]*model.User{}})

	recorder := serve(handler, http.MethodGet, "/api/refresh?login=octocat")

	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestTriggerRefreshRespondsAcceptedJson(t *testing.T) {
	handler := newTestHandler(t, &memStore{records: map[string]*model.User{}})

	recorder := serve(handler, http.MethodPost, "/api/refresh?login=octocat")

	require.Equal(t, http.StatusAccepted, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "refresh started", body["status"])
}

func TestStatusStartsIdle(t *testing.T) {
	handler := newTestHandler(t, &memStore{records: map[string]*model.User{}})

	recorder := serve(handler, http.MethodGet, "/api/status")

	require.Equal(t, http.StatusOK, recorder.Code)
	var stats FetchStats
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &stats))
	assert.False(t, stats.IsRunning)
}
