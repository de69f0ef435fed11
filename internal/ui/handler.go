package ui

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/thep200/github-user-dashboard/cfg"
	"github.com/thep200/github-user-dashboard/internal/chart"
	"github.com/thep200/github-user-dashboard/internal/dashboard"
	githubapi "github.com/thep200/github-user-dashboard/internal/github_api"
	"github.com/thep200/github-user-dashboard/internal/model"
	"github.com/thep200/github-user-dashboard/internal/recommender"
	"github.com/thep200/github-user-dashboard/pkg/log"
)

// FetchStats tracks a background refresh so the page can poll progress of
// a long multi-repository fetch.
type FetchStats struct {
	Login     string    `json:"login"`
	IsRunning bool      `json:"isRunning"`
	StartTime time.Time `json:"startTime"`
	Duration  string    `json:"duration"`
	LastError string    `json:"lastError"`
}

// Handler manages HTTP requests for the dashboard
type Handler struct {
	Logger  log.Logger
	Config  *cfg.Config
	Service *dashboard.Service
	baseDir string

	statsMu  sync.RWMutex
	stats    FetchStats
	fetching bool
}

// NewHandler creates a new dashboard handler
func NewHandler(logger log.Logger, config *cfg.Config, service *dashboard.Service) (*Handler, error) {
	return &Handler{
		Logger:  logger,
		Config:  config,
		Service: service,
		baseDir: "internal/ui/static",
	}, nil
}

// RegisterRoutes sets up the HTTP routes for the dashboard
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Static file server for CSS, JS, etc.
	fileServer := http.FileServer(http.Dir(h.baseDir))
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))

	// API routes
	mux.HandleFunc("/api/user", h.getUser)
	mux.HandleFunc("/api/charts", h.getCharts)
	mux.HandleFunc("/api/recommendations", h.getRecommendations)
	mux.HandleFunc("/api/refresh", h.triggerRefresh)
	mux.HandleFunc("/api/status", h.getStatus)

	// HTML routes
	mux.HandleFunc("/", h.showHomePage)
}

// showHomePage renders the main page
func (h *Handler) showHomePage(w http.ResponseWriter, r *http.Request) {
	templatePath := filepath.Join(h.baseDir, "index.html")
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to parse template: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := tmpl.Execute(w, nil); err != nil {
		h.Logger.Error(r.Context(), "Failed to execute template: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// getUser returns the stored record, fetching it on a miss.
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	login := r.URL.Query().Get("login")
	if login == "" {
		http.Error(w, "missing login parameter", http.StatusBadRequest)
		return
	}

	record, err := h.Service.GetUser(r.Context(), login)
	if err != nil {
		h.writeError(w, r, login, err)
		return
	}

	h.writeJson(w, r, record)
}

// ChartsResponse bundles every display directive of the profile page.
type ChartsResponse struct {
	Profile           chart.ProfileCard   `json:"profile"`
	Donuts            []chart.Donut       `json:"donuts"`
	CommitsPerQuarter []chart.LinePoint   `json:"commitsPerQuarter"`
	Platforms         []chart.Word        `json:"platforms"`
	WebFrameworks     []chart.BubblePoint `json:"webFrameworks"`
}

// getCharts returns the rendered chart payload for one user.
func (h *Handler) getCharts(w http.ResponseWriter, r *http.Request) {
	login := r.URL.Query().Get("login")
	if login == "" {
		http.Error(w, "missing login parameter", http.StatusBadRequest)
		return
	}

	record, err := h.Service.GetUser(r.Context(), login)
	if err != nil {
		h.writeError(w, r, login, err)
		return
	}

	response := ChartsResponse{
		Profile: chart.NewProfileCard(record, time.Now()),
		Donuts: []chart.Donut{
			chart.NewDonut("Repos per Language (by size)", record.Languages),
			chart.NewDonut("Stars per Language", record.StarsPerLang),
			chart.NewDonut("Commits per Language", record.CommitsPerLang),
			chart.NewDonut("Stars per Repo", record.StarsPerRepo),
			chart.NewDonut("Commits per Repo", record.CommitsPerRepo),
		},
		CommitsPerQuarter: chart.CommitsPerQuarter(record.CommitDates),
		Platforms:         chart.WordCloud(record.Platforms),
		WebFrameworks:     chart.Bubble(record.WebFrameworks),
	}

	h.writeJson(w, r, response)
}

// getRecommendations returns the ranked similar users.
func (h *Handler) getRecommendations(w http.ResponseWriter, r *http.Request) {
	login := r.URL.Query().Get("login")
	if login == "" {
		http.Error(w, "missing login parameter", http.StatusBadRequest)
		return
	}

	topN, err := strconv.Atoi(r.URL.Query().Get("top"))
	if err != nil || topN < 1 {
		topN = recommender.DefaultTopN
	}

	results, err := h.Service.Recommendations(r.Context(), login, topN)
	if err != nil {
		h.writeError(w, r, login, err)
		return
	}

	h.writeJson(w, r, results)
}

// triggerRefresh starts a background re-fetch of one user. Long fetches
// (hundreds of repositories, possible 60s cooldowns) would otherwise hit
// the server write timeout.
func (h *Handler) triggerRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	login := r.URL.Query().Get("login")
	if login == "" {
		http.Error(w, "missing login parameter", http.StatusBadRequest)
		return
	}

	h.statsMu.Lock()
	if h.fetching {
		h.statsMu.Unlock()
		h.writeJson(w, r, map[string]string{"status": "a fetch is already in progress"})
		return
	}
	h.fetching = true
	h.stats = FetchStats{
		Login:     login,
		IsRunning: true,
		StartTime: time.Now(),
	}
	h.statsMu.Unlock()

	go func() {
		// Detached from the request: the fetch outlives the HTTP exchange
		_, err := h.Service.RefreshUser(context.Background(), login)

		h.statsMu.Lock()
		h.fetching = false
		h.stats.IsRunning = false
		h.stats.Duration = time.Since(h.stats.StartTime).Round(time.Second).String()
		if err != nil {
			h.stats.LastError = err.Error()
		}
		h.statsMu.Unlock()
	}()

	// Headers must be set before WriteHeader commits them
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	h.writeJson(w, r, map[string]string{"status": "refresh started"})
}

// getStatus reports the state of the background fetch.
func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	h.statsMu.RLock()
	stats := h.stats
	if stats.IsRunning {
		stats.Duration = time.Since(stats.StartTime).Round(time.Second).String()
	}
	h.statsMu.RUnlock()

	h.writeJson(w, r, stats)
}

func (h *Handler) writeJson(w http.ResponseWriter, r *http.Request, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error(r.Context(), "Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, login string, err error) {
	switch {
	case errors.Is(err, githubapi.ErrUserNotFound), errors.Is(err, recommender.ErrTargetNotFound):
		http.Error(w, "user not found: "+login, http.StatusNotFound)
	case errors.Is(err, githubapi.ErrRateLimited):
		http.Error(w, "GitHub API rate limit reached, try again later", http.StatusTooManyRequests)
	case errors.Is(err, model.ErrStoreUnavailable):
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	default:
		h.Logger.Error(r.Context(), "Request for %s failed: %v", login, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
