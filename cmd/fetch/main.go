package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/thep200/github-user-dashboard/cfg"
	"github.com/thep200/github-user-dashboard/internal/dashboard"
	"github.com/thep200/github-user-dashboard/internal/fetcher"
	githubapi "github.com/thep200/github-user-dashboard/internal/github_api"
	"github.com/thep200/github-user-dashboard/internal/model"
	"github.com/thep200/github-user-dashboard/pkg/db"
	"github.com/thep200/github-user-dashboard/pkg/kafka"
	"github.com/thep200/github-user-dashboard/pkg/log"
)

func main() {
	login := flag.String("user", "", "GitHub login to fetch and store")
	recommend := flag.Bool("recommend", false, "Print the most similar stored users after fetching")
	topN := flag.Int("top", 10, "Number of recommendations to print")
	flag.Parse()

	if *login == "" {
		fmt.Println("Please specify a GitHub login: -user=<login>")
		os.Exit(1)
	}

	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	config, _ := loader.Load()
	mysql, _ := db.NewMysql(config)
	logger, _ := log.NewCslLogger()
	userMd, _ := model.NewUser(config, logger, mysql)
	caller := githubapi.NewCaller(logger, config)
	userFetcher, _ := fetcher.NewFetcher(logger, config, caller)

	// Migrate database
	if err := mysql.Migrate(userMd); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Kafka is optional, events are skipped without brokers
	var producer dashboard.Publisher
	if len(config.Kafka.Brokers) > 0 {
		p, err := kafka.NewProducer(config, logger, config.Kafka.Producer.TopicUserFetched)
		if err != nil {
			logger.Warn(ctx, "Kafka disabled: %v", err)
		} else {
			producer = p
			defer p.Close()
		}
	}

	service, _ := dashboard.NewService(logger, config, userMd, userFetcher, producer)

	logger.Info(ctx, "Fetching and storing user %s", *login)
	record, err := service.RefreshUser(ctx, *login)
	if err != nil {
		logger.Error(ctx, "Fetch failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Stored %s: %d repos, %d languages, %d total commits",
		record.Login, record.PublicRepos, len(record.Languages), record.TotalCommits)

	if *recommend {
		results, err := service.Recommendations(ctx, *login, *topN)
		if err != nil {
			logger.Error(ctx, "Recommendation failed: %v", err)
			os.Exit(1)
		}
		for i, rec := range results {
			fmt.Printf("%2d. %-24s score=%.3f shared=%v\n", i+1, rec.Login, rec.Score, rec.SharedLanguages)
		}
	}
}
