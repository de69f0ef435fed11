package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (yl *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "github-user-dashboard",
			Version: "0.0.1",
			LogFile: "",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "github_db",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:          "",
			ApiUrl:               "https://api.github.com",
			PerPage:              100,
			RequestTimeoutSec:    30,
			RateLimitCooldownSec: 60,
		},

		// Kafka disabled by default in tests
		Kafka: Kafka{
			Brokers: nil,
			Producer: KafkaProducer{
				TopicUserFetched: "user_fetched",
			},
			Consumer: KafkaConsumer{
				TopicRefresh: "user_refresh",
			},
		},

		// Ui
		Ui: Ui{
			Port: 8080,
		},
	}, nil
}
