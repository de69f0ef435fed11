package cfg

type (
	App struct {
		Name    string
		Version string
		// LogFile switches the daemons from console logging to the
		// rotating file sink. Empty keeps the console logger.
		LogFile string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	GithubApi struct {
		AccessToken          string
		ApiUrl               string
		PerPage              int
		RequestTimeoutSec    int
		RateLimitCooldownSec int
	}

	KafkaProducer struct {
		TopicUserFetched string
	}

	KafkaConsumer struct {
		TopicRefresh string
	}

	Kafka struct {
		Brokers  []string
		Producer KafkaProducer
		Consumer KafkaConsumer
	}

	Ui struct {
		Port int
	}
)

type Config struct {
	App       App
	Mysql     Mysql
	GithubApi GithubApi
	Kafka     Kafka
	Ui        Ui
}
