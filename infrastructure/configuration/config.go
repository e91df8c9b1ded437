package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"publish-automation/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Logger      Logger      `json:"logger"`
	Publish     Publish     `json:"publish"`
	SearchPush  SearchPush  `json:"searchPush"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
}

type Database struct {
	Psql Db `json:"psql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Logger struct {
	Format string `json:"format"`
}

// Publish holds the distribution pipeline configuration
type Publish struct {
	Platforms        []string          `json:"platforms"`
	GatewayBaseURL   string            `json:"gatewayBaseURL"`
	QueuePath        string            `json:"queuePath"`
	StatusPath       string            `json:"statusPath"`
	PostsDir         string            `json:"postsDir"`
	DispatchInterval int               `json:"dispatchInterval"` // seconds between background passes
	DispatchTimeout  int               `json:"dispatchTimeout"`  // per-request timeout, seconds
	MaxAttempts      int               `json:"maxAttempts"`      // 0 = retry forever
	ComposerURLs     map[string]string `json:"composerURLs"`     // manual publish pages per platform
}

// SearchPush configures the search-engine URL submission API
type SearchPush struct {
	Endpoint string `json:"endpoint"`
}

// PlatformEndpoint is the resolved webhook target for one platform
type PlatformEndpoint struct {
	Platform string
	Endpoint string // empty when neither an explicit endpoint nor a base URL is configured
	Token    string
	Derived  bool
}

var C Config

func init() {
	LoadConfig()
	initApp(&C)
	initPublish(&C)
}

// ApplyEnvOverrides re-reads the environment overrides into C. Package init
// runs before main loads config.env/.env, so callers that load env files must
// re-apply the overrides afterwards or values set only in those files are lost.
func ApplyEnvOverrides() {
	initApp(&C)
	initPublish(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initApp(C *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}

	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}

	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; API authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initPublish(C *Config) {
	if v := os.Getenv("PUBLISH_GATEWAY_BASE_URL"); v != "" {
		C.Publish.GatewayBaseURL = v
	}
	if len(C.Publish.Platforms) == 0 {
		C.Publish.Platforms = []string{"baijiahao", "toutiao"}
	}
	if C.Publish.QueuePath == "" {
		C.Publish.QueuePath = "automation/publish_queue.json"
	}
	if C.Publish.StatusPath == "" {
		C.Publish.StatusPath = "automation/publish_status.json"
	}
	if C.Publish.PostsDir == "" {
		C.Publish.PostsDir = "content/posts"
	}
	if C.Publish.DispatchInterval <= 0 {
		C.Publish.DispatchInterval = 300
	}
	if C.Publish.DispatchTimeout <= 0 {
		C.Publish.DispatchTimeout = 10
	}
	if len(C.Publish.ComposerURLs) == 0 {
		C.Publish.ComposerURLs = map[string]string{
			"baijiahao": "https://baijiahao.baidu.com/builder/rc/edit",
			"toutiao":   "https://mp.toutiao.com/profile_v4/graphic/publish",
		}
	}
}

// ResolvePlatformEndpoints materializes the webhook target for every platform.
// An explicit {PLATFORM}_PUBLISH_ENDPOINT wins; otherwise the endpoint is derived
// from the gateway base URL as {base}/publish/{platform}. A platform with neither
// stays unresolved and its queued posts are deferred to a future run.
func ResolvePlatformEndpoints(platforms []string, gatewayBaseURL string) []PlatformEndpoint {
	out := make([]PlatformEndpoint, 0, len(platforms))
	for _, p := range platforms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		key := strings.ToUpper(p)
		pe := PlatformEndpoint{
			Platform: p,
			Endpoint: os.Getenv(key + "_PUBLISH_ENDPOINT"),
			Token:    os.Getenv(key + "_PUBLISH_TOKEN"),
		}
		if pe.Endpoint == "" && gatewayBaseURL != "" {
			pe.Endpoint = fmt.Sprintf("%s/publish/%s", strings.TrimRight(gatewayBaseURL, "/"), p)
			pe.Derived = true
		}
		out = append(out, pe)
	}
	return out
}
