package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JPrier/JobSearch/internal/errors"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type NATSConfig struct {
	Enabled     bool          `yaml:"enabled"`
	URL         string        `yaml:"url"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chat_id"`
	TopN    int    `yaml:"top_n"`
}

type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	CollectorURL string `yaml:"collector_url"`
}

type Config struct {
	// Search surface, passed to every board.
	Boards        []string `yaml:"boards"`
	SearchTerm    string   `yaml:"search_term"`
	Location      string   `yaml:"location"`
	ResultsWanted int      `yaml:"results_wanted"`
	MaxAgeHours   int      `yaml:"max_age_hours"`
	RemoteOnly    bool     `yaml:"remote_only"`

	// Title filtering, pipe-separated keyword alternations.
	TitleInclude string `yaml:"title_include"`
	TitleExclude string `yaml:"title_exclude"`

	// Scoring.
	KeywordBonuses map[string]float64 `yaml:"keyword_bonuses"`
	RemoteBonus    float64            `yaml:"remote_bonus"`
	BenefitsBonus  float64            `yaml:"benefits_bonus"`

	// Export.
	DropColumns []string `yaml:"drop_columns"`
	OutputDir   string   `yaml:"output_dir"`

	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	FetchWorkers int           `yaml:"fetch_workers"`
	Debug        bool          `yaml:"debug"`

	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Compiled from TitleInclude/TitleExclude at load time.
	IncludePattern *regexp.Regexp `yaml:"-"`
	ExcludePattern *regexp.Regexp `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		Boards:        []string{"remoteok", "weworkremotely"},
		SearchTerm:    "software engineer",
		Location:      "USA",
		ResultsWanted: 500,
		MaxAgeHours:   336,
		RemoteOnly:    true,

		TitleInclude: "software|engineer|sde|backend|fullstack|developer",
		TitleExclude: "principal|intern|staff|director|distinguished|executive|manager|entry|junior|chief|support|qa|electrical|geotechnical",

		KeywordBonuses: map[string]float64{
			"backend":       10000,
			"fullstack":     500,
			"frontend":      -200,
			"microservices": 500,
			"distributed":   500,
			"cloud":         700,
			"aws":           10000,
			"benefits":      500,
			"python":        1000,
			"java":          10000,
		},
		RemoteBonus:   50000,
		BenefitsBonus: 5000,

		DropColumns: []string{"description"},
		OutputDir:   ".",

		HTTPTimeout:  30 * time.Second,
		FetchWorkers: 4,

		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  time.Hour,
		},
		NATS: NATSConfig{
			URL:         "nats://localhost:4222",
			ConnTimeout: 10 * time.Second,
		},
		Telegram: TelegramConfig{
			TopN: 10,
		},
		Telemetry: TelemetryConfig{
			CollectorURL: "localhost:4317",
		},
	}
}

// Load reads the YAML config at path (skipped silently when the file does
// not exist), applies environment overrides, validates, and compiles the
// title patterns. A bad pattern fails here, before any board is contacted.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		// yaml.v3 merges mappings into a pre-populated map. The default
		// keyword map must not leak into a user-supplied one, so it is
		// detached before decoding and restored only when the file left
		// the key unset.
		defaultBonuses := cfg.KeywordBonuses
		cfg.KeywordBonuses = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Config("parsing config file", err)
		}
		if cfg.KeywordBonuses == nil {
			cfg.KeywordBonuses = defaultBonuses
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Config("reading config file", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	cfg.SearchTerm = getEnvString("JOBSEARCH_TERM", cfg.SearchTerm)
	cfg.Location = getEnvString("JOBSEARCH_LOCATION", cfg.Location)
	cfg.ResultsWanted = getEnvInt("JOBSEARCH_RESULTS_WANTED", cfg.ResultsWanted)
	cfg.MaxAgeHours = getEnvInt("JOBSEARCH_MAX_AGE_HOURS", cfg.MaxAgeHours)
	cfg.RemoteOnly = getEnvBool("JOBSEARCH_REMOTE_ONLY", cfg.RemoteOnly)
	cfg.TitleInclude = getEnvString("JOBSEARCH_TITLE_INCLUDE", cfg.TitleInclude)
	cfg.TitleExclude = getEnvString("JOBSEARCH_TITLE_EXCLUDE", cfg.TitleExclude)
	cfg.OutputDir = getEnvString("JOBSEARCH_OUTPUT_DIR", cfg.OutputDir)
	cfg.Debug = getEnvBool("JOBSEARCH_DEBUG", cfg.Debug)

	if boards := getEnvString("JOBSEARCH_BOARDS", ""); boards != "" {
		cfg.Boards = splitAndTrim(boards)
	}

	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Addr = getEnvString("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnvString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = getEnvDuration("REDIS_TTL", cfg.Redis.TTL)

	cfg.NATS.Enabled = getEnvBool("NATS_ENABLED", cfg.NATS.Enabled)
	cfg.NATS.URL = getEnvString("NATS_URL", cfg.NATS.URL)
	cfg.NATS.ConnTimeout = getEnvDuration("NATS_CONN_TIMEOUT", cfg.NATS.ConnTimeout)

	cfg.Telegram.Token = getEnvString("TELEGRAM_BOT_TOKEN", cfg.Telegram.Token)
	if chatID := getEnvString("TELEGRAM_CHAT_ID", ""); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			// A typoed chat ID must not silently leave Telegram
			// half-configured.
			return errors.Config("invalid TELEGRAM_CHAT_ID", err)
		}
		cfg.Telegram.ChatID = id
	}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		cfg.Telegram.Enabled = true
	}

	cfg.Telemetry.Enabled = getEnvBool("OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.CollectorURL = getEnvString("OTEL_COLLECTOR_URL", cfg.Telemetry.CollectorURL)
	return nil
}

func (c *Config) validate() error {
	if c.SearchTerm == "" {
		return errors.Config("search_term is required", nil)
	}
	if len(c.Boards) == 0 {
		return errors.Config("at least one board is required", nil)
	}
	if c.ResultsWanted <= 0 {
		return errors.Config("results_wanted must be positive", nil)
	}
	if c.MaxAgeHours < 0 {
		return errors.Config("max_age_hours must not be negative", nil)
	}
	if c.TitleInclude == "" {
		return errors.Config("title_include is required", nil)
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == 0) {
		return errors.Config("telegram requires token and chat_id", nil)
	}
	return nil
}

func (c *Config) compilePatterns() error {
	include, err := regexp.Compile("(?i)(" + c.TitleInclude + ")")
	if err != nil {
		return errors.Config("compiling title_include pattern", err)
	}
	c.IncludePattern = include

	// An empty exclusion list excludes nothing.
	if c.TitleExclude != "" {
		exclude, err := regexp.Compile("(?i)(" + c.TitleExclude + ")")
		if err != nil {
			return errors.Config("compiling title_exclude pattern", err)
		}
		c.ExcludePattern = exclude
	}

	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
