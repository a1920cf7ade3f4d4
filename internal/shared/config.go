package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	ItakaURL       string
	ItakaRPS       int
	ItakaMaxTries  int
	RatesPageSize  int
	OutputDir      string
	SkipScraping   bool
	RateParamsFile string
	CacheTTL       time.Duration
}

// Load reads the configuration from the environment. .env and .env.local
// are loaded first when present; variables already set win.
func Load() Config {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		MySQLDSN:       env("MYSQL_DSN", ""),
		MongoURI:       env("MONGO_URI", ""),
		MongoDB:        env("MONGO_DB", "rsww_184529"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		ItakaURL:       env("ITAKA_GRAPHQL_URL", "https://www.itaka.pl/graphql"),
		ItakaRPS:       atoi("ITAKA_RPS", 5),
		ItakaMaxTries:  atoi("ITAKA_MAX_TRIES", 5),
		RatesPageSize:  atoi("RATES_PAGE_SIZE", 100),
		OutputDir:      env("OUTPUT_DIR", "./out"),
		SkipScraping:   envBool("SKIP_SCRAPING"),
		RateParamsFile: env("RATE_PARAMS_FILE", ""),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	return c
}

// Warnings lists settings worth flagging once the logger is configured.
func (c Config) Warnings() []string {
	var w []string
	if c.MySQLDSN == "" && c.MongoURI == "" {
		w = append(w, "MYSQL_DSN and MONGO_URI are empty; events are written to scripts only")
	}
	return w
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string) bool {
	b, _ := strconv.ParseBool(os.Getenv(k))
	return b
}

// RateParams narrows every GraphQL query to one supplier and offer flavour.
type RateParams struct {
	Supplier     string `yaml:"supplier"`
	Language     string `yaml:"language"`
	Currency     string `yaml:"currency"`
	AdultsNumber int    `yaml:"adults_number"`
}

func DefaultRateParams() RateParams {
	return RateParams{Supplier: "itaka", Language: "pl", Currency: "PLN", AdultsNumber: 2}
}

var ErrInvalidRateParams = errors.New("rate params: supplier, language and currency are required")

// LoadRateParams decodes a YAML rate params file over the defaults.
// An empty path yields the defaults.
func LoadRateParams(path string) (RateParams, error) {
	p := DefaultRateParams()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RateParams{}, fmt.Errorf("failed to read rate params: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return RateParams{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if p.Supplier == "" || p.Language == "" || p.Currency == "" {
		return RateParams{}, ErrInvalidRateParams
	}
	if p.AdultsNumber <= 0 {
		p.AdultsNumber = 2
	}
	return p, nil
}

// Vars returns the params in the shape the GraphQL API expects.
func (p RateParams) Vars() map[string]any {
	return map[string]any{
		"supplier":     p.Supplier,
		"language":     p.Language,
		"currency":     p.Currency,
		"adultsNumber": p.AdultsNumber,
	}
}
