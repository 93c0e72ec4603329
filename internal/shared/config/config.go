package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"shopping-buddy/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Env  string `env:"ENV" envDefault:"dev"`
	Port string `env:"PORT" envDefault:"3000"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Input data
	ObjectStoreType  string `env:"OBJECT_STORE" envDefault:"local"`
	DataDir          string `env:"DATA_DIR" envDefault:"./data"`
	CustomerDataFile string `env:"CUSTOMER_DATA_FILE" envDefault:"customer_data_collection.csv"`
	ProductDataFile  string `env:"PRODUCT_DATA_FILE" envDefault:"product_recommendation_data.csv"`
	AWSRegion        string `env:"AWS_REGION"`
	S3Bucket         string `env:"S3_BUCKET"`
	S3Prefix         string `env:"S3_PREFIX"`

	// Profile cache
	CacheDriver       string        `env:"CACHE_DRIVER" envDefault:"sqlite"`
	CacheDSN          string        `env:"CACHE_DSN" envDefault:"./hackathon_memory.db"`
	RedisAddr         string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	CacheWriteTimeout time.Duration `env:"CACHE_WRITE_TIMEOUT" envDefault:"5s"`

	// LLM settings
	LLMService       string        `env:"LLM_SERVICE" envDefault:"ollama"`
	LLMTimeout       time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`
	OllamaAPIURL     string        `env:"OLLAMA_API_URL" envDefault:"http://localhost:11434"`
	GoogleAPIKey     string        `env:"GOOGLE_API_KEY"`
	GeminiBaseURL    string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"`
	YandexOAuthToken string        `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string        `env:"YANDEX_FOLDER_ID"`
	OllamaModels     []string      `env:"OLLAMA_MODELS" envSeparator:"," envDefault:"llama3.2"`
	GeminiModels     []string      `env:"GEMINI_MODELS" envSeparator:"," envDefault:"gemini-1.5-flash"`
	OpenAIModels     []string      `env:"OPENAI_MODELS" envSeparator:"," envDefault:"gpt-4o-mini"`
	YandexModels     []string      `env:"YANDEX_MODELS" envSeparator:"," envDefault:"yandexgpt-lite"`

	// Backend circuit breaker
	BreakerFailureThreshold uint32        `env:"LLM_BREAKER_FAILURES" envDefault:"5"`
	BreakerOpenTimeout      time.Duration `env:"LLM_BREAKER_OPEN_TIMEOUT" envDefault:"30s"`

	// Candidate selection
	MaxCandidates       int `env:"MAX_CANDIDATES_TO_LLM" envDefault:"30"`
	MaxCandidateDetails int `env:"MAX_CANDIDATE_DETAILS_IN_PROMPT" envDefault:"15"`

	// Rate limit for recommendation submissions, per client IP
	RateLimitPerSecond float64 `env:"RATE_LIMIT_RPS" envDefault:"2"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"5"`

	Columns Columns
}

// Columns maps CSV headers onto record fields.
type Columns struct {
	CustomerID       string `env:"CUST_ID_COL" envDefault:"Customer_ID"`
	CustomerAge      string `env:"CUST_AGE_COL" envDefault:"Age"`
	CustomerGender   string `env:"CUST_GENDER_COL" envDefault:"Gender"`
	CustomerLocation string `env:"CUST_LOCATION_COL" envDefault:"Location"`
	CustomerBrowsing string `env:"CUST_BROWSING_COL" envDefault:"Browsing_History"`
	CustomerPurchase string `env:"CUST_PURCHASE_COL" envDefault:"Purchase_History"`
	CustomerSegment  string `env:"CUST_SEGMENT_COL" envDefault:"Customer_Segment"`
	CustomerAvgOrder string `env:"CUST_AVG_ORDER_COL" envDefault:"Avg_Order_Value"`
	CustomerHoliday  string `env:"CUST_HOLIDAY_COL" envDefault:"Holiday"`
	CustomerSeason   string `env:"CUST_SEASON_COL" envDefault:"Season"`

	ProductID               string `env:"PROD_ID_COL" envDefault:"Product_ID"`
	ProductCategory         string `env:"PROD_CATEGORY_COL" envDefault:"Category"`
	ProductSubcategory      string `env:"PROD_SUBCATEGORY_COL" envDefault:"Subcategory"`
	ProductPrice            string `env:"PROD_PRICE_COL" envDefault:"Price"`
	ProductBrand            string `env:"PROD_BRAND_COL" envDefault:"Brand"`
	ProductAvgSimilarRating string `env:"PROD_AVG_SIMILAR_RATING_COL" envDefault:"Average_Rating_of_Similar_Products"`
	ProductRating           string `env:"PROD_RATING_COL" envDefault:"Product_Rating"`
	ProductSentiment        string `env:"PROD_SENTIMENT_COL" envDefault:"Customer_Review_Sentiment_Score"`
	ProductHoliday          string `env:"PROD_HOLIDAY_COL" envDefault:"Holiday"`
	ProductSeason           string `env:"PROD_SEASON_COL" envDefault:"Season"`
	ProductGeography        string `env:"PROD_GEOGRAPHY_COL" envDefault:"Geographical_Location"`
	ProductSimilar          string `env:"PROD_SIMILAR_COL" envDefault:"Similar_Product_List"`
	ProductProbability      string `env:"PROD_PROBABILITY_COL" envDefault:"Probability_of_Recommendation"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		if err := godotenv.Load(path); err == nil {
			telemetry.Info("config.dotenv_loaded", map[string]any{"path": path})
		}
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.ObjectStoreType = normalizeStoreType(cfg.ObjectStoreType)
	cfg.CacheDriver = strings.ToLower(strings.TrimSpace(cfg.CacheDriver))
	cfg.LLMService = strings.ToLower(strings.TrimSpace(cfg.LLMService))
	cfg.CORSAllowOrigins = trimAll(cfg.CORSAllowOrigins)
	cfg.OllamaModels = trimAll(cfg.OllamaModels)
	cfg.GeminiModels = trimAll(cfg.GeminiModels)
	cfg.OpenAIModels = trimAll(cfg.OpenAIModels)
	cfg.YandexModels = trimAll(cfg.YandexModels)
	if cfg.MaxCandidates <= 0 {
		return Config{}, fmt.Errorf("MAX_CANDIDATES_TO_LLM must be positive, got %d", cfg.MaxCandidates)
	}
	if cfg.MaxCandidateDetails <= 0 || cfg.MaxCandidateDetails > cfg.MaxCandidates {
		cfg.MaxCandidateDetails = cfg.MaxCandidates
	}
	return cfg, nil
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
