package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shopping-buddy/internal/catalog"
	"shopping-buddy/internal/llm"
	"shopping-buddy/internal/llm/ollama"
	"shopping-buddy/internal/llm/openai"
	"shopping-buddy/internal/llm/yandex"
	"shopping-buddy/internal/profiles"
	"shopping-buddy/internal/recommendations"
	"shopping-buddy/internal/services/health"
	"shopping-buddy/internal/shared/config"
	"shopping-buddy/internal/shared/server"
	"shopping-buddy/internal/shared/storage/db"
	"shopping-buddy/internal/shared/storage/object"
	localstore "shopping-buddy/internal/shared/storage/object/local"
	s3store "shopping-buddy/internal/shared/storage/object/s3"
	"shopping-buddy/internal/shared/telemetry"
	"shopping-buddy/internal/storefront"
)

const s3Scheme = "s3://"

// App holds the wired dependencies of the API process.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	Objects     object.ObjectStore
	Catalog     *catalog.Store
	ProfileRepo profiles.Repo
	Profiles    *profiles.Service
	Registry    *llm.Registry
	Requester   *recommendations.Requester
	Storefront  *storefront.Handler
}

// Build loads the input data, opens the profile cache and wires the router.
// Any failure here is fatal for the process.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	source, err := resolveDataSource(cfg)
	if err != nil {
		return nil, err
	}

	objects, err := buildObjectStore(ctx, cfg, source)
	if err != nil {
		return nil, err
	}

	loader := &catalog.Loader{
		Store:       objects,
		Columns:     catalog.Columns(cfg.Columns),
		CustomerKey: source.customerKey,
		ProductKey:  source.productKey,
	}
	store, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	repo, err := buildProfileRepo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:      cfg,
		Objects:     objects,
		Catalog:     store,
		ProfileRepo: repo,
		Registry:    registry,
	}
	app.Profiles = profiles.NewService(repo, store, cfg.CacheWriteTimeout)
	app.Requester = recommendations.NewRequester(registry, cfg.MaxCandidateDetails)
	app.Storefront = storefront.NewHandler(app.Profiles, store, app.Requester, registry, cfg.MaxCandidates)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:     cfg,
		Health:     health.NewService(store, registry),
		Storefront: app.Storefront,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"cache_driver":    cfg.CacheDriver,
		"object_store":    cfg.ObjectStoreType,
		"default_backend": string(registry.Default()),
		"customers":       store.CustomerCount(),
		"products":        store.ProductCount(),
	})
	return app, nil
}

// Close drains pending cache writes and releases the cache handle.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.Profiles != nil {
		a.Profiles.Wait()
	}
	if a.ProfileRepo != nil {
		if err := a.ProfileRepo.Close(); err != nil {
			return fmt.Errorf("close profile cache: %w", err)
		}
	}
	return nil
}

type dataSource struct {
	bucket      string
	customerKey string
	productKey  string
}

// resolveDataSource accepts plain keys or s3://bucket/key URLs. Both files
// must live in the same bucket.
func resolveDataSource(cfg config.Config) (dataSource, error) {
	src := dataSource{bucket: strings.TrimSpace(cfg.S3Bucket)}
	var buckets []string
	for _, target := range []struct {
		raw string
		key *string
	}{
		{cfg.CustomerDataFile, &src.customerKey},
		{cfg.ProductDataFile, &src.productKey},
	} {
		raw := strings.TrimSpace(target.raw)
		if raw == "" {
			return dataSource{}, errors.New("CUSTOMER_DATA_FILE and PRODUCT_DATA_FILE are required")
		}
		if !strings.HasPrefix(raw, s3Scheme) {
			*target.key = raw
			continue
		}
		bucket, key, ok := strings.Cut(strings.TrimPrefix(raw, s3Scheme), "/")
		if !ok || bucket == "" || key == "" {
			return dataSource{}, fmt.Errorf("invalid s3 url %q", raw)
		}
		buckets = append(buckets, bucket)
		*target.key = key
	}
	for _, b := range buckets {
		if src.bucket == "" {
			src.bucket = b
		}
		if b != src.bucket {
			return dataSource{}, fmt.Errorf("data files must share one bucket, got %q and %q", src.bucket, b)
		}
	}
	return src, nil
}

func buildObjectStore(ctx context.Context, cfg config.Config, src dataSource) (object.ObjectStore, error) {
	if cfg.ObjectStoreType == "s3" || strings.HasPrefix(strings.TrimSpace(cfg.CustomerDataFile), s3Scheme) {
		if src.bucket == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET or s3:// data paths")
		}
		return s3store.New(ctx, cfg.AWSRegion, src.bucket, cfg.S3Prefix)
	}
	return localstore.New(cfg.DataDir), nil
}

func buildProfileRepo(ctx context.Context, cfg config.Config) (profiles.Repo, error) {
	switch cfg.CacheDriver {
	case "", "memory":
		telemetry.Warn("bootstrap.cache_in_memory", map[string]any{"reason": "CACHE_DRIVER=memory"})
		return profiles.NewMemoryRepo(), nil
	case "redis":
		repo, err := profiles.NewRedisRepo(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return repo, nil
	}

	driver, err := db.DriverFor(cfg.CacheDriver)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.Connect(ctx, driver, cfg.CacheDSN, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, fmt.Errorf("open profile cache: %w", err)
	}
	if err := db.RunMigrations(ctx, sqlDB, driver); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate profile cache: %w", err)
	}
	repo, err := profiles.NewSQLRepo(sqlDB, driver)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return repo, nil
}

func buildRegistry(cfg config.Config) (*llm.Registry, error) {
	def, err := llm.ParseBackend(cfg.LLMService)
	if err != nil {
		return nil, fmt.Errorf("LLM_SERVICE: %w", err)
	}
	guard := llm.GuardConfig{
		Timeout:          cfg.LLMTimeout,
		FailureThreshold: cfg.BreakerFailureThreshold,
		OpenTimeout:      cfg.BreakerOpenTimeout,
	}
	reg := llm.NewRegistry(def)

	ollamaClient := ollama.NewClient(cfg.OllamaAPIURL, &http.Client{})
	reg.Register(llm.BackendOllama, llm.Guard(llm.BackendOllama, ollamaClient, guard), cfg.OllamaModels, true)

	if strings.TrimSpace(cfg.GoogleAPIKey) != "" {
		c, err := openai.NewClient(llm.BackendGemini.Label(), cfg.GoogleAPIKey, cfg.GeminiBaseURL)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		reg.Register(llm.BackendGemini, llm.Guard(llm.BackendGemini, c, guard), cfg.GeminiModels, true)
	} else {
		registerUnavailable(reg, llm.BackendGemini, cfg.GeminiModels)
	}

	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		c, err := openai.NewClient(llm.BackendOpenAI.Label(), cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		reg.Register(llm.BackendOpenAI, llm.Guard(llm.BackendOpenAI, c, guard), cfg.OpenAIModels, true)
	} else {
		registerUnavailable(reg, llm.BackendOpenAI, cfg.OpenAIModels)
	}

	if strings.TrimSpace(cfg.YandexOAuthToken) != "" {
		c, err := yandex.NewClient(cfg.YandexOAuthToken, cfg.YandexFolderID)
		if err != nil {
			return nil, fmt.Errorf("yandex client: %w", err)
		}
		reg.Register(llm.BackendYandex, llm.Guard(llm.BackendYandex, c, guard), cfg.YandexModels, true)
	} else {
		registerUnavailable(reg, llm.BackendYandex, cfg.YandexModels)
	}

	return reg, nil
}

func registerUnavailable(reg *llm.Registry, b llm.Backend, models []string) {
	telemetry.Warn("bootstrap.backend_unavailable", map[string]any{
		"backend": string(b),
		"env":     b.CredentialEnv(),
	})
	reg.Register(b, llm.Unavailable{Backend: b}, models, false)
}
