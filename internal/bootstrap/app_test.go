package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"shopping-buddy/internal/llm"
	"shopping-buddy/internal/shared/config"
)

const customersCSV = `Customer_ID,Age,Gender,Location,Browsing_History,Purchase_History,Customer_Segment,Avg_Order_Value,Holiday,Season
C1,34,Female,Delhi,"['Electronics', 'Books']",['P2'],Frequent Buyer,1200.5,Yes,Winter
`

const productsCSV = `Product_ID,Category,Subcategory,Price,Brand,Average_Rating_of_Similar_Products,Product_Rating,Customer_Review_Sentiment_Score,Holiday,Season,Geographical_Location,Similar_Product_List,Probability_of_Recommendation
P1,Electronics,Phones,499,Acme,4.1,4.6,0.8,No,Winter,India,['P2'],0.9
P2,Books,Fiction,12,Pulp,3.9,4.0,0.5,No,Summer,India,[],0.4
`

func writeData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "customers.csv"), []byte(customersCSV), 0o600); err != nil {
		t.Fatalf("write customers: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "products.csv"), []byte(productsCSV), 0o600); err != nil {
		t.Fatalf("write products: %v", err)
	}
	return dir
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("DATA_DIR", writeData(t))
	t.Setenv("CUSTOMER_DATA_FILE", "customers.csv")
	t.Setenv("PRODUCT_DATA_FILE", "products.csv")
	t.Setenv("CACHE_DRIVER", "memory")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("YANDEX_OAUTH_TOKEN", "")
	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func TestBuildWiresMemoryCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if app.Catalog.CustomerCount() != 1 || app.Catalog.ProductCount() != 2 {
		t.Fatalf("unexpected catalog sizes %d/%d", app.Catalog.CustomerCount(), app.Catalog.ProductCount())
	}
	if !app.Registry.Available(llm.BackendOllama) {
		t.Fatalf("ollama should always be available")
	}
	for _, b := range []llm.Backend{llm.BackendGemini, llm.BackendOpenAI, llm.BackendYandex} {
		if app.Registry.Available(b) {
			t.Fatalf("%s should be unavailable without credentials", b)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/C1/profile", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Customer Profile for C1") {
		t.Fatalf("unexpected profile response %d %s", resp.Code, resp.Body.String())
	}
}

func TestBuildWithSQLiteCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	cfg.CacheDriver = "sqlite"
	cfg.CacheDSN = filepath.Join(t.TempDir(), "profiles.db")

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := app.Profiles.Get(context.Background(), "C1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	app.Profiles.Wait()
	cached, err := app.ProfileRepo.Get(context.Background(), "C1")
	if err != nil {
		t.Fatalf("expected cached profile: %v", err)
	}
	if !strings.HasPrefix(cached.Summary, "Customer Profile for C1:") {
		t.Fatalf("unexpected cached summary %q", cached.Summary)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestBuildFailsOnMissingData(t *testing.T) {
	cfg := testConfig(t)
	cfg.ProductDataFile = "missing.csv"
	if _, err := Build(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "failed to read product data") {
		t.Fatalf("expected product data error, got %v", err)
	}
}

func TestBuildRejectsUnknownDefaultBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMService = "bard"
	if _, err := Build(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "LLM_SERVICE") {
		t.Fatalf("expected LLM_SERVICE error, got %v", err)
	}
}

func TestResolveDataSource(t *testing.T) {
	cases := []struct {
		name     string
		cfg      config.Config
		bucket   string
		customer string
		wantErr  bool
	}{
		{
			name:     "plain keys",
			cfg:      config.Config{CustomerDataFile: "c.csv", ProductDataFile: "p.csv"},
			customer: "c.csv",
		},
		{
			name:     "s3 urls",
			cfg:      config.Config{CustomerDataFile: "s3://data/in/c.csv", ProductDataFile: "s3://data/in/p.csv"},
			bucket:   "data",
			customer: "in/c.csv",
		},
		{
			name:    "mixed buckets",
			cfg:     config.Config{CustomerDataFile: "s3://a/c.csv", ProductDataFile: "s3://b/p.csv"},
			wantErr: true,
		},
		{
			name:    "bucket only",
			cfg:     config.Config{CustomerDataFile: "s3://a", ProductDataFile: "p.csv"},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := resolveDataSource(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src.bucket != tc.bucket || src.customerKey != tc.customer {
				t.Fatalf("unexpected source %+v", src)
			}
		})
	}
}
