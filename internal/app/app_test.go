package app_test

import (
	"context"
	"io/fs"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/hunter-searcher/internal/app"
	"github.com/JakeFAU/hunter-searcher/internal/config"
	"github.com/JakeFAU/hunter-searcher/internal/crawler"
	"github.com/JakeFAU/hunter-searcher/internal/storage/memory"
)

func baseConfig() config.Config {
	return config.Config{
		Server:  config.ServerConfig{Port: 22001},
		Crawler: config.CrawlerConfig{UserAgent: "test-agent"},
		DB:      config.DBConfig{MaxConns: 5},
	}
}

func TestNewWithStore_NoSinks(t *testing.T) {
	t.Parallel()

	a, err := app.NewWithStore(context.Background(), baseConfig(), zap.NewNop(), memory.NewPageStore())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Pages())
	assert.Empty(t, a.Sinks())
}

func TestNewWithStore_MemorySinks(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Archive.Provider = config.ProviderMemory
	cfg.Publish.Provider = config.ProviderMemory
	cfg.Publish.Topic = "pages"

	a, err := app.NewWithStore(context.Background(), cfg, nil, memory.NewPageStore())
	require.NoError(t, err)
	defer a.Close()

	names := make([]string, 0, len(a.Sinks()))
	for _, s := range a.Sinks() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"archive", "publish"}, names)
}

func TestNewWithStore_ConfigErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{
			name:          "unknown archive provider",
			mutate:        func(c *config.Config) { c.Archive.Provider = "s3" },
			expectedError: "unknown archive provider: s3",
		},
		{
			name:          "unknown publish provider",
			mutate:        func(c *config.Config) { c.Publish.Provider = "kafka" },
			expectedError: "unknown publish provider: kafka",
		},
		{
			name:          "local archive without dir",
			mutate:        func(c *config.Config) { c.Archive.Provider = config.ProviderLocal },
			expectedError: "init local archive",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := baseConfig()
			tc.mutate(&cfg)

			_, err := app.NewWithStore(context.Background(), cfg, zap.NewNop(), memory.NewPageStore())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedError)
		})
	}
}

func TestNewWithStore_RequiresStore(t *testing.T) {
	t.Parallel()

	_, err := app.NewWithStore(context.Background(), baseConfig(), nil, nil)
	require.Error(t, err)
}

func TestNew_MissingPostgresEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_HOST", "POSTGRES_DB"} {
		t.Setenv(key, "")
	}

	_, err := app.New(context.Background(), baseConfig(), zap.NewNop())
	require.ErrorIs(t, err, config.ErrMissingEnv)
}

func TestNewCrawler_ValidatesConfig(t *testing.T) {
	t.Parallel()

	a, err := app.NewWithStore(context.Background(), baseConfig(), nil, memory.NewPageStore())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.NewCrawler(&crawler.Config{MaxDocuments: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user agent")
}

func TestCrawlEndToEnd(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Otters</title></head>` + //nolint:errcheck // test server
			`<body><p>Sea otters hold hands while sleeping.</p><a href="/more">more</a></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	archiveDir := t.TempDir()
	cfg := baseConfig()
	cfg.Archive.Provider = config.ProviderLocal
	cfg.Archive.BaseDir = archiveDir
	cfg.Archive.Prefix = "pages"

	pages := memory.NewPageStore()
	a, err := app.NewWithStore(context.Background(), cfg, zap.NewNop(), pages)
	require.NoError(t, err)
	defer a.Close()

	c, err := a.NewCrawler(&crawler.Config{
		UserAgent:      "test-agent",
		MaxDocuments:   1,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	docs, err := c.Crawl(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Otters", docs[0].Title)
	assert.Equal(t, 1, pages.Len())

	results := pages.Search(context.Background(), "otters")
	require.Len(t, results, 1)
	assert.Equal(t, srv.URL+"/", results[0].URL)

	var archived []string
	require.NoError(t, filepath.WalkDir(archiveDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".html") {
			archived = append(archived, path)
		}
		return nil
	}))
	assert.Len(t, archived, 1)
}

func TestServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Server.Port = freePort(t)
	a, err := app.NewWithStore(context.Background(), cfg, nil, memory.NewPageStore())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	addr, ok := srv.Listener.Addr().(*net.TCPAddr)
	require.True(t, ok)
	return addr.Port
}
