package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/clinscrape/clinscrape"
	main "github.com/clinscrape/clinscrape/cmd/clinscrape"
	"github.com/clinscrape/clinscrape/crawl"
	"github.com/clinscrape/clinscrape/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCrawler returns a crawler backed entirely by mocks, extracting the
// given products from every unit.
func testCrawler(products []*clinscrape.Product) *crawl.Crawler {
	return &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "<html><body>" + url + "</body></html>", nil
			},
			CloseFn: func() error { return nil },
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(html string) (*clinscrape.ExtractResult, error) {
				return &clinscrape.ExtractResult{Title: "Pricing", ContentHTML: html}, nil
			},
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) { return html, nil },
		},
		Products: &mock.ProductExtractor{
			ExtractProductsFn: func(ctx context.Context, text, sourceURL string) ([]*clinscrape.Product, error) {
				return products, nil
			},
		},
	}
}

func staticTarget() *clinscrape.Target {
	return &clinscrape.Target{
		Key:        "testclinic",
		SiteName:   "Test Clinic",
		BaseURL:    "https://test.clinic",
		Strategy:   clinscrape.SourceStatic,
		StaticURLs: []string{"https://test.clinic/price"},
	}
}

func TestScrapeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("scrapes target and records run", func(t *testing.T) {
		t.Parallel()

		products := []*clinscrape.Product{
			{
				ClinicName: "Test Clinic",
				Name:       "울쎄라 300샷",
				Treatments: []*clinscrape.Treatment{{Name: "울쎄라"}, {Name: "진정 관리"}},
			},
		}

		var createdRun *clinscrape.Run
		var storedProducts []*clinscrape.Product
		runs := &mock.RunService{
			CreateRunFn: func(ctx context.Context, run *clinscrape.Run, products []*clinscrape.Product) error {
				run.ID = "run-1"
				createdRun = run
				storedProducts = products
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:          context.Background(),
			Stdout:       stdout,
			Stderr:       stderr,
			Targets:      []*clinscrape.Target{staticTarget()},
			Runs:         runs,
			Crawler:      testCrawler(products),
			ProviderName: "gemini",
			Model:        "gemini-2.5-flash",
		}

		cmd := &main.ScrapeCmd{Keys: []string{"testclinic"}, Format: "both"}
		require.NoError(t, cmd.Run(deps))

		require.NotNil(t, createdRun)
		assert.Equal(t, "testclinic", createdRun.TargetKey)
		assert.Equal(t, "gemini", createdRun.Provider)
		assert.Equal(t, 1, createdRun.Products)
		assert.Equal(t, 2, createdRun.Treatments)
		require.Len(t, storedProducts, 1)

		output := stdout.String()
		assert.Contains(t, output, "Test Clinic")
		assert.Contains(t, output, "1 products (2 treatments)")
		assert.Empty(t, stderr.String())
	})

	t.Run("exports products to output directory", func(t *testing.T) {
		t.Parallel()

		products := []*clinscrape.Product{
			{
				ClinicName: "Test Clinic",
				Name:       "보톡스 턱",
				Treatments: []*clinscrape.Treatment{{Name: "보톡스"}},
			},
		}

		runs := &mock.RunService{
			CreateRunFn: func(ctx context.Context, run *clinscrape.Run, products []*clinscrape.Product) error {
				return nil
			},
		}

		outDir := t.TempDir()
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  &bytes.Buffer{},
			Targets: []*clinscrape.Target{staticTarget()},
			Runs:    runs,
			Crawler: testCrawler(products),
		}

		cmd := &main.ScrapeCmd{Keys: []string{"testclinic"}, Out: outDir, Format: "both"}
		require.NoError(t, cmd.Run(deps))

		data, err := os.ReadFile(filepath.Join(outDir, "testclinic.json"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "보톡스 턱")
		// JSON export is self-describing: run metadata plus products.
		assert.Contains(t, string(data), `"targetKey": "testclinic"`)

		data, err = os.ReadFile(filepath.Join(outDir, "testclinic.csv"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "보톡스")
	})

	t.Run("json-only export skips csv", func(t *testing.T) {
		t.Parallel()

		runs := &mock.RunService{
			CreateRunFn: func(ctx context.Context, run *clinscrape.Run, products []*clinscrape.Product) error {
				return nil
			},
		}

		outDir := t.TempDir()
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  &bytes.Buffer{},
			Targets: []*clinscrape.Target{staticTarget()},
			Runs:    runs,
			Crawler: testCrawler(nil),
		}

		cmd := &main.ScrapeCmd{Keys: []string{"testclinic"}, Out: outDir, Format: "json"}
		require.NoError(t, cmd.Run(deps))

		_, err := os.Stat(filepath.Join(outDir, "testclinic.json"))
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(outDir, "testclinic.csv"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("returns error for unknown target key", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  stderr,
			Targets: []*clinscrape.Target{staticTarget()},
		}

		cmd := &main.ScrapeCmd{Keys: []string{"nope"}, Format: "both"}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, clinscrape.ENOTFOUND, clinscrape.ErrorCode(err))
		assert.Contains(t, stderr.String(), "nope")
	})

	t.Run("scrapes all targets when no keys given", func(t *testing.T) {
		t.Parallel()

		second := staticTarget()
		second.Key = "otherclinic"
		second.SiteName = "Other Clinic"

		var created []string
		runs := &mock.RunService{
			CreateRunFn: func(ctx context.Context, run *clinscrape.Run, products []*clinscrape.Product) error {
				created = append(created, run.TargetKey)
				return nil
			},
		}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  &bytes.Buffer{},
			Targets: []*clinscrape.Target{staticTarget(), second},
			Runs:    runs,
			Crawler: testCrawler(nil),
		}

		stdout := &bytes.Buffer{}
		deps.Stdout = stdout

		cmd := &main.ScrapeCmd{Format: "both"}
		require.NoError(t, cmd.Run(deps))
		assert.Equal(t, []string{"testclinic", "otherclinic"}, created)
		assert.Contains(t, stdout.String(), "2 sites ok, 0 failed")
	})

	t.Run("continues to next target after scrape failure", func(t *testing.T) {
		t.Parallel()

		broken := &clinscrape.Target{
			Key:      "broken",
			SiteName: "Broken Clinic",
			BaseURL:  "https://broken.clinic",
			Strategy: clinscrape.SourceSPA,
			SPA:      &clinscrape.SPAConfig{},
		}

		var created []string
		runs := &mock.RunService{
			CreateRunFn: func(ctx context.Context, run *clinscrape.Run, products []*clinscrape.Product) error {
				created = append(created, run.TargetKey)
				return nil
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  stderr,
			Targets: []*clinscrape.Target{broken, staticTarget()},
			Runs:    runs,
			Crawler: testCrawler(nil), // no session opener: SPA target fails
		}

		cmd := &main.ScrapeCmd{Format: "both"}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "broken")
		// The static target still ran and was recorded.
		assert.Equal(t, []string{"testclinic"}, created)
	})
}
