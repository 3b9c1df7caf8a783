package extract_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clinscrape/clinscrape/extract"
	"github.com/clinscrape/clinscrape/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageText pads a treatment description past the minimum input length.
func pageText() string {
	return "울쎄라 리프팅 300샷 이벤트 690,000원 " + strings.Repeat("시술 안내 내용 ", 20)
}

const validResponse = `{
	"clinic_name": "Xenia Clinic",
	"products": [{
		"product_name": "울쎄라 300샷",
		"product_event_price": 690000,
		"treatments": [{"name": "울쎄라", "treatment_type": "device"}]
	}]
}`

func fastClient(p *mock.LLMProvider, opts ...extract.ClientOption) *extract.Client {
	opts = append(opts,
		extract.WithRequestsPerMinute(100000),
		extract.WithRetryBaseDelay(time.Millisecond),
	)
	return extract.NewClient(p, opts...)
}

func TestClient_ExtractProducts(t *testing.T) {
	t.Parallel()

	provider := &mock.LLMProvider{
		GenerateFn: func(ctx context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "울쎄라 리프팅")
			return validResponse, nil
		},
	}

	products, err := fastClient(provider).ExtractProducts(context.Background(), pageText(), "https://xenia.clinic/ko/lifting")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "울쎄라 300샷", products[0].Name)
	assert.Equal(t, "https://xenia.clinic/ko/lifting", products[0].SourceURL)
}

func TestClient_SkipsShortInput(t *testing.T) {
	t.Parallel()

	calls := 0
	provider := &mock.LLMProvider{
		GenerateFn: func(ctx context.Context, prompt string) (string, error) {
			calls++
			return validResponse, nil
		},
	}

	products, err := fastClient(provider).ExtractProducts(context.Background(), "메뉴", "https://xenia.clinic")
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Zero(t, calls)
}

func TestClient_TruncatesInput(t *testing.T) {
	t.Parallel()

	var prompt string
	provider := &mock.LLMProvider{
		GenerateFn: func(ctx context.Context, p string) (string, error) {
			prompt = p
			return validResponse, nil
		},
	}

	client := fastClient(provider, extract.WithMaxInputChars(500))
	_, err := client.ExtractProducts(context.Background(), strings.Repeat("a", 2000), "https://xenia.clinic")
	require.NoError(t, err)
	assert.Contains(t, prompt, "…")
	assert.NotContains(t, prompt, strings.Repeat("a", 600))
}

func TestClient_RetriesRateLimitErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	provider := &mock.LLMProvider{
		GenerateFn: func(ctx context.Context, prompt string) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("429: resource_exhausted, quota exceeded")
			}
			return validResponse, nil
		},
	}

	products, err := fastClient(provider).ExtractProducts(context.Background(), pageText(), "https://xenia.clinic")
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 3, calls)
}

func TestClient_RateLimitRetriesExhausted(t *testing.T) {
	t.Parallel()

	calls := 0
	provider := &mock.LLMProvider{
		GenerateFn: func(ctx context.Context, prompt string) (string, error) {
			calls++
			return "", errors.New("rate limit exceeded")
		},
	}

	_, err := fastClient(provider).ExtractProducts(context.Background(), pageText(), "https://xenia.clinic")
	require.Error(t, err)
	assert.Equal(t, 4, calls) // 1 initial + 3 retries
}

func TestClient_NonRetryableErrorAbortsImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	provider := &mock.LLMProvider{
		GenerateFn: func(ctx context.Context, prompt string) (string, error) {
			calls++
			return "", errors.New("invalid request: prompt blocked")
		},
	}

	_, err := fastClient(provider).ExtractProducts(context.Background(), pageText(), "https://xenia.clinic")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestClient_UnparseableResponseReturnsEmpty(t *testing.T) {
	t.Parallel()

	provider := &mock.LLMProvider{
		GenerateFn: func(ctx context.Context, prompt string) (string, error) {
			return "The page lists no products.", nil
		},
	}

	products, err := fastClient(provider).ExtractProducts(context.Background(), pageText(), "https://xenia.clinic")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestClient_ContextCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	provider := &mock.LLMProvider{
		GenerateFn: func(ctx context.Context, prompt string) (string, error) {
			cancel()
			return "", errors.New("429 too many requests")
		},
	}

	client := fastClient(provider, extract.WithRetryBaseDelay(time.Minute))
	_, err := client.ExtractProducts(ctx, pageText(), "https://xenia.clinic")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClinicNameFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://global.ppeum.com/treatment", "Ppeum Clinic"},
		{"https://www.xenia.clinic/ko/", "Xenia Clinic"},
		{"https://someclinic.co.kr/event", "Someclinic"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, extract.ClinicNameFromURL(tt.url))
		})
	}
}
