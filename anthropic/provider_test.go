package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clinscrape/clinscrape"
	"github.com/clinscrape/clinscrape/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Generate(t *testing.T) {
	t.Parallel()

	t.Run("concatenates text blocks", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotKey, gotVersion string
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("x-api-key")
			gotVersion = r.Header.Get("anthropic-version")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"clinic_name\":"},{"type":"text","text":"\"Xenia\"}"}]}`))
		}))
		defer srv.Close()

		p := anthropic.NewProvider("test-key", "", anthropic.WithBaseURL(srv.URL))
		text, err := p.Generate(context.Background(), "extract products")

		require.NoError(t, err)
		assert.Equal(t, `{"clinic_name":"Xenia"}`, text)
		assert.Equal(t, "/v1/messages", gotPath)
		assert.Equal(t, "test-key", gotKey)
		assert.Equal(t, "2023-06-01", gotVersion)
		assert.Equal(t, anthropic.DefaultModel, gotBody["model"])
	})

	t.Run("maps 429 to rate limit error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"rate limited"}}`))
		}))
		defer srv.Close()

		p := anthropic.NewProvider("test-key", "", anthropic.WithBaseURL(srv.URL))
		_, err := p.Generate(context.Background(), "extract products")

		require.Error(t, err)
		assert.Equal(t, clinscrape.ERATELIMIT, clinscrape.ErrorCode(err))
		assert.Contains(t, clinscrape.ErrorMessage(err), "rate_limit_error")
	})

	t.Run("maps other HTTP errors to unavailable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"overloaded"}}`))
		}))
		defer srv.Close()

		p := anthropic.NewProvider("test-key", "", anthropic.WithBaseURL(srv.URL))
		_, err := p.Generate(context.Background(), "extract products")

		require.Error(t, err)
		assert.Equal(t, clinscrape.EUNAVAILABLE, clinscrape.ErrorCode(err))
	})

	t.Run("empty content is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"content":[]}`))
		}))
		defer srv.Close()

		p := anthropic.NewProvider("test-key", "", anthropic.WithBaseURL(srv.URL))
		_, err := p.Generate(context.Background(), "extract products")

		require.Error(t, err)
		assert.Equal(t, clinscrape.EINTERNAL, clinscrape.ErrorCode(err))
	})

	t.Run("empty prompt is invalid", func(t *testing.T) {
		t.Parallel()

		p := anthropic.NewProvider("test-key", "claude-3-5-haiku-latest")
		_, err := p.Generate(context.Background(), "")

		assert.Equal(t, clinscrape.EINVALID, clinscrape.ErrorCode(err))
	})
}

func TestProvider_Model(t *testing.T) {
	t.Parallel()

	assert.Equal(t, anthropic.DefaultModel, anthropic.NewProvider("k", "").Model())
	assert.Equal(t, "claude-sonnet-4-5", anthropic.NewProvider("k", "claude-sonnet-4-5").Model())
}
