package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/clinscrape/clinscrape/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter_SpacesRequestsWithinDomain(t *testing.T) {
	t.Parallel()

	limiter := crawl.NewDomainLimiter(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "xenia.clinic"))
	require.NoError(t, limiter.Wait(ctx, "xenia.clinic"))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestDomainLimiter_DomainsIndependent(t *testing.T) {
	t.Parallel()

	limiter := crawl.NewDomainLimiter(time.Hour)
	ctx := context.Background()

	// First request per domain is immediate even with a huge interval.
	require.NoError(t, limiter.Wait(ctx, "xenia.clinic"))
	require.NoError(t, limiter.Wait(ctx, "ppeum.com"))
}

func TestDomainLimiter_ContextCancellation(t *testing.T) {
	t.Parallel()

	limiter := crawl.NewDomainLimiter(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, limiter.Wait(ctx, "xenia.clinic"))
	cancel()
	assert.Error(t, limiter.Wait(ctx, "xenia.clinic"))
}

func TestDomainLimiter_SetDomainInterval(t *testing.T) {
	t.Parallel()

	limiter := crawl.NewDomainLimiter(time.Millisecond)
	limiter.SetDomainInterval("oracleclinic.com", time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Other domains keep the fast default.
	require.NoError(t, limiter.Wait(ctx, "xenia.clinic"))
	require.NoError(t, limiter.Wait(ctx, "xenia.clinic"))

	// The overridden domain admits one request, then blocks past the deadline.
	require.NoError(t, limiter.Wait(ctx, "oracleclinic.com"))
	assert.Error(t, limiter.Wait(ctx, "oracleclinic.com"))
}

func TestDomainLimiter_SetDomainIntervalRetunesExistingLimiter(t *testing.T) {
	t.Parallel()

	limiter := crawl.NewDomainLimiter(time.Hour)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "xenia.clinic"))

	limiter.SetDomainInterval("xenia.clinic", time.Millisecond)
	require.NoError(t, limiter.Wait(ctx, "xenia.clinic"))
}

func TestDomainLimiter_SetDomainIntervalIgnoresNonPositive(t *testing.T) {
	t.Parallel()

	limiter := crawl.NewDomainLimiter(time.Millisecond)
	limiter.SetDomainInterval("xenia.clinic", 0)

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx, "xenia.clinic"))
	require.NoError(t, limiter.Wait(ctx, "xenia.clinic"))
}
