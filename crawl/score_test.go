package crawl_test

import (
	"testing"

	"github.com/clinscrape/clinscrape"
	"github.com/clinscrape/clinscrape/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreURLs_KeywordBearingURLsRankHigher(t *testing.T) {
	t.Parallel()

	scored := crawl.ScoreURLs([]clinscrape.DiscoveredURL{
		{URL: "https://xenia.clinic/ko/about"},
		{URL: "https://xenia.clinic/ko/treatment/botox"},
	}, nil, 10)

	require.Len(t, scored, 2)
	assert.Equal(t, "https://xenia.clinic/ko/treatment/botox", scored[0].URL)
	assert.Greater(t, scored[0].Score, scored[1].Score)
}

func TestScoreURLs_KoreanKeywordsInLinkText(t *testing.T) {
	t.Parallel()

	scored := crawl.ScoreURLs([]clinscrape.DiscoveredURL{
		{URL: "https://xenia.clinic/ko/page/3", Text: "시술 가격 안내"},
		{URL: "https://xenia.clinic/ko/page/4", Text: "오시는 길"},
	}, nil, 10)

	require.Len(t, scored, 2)
	assert.Equal(t, "https://xenia.clinic/ko/page/3", scored[0].URL)
}

func TestScoreURLs_QueryParamsGetBonus(t *testing.T) {
	t.Parallel()

	scored := crawl.ScoreURLs([]clinscrape.DiscoveredURL{
		{URL: "https://xenia.clinic/ko/event"},
		{URL: "https://xenia.clinic/ko/event?category=3"},
	}, nil, 10)

	require.Len(t, scored, 2)
	assert.Equal(t, "https://xenia.clinic/ko/event?category=3", scored[0].URL)
}

func TestScoreURLs_DepthPenalized(t *testing.T) {
	t.Parallel()

	scored := crawl.ScoreURLs([]clinscrape.DiscoveredURL{
		{URL: "https://xenia.clinic/treatment"},
		{URL: "https://xenia.clinic/a/b/c/d/treatment"},
	}, nil, 10)

	require.Len(t, scored, 2)
	assert.Equal(t, "https://xenia.clinic/treatment", scored[0].URL)
}

func TestScoreURLs_ExcludePatternsDropOutright(t *testing.T) {
	t.Parallel()

	scored := crawl.ScoreURLs([]clinscrape.DiscoveredURL{
		{URL: "https://xenia.clinic/blog/treatment-tips"},
		{URL: "https://xenia.clinic/admin/price"},
		{URL: "https://xenia.clinic/img/price.jpg"},
		{URL: "https://xenia.clinic/ko/price"},
	}, nil, 10)

	require.Len(t, scored, 1)
	assert.Equal(t, "https://xenia.clinic/ko/price", scored[0].URL)
}

func TestScoreURLs_TargetOverrides(t *testing.T) {
	t.Parallel()

	target := &clinscrape.Target{
		PriorityKeywords: []string{"global"},
		ExcludeKeywords:  []string{"event"},
	}

	scored := crawl.ScoreURLs([]clinscrape.DiscoveredURL{
		{URL: "https://ppeum.com/global/lifting"},
		{URL: "https://ppeum.com/treatment/event"},
		{URL: "https://ppeum.com/treatment"},
	}, target, 10)

	require.Len(t, scored, 2)
	assert.Equal(t, "https://ppeum.com/global/lifting", scored[0].URL)
}

func TestScoreURLs_DeduplicatesKeepingMaxScore(t *testing.T) {
	t.Parallel()

	scored := crawl.ScoreURLs([]clinscrape.DiscoveredURL{
		{URL: "https://xenia.clinic/ko/list", Text: ""},
		{URL: "https://xenia.clinic/ko/list", Text: "보톡스 시술"},
	}, nil, 10)

	require.Len(t, scored, 1)
	assert.Equal(t, "보톡스 시술", scored[0].Text)
}

func TestScoreURLs_TruncatesToTopN(t *testing.T) {
	t.Parallel()

	candidates := []clinscrape.DiscoveredURL{
		{URL: "https://xenia.clinic/treatment/a"},
		{URL: "https://xenia.clinic/treatment/b"},
		{URL: "https://xenia.clinic/treatment/c"},
	}

	scored := crawl.ScoreURLs(candidates, nil, 2)
	assert.Len(t, scored, 2)
}
