package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-review-nlp/internal/config"
	"github.com/shouni/go-review-nlp/pkg/types"
)

func TestCompleteURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"www.airlinequality.com", "https://www.airlinequality.com", false},
		{"  http://example.com/feed ", "http://example.com/feed", false},
		{"ftp://example.com", "", true},
		{"https://", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := completeURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReviewListURL(t *testing.T) {
	base := "https://www.airlinequality.com"
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"www.airlinequality.com/airline-reviews/british-airways/page/2/", "https://www.airlinequality.com/airline-reviews/british-airways/page/2/", false},
		{"https://airlinequality.com/airline-reviews/qatar-airways/", "https://airlinequality.com/airline-reviews/qatar-airways/", false},
		{"https://example.com/airline-reviews/british-airways/", "", true},
		{"https://www.airlinequality.com/lounge-reviews/heathrow/", "", true},
		{"mailto:someone@example.com", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := reviewListURL(tt.input, base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReadURLs_RejectsOtherSites(t *testing.T) {
	appConfig = config.Default()
	defer func() { inputURLs = "" }()

	inputURLs = "www.airlinequality.com/airline-reviews/british-airways/page/1/, ,https://www.airlinequality.com/airline-reviews/british-airways/page/2/"
	urls, err := readURLs()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.airlinequality.com/airline-reviews/british-airways/page/1/",
		"https://www.airlinequality.com/airline-reviews/british-airways/page/2/",
	}, urls)

	inputURLs = "https://www.airlinequality.com/airline-reviews/british-airways/,https://evil.example.com/airline-reviews/x/"
	_, err = readURLs()
	assert.Error(t, err)
}

func TestScraperOptions_FlagsOverrideConfigOnlyWhenSet(t *testing.T) {
	appConfig = config.Default()
	appConfig.Airline = "virgin-atlantic"
	appConfig.MaxPages = 4

	c := &cobra.Command{Use: "test"}
	var f crawlFlags
	addCrawlFlags(c, &f)
	require.NoError(t, c.Flags().Parse([]string{"--max-pages", "7", "--rate-limit", "250"}))

	opts, raw, err := scraperOptions(c, &f)
	require.NoError(t, err)
	assert.Equal(t, "virgin-atlantic", opts.Airline, "未指定のフラグは設定値を使うべきです")
	assert.Equal(t, 7, opts.MaxPages)
	assert.Equal(t, 250*time.Millisecond, opts.RateLimit)
	assert.Equal(t, "https://www.airlinequality.com", opts.BaseURL)
	assert.Equal(t, appConfig.RawOutput, raw)
}

func TestCleanPaths(t *testing.T) {
	appConfig = config.Default()

	c := &cobra.Command{Use: "test"}
	var f cleanFlags
	addCleanFlags(c, &f, true)
	require.NoError(t, c.Flags().Parse([]string{"--jsonl-output", "out.jsonl", "--no-spell"}))

	paths := cleanPaths(c, &f)
	assert.Equal(t, appConfig.RawOutput, paths.Raw)
	assert.Equal(t, appConfig.CleanOutput, paths.Clean)
	assert.Equal(t, "out.jsonl", paths.JSONL)
	assert.True(t, f.noSpell)
	assert.True(t, appConfig.SpellCheckEnabled(), "フラグの解釈で設定値が書き換えられてはいけません")
}

func TestCleanerConfig(t *testing.T) {
	appConfig = config.Default()
	appConfig.ExtraStopwords = []string{"typical"}
	appConfig.NegationWindow = 2

	cfg := cleanerConfig(false)
	assert.Equal(t, []string{"typical"}, cfg.ExtraStopwords)
	assert.Equal(t, 2, cfg.NegationWindow)
	assert.Equal(t, appConfig.SpellCheckEnabled(), cfg.SpellCheck)

	assert.False(t, cleanerConfig(true).SpellCheck, "--no-spell は設定ファイルより優先されるべきです")

	off := false
	appConfig.SpellCheck = &off
	assert.False(t, cleanerConfig(false).SpellCheck)
}

func TestLogFileWriter(t *testing.T) {
	w := logFileWriter("review-nlp.log")
	assert.Equal(t, "review-nlp.log", w.Filename)
	assert.Equal(t, 5, w.MaxSize)
	assert.Equal(t, 10, w.MaxAge)
}

func TestCollectReviews(t *testing.T) {
	results := []types.PageResult{
		{URL: "a", Reviews: []types.Review{{Title: "1"}, {Title: "2"}}},
		{URL: "b", Error: errors.New("boom"), Reviews: []types.Review{{Title: "x"}}},
		{URL: "c", Reviews: []types.Review{{Title: "3"}}},
	}
	got := collectReviews(results)
	assert.Equal(t, []types.Review{{Title: "1"}, {Title: "2"}, {Title: "3"}}, got)
}

func TestOverallTimeout(t *testing.T) {
	appConfig = config.Default()
	appConfig.TimeoutSec = 5
	appConfig.RateLimitMs = 500
	assert.Equal(t, 3*(10*time.Second+500*time.Millisecond), overallTimeout(3))
	assert.Equal(t, overallTimeout(1), overallTimeout(0))
}
