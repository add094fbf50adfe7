package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-review-nlp/internal/pipeline"
	"github.com/shouni/go-review-nlp/pkg/scraper"
	"github.com/shouni/go-review-nlp/pkg/types"
)

const testBase = "https://reviews.example.com"

// MockExtractor は testify/mock を使った ReviewExtractor です。
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) FetchAndExtractReviews(ctx context.Context, url string) ([]types.Review, error) {
	args := m.Called(ctx, url)
	reviews, _ := args.Get(0).([]types.Review)
	return reviews, args.Error(1)
}

// upperCleaner は本文を大文字にするだけの ReviewCleaner です。
type upperCleaner struct{}

func (upperCleaner) CleanAll(ctx context.Context, reviews []types.Review) ([]types.CleanedReview, error) {
	out := make([]types.CleanedReview, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, types.CleanedReview{Review: r, CleanText: strings.ToUpper(r.Content), Tokens: strings.Fields(r.Content)})
	}
	return out, nil
}

func TestRun(t *testing.T) {
	ext := new(MockExtractor)
	page1 := scraper.PageURL(testBase, "test-air", 1)
	page2 := scraper.PageURL(testBase, "test-air", 2)
	ext.On("FetchAndExtractReviews", mock.Anything, page1).
		Return([]types.Review{{Title: "one", Content: "good crew"}}, nil)
	ext.On("FetchAndExtractReviews", mock.Anything, page2).
		Return([]types.Review{{Title: "two", Content: "bad seat"}}, nil)

	dir := t.TempDir()
	paths := pipeline.Paths{
		Raw:   filepath.Join(dir, "raw", "reviews.csv"),
		Clean: filepath.Join(dir, "processed", "clean.csv"),
		JSONL: filepath.Join(dir, "processed", "clean.jsonl"),
	}
	opts := scraper.Options{BaseURL: testBase, Airline: "test-air", MaxPages: 2}

	result, cleaned, err := pipeline.Run(context.Background(), ext, upperCleaner{}, opts, paths)
	require.NoError(t, err)
	ext.AssertExpectations(t)

	assert.Equal(t, types.StopMaxPages, result.Summary.StopReason)
	require.Len(t, cleaned, 2)
	assert.Equal(t, "GOOD CREW", cleaned[0].CleanText)

	raw, err := pipeline.LoadRaw(paths.Raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Review{{Title: "one", Content: "good crew"}, {Title: "two", Content: "bad seat"}}, raw)

	for _, p := range []string{paths.Clean, paths.JSONL} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Contains(t, string(data), "BAD SEAT")
	}
}

func TestRun_NoReviews(t *testing.T) {
	ext := new(MockExtractor)
	ext.On("FetchAndExtractReviews", mock.Anything, mock.Anything).Return([]types.Review{}, nil)

	dir := t.TempDir()
	paths := pipeline.Paths{Raw: filepath.Join(dir, "raw.csv"), Clean: filepath.Join(dir, "clean.csv")}
	result, cleaned, err := pipeline.Run(context.Background(), ext, upperCleaner{}, scraper.Options{BaseURL: testBase, MaxPages: 3}, paths)
	require.NoError(t, err)
	assert.Equal(t, types.StopEmpty, result.Summary.StopReason)
	assert.Empty(t, cleaned)
	ext.AssertNumberOfCalls(t, "FetchAndExtractReviews", 1)

	_, err = os.Stat(paths.Clean)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadRaw_Missing(t *testing.T) {
	_, err := pipeline.LoadRaw(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
