package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-review-nlp/pkg/output"
	"github.com/shouni/go-review-nlp/pkg/types"
)

var sampleReviews = []types.Review{
	{
		Title:           `"Seat was broken"`,
		Author:          "J Smith",
		Date:            "2024-05-02",
		Content:         "Trip Verified | The seat, sadly, was broken.\nCrew did not help.",
		TypeOfTraveller: "Business",
		SeatType:        "Economy Class",
		Route:           "London to Madrid",
		DateFlown:       "April 2024",
		Rating:          "2",
		Recommended:     "no",
		SourceURL:       "https://example.com/page/1/",
		Page:            1,
	},
	{Title: "Partial", Content: "Fine"},
}

func TestReviewsCSV_WriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.WriteReviewsCSV(&buf, sampleReviews))

	firstLine := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, strings.Join(types.ReviewColumns, ","), firstLine)

	got, err := output.ReadReviewsCSV(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleReviews, got, cmpopts.IgnoreFields(types.Review{}, "SourceURL", "Page")); diff != "" {
		t.Errorf("reviews mismatch (-want +got):\n%s", diff)
	}
}

func TestReadReviewsCSV(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    []types.Review
		expectedErr string
	}{
		{
			name:     "reordered_and_extra_columns",
			input:    "\ufeffrating,extra,content\n9,x,Great crew\n",
			expected: []types.Review{{Rating: "9", Content: "Great crew"}},
		},
		{
			name:     "short_row",
			input:    "title,content,author\nHello,Body\n",
			expected: []types.Review{{Title: "Hello", Content: "Body"}},
		},
		{
			name:        "missing_content_column",
			input:       "title,author\nA,B\n",
			expectedErr: "content",
		},
		{
			name:        "empty",
			input:       "",
			expectedErr: "空",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := output.ReadReviewsCSV(strings.NewReader(tt.input))
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func cleanedSample() []types.CleanedReview {
	return []types.CleanedReview{{
		Review:    types.Review{Title: "T", Content: "Trip Verified | Nice lounge at Heathrow"},
		Verified:  true,
		Tokens:    []string{"nice", "lounge", "heathrow"},
		CleanText: "nice lounge heathrow",
		Entities:  []types.Entity{{Text: "Heathrow", Label: "GPE"}, {Text: "BA", Label: "ORGANIZATION"}},
	}}
}

func TestWriteCleanedCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.WriteCleanedCSV(&buf, cleanedSample()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], ",verified,clean_text,tokens,entities"))
	assert.True(t, strings.HasSuffix(lines[1], ",true,nice lounge heathrow,nice lounge heathrow,Heathrow|GPE;BA|ORGANIZATION"))

	// クリーニング済みCSVも生CSVとして読み戻せる
	got, err := output.ReadReviewsCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, []types.Review{cleanedSample()[0].Review}, got)
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.WriteJSONL(&buf, append(cleanedSample(), cleanedSample()...)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, "T", decoded["title"])
	assert.Equal(t, true, decoded["verified"])
	assert.Equal(t, "nice lounge heathrow", decoded["clean_text"])
	assert.NotContains(t, decoded, "SourceURL")
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	output.RenderSummary(&buf, types.CrawlSummary{Pages: 3, Reviews: 20, Failed: 1, StopReason: types.StopError})
	out := buf.String()
	assert.Contains(t, out, "レビュー件数")
	assert.Contains(t, out, "20")
	assert.Contains(t, out, "error")

	buf.Reset()
	output.RenderPages(&buf, []types.PageResult{
		{URL: "https://example.com/page/1/", Page: 1, Reviews: make([]types.Review, 10)},
		{URL: "https://example.com/page/2/", Page: 2, Error: errors.New("HTTP 500")},
	})
	assert.Contains(t, buf.String(), "HTTP 500")
	assert.Contains(t, buf.String(), "https://example.com/page/2/")
}

func TestCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "raw", "out.csv")
	f, err := output.CreateFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFormatEntities_EscapesSeparators(t *testing.T) {
	got := output.FormatEntities([]types.Entity{
		{Text: "A|B;C", Label: "ORG"},
		{Text: `C:\Temp`, Label: "GPE"},
		{Text: "Heathrow", Label: "GPE"},
	})
	assert.Equal(t, `A\|B\;C|ORG;C:\\Temp|GPE;Heathrow|GPE`, got)
	assert.Equal(t, "", output.FormatEntities(nil))
}
