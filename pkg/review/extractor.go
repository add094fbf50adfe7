package review

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/go-review-nlp/pkg/types"
)

// Extractor は、Fetcher を使ってレビュー一覧ページからのレビュー抽出プロセスを管理します。
type Extractor struct {
	fetcher Fetcher
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
func NewExtractor(fetcher Fetcher) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("review.NewExtractor: Fetcher cannot be nil")
	}
	return &Extractor{
		fetcher: fetcher,
	}, nil
}

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------
const (
	reviewArticleSelector = "article.comp_media-review-rated"

	titleSelector   = "h2.text_header"
	authorSelector  = `span[itemprop="name"]`
	dateSelector    = `meta[itemprop="datePublished"]`
	bodySelector    = `div[itemprop="reviewBody"]`
	ratingSelector  = `div[itemprop="reviewRating"] span[itemprop="ratingValue"]`
	valueCellFormat = "td.review-rating-header.%s + td.review-value"

	headerTypeOfTraveller = "type_of_traveller"
	headerCabinFlown      = "cabin_flown"
	headerRoute           = "route"
	headerDateFlown       = "date_flown"
	headerRecommended     = "recommended"
)

// ----------------------------------------------------------------------
// メイン関数 (メソッド化)
// ----------------------------------------------------------------------

// FetchAndExtractReviews は指定されたURLからページを取得し、掲載されているレビューをすべて抽出します。
// レビューが1件も見つからない場合は、エラーではなく空のスライスを返します。
func (e *Extractor) FetchAndExtractReviews(ctx context.Context, url string) ([]types.Review, error) {
	// 1. Fetcherから生のバイト配列を取得 (通信の責務)
	htmlBytes, err := e.fetcher.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	// 2. Extractor内でgoquery.Documentに変換 (解析の責務)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	reviews := ExtractReviews(doc)
	for i := range reviews {
		reviews[i].SourceURL = url
	}
	return reviews, nil
}

// ExtractReviews は goquery.Document からレビュー記事をドキュメント順に抽出します。
func ExtractReviews(doc *goquery.Document) []types.Review {
	articles := doc.Find(reviewArticleSelector)
	reviews := make([]types.Review, 0, articles.Length())

	articles.Each(func(i int, s *goquery.Selection) {
		reviews = append(reviews, extractReview(s))
	})
	return reviews
}

// extractReview は1件のレビュー記事からフィールドを取り出します。
func extractReview(s *goquery.Selection) types.Review {
	date, _ := s.Find(dateSelector).First().Attr("content")

	return types.Review{
		Title:           firstText(s, titleSelector),
		Author:          firstText(s, authorSelector),
		Date:            strings.TrimSpace(date),
		Content:         bodyText(s.Find(bodySelector).First()),
		TypeOfTraveller: firstText(s, fmt.Sprintf(valueCellFormat, headerTypeOfTraveller)),
		SeatType:        firstText(s, fmt.Sprintf(valueCellFormat, headerCabinFlown)),
		Route:           firstText(s, fmt.Sprintf(valueCellFormat, headerRoute)),
		DateFlown:       firstText(s, fmt.Sprintf(valueCellFormat, headerDateFlown)),
		Rating:          firstText(s, ratingSelector),
		Recommended:     firstText(s, fmt.Sprintf(valueCellFormat, headerRecommended)),
	}
}

func firstText(s *goquery.Selection, selector string) string {
	return normalize(s.Find(selector).First().Text())
}

// normalize は改行・タブを含む連続空白を1つの空白にまとめます。
func normalize(text string) string {
	return textUtils.NormalizeText(strings.Join(strings.Fields(text), " "))
}

// bodyText は本文要素配下のテキストノードを空白区切りで結合します。
// <br> や <strong> の直後で単語が連結されないよう、ノード単位で収集します。
func bodyText(body *goquery.Selection) string {
	if body.Length() == 0 {
		return ""
	}
	var parts []string
	body.Contents().Each(func(i int, c *goquery.Selection) {
		collectText(c, &parts)
	})
	return normalize(strings.Join(parts, " "))
}

func collectText(s *goquery.Selection, parts *[]string) {
	if goquery.NodeName(s) == "#text" {
		if t := strings.TrimSpace(s.Text()); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	s.Contents().Each(func(i int, c *goquery.Selection) {
		collectText(c, parts)
	})
}
