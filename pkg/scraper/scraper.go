package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/shouni/go-review-nlp/pkg/types"
)

const (
	// DefaultMaxConcurrency は、並列スクレイピングのデフォルトの最大同時実行数を定義します。
	DefaultMaxConcurrency = 4
	// DefaultScrapeRateLimit は、リクエスト間隔のデフォルト値を定義します。
	DefaultScrapeRateLimit = 1000 * time.Millisecond
)

// ReviewExtractor は、1ページ分のレビューを取得・抽出する機能のインターフェースです。
// *review.Extractor はこのインターフェースを満たします。
type ReviewExtractor interface {
	FetchAndExtractReviews(ctx context.Context, url string) ([]types.Review, error)
}

// Scraper は複数ページのレビュー抽出機能を提供するインターフェースです。
type Scraper interface {
	ScrapeInParallel(ctx context.Context, urls []string) []types.PageResult
}

// ParallelScraper は Scraper インターフェースを実装する並列処理構造体です。
type ParallelScraper struct {
	extractor      ReviewExtractor
	maxConcurrency int           // 最大並列数を保持するフィールド
	rateLimit      time.Duration // リクエストの最小間隔
}

// ParallelOption は ParallelScraper の設定を行うための関数型です。
type ParallelOption func(*ParallelScraper)

// WithRateLimit はリクエストの最小間隔を設定します。0以下の値は無視されます。
func WithRateLimit(d time.Duration) ParallelOption {
	return func(s *ParallelScraper) {
		if d > 0 {
			s.rateLimit = d
		}
	}
}

// NewParallelScraper は ParallelScraper を初期化します。
// 依存性として ReviewExtractor と、最大同時実行数を受け取ります。
func NewParallelScraper(extractor ReviewExtractor, maxConcurrency int, opts ...ParallelOption) *ParallelScraper {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	s := &ParallelScraper{
		extractor:      extractor,
		maxConcurrency: maxConcurrency,
		rateLimit:      DefaultScrapeRateLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScrapeInParallel は Scraper インターフェースのメソッドを実装します。
// 結果は入力URLと同じ順序で返されます。
func (s *ParallelScraper) ScrapeInParallel(ctx context.Context, urls []string) []types.PageResult {
	var wg sync.WaitGroup
	results := make([]types.PageResult, len(urls))

	// バッファ付きチャネルをセマフォとして使用し、同時実行数を制限する
	semaphore := make(chan struct{}, s.maxConcurrency)

	ticker := time.NewTicker(s.rateLimit)
	defer ticker.Stop()
	rateLimiter := ticker.C

	for i, url := range urls {
		wg.Add(1)

		// リソース（スロット）の確保。maxConcurrency件実行中の場合はここでブロックして待機。
		semaphore <- struct{}{}

		go func(idx int, u string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result := types.PageResult{URL: u, Page: PageNumber(u)}

			// 先頭のリクエストは待機せずに送出し、以降はレートリミット間隔を空ける
			if idx > 0 {
				select {
				case <-rateLimiter:
				case <-ctx.Done():
					result.Error = ctx.Err()
					results[idx] = result
					return
				}
			}

			reviews, err := s.extractor.FetchAndExtractReviews(ctx, u)
			if err != nil {
				result.Error = fmt.Errorf("レビューの抽出に失敗しました (URL: %s): %w", u, err)
			}
			for j := range reviews {
				reviews[j].Page = result.Page
			}
			result.Reviews = reviews
			results[idx] = result
		}(i, url)
	}

	wg.Wait()
	return results
}

// Errors は、結果に含まれるエラーを1つのエラーに集約します。エラーがない場合は nil を返します。
func Errors(results []types.PageResult) error {
	var merr *multierror.Error
	for _, res := range results {
		if res.Error != nil {
			merr = multierror.Append(merr, res.Error)
		}
	}
	return merr.ErrorOrNil()
}
