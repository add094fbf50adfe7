package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/go-review-nlp/pkg/types"
)

// DefaultMaxPages は、クロールする最大ページ数のデフォルト値です。
const DefaultMaxPages = 10

// Options は Crawler の設定です。
type Options struct {
	BaseURL     string
	Airline     string
	StartPage   int
	MaxPages    int           // このページ番号までを対象とする
	RateLimit   time.Duration // ページ取得の最小間隔
	Concurrency int           // 1 以下の場合は逐次クロール
	Verbose     bool
}

// CrawlResult は、クロールで得られたページ結果とレビューの一覧です。
type CrawlResult struct {
	Pages   []types.PageResult
	Reviews []types.Review
	Summary types.CrawlSummary
}

// Crawler は、レビュー一覧ページをページ番号順にたどるクローラーです。
type Crawler struct {
	extractor ReviewExtractor
	opts      Options
}

// NewCrawler は Crawler を初期化します。未設定の項目にはデフォルト値を適用します。
func NewCrawler(extractor ReviewExtractor, opts Options) (*Crawler, error) {
	if extractor == nil {
		return nil, fmt.Errorf("scraper.NewCrawler: extractor cannot be nil")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Airline == "" {
		opts.Airline = DefaultAirline
	}
	if opts.StartPage <= 0 {
		opts.StartPage = 1
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.StartPage > opts.MaxPages {
		return nil, fmt.Errorf("開始ページ (%d) が最大ページ数 (%d) を超えています", opts.StartPage, opts.MaxPages)
	}
	if opts.RateLimit < 0 {
		opts.RateLimit = 0
	}
	return &Crawler{extractor: extractor, opts: opts}, nil
}

// PageURLs は、クロール対象となるすべてのページURLを返します。
func (c *Crawler) PageURLs() []string {
	urls := make([]string, 0, c.opts.MaxPages-c.opts.StartPage+1)
	for p := c.opts.StartPage; p <= c.opts.MaxPages; p++ {
		urls = append(urls, PageURL(c.opts.BaseURL, c.opts.Airline, p))
	}
	return urls
}

// Crawl はクロールを実行します。
// ページ単位のエラーはログに記録して結果に含め、その時点でクロールを終了します。
// 戻り値のエラーは、コンテキストのキャンセル以外では常に nil です。
func (c *Crawler) Crawl(ctx context.Context) (*CrawlResult, error) {
	var result *CrawlResult
	if c.opts.Concurrency > 1 {
		result = c.crawlParallel(ctx)
	} else {
		result = c.crawlSequential(ctx)
	}

	log.Printf("クロール終了 (理由: %s)", result.Summary.StopReason)
	log.Printf("取得したレビュー総数: %d 件 (%d ページ)", result.Summary.Reviews, result.Summary.Pages)

	if result.Summary.StopReason == types.StopCancelled {
		return result, ctx.Err()
	}
	return result, nil
}

func (c *Crawler) crawlSequential(ctx context.Context) *CrawlResult {
	result := &CrawlResult{}

	var limiter *rate.Limiter
	if c.opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(c.opts.RateLimit), 1)
	}

	url := PageURL(c.opts.BaseURL, c.opts.Airline, c.opts.StartPage)
	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				result.Summary.StopReason = types.StopCancelled
				return result
			}
		}

		pr := c.fetchPage(ctx, url)
		if c.record(ctx, result, pr) {
			return result
		}

		current := PageNumber(url)
		log.Printf("現在のページ番号: %d", current)
		if current >= c.opts.MaxPages {
			log.Printf("最大ページ数 (%d ページ) に到達したため、クロールを終了します", c.opts.MaxPages)
			result.Summary.StopReason = types.StopMaxPages
			return result
		}

		url = PageURL(c.opts.BaseURL, c.opts.Airline, current+1)
		log.Printf("次のページへ進みます: %s (ページ %d)", url, current+1)
	}
}

// crawlParallel は全ページを並列に取得し、ページ順に並べ直してから
// 逐次クロールと同じ終了条件で結果を切り詰めます。
func (c *Crawler) crawlParallel(ctx context.Context) *CrawlResult {
	result := &CrawlResult{}
	ps := NewParallelScraper(c.extractor, c.opts.Concurrency, WithRateLimit(c.opts.RateLimit))

	pages := ps.ScrapeInParallel(ctx, c.PageURLs())
	for _, pr := range pages {
		if pr.Error == nil {
			logPage(pr)
		}
		if c.record(ctx, result, pr) {
			return result
		}
	}
	result.Summary.StopReason = types.StopMaxPages
	return result
}

// fetchPage は1ページを取得し、ページ単位の結果を返します。
func (c *Crawler) fetchPage(ctx context.Context, url string) types.PageResult {
	log.Printf("ページを解析中: %s", url)
	pr := types.PageResult{URL: url, Page: PageNumber(url)}

	reviews, err := c.extractor.FetchAndExtractReviews(ctx, url)
	if err != nil {
		pr.Error = fmt.Errorf("ページの解析エラー (URL: %s): %w", url, err)
		return pr
	}
	for i := range reviews {
		reviews[i].Page = pr.Page
	}
	pr.Reviews = reviews
	logPage(pr)
	return pr
}

// logPage は、ページ内のレビュー件数と欠損フィールドをログに出力します。
func logPage(pr types.PageResult) {
	log.Printf("このページで %d 件のレビューが見つかりました", len(pr.Reviews))
	for i, r := range pr.Reviews {
		if missing := r.MissingFields(); len(missing) > 0 {
			log.Printf("警告: レビュー %d (URL: %s) に欠損フィールドがあります: %v", i+1, pr.URL, missing)
		}
	}
}

// record はページ結果を集計に反映し、クロールを終了すべき場合に true を返します。
func (c *Crawler) record(ctx context.Context, result *CrawlResult, pr types.PageResult) bool {
	result.Pages = append(result.Pages, pr)
	result.Summary.Pages++

	if pr.Error != nil {
		result.Summary.Failed++
		if ctx.Err() != nil || errors.Is(pr.Error, context.Canceled) {
			log.Printf("クロールが中断されました: %v", pr.Error)
			result.Summary.StopReason = types.StopCancelled
			return true
		}
		log.Printf("エラー: %v", pr.Error)
		result.Summary.StopReason = types.StopError
		return true
	}

	if len(pr.Reviews) == 0 {
		log.Printf("レビューが見つからないため、一覧の末尾と判断します: %s", pr.URL)
		result.Summary.StopReason = types.StopEmpty
		return true
	}

	result.Reviews = append(result.Reviews, pr.Reviews...)
	result.Summary.Reviews += len(pr.Reviews)
	if c.opts.Verbose {
		for _, r := range pr.Reviews {
			log.Printf("レビューを取得: %s (投稿者: %s)", r.Title, r.Author)
		}
	}
	return false
}
