package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-review-nlp/internal/config"
	"github.com/shouni/go-review-nlp/internal/pipeline"
	"github.com/shouni/go-review-nlp/pkg/output"
	"github.com/shouni/go-review-nlp/pkg/review"
	"github.com/shouni/go-review-nlp/pkg/scraper"
)

// クロール系コマンド (crawl, pipeline) 共通のフラグ
type crawlFlags struct {
	baseURL     string
	airline     string
	startPage   int
	maxPages    int
	rateLimitMs int
	concurrency int
	rawOutput   string
}

var crawlOpts crawlFlags

// addCrawlFlags はクロール系コマンドにフラグを追加します。未指定のフラグは設定ファイルの値に従います。
func addCrawlFlags(cmd *cobra.Command, f *crawlFlags) {
	d := config.Default()
	cmd.Flags().StringVar(&f.baseURL, "base-url", d.BaseURL, "レビューサイトのベースURL")
	cmd.Flags().StringVarP(&f.airline, "airline", "a", d.Airline, "航空会社のスラッグ (例: british-airways)")
	cmd.Flags().IntVar(&f.startPage, "start-page", d.StartPage, "クロールを開始するページ番号")
	cmd.Flags().IntVarP(&f.maxPages, "max-pages", "m", d.MaxPages, "クロールする最大ページ番号")
	cmd.Flags().IntVar(&f.rateLimitMs, "rate-limit", d.RateLimitMs, "ページ取得の最小間隔（ミリ秒）")
	cmd.Flags().IntVarP(&f.concurrency, "concurrency", "c", d.Concurrency, "最大並列実行数 (1 の場合は逐次クロール)")
	cmd.Flags().StringVarP(&f.rawOutput, "output", "o", d.RawOutput, "生データCSVの出力先")
}

// scraperOptions は設定ファイルの値に、明示的に指定されたフラグを重ねたクロール設定を返します。
func scraperOptions(cmd *cobra.Command, f *crawlFlags) (scraper.Options, string, error) {
	cfg := appConfig
	changed := cmd.Flags().Changed
	if changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if changed("airline") {
		cfg.Airline = f.airline
	}
	if changed("start-page") {
		cfg.StartPage = f.startPage
	}
	if changed("max-pages") {
		cfg.MaxPages = f.maxPages
	}
	if changed("rate-limit") {
		cfg.RateLimitMs = f.rateLimitMs
	}
	if changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if changed("output") {
		cfg.RawOutput = f.rawOutput
	}

	base, err := completeURL(cfg.BaseURL)
	if err != nil {
		return scraper.Options{}, "", err
	}
	opts := scraper.Options{
		BaseURL:     base,
		Airline:     cfg.Airline,
		StartPage:   cfg.StartPage,
		MaxPages:    cfg.MaxPages,
		RateLimit:   time.Duration(cfg.RateLimitMs) * time.Millisecond,
		Concurrency: cfg.Concurrency,
		Verbose:     clibase.Flags.Verbose,
	}
	return opts, cfg.RawOutput, nil
}

// newExtractor は共有フェッチャーからレビュー抽出器を生成します。
func newExtractor() (*review.Extractor, error) {
	fetcher := GetGlobalFetcher()
	if fetcher == nil {
		return nil, fmt.Errorf("HTTPクライアントの取得に失敗しました")
	}
	extractor, err := review.NewExtractor(fetcher)
	if err != nil {
		return nil, fmt.Errorf("Extractorの初期化エラー: %w", err)
	}
	return extractor, nil
}

// crawlContext は、割り込みシグナルと全体タイムアウトで終了するコンテキストを返します。
func crawlContext(opts scraper.Options) (context.Context, context.CancelFunc) {
	pages := opts.MaxPages - opts.StartPage + 1
	timeout := overallTimeout(pages)
	log.Printf("クロール開始 (航空会社: %s, ページ: %d-%d, 全体タイムアウト: %s)", opts.Airline, opts.StartPage, opts.MaxPages, timeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "航空会社のレビュー一覧をページ順にクロールし、生データCSVを保存します",
	Long:  `airlinequality.com の航空会社レビュー一覧を開始ページから最大ページまで順にたどり、各レビューのフィールドを抽出して CSV に保存します。中断された場合も取得済みのレビューは保存されます。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		opts, rawPath, err := scraperOptions(cmd, &crawlOpts)
		if err != nil {
			return err
		}
		extractor, err := newExtractor()
		if err != nil {
			return err
		}

		ctx, cancel := crawlContext(opts)
		defer cancel()

		result, err := pipeline.CrawlReviews(ctx, extractor, opts, rawPath)
		if result != nil {
			output.RenderSummary(os.Stdout, result.Summary)
			if clibase.Flags.Verbose {
				output.RenderPages(os.Stdout, result.Pages)
			}
		}
		if err != nil {
			return fmt.Errorf("クロールの実行エラー: %w", err)
		}
		return nil
	},
}

func init() {
	addCrawlFlags(crawlCmd, &crawlOpts)
}
