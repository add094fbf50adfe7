package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/go-review-nlp/internal/pipeline"
	"github.com/shouni/go-review-nlp/pkg/scraper"
	"github.com/shouni/go-review-nlp/pkg/types"
)

// コマンドラインフラグ変数を定義
var (
	inputURLs         string // --urls フラグで受け取るカンマ区切りのURLリスト
	scraperConcurrent int    // --concurrency フラグで受け取る並列実行数
	scraperOutput     string // --output フラグで受け取る生データCSVの出力先
)

// runScrapePipeline は、並列スクレイピングを実行するメインロジックです。
func runScrapePipeline(urls []string, extractor scraper.ReviewExtractor, concurrency int) []types.PageResult {
	// 1. Scraperの初期化 (NewParallelScraper を利用)
	rate := time.Duration(appConfig.RateLimitMs) * time.Millisecond
	ps := scraper.NewParallelScraper(extractor, concurrency, scraper.WithRateLimit(rate))

	// 2. 全体処理のコンテキストを設定
	timeout := overallTimeout(len(urls))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Printf("並列スクレイピング開始 (対象URL数: %d, 最大同時実行数: %d, 全体タイムアウト: %s)\n",
		len(urls), concurrency, timeout)

	// 3. メインロジックの実行
	results := ps.ScrapeInParallel(ctx, urls)

	// 4. 結果の出力
	fmt.Println("--- 並列スクレイピング結果 ---")
	successCount := 0
	reviewCount := 0
	for i, res := range results {
		if res.Error != nil {
			fmt.Printf("❌ [%d] %s\n", i+1, res.URL)
			fmt.Printf("     エラー: %v\n", res.Error)
			continue
		}
		successCount++
		reviewCount += len(res.Reviews)
		fmt.Printf("✅ [%d] %s\n", i+1, res.URL)
		fmt.Printf("     レビュー件数: %d 件\n", len(res.Reviews))
		if len(res.Reviews) > 0 {
			fmt.Printf("     先頭のレビュー: %s (%s)\n", res.Reviews[0].Title, res.Reviews[0].Author)
		}
	}
	fmt.Println("-------------------------------")
	fmt.Printf("完了: 成功 %d 件, 失敗 %d 件, レビュー合計 %d 件\n", successCount, len(results)-successCount, reviewCount)

	if err := scraper.Errors(results); err != nil {
		log.Printf("失敗したURLがあります: %v", err)
	}
	return results
}

// collectReviews は成功したページのレビューを入力順に連結します。
func collectReviews(results []types.PageResult) []types.Review {
	var reviews []types.Review
	for _, res := range results {
		if res.Error == nil {
			reviews = append(reviews, res.Reviews...)
		}
	}
	return reviews
}

// readURLs は --urls フラグ、または標準入力から処理対象URLを読み込みます。
// レビューサイトの一覧ページ以外のURLが含まれる場合はエラーを返します。
func readURLs() ([]string, error) {
	var raw []string
	if inputURLs != "" {
		raw = strings.Split(inputURLs, ",")
	} else {
		log.Println("URLが指定されていないため、標準入力からURLを読み込みます (Ctrl+DまたはEOFで終了)...")
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			raw = append(raw, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("標準入力の読み取りエラー: %w", err)
		}
	}

	var urls []string
	for _, u := range raw {
		if strings.TrimSpace(u) == "" {
			continue
		}
		full, err := reviewListURL(u, appConfig.BaseURL)
		if err != nil {
			return nil, err
		}
		urls = append(urls, full)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("処理対象のURLが一つも指定されていません")
	}
	return urls, nil
}

var scraperCmd = &cobra.Command{
	Use:   "scraper",
	Short: "複数のレビュー一覧ページを並列で処理し、レビューを抽出します",
	Long:  `--urls フラグでカンマ区切りのURLリストを受け取るか、標準入力からURLを一行ずつ読み込み、指定された最大同時実行数で並列抽出を実行します。成功したページのレビューは生データCSVに保存されます。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		extractor, err := newExtractor()
		if err != nil {
			return err
		}
		urls, err := readURLs()
		if err != nil {
			return err
		}

		concurrency := scraperConcurrent
		if !cmd.Flags().Changed("concurrency") && appConfig.Concurrency > 1 {
			concurrency = appConfig.Concurrency
		}
		results := runScrapePipeline(urls, extractor, concurrency)

		path := appConfig.RawOutput
		if cmd.Flags().Changed("output") {
			path = scraperOutput
		}
		if path == "" {
			return nil
		}
		return pipeline.SaveRaw(path, collectReviews(results))
	},
}

func init() {
	scraperCmd.Flags().StringVarP(&inputURLs, "urls", "u", "",
		"抽出対象のカンマ区切りURLリスト (例: url1,url2,url3)")
	scraperCmd.Flags().IntVarP(&scraperConcurrent, "concurrency", "c",
		scraper.DefaultMaxConcurrency,
		fmt.Sprintf("最大並列実行数 (デフォルト: %d)", scraper.DefaultMaxConcurrency))
	scraperCmd.Flags().StringVarP(&scraperOutput, "output", "o", "", "生データCSVの出力先 (省略時は設定ファイルの raw_output)")
}
