package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/shouni/go-review-nlp/pkg/output"
	"github.com/shouni/go-review-nlp/pkg/scraper"
	"github.com/shouni/go-review-nlp/pkg/types"
)

// ReviewCleaner は、レビュー一覧をクリーニングする機能のインターフェースです。
// *nlp.Cleaner はこのインターフェースを満たします。
type ReviewCleaner interface {
	CleanAll(ctx context.Context, reviews []types.Review) ([]types.CleanedReview, error)
}

// Paths は各出力ファイルのパスです。空のパスへの出力は行いません。
type Paths struct {
	Raw   string
	Clean string
	JSONL string
}

// CrawlReviews はクロールを実行し、取得したレビューを生CSVとして保存します。
// ページ単位のエラーはクロール結果に記録され、ここではエラーとして返しません。
func CrawlReviews(ctx context.Context, extractor scraper.ReviewExtractor, opts scraper.Options, rawPath string) (*scraper.CrawlResult, error) {
	crawler, err := scraper.NewCrawler(extractor, opts)
	if err != nil {
		return nil, fmt.Errorf("クローラーの初期化エラー: %w", err)
	}

	result, err := crawler.Crawl(ctx)
	if err != nil {
		log.Printf("警告: クロールが中断されました。取得済みの %d 件を保存します: %v", len(result.Reviews), err)
	}
	if rawPath != "" {
		if werr := SaveRaw(rawPath, result.Reviews); werr != nil {
			return result, werr
		}
	}
	return result, err
}

// SaveRaw はレビューを生CSVとして保存します。
func SaveRaw(path string, reviews []types.Review) error {
	f, err := output.CreateFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := output.WriteReviewsCSV(f, reviews); err != nil {
		return fmt.Errorf("生CSVの書き込みに失敗しました (%s): %w", path, err)
	}
	log.Printf("生データを保存しました: %s (%d 件)", path, len(reviews))
	return f.Close()
}

// LoadRaw は生CSVを読み込みます。
func LoadRaw(path string) ([]types.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("生CSVを開けません (%s): %w", path, err)
	}
	defer f.Close()

	reviews, err := output.ReadReviewsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("生CSVの読み込みに失敗しました (%s): %w", path, err)
	}
	log.Printf("生データを読み込みました: %s (%d 件)", path, len(reviews))
	return reviews, nil
}

// CleanReviews はレビューをクリーニングし、指定された形式で保存します。
func CleanReviews(ctx context.Context, cleaner ReviewCleaner, reviews []types.Review, paths Paths) ([]types.CleanedReview, error) {
	cleaned, err := cleaner.CleanAll(ctx, reviews)
	if err != nil {
		return cleaned, err
	}

	if paths.Clean != "" {
		if err := writeTo(paths.Clean, func(f *os.File) error { return output.WriteCleanedCSV(f, cleaned) }); err != nil {
			return cleaned, err
		}
		log.Printf("クリーニング済みデータを保存しました: %s", paths.Clean)
	}
	if paths.JSONL != "" {
		if err := writeTo(paths.JSONL, func(f *os.File) error { return output.WriteJSONL(f, cleaned) }); err != nil {
			return cleaned, err
		}
		log.Printf("クリーニング済みデータを保存しました: %s", paths.JSONL)
	}
	return cleaned, nil
}

// Run はクロールとクリーニングを続けて実行します。
// クロールが中断された場合も、取得済みのレビューはクリーニングせずに生CSVとして保存されます。
func Run(ctx context.Context, extractor scraper.ReviewExtractor, cleaner ReviewCleaner, opts scraper.Options, paths Paths) (*scraper.CrawlResult, []types.CleanedReview, error) {
	result, err := CrawlReviews(ctx, extractor, opts, paths.Raw)
	if err != nil {
		return result, nil, err
	}
	if len(result.Reviews) == 0 {
		log.Println("クリーニング対象のレビューがありません")
		return result, []types.CleanedReview{}, nil
	}
	cleaned, err := CleanReviews(ctx, cleaner, result.Reviews, paths)
	return result, cleaned, err
}

func writeTo(path string, write func(*os.File) error) error {
	f, err := output.CreateFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("ファイルの書き込みに失敗しました (%s): %w", path, err)
	}
	return f.Close()
}
