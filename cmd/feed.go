package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/go-review-nlp/internal/pipeline"
	"github.com/shouni/go-review-nlp/pkg/feed"
)

// フィードURLと出力先を保持するフラグ変数
var (
	feedURL    string
	feedOutput string
)

// runFeedPipeline は、フィードの取得とレビューへの変換を実行するメインロジックです。
func runFeedPipeline(url string, parser *feed.Parser, overall time.Duration) (*feed.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), overall)
	defer cancel()

	res, err := parser.FetchReviews(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得およびパースエラー (URL: %s): %w", url, err)
	}
	return res, nil
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "RSS/Atomフィードからレビューを読み込み、生データCSVを保存します",
	Long:  `指定されたURLからRSSまたはAtomフィードを取得し、各アイテムをレビュー (タイトル、投稿者、日付、本文) に変換して CSV に保存します。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := completeURL(feedURL)
		if err != nil {
			return err
		}
		overall := overallTimeout(1)
		log.Printf("処理対象フィードURL: %s (全体タイムアウト: %s)", url, overall)

		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}
		parser, err := feed.NewParser(fetcher)
		if err != nil {
			return err
		}

		res, err := runFeedPipeline(url, parser, overall)
		if err != nil {
			return fmt.Errorf("フィード解析パイプラインの実行エラー: %w", err)
		}

		fmt.Printf("--- フィード解析結果 ---\n")
		fmt.Printf("フィードタイトル: %s\n", res.Title)
		fmt.Printf("アイテム数: %d, レビュー数: %d, スキップ: %d\n", res.Items, len(res.Reviews), res.Skipped)
		for i, r := range res.Reviews {
			fmt.Printf("[%d] %s (%s, %s)\n", i+1, r.Title, r.Author, r.Date)
		}
		fmt.Println("-----------------------")

		path := appConfig.RawOutput
		if cmd.Flags().Changed("output") {
			path = feedOutput
		}
		if path == "" {
			return nil
		}
		return pipeline.SaveRaw(path, res.Reviews)
	},
}

func init() {
	feedCmd.Flags().StringVarP(&feedURL, "url", "u", "", "解析対象のフィード (RSS/Atom) URL")
	feedCmd.Flags().StringVarP(&feedOutput, "output", "o", "", "生データCSVの出力先 (省略時は設定ファイルの raw_output)")
	feedCmd.MarkFlagRequired("url")
}
