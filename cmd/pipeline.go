package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-review-nlp/internal/pipeline"
	"github.com/shouni/go-review-nlp/pkg/output"
)

var (
	pipelineCrawlOpts crawlFlags
	pipelineCleanOpts cleanFlags
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "クロールとクリーニングを続けて実行します",
	Long:  `crawl と同じ条件でレビューを取得して生データCSVに保存し、続けて clean と同じ処理でクリーニング結果を保存します。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		opts, rawPath, err := scraperOptions(cmd, &pipelineCrawlOpts)
		if err != nil {
			return err
		}
		paths := cleanPaths(cmd, &pipelineCleanOpts)
		paths.Raw = rawPath

		extractor, err := newExtractor()
		if err != nil {
			return err
		}
		cleaner, err := newCleaner(pipelineCleanOpts.noSpell)
		if err != nil {
			return err
		}

		ctx, cancel := crawlContext(opts)
		defer cancel()

		result, cleaned, err := pipeline.Run(ctx, extractor, cleaner, opts, paths)
		if result != nil {
			output.RenderSummary(os.Stdout, result.Summary)
		}
		if err != nil {
			return fmt.Errorf("パイプラインの実行エラー: %w", err)
		}
		fmt.Printf("完了: %d 件のレビューをクリーニングしました\n", len(cleaned))
		return nil
	},
}

func init() {
	addCrawlFlags(pipelineCmd, &pipelineCrawlOpts)
	addCleanFlags(pipelineCmd, &pipelineCleanOpts, false)
}
