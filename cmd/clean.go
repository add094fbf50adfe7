package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/shouni/go-review-nlp/internal/pipeline"
)

// クリーニング系コマンド (clean, pipeline) 共通のフラグ
type cleanFlags struct {
	input       string
	cleanOutput string
	jsonlOutput string
	noSpell     bool
}

var cleanOpts cleanFlags

func addCleanFlags(cmd *cobra.Command, f *cleanFlags, withInput bool) {
	if withInput {
		cmd.Flags().StringVarP(&f.input, "input", "i", "", "入力する生データCSV (省略時は設定ファイルの raw_output)")
	}
	cmd.Flags().StringVar(&f.cleanOutput, "clean-output", "", "クリーニング済みCSVの出力先 (省略時は設定ファイルの clean_output)")
	cmd.Flags().StringVar(&f.jsonlOutput, "jsonl-output", "", "クリーニング済みJSONLの出力先 (省略時は設定ファイルの jsonl_output)")
	cmd.Flags().BoolVar(&f.noSpell, "no-spell", false, "綴り補正を無効にする")
}

// cleanPaths は設定ファイルの値に、明示的に指定されたフラグを重ねた出力先を返します。
func cleanPaths(cmd *cobra.Command, f *cleanFlags) pipeline.Paths {
	paths := pipeline.Paths{Raw: appConfig.RawOutput, Clean: appConfig.CleanOutput, JSONL: appConfig.JSONLOutput}
	changed := cmd.Flags().Changed
	if changed("input") {
		paths.Raw = f.input
	}
	if changed("clean-output") {
		paths.Clean = f.cleanOutput
	}
	if changed("jsonl-output") {
		paths.JSONL = f.jsonlOutput
	}
	return paths
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "生データCSVのレビュー本文をクリーニングし、結果を保存します",
	Long:  `生データCSVを読み込み、各レビュー本文に対して小文字化、記号除去、綴り補正、否定タグ付け、見出し語化、ストップワード除去、固有表現抽出を行い、CSV および JSONL に保存します。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		paths := cleanPaths(cmd, &cleanOpts)
		if paths.Clean == "" && paths.JSONL == "" {
			return fmt.Errorf("出力先が指定されていません (--clean-output または --jsonl-output)")
		}

		reviews, err := pipeline.LoadRaw(paths.Raw)
		if err != nil {
			return err
		}
		cleaner, err := newCleaner(cleanOpts.noSpell)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		cleaned, err := pipeline.CleanReviews(ctx, cleaner, reviews, paths)
		if err != nil {
			return fmt.Errorf("クリーニングの実行エラー: %w", err)
		}
		fmt.Printf("完了: %d 件のレビューをクリーニングしました\n", len(cleaned))
		return nil
	},
}

func init() {
	addCleanFlags(cleanCmd, &cleanOpts, true)
}
