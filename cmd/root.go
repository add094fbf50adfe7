package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/shouni/go-review-nlp/internal/config"
	"github.com/shouni/go-review-nlp/pkg/nlp"
	"github.com/shouni/go-review-nlp/pkg/review"
)

// --- グローバル定数 ---

const (
	appName = "review-nlp"

	// 全体処理のタイムアウトは、クライアントタイムアウトにこの係数を掛けて決める
	overallTimeoutFactor = 2
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec int    // --timeout タイムアウト
	MaxRetries int    // --max-retries リトライ回数
	ConfigFile string // --config 設定ファイル
	LogFile    string // --log-file ログの出力先ファイル
}

var (
	Flags         AppFlags
	appConfig     config.Config
	globalFetcher review.Fetcher
)

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	defaults := config.Default()
	rootCmd.PersistentFlags().IntVar(&Flags.TimeoutSec, "timeout", defaults.TimeoutSec, "HTTPリクエストのタイムアウト時間（秒）")
	rootCmd.PersistentFlags().IntVar(&Flags.MaxRetries, "max-retries", defaults.MaxRetries, "HTTPリクエストのリトライ最大回数")
	rootCmd.PersistentFlags().StringVar(&Flags.ConfigFile, "config", config.DefaultFile, "設定ファイル (JSON5)。<name>.local.<ext> があれば上書きとしてマージします")
	rootCmd.PersistentFlags().StringVar(&Flags.LogFile, "log-file", "", "ログを標準エラー出力に加えて書き出すファイル")
}

// ログファイルのローテーション条件
const (
	logMaxSizeMB  = 5
	logMaxAgeDays = 10
)

// logFileWriter は 5MB ごとにローテーションし、10日より古いファイルを削除するログ出力先を返します。
func logFileWriter(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:  path,
		MaxSize:   logMaxSizeMB,
		MaxAge:    logMaxAgeDays,
		LocalTime: true,
	}
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	if Flags.LogFile != "" {
		w := logFileWriter(Flags.LogFile)
		if _, err := w.Write(nil); err != nil {
			return fmt.Errorf("ログファイルを開けません (%s): %w", Flags.LogFile, err)
		}
		log.SetOutput(io.MultiWriter(os.Stderr, w))
	}

	cfg, err := config.Load(Flags.ConfigFile)
	if err != nil {
		return fmt.Errorf("設定の読み込みエラー: %w", err)
	}
	// フラグは明示的に指定された場合のみ設定ファイルの値を上書きする
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSec = Flags.TimeoutSec
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.MaxRetries = Flags.MaxRetries
	}
	appConfig = cfg

	timeout := clientTimeout()
	if clibase.Flags.Verbose {
		log.Printf("HTTPクライアントのタイムアウトを設定しました (Timeout: %s)。", timeout)
		log.Printf("HTTPクライアントのリトライ回数を設定しました (MaxRetries: %d)。", appConfig.MaxRetries)
	}

	// 共有フェッチャーの初期化
	globalFetcher = httpkit.New(
		timeout,
		httpkit.WithMaxRetries(uint64(appConfig.MaxRetries)),
	)
	return nil
}

// GetGlobalFetcher は、初期化されたフェッチャーを返す関数 (DIの代わり)
func GetGlobalFetcher() review.Fetcher {
	return globalFetcher
}

func clientTimeout() time.Duration {
	if appConfig.TimeoutSec <= 0 {
		return time.Duration(config.Default().TimeoutSec) * time.Second
	}
	return time.Duration(appConfig.TimeoutSec) * time.Second
}

// overallTimeout は、pages ページ分の処理全体に許容する時間を返します。
func overallTimeout(pages int) time.Duration {
	if pages < 1 {
		pages = 1
	}
	perPage := clientTimeout()*overallTimeoutFactor + time.Duration(appConfig.RateLimitMs)*time.Millisecond
	return time.Duration(pages) * perPage
}

// cleanerConfig は設定からクリーナーの設定を組み立てます。noSpell は設定ファイルの spell_check より優先します。
func cleanerConfig(noSpell bool) nlp.Config {
	return nlp.Config{
		ExtraStopwords: appConfig.ExtraStopwords,
		NegationWindow: appConfig.NegationWindow,
		SpellCheck:     appConfig.SpellCheckEnabled() && !noSpell,
	}
}

// newCleaner は設定からテキストクリーナーを生成します。
func newCleaner(noSpell bool) (*nlp.Cleaner, error) {
	return nlp.NewCleaner(cleanerConfig(noSpell))
}

// --- エントリポイント ---

// Execute は、clibase を使用してアプリケーションの初期化、フラグ設定、サブコマンドの登録を一括で行います。
func Execute() {
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		crawlCmd,
		scraperCmd,
		feedCmd,
		cleanCmd,
		pipelineCmd,
	)
}
