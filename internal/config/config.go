package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// DefaultFile は、--config 未指定時に読み込む設定ファイルです。
const DefaultFile = "config.json5"

// Config はアプリケーション全体の設定です。
// 設定ファイルでゼロ値を指定した項目はデフォルト値を上書きしません。
type Config struct {
	BaseURL     string `json:"base_url"`
	Airline     string `json:"airline"`
	StartPage   int    `json:"start_page"`
	MaxPages    int    `json:"max_pages"`
	RateLimitMs int    `json:"rate_limit_ms"`
	Concurrency int    `json:"concurrency"`
	TimeoutSec  int    `json:"timeout_sec"`
	MaxRetries  int    `json:"max_retries"`

	RawOutput   string `json:"raw_output"`
	CleanOutput string `json:"clean_output"`
	JSONLOutput string `json:"jsonl_output"`

	ExtraStopwords []string `json:"extra_stopwords"`
	NegationWindow int      `json:"negation_window"`
	SpellCheck     *bool    `json:"spell_check"`
}

// Default はデフォルト設定を返します。
func Default() Config {
	spell := true
	return Config{
		BaseURL:        "https://www.airlinequality.com",
		Airline:        "british-airways",
		StartPage:      1,
		MaxPages:       10,
		RateLimitMs:    1000,
		Concurrency:    1,
		TimeoutSec:     10,
		MaxRetries:     5,
		RawOutput:      "data/raw/british_airways_raw_reviews.csv",
		CleanOutput:    "data/processed/british_airways_clean_reviews.csv",
		JSONLOutput:    "",
		NegationWindow: 3,
		SpellCheck:     &spell,
	}
}

// SpellCheckEnabled は綴り補正が有効かどうかを返します。
func (c Config) SpellCheckEnabled() bool {
	return c.SpellCheck == nil || *c.SpellCheck
}

// Load はデフォルト設定に <name>.<ext> と <name>.local.<ext> を順に重ねた設定を返します。
// どちらのファイルも存在しない場合はデフォルト設定をそのまま返します。
func Load(name string) (Config, error) {
	cfg := Default()
	if name == "" {
		return cfg, nil
	}

	for _, path := range []string{name, localPath(name)} {
		override, found, err := readFile(path)
		if err != nil {
			return cfg, err
		}
		if !found {
			continue
		}
		if err := mergo.Merge(&cfg, override, mergo.WithOverride); err != nil {
			return cfg, fmt.Errorf("設定のマージに失敗しました (%s): %w", path, err)
		}
		log.Printf("設定ファイルを読み込みました: %s", path)
	}
	return cfg, nil
}

func readFile(path string) (Config, bool, error) {
	var out Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return out, false, nil
	}
	if err != nil {
		return out, false, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, false, nil
	}
	if err := json5.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("設定ファイルの解析に失敗しました (%s): %w", path, err)
	}
	return out, true, nil
}

// localPath は config.json5 に対する config.local.json5 のパスを返します。
func localPath(name string) string {
	dir, base := filepath.Split(name)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+".local"+ext)
}
