package cmd

import (
	"fmt"
	"net/url"
	"strings"
)

// reviewPathPrefix はレビュー一覧ページのパスの接頭辞です。
const reviewPathPrefix = "/airline-reviews/"

// completeURL は前後の空白を除き、スキームがなければ https:// を補います。
// http と https 以外のスキーム、およびホストのないURLはエラーです。
func completeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("URLが空です")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("URLのパースエラー: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("無効なURLスキームです。httpまたはhttpsを指定してください: %s", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URLにホストがありません: %s", raw)
	}
	return u.String(), nil
}

// reviewListURL は、URLが base_url と同じサイトのレビュー一覧ページを指しているか検証します。
// "www." の有無は区別しません。
func reviewListURL(raw, baseURL string) (string, error) {
	full, err := completeURL(raw)
	if err != nil {
		return "", err
	}
	base, err := completeURL(baseURL)
	if err != nil {
		return "", fmt.Errorf("base_url が不正です: %w", err)
	}
	u, _ := url.Parse(full)
	b, _ := url.Parse(base)
	if siteHost(u) != siteHost(b) {
		return "", fmt.Errorf("レビューサイト (%s) 以外のURLは処理できません: %s", b.Hostname(), full)
	}
	if !strings.HasPrefix(u.Path, reviewPathPrefix) {
		return "", fmt.Errorf("レビュー一覧ページのURLではありません (パスは %s で始まる必要があります): %s", reviewPathPrefix, full)
	}
	return full, nil
}

func siteHost(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
