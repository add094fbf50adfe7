package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mmcdole/gofeed"

	"github.com/shouni/go-review-nlp/pkg/types"
)

// Fetcher は Parser がフィード本文の取得に使うインターフェースです。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Result はフィード1件から読み込んだレビューです。
type Result struct {
	Title   string
	Items   int
	Skipped int
	Reviews []types.Review
}

// Parser は RSS/Atom フィードを取得し、アイテムをレビューに変換します。
type Parser struct {
	client Fetcher
}

// NewParser は Parser を初期化します。
func NewParser(client Fetcher) (*Parser, error) {
	if client == nil {
		return nil, errors.New("フィードの取得に使うHTTPクライアントが指定されていません")
	}
	return &Parser{client: client}, nil
}

// FetchReviews は指定URLのフィードを取得し、レビューとして読み込みます。
// 本文が空のアイテムと、リンクが重複するアイテムはスキップします。
func (p *Parser) FetchReviews(ctx context.Context, feedURL string) (*Result, error) {
	body, err := p.client.FetchBytes(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得失敗 (URL: %s): %w", feedURL, err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("RSSフィードのパース失敗 (URL: %s): %w", feedURL, err)
	}

	res := &Result{Title: collapse(parsed.Title), Items: len(parsed.Items), Reviews: []types.Review{}}
	seen := map[string]struct{}{}
	for i, item := range parsed.Items {
		if item == nil {
			res.Skipped++
			continue
		}
		r := itemToReview(item)
		if r.Content == "" {
			log.Printf("本文が空のアイテムをスキップしました (%d件目, タイトル: %s)", i+1, r.Title)
			res.Skipped++
			continue
		}
		if r.SourceURL != "" {
			if _, dup := seen[r.SourceURL]; dup {
				log.Printf("重複したアイテムをスキップしました (URL: %s)", r.SourceURL)
				res.Skipped++
				continue
			}
			seen[r.SourceURL] = struct{}{}
		}
		res.Reviews = append(res.Reviews, r)
	}
	return res, nil
}
