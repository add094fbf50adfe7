package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/shouni/go-review-nlp/pkg/types"
)

// itemToReview はフィードのアイテムをレビューに変換します。
// 本文は content を優先し、空の場合は description から HTML を除いて取り出します。
func itemToReview(item *gofeed.Item) types.Review {
	r := types.Review{
		Title:     collapse(item.Title),
		SourceURL: item.Link,
	}
	if item.Author != nil {
		r.Author = collapse(item.Author.Name)
	} else if len(item.Authors) > 0 && item.Authors[0] != nil {
		r.Author = collapse(item.Authors[0].Name)
	}
	if item.PublishedParsed != nil {
		r.Date = item.PublishedParsed.UTC().Format("2006-01-02")
	}

	body := item.Content
	if strings.TrimSpace(body) == "" {
		body = item.Description
	}
	r.Content = stripHTML(body)
	return r
}

// stripHTML は HTML 断片からテキストのみを取り出します。
func stripHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return collapse(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}
	var parts []string
	doc.Find("body").Contents().Each(func(i int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return collapse(strings.Join(parts, " "))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
