package output

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/shouni/go-review-nlp/pkg/types"
)

// RenderSummary は、クロール結果の集計を表形式で出力します。
func RenderSummary(w io.Writer, summary types.CrawlSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"項目", "値"})
	t.AppendRows([]table.Row{
		{"取得ページ数", summary.Pages},
		{"失敗ページ数", summary.Failed},
		{"レビュー件数", summary.Reviews},
		{"終了理由", string(summary.StopReason)},
	})
	t.Render()
}

// RenderPages は、ページごとの取得結果を表形式で出力します。
func RenderPages(w io.Writer, pages []types.PageResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "ページ", "件数", "URL", "エラー"})
	for i, p := range pages {
		errText := ""
		if p.Error != nil {
			errText = p.Error.Error()
		}
		t.AppendRow(table.Row{i + 1, p.Page, len(p.Reviews), p.URL, errText})
	}
	t.Render()
}
