package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL は、レビュー集約サイトのベースURLです。
	DefaultBaseURL = "https://www.airlinequality.com"
	// DefaultAirline は、クロール対象の航空会社スラッグです。
	DefaultAirline = "british-airways"
)

var pageNumberPattern = regexp.MustCompile(`/page/(\d+)/`)

// PageURL は、航空会社のレビュー一覧ページのURLを生成します。
func PageURL(baseURL, airline string, page int) string {
	return fmt.Sprintf("%s/airline-reviews/%s/page/%d/", strings.TrimRight(baseURL, "/"), airline, page)
}

// PageNumber は、URLの "/page/<n>/" からページ番号を取り出します。見つからない場合は 1 を返します。
func PageNumber(url string) int {
	m := pageNumberPattern.FindStringSubmatch(url)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
