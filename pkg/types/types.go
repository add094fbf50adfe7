package types

// Review は、レビュー一覧ページの1件のレビュー記事から抽出したフィールドを保持します。
// フィールド名は出力CSVのカラムキーと対応します。
type Review struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Date            string `json:"date"` // datePublished (YYYY-MM-DD)
	Content         string `json:"content"`
	TypeOfTraveller string `json:"type_of_traveller"`
	SeatType        string `json:"seat_type"`
	Route           string `json:"route"`
	DateFlown       string `json:"date_flown"`
	Rating          string `json:"rating"`
	Recommended     string `json:"recommended"`

	// 以下はCSVに出力しないメタデータ
	SourceURL string `json:"-"`
	Page      int    `json:"-"`
}

// ReviewColumns は、Review のCSVカラムキーを出力順に定義します。
var ReviewColumns = []string{
	"title",
	"author",
	"date",
	"content",
	"type_of_traveller",
	"seat_type",
	"route",
	"date_flown",
	"rating",
	"recommended",
}

// Values は、ReviewColumns と同じ順序でフィールド値を返します。
func (r Review) Values() []string {
	return []string{
		r.Title,
		r.Author,
		r.Date,
		r.Content,
		r.TypeOfTraveller,
		r.SeatType,
		r.Route,
		r.DateFlown,
		r.Rating,
		r.Recommended,
	}
}

// Set は、カラムキーに対応するフィールドへ値を設定します。未知のキーは無視し false を返します。
func (r *Review) Set(column, value string) bool {
	switch column {
	case "title":
		r.Title = value
	case "author":
		r.Author = value
	case "date":
		r.Date = value
	case "content":
		r.Content = value
	case "type_of_traveller":
		r.TypeOfTraveller = value
	case "seat_type":
		r.SeatType = value
	case "route":
		r.Route = value
	case "date_flown":
		r.DateFlown = value
	case "rating":
		r.Rating = value
	case "recommended":
		r.Recommended = value
	default:
		return false
	}
	return true
}

// MissingFields は、値が空のフィールドのカラムキーをカラム順で返します。
func (r Review) MissingFields() []string {
	var missing []string
	for i, v := range r.Values() {
		if v == "" {
			missing = append(missing, ReviewColumns[i])
		}
	}
	return missing
}

// Entity は、レビュー本文から抽出された固有表現です。
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// CleanedReview は、テキストクリーニング後のレビューです。
type CleanedReview struct {
	Review
	Verified  bool     `json:"verified"`
	CleanText string   `json:"clean_text"`
	Tokens    []string `json:"tokens"`
	Entities  []Entity `json:"entities"`
}

// PageResult は、特定のレビュー一覧ページから抽出された結果、またはその処理中に発生したエラーを保持します。
// これは、Scraper/Crawler の出力、Cleaner の入力として利用されます。
type PageResult struct {
	URL     string   // 処理対象のURL
	Page    int      // ページ番号 (URLから判定できない場合は 1)
	Reviews []Review // 抽出されたレビュー
	Error   error    // 処理中に発生したエラー
}

// StopReason は、クロールが終了した理由です。
type StopReason string

const (
	StopMaxPages  StopReason = "max_pages"
	StopEmpty     StopReason = "empty"
	StopError     StopReason = "error"
	StopCancelled StopReason = "cancelled"
)

// CrawlSummary は、クロール結果の集計です。
type CrawlSummary struct {
	Pages      int
	Reviews    int
	Failed     int
	StopReason StopReason
}
