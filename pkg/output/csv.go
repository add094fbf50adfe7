package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shouni/go-review-nlp/pkg/types"
)

// CleanedColumns は、クリーニング済みCSVで生カラムの後ろに追加するカラムです。
var CleanedColumns = []string{"verified", "clean_text", "tokens", "entities"}

// CreateFile は親ディレクトリを作成したうえでファイルを作成します。
func CreateFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("出力ディレクトリの作成に失敗しました (%s): %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("出力ファイルの作成に失敗しました (%s): %w", path, err)
	}
	return f, nil
}

// WriteReviewsCSV は、レビューをヘッダー付きのCSVとして書き出します。
func WriteReviewsCSV(w io.Writer, reviews []types.Review) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.ReviewColumns); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
	}
	for i, r := range reviews {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("CSVの %d 行目の書き込みに失敗しました: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadReviewsCSV は、ヘッダー行でカラムを対応付けてレビューを読み込みます。
// 未知のカラムや順序の違いは許容しますが、content カラムがない場合はエラーです。
func ReadReviewsCSV(r io.Reader) ([]types.Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("CSVが空です")
	}
	if err != nil {
		return nil, fmt.Errorf("CSVヘッダーの読み取りに失敗しました: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	if !contains(header, "content") {
		return nil, fmt.Errorf("CSVに content カラムがありません (ヘッダー: %v)", header)
	}

	var reviews []types.Review
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("CSVの %d 行目の読み取りに失敗しました: %w", line, err)
		}
		var rv types.Review
		for i, v := range record {
			if i < len(header) {
				rv.Set(header[i], v)
			}
		}
		reviews = append(reviews, rv)
	}
	return reviews, nil
}

// WriteCleanedCSV は、生カラムにクリーニング結果のカラムを加えたCSVを書き出します。
func WriteCleanedCSV(w io.Writer, cleaned []types.CleanedReview) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, types.ReviewColumns...), CleanedColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
	}
	for i, c := range cleaned {
		row := append(c.Review.Values(),
			strconv.FormatBool(c.Verified),
			c.CleanText,
			strings.Join(c.Tokens, " "),
			FormatEntities(c.Entities),
		)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("CSVの %d 行目の書き込みに失敗しました: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// entityEscaper は区切り文字の "|" と ";"、およびエスケープ文字の "\" の前に "\" を付けます。
var entityEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `;`, `\;`)

// FormatEntities は固有表現を "text|LABEL" の形式にして ";" で連結します。
// テキストやラベルに含まれる区切り文字はエスケープします。
func FormatEntities(entities []types.Entity) string {
	parts := make([]string, 0, len(entities))
	for _, e := range entities {
		parts = append(parts, entityEscaper.Replace(e.Text)+"|"+entityEscaper.Replace(e.Label))
	}
	return strings.Join(parts, ";")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
