package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shouni/go-review-nlp/pkg/types"
)

// WriteJSONL は、クリーニング済みレビューを1行1オブジェクトのJSONで書き出します。
func WriteJSONL(w io.Writer, cleaned []types.CleanedReview) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, c := range cleaned {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("JSONLの %d 行目の書き込みに失敗しました: %w", i+1, err)
		}
	}
	return nil
}
