package nlp

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"

	"github.com/shouni/go-review-nlp/pkg/types"
)

// EntityRecognizer は、テキストから固有表現を抽出するインターフェースです。
type EntityRecognizer interface {
	Entities(text string) ([]types.Entity, error)
}

// ProseRecognizer は prose の固有表現抽出を使う EntityRecognizer です。
// 品詞タグ付けと固有表現抽出のモデルは最初の呼び出しで構築し、以降は使い回します。
type ProseRecognizer struct {
	mu    sync.Mutex
	model *prose.Model
}

// NewProseRecognizer は ProseRecognizer を返します。
func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

func (p *ProseRecognizer) Entities(text string) ([]types.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	opts := []prose.DocOpt{prose.WithSegmentation(false)}
	if p.model != nil {
		opts = append(opts, prose.UsingModel(p.model))
	}
	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		return nil, fmt.Errorf("固有表現の抽出に失敗しました: %w", err)
	}
	if p.model == nil {
		p.model = doc.Model
	}

	var out []types.Entity
	for _, ent := range doc.Entities() {
		out = append(out, types.Entity{Text: ent.Text, Label: ent.Label})
	}
	return out, nil
}

// dedupeEntities は (Text, Label) の重複を除き、最初に現れた順序を保ちます。
func dedupeEntities(entities []types.Entity) []types.Entity {
	seen := make(map[types.Entity]struct{}, len(entities))
	out := make([]types.Entity, 0, len(entities))
	for _, e := range entities {
		e.Text = strings.TrimSpace(e.Text)
		if e.Text == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
