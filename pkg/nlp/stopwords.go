package nlp

import (
	_ "embed"
	"strings"
)

//go:embed stopwords.txt
var stopwordsText string

// DomainStopwords は、レビュー対象の航空会社に関する語で、分析上ノイズとなるものです。
var DomainStopwords = []string{"airline", "flight", "british", "airways", "ba", "plane"}

// StopwordSet はストップワードの集合です。
type StopwordSet map[string]struct{}

// DefaultStopwords は、英語の標準ストップワードにドメイン固有語と extra を加えた集合を返します。
// 否定の手がかり語は否定タグ付けで消費されるため、集合から除外します。
func DefaultStopwords(extra ...string) StopwordSet {
	set := StopwordSet{}
	for _, w := range strings.Fields(stopwordsText) {
		set.Add(w)
	}
	for _, w := range DomainStopwords {
		set.Add(w)
	}
	for _, w := range extra {
		set.Add(w)
	}
	for cue := range negationCues {
		delete(set, cue)
	}
	return set
}

// Add は語を小文字化して追加します。
func (s StopwordSet) Add(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word != "" {
		s[word] = struct{}{}
	}
}

func (s StopwordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}
