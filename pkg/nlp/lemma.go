package nlp

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Dictionary は、語が既知かどうかを判定します。
type Dictionary interface {
	InDict(word string) bool
}

// Lemmatizer は語を見出し語に変換します。
// *golem.Lemmatizer はこのインターフェースを満たします。
type Lemmatizer interface {
	Dictionary
	Lemma(word string) string
	Lemmas(word string) []string
}

// NewGolemLemmatizer は golem の英語辞書を読み込んだ Lemmatizer を返します。
func NewGolemLemmatizer() (Lemmatizer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("見出し語辞書の読み込みに失敗しました: %w", err)
	}
	return l, nil
}

// lemmatizeToken は否定接頭辞を保ったまま基底語を見出し語化します。
func lemmatizeToken(l Lemmatizer, vocab Vocabulary, token string) string {
	prefix := ""
	word := token
	if strings.HasPrefix(token, NegationPrefix) {
		prefix = NegationPrefix
		word = strings.TrimPrefix(token, NegationPrefix)
	}
	return prefix + lemmaOf(l, vocab, word)
}

// lemmaOf は語の見出し語を返します。
// 語自身が見出し語の候補に含まれる場合 (例: "crew" と "crow" の過去形) はそのまま残します。
// 語彙にある語が語彙外の見出し語に変わる場合も、語を優先します。
func lemmaOf(l Lemmatizer, vocab Vocabulary, word string) string {
	for _, cand := range l.Lemmas(word) {
		if strings.EqualFold(cand, word) {
			return word
		}
	}
	lemma := strings.ToLower(l.Lemma(word))
	if lemma == "" {
		return word
	}
	if lemma != word && vocab != nil {
		_, wordKnown := vocab[word]
		_, lemmaKnown := vocab[lemma]
		if wordKnown && !lemmaKnown {
			return word
		}
	}
	return lemma
}
