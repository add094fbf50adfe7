package nlp

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shouni/go-review-nlp/pkg/types"
)

// progressInterval 件ごとに進捗をログに出力します。
const progressInterval = 50

// Config は Cleaner の設定です。
type Config struct {
	ExtraStopwords []string
	NegationWindow int
	SpellCheck     bool
}

// Cleaner はレビュー本文のクリーニングと正規化を行います。
type Cleaner struct {
	cfg        Config
	stopwords  StopwordSet
	lemmatizer Lemmatizer
	recognizer EntityRecognizer
	speller    *SpellChecker
	vocab      Vocabulary
}

// Option は Cleaner の依存関係を差し替えるための関数型です。
type Option func(*Cleaner)

func WithLemmatizer(l Lemmatizer) Option {
	return func(c *Cleaner) { c.lemmatizer = l }
}

func WithEntityRecognizer(r EntityRecognizer) Option {
	return func(c *Cleaner) { c.recognizer = r }
}

// WithVocabulary は見出し語化と綴り補正で使う語彙を指定します。
func WithVocabulary(v Vocabulary) Option {
	return func(c *Cleaner) { c.vocab = v }
}

// WithSpellChecker は綴り補正器を指定します。Config.SpellCheck が false の場合は使われません。
func WithSpellChecker(s *SpellChecker) Option {
	return func(c *Cleaner) { c.speller = s }
}

// NewCleaner は Cleaner を初期化します。
// 指定されなかった依存関係には golem の見出し語辞書、prose の固有表現抽出、埋め込み語彙とその綴り補正器を使います。
func NewCleaner(cfg Config, opts ...Option) (*Cleaner, error) {
	if cfg.NegationWindow <= 0 {
		cfg.NegationWindow = DefaultNegationWindow
	}
	c := &Cleaner{
		cfg:       cfg,
		stopwords: DefaultStopwords(cfg.ExtraStopwords...),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.lemmatizer == nil {
		l, err := NewGolemLemmatizer()
		if err != nil {
			return nil, fmt.Errorf("Cleanerの初期化エラー: %w", err)
		}
		c.lemmatizer = l
	}
	if c.vocab == nil {
		c.vocab = DefaultVocabulary()
	}
	if c.recognizer == nil {
		c.recognizer = NewProseRecognizer()
	}
	if cfg.SpellCheck && c.speller == nil {
		c.speller = NewSpellChecker(c.vocab, c.lemmatizer)
	}
	return c, nil
}

// Clean は1件のレビューをクリーニングします。この処理は失敗しません。
// 固有表現抽出のエラーはログに記録し、固有表現なしとして扱います。
func (c *Cleaner) Clean(r types.Review) types.CleanedReview {
	out := types.CleanedReview{Review: r, Tokens: []string{}, Entities: []types.Entity{}}

	text, verified := StripVerifiedPrefix(r.Content)
	out.Verified = verified
	text = NormalizeUnicode(text)

	entities, err := c.recognizer.Entities(text)
	if err != nil {
		log.Printf("警告: 固有表現の抽出に失敗しました (タイトル: %s): %v", r.Title, err)
	} else {
		out.Entities = dedupeEntities(entities)
	}
	protected := entityWords(out.Entities)
	for w := range capitalizedWords(text) {
		protected[w] = struct{}{}
	}

	text = ExpandContractions(strings.ToLower(text))

	for _, clause := range SplitClauses(text) {
		if c.cfg.SpellCheck && c.speller != nil {
			for i, tok := range clause {
				if _, ok := protected[tok]; !ok {
					clause[i] = c.speller.Correct(tok)
				}
			}
		}
		clause = TagNegation(clause, c.cfg.NegationWindow, c.stopwords.Contains)
		for _, tok := range clause {
			// 表層形と見出し語のどちらかがストップワードなら除外する
			if c.drop(tok) {
				continue
			}
			tok = lemmatizeToken(c.lemmatizer, c.vocab, tok)
			if c.drop(tok) {
				continue
			}
			out.Tokens = append(out.Tokens, tok)
		}
	}
	out.CleanText = strings.Join(out.Tokens, " ")
	return out
}

// drop は、ストップワードおよび1文字の語を除外対象と判定します。否定タグ付きの語は残します。
func (c *Cleaner) drop(tok string) bool {
	if strings.HasPrefix(tok, NegationPrefix) {
		return false
	}
	return utf8.RuneCountInString(tok) <= 1 || c.stopwords.Contains(tok)
}

// CleanAll は全レビューを入力順にクリーニングします。
// コンテキストがキャンセルされた場合は、それまでの結果とエラーを返します。
func (c *Cleaner) CleanAll(ctx context.Context, reviews []types.Review) ([]types.CleanedReview, error) {
	out := make([]types.CleanedReview, 0, len(reviews))
	for i, r := range reviews {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("クリーニングが中断されました (%d/%d 件処理済み): %w", i, len(reviews), err)
		}
		out = append(out, c.Clean(r))
		if (i+1)%progressInterval == 0 {
			log.Printf("クリーニング進捗: %d/%d 件", i+1, len(reviews))
		}
	}
	log.Printf("クリーニング完了: %d 件", len(out))
	return out, nil
}

// capitalizedWords は、大文字で始まる語 (固有名詞の可能性が高い語) を小文字にした集合を返します。
func capitalizedWords(text string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, w := range strings.Fields(punctRe.ReplaceAllString(text, " ")) {
		if r, _ := utf8.DecodeRuneInString(w); unicode.IsUpper(r) {
			words[strings.ToLower(w)] = struct{}{}
		}
	}
	return words
}

func entityWords(entities []types.Entity) map[string]struct{} {
	words := map[string]struct{}{}
	for _, e := range entities {
		for _, w := range strings.Fields(punctRe.ReplaceAllString(strings.ToLower(e.Text), " ")) {
			words[w] = struct{}{}
		}
	}
	return words
}
