package nlp

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/antzucaro/matchr"
	"github.com/patrickmn/go-cache"
)

//go:embed vocabulary.txt
var vocabularyText string

const (
	// MinSpellLength 未満の長さの語は綴り補正の対象外です。
	MinSpellLength = 4
	// MaxEditDistance は補正候補として許容する最大編集距離です。
	MaxEditDistance = 2
	// MinSimilarity 未満の Jaro-Winkler 類似度の候補は採用しません。
	MinSimilarity = 0.85
)

// Vocabulary は語と出現頻度の対応表です。
type Vocabulary map[string]int

// LoadVocabulary は "語 頻度" 形式の行を読み込みます。頻度を省略した行は 1 として扱います。
func LoadVocabulary(r io.Reader) (Vocabulary, error) {
	vocab := Vocabulary{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		count := 1
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("語彙ファイルの %d 行目の頻度が不正です: %w", line, err)
			}
			count = n
		}
		vocab[strings.ToLower(fields[0])] += count
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("語彙ファイルの読み取りエラー: %w", err)
	}
	return vocab, nil
}

// DefaultVocabulary は埋め込みの語彙を返します。
func DefaultVocabulary() Vocabulary {
	vocab, err := LoadVocabulary(strings.NewReader(vocabularyText))
	if err != nil {
		// 埋め込みファイルが壊れている場合はビルドの不備
		panic(err)
	}
	return vocab
}

// SpellChecker は語彙に基づいて未知語の綴りを補正します。
// 補正結果は go-cache にメモ化されるため、複数のゴルーチンから安全に利用できます。
type SpellChecker struct {
	vocab Vocabulary
	dict  Dictionary
	memo  *cache.Cache
}

// NewSpellChecker は SpellChecker を初期化します。dict は nil でも構いません。
func NewSpellChecker(vocab Vocabulary, dict Dictionary) *SpellChecker {
	if vocab == nil {
		vocab = Vocabulary{}
	}
	return &SpellChecker{
		vocab: vocab,
		dict:  dict,
		memo:  cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

// Known は語が語彙または辞書に含まれるかどうかを返します。
func (s *SpellChecker) Known(word string) bool {
	if _, ok := s.vocab[word]; ok {
		return true
	}
	return s.dict != nil && s.dict.InDict(word)
}

// Correct は未知語を最も近い語彙の語に置き換えます。
// 対象外の語や候補が見つからない語はそのまま返します。
func (s *SpellChecker) Correct(word string) string {
	if !eligible(word) || s.Known(word) {
		return word
	}
	if v, ok := s.memo.Get(word); ok {
		return v.(string)
	}
	corrected := s.bestCandidate(word)
	s.memo.Set(word, corrected, cache.NoExpiration)
	return corrected
}

// bestCandidate は先頭文字が同じ語の中から Damerau-Levenshtein 距離が最小の語を選びます。
// 同距離の場合は頻度、次に Jaro-Winkler 類似度、最後に辞書順で決めます。
func (s *SpellChecker) bestCandidate(word string) string {
	best := word
	bestDist := MaxEditDistance + 1
	bestFreq := -1
	bestSim := -1.0
	runes := []rune(word)

	for cand, freq := range s.vocab {
		candRunes := []rune(cand)
		if len(candRunes) == 0 || candRunes[0] != runes[0] {
			continue
		}
		diff := len(candRunes) - len(runes)
		if diff > MaxEditDistance || -diff > MaxEditDistance {
			continue
		}
		dist := matchr.DamerauLevenshtein(word, cand)
		if dist > MaxEditDistance || dist > bestDist {
			continue
		}
		sim := matchr.JaroWinkler(word, cand, false)
		if sim < MinSimilarity {
			continue
		}
		better := dist < bestDist ||
			freq > bestFreq ||
			(freq == bestFreq && sim > bestSim) ||
			(freq == bestFreq && sim == bestSim && cand < best)
		if better {
			best, bestDist, bestFreq, bestSim = cand, dist, freq, sim
		}
	}
	return best
}

func eligible(word string) bool {
	if len([]rune(word)) < MinSpellLength {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
