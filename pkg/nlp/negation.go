package nlp

// NegationPrefix は否定スコープ内の語に付与する接頭辞です。
const NegationPrefix = "not_"

// DefaultNegationWindow は、否定語の後ろでタグ付けする非ストップワードの語数です。
const DefaultNegationWindow = 3

var negationCues = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "nor": {}, "cannot": {}, "without": {},
	"none": {}, "nobody": {}, "nothing": {}, "neither": {}, "nowhere": {}, "hardly": {},
}

// IsNegationCue は語が否定の手がかり語かどうかを返します。
func IsNegationCue(word string) bool {
	_, ok := negationCues[word]
	return ok
}

// TagNegation は1つの節のトークン列に否定タグを付与します。
// 否定語そのものは取り除き、その後ろの window 語 (skip が true を返す語は数えない) に
// NegationPrefix を付けます。スコープ内で再び否定語が現れた場合はスコープを開き直します。
func TagNegation(tokens []string, window int, skip func(string) bool) []string {
	if window <= 0 {
		window = DefaultNegationWindow
	}
	out := make([]string, 0, len(tokens))
	remaining := 0
	for _, tok := range tokens {
		if IsNegationCue(tok) {
			remaining = window
			continue
		}
		if remaining > 0 && (skip == nil || !skip(tok)) {
			out = append(out, NegationPrefix+tok)
			remaining--
			continue
		}
		out = append(out, tok)
	}
	return out
}
