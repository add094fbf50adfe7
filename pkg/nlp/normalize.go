package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	verifiedPrefixRe = regexp.MustCompile(`(?i)^\s*(?:✅\s*)?(trip verified|not verified|verified review)\s*\|\s*`)
	urlRe            = regexp.MustCompile(`https?://\S+|www\.\S+`)
	clauseRe         = regexp.MustCompile(`[.,;:!?]+`)
	punctRe          = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

	irregularNegRe = regexp.MustCompile(`\b(won't|can't|shan't)\b`)
	ntRe           = regexp.MustCompile(`n't\b`)
	suffixRe       = regexp.MustCompile(`'(re|ve|ll|d|m)\b`)
	possessiveRe   = regexp.MustCompile(`'s\b`)
)

var irregularNegations = map[string]string{
	"won't":  "will not",
	"can't":  "can not",
	"shan't": "shall not",
}

var contractionSuffixes = map[string]string{
	"re": " are",
	"ve": " have",
	"ll": " will",
	"d":  " would",
	"m":  " am",
}

// アポストロフィを落として書かれた否定形
var bareNegations = map[string][]string{
	"dont":     {"do", "not"},
	"doesnt":   {"does", "not"},
	"didnt":    {"did", "not"},
	"cant":     {"can", "not"},
	"couldnt":  {"could", "not"},
	"wont":     {"will", "not"},
	"wouldnt":  {"would", "not"},
	"shouldnt": {"should", "not"},
	"isnt":     {"is", "not"},
	"arent":    {"are", "not"},
	"wasnt":    {"was", "not"},
	"werent":   {"were", "not"},
	"hasnt":    {"has", "not"},
	"havent":   {"have", "not"},
	"hadnt":    {"had", "not"},
	"aint":     {"is", "not"},
}

// StripVerifiedPrefix は本文先頭の "Trip Verified |" 等の検証ラベルを取り除きます。
// ラベルが "Trip Verified" または "Verified Review" の場合は verified が true になります。
func StripVerifiedPrefix(text string) (rest string, verified bool) {
	m := verifiedPrefixRe.FindStringSubmatch(text)
	if m == nil {
		return text, false
	}
	label := strings.ToLower(m[1])
	return text[len(m[0]):], label != "not verified"
}

// NormalizeUnicode は互換分解して結合文字を取り除き、空白をまとめます。
func NormalizeUnicode(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	out = strings.NewReplacer("’", "'", "‘", "'", "`", "'", "´", "'").Replace(out)
	return strings.Join(strings.Fields(out), " ")
}

// ExpandContractions は小文字化済みテキストの短縮形を展開します。
func ExpandContractions(text string) string {
	text = irregularNegRe.ReplaceAllStringFunc(text, func(m string) string {
		return irregularNegations[m]
	})
	text = ntRe.ReplaceAllString(text, " not")
	text = suffixRe.ReplaceAllStringFunc(text, func(m string) string {
		return contractionSuffixes[m[1:]]
	})
	return possessiveRe.ReplaceAllString(text, "")
}

// SplitClauses は URL を除去したうえで句読点で節に分割し、各節を語に分解します。
// 節内の記号はすべて空白として扱います。
func SplitClauses(text string) [][]string {
	text = urlRe.ReplaceAllString(text, " ")
	var clauses [][]string
	for _, part := range clauseRe.Split(text, -1) {
		part = punctRe.ReplaceAllString(part, " ")
		var tokens []string
		for _, tok := range strings.Fields(part) {
			if expanded, ok := bareNegations[tok]; ok {
				tokens = append(tokens, expanded...)
				continue
			}
			tokens = append(tokens, tok)
		}
		if len(tokens) > 0 {
			clauses = append(clauses, tokens)
		}
	}
	return clauses
}
