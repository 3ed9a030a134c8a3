package categorize

import (
	"strings"
	"unicode"
)

// ResolveOracleAnswer maps free text from the oracle onto one of the candidates.
//
// A candidate whose full name appears in the answer wins when it is the only one.
// Otherwise the first candidate with any of its words in the answer wins.
func ResolveOracleAnswer(answer string, candidates []string) (string, bool) {
	lower := strings.ToLower(answer)
	if strings.TrimSpace(lower) == "" {
		return "", false
	}

	var contained []string
	for _, c := range candidates {
		name := strings.ToLower(strings.TrimSpace(c))
		if name != "" && strings.Contains(lower, name) {
			contained = append(contained, c)
		}
	}
	if len(contained) == 1 {
		return contained[0], true
	}

	for _, c := range candidates {
		for _, word := range strings.Fields(strings.ToLower(c)) {
			// "&" and similar carry no meaning
			if !strings.ContainsFunc(word, isWordRune) {
				continue
			}
			if strings.Contains(lower, word) {
				return c, true
			}
		}
	}
	return "", false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
