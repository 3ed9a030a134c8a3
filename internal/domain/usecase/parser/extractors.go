package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
)

// Every extractor works on the raw message and reports absence with ok == false.

const amountToken = `([0-9]+(?:,[0-9]+)*(?:\.[0-9]+)?)`

// amountPatterns are tried in order; the first match wins
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:\brs\.?|\binr|₹)\s*` + amountToken),
	regexp.MustCompile(`(?i)\bamount\b(?:\s+of)?\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*` + amountToken),
}

var (
	debitKeywords  = regexp.MustCompile(`(?i)\b(?:debited|paid|sent|transferred|withdrawn|debit)\b`)
	creditKeywords = regexp.MustCompile(`(?i)\b(?:credited|received|deposited|credit)\b`)

	identifierPattern = regexp.MustCompile(`(?i)\b(?:to|from|upi)\b[\s:]*(?:(?:id|vpa)\b[\s:\-]*)?([a-z0-9._\-]+@[a-z0-9]+)`)

	referencePattern = regexp.MustCompile(`(?i)\b(?:ref(?:erence)?(?:\s*no)?|txn|transaction)\b\.?\s*(?:(?:id|no|number)\b\.?\s*)?[:#]?\s*([a-z0-9]*[0-9][a-z0-9]*)`)
)

// merchantAnchors precede a counterparty name, in priority order
var merchantAnchors = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bto\s+`),
	regexp.MustCompile(`(?i)\bat\s+`),
	regexp.MustCompile(`(?i)\bmerchant\s*:\s*`),
	regexp.MustCompile(`(?i)\bpaid\s+to\s+`),
}

// merchantStopWords end a merchant name
var merchantStopWords = map[string]struct{}{
	"on": {}, "ref": {}, "txn": {}, "upi": {},
	"via": {}, "using": {}, "vpa": {}, "your": {}, "a/c": {}, "id": {},
}

const maxMerchantWords = 8

// ExtractAmount returns the first currency-marked amount in the text
func ExtractAmount(text string) (decimal.Decimal, bool) {
	for _, pattern := range amountPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount, err := entity.ParseAmount(m[1])
		if err != nil {
			continue
		}
		return amount, true
	}
	return decimal.Zero, false
}

// ExtractDirection returns Debit if any debit keyword appears, else Credit if any credit keyword appears
func ExtractDirection(text string) (entity.Direction, bool) {
	switch {
	case debitKeywords.MatchString(text):
		return entity.DirectionDebit, true
	case creditKeywords.MatchString(text):
		return entity.DirectionCredit, true
	default:
		return "", false
	}
}

// ExtractIdentifier returns a local@domain handle introduced by "to", "from" or "UPI"
func ExtractIdentifier(text string) (string, bool) {
	m := identifierPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractReference returns the token following a reference keyword. The token must contain a digit.
func ExtractReference(text string) (string, bool) {
	m := referencePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractMerchant returns the word sequence after a merchant anchor, falling back to
// a name derived from the payment handle
func ExtractMerchant(text string) (string, bool) {
	for _, anchor := range merchantAnchors {
		for _, loc := range anchor.FindAllStringIndex(text, -1) {
			if name := collectMerchantWords(text[loc[1]:]); name != "" {
				return name, true
			}
		}
	}

	if handle, ok := ExtractIdentifier(text); ok {
		if name := HumanizeHandle(handle); name != "" {
			return name, true
		}
	}
	return "", false
}

func collectMerchantWords(rest string) string {
	var words []string
	for _, raw := range strings.Fields(rest) {
		word := strings.TrimRight(raw, ".,;:!")
		sentenceEnd := word != raw

		if _, stop := merchantStopWords[strings.ToLower(word)]; stop || word == "" {
			break
		}
		if strings.Contains(word, "@") {
			break
		}

		words = append(words, word)
		if sentenceEnd || len(words) == maxMerchantWords {
			break
		}
	}

	name := strings.Join(words, " ")
	if !strings.ContainsFunc(name, unicode.IsLetter) {
		return ""
	}
	return name
}

// HumanizeHandle turns "john.doe@okaxis" into "John Doe"
func HumanizeHandle(handle string) string {
	local, _, _ := strings.Cut(handle, "@")
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		parts[i] = string(unicode.ToUpper(r)) + p[size:]
	}
	return strings.Join(parts, " ")
}

// HasContextWord reports whether the text mentions a payment channel
func HasContextWord(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range contextWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

var contextWords = []string{"upi", "account", "wallet"}
