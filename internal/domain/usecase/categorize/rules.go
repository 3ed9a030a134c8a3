package categorize

import (
	"strings"

	"github.com/amirhossein-jamali/upi-tracker/internal/domain/entity"
)

// CategoryRule maps a category to lowercase keyword substrings
type CategoryRule struct {
	Category string
	Keywords []string
}

// DefaultRules is the built-in keyword table, in priority order
var DefaultRules = []CategoryRule{
	{"Food & Dining", []string{"swiggy", "zomato", "restaurant", "cafe", "food", "dining", "pizza", "burger"}},
	{"Shopping", []string{"amazon", "flipkart", "myntra", "shop", "store", "mart", "mall"}},
	{"Transportation", []string{"uber", "ola", "rapido", "cab", "taxi", "bus", "metro", "fuel", "petrol"}},
	{"Bills & Utilities", []string{"electricity", "water", "gas", "internet", "mobile", "recharge", "bill"}},
	{"Entertainment", []string{"movie", "netflix", "prime", "spotify", "game", "play", "book"}},
	{"Healthcare", []string{"medical", "doctor", "hospital", "pharmacy", "medicine", "health"}},
	{"Education", []string{"school", "college", "course", "book", "tuition", "education"}},
	{"Groceries", []string{"grocery", "vegetable", "fruit", "milk", "bigbasket", "grofers", "dunzo"}},
	{"Investment", []string{"mutual fund", "stock", "invest", "sip", "trading"}},
}

// RuleClassifier is a deterministic keyword lookup with a default bucket
type RuleClassifier struct {
	rules []CategoryRule
}

// NewRuleClassifier creates a classifier over DefaultRules
func NewRuleClassifier() *RuleClassifier {
	return NewRuleClassifierWithRules(DefaultRules)
}

// NewRuleClassifierWithRules creates a classifier over a custom table.
// Keywords are lowercased; rules for the default bucket are ignored since it is always tried last.
func NewRuleClassifierWithRules(rules []CategoryRule) *RuleClassifier {
	normalized := make([]CategoryRule, 0, len(rules))
	for _, r := range rules {
		if strings.EqualFold(r.Category, entity.DefaultCategory) {
			continue
		}
		keywords := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords = append(keywords, k)
			}
		}
		normalized = append(normalized, CategoryRule{Category: r.Category, Keywords: keywords})
	}
	return &RuleClassifier{rules: normalized}
}

// CategoryNames returns the table's categories followed by the default bucket
func (c *RuleClassifier) CategoryNames() []string {
	names := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		names = append(names, r.Category)
	}
	return append(names, entity.DefaultCategory)
}

// Classify returns the first table category with a keyword in description or merchant.
// It never fails; with no match it returns the default bucket.
func (c *RuleClassifier) Classify(description, merchant string) string {
	return c.ClassifyWithin(description, merchant, nil)
}

// ClassifyWithin is Classify restricted to the given candidates (matched ignoring case).
// The returned name uses the candidate's spelling. Empty candidates means the whole table.
func (c *RuleClassifier) ClassifyWithin(description, merchant string, candidates []string) string {
	text := strings.ToLower(description + " " + merchant)

	for _, r := range c.rules {
		name, ok := r.Category, true
		if len(candidates) > 0 {
			name, ok = findCandidate(candidates, r.Category)
		}
		if !ok {
			continue
		}
		for _, k := range r.Keywords {
			if strings.Contains(text, k) {
				return name
			}
		}
	}
	return entity.DefaultCategory
}

func findCandidate(candidates []string, name string) (string, bool) {
	for _, c := range candidates {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return c, true
		}
	}
	return "", false
}
