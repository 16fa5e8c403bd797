package analysis

import "strings"

const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"

	IntentPurchase = "Purchase Inquiry"
	IntentPrice    = "Price Negotiation"
	IntentLocation = "Location Preference"
	IntentGeneral  = "General Inquiry"
	IntentResponse = "Response"
)

// IntentRule maps a keyword to an intent label.
type IntentRule struct {
	Keyword string
	Intent  string
}

// DefaultIntentRules returns the rule list in priority order: first match wins.
func DefaultIntentRules() []IntentRule {
	return []IntentRule{
		{Keyword: "buy", Intent: IntentPurchase},
		{Keyword: "price", Intent: IntentPrice},
		{Keyword: "location", Intent: IntentLocation},
	}
}

// DetectIntent applies the ordered rules to the raw customer text.
// Matching is case-insensitive substring search against the ORIGINAL
// input, not the model reply.
func DetectIntent(text string, rules []IntentRule) string {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		if rule.Keyword == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(rule.Keyword)) {
			return rule.Intent
		}
	}
	return IntentGeneral
}

// ParseSentiment extracts a coarse polarity label from the model reply.
// Defaults to Neutral; "positive" wins over "negative" when both appear.
func ParseSentiment(reply string) string {
	lowered := strings.ToLower(reply)
	if strings.Contains(lowered, "positive") {
		return SentimentPositive
	}
	if strings.Contains(lowered, "negative") {
		return SentimentNegative
	}
	return SentimentNeutral
}
