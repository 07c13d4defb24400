// Package classify assigns a coupon to a category from the brand names
// appearing in its text. It backs up the extraction strategies: the
// category from a winning proposal always takes precedence.
package classify

import "regexp"

// categoryRule maps word-bounded brand markers to one category
type categoryRule struct {
	category string
	markers  *regexp.Regexp
}

// rules are consulted in order and the first hit wins. Commerce sits last
// because its brand names ("amazon") are prefixes of more specific ones
// ("amazon pay"), so the specific categories must get the first look.
var rules = []categoryRule{
	{
		category: "food delivery",
		markers:  regexp.MustCompile(`(?i)\b(?:swiggy|zomato|domino'?s?|pizza\s*hut|kfc|mcdonald'?s?|eatsure|box8|faasos)\b`),
	},
	{
		category: "payments",
		markers:  regexp.MustCompile(`(?i)\b(?:cred|paytm|phonepe|google\s*pay|gpay|amazon\s*pay|mobikwik|freecharge|bhim|upi)\b`),
	},
	{
		category: "travel",
		markers:  regexp.MustCompile(`(?i)\b(?:abhibus|ixigo|makemytrip|goibibo|redbus|cleartrip|yatra|oyo|airbnb)\b`),
	},
	{
		category: "entertainment",
		markers:  regexp.MustCompile(`(?i)\b(?:bookmyshow|netflix|hotstar|spotify|prime\s*video|sonyliv|zee5|jiocinema)\b`),
	},
	{
		category: "commerce",
		markers:  regexp.MustCompile(`(?i)\b(?:amazon|flipkart|myntra|ajio|nykaa|meesho|snapdeal|tata\s*cliq|boat|mivi|xyxx|newmee|shopsy)\b`),
	},
}

// Classify returns the category whose brand markers appear in the text,
// or empty when nothing matches
func Classify(text string) string {
	for _, rule := range rules {
		if rule.markers.MatchString(text) {
			return rule.category
		}
	}
	return ""
}
