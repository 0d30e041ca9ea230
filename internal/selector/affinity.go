// ABOUTME: Data-driven affinity table mapping goal vocabulary to fact categories
// ABOUTME: Keeps the semantic heuristic declarative and independently testable
package selector

// affinityRule grants a fixed semantic bonus when the goal's vocabulary
// touches a topic that a fact category tends to answer. The bonus values are
// tunable constants, not business rules; the structural contract is that
// matching happens on the goal's keyword set against a declared vocabulary.
type affinityRule struct {
	// vocab is the goal-side vocabulary that triggers the rule.
	vocab []string
	// category is the fact category the bonus applies to.
	category string
	// bonus is added to the semantic score, pre-cap.
	bonus float64
}

// affinityRules is the whole semantic-affinity heuristic. Extend by adding
// rows, or bypass entirely with an EmbedScorer.
var affinityRules = []affinityRule{
	{
		vocab:    []string{"weather", "temperature", "forecast", "rain", "snow", "sunny", "cold", "hot", "climate", "umbrella"},
		category: "location",
		bonus:    0.3,
	},
	{
		vocab:    []string{"code", "coding", "program", "programming", "language", "debug", "compile", "function", "library", "script"},
		category: "preference",
		bonus:    0.3,
	},
	{
		vocab:    []string{"name", "called", "introduce", "myself", "about"},
		category: "profile",
		bonus:    0.2,
	},
	{
		vocab:    []string{"eat", "food", "restaurant", "dinner", "lunch", "breakfast", "cuisine", "cook"},
		category: "preference",
		bonus:    0.2,
	},
	{
		vocab:    []string{"travel", "trip", "flight", "visit", "vacation", "directions", "near", "nearby"},
		category: "location",
		bonus:    0.2,
	},
}

// affinityBonus returns the summed bonus of every rule whose vocabulary
// intersects the goal's keyword set and whose category matches.
func affinityBonus(goalWords map[string]struct{}, factCategory string) float64 {
	total := 0.0
	for _, rule := range affinityRules {
		if rule.category != factCategory {
			continue
		}
		for _, term := range rule.vocab {
			if _, ok := goalWords[term]; ok {
				total += rule.bonus
				break
			}
		}
	}
	return total
}
