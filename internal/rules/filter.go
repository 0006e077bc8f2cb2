package rules

import (
	"net/url"
	"strconv"
	"strings"

	"AlertConsoleAPI/internal/models"
)

// FilterAll is the wildcard value for categorical filters.
const FilterAll = "all"

// Filter narrows a rule listing. Empty categorical values behave like FilterAll.
type Filter struct {
	SearchQuery string `json:"search"`
	Scope       string `json:"scope"`
	Condition   string `json:"condition"`
	Platform    string `json:"platform"`
	Severity    string `json:"severity"`
	// IncludeInactive selects which listing is fetched upstream; FilterRules does not
	// look at is_active.
	IncludeInactive bool `json:"include_inactive"`
}

// ParseFilter reads a Filter from query parameters.
func ParseFilter(q url.Values) Filter {
	f := Filter{
		SearchQuery: q.Get("search"),
		Scope:       q.Get("scope"),
		Condition:   q.Get("condition"),
		Platform:    q.Get("platform"),
		Severity:    q.Get("severity"),
	}
	if v, err := strconv.ParseBool(q.Get("include_inactive")); err == nil {
		f.IncludeInactive = v
	}
	return f
}

// FilterRules returns the rules matching every predicate of f, in their original order.
func FilterRules(rules []models.AlertRule, f Filter) []models.AlertRule {
	query := strings.ToLower(f.SearchQuery)

	out := make([]models.AlertRule, 0, len(rules))
	for _, r := range rules {
		matchesSearch := strings.Contains(strings.ToLower(r.Name), query) ||
			strings.Contains(strings.ToLower(r.AccountName), query)
		matchesScope := wildcard(f.Scope) || string(r.Scope) == f.Scope
		matchesCondition := wildcard(f.Condition) || string(r.ConditionType) == f.Condition
		matchesPlatform := wildcard(f.Platform) || string(effectivePlatform(r.Platform)) == f.Platform
		matchesSeverity := wildcard(f.Severity) || strconv.Itoa(int(effectiveSeverity(r.Severity))) == f.Severity

		if matchesSearch && matchesScope && matchesCondition && matchesPlatform && matchesSeverity {
			out = append(out, r)
		}
	}
	return out
}

func wildcard(v string) bool {
	return v == "" || v == FilterAll
}
