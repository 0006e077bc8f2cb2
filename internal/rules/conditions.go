package rules

import "AlertConsoleAPI/internal/models"

// AvailableConditions lists the condition types selectable for a platform, in declared
// order. Outbrain has no week-over-week CPA data.
func AvailableConditions(platform models.Platform) []models.ConditionType {
	out := make([]models.ConditionType, 0, len(models.ConditionOrder))
	for _, c := range models.ConditionOrder {
		if c == models.ConditionWeeklyCPAIncrease && effectivePlatform(platform) == models.PlatformOutbrain {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ConditionAvailable reports whether c may be used with platform.
func ConditionAvailable(platform models.Platform, c models.ConditionType) bool {
	for _, avail := range AvailableConditions(platform) {
		if avail == c {
			return true
		}
	}
	return false
}

// ReconcileCondition keeps current if still available for platform, otherwise returns
// the first available condition.
func ReconcileCondition(platform models.Platform, current models.ConditionType) models.ConditionType {
	if ConditionAvailable(platform, current) {
		return current
	}
	return AvailableConditions(platform)[0]
}
