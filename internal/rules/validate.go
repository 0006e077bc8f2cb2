package rules

import (
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata"

	"AlertConsoleAPI/internal/apperr"
	"AlertConsoleAPI/internal/models"
)

// ValidateForSubmit checks a draft and returns the rule to persist. It never touches the
// network; callers must not send anything when it fails.
func ValidateForSubmit(d models.Draft) (models.AlertRule, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return models.AlertRule{}, apperr.NewValidation(apperr.CodeMissingField, "name", "Rule name is required")
	}

	account := strings.TrimSpace(d.AccountName)
	if account == "" {
		return models.AlertRule{}, apperr.NewValidation(apperr.CodeMissingField, "account_name", "Account name is required")
	}

	if !d.Threshold.Set || !(d.Threshold.Value > 0) || math.IsInf(d.Threshold.Value, 0) {
		return models.AlertRule{}, apperr.NewValidation(apperr.CodeInvalidThreshold, "threshold", "Threshold must be greater than 0")
	}

	if !d.TimeframeHours.Set || !(d.TimeframeHours.Value > 0) {
		return models.AlertRule{}, apperr.NewValidation(apperr.CodeInvalidTimeframe, "timeframe_hours", "Timeframe must be greater than 0 hours")
	}
	if d.TimeframeHours.Value != math.Trunc(d.TimeframeHours.Value) || d.TimeframeHours.Value > math.MaxInt32 {
		return models.AlertRule{}, apperr.NewValidation(apperr.CodeInvalidTimeframe, "timeframe_hours", "Timeframe must be a whole number of hours")
	}

	platform := effectivePlatform(d.Platform)
	timezone := ""
	if d.Timezone != nil {
		timezone = strings.TrimSpace(*d.Timezone)
	}
	if platform == models.PlatformOutbrain && timezone == "" {
		return models.AlertRule{}, apperr.NewValidation(apperr.CodeMissingTimezone, "timezone", "Timezone is required for Outbrain rules")
	}

	if err := validateEnums(platform, d); err != nil {
		return models.AlertRule{}, err
	}

	severity := models.DefaultSeverity
	if d.Severity.Set {
		severity = models.Severity(d.Severity.Value)
		if float64(severity) != d.Severity.Value || !severity.Valid() {
			return models.AlertRule{}, apperr.NewValidation(apperr.CodeInvalidField, "severity", "Severity must be 1 (critical), 2 (warning) or 3 (info)")
		}
	}

	rule := models.AlertRule{
		Name:           name,
		Platform:       platform,
		Scope:          d.Scope,
		AccountName:    account,
		TimeframeHours: int(d.TimeframeHours.Value),
		ConditionType:  d.ConditionType,
		Threshold:      d.Threshold.Value,
		Severity:       severity,
		IsActive:       true,
	}
	if d.IsActive != nil {
		rule.IsActive = *d.IsActive
	}

	if platform == models.PlatformOutbrain {
		if _, err := time.LoadLocation(timezone); err != nil {
			return models.AlertRule{}, apperr.NewValidation(apperr.CodeInvalidField, "timezone", fmt.Sprintf("Unknown timezone %q", timezone))
		}
		rule.Timezone = &timezone
	}

	if d.ConditionType != models.ConditionZeroConvSpend && d.MinSpend.Set {
		if d.MinSpend.Value < 0 || math.IsNaN(d.MinSpend.Value) || math.IsInf(d.MinSpend.Value, 0) {
			return models.AlertRule{}, apperr.NewValidation(apperr.CodeInvalidMinSpend, "min_spend", "Minimum spend must be a non-negative number")
		}
		rule.MinSpend = d.MinSpend.Ptr()
	}

	return rule, nil
}

func validateEnums(platform models.Platform, d models.Draft) error {
	if !platform.Valid() {
		return apperr.NewValidation(apperr.CodeInvalidField, "platform", fmt.Sprintf("Unknown platform %q", d.Platform))
	}
	if !d.Scope.Valid() {
		return apperr.NewValidation(apperr.CodeInvalidField, "scope", fmt.Sprintf("Unknown scope %q", d.Scope))
	}
	if !d.ConditionType.Valid() {
		return apperr.NewValidation(apperr.CodeInvalidField, "condition_type", fmt.Sprintf("Unknown condition type %q", d.ConditionType))
	}
	if !ConditionAvailable(platform, d.ConditionType) {
		return apperr.NewValidation(apperr.CodeUnsupportedCondition, "condition_type",
			fmt.Sprintf("Condition %q is not available for %s", d.ConditionType, platform))
	}
	return nil
}
