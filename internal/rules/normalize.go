// Package rules holds the alert-rule domain logic: normalization at the data boundary,
// submit validation, condition availability, filtering and draft transforms.
package rules

import (
	"strings"

	"AlertConsoleAPI/internal/models"
)

// Normalize turns a backend rule into a fully populated AlertRule. It is the only place
// that applies defaults for fields older payloads omit.
func Normalize(w models.WireRule) models.AlertRule {
	rule := models.AlertRule{
		ID:             w.ID,
		Name:           w.Name,
		Platform:       platformOrDefault(w.Platform),
		Scope:          w.Scope,
		AccountName:    w.AccountName,
		TimeframeHours: w.TimeframeHours,
		ConditionType:  w.ConditionType,
		Threshold:      w.Threshold.Value,
		Severity:       severityOrDefault(w.Severity),
		MinSpend:       w.MinSpend.Ptr(),
		IsActive:       true,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}

	if w.IsActive != nil {
		rule.IsActive = *w.IsActive
	}

	// zero_conv_spend gates on the threshold itself
	if rule.ConditionType == models.ConditionZeroConvSpend {
		rule.MinSpend = nil
	}

	if rule.Platform == models.PlatformOutbrain && w.Timezone != nil && strings.TrimSpace(*w.Timezone) != "" {
		tz := *w.Timezone
		rule.Timezone = &tz
	}

	return rule
}

// NormalizeAll normalizes a listing, preserving order.
func NormalizeAll(ws []models.WireRule) []models.AlertRule {
	out := make([]models.AlertRule, 0, len(ws))
	for _, w := range ws {
		out = append(out, Normalize(w))
	}
	return out
}

func platformOrDefault(p *models.Platform) models.Platform {
	if p == nil || *p == "" {
		return models.DefaultPlatform
	}
	return *p
}

func severityOrDefault(s *models.Severity) models.Severity {
	if s == nil || !s.Valid() {
		return models.DefaultSeverity
	}
	return *s
}

// effectivePlatform and effectiveSeverity cover AlertRule values built by hand rather
// than through Normalize.
func effectivePlatform(p models.Platform) models.Platform {
	if p == "" {
		return models.DefaultPlatform
	}
	return p
}

func effectiveSeverity(s models.Severity) models.Severity {
	if s == 0 {
		return models.DefaultSeverity
	}
	return s
}
