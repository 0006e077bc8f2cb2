package rules

import "AlertConsoleAPI/internal/models"

// CopySuffix marks duplicated rule names.
const CopySuffix = " (Copy)"

// DraftFrom builds an edit form from a persisted rule. The source is not modified.
func DraftFrom(r models.AlertRule) models.Draft {
	active := r.IsActive
	d := models.Draft{
		Name:           r.Name,
		Platform:       effectivePlatform(r.Platform),
		Scope:          r.Scope,
		AccountName:    r.AccountName,
		TimeframeHours: models.Number(float64(r.TimeframeHours)),
		ConditionType:  r.ConditionType,
		Threshold:      models.Number(r.Threshold),
		Severity:       models.Number(float64(effectiveSeverity(r.Severity))),
		MinSpend:       models.NumberFromPtr(r.MinSpend),
		IsActive:       &active,
	}
	if r.Timezone != nil {
		tz := *r.Timezone
		d.Timezone = &tz
	}
	return d
}

// Duplicate builds a create form from an existing rule: identity and timestamps are
// dropped by construction, the name is suffixed and the copy starts active.
func Duplicate(r models.AlertRule) models.Draft {
	d := DraftFrom(r)
	d.Name = r.Name + CopySuffix
	active := true
	d.IsActive = &active
	return d
}

// WithPlatform switches the draft's platform, remapping the condition when it is no
// longer available and dropping the timezone when it no longer applies.
func WithPlatform(d models.Draft, p models.Platform) models.Draft {
	d.Platform = p
	d.ConditionType = ReconcileCondition(p, d.ConditionType)
	if p != models.PlatformOutbrain {
		d.Timezone = nil
	}
	return d
}

// WithCondition switches the draft's condition; zero_conv_spend uses the threshold as
// its spend gate so min_spend is cleared.
func WithCondition(d models.Draft, c models.ConditionType) models.Draft {
	d.ConditionType = ReconcileCondition(d.Platform, c)
	if d.ConditionType == models.ConditionZeroConvSpend {
		d.MinSpend = models.NumberField{}
	}
	return d
}
