package rules

import "AlertConsoleAPI/internal/models"

// Schema describes the rule form options for the UI.
type Schema struct {
	Platforms  []Option          `json:"platforms"`
	Scopes     []Option          `json:"scopes"`
	Conditions []ConditionOption `json:"conditions"`
	Severities []SeverityOption  `json:"severities"`
	Defaults   models.Draft      `json:"defaults"`
}

type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

type ConditionOption struct {
	Option
	Unit      string            `json:"unit"` // "currency" or "percent"
	Platforms []models.Platform `json:"platforms"`
}

type SeverityOption struct {
	Value models.Severity `json:"value"`
	Label string          `json:"label"`
}

var conditionLabels = map[models.ConditionType]Option{
	models.ConditionCPAThreshold: {
		Label:       "CPA Threshold",
		Description: "Alert when Cost Per Action (CPA) reaches or exceeds threshold",
	},
	models.ConditionZeroConvSpend: {
		Label:       "Zero Conversions",
		Description: "Alert when spend reaches threshold with zero conversions",
	},
	models.ConditionWeeklyCPAIncrease: {
		Label:       "Weekly CPA Increase",
		Description: "Alert when CPA increases by percentage vs same period last week",
	},
}

// ThresholdUnit is the unit the threshold of c is expressed in.
func ThresholdUnit(c models.ConditionType) string {
	if c == models.ConditionWeeklyCPAIncrease {
		return "percent"
	}
	return "currency"
}

// GetSchema returns the full option catalog.
func GetSchema() Schema {
	s := Schema{
		Platforms: []Option{
			{Value: string(models.PlatformTaboola), Label: "Taboola"},
			{Value: string(models.PlatformOutbrain), Label: "Outbrain", Description: "Requires a timezone"},
		},
		Scopes: []Option{
			{Value: string(models.ScopeAccount), Label: "Account Level", Description: "Alert when aggregated metrics across all campaigns exceed threshold"},
			{Value: string(models.ScopeCampaign), Label: "Campaign Level", Description: "Alert for individual campaigns that exceed threshold"},
		},
		Severities: []SeverityOption{
			{Value: models.SeverityCritical, Label: "Critical"},
			{Value: models.SeverityWarning, Label: "Warning"},
			{Value: models.SeverityInfo, Label: "Info"},
		},
		Defaults: models.NewDraft(),
	}

	for _, c := range models.ConditionOrder {
		opt := conditionLabels[c]
		opt.Value = string(c)
		var platforms []models.Platform
		for _, p := range []models.Platform{models.PlatformTaboola, models.PlatformOutbrain} {
			if ConditionAvailable(p, c) {
				platforms = append(platforms, p)
			}
		}
		s.Conditions = append(s.Conditions, ConditionOption{Option: opt, Unit: ThresholdUnit(c), Platforms: platforms})
	}

	return s
}
