package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Platform string

const (
	PlatformTaboola  Platform = "taboola"
	PlatformOutbrain Platform = "outbrain"
)

type Scope string

const (
	ScopeAccount  Scope = "account"
	ScopeCampaign Scope = "campaign"
)

type ConditionType string

const (
	ConditionCPAThreshold      ConditionType = "cpa_threshold"
	ConditionZeroConvSpend     ConditionType = "zero_conv_spend"
	ConditionWeeklyCPAIncrease ConditionType = "weekly_cpa_increase"
)

// ConditionOrder is the fixed declared order used for option lists and auto-correction.
var ConditionOrder = []ConditionType{
	ConditionCPAThreshold,
	ConditionZeroConvSpend,
	ConditionWeeklyCPAIncrease,
}

type Severity int

const (
	SeverityCritical Severity = 1
	SeverityWarning  Severity = 2
	SeverityInfo     Severity = 3
)

const (
	DefaultPlatform       = PlatformTaboola
	DefaultSeverity       = SeverityWarning
	DefaultTimeframeHours = 2
)

func (p Platform) Valid() bool {
	return p == PlatformTaboola || p == PlatformOutbrain
}

func (s Scope) Valid() bool {
	return s == ScopeAccount || s == ScopeCampaign
}

func (c ConditionType) Valid() bool {
	for _, known := range ConditionOrder {
		if c == known {
			return true
		}
	}
	return false
}

func (s Severity) Valid() bool {
	return s >= SeverityCritical && s <= SeverityInfo
}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return strconv.Itoa(int(s))
	}
}

// AlertRule is the canonical, fully populated rule every consumer sees.
type AlertRule struct {
	ID             *int64        `json:"id,omitempty"`
	Name           string        `json:"name"`
	Platform       Platform      `json:"platform"`
	Scope          Scope         `json:"scope"`
	AccountName    string        `json:"account_name"`
	TimeframeHours int           `json:"timeframe_hours"`
	ConditionType  ConditionType `json:"condition_type"`
	Threshold      float64       `json:"threshold"`
	Severity       Severity      `json:"severity"`
	Timezone       *string       `json:"timezone"`
	MinSpend       *float64      `json:"min_spend"`
	IsActive       bool          `json:"is_active"`
	CreatedAt      *string       `json:"created_at,omitempty"`
	UpdatedAt      *string       `json:"updated_at,omitempty"`
}

// WireRule is a rule as the backend sends it. Older payloads omit platform, severity,
// timezone and min_spend entirely.
type WireRule struct {
	ID             *int64        `json:"id,omitempty"`
	Name           string        `json:"name"`
	Platform       *Platform     `json:"platform,omitempty"`
	Scope          Scope         `json:"scope"`
	AccountName    string        `json:"account_name"`
	TimeframeHours int           `json:"timeframe_hours"`
	ConditionType  ConditionType `json:"condition_type"`
	Threshold      NumberField   `json:"threshold"`
	Severity       *Severity     `json:"severity,omitempty"`
	Timezone       *string       `json:"timezone,omitempty"`
	MinSpend       NumberField   `json:"min_spend"`
	IsActive       *bool         `json:"is_active,omitempty"`
	CreatedAt      *string       `json:"created_at,omitempty"`
	UpdatedAt      *string       `json:"updated_at,omitempty"`
}

// Draft is rule form state. Numeric fields may be unset, which is distinct from zero.
type Draft struct {
	Name           string        `json:"name"`
	Platform       Platform      `json:"platform"`
	Scope          Scope         `json:"scope"`
	AccountName    string        `json:"account_name"`
	TimeframeHours NumberField   `json:"timeframe_hours"`
	ConditionType  ConditionType `json:"condition_type"`
	Threshold      NumberField   `json:"threshold"`
	Severity       NumberField   `json:"severity"`
	Timezone       *string       `json:"timezone"`
	MinSpend       NumberField   `json:"min_spend"`
	IsActive       *bool         `json:"is_active,omitempty"`
}

// NewDraft returns an empty create form.
func NewDraft() Draft {
	active := true
	return Draft{
		Platform:       DefaultPlatform,
		Scope:          ScopeAccount,
		TimeframeHours: Number(DefaultTimeframeHours),
		ConditionType:  ConditionCPAThreshold,
		Severity:       Number(float64(DefaultSeverity)),
		IsActive:       &active,
	}
}

// NumberField is a form number that is either unset or holds a value. It accepts JSON
// numbers, numeric strings, "" and null.
type NumberField struct {
	Value float64
	Set   bool
}

func Number(v float64) NumberField {
	return NumberField{Value: v, Set: true}
}

// Ptr returns nil when unset.
func (n NumberField) Ptr() *float64 {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

func NumberFromPtr(p *float64) NumberField {
	if p == nil {
		return NumberField{}
	}
	return Number(*p)
}

func (n NumberField) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *NumberField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = NumberField{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = NumberField{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}
