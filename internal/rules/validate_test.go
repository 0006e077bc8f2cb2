package rules

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AlertConsoleAPI/internal/apperr"
	"AlertConsoleAPI/internal/models"
)

func strPtr(s string) *string { return &s }

func validDraft() models.Draft {
	d := models.NewDraft()
	d.Name = "X"
	d.AccountName = "acme"
	d.Threshold = models.Number(65)
	return d
}

func TestValidateForSubmit_Success(t *testing.T) {
	rule, err := ValidateForSubmit(validDraft())
	require.NoError(t, err)

	assert.Nil(t, rule.ID)
	assert.Equal(t, "X", rule.Name)
	assert.Equal(t, models.PlatformTaboola, rule.Platform)
	assert.Equal(t, models.ScopeAccount, rule.Scope)
	assert.Equal(t, "acme", rule.AccountName)
	assert.Equal(t, 2, rule.TimeframeHours)
	assert.Equal(t, models.ConditionCPAThreshold, rule.ConditionType)
	assert.InDelta(t, 65.0, rule.Threshold, 1e-9)
	assert.Equal(t, models.SeverityWarning, rule.Severity)
	assert.Nil(t, rule.Timezone)
	assert.Nil(t, rule.MinSpend)
	assert.True(t, rule.IsActive)
}

func TestValidateForSubmit_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Draft)
		code   string
		field  string
	}{
		{"empty name", func(d *models.Draft) { d.Name = "" }, apperr.CodeMissingField, "name"},
		{"whitespace name", func(d *models.Draft) { d.Name = "   " }, apperr.CodeMissingField, "name"},
		{"empty account", func(d *models.Draft) { d.AccountName = "\t" }, apperr.CodeMissingField, "account_name"},
		{"unset threshold", func(d *models.Draft) { d.Threshold = models.NumberField{} }, apperr.CodeInvalidThreshold, "threshold"},
		{"zero threshold", func(d *models.Draft) { d.Threshold = models.Number(0) }, apperr.CodeInvalidThreshold, "threshold"},
		{"negative threshold", func(d *models.Draft) { d.Threshold = models.Number(-5) }, apperr.CodeInvalidThreshold, "threshold"},
		{"unset timeframe", func(d *models.Draft) { d.TimeframeHours = models.NumberField{} }, apperr.CodeInvalidTimeframe, "timeframe_hours"},
		{"zero timeframe", func(d *models.Draft) { d.TimeframeHours = models.Number(0) }, apperr.CodeInvalidTimeframe, "timeframe_hours"},
		{"fractional timeframe", func(d *models.Draft) { d.TimeframeHours = models.Number(1.5) }, apperr.CodeInvalidTimeframe, "timeframe_hours"},
		{"outbrain without timezone", func(d *models.Draft) { d.Platform = models.PlatformOutbrain }, apperr.CodeMissingTimezone, "timezone"},
		{"outbrain blank timezone", func(d *models.Draft) {
			d.Platform = models.PlatformOutbrain
			d.Timezone = strPtr(" ")
		}, apperr.CodeMissingTimezone, "timezone"},
		{"unknown timezone", func(d *models.Draft) {
			d.Platform = models.PlatformOutbrain
			d.Timezone = strPtr("Mars/Olympus")
		}, apperr.CodeInvalidField, "timezone"},
		{"unknown platform", func(d *models.Draft) { d.Platform = "meta" }, apperr.CodeInvalidField, "platform"},
		{"unknown scope", func(d *models.Draft) { d.Scope = "adset" }, apperr.CodeInvalidField, "scope"},
		{"unknown condition", func(d *models.Draft) { d.ConditionType = "ctr_drop" }, apperr.CodeInvalidField, "condition_type"},
		{"weekly increase on outbrain", func(d *models.Draft) {
			d.Platform = models.PlatformOutbrain
			d.Timezone = strPtr("America/New_York")
			d.ConditionType = models.ConditionWeeklyCPAIncrease
		}, apperr.CodeUnsupportedCondition, "condition_type"},
		{"severity out of range", func(d *models.Draft) { d.Severity = models.Number(4) }, apperr.CodeInvalidField, "severity"},
		{"negative min spend", func(d *models.Draft) { d.MinSpend = models.Number(-1) }, apperr.CodeInvalidMinSpend, "min_spend"},
		{"infinite min spend", func(d *models.Draft) { d.MinSpend = models.Number(math.Inf(1)) }, apperr.CodeInvalidMinSpend, "min_spend"},
		{"infinite severity", func(d *models.Draft) { d.Severity = models.Number(math.Inf(1)) }, apperr.CodeInvalidField, "severity"},
		{"infinite timeframe", func(d *models.Draft) { d.TimeframeHours = models.Number(math.Inf(1)) }, apperr.CodeInvalidTimeframe, "timeframe_hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			_, err := ValidateForSubmit(d)
			require.Error(t, err)

			ve, ok := apperr.IsValidation(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			assert.Equal(t, tt.code, ve.Code)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateForSubmit_MissingFieldBeforeNumbers(t *testing.T) {
	d := models.Draft{}
	_, err := ValidateForSubmit(d)
	ve, ok := apperr.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeMissingField, ve.Code)
}

func TestValidateForSubmit_Normalization(t *testing.T) {
	t.Run("timezone dropped for taboola", func(t *testing.T) {
		d := validDraft()
		d.Timezone = strPtr("Europe/London")
		rule, err := ValidateForSubmit(d)
		require.NoError(t, err)
		assert.Nil(t, rule.Timezone)
	})

	t.Run("timezone kept for outbrain", func(t *testing.T) {
		d := validDraft()
		d.Platform = models.PlatformOutbrain
		d.Timezone = strPtr(" America/New_York ")
		rule, err := ValidateForSubmit(d)
		require.NoError(t, err)
		require.NotNil(t, rule.Timezone)
		assert.Equal(t, "America/New_York", *rule.Timezone)
	})

	t.Run("min spend cleared for zero conversion spend", func(t *testing.T) {
		d := validDraft()
		d.ConditionType = models.ConditionZeroConvSpend
		d.MinSpend = models.Number(-10)
		rule, err := ValidateForSubmit(d)
		require.NoError(t, err)
		assert.Nil(t, rule.MinSpend)
	})

	t.Run("min spend kept otherwise", func(t *testing.T) {
		d := validDraft()
		d.MinSpend = models.Number(25)
		rule, err := ValidateForSubmit(d)
		require.NoError(t, err)
		require.NotNil(t, rule.MinSpend)
		assert.InDelta(t, 25.0, *rule.MinSpend, 1e-9)
	})

	t.Run("names trimmed and platform defaulted", func(t *testing.T) {
		d := validDraft()
		d.Name = "  High CPA  "
		d.AccountName = " ketomax "
		d.Platform = ""
		d.Severity = models.NumberField{}
		rule, err := ValidateForSubmit(d)
		require.NoError(t, err)
		assert.Equal(t, "High CPA", rule.Name)
		assert.Equal(t, "ketomax", rule.AccountName)
		assert.Equal(t, models.PlatformTaboola, rule.Platform)
		assert.Equal(t, models.SeverityWarning, rule.Severity)
	})

	t.Run("inactive draft stays inactive", func(t *testing.T) {
		d := validDraft()
		inactive := false
		d.IsActive = &inactive
		rule, err := ValidateForSubmit(d)
		require.NoError(t, err)
		assert.False(t, rule.IsActive)
	})
}

func TestValidateForSubmit_NonPositiveNumbersAlwaysFail(t *testing.T) {
	values := []float64{0, -0.01, -1, -1000}
	for _, v := range values {
		d := validDraft()
		d.Threshold = models.Number(v)
		_, err := ValidateForSubmit(d)
		assert.Error(t, err, "threshold %v", v)

		d = validDraft()
		d.TimeframeHours = models.Number(v)
		_, err = ValidateForSubmit(d)
		assert.Error(t, err, "timeframe %v", v)
	}
}
