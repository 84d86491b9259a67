package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSettings is wrapped by every EmpiricalGrowthSettings validation failure.
var ErrInvalidSettings = errors.New("invalid empirical growth settings")

// EmpiricalGrowthSettings configures one growth extraction run.
type EmpiricalGrowthSettings struct {
	MaxDateErrorInDays                   float64 `koanf:"max_date_error_in_days" json:"max_date_error_in_days" toml:"max_date_error_in_days"`
	GrowthIntervalInYears                float64 `koanf:"growth_interval_in_years" json:"growth_interval_in_years" toml:"growth_interval_in_years"`
	MaxOutlierProportionInEmpiricalModel float64 `koanf:"max_outlier_proportion" json:"max_outlier_proportion" toml:"max_outlier_proportion"`
	MinCycleDurationInYears              float64 `koanf:"min_cycle_duration_in_years" json:"min_cycle_duration_in_years" toml:"min_cycle_duration_in_years"`
	ExponentialModelR2Preference         float64 `koanf:"exponential_model_r2_preference" json:"exponential_model_r2_preference" toml:"exponential_model_r2_preference"`
	CalcOneGrowthRateForAllData          bool    `koanf:"one_growth_rate_for_all_data" json:"one_growth_rate_for_all_data" toml:"one_growth_rate_for_all_data"`
	TypeOfEmpiricalModel                 int     `koanf:"model_type" json:"model_type" toml:"model_type"` // -1 automatic, 0-3 explicit GrowthModelKind
}

// DefaultEmpiricalGrowthSettings returns the settings used when none are configured.
func DefaultEmpiricalGrowthSettings() EmpiricalGrowthSettings {
	return EmpiricalGrowthSettings{
		MaxDateErrorInDays:                   60,
		GrowthIntervalInYears:                5,
		MaxOutlierProportionInEmpiricalModel: 0.2,
		MinCycleDurationInYears:              2,
		ExponentialModelR2Preference:         0.02,
		CalcOneGrowthRateForAllData:          false,
		TypeOfEmpiricalModel:                 AutomaticModelSelection,
	}
}

// Automatic reports whether the model type is chosen by goodness of fit.
func (s EmpiricalGrowthSettings) Automatic() bool {
	return s.TypeOfEmpiricalModel == AutomaticModelSelection
}

// ModelKind returns the explicitly requested model kind. It is only
// meaningful when Automatic reports false.
func (s EmpiricalGrowthSettings) ModelKind() GrowthModelKind {
	return GrowthModelKind(s.TypeOfEmpiricalModel)
}

// MaxDateErrorInYears converts the date tolerance to fractional years.
func (s EmpiricalGrowthSettings) MaxDateErrorInYears() float64 {
	return s.MaxDateErrorInDays / DaysPerYear
}

// DaysPerYear is the mean Gregorian year length used for day/year conversions.
const DaysPerYear = 365.25

// Validate checks that the settings can produce a meaningful extraction.
func (s EmpiricalGrowthSettings) Validate() error {
	if s.TypeOfEmpiricalModel != AutomaticModelSelection && !s.ModelKind().Selectable() {
		return fmt.Errorf("%w: model type %d is not one of -1 (automatic), 0 (%s), 1 (%s), 2 (%s), 3 (%s)",
			ErrInvalidSettings, s.TypeOfEmpiricalModel,
			ExponentialModel, ExponentialCyclicalModel, LinearModel, LinearCyclicalModel)
	}
	checks := []struct {
		name  string
		value float64
		ok    bool
	}{
		{"max_date_error_in_days", s.MaxDateErrorInDays, s.MaxDateErrorInDays >= 0},
		{"growth_interval_in_years", s.GrowthIntervalInYears, s.GrowthIntervalInYears > 0},
		{"max_outlier_proportion", s.MaxOutlierProportionInEmpiricalModel,
			s.MaxOutlierProportionInEmpiricalModel >= 0 && s.MaxOutlierProportionInEmpiricalModel <= 1},
		{"min_cycle_duration_in_years", s.MinCycleDurationInYears, s.MinCycleDurationInYears > 0},
		{"exponential_model_r2_preference", s.ExponentialModelR2Preference, true},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) || !c.ok {
			return fmt.Errorf("%w: %s = %v", ErrInvalidSettings, c.name, c.value)
		}
	}
	return nil
}
