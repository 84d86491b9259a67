package growth

import (
	"fmt"

	"github.com/panbanda/fundgrowth/pkg/analyzer/cyclical"
	"github.com/panbanda/fundgrowth/pkg/analyzer/regression"
	"github.com/panbanda/fundgrowth/pkg/models"
)

// Fit runs the fitter for an explicitly selected model kind.
// Fit panics if kind is not selectable; settings are expected to have
// passed EmpiricalGrowthSettings.Validate.
func Fit(kind models.GrowthModelKind, x, y []float64, s models.EmpiricalGrowthSettings) models.EmpiricalGrowthModel {
	switch kind {
	case models.ExponentialModel:
		return regression.FitExponentialGrowthModel(x, y, s.MaxOutlierProportionInEmpiricalModel)
	case models.ExponentialCyclicalModel:
		return cyclical.FitCyclicalModelWithExponentialBaseline(x, y,
			s.MinCycleDurationInYears, s.MaxOutlierProportionInEmpiricalModel)
	case models.LinearModel:
		return regression.FitLinearGrowthModel(x, y, false)
	case models.LinearCyclicalModel:
		return cyclical.FitCyclicalModelWithLinearBaseline(x, y, s.MinCycleDurationInYears)
	default:
		panic(fmt.Sprintf("growth: model type %d cannot be selected explicitly", int(kind)))
	}
}

// SelectModel fits a growth model to one window of a metric.
//
// With an explicit model type that fitter alone runs. In automatic mode the
// exponential and linear trendlines are fitted independently; the
// exponential family wins when it is valid and either its R² plus the
// configured preference exceeds the linear R² or the linear fit is not
// valid. Otherwise a valid linear fit wins. The winner is refitted with its
// cyclical component.
//
// The second result is false when no valid model exists for the window.
func SelectModel(x, y []float64, s models.EmpiricalGrowthSettings) (models.EmpiricalGrowthModel, bool) {
	if !s.Automatic() {
		m := Fit(s.ModelKind(), x, y, s)
		return m, m.ValidFitting
	}

	exp := regression.FitExponentialGrowthModel(x, y, s.MaxOutlierProportionInEmpiricalModel)
	lin := regression.FitLinearGrowthModel(x, y, false)

	var kind models.GrowthModelKind
	switch {
	case exp.ValidFitting && (exp.R2+s.ExponentialModelR2Preference > lin.R2 || !lin.ValidFitting):
		kind = models.ExponentialCyclicalModel
	case lin.ValidFitting:
		kind = models.LinearCyclicalModel
	default:
		return models.EmpiricalGrowthModel{}, false
	}

	m := Fit(kind, x, y, s)
	return m, m.ValidFitting
}
