package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultEmpiricalGrowthSettings(t *testing.T) {
	s := DefaultEmpiricalGrowthSettings()

	assert.NoError(t, s.Validate())
	assert.True(t, s.Automatic())
	assert.Equal(t, 5.0, s.GrowthIntervalInYears)
	assert.InDelta(t, 60/365.25, s.MaxDateErrorInYears(), 1e-15)
}

func TestEmpiricalGrowthSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EmpiricalGrowthSettings)
		wantErr bool
	}{
		{name: "explicit linear", mutate: func(s *EmpiricalGrowthSettings) { s.TypeOfEmpiricalModel = 2 }},
		{name: "negative preference", mutate: func(s *EmpiricalGrowthSettings) { s.ExponentialModelR2Preference = -0.5 }},
		{name: "zero tolerance", mutate: func(s *EmpiricalGrowthSettings) { s.MaxDateErrorInDays = 0 }},
		{name: "cyclical is internal only", mutate: func(s *EmpiricalGrowthSettings) { s.TypeOfEmpiricalModel = 4 }, wantErr: true},
		{name: "unknown model type", mutate: func(s *EmpiricalGrowthSettings) { s.TypeOfEmpiricalModel = -3 }, wantErr: true},
		{name: "zero interval", mutate: func(s *EmpiricalGrowthSettings) { s.GrowthIntervalInYears = 0 }, wantErr: true},
		{name: "negative tolerance", mutate: func(s *EmpiricalGrowthSettings) { s.MaxDateErrorInDays = -1 }, wantErr: true},
		{name: "outlier proportion above one", mutate: func(s *EmpiricalGrowthSettings) { s.MaxOutlierProportionInEmpiricalModel = 1.5 }, wantErr: true},
		{name: "zero cycle duration", mutate: func(s *EmpiricalGrowthSettings) { s.MinCycleDurationInYears = 0 }, wantErr: true},
		{name: "NaN preference", mutate: func(s *EmpiricalGrowthSettings) { s.ExponentialModelR2Preference = math.NaN() }, wantErr: true},
		{name: "infinite interval", mutate: func(s *EmpiricalGrowthSettings) { s.GrowthIntervalInYears = math.Inf(1) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultEmpiricalGrowthSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSettings)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEmpiricalGrowthSettingsModelKind(t *testing.T) {
	s := DefaultEmpiricalGrowthSettings()
	s.TypeOfEmpiricalModel = int(LinearCyclicalModel)

	assert.False(t, s.Automatic())
	assert.Equal(t, LinearCyclicalModel, s.ModelKind())
}
