package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	evalmodels "corpcheck/internal/evaluation/models"
	lifecyclemodels "corpcheck/internal/lifecycle/models"
)

func record(state lifecyclemodels.StateType) *lifecyclemodels.PackageRecord {
	return &lifecyclemodels.PackageRecord{State: lifecyclemodels.State{Type: state}}
}

func result(q evalmodels.Qualification) *evalmodels.FinalEvaluation {
	return &evalmodels.FinalEvaluation{Qualification: q}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name   string
		pkg    *lifecyclemodels.PackageRecord
		result *evalmodels.FinalEvaluation
		want   State
	}{
		{"pending package is in progress", record(lifecyclemodels.StatePending), nil, StateInProgress},
		{"failed package is failed", record(lifecyclemodels.StateFailed), nil, StateFailed},
		{"succeeded without result is failed", record(lifecyclemodels.StateSucceeded), nil, StateFailed},
		{"recommended", record(lifecyclemodels.StateSucceeded), result(evalmodels.QualificationRecommended), StateRecommended},
		{"accepted", record(lifecyclemodels.StateSucceeded), result(evalmodels.QualificationAccepted), StateAccepted},
		{"rejected", record(lifecyclemodels.StateSucceeded), result(evalmodels.QualificationRejected), StateRejected},
		{"missing package is failed", nil, nil, StateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Project(tt.pkg, tt.result))
		})
	}
}
