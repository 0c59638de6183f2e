// Package badge maps a package record and its evaluation outcome to one of
// the five fixed visual states served on the badge endpoint. It consumes only
// the lifecycle's public state enum and the qualification verdict; rendering
// the image itself is someone else's job.
package badge

import (
	evalmodels "corpcheck/internal/evaluation/models"
	lifecyclemodels "corpcheck/internal/lifecycle/models"
)

// State is a badge's visual state.
type State string

const (
	StateInProgress  State = "in-progress"
	StateFailed      State = "failed"
	StateRecommended State = "recommended"
	StateAccepted    State = "accepted"
	StateRejected    State = "rejected"
)

// Project derives the badge state. A package without a usable result shows as
// failed rather than leaking an intermediate condition.
func Project(pkg *lifecyclemodels.PackageRecord, result *evalmodels.FinalEvaluation) State {
	if pkg == nil {
		return StateFailed
	}
	switch pkg.State.Type {
	case lifecyclemodels.StatePending:
		return StateInProgress
	case lifecyclemodels.StateSucceeded:
		if result == nil {
			return StateFailed
		}
		switch result.Qualification {
		case evalmodels.QualificationRecommended:
			return StateRecommended
		case evalmodels.QualificationAccepted:
			return StateAccepted
		default:
			return StateRejected
		}
	default:
		return StateFailed
	}
}
