// Package rules defines the qualification policy and resolves caller-supplied
// partial policies over the organization defaults.
package rules

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// LicenseRule parameterizes the license evaluator. Depth is the deepest tree
// level the rule still applies to; nodes below it pass unconditionally.
type LicenseRule struct {
	LicenseRequired bool     `json:"licenseRequired"`
	Include         []string `json:"include"`
	Exclude         []string `json:"exclude"`
	Depth           int      `json:"depth"`
}

// VersionRule parameterizes the version evaluator. Within RigorousDepth a
// violation is fatal when IsRigorous is set; beyond it the violation only
// costs RetributionScore.
type VersionRule struct {
	MinVersion       string  `json:"minVersion"`
	IsRigorous       bool    `json:"isRigorous"`
	RigorousDepth    int     `json:"rigorousDepth"`
	RetributionScore float64 `json:"retributionScore"`
}

// ScoreRule weights the registry ecosystem scores.
type ScoreRule struct {
	QualityWeight     float64 `json:"qualityWeight"`
	PopularityWeight  float64 `json:"popularityWeight"`
	MaintenanceWeight float64 `json:"maintenanceWeight"`
}

// RuleSet is a fully resolved policy. The scorer never sees partial config;
// callers go through Resolve first.
type RuleSet struct {
	License   LicenseRule `json:"license"`
	Version   VersionRule `json:"version"`
	NpmScores ScoreRule   `json:"npmScores"`
}

// Default returns a fresh copy of the built-in organization policy.
func Default() RuleSet {
	return RuleSet{
		License: LicenseRule{
			LicenseRequired: false,
			Include:         []string{},
			Exclude:         []string{},
			Depth:           3,
		},
		Version: VersionRule{
			MinVersion:       "0.0.0",
			IsRigorous:       false,
			RigorousDepth:    2,
			RetributionScore: 0.5,
		},
		NpmScores: ScoreRule{
			QualityWeight:     1,
			PopularityWeight:  1,
			MaintenanceWeight: 1,
		},
	}
}

// Resolve deep-merges a partial policy document over the defaults: objects
// merge key-wise with the caller winning, scalars are replaced outright, and
// arrays are replaced wholesale. Empty or malformed input yields the defaults
// unchanged; Resolve has no failure mode.
func Resolve(raw []byte) RuleSet {
	resolved := Default()
	if len(bytes.TrimSpace(raw)) == 0 {
		return resolved
	}
	if err := json.Unmarshal(raw, &resolved); err != nil {
		return Default()
	}
	return resolved
}

// Hash returns the stable cache key for a raw policy document. Empty input
// hashes to the empty string, which is itself a valid, distinct key meaning
// "no rule set override".
func Hash(raw []byte) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
