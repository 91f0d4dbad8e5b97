package model

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrorVerdict is the verdict label used when a prediction could not be made.
const ErrorVerdict = "Errore"

// Outcome classifies a result for presentation.
type Outcome string

const (
	OutcomeError      Outcome = "error"
	OutcomeFraud      Outcome = "fraud"
	OutcomeLegitimate Outcome = "legitimate"
)

// PredictionResult is the normalised response of a prediction request.
type PredictionResult struct {
	Verdict          string  `json:"prediction"`
	IsFraud          bool    `json:"isFraud"`
	FraudProbability float64 `json:"fraudProbability"`
	ModelUsed        string  `json:"modelUsed,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// ErrorResult builds the result shape used for every failed prediction.
func ErrorResult(reason string) PredictionResult {
	return PredictionResult{
		Verdict:          ErrorVerdict,
		IsFraud:          false,
		FraudProbability: 0,
		Error:            reason,
	}
}

// Failed reports whether the result carries an error.
func (r PredictionResult) Failed() bool {
	return strings.TrimSpace(r.Error) != ""
}

// Outcome reports error, fraud, or legitimate.
func (r PredictionResult) Outcome() Outcome {
	switch {
	case r.Failed():
		return OutcomeError
	case r.IsFraud:
		return OutcomeFraud
	default:
		return OutcomeLegitimate
	}
}

// ProbabilityPercent renders the fraud probability as a percentage with two
// decimals, e.g. 0.9134 -> "91.34%".
func (r PredictionResult) ProbabilityPercent() string {
	return decimal.NewFromFloat(r.FraudProbability).
		Mul(decimal.NewFromInt(100)).
		StringFixed(2) + "%"
}

func sortedKeys(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
