package benchmark

import "fmt"

// GateThresholds are the five independent floors an aggregate-metrics
// snapshot must meet before the detection pipeline may ship.
type GateThresholds struct {
	MinMeanPrecision   float64 `json:"min_mean_precision"`
	MinMeanRecall      float64 `json:"min_mean_recall"`
	MinMeanF1          float64 `json:"min_mean_f1"`
	MinSevereRecall    float64 `json:"min_severe_recall"`
	MinVerdictAccuracy float64 `json:"min_verdict_accuracy"`
}

// DefaultGateThresholds returns the standard release floors.
func DefaultGateThresholds() GateThresholds {
	return GateThresholds{
		MinMeanPrecision:   0.9,
		MinMeanRecall:      0.85,
		MinMeanF1:          0.87,
		MinSevereRecall:    0.95,
		MinVerdictAccuracy: 0.9,
	}
}

// GateResult is the release decision. FailedChecks lists every floor that was
// missed, in a fixed order, rendered for diagnostic reporting.
type GateResult struct {
	Passed       bool           `json:"passed"`
	FailedChecks []string       `json:"failed_checks"`
	Thresholds   GateThresholds `json:"thresholds"`
}

// EvaluateGate compares an aggregate snapshot to the thresholds. The gate
// passes only when every metric meets or exceeds its floor.
func EvaluateGate(metrics Metrics, thresholds GateThresholds) GateResult {
	var failures []string
	check := func(name string, actual, floor float64) {
		if actual < floor {
			failures = append(failures, fmt.Sprintf("%s %.4f < %.4f", name, actual, floor))
		}
	}

	check("mean_precision", metrics.MeanPrecision, thresholds.MinMeanPrecision)
	check("mean_recall", metrics.MeanRecall, thresholds.MinMeanRecall)
	check("mean_f1", metrics.MeanF1, thresholds.MinMeanF1)
	check("mean_severe_recall", metrics.MeanSevereRecall, thresholds.MinSevereRecall)
	check("verdict_accuracy", metrics.VerdictAccuracy, thresholds.MinVerdictAccuracy)

	return GateResult{
		Passed:       len(failures) == 0,
		FailedChecks: failures,
		Thresholds:   thresholds,
	}
}
