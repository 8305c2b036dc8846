package benchmark

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Report bundles the aggregate metrics with both scorecard groupings. It is
// the structured rendering of a benchmark run.
type Report struct {
	Aggregate            aggregateBlock `json:"aggregate"`
	LanguageScorecards   []Scorecard    `json:"language_scorecards"`
	RepoFamilyScorecards []Scorecard    `json:"repo_family_scorecards"`
}

type aggregateBlock struct {
	TotalCases       int     `json:"total_cases"`
	MeanPrecision    float64 `json:"mean_precision"`
	MeanRecall       float64 `json:"mean_recall"`
	MeanF1           float64 `json:"mean_f1"`
	MeanSevereRecall float64 `json:"mean_severe_recall"`
	VerdictAccuracy  float64 `json:"verdict_accuracy"`
}

// NewReport evaluates the dataset once and assembles both renderable views.
func NewReport(dataset Dataset) Report {
	metrics := Evaluate(dataset)
	return Report{
		Aggregate: aggregateBlock{
			TotalCases:       metrics.TotalCases,
			MeanPrecision:    metrics.MeanPrecision,
			MeanRecall:       metrics.MeanRecall,
			MeanF1:           metrics.MeanF1,
			MeanSevereRecall: metrics.MeanSevereRecall,
			VerdictAccuracy:  metrics.VerdictAccuracy,
		},
		LanguageScorecards:   ScorecardsByLanguage(dataset),
		RepoFamilyScorecards: ScorecardsByRepoFamily(dataset),
	}
}

// Markdown renders the report as a tabular text document.
func (r Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Benchmark Report\n\n")
	b.WriteString("## Aggregate\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | ---: |\n")
	fmt.Fprintf(&b, "| Cases | %d |\n", r.Aggregate.TotalCases)
	fmt.Fprintf(&b, "| Mean Precision | %.4f |\n", r.Aggregate.MeanPrecision)
	fmt.Fprintf(&b, "| Mean Recall | %.4f |\n", r.Aggregate.MeanRecall)
	fmt.Fprintf(&b, "| Mean F1 | %.4f |\n", r.Aggregate.MeanF1)
	fmt.Fprintf(&b, "| Severe Recall | %.4f |\n", r.Aggregate.MeanSevereRecall)
	fmt.Fprintf(&b, "| Verdict Accuracy | %.4f |\n", r.Aggregate.VerdictAccuracy)

	writeCards := func(heading, keyColumn string, cards []Scorecard) {
		fmt.Fprintf(&b, "\n## %s\n\n", heading)
		fmt.Fprintf(&b, "| %s | Cases | Precision | Recall | F1 | Severe Recall | Verdict Accuracy |\n", keyColumn)
		b.WriteString("| --- | ---: | ---: | ---: | ---: | ---: | ---: |\n")
		for _, card := range cards {
			fmt.Fprintf(&b, "| %s | %d | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
				card.Group, card.Cases, card.MeanPrecision, card.MeanRecall,
				card.MeanF1, card.SevereRecall, card.VerdictAccuracy)
		}
	}
	writeCards("By Language", "Language", r.LanguageScorecards)
	writeCards("By Repo Family", "Repo Family", r.RepoFamilyScorecards)

	return b.String()
}

// JSON renders the report as an indented JSON document.
func (r Report) JSON() (string, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render benchmark report: %w", err)
	}
	return string(out), nil
}
