package benchmark

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// round4 rounds ratio metrics to four decimals for reporting.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// safeDiv returns 0 when the denominator is 0.
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// keySet builds the set of exact match keys, optionally restricted to severe
// findings.
func keySet(findings []LabeledFinding, severeOnly bool) map[string]struct{} {
	set := make(map[string]struct{}, len(findings))
	for _, f := range findings {
		if severeOnly && !f.Severity.IsSevere() {
			continue
		}
		set[f.matchKey()] = struct{}{}
	}
	return set
}

func intersectionSize(a, b map[string]struct{}) int {
	n := 0
	for key := range a {
		if _, ok := b[key]; ok {
			n++
		}
	}
	return n
}

// inferBlocked reports whether any severe finding is present; used when a
// case carries no explicit blocked verdict.
func inferBlocked(findings []LabeledFinding) bool {
	for _, f := range findings {
		if f.Severity.IsSevere() {
			return true
		}
	}
	return false
}

// EvaluateCase scores one labeled case: set-exact precision/recall/F1 over
// (signature, severity, category) keys, severe recall over the severe subset,
// and verdict correctness from the explicit or inferred blocked booleans.
func EvaluateCase(c Case) CaseMetrics {
	expected := keySet(c.Expected, false)
	predicted := keySet(c.Predicted, false)

	tp := intersectionSize(expected, predicted)
	fp := len(predicted) - tp
	fn := len(expected) - tp

	precision := safeDiv(float64(tp), float64(tp+fp))
	recall := safeDiv(float64(tp), float64(tp+fn))
	f1 := safeDiv(2*precision*recall, precision+recall)

	expectedSevere := keySet(c.Expected, true)
	predictedSevere := keySet(c.Predicted, true)
	severeTP := intersectionSize(expectedSevere, predictedSevere)
	severeRecall := safeDiv(float64(severeTP), float64(len(expectedSevere)))

	expectedBlocked := inferBlocked(c.Expected)
	if c.ExpectedBlocked != nil {
		expectedBlocked = *c.ExpectedBlocked
	}
	predictedBlocked := inferBlocked(c.Predicted)
	if c.PredictedBlocked != nil {
		predictedBlocked = *c.PredictedBlocked
	}

	return CaseMetrics{
		CaseID:         c.CaseID,
		Language:       c.Language,
		TP:             tp,
		FP:             fp,
		FN:             fn,
		Precision:      round4(precision),
		Recall:         round4(recall),
		F1:             round4(f1),
		SevereRecall:   round4(severeRecall),
		VerdictCorrect: expectedBlocked == predictedBlocked,
	}
}

// aggregate means case metrics; callers guarantee len(metrics) > 0.
func aggregate(metrics []CaseMetrics) (precision, recall, f1, severeRecall, verdictAccuracy float64) {
	var sumP, sumR, sumF, sumS float64
	correct := 0
	for _, m := range metrics {
		sumP += m.Precision
		sumR += m.Recall
		sumF += m.F1
		sumS += m.SevereRecall
		if m.VerdictCorrect {
			correct++
		}
	}
	total := float64(len(metrics))
	return round4(sumP / total), round4(sumR / total), round4(sumF / total),
		round4(sumS / total), round4(float64(correct) / total)
}

// Evaluate scores every case in the dataset and means the ratio metrics. An
// empty dataset yields all-zero metrics with TotalCases 0.
func Evaluate(dataset Dataset) Metrics {
	if len(dataset.Cases) == 0 {
		return Metrics{CaseMetrics: []CaseMetrics{}}
	}

	caseMetrics := make([]CaseMetrics, 0, len(dataset.Cases))
	for _, c := range dataset.Cases {
		caseMetrics = append(caseMetrics, EvaluateCase(c))
	}

	precision, recall, f1, severeRecall, verdictAccuracy := aggregate(caseMetrics)
	return Metrics{
		CaseMetrics:      caseMetrics,
		TotalCases:       len(caseMetrics),
		MeanPrecision:    precision,
		MeanRecall:       recall,
		MeanF1:           f1,
		MeanSevereRecall: severeRecall,
		VerdictAccuracy:  verdictAccuracy,
	}
}

// scorecards groups cases by the lower-cased key and reports aggregate
// metrics per group, sorted by group key ascending.
func scorecards(dataset Dataset, keyOf func(Case) string) []Scorecard {
	grouped := map[string][]CaseMetrics{}
	for _, c := range dataset.Cases {
		key := strings.ToLower(keyOf(c))
		grouped[key] = append(grouped[key], EvaluateCase(c))
	}

	groups := make([]string, 0, len(grouped))
	for group := range grouped {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	cards := make([]Scorecard, 0, len(groups))
	for _, group := range groups {
		metrics := grouped[group]
		precision, recall, f1, severeRecall, verdictAccuracy := aggregate(metrics)
		cards = append(cards, Scorecard{
			Group:           group,
			Cases:           len(metrics),
			MeanPrecision:   precision,
			MeanRecall:      recall,
			MeanF1:          f1,
			SevereRecall:    severeRecall,
			VerdictAccuracy: verdictAccuracy,
		})
	}
	return cards
}

// ScorecardsByLanguage computes per-language scorecards.
func ScorecardsByLanguage(dataset Dataset) []Scorecard {
	return scorecards(dataset, func(c Case) string { return c.Language })
}

// ScorecardsByRepoFamily computes per-repository-family scorecards.
func ScorecardsByRepoFamily(dataset Dataset) []Scorecard {
	return scorecards(dataset, func(c Case) string { return c.RepoFamily })
}

// DefaultRequiredLanguages is the language coverage expected of a corpus
// ready for reliable benchmarking.
var DefaultRequiredLanguages = []string{"python", "javascript", "typescript", "java", "go", "rust", "cpp"}

// ValidateCoverage checks that the labeled corpus is large and balanced
// enough for reliable benchmarking. Failures come back as human-readable
// issue strings, never as errors, so callers can treat them as warnings.
func ValidateCoverage(dataset Dataset, minTotalCases int, requiredLanguages []string, minCasesPerLanguage int) CoverageValidation {
	if requiredLanguages == nil {
		requiredLanguages = DefaultRequiredLanguages
	}

	languageCounts := map[string]int{}
	for _, c := range dataset.Cases {
		languageCounts[strings.ToLower(c.Language)]++
	}

	var issues []string
	totalCases := len(dataset.Cases)
	if totalCases < minTotalCases {
		issues = append(issues, fmt.Sprintf("Dataset has %d cases; requires at least %d.", totalCases, minTotalCases))
	}
	for _, language := range requiredLanguages {
		count := languageCounts[strings.ToLower(language)]
		if count < minCasesPerLanguage {
			issues = append(issues, fmt.Sprintf("Language %q has %d cases; requires at least %d.", language, count, minCasesPerLanguage))
		}
	}

	return CoverageValidation{
		Valid:          len(issues) == 0,
		Issues:         issues,
		TotalCases:     totalCases,
		LanguageCounts: languageCounts,
	}
}
