package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/professor/internal/benchmark"
	"github.com/sevigo/professor/internal/corpus"
	"github.com/sevigo/professor/internal/db"
	"github.com/sevigo/professor/internal/logger"
	"github.com/sevigo/professor/internal/storage"
)

var (
	corpusPath   string
	outputJSON   bool
	reportOut    string
	saveRun      bool
	historyLimit int
	minPrecision float64
	minRecall    float64
	minF1        float64
	minSevere    float64
	minVerdict   float64

	minCases       int
	minPerLanguage int
	skipCoverage   bool
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Evaluate review quality against the labeled corpus",
}

var benchmarkRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute precision/recall metrics over the corpus",
	RunE:  runBenchmark,
}

var benchmarkGateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Check the corpus metrics against release thresholds",
	Long: `Check the corpus metrics against release thresholds.

The command exits non-zero when any metric is below its floor, so it can be
used directly in CI pipelines.`,
	RunE: runGate,
}

var benchmarkReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the full benchmark report",
	RunE:  runReport,
}

var benchmarkHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List persisted benchmark runs",
	Long: `List persisted benchmark runs, newest first.

Requires a configured database (PROF_DATABASE_DSN).`,
	RunE: runHistory,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	benchmarkCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "benchmark/corpus.json", "Path to the corpus file")

	benchmarkRunCmd.Flags().BoolVar(&outputJSON, "json", false, "Print metrics as JSON")
	benchmarkRunCmd.Flags().BoolVar(&saveRun, "save", false, "Persist the run to the database")

	defaults := benchmark.DefaultGateThresholds()
	benchmarkGateCmd.Flags().Float64Var(&minPrecision, "min-precision", defaults.MinMeanPrecision, "Minimum mean precision")
	benchmarkGateCmd.Flags().Float64Var(&minRecall, "min-recall", defaults.MinMeanRecall, "Minimum mean recall")
	benchmarkGateCmd.Flags().Float64Var(&minF1, "min-f1", defaults.MinMeanF1, "Minimum mean F1")
	benchmarkGateCmd.Flags().Float64Var(&minSevere, "min-severe-recall", defaults.MinSevereRecall, "Minimum mean severe recall")
	benchmarkGateCmd.Flags().Float64Var(&minVerdict, "min-verdict-accuracy", defaults.MinVerdictAccuracy, "Minimum verdict accuracy")
	benchmarkGateCmd.Flags().IntVar(&minCases, "min-cases", 50, "Minimum total corpus cases")
	benchmarkGateCmd.Flags().IntVar(&minPerLanguage, "min-cases-per-language", 5, "Minimum cases per required language")
	benchmarkGateCmd.Flags().BoolVar(&skipCoverage, "skip-coverage", false, "Skip the corpus coverage check")

	benchmarkReportCmd.Flags().BoolVar(&outputJSON, "json", false, "Render the report as JSON instead of Markdown")
	benchmarkReportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Write the report to a file instead of stdout")

	benchmarkHistoryCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum number of runs to list")

	benchmarkCmd.AddCommand(benchmarkRunCmd)
	benchmarkCmd.AddCommand(benchmarkGateCmd)
	benchmarkCmd.AddCommand(benchmarkReportCmd)
	benchmarkCmd.AddCommand(benchmarkHistoryCmd)
	rootCmd.AddCommand(benchmarkCmd)
}

func openBenchmarkStore() (storage.BenchmarkStore, func(), error) {
	dsn := viper.GetString("DATABASE_DSN")
	if dsn == "" {
		return nil, nil, fmt.Errorf("PROF_DATABASE_DSN is not set")
	}
	dbConn, cleanup, err := db.NewDatabase(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return storage.NewBenchmarkStore(dbConn.DB), cleanup, nil
}

func loadDataset() (benchmark.Dataset, error) {
	store := corpus.NewStore(corpusPath, logger.New(slog.LevelWarn, "text", os.Stderr))
	doc, err := store.Load()
	if err != nil {
		return benchmark.Dataset{}, err
	}
	return doc.Dataset()
}

func runBenchmark(_ *cobra.Command, _ []string) error {
	dataset, err := loadDataset()
	if err != nil {
		return err
	}

	metrics := benchmark.Evaluate(dataset)

	if outputJSON {
		encoded, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
	} else {
		titleColor.Println("Benchmark Results")
		infoColor.Printf("Cases:            %d\n", metrics.TotalCases)
		infoColor.Printf("Mean precision:   %.4f\n", metrics.MeanPrecision)
		infoColor.Printf("Mean recall:      %.4f\n", metrics.MeanRecall)
		infoColor.Printf("Mean F1:          %.4f\n", metrics.MeanF1)
		infoColor.Printf("Severe recall:    %.4f\n", metrics.MeanSevereRecall)
		infoColor.Printf("Verdict accuracy: %.4f\n", metrics.VerdictAccuracy)
	}

	if !saveRun {
		return nil
	}

	store, cleanup, err := openBenchmarkStore()
	if err != nil {
		return err
	}
	defer cleanup()

	gatePassed := benchmark.EvaluateGate(metrics, benchmark.DefaultGateThresholds()).Passed
	report := benchmark.NewReport(dataset)
	id, err := store.SaveRun(context.Background(), storage.BenchmarkRun{
		CorpusPath: corpusPath,
		Metrics:    metrics,
		GatePassed: &gatePassed,
		Report:     &report,
	})
	if err != nil {
		return fmt.Errorf("failed to persist benchmark run: %w", err)
	}
	successColor.Printf("Run saved as %s\n", id)
	return nil
}

func runHistory(_ *cobra.Command, _ []string) error {
	store, cleanup, err := openBenchmarkStore()
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := store.ListRuns(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list benchmark runs: %w", err)
	}
	if len(runs) == 0 {
		infoColor.Println("No benchmark runs recorded.")
		return nil
	}

	titleColor.Println("Benchmark History")
	for _, run := range runs {
		gate := "-"
		if run.GatePassed != nil {
			if *run.GatePassed {
				gate = "passed"
			} else {
				gate = "failed"
			}
		}
		infoColor.Printf("%s  %s  cases=%d  f1=%.4f  gate=%s\n",
			run.CreatedAt.Format("2006-01-02 15:04"), shortRunID(run.ID),
			run.Metrics.TotalCases, run.Metrics.MeanF1, gate)
	}
	return nil
}

// shortRunID abbreviates a UUID run id; ids from other sources may be shorter
// and are printed as-is.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runGate(_ *cobra.Command, _ []string) error {
	dataset, err := loadDataset()
	if err != nil {
		return err
	}

	var failures []string
	if !skipCoverage {
		coverage := benchmark.ValidateCoverage(dataset, minCases, benchmark.DefaultRequiredLanguages, minPerLanguage)
		failures = append(failures, coverage.Issues...)
	}

	thresholds := benchmark.GateThresholds{
		MinMeanPrecision:   minPrecision,
		MinMeanRecall:      minRecall,
		MinMeanF1:          minF1,
		MinSevereRecall:    minSevere,
		MinVerdictAccuracy: minVerdict,
	}
	result := benchmark.EvaluateGate(benchmark.Evaluate(dataset), thresholds)
	failures = append(failures, result.FailedChecks...)

	if len(failures) == 0 {
		successColor.Println("Release gate PASSED")
		return nil
	}

	errorColor.Println("Release gate FAILED")
	for _, failure := range failures {
		errorColor.Printf("  - %s\n", failure)
	}
	return fmt.Errorf("release gate failed with %d violation(s)", len(failures))
}

func runReport(_ *cobra.Command, _ []string) error {
	dataset, err := loadDataset()
	if err != nil {
		return err
	}

	report := benchmark.NewReport(dataset)

	var rendered string
	if outputJSON {
		rendered, err = report.JSON()
		if err != nil {
			return err
		}
	} else {
		rendered = report.Markdown()
	}

	if reportOut != "" {
		if err := os.WriteFile(reportOut, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("writing report to %s: %w", reportOut, err)
		}
		successColor.Printf("Report written to %s\n", reportOut)
		return nil
	}

	fmt.Println(rendered)
	return nil
}
