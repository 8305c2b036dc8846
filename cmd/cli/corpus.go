package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/professor/internal/corpus"
	"github.com/sevigo/professor/internal/logger"
)

var (
	languageTargets []string
	updatesPath     string
	workItemsLimit  int
	workItemsOut    string

	updateCaseID    string
	updateSourceURL string
	updateNotes     string
	updateExpected  string
	updatePredicted string
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the benchmark corpus",
}

var corpusTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Generate a fresh corpus template",
	Long: `Generate a fresh corpus template.

Language targets default to the standard 50-case composition and can be
overridden with repeated --target flags, e.g. --target python=10 --target go=8.`,
	RunE: runCorpusTemplate,
}

var corpusStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show curation completeness of the corpus",
	RunE:  runCorpusStatus,
}

var corpusUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Apply case updates to the corpus",
	Long: `Apply case updates to the corpus.

Either pass a batch file with --updates, or update a single case with
--case-id plus the field flags. A batch is applied all-or-nothing: one
unknown case id or malformed finding aborts the whole batch.`,
	RunE: runCorpusUpdate,
}

var corpusWorkItemsCmd = &cobra.Command{
	Use:   "work-items",
	Short: "Generate a curation work-item skeleton for pending cases",
	RunE:  runCorpusWorkItems,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	corpusCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "benchmark/corpus.json", "Path to the corpus file")

	corpusTemplateCmd.Flags().StringArrayVar(&languageTargets, "target", nil, "Language target as lang=count (repeatable)")

	corpusUpdateCmd.Flags().StringVar(&updatesPath, "updates", "", "Path to a batch updates JSON file")
	corpusUpdateCmd.Flags().StringVar(&updateCaseID, "case-id", "", "Case id for a single-case update")
	corpusUpdateCmd.Flags().StringVar(&updateSourceURL, "source-url", "", "Source URL to set")
	corpusUpdateCmd.Flags().StringVar(&updateNotes, "notes", "", "Notes to set")
	corpusUpdateCmd.Flags().StringVar(&updateExpected, "expected", "", `Expected finding as "signature|severity|category"`)
	corpusUpdateCmd.Flags().StringVar(&updatePredicted, "predicted", "", `Predicted finding as "signature|severity|category"`)

	corpusWorkItemsCmd.Flags().IntVar(&workItemsLimit, "limit", 3, "Maximum pending cases per language")
	corpusWorkItemsCmd.Flags().StringVarP(&workItemsOut, "out", "o", "", "Write work items to a file instead of stdout")

	corpusCmd.AddCommand(corpusTemplateCmd)
	corpusCmd.AddCommand(corpusStatusCmd)
	corpusCmd.AddCommand(corpusUpdateCmd)
	corpusCmd.AddCommand(corpusWorkItemsCmd)
	rootCmd.AddCommand(corpusCmd)
}

func corpusStore() *corpus.Store {
	return corpus.NewStore(corpusPath, logger.New(slog.LevelWarn, "text", os.Stderr))
}

func parseTargets(raw []string) ([]corpus.LanguageTarget, error) {
	if len(raw) == 0 {
		return corpus.DefaultLanguageTargets, nil
	}
	targets := make([]corpus.LanguageTarget, 0, len(raw))
	for _, entry := range raw {
		language, countStr, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid target %q, expected lang=count", entry)
		}
		count, err := strconv.Atoi(countStr)
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("invalid case count in target %q", entry)
		}
		targets = append(targets, corpus.LanguageTarget{Language: strings.ToLower(language), Count: count})
	}
	return targets, nil
}

func parseFindingFlag(raw string) (*corpus.FindingPayload, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid finding %q, expected signature|severity|category", raw)
	}
	return &corpus.FindingPayload{
		Signature: strings.TrimSpace(parts[0]),
		Severity:  strings.TrimSpace(parts[1]),
		Category:  strings.TrimSpace(parts[2]),
	}, nil
}

func runCorpusTemplate(_ *cobra.Command, _ []string) error {
	targets, err := parseTargets(languageTargets)
	if err != nil {
		return err
	}

	doc, err := corpusStore().GenerateTemplate(targets)
	if err != nil {
		return err
	}

	successColor.Printf("Template with %d cases written to %s\n", len(doc.Cases), corpusPath)
	return nil
}

func runCorpusStatus(_ *cobra.Command, _ []string) error {
	doc, err := corpusStore().Load()
	if err != nil {
		return err
	}
	dataset, err := doc.Dataset()
	if err != nil {
		return err
	}

	status := corpus.EvaluateCuration(dataset, corpus.DefaultCurationRequirements())

	titleColor.Println("Corpus Curation Status")
	infoColor.Printf("Cases:      %d\n", status.TotalCases)
	infoColor.Printf("Curated:    %d\n", status.CuratedCases)
	infoColor.Printf("Completion: %.1f%%\n", status.CompletionRatio*100)

	languages := make([]string, 0, len(status.ByLanguage))
	for language := range status.ByLanguage {
		languages = append(languages, language)
	}
	sort.Strings(languages)
	for _, language := range languages {
		dimColor.Printf("  %-12s %.1f%%\n", language, status.ByLanguage[language]*100)
	}

	if status.Valid {
		successColor.Println("Corpus is fully curated.")
		return nil
	}
	fmt.Println()
	for _, issue := range status.Issues {
		warnColor.Printf("  - %s\n", issue)
	}
	if len(status.PendingCaseIDs) > 0 {
		dimColor.Printf("Pending cases: %s\n", strings.Join(status.PendingCaseIDs, ", "))
	}
	return nil
}

func runCorpusUpdate(_ *cobra.Command, _ []string) error {
	store := corpusStore()

	if updatesPath != "" {
		updates, err := corpus.LoadUpdates(updatesPath)
		if err != nil {
			return err
		}
		results, err := store.ApplyUpdates(updates)
		if err != nil {
			return err
		}
		successColor.Printf("Applied %d update(s)\n", len(results))
		return nil
	}

	if updateCaseID == "" {
		return fmt.Errorf("pass either --updates or --case-id")
	}

	item := corpus.UpdateItem{CaseID: updateCaseID}
	if updateSourceURL != "" {
		item.SourceURL = &updateSourceURL
	}
	if updateNotes != "" {
		item.Notes = &updateNotes
	}
	expected, err := parseFindingFlag(updateExpected)
	if err != nil {
		return err
	}
	item.ExpectedFinding = expected
	predicted, err := parseFindingFlag(updatePredicted)
	if err != nil {
		return err
	}
	item.PredictedFinding = predicted

	result, err := store.UpdateCase(item)
	if err != nil {
		return err
	}
	successColor.Printf("Updated case %s (expected: %d, predicted: %d)\n",
		result.CaseID, result.ExpectedCount, result.PredictedCount)
	return nil
}

func runCorpusWorkItems(_ *cobra.Command, _ []string) error {
	doc, err := corpusStore().Load()
	if err != nil {
		return err
	}
	dataset, err := doc.Dataset()
	if err != nil {
		return err
	}

	workItems := corpus.GenerateWorkItems(dataset, workItemsLimit)
	encoded, err := json.MarshalIndent(workItems, "", "  ")
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')

	if workItemsOut != "" {
		if err := os.WriteFile(workItemsOut, encoded, 0o644); err != nil {
			return fmt.Errorf("writing work items to %s: %w", workItemsOut, err)
		}
		successColor.Printf("%d work item(s) written to %s\n", len(workItems.Updates), workItemsOut)
		return nil
	}

	fmt.Print(string(encoded))
	return nil
}
