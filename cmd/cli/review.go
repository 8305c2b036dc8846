package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/professor/internal/analyzer"
	"github.com/sevigo/professor/internal/core"
	"github.com/sevigo/professor/internal/llm"
	"github.com/sevigo/professor/internal/logger"
	"github.com/sevigo/professor/internal/scm"
	"github.com/sevigo/professor/internal/verdict"
)

var (
	verbose     bool
	noLLM       bool
	llmProvider string
	llmModel    string
	llmHost     string
)

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url]",
	Short: "Run a code review for a GitHub Pull Request",
	Long: `Run a code review for a GitHub Pull Request.

The review command fetches the changed files, runs the deterministic and
model-backed analyzers over each file, and prints the findings and verdict.

Examples:
  professor-cli review https://github.com/owner/repo/pull/123
  professor-cli review --no-llm https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
	reviewCmd.Flags().BoolVar(&noLLM, "no-llm", false, "Run only the deterministic analyzers")
	reviewCmd.Flags().StringVar(&llmProvider, "provider", "ollama", "LLM provider")
	reviewCmd.Flags().StringVar(&llmModel, "model", "gemma3:latest", "LLM model name")
	reviewCmd.Flags().StringVar(&llmHost, "llm-host", "", "LLM host URL")
	rootCmd.AddCommand(reviewCmd)
}

// stepTimer tracks timing for verbose output
type stepTimer struct {
	stepNum    int
	totalSteps int
	start      time.Time
	verbose    bool
}

func newStepTimer(totalSteps int, verbose bool) *stepTimer {
	return &stepTimer{totalSteps: totalSteps, verbose: verbose}
}

func (t *stepTimer) step(name string) {
	t.stepNum++
	t.start = time.Now()
	if t.verbose {
		titleColor.Printf("\nStep %d/%d: %s...\n", t.stepNum, t.totalSteps, name)
	} else {
		fmt.Printf("%s...\n", name)
	}
}

func (t *stepTimer) done(details ...string) {
	if t.verbose {
		elapsed := time.Since(t.start).Round(time.Millisecond)
		successColor.Printf("   done (%s)\n", elapsed)
		for _, d := range details {
			dimColor.Printf("   %s\n", d)
		}
	}
}

func (t *stepTimer) info(format string, args ...any) {
	if t.verbose {
		dimColor.Printf("   "+format+"\n", args...)
	}
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	prURL := args[0]

	timer := newStepTimer(4, verbose)
	overallStart := time.Now()

	titleColor.Println("Professor - PR Review")
	dimColor.Printf("   Target: %s\n\n", prURL)

	log := logger.New(slog.LevelWarn, "text", os.Stderr)

	// 1. Fetch PR metadata
	timer.step("Fetching PR metadata")
	owner, repoName, prNumber, err := scm.ParsePullRequestURL(prURL)
	if err != nil {
		return fmt.Errorf("invalid PR URL: %w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
	}

	token := viper.GetString("GITHUB_TOKEN")
	if token == "" {
		return fmt.Errorf("GITHUB_TOKEN is not set\n\nTip: Set PROF_GITHUB_TOKEN or pass --github-token")
	}
	client := scm.NewPATClient(ctx, token, log)

	pr, err := client.GetPullRequest(ctx, owner, repoName, prNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch PR: %w\n\nTip: Check that the PR exists and your token has access", err)
	}
	headSHA := pr.GetHead().GetSHA()
	language := strings.ToLower(pr.GetBase().GetRepo().GetLanguage())

	timer.info("PR #%d: %s", pr.GetNumber(), pr.GetTitle())
	timer.info("Head SHA: %s", truncateSHA(headSHA))
	timer.info("Language: %s", language)
	timer.done()

	// 2. Build the analyzer set
	timer.step("Preparing analyzers")
	router := analyzer.NewRouter()
	router.RegisterGlobal(analyzer.NewSecurityAnalyzer(log))
	if !noLLM {
		provider, err := llm.New(llmProvider, llm.Options{
			Model:  llmModel,
			Host:   llmHost,
			APIKey: viper.GetString("LLM_API_KEY"),
		})
		if err != nil {
			return fmt.Errorf("failed to create LLM provider: %w", err)
		}
		router.RegisterGlobal(llm.NewAnalyzer(provider, log))
	}
	timer.done()

	// 3. Fetch and analyze changed files
	timer.step("Analyzing changed files")
	files, err := client.GetChangedFiles(ctx, owner, repoName, prNumber)
	if err != nil {
		return fmt.Errorf("failed to list changed files: %w", err)
	}

	review := core.NewReview("")
	if err := review.MarkInProgress(); err != nil {
		return err
	}
	for _, file := range files {
		if file.Status == "removed" {
			continue
		}
		code, err := client.GetFileContent(ctx, owner, repoName, file.Filename, headSHA)
		if err != nil {
			warnColor.Printf("   skipping %s: %v\n", file.Filename, err)
			continue
		}
		in := analyzer.Context{
			FilePath: file.Filename,
			Code:     code,
			Diff:     file.Patch,
			Language: language,
			Status:   file.Status,
		}
		findings, err := analyzer.NewComposite(router.AnalyzersFor(language, &in)...).Analyze(ctx, in)
		if err != nil {
			warnColor.Printf("   skipping %s: %v\n", file.Filename, err)
			continue
		}
		for _, f := range findings {
			review.AddFinding(f)
		}
		review.Summary.FilesAnalyzed++
		timer.info("%s: %d finding(s)", file.Filename, len(findings))
	}
	if err := review.MarkCompleted(); err != nil {
		return err
	}
	timer.done()

	// 4. Verdict
	timer.step("Evaluating verdict")
	result := verdict.DefaultPolicy().Evaluate(review.Summary)
	timer.done()

	if verbose {
		dimColor.Printf("\nTotal time: %s\n", time.Since(overallStart).Round(time.Millisecond))
	}

	printReview(review, result)
	return nil
}

func truncateSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func printReview(review *core.Review, result verdict.Result) {
	separator := strings.Repeat("=", 60)
	thinSeparator := strings.Repeat("-", 60)

	fmt.Println()
	titleColor.Println(separator)
	titleColor.Println("REVIEW SUMMARY")
	titleColor.Println(separator)
	fmt.Println()

	if result.Approved {
		successColor.Printf("Verdict: %s", strings.ToUpper(result.Verdict))
	} else {
		errorColor.Printf("Verdict: %s", strings.ToUpper(result.Verdict))
	}
	dimColor.Printf(" (confidence %.2f)\n", result.Confidence)
	infoColor.Printf("Files analyzed: %d\n", review.Summary.FilesAnalyzed)

	if review.Summary.TotalFindings == 0 {
		fmt.Println()
		successColor.Println("No issues found!")
		return
	}

	fmt.Println()
	warnColor.Println(thinSeparator)
	warnColor.Printf("FINDINGS (%d)\n", review.Summary.TotalFindings)
	warnColor.Println(thinSeparator)

	for i, f := range review.Findings {
		fmt.Println()
		printSeverityBadge(f.Severity)
		boldColor.Printf(" %s", f.Location.FilePath)
		dimColor.Printf(":%d\n", f.Location.StartLine)
		dimColor.Printf("   Category: %s | Analyzer: %s\n", f.Category, f.Analyzer)
		fmt.Println()
		infoColor.Printf("%s\n", f.Title)
		if f.Message != "" {
			infoColor.Printf("%s\n", f.Message)
		}
		if f.Suggestion != "" {
			dimColor.Printf("Suggestion: %s\n", f.Suggestion)
		}

		if i < len(review.Findings)-1 {
			fmt.Println()
			dimColor.Println(strings.Repeat("-", 40))
		}
	}
	fmt.Println()
}

func printSeverityBadge(severity core.Severity) {
	switch severity {
	case core.SeverityCritical:
		color.New(color.BgRed, color.FgWhite, color.Bold).Printf(" %s ", severity)
	case core.SeverityHigh:
		color.New(color.BgHiRed, color.FgWhite).Printf(" %s ", severity)
	case core.SeverityMedium:
		color.New(color.BgYellow, color.FgBlack).Printf(" %s ", severity)
	case core.SeverityLow:
		color.New(color.BgGreen, color.FgWhite).Printf(" %s ", severity)
	default:
		color.New(color.BgWhite, color.FgBlack).Printf(" %s ", severity)
	}
}
