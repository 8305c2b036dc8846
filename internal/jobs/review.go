package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/professor/internal/analyzer"
	"github.com/sevigo/professor/internal/config"
	"github.com/sevigo/professor/internal/core"
	"github.com/sevigo/professor/internal/scm"
	"github.com/sevigo/professor/internal/storage"
	"github.com/sevigo/professor/internal/verdict"
)

// ReviewJob runs the full review pipeline for one pull request: fetch the
// changed files, run the analyzer fan-out per file, decide the verdict and
// report everything back to the pull request.
type ReviewJob struct {
	clientFactory scm.ClientFactory
	router        *analyzer.Router
	store         storage.ReviewStore
	defaultPolicy *core.ReviewPolicy
	logger        *slog.Logger
}

// NewReviewJob creates a new ReviewJob. The store may be nil; persistence is
// then skipped. A nil defaultPolicy falls back to the built-in defaults; it is
// used whenever a repository carries no .professor.yml.
func NewReviewJob(clientFactory scm.ClientFactory, router *analyzer.Router, store storage.ReviewStore, defaultPolicy *core.ReviewPolicy, logger *slog.Logger) *ReviewJob {
	if clientFactory == nil {
		panic("client factory cannot be nil")
	}
	if router == nil {
		panic("analyzer router cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if defaultPolicy == nil {
		defaultPolicy = core.DefaultReviewPolicy()
	}
	return &ReviewJob{
		clientFactory: clientFactory,
		router:        router,
		store:         store,
		defaultPolicy: defaultPolicy,
		logger:        logger,
	}
}

// Run executes the code review job for a given review event.
func (j *ReviewJob) Run(ctx context.Context, event *core.ReviewEvent) error {
	if err := validateEvent(event); err != nil {
		j.logger.Error("input validation failed", "error", err)
		return fmt.Errorf("input validation failed: %w", err)
	}

	j.logger.Info("starting review job", "repo", event.RepoFullName, "pr", event.PRNumber)

	client, err := j.clientFactory(ctx, event.InstallationID)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	pr, err := client.GetPullRequest(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return fmt.Errorf("failed to get PR details: %w", err)
	}
	if pr.GetHead() == nil || pr.GetHead().GetSHA() == "" {
		return fmt.Errorf("PR %d has no valid head SHA", event.PRNumber)
	}
	event.HeadSHA = pr.GetHead().GetSHA()

	reporter := scm.NewReporter(client)
	checkRunID, err := reporter.InProgress(ctx, event, "Code Review", "Analysis in progress...")
	if err != nil {
		return fmt.Errorf("failed to set in-progress status: %w", err)
	}

	policy := j.loadPolicy(ctx, client, event)

	files, err := client.GetChangedFiles(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		j.completeOnError(ctx, reporter, event, checkRunID, "Failed to list changed files")
		return fmt.Errorf("failed to list changed files: %w", err)
	}

	review := core.NewReview("")
	review.Metadata["repo"] = event.RepoFullName
	review.Metadata["head_sha"] = event.HeadSHA
	if err := review.MarkInProgress(); err != nil {
		return err
	}

	j.analyzeFiles(ctx, client, event, policy, files, review)

	if err := review.MarkCompleted(); err != nil {
		return err
	}

	result := verdict.Policy{
		MaxCritical: policy.MaxCriticalIssues,
		MaxHigh:     policy.MaxHighIssues,
	}.Evaluate(review.Summary)

	if err := reporter.PostReview(ctx, event, review, result); err != nil {
		j.completeOnError(ctx, reporter, event, checkRunID, "Failed to post review comment")
		return fmt.Errorf("failed to post review comment: %w", err)
	}

	conclusion := "success"
	title := "Review Complete"
	summary := fmt.Sprintf("%d finding(s), verdict: %s", review.Summary.TotalFindings, result.Verdict)
	if !result.Approved {
		conclusion = "failure"
		title = "Changes Requested"
	}
	if err := reporter.Completed(ctx, event, checkRunID, conclusion, title, summary); err != nil {
		return fmt.Errorf("failed to update completion status: %w", err)
	}

	j.persist(ctx, event, review, result)

	j.logger.Info("review job completed",
		"repo", event.RepoFullName, "pr", event.PRNumber,
		"findings", review.Summary.TotalFindings, "verdict", result.Verdict)
	return nil
}

// analyzeFiles runs the analyzer fan-out per changed file. A failing file is
// logged and skipped so one unreadable file never aborts the whole review.
func (j *ReviewJob) analyzeFiles(ctx context.Context, client scm.Client, event *core.ReviewEvent, policy *core.ReviewPolicy, files []scm.ChangedFile, review *core.Review) {
	for _, file := range files {
		if !shouldReview(file, policy) {
			j.logger.Debug("skipping excluded file", "file", file.Filename)
			continue
		}

		code, err := client.GetFileContent(ctx, event.RepoOwner, event.RepoName, file.Filename, event.HeadSHA)
		if err != nil {
			j.logger.Warn("skipping file, content fetch failed", "file", file.Filename, "error", err)
			continue
		}

		in := analyzer.Context{
			FilePath: file.Filename,
			Code:     code,
			Diff:     file.Patch,
			Language: event.Language,
			Status:   file.Status,
		}

		analyzers := enabledAnalyzers(j.router.AnalyzersFor(event.Language, &in), policy.DisabledAnalyzers)
		if len(analyzers) == 0 {
			continue
		}

		findings, err := analyzer.NewComposite(analyzers...).Analyze(ctx, in)
		if err != nil {
			j.logger.Warn("skipping file, analysis failed", "file", file.Filename, "error", err)
			continue
		}

		for _, f := range findings {
			review.AddFinding(f)
		}
		review.Summary.FilesAnalyzed++
	}
}

// loadPolicy fetches .professor.yml from the repository head. A missing or
// broken file degrades to the default policy.
func (j *ReviewJob) loadPolicy(ctx context.Context, client scm.Client, event *core.ReviewEvent) *core.ReviewPolicy {
	raw, err := client.GetFileContent(ctx, event.RepoOwner, event.RepoName, ".professor.yml", event.HeadSHA)
	if err != nil || raw == "" {
		j.logger.Debug("no repository review policy, using defaults", "repo", event.RepoFullName)
		return j.defaultPolicy
	}

	policy, err := config.ParseReviewPolicy([]byte(raw))
	if err != nil {
		j.logger.Warn("invalid .professor.yml, using defaults", "repo", event.RepoFullName, "error", err)
		return j.defaultPolicy
	}
	return policy
}

func (j *ReviewJob) persist(ctx context.Context, event *core.ReviewEvent, review *core.Review, result verdict.Result) {
	if j.store == nil {
		return
	}
	record := storage.ReviewRecord{
		ID:           review.ID,
		RepoFullName: event.RepoFullName,
		PRNumber:     event.PRNumber,
		HeadSHA:      event.HeadSHA,
		Status:       string(review.Status),
		Verdict:      result.Verdict,
		Approved:     result.Approved,
		Confidence:   result.Confidence,
		Findings:     review.Findings,
		Summary:      review.Summary,
		CreatedAt:    review.CreatedAt,
		CompletedAt:  review.CompletedAt,
	}
	if err := j.store.SaveReview(ctx, record); err != nil {
		j.logger.Error("failed to persist review", "review", review.ID, "error", err)
	}
}

func (j *ReviewJob) completeOnError(ctx context.Context, reporter scm.Reporter, event *core.ReviewEvent, checkRunID int64, message string) {
	if err := reporter.Completed(ctx, event, checkRunID, "failure", "Review Failed", message); err != nil &&
		!errors.Is(err, context.Canceled) {
		j.logger.Error("failed to update failure status", "error", err)
	}
}

// enabledAnalyzers drops analyzers the repository policy disabled by name.
func enabledAnalyzers(analyzers []analyzer.Analyzer, disabled []string) []analyzer.Analyzer {
	if len(disabled) == 0 {
		return analyzers
	}
	disabledSet := make(map[string]struct{}, len(disabled))
	for _, name := range disabled {
		disabledSet[name] = struct{}{}
	}
	var out []analyzer.Analyzer
	for _, a := range analyzers {
		if _, off := disabledSet[a.Name()]; !off {
			out = append(out, a)
		}
	}
	return out
}
