package scm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"

	"github.com/sevigo/professor/internal/core"
	"github.com/sevigo/professor/internal/verdict"
)

const checkRunName = "Professor Review"

// Reporter defines the contract for reflecting review progress and results
// back onto the pull request: check runs plus a summary comment.
type Reporter interface {
	InProgress(ctx context.Context, event *core.ReviewEvent, title, summary string) (int64, error)
	Completed(ctx context.Context, event *core.ReviewEvent, checkRunID int64, conclusion, title, summary string) error
	PostReview(ctx context.Context, event *core.ReviewEvent, review *core.Review, result verdict.Result) error
}

type reporter struct {
	client Client
}

// NewReporter creates a Reporter backed by the given API client.
func NewReporter(client Client) Reporter {
	return &reporter{client: client}
}

// InProgress creates a new GitHub Check Run with an "in_progress" status.
func (r *reporter) InProgress(ctx context.Context, event *core.ReviewEvent, title, summary string) (int64, error) {
	opts := github.CreateCheckRunOptions{
		Name:    checkRunName,
		HeadSHA: event.HeadSHA,
		Status:  github.Ptr("in_progress"),
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	checkRun, err := r.client.CreateCheckRun(ctx, event.RepoOwner, event.RepoName, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to create check run: %w", err)
	}
	return checkRun.GetID(), nil
}

// Completed updates an existing GitHub Check Run to a "completed" status.
func (r *reporter) Completed(ctx context.Context, event *core.ReviewEvent, checkRunID int64, conclusion, title, summary string) error {
	now := time.Now()
	opts := github.UpdateCheckRunOptions{
		Status:      github.Ptr("completed"),
		Conclusion:  &conclusion,
		CompletedAt: &github.Timestamp{Time: now},
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	_, err := r.client.UpdateCheckRun(ctx, event.RepoOwner, event.RepoName, checkRunID, opts)
	return err
}

// PostReview posts the verdict and finding summary as a pull request comment.
func (r *reporter) PostReview(ctx context.Context, event *core.ReviewEvent, review *core.Review, result verdict.Result) error {
	body := FormatReviewComment(review, result)
	return r.client.CreateComment(ctx, event.RepoOwner, event.RepoName, event.PRNumber, body)
}

// severityOrder fixes the rendering order, most severe first.
var severityOrder = []core.Severity{
	core.SeverityCritical,
	core.SeverityHigh,
	core.SeverityMedium,
	core.SeverityLow,
	core.SeverityInfo,
}

// FormatReviewComment renders the review into the summary comment: verdict
// header, statistics table, then findings grouped by severity.
func FormatReviewComment(review *core.Review, result verdict.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s Verdict: %s (confidence %.2f)\n\n",
		verdictIcon(result.Verdict), strings.ToUpper(result.Verdict), result.Confidence)

	if review.Summary.TotalFindings == 0 {
		sb.WriteString("No issues found in the changed files.\n")
		return sb.String()
	}

	sb.WriteString("#### Issue Statistics\n\n")
	sb.WriteString("| Severity | Count |\n")
	sb.WriteString("|----------|-------|\n")
	counts := map[core.Severity]int{
		core.SeverityCritical: review.Summary.Critical,
		core.SeverityHigh:     review.Summary.High,
		core.SeverityMedium:   review.Summary.Medium,
		core.SeverityLow:      review.Summary.Low,
		core.SeverityInfo:     review.Summary.Info,
	}
	for _, sev := range severityOrder {
		if counts[sev] > 0 {
			fmt.Fprintf(&sb, "| %s %s | %d |\n", severityEmoji(sev), sev, counts[sev])
		}
	}
	sb.WriteString("\n")

	for _, sev := range severityOrder {
		findings := review.FindingsBySeverity(sev)
		if len(findings) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "#### %s %s\n\n", severityEmoji(sev), strings.ToUpper(string(sev)))
		for _, f := range findings {
			fmt.Fprintf(&sb, "- `%s` **%s** (%s): %s\n", f.Location, f.Title, f.Category, f.Message)
			if f.Suggestion != "" {
				fmt.Fprintf(&sb, "  - Suggestion: %s\n", f.Suggestion)
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// verdictIcon returns an icon for the given verdict using normalized exact
// matching.
func verdictIcon(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case verdict.Approve:
		return "✅"
	case verdict.Reject:
		return "🚫"
	default:
		return "📝"
	}
}

// severityEmoji returns an emoji for the given severity level.
func severityEmoji(s core.Severity) string {
	switch s {
	case core.SeverityCritical:
		return "🔴"
	case core.SeverityHigh:
		return "🟠"
	case core.SeverityMedium:
		return "🟡"
	case core.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}
