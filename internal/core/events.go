package core

import (
	"fmt"

	"github.com/google/go-github/v68/github"
)

// reviewableActions are the pull_request actions that trigger a review.
var reviewableActions = map[string]struct{}{
	"opened":           {},
	"reopened":         {},
	"synchronize":      {},
	"ready_for_review": {},
}

// ReviewEvent is the internal view of a source-control event that asks for a
// review. It carries only what the review job needs.
type ReviewEvent struct {
	RepoOwner    string
	RepoName     string
	RepoFullName string
	Language     string

	PRNumber int
	PRTitle  string
	HeadSHA  string

	InstallationID int64
}

// EventFromPullRequest transforms a raw GitHub PullRequestEvent into the
// internal ReviewEvent. It acts as an anti-corruption layer: only actions that
// represent reviewable PR changes pass, and the payload must carry complete
// repository and installation data.
func EventFromPullRequest(event *github.PullRequestEvent) (*ReviewEvent, error) {
	if _, ok := reviewableActions[event.GetAction()]; !ok {
		return nil, fmt.Errorf("action %q does not trigger a review", event.GetAction())
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetOwner() == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}

	pr := event.GetPullRequest()
	if pr.GetNumber() <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", pr.GetNumber())
	}

	if event.GetInstallation() == nil || event.GetInstallation().GetID() == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}

	return &ReviewEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		Language:       repo.GetLanguage(),
		PRNumber:       pr.GetNumber(),
		PRTitle:        pr.GetTitle(),
		HeadSHA:        pr.GetHead().GetSHA(),
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}
