package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/professor/internal/analyzer"
	"github.com/sevigo/professor/internal/core"
)

const systemPrompt = `You are a senior code reviewer. Analyze the given file change and report
concrete issues only. Respond with a single JSON document:

{"findings": [{"severity": "critical|high|medium|low|info",
"category": "bug|security|performance|maintainability|style|documentation|testing|architecture",
"title": "...", "message": "...", "file_path": "...", "start_line": 1,
"suggestion": "..."}]}

Report an empty findings array when the change is clean. Do not invent issues.`

// Analyzer sends a file change to the model provider and parses the response
// into findings. It implements the analyzer.Analyzer interface so model-backed
// review composes with the deterministic detectors.
type Analyzer struct {
	provider Provider
	logger   *slog.Logger
}

// NewAnalyzer creates a model-backed analyzer.
func NewAnalyzer(provider Provider, logger *slog.Logger) *Analyzer {
	return &Analyzer{provider: provider, logger: logger}
}

func (a *Analyzer) Name() string {
	return "llm:" + a.provider.Name()
}

// Supports requires file content; a patch alone gives the model too little
// context to review against.
func (a *Analyzer) Supports(in analyzer.Context) bool {
	return strings.TrimSpace(in.Code) != ""
}

func (a *Analyzer) Analyze(ctx context.Context, in analyzer.Context) ([]core.Finding, error) {
	resp, err := a.provider.Generate(ctx, GenerateRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildUserPrompt(in),
	})
	if err != nil {
		return nil, fmt.Errorf("model generation failed for %s: %w", in.FilePath, err)
	}

	findings, err := ParseFindings(resp.Content, a.Name(), in.FilePath, a.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing model review of %s: %w", in.FilePath, err)
	}

	a.logger.Debug("model review parsed",
		"file", in.FilePath, "findings", len(findings), "tokens", resp.TokensUsed)
	return findings, nil
}

func buildUserPrompt(in analyzer.Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "File: %s\n", in.FilePath)
	if in.Language != "" {
		fmt.Fprintf(&sb, "Language: %s\n", in.Language)
	}
	if in.Diff != "" {
		fmt.Fprintf(&sb, "\nChange diff:\n```diff\n%s\n```\n", in.Diff)
	}
	fmt.Fprintf(&sb, "\nFull file content:\n```\n%s\n```\n", in.Code)
	return sb.String()
}
